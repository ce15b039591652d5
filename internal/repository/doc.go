// Package repository defines the data access interfaces for dockerdash.
//
// SnapshotSource is the read side the topology engine consumes: an ordered,
// optionally truncated sequence of snapshots, most recent first.
//
// SnapshotStore adds the write side used by the collector and the import
// endpoints. The sqlite subpackage provides the implementation.
//
// # SQLite Implementation
//
// The sqlite store keeps each snapshot as a JSON document indexed by its
// capture time. It runs in WAL mode so dashboard readers never block the
// collector. Rows that no longer decode are skipped with a warning rather
// than failing the whole fetch.
package repository
