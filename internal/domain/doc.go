// Package domain defines the core types for the dockerdash container topology system.
//
// # Observations
//
// Snapshot is one point-in-time capture of a host: its containers (Device),
// its OS processes (Process) and the TCP/UDP associations (Connection) each of
// them had open. Snapshots are produced by the collector and consumed, in
// batches, by the topology engine.
//
// # Graph
//
// Node is a graph-visible entity of one of five kinds: container, process,
// stack, foreign_ip and gateway_ip. NodeID pairs the kind with an opaque key so
// a process and a container sharing a name never collide.
//
// Edge is a directed relationship between two nodes. Its EdgeKey is built from
// the unordered endpoint pair and is unique within a Graph.
//
// Detail is the answer to a node lookup: a stack summary, the merged Device or
// Process record, or the caller's probe echoed back.
//
// # Design Principles
//
// - Immutable value objects where possible
// - No database or external dependencies beyond struct validation
// - Rich type system with meaningful constants and enumerations
package domain
