// Package service implements the application layer of dockerdash.
//
// GraphService sits between the HTTP handlers, the collector and the snapshot
// store. It rebuilds topology graphs on demand, keeps the last successful
// build for detail lookups and exports, validates and stores incoming
// snapshots, and applies the display policy (default snapshot limit, IP label
// masking, retention) which can be replaced at runtime when the config file
// changes.
//
// # Event System
//
// The service publishes events via EventBus for real-time updates to
// connected clients via Server-Sent Events: graph_rebuilt after every
// successful build, snapshot_stored after every ingest, and policy_changed
// when the display policy is replaced.
package service
