// Package topology turns batches of snapshots into a container dependency graph.
//
// The pipeline, leaves first:
//
//   - Aggregate merges devices and processes by name across snapshots,
//     unioning listen ports and concatenating connection lists.
//   - Canonicalize drops exact duplicate connections using an
//     order-independent key.
//   - Classifier decides each remote endpoint's node kind: known container,
//     gateway IP or foreign IP.
//   - ResolveDirection orients edges: a local port in the listen set means
//     the remote connected to us.
//   - Builder assembles nodes and edges, keeping the first node per identity
//     and the first edge per canonical key, and emits stack nodes before the
//     containers they group.
//   - AnonymizeIP redacts IP labels without touching identities.
//   - Registry.Lookup answers node-detail queries.
//
// Engine runs the whole pipeline against a repository.SnapshotSource. Every
// build starts from scratch; nothing is cached between builds.
package topology
