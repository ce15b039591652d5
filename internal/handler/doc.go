// Package handler implements the HTTP API of dockerdash.
//
// GraphHandler serves the topology graph, node detail lookups, verbatim
// JSON/YAML exports and snapshot ingestion. Middleware provides panic
// recovery, CORS and request logging with prometheus instrumentation.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure. An invalid
// snapshot limit is a 400; a snapshot store that cannot be read is a 502 and
// leaves the previously built graph in place.
//
// # Server-Sent Events
//
// The /events endpoint streams graph_rebuilt, snapshot_stored and
// policy_changed events via SSE.
package handler
