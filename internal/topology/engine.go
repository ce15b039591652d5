package topology

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"dockerdash/internal/domain"
	"dockerdash/internal/repository"
)

// Result is the outcome of one graph build
type Result struct {
	Graph    *domain.Graph
	Registry *Registry

	// Snapshots is the number of snapshots fetched; Skipped of those were malformed
	Snapshots int
	Skipped   int
	Limit     int
	BuiltAt   time.Time
}

// Lookup answers a node-detail query against the registry of this build
func (r *Result) Lookup(nodeID string, probe map[string]any) domain.Detail {
	return r.Registry.Lookup(nodeID, probe)
}

// Engine builds topology graphs from a snapshot source. It holds no state
// between builds, so concurrent Build calls are independent.
type Engine struct {
	source repository.SnapshotSource
}

// NewEngine creates an engine reading from source
func NewEngine(source repository.SnapshotSource) *Engine {
	return &Engine{source: source}
}

// Build fetches the most recent limit snapshots and turns them into a graph.
// A source failure is returned as an error; no partial graph is produced.
func (e *Engine) Build(ctx context.Context, limit int, opts Options) (*Result, error) {
	snapshots, err := e.source.Fetch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshots: %w", err)
	}

	reg, skipped := Aggregate(snapshots)
	graph := BuildGraph(reg, opts)
	if dangling := graph.DanglingParents(); len(dangling) > 0 {
		return nil, fmt.Errorf("graph has %d parent references without a stack node", len(dangling))
	}

	log.WithFields(log.Fields{
		"limit":     limit,
		"snapshots": len(snapshots),
		"skipped":   skipped,
		"devices":   len(reg.Devices),
		"processes": len(reg.Processes),
		"nodes":     len(graph.Nodes),
		"edges":     len(graph.Edges),
	}).Info("Built topology graph")

	return &Result{
		Graph:     graph,
		Registry:  reg,
		Snapshots: len(snapshots),
		Skipped:   skipped,
		Limit:     limit,
		BuiltAt:   time.Now(),
	}, nil
}
