package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"dockerdash/internal/codec"
	"dockerdash/internal/domain"
	"dockerdash/internal/metrics"
	"dockerdash/internal/repository"
	"dockerdash/internal/topology"
)

var (
	// ErrInvalidLimit is returned for a snapshot limit that is not a positive integer
	ErrInvalidLimit = errors.New("snapshot limit must be a positive integer")
	// ErrInvalidSnapshot is returned when a submitted snapshot fails validation
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	// ErrNoGraph is returned when no graph has been built successfully yet
	ErrNoGraph = errors.New("no graph has been built")
)

// Policy is the set of display options applied to every rebuild
type Policy struct {
	// Limit is the number of most recent snapshots merged by default
	Limit int `json:"limit"`
	// MaskIPLabels redacts the last octet of IP labels
	MaskIPLabels bool `json:"mask_ip_labels"`
	// Retain is the number of snapshots kept after each ingest; 0 keeps all
	Retain int `json:"retain"`
}

// Validate rejects a non-positive limit or a negative retention count
func (p Policy) Validate() error {
	if p.Limit <= 0 {
		return ErrInvalidLimit
	}
	if p.Retain < 0 {
		return fmt.Errorf("retain must not be negative: %d", p.Retain)
	}
	return nil
}

// GraphSummary is the payload of graph_rebuilt events
type GraphSummary struct {
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Snapshots int       `json:"snapshots"`
	Skipped   int       `json:"skipped"`
	Limit     int       `json:"limit"`
	BuiltAt   time.Time `json:"built_at"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Stored  int      `json:"stored"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

// GraphService builds topology graphs from stored snapshots and keeps the last
// successful build. A failed build leaves the previous graph in place.
type GraphService struct {
	store    repository.SnapshotStore
	engine   *topology.Engine
	eventBus *EventBus
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	policy  Policy
	current *topology.Result
}

// NewGraphService creates a new graph service
func NewGraphService(store repository.SnapshotStore, eventBus *EventBus, policy Policy, m *metrics.Metrics) *GraphService {
	return &GraphService{
		store:    store,
		engine:   topology.NewEngine(store),
		eventBus: eventBus,
		metrics:  m,
		policy:   policy,
	}
}

// Policy returns the current display policy
func (s *GraphService) Policy() Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policy
}

// SetPolicy replaces the display policy. The current graph is not rebuilt.
func (s *GraphService) SetPolicy(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	changed := s.policy != p
	s.policy = p
	s.mu.Unlock()

	if changed {
		log.WithFields(log.Fields{
			"limit":          p.Limit,
			"mask_ip_labels": p.MaskIPLabels,
			"retain":         p.Retain,
		}).Info("Graph policy updated")
		s.eventBus.Publish(Event{Type: EventPolicyChanged, Payload: p})
	}
	return nil
}

// ParseLimit interprets a requested snapshot limit. An empty value selects
// the policy default; anything that is not a positive integer is rejected.
func (s *GraphService) ParseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.Policy().Limit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLimit, raw)
	}
	return limit, nil
}

// Rebuild builds a graph from the most recent limit snapshots and makes it
// current. On failure the previous graph stays current and the error is
// returned.
func (s *GraphService) Rebuild(ctx context.Context, limit int) (*topology.Result, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	policy := s.Policy()

	start := time.Now()
	res, err := s.engine.Build(ctx, limit, topology.Options{MaskIPLabels: policy.MaskIPLabels})
	if err != nil {
		s.metrics.GraphBuildFailed()
		return nil, err
	}
	s.metrics.GraphBuilt(res.Graph, res.Skipped, time.Since(start))

	s.mu.Lock()
	s.current = res
	s.mu.Unlock()

	s.eventBus.Publish(Event{Type: EventGraphRebuilt, Payload: summarize(res)})
	return res, nil
}

// Current returns the last successful build, or nil before the first one
func (s *GraphService) Current() *topology.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ensureCurrent returns the current build, building one with the default
// limit if none exists yet
func (s *GraphService) ensureCurrent(ctx context.Context) (*topology.Result, error) {
	if res := s.Current(); res != nil {
		return res, nil
	}
	return s.Rebuild(ctx, s.Policy().Limit)
}

// Lookup answers a node-detail query against the current build
func (s *GraphService) Lookup(ctx context.Context, nodeID string, probe map[string]any) (domain.Detail, error) {
	res, err := s.ensureCurrent(ctx)
	if err != nil {
		return domain.Detail{}, err
	}
	return res.Lookup(nodeID, probe), nil
}

// Export writes the current graph verbatim in the given format
func (s *GraphService) Export(ctx context.Context, format string, w io.Writer) error {
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}
	res, err := s.ensureCurrent(ctx)
	if err != nil {
		return err
	}
	return exporter.Export(res.Graph, w)
}

// IngestSnapshot validates and stores one snapshot, then prunes the store to
// the retention policy
func (s *GraphService) IngestSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := s.store.Insert(ctx, snap); err != nil {
		return err
	}
	s.metrics.SnapshotStored()

	if retain := s.Policy().Retain; retain > 0 {
		deleted, err := s.store.Prune(ctx, retain)
		if err != nil {
			log.WithError(err).Warn("Failed to prune snapshots")
		} else if deleted > 0 {
			log.WithField("deleted", deleted).Debug("Pruned old snapshots")
		}
	}

	s.eventBus.Publish(Event{
		Type:    EventSnapshotStored,
		Payload: map[string]any{"id": snap.ID, "snapshot_time": snap.Time},
	})
	return nil
}

// Import parses snapshots from r and stores every valid one. Invalid
// snapshots are counted and reported, not fatal.
func (s *GraphService) Import(ctx context.Context, r io.Reader, format string) (*ImportResult, error) {
	importer, err := codec.ImporterFor(format)
	if err != nil {
		return nil, err
	}
	snapshots, err := importer.Parse(r)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i := range snapshots {
		err := s.IngestSnapshot(ctx, &snapshots[i])
		switch {
		case errors.Is(err, ErrInvalidSnapshot):
			result.Skipped++
			result.Errors = append(result.Errors, err.Error())
		case err != nil:
			return result, fmt.Errorf("failed to store snapshot %d: %w", i+1, err)
		default:
			result.Stored++
		}
	}
	return result, nil
}

// SnapshotCount returns the number of stored snapshots
func (s *GraphService) SnapshotCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func summarize(res *topology.Result) GraphSummary {
	return GraphSummary{
		Nodes:     len(res.Graph.Nodes),
		Edges:     len(res.Graph.Edges),
		Snapshots: res.Snapshots,
		Skipped:   res.Skipped,
		Limit:     res.Limit,
		BuiltAt:   res.BuiltAt,
	}
}
