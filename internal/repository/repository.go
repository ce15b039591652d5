package repository

import (
	"context"

	"dockerdash/internal/domain"
)

// SnapshotSource supplies collected snapshots to the topology engine
type SnapshotSource interface {
	// Fetch returns the most recent snapshots, newest first.
	// A limit of zero or less returns every stored snapshot.
	Fetch(ctx context.Context, limit int) ([]domain.Snapshot, error)
}

// SnapshotStore persists snapshots produced by the collector
type SnapshotStore interface {
	SnapshotSource

	// Insert stores a snapshot, assigning an id when it has none
	Insert(ctx context.Context, snap *domain.Snapshot) error

	// Count returns the number of stored snapshots
	Count(ctx context.Context) (int, error)

	// Prune deletes all but the keep most recent snapshots
	Prune(ctx context.Context, keep int) (int, error)

	// Close releases resources
	Close() error
}
