package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"dockerdash/internal/domain"
	"dockerdash/internal/repository"

	_ "modernc.org/sqlite"
)

var _ repository.SnapshotStore = (*Repository)(nil)

// Repository implements repository.SnapshotStore using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: opens its own database
	if isMemory(dbPath) {
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func dsn(dbPath string) string {
	if isMemory(dbPath) {
		return dbPath
	}
	return dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func isMemory(dbPath string) bool {
	return dbPath == ":memory:" || strings.HasPrefix(dbPath, "file::memory:")
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		host_name TEXT,
		snapshot_time INTEGER NOT NULL,
		data JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_time ON snapshots(snapshot_time DESC);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Insert stores a snapshot, assigning an id when it has none
func (r *Repository) Insert(ctx context.Context, snap *domain.Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}

	args, err := snapshotInsertArgs(snap)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (`+snapshotInsertColumns+`)
		VALUES (?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

// Fetch returns up to limit snapshots, most recent first. A limit of zero or
// less returns all of them. Rows whose payload no longer decodes are skipped.
func (r *Repository) Fetch(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots ORDER BY snapshot_time DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domain.Snapshot, 0)
	for rows.Next() {
		var row snapshotRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		snap, err := row.toDomain()
		if err != nil {
			log.WithField("snapshot_id", row.ID).Warnf("Skipping undecodable snapshot: %v", err)
			continue
		}
		snapshots = append(snapshots, *snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// Count returns the number of stored snapshots
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// Prune deletes all but the keep most recent snapshots and returns how many
// were removed. A keep of zero or less deletes nothing.
func (r *Repository) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY snapshot_time DESC, id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
