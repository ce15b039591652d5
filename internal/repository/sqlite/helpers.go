package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"dockerdash/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// Time Encoding
// ============================================================================
//
// snapshot_time is stored as unix nanoseconds so ORDER BY sorts numerically
// and sub-second precision survives the round trip.

func timeToColumn(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func columnToTime(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// ============================================================================
// Snapshot Row Scanner
// ============================================================================
//
// CRITICAL: Column order must match between:
// - snapshotColumns constant
// - scanArgs() return slice

// snapshotRow holds all columns from a snapshot query for scanning
type snapshotRow struct {
	ID           string
	HostName     sql.NullString
	SnapshotTime int64
	Data         []byte
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match snapshotColumns order exactly:
// id, host_name, snapshot_time, data
func (r *snapshotRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,           // 1
		&r.HostName,     // 2
		&r.SnapshotTime, // 3
		&r.Data,         // 4
	}
}

// toDomain decodes the stored payload. Indexed columns override the payload.
func (r *snapshotRow) toDomain() (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}
	if err := json.Unmarshal(r.Data, snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	snap.ID = r.ID
	snap.Time = columnToTime(r.SnapshotTime)
	if snap.Host != nil && snap.Host.Name == "" {
		snap.Host.Name = nullToString(r.HostName)
	}
	return snap, nil
}

// snapshotColumns is the SELECT column list for snapshot queries
const snapshotColumns = `id, host_name, snapshot_time, data`

// snapshotInsertColumns matches snapshotInsertArgs
const snapshotInsertColumns = `id, host_name, snapshot_time, data`

// snapshotInsertArgs prepares arguments for snapshot INSERT
// Returns: id, host_name, snapshot_time, data
func snapshotInsertArgs(snap *domain.Snapshot) ([]interface{}, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	var hostName string
	if snap.Host != nil {
		hostName = snap.Host.Name
	}

	return []interface{}{
		snap.ID,
		stringToNull(hostName),
		timeToColumn(snap.Time),
		string(data),
	}, nil
}
