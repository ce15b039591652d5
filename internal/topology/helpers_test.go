package topology

import (
	"context"
	"strconv"
	"time"

	"dockerdash/internal/domain"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func strp(s string) *string { return &s }

func ports(ps ...int) []domain.Port {
	out := make([]domain.Port, 0, len(ps))
	for _, p := range ps {
		out = append(out, domain.Port(p))
	}
	return out
}

// conn builds a connection from the local side's point of view
func conn(localIP string, localPort int, foreignIP string, foreignPort int, foreignDevice *string) domain.Connection {
	return domain.Connection{
		Proto:          "tcp",
		LocalAddress:   localIP + ":" + strconv.Itoa(localPort),
		LocalIP:        localIP,
		LocalPort:      domain.Port(localPort),
		ForeignAddress: foreignIP + ":" + strconv.Itoa(foreignPort),
		ForeignIP:      foreignIP,
		ForeignPort:    domain.Port(foreignPort),
		ForeignDevice:  foreignDevice,
	}
}

func snapshot(offset time.Duration, devices []domain.Device, processes map[string]domain.Process) domain.Snapshot {
	return domain.Snapshot{
		Time: baseTime.Add(offset),
		Host: &domain.Host{
			Devices:   devices,
			Processes: processes,
		},
	}
}

func nodeID(kind domain.NodeKind, key string) domain.NodeID {
	return domain.NewNodeID(kind, key)
}

// findEdge returns the edge between a and b in either direction
func findEdge(g *domain.Graph, a, b domain.NodeID) (domain.Edge, bool) {
	key := domain.NewEdgeKey(a, b)
	for _, e := range g.Edges {
		if e.ID == key {
			return e, true
		}
	}
	return domain.Edge{}, false
}

type fakeSource struct {
	snapshots []domain.Snapshot
	err       error
	limits    []int
}

func (f *fakeSource) Fetch(ctx context.Context, limit int) ([]domain.Snapshot, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.snapshots) {
		return f.snapshots[:limit], nil
	}
	return f.snapshots, nil
}
