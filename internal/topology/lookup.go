package topology

import (
	"dockerdash/internal/domain"
)

// Lookup answers a node-detail query. Stack ids yield the member count and
// names, computed from the device registry on demand. Container and process
// ids yield their merged record. Anything else, including ids that do not
// parse, echoes probe back unchanged.
func (r *Registry) Lookup(nodeID string, probe map[string]any) domain.Detail {
	echo := domain.Detail{Probe: probe}
	if probe == nil {
		echo.Probe = map[string]any{"id": nodeID}
	}

	id, ok := domain.ParseNodeID(nodeID)
	if !ok {
		return echo
	}

	switch id.Kind {
	case domain.NodeKindStack:
		names := r.StackMembers(id.Key)
		if len(names) == 0 {
			return echo
		}
		return domain.Detail{Stack: &domain.StackDetail{
			Stack: id.Key,
			Count: len(names),
			Names: names,
		}}
	case domain.NodeKindContainer:
		if dev, ok := r.Devices[id.Key]; ok {
			return domain.Detail{Device: dev}
		}
	case domain.NodeKindProcess:
		if proc, ok := r.Processes[id.Key]; ok {
			return domain.Detail{Process: proc}
		}
	}
	return echo
}
