package topology

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"dockerdash/internal/domain"
)

// Registry is the merged view of every device and process seen in a batch of
// snapshots. It is built fresh for each graph build and never shared.
type Registry struct {
	Devices   map[string]*domain.Device
	Processes map[string]*domain.Process

	// deviceSeen records the snapshot time the scalar device attributes
	// (id, image, stack, pid) were taken from
	deviceSeen map[string]time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Devices:    make(map[string]*domain.Device),
		Processes:  make(map[string]*domain.Process),
		deviceSeen: make(map[string]time.Time),
	}
}

// Aggregate merges a batch of snapshots into a canonicalized registry.
// Malformed snapshots are skipped with a warning; the returned count says how
// many were dropped.
func Aggregate(snapshots []domain.Snapshot) (*Registry, int) {
	reg := NewRegistry()
	skipped := 0
	for i := range snapshots {
		snap := &snapshots[i]
		if err := snap.Validate(); err != nil {
			log.WithFields(log.Fields{
				"snapshot_id": snap.ID,
				"index":       i,
			}).Warnf("Skipping snapshot: %v", err)
			skipped++
			continue
		}
		reg.AddSnapshot(snap)
	}
	reg.Canonicalize()
	return reg, skipped
}

// AddSnapshot merges one snapshot into the registry. Port sets are unioned
// and connection lists concatenated; call Canonicalize once all snapshots
// have been added.
func (r *Registry) AddSnapshot(snap *domain.Snapshot) {
	if snap.Host == nil {
		return
	}
	for i := range snap.Host.Devices {
		r.addDevice(&snap.Host.Devices[i], snap.Time)
	}
	for name, proc := range snap.Host.Processes {
		r.addProcess(name, proc)
	}
}

func (r *Registry) addDevice(dev *domain.Device, seen time.Time) {
	existing, ok := r.Devices[dev.Name]
	if !ok {
		merged := &domain.Device{
			Name:        dev.Name,
			ID:          dev.ID,
			Image:       dev.Image,
			Stack:       dev.Stack,
			PID:         dev.PID,
			IPAddresses: unionStrings(nil, dev.IPAddresses),
			ListenPorts: unionPorts(nil, dev.ListenPorts),
			Connections: append([]domain.Connection(nil), dev.Connections...),
		}
		r.Devices[dev.Name] = merged
		r.deviceSeen[dev.Name] = seen
		return
	}

	// Scalar attributes come from the most recent observation so the result
	// does not depend on the order snapshots were merged in
	if newerObservation(seen, dev, r.deviceSeen[dev.Name], existing) {
		existing.ID = dev.ID
		existing.Image = dev.Image
		existing.Stack = dev.Stack
		existing.PID = dev.PID
		r.deviceSeen[dev.Name] = seen
	}

	existing.IPAddresses = unionStrings(existing.IPAddresses, dev.IPAddresses)
	existing.ListenPorts = unionPorts(existing.ListenPorts, dev.ListenPorts)
	existing.Connections = append(existing.Connections, dev.Connections...)
}

func (r *Registry) addProcess(name string, proc domain.Process) {
	existing, ok := r.Processes[name]
	if !ok {
		r.Processes[name] = &domain.Process{
			Name:        name,
			ListenPorts: unionPorts(nil, proc.ListenPorts),
			Connections: append([]domain.Connection(nil), proc.Connections...),
		}
		return
	}
	existing.ListenPorts = unionPorts(existing.ListenPorts, proc.ListenPorts)
	existing.Connections = append(existing.Connections, proc.Connections...)
}

// Canonicalize removes duplicate connections from every device and process
func (r *Registry) Canonicalize() {
	for _, dev := range r.Devices {
		dev.Connections = Canonicalize(dev.Connections)
	}
	for _, proc := range r.Processes {
		proc.Connections = Canonicalize(proc.Connections)
	}
}

// DeviceNames returns device names in sorted order
func (r *Registry) DeviceNames() []string {
	names := make([]string, 0, len(r.Devices))
	for name := range r.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProcessNames returns process names in sorted order
func (r *Registry) ProcessNames() []string {
	names := make([]string, 0, len(r.Processes))
	for name := range r.Processes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StackMembers returns the sorted names of devices in the given stack
func (r *Registry) StackMembers(stack string) []string {
	var names []string
	for _, name := range r.DeviceNames() {
		if r.Devices[name].Stack == stack {
			names = append(names, name)
		}
	}
	return names
}

// newerObservation decides whether the candidate device attributes replace
// the current ones. Ties on time are broken on the container id so merge order
// never matters.
func newerObservation(candSeen time.Time, cand *domain.Device, curSeen time.Time, cur *domain.Device) bool {
	if !candSeen.Equal(curSeen) {
		return candSeen.After(curSeen)
	}
	return cand.ID > cur.ID
}

func unionPorts(dst []domain.Port, src []domain.Port) []domain.Port {
	for _, p := range src {
		if !domain.ContainsPort(dst, p) {
			dst = append(dst, p)
		}
	}
	sort.Slice(dst, func(i, j int) bool { return dst[i] < dst[j] })
	return dst
}

func unionStrings(dst []string, src []string) []string {
	for _, s := range src {
		found := false
		for _, d := range dst {
			if d == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	sort.Strings(dst)
	return dst
}
