package topology

import (
	"dockerdash/internal/domain"
)

// Options are the display policies applied while building a graph
type Options struct {
	// MaskIPLabels redacts the last octet of foreign and gateway IP labels
	MaskIPLabels bool
}

// Builder accumulates nodes and edges for one graph build. A node is kept at
// most once per identity and an edge at most once per canonical key; the first
// observation wins and later ones are absorbed.
type Builder struct {
	opts       Options
	classifier *Classifier

	graph    *domain.Graph
	nodeSeen map[domain.NodeID]struct{}
	edgeSeen map[domain.EdgeKey]struct{}
}

// NewBuilder creates a builder that classifies remotes against reg
func NewBuilder(reg *Registry, opts Options) *Builder {
	return &Builder{
		opts:       opts,
		classifier: NewClassifier(reg),
		graph:      domain.NewGraph(),
		nodeSeen:   make(map[domain.NodeID]struct{}),
		edgeSeen:   make(map[domain.EdgeKey]struct{}),
	}
}

// AddNode adds a node unless one with the same identity exists.
// Returns true when the node was added.
func (b *Builder) AddNode(node domain.Node) bool {
	if _, ok := b.nodeSeen[node.ID]; ok {
		return false
	}
	if b.opts.MaskIPLabels && (node.Kind == domain.NodeKindForeignIP || node.Kind == domain.NodeKindGatewayIP) {
		node.Label = AnonymizeIP(node.Label)
	}
	b.nodeSeen[node.ID] = struct{}{}
	b.graph.Nodes = append(b.graph.Nodes, node)
	return true
}

// AddEdge adds a directed edge unless its canonical key was already seen.
// Returns true when the edge was added.
func (b *Builder) AddEdge(source, target domain.NodeID) bool {
	edge := domain.NewEdge(source, target)
	if _, ok := b.edgeSeen[edge.ID]; ok {
		return false
	}
	b.edgeSeen[edge.ID] = struct{}{}
	b.graph.Edges = append(b.graph.Edges, edge)
	return true
}

// AddDevice adds a container node, preceded by its stack node on first sight
func (b *Builder) AddDevice(dev *domain.Device) {
	if dev.Stack != "" {
		b.AddNode(StackNode(dev.Stack))
	}
	b.AddNode(ContainerNode(dev))
}

// AddProcess adds a host process node
func (b *Builder) AddProcess(proc *domain.Process) {
	b.AddNode(ProcessNode(proc.Name))
}

// AddConnections classifies the remote side of each connection observed at
// local, adds the remote node and the oriented edge
func (b *Builder) AddConnections(local domain.NodeID, listen []domain.Port, conns []domain.Connection) {
	for _, conn := range conns {
		remote := b.classifier.Remote(conn, local.Kind)
		b.AddNode(domain.NewNode(remote.ID, remote.Label))

		source, target := Orient(local, remote.ID, ResolveDirection(conn.LocalPort, listen))
		b.AddEdge(source, target)
	}
}

// Graph returns the accumulated graph
func (b *Builder) Graph() *domain.Graph {
	return b.graph
}

// BuildGraph turns a merged registry into a graph.
// Every registry entry is declared before any connection is walked, so a
// container referenced remotely always carries its own stack parent.
func BuildGraph(reg *Registry, opts Options) *domain.Graph {
	b := NewBuilder(reg, opts)

	deviceNames := reg.DeviceNames()
	processNames := reg.ProcessNames()

	for _, name := range deviceNames {
		b.AddDevice(reg.Devices[name])
	}
	for _, name := range processNames {
		b.AddProcess(reg.Processes[name])
	}

	for _, name := range deviceNames {
		dev := reg.Devices[name]
		b.AddConnections(ContainerNode(dev).ID, dev.ListenPorts, dev.Connections)
	}
	for _, name := range processNames {
		proc := reg.Processes[name]
		b.AddConnections(ProcessNode(name).ID, proc.ListenPorts, proc.Connections)
	}

	return b.Graph()
}
