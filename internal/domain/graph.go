package domain

// Graph is the rendered topology: stack and leaf nodes intermixed, plus
// directed edges. Every node's Parent refers to a stack node in Nodes.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// Node returns the node with the given identity
func (g *Graph) Node(id NodeID) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// CountByKind returns the number of nodes of each kind
func (g *Graph) CountByKind() map[NodeKind]int {
	counts := make(map[NodeKind]int)
	for _, n := range g.Nodes {
		counts[n.Kind]++
	}
	return counts
}

// DanglingParents returns parent references that do not point at a stack
// node of this graph. A well-formed graph returns none.
func (g *Graph) DanglingParents() []NodeID {
	stacks := make(map[NodeID]struct{})
	for _, n := range g.Nodes {
		if n.Kind == NodeKindStack {
			stacks[n.ID] = struct{}{}
		}
	}

	var dangling []NodeID
	for _, n := range g.Nodes {
		if n.Parent == nil {
			continue
		}
		if _, ok := stacks[*n.Parent]; !ok {
			dangling = append(dangling, *n.Parent)
		}
	}
	return dangling
}
