package domain

import (
	"fmt"
)

// EdgeKey is the canonical identity of an edge. It is derived from the
// unordered pair of endpoint identifiers, so re-observing a relationship from
// either side yields the same key.
type EdgeKey string

// NewEdgeKey builds the canonical key for the pair (a, b).
// Each endpoint is length-prefixed so names containing separator-like
// substrings cannot produce the same key for different pairs.
func NewEdgeKey(a, b NodeID) EdgeKey {
	x, y := a.String(), b.String()
	if x > y {
		x, y = y, x
	}
	return EdgeKey(fmt.Sprintf("%d:%s|%d:%s", len(x), x, len(y), y))
}

// Edge is a directed relationship between two nodes
type Edge struct {
	ID     EdgeKey `json:"id"`
	Source NodeID  `json:"source"`
	Target NodeID  `json:"target"`
}

// NewEdge creates an edge with its canonical key
func NewEdge(source, target NodeID) Edge {
	return Edge{
		ID:     NewEdgeKey(source, target),
		Source: source,
		Target: target,
	}
}
