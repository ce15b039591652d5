package domain

import (
	"fmt"
	"strings"
)

// NodeKind represents the kind of graph-visible entity
type NodeKind string

const (
	NodeKindContainer NodeKind = "container"
	NodeKindProcess   NodeKind = "process"
	NodeKindStack     NodeKind = "stack"
	NodeKindForeignIP NodeKind = "foreign_ip"
	NodeKindGatewayIP NodeKind = "gateway_ip"
)

// kindPrefixes is the wire form of each kind inside a node identifier
var kindPrefixes = map[NodeKind]string{
	NodeKindContainer: "c__",
	NodeKindProcess:   "p__",
	NodeKindStack:     "s__",
	NodeKindForeignIP: "i__",
	NodeKindGatewayIP: "g__",
}

// Valid reports whether k is one of the known node kinds
func (k NodeKind) Valid() bool {
	_, ok := kindPrefixes[k]
	return ok
}

// NodeID identifies a node across the whole graph. Two nodes of different
// kinds never share an identity, even when their keys are equal.
type NodeID struct {
	Kind NodeKind
	Key  string
}

// NewNodeID creates a node identifier
func NewNodeID(kind NodeKind, key string) NodeID {
	return NodeID{Kind: kind, Key: key}
}

// String returns the wire form, e.g. "c__web"
func (id NodeID) String() string {
	return kindPrefixes[id.Kind] + id.Key
}

// MarshalText implements encoding.TextMarshaler
func (id NodeID) MarshalText() ([]byte, error) {
	if !id.Kind.Valid() {
		return nil, fmt.Errorf("invalid node kind %q", id.Kind)
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, ok := ParseNodeID(string(text))
	if !ok {
		return fmt.Errorf("invalid node id %q", string(text))
	}
	*id = parsed
	return nil
}

// ParseNodeID parses the wire form produced by NodeID.String
func ParseNodeID(s string) (NodeID, bool) {
	for kind, prefix := range kindPrefixes {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			return NodeID{Kind: kind, Key: s[len(prefix):]}, true
		}
	}
	return NodeID{}, false
}

// Node is a graph-visible entity
type Node struct {
	ID     NodeID   `json:"id"`
	Label  string   `json:"label"`
	Kind   NodeKind `json:"kind"`
	Parent *NodeID  `json:"parent,omitempty"`
}

// NewNode creates a node without a parent
func NewNode(id NodeID, label string) Node {
	return Node{ID: id, Label: label, Kind: id.Kind}
}

// WithParent returns a copy of the node grouped under parent
func (n Node) WithParent(parent NodeID) Node {
	n.Parent = &parent
	return n
}
