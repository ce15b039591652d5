package domain

import "encoding/json"

// StackDetail summarizes the containers grouped under a stack
type StackDetail struct {
	Stack string   `json:"stack"`
	Count int      `json:"count"`
	Names []string `json:"names"`
}

// Detail is the answer to a node-detail lookup. Exactly one of the fields is
// set; when nothing in the registries matches, Probe echoes the caller's data.
type Detail struct {
	Stack   *StackDetail
	Device  *Device
	Process *Process
	Probe   map[string]any
}

// MarshalJSON renders whichever record the detail carries
func (d Detail) MarshalJSON() ([]byte, error) {
	switch {
	case d.Stack != nil:
		return json.Marshal(d.Stack)
	case d.Device != nil:
		return json.Marshal(d.Device)
	case d.Process != nil:
		return json.Marshal(d.Process)
	case d.Probe != nil:
		return json.Marshal(d.Probe)
	}
	return []byte("{}"), nil
}
