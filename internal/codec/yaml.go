package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"dockerdash/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles generic YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type of exported documents
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlGraph represents the YAML structure for graph data
type yamlGraph struct {
	Nodes []yamlNode `yaml:"nodes"`
	Edges []yamlEdge `yaml:"edges"`
}

type yamlNode struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label"`
	Kind   string `yaml:"kind"`
	Parent string `yaml:"parent,omitempty"`
}

type yamlEdge struct {
	ID     string `yaml:"id"`
	Source string `yaml:"source"`
	Target string `yaml:"target"`
}

// Parse imports snapshots from YAML, one snapshot per document. Documents
// use the same field names as the JSON form.
func (c *YAMLCodec) Parse(r io.Reader) ([]domain.Snapshot, error) {
	decoder := yaml.NewDecoder(r)
	snapshots := make([]domain.Snapshot, 0, 1)

	for {
		var doc any
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if doc == nil {
			continue
		}

		// Round-trip through JSON so lenient port decoding applies
		data, err := json.Marshal(stringKeys(doc))
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML document %d: %w", len(snapshots)+1, err)
		}
		var snap domain.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("failed to parse YAML snapshot %d: %w", len(snapshots)+1, err)
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// stringKeys rewrites mappings decoded with non-string keys, such as a
// process named 8080 or true, so the document can be encoded as JSON.
func stringKeys(v any) any {
	switch val := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = stringKeys(item)
		}
		return out
	case map[string]any:
		for k, item := range val {
			val[k] = stringKeys(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = stringKeys(item)
		}
		return val
	default:
		return v
	}
}

// Export exports the graph to YAML verbatim
func (c *YAMLCodec) Export(graph *domain.Graph, w io.Writer) error {
	yg := yamlGraph{
		Nodes: make([]yamlNode, 0, len(graph.Nodes)),
		Edges: make([]yamlEdge, 0, len(graph.Edges)),
	}

	// Convert nodes
	for _, node := range graph.Nodes {
		yn := yamlNode{
			ID:    node.ID.String(),
			Label: node.Label,
			Kind:  string(node.Kind),
		}
		if node.Parent != nil {
			yn.Parent = node.Parent.String()
		}
		yg.Nodes = append(yg.Nodes, yn)
	}

	// Convert edges
	for _, edge := range graph.Edges {
		yg.Edges = append(yg.Edges, yamlEdge{
			ID:     string(edge.ID),
			Source: edge.Source.String(),
			Target: edge.Target.String(),
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(yg); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
