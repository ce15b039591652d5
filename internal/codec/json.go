package codec

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"dockerdash/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type of exported documents
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse imports snapshots from JSON. It accepts a single snapshot object, a
// stream of concatenated objects, or an array of objects.
func (c *JSONCodec) Parse(r io.Reader) ([]domain.Snapshot, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Snapshot{}, nil
		}
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}

	decoder := json.NewDecoder(br)
	if first == '[' {
		var snapshots []domain.Snapshot
		if err := decoder.Decode(&snapshots); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		return snapshots, nil
	}

	snapshots := make([]domain.Snapshot, 0, 1)
	for {
		var snap domain.Snapshot
		err := decoder.Decode(&snap)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse JSON snapshot %d: %w", len(snapshots)+1, err)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// Export exports the graph to JSON verbatim
func (c *JSONCodec) Export(graph *domain.Graph, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(graph); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// peekNonSpace returns the first non-whitespace byte without consuming it
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
