package codec

import (
	"fmt"
	"io"

	"dockerdash/internal/domain"
)

// Importer interface for importing snapshots from various formats
type Importer interface {
	Parse(r io.Reader) ([]domain.Snapshot, error)
	Format() string
}

// Exporter interface for exporting the rendered graph to various formats
type Exporter interface {
	Export(graph *domain.Graph, w io.Writer) error
	Format() string
	ContentType() string
}

// ExporterFor returns the exporter registered for format
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// ImporterFor returns the importer registered for format
func ImporterFor(format string) (Importer, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
