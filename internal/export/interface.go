package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Hari31416/multimodal-chatbot/internal/chat"
)

// Transcript is a locally exportable copy of one remote session, built
// from the normalized message model.
type Transcript struct {
	SessionID  string         `json:"sessionId" yaml:"sessionId"`
	Title      string         `json:"title,omitempty" yaml:"title,omitempty"`
	ExportedAt time.Time      `json:"exportedAt" yaml:"exportedAt"`
	Messages   []chat.Message `json:"messages" yaml:"messages"`
}

// Exporter defines the interface for all export formats
type Exporter interface {
	Export(t *Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "json":
		return &JSONExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md)", format)
	}
}
