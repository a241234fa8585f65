package export

import (
	"encoding/json"
	"io"
)

// JSONExporter exports transcripts as indented JSON
type JSONExporter struct{}

// Export writes the transcript as one JSON document
func (e *JSONExporter) Export(t *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
