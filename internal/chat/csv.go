package chat

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// datasetHeadRows caps the preview at the first rows of the file, the
// same window the backend shows the model.
const datasetHeadRows = 5

// parseCSVPreview builds a dataset preview from raw CSV text: first
// non-blank line is the header, the next rows (up to datasetHeadRows) are
// the head, and NumRows counts every data line in the file. Cells are
// comma-split with surrounding quotes stripped; this is deliberately the
// same naive rule the preview pane has always used, not a full CSV
// parser.
func parseCSVPreview(text string) (Dataset, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return Dataset{}, fmt.Errorf("empty csv")
	}

	ds := Dataset{
		Columns: splitCSVLine(lines[0]),
		NumRows: len(lines) - 1,
	}
	for _, line := range lines[1:] {
		if len(ds.Head) == datasetHeadRows {
			break
		}
		ds.Head = append(ds.Head, splitCSVLine(line))
	}
	return ds, nil
}

// decodeCSVArtifact decodes a base64 CSV artifact payload and parses the
// preview out of it.
func decodeCSVArtifact(data string) (Dataset, string, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Dataset{}, "", fmt.Errorf("decoding csv payload: %w", err)
	}
	ds, err := parseCSVPreview(string(raw))
	if err != nil {
		return Dataset{}, "", err
	}
	return ds, string(raw), nil
}

func splitCSVLine(line string) []string {
	parts := strings.Split(line, ",")
	cells := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `"`)
		cells[i] = strings.Trim(p, `'`)
	}
	return cells
}
