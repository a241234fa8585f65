package export

import (
	"fmt"
	"io"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export writes the transcript as a readable Markdown document. Images
// are referenced, code goes into fenced blocks, chart payloads are noted
// rather than inlined.
func (e *MarkdownExporter) Export(t *Transcript, w io.Writer) error {
	title := t.Title
	if title == "" {
		title = t.SessionID
	}
	_, _ = fmt.Fprintf(w, "# Session %s\n\n", title)
	_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", t.ExportedAt.Format("2006-01-02 15:04:05"))
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(t.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range t.Messages {
		_, _ = fmt.Fprintf(w, "**%s** (%s)\n\n", msg.Role, msg.Modality)
		if msg.Content != "" {
			_, _ = fmt.Fprintf(w, "%s\n\n", msg.Content)
		}
		for j, url := range msg.ImageURLs {
			if len(url) > 120 {
				_, _ = fmt.Fprintf(w, "*[image %d: %d bytes inline]*\n\n", j+1, len(url))
			} else {
				_, _ = fmt.Fprintf(w, "![image %d](%s)\n\n", j+1, url)
			}
		}
		if msg.Code != "" {
			_, _ = fmt.Fprintf(w, "```python\n%s\n```\n\n", msg.Code)
		}
		if msg.Artifact != nil {
			if msg.Artifact.Chart != "" {
				_, _ = fmt.Fprintf(w, "*[chart artifact, %d bytes]*\n\n", len(msg.Artifact.Chart))
			}
			if msg.Artifact.Text != "" {
				_, _ = fmt.Fprintf(w, "%s\n\n", msg.Artifact.Text)
			}
		}
		if i < len(t.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
