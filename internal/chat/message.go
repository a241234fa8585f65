package chat

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies the sender of a normalized message. History messages
// with any other role are dropped before normalization.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Modality classifies a message for rendering: plain text, a vision turn
// (images present), or a data-analysis turn (code/chart present).
type Modality string

const (
	ModalityText   Modality = "text"
	ModalityVision Modality = "vision"
	ModalityData   Modality = "data"
)

// ArtifactBundle carries at most one chart and one text payload per
// message. Raw mirrors the chart payload; IsMime marks chart data that is
// an encoded image rather than a JSON figure spec.
type ArtifactBundle struct {
	Chart  string `json:"chart,omitempty" yaml:"chart,omitempty"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
	Raw    string `json:"raw,omitempty" yaml:"raw,omitempty"`
	IsMime bool   `json:"isMime,omitempty" yaml:"isMime,omitempty"`
}

// Message is the client-normalized message model every renderer consumes.
// Messages are immutable once created; a retry issues a new send with the
// old content instead of mutating history.
type Message struct {
	ID       string   `json:"id" yaml:"id"`
	Role     Role     `json:"role" yaml:"role"`
	Content  string   `json:"content" yaml:"content"`
	Modality Modality `json:"modality" yaml:"modality"`
	// ImageURL is always ImageURLs[0] when both are set; it exists for
	// renderers that predate multi-image messages.
	ImageURL  string          `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	ImageURLs []string        `json:"imageUrls,omitempty" yaml:"imageUrls,omitempty"`
	Code      string          `json:"code,omitempty" yaml:"code,omitempty"`
	Artifact  *ArtifactBundle `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
}

// UploadedImage is a staged image attachment: uploaded, not yet attached
// to a sent message. The base64 payload stays in memory for preview.
type UploadedImage struct {
	ArtifactID  string
	Data        string
	FileName    string
	Description string
	Format      string
	Width       int
	Height      int
}

// UploadedCSV is a staged (or history-loaded) tabular attachment.
type UploadedCSV struct {
	ArtifactID  string
	FileName    string
	Description string
	Columns     []string
	NumRows     int
}

// Dataset is the preview of the currently staged CSV: header columns plus
// at most five rows.
type Dataset struct {
	Columns []string
	Head    [][]string
	NumRows int
}

// Empty reports whether no dataset is staged.
func (d Dataset) Empty() bool {
	return len(d.Columns) == 0
}

// historyMessageID derives a deterministic id for a history-loaded
// message from its session and position.
func historyMessageID(sessionID string, index int) string {
	return fmt.Sprintf("%s_msg_%d", sessionID, index)
}

// localMessageID generates an id for an optimistic local message. The
// timestamp plus random suffix keeps it out of the history id space.
func localMessageID() string {
	return fmt.Sprintf("message_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
