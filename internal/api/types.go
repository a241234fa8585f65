package api

import "time"

// ArtifactKind discriminates typed artifact payloads on the wire.
type ArtifactKind string

const (
	ArtifactImage ArtifactKind = "image"
	ArtifactCode  ArtifactKind = "code"
	ArtifactChart ArtifactKind = "chart"
	ArtifactText  ArtifactKind = "text"
	ArtifactCSV   ArtifactKind = "csv"
	ArtifactTable ArtifactKind = "table"
)

// Artifact is a single typed payload attached to a message. The backend
// emits "data" for stored artifacts and "content" for inline chat-response
// artifacts; Payload smooths over the difference.
type Artifact struct {
	ArtifactID  string       `json:"artifactId,omitempty"`
	Kind        ArtifactKind `json:"type"`
	Data        string       `json:"data,omitempty"`
	Content     string       `json:"content,omitempty"`
	URL         string       `json:"url,omitempty"`
	Format      string       `json:"format,omitempty"`
	Language    string       `json:"language,omitempty"`
	Description string       `json:"description,omitempty"`
}

// Payload returns whichever payload field the backend populated.
func (a Artifact) Payload() string {
	if a.Data != "" {
		return a.Data
	}
	return a.Content
}

// RawMessage is a message exactly as the backend returns it, before any
// client-side normalization.
type RawMessage struct {
	MessageID string     `json:"messageId,omitempty"`
	Role      string     `json:"role"`
	Content   Content    `json:"content"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
	Timestamp time.Time  `json:"timestamp,omitempty"`
}

// SessionInfo is a brief session summary without messages.
type SessionInfo struct {
	SessionID    string    `json:"sessionId"`
	Title        string    `json:"title,omitempty"`
	NumMessages  int       `json:"numMessages"`
	NumArtifacts int       `json:"numArtifacts"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ChatRequest carries one outgoing user turn.
type ChatRequest struct {
	Message string
	// SessionID may be empty: plain text chat is allowed to proceed
	// without a session.
	SessionID string
	// ArtifactIDs are sent comma-joined when non-empty.
	ArtifactIDs []string
}

// ChatResponse is the assistant reply the client consumes.
type ChatResponse struct {
	Content   string     `json:"content"`
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// ImageUpload describes one image file transfer.
type ImageUpload struct {
	SessionID string
	FileName  string
	Data      []byte
	Caption   string
	// Progress, when set, receives the transfer percentage [0,100]
	// as request bytes go out.
	Progress func(pct int)
}

// ImageUploadResult is the stored-image record the backend returns.
type ImageUploadResult struct {
	ArtifactID    string `json:"artifactId"`
	Data          string `json:"data"`
	Format        string `json:"format,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	ThumbnailData string `json:"thumbnail_data,omitempty"`
	Description   string `json:"description,omitempty"`
}

// CSVUpload describes one CSV file transfer.
type CSVUpload struct {
	SessionID   string
	FileName    string
	Data        []byte
	Description string
	Progress    func(pct int)
}

// CSVUploadResult is the stored-CSV record the backend returns. Data is
// the base64 of the raw CSV text.
type CSVUploadResult struct {
	ArtifactID  string   `json:"artifactId"`
	Data        string   `json:"data"`
	Columns     []string `json:"columns,omitempty"`
	NumRows     int      `json:"num_rows,omitempty"`
	NumColumns  int      `json:"num_columns,omitempty"`
	Description string   `json:"description,omitempty"`
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type listSessionsResponse struct {
	Sessions []SessionInfo `json:"sessions"`
}

type sessionResponse struct {
	SessionID string       `json:"sessionId"`
	Messages  []RawMessage `json:"messages"`
}

type deleteSessionResponse struct {
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}
