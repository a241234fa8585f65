package chat

import "fmt"

// SessionCreationError means the backend refused to mint a session.
// Fatal for uploads, artifact removal and new-chat; plain text sends
// degrade to sessionless chat instead.
type SessionCreationError struct {
	Err error
}

func (e *SessionCreationError) Error() string {
	return fmt.Sprintf("session creation failed: %v", e.Err)
}

func (e *SessionCreationError) Unwrap() error {
	return e.Err
}

// UploadTransportError is a failed file transfer. For batches it also
// aborts every queued file after the failing one.
type UploadTransportError struct {
	FileName string
	Err      error
}

func (e *UploadTransportError) Error() string {
	return fmt.Sprintf("upload failed [%s]: %v", e.FileName, e.Err)
}

func (e *UploadTransportError) Unwrap() error {
	return e.Err
}

// RemoteCallError is a failed chat/analysis call. The send orchestrator
// absorbs it into a synthetic assistant message instead of propagating.
type RemoteCallError struct {
	Op  string
	Err error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call failed [%s]: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// ArtifactDeleteError means the remote delete failed; local state is left
// untouched so the user can retry.
type ArtifactDeleteError struct {
	ArtifactID string
	Err        error
}

func (e *ArtifactDeleteError) Error() string {
	return fmt.Sprintf("artifact delete failed [%s]: %v", e.ArtifactID, e.Err)
}

func (e *ArtifactDeleteError) Unwrap() error {
	return e.Err
}

// HistoryDecodeError is a malformed artifact payload found while
// converting history. The offending artifact is skipped, not fatal.
type HistoryDecodeError struct {
	ArtifactID string
	Err        error
}

func (e *HistoryDecodeError) Error() string {
	return fmt.Sprintf("history decode failed [%s]: %v", e.ArtifactID, e.Err)
}

func (e *HistoryDecodeError) Unwrap() error {
	return e.Err
}
