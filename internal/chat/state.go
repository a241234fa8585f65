package chat

import "sync"

// State is the canonical in-memory chat state every component reads and
// mutates through setters. It holds no derived computation beyond the
// hasImages flag, which is maintained strictly as "image list non-empty"
// and never set independently.
type State struct {
	mu sync.RWMutex

	messages  []Message
	input     string
	pending   bool
	errMsg    string
	sessionID string

	dataset     Dataset
	images      []UploadedImage
	csv         *UploadedCSV
	artifactIDs []string
	hasImages   bool

	progress map[string]int
}

// NewState creates an empty chat state.
func NewState() *State {
	return &State{
		progress: make(map[string]int),
	}
}

// Snapshot is a consistent copy of the full state for rendering.
type Snapshot struct {
	Messages    []Message
	Input       string
	Pending     bool
	Error       string
	SessionID   string
	Dataset     Dataset
	Images      []UploadedImage
	CSV         *UploadedCSV
	ArtifactIDs []string
	HasImages   bool
	Progress    map[string]int
}

// Snapshot returns a copy of the whole state taken under one lock.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Messages:    append([]Message(nil), s.messages...),
		Input:       s.input,
		Pending:     s.pending,
		Error:       s.errMsg,
		SessionID:   s.sessionID,
		Dataset:     s.dataset,
		Images:      append([]UploadedImage(nil), s.images...),
		ArtifactIDs: append([]string(nil), s.artifactIDs...),
		HasImages:   s.hasImages,
		Progress:    make(map[string]int, len(s.progress)),
	}
	if s.csv != nil {
		csv := *s.csv
		snap.CSV = &csv
	}
	for k, v := range s.progress {
		snap.Progress[k] = v
	}
	return snap
}

// SessionID returns the active session id, empty when none exists.
func (s *State) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// SetSessionID installs the active session id.
func (s *State) SetSessionID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
}

// Messages returns a copy of the message list.
func (s *State) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.messages...)
}

// AppendMessage adds one message to the transcript.
func (s *State) AppendMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
}

// SetInput replaces the draft input text.
func (s *State) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input = text
}

// Input returns the draft input text.
func (s *State) Input() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.input
}

// SetPending flips the in-flight-send flag.
func (s *State) SetPending(p bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = p
}

// Pending reports whether a send is in flight.
func (s *State) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending
}

// SetError installs the user-visible error string. It is cleared at the
// start of every new operation, never automatically.
func (s *State) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = msg
}

// Error returns the last user-visible error string.
func (s *State) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// AddImage stages an uploaded image artifact and records its id.
func (s *State) AddImage(img UploadedImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
	s.artifactIDs = append(s.artifactIDs, img.ArtifactID)
	s.hasImages = len(s.images) > 0
}

// SetCSV stages an uploaded CSV artifact with its dataset preview and
// records its id.
func (s *State) SetCSV(csv *UploadedCSV, ds Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.csv = csv
	s.dataset = ds
	if csv != nil {
		s.artifactIDs = append(s.artifactIDs, csv.ArtifactID)
	}
}

// Dataset returns the staged dataset preview.
func (s *State) Dataset() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// HasImages reports whether any image artifact is staged.
func (s *State) HasImages() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasImages
}

// RemoveArtifact drops one staged artifact by id and recomputes the
// derived flags. Called only after the remote delete succeeded.
func (s *State) RemoveArtifact(artifactID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.images[:0]
	for _, img := range s.images {
		if img.ArtifactID != artifactID {
			kept = append(kept, img)
		}
	}
	s.images = kept
	s.hasImages = len(s.images) > 0

	if s.csv != nil && s.csv.ArtifactID == artifactID {
		s.csv = nil
		s.dataset = Dataset{}
	}

	ids := s.artifactIDs[:0]
	for _, id := range s.artifactIDs {
		if id != artifactID {
			ids = append(ids, id)
		}
	}
	s.artifactIDs = ids
}

// TakeStaged atomically snapshots and clears everything staged for the
// next send: images, the CSV artifact and the artifact-id list. Staged
// attachments are consumed exactly once per send.
func (s *State) TakeStaged() (images []UploadedImage, csv *UploadedCSV, artifactIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	images = s.images
	csv = s.csv
	artifactIDs = s.artifactIDs

	s.images = nil
	s.csv = nil
	s.artifactIDs = nil
	s.hasImages = false
	s.input = ""
	return images, csv, artifactIDs
}

// SetProgress records the upload percentage for one file.
func (s *State) SetProgress(file string, pct int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[file] = pct
}

// ClearProgress removes a file's progress entry. Entries are removed on
// completion or error, never left at 100.
func (s *State) ClearProgress(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.progress, file)
}

// ClearAllProgress empties the progress map (batch abort).
func (s *State) ClearAllProgress() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress = make(map[string]int)
}

// ResetForSession atomically installs a new session id, its messages and
// its history-derived dataset while clearing every draft field: input,
// error, pending, staged uploads, artifact ids and upload progress. A
// reader never observes old messages with the new session id.
func (s *State) ResetForSession(sessionID string, messages []Message, ds Dataset, csv *UploadedCSV) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionID = sessionID
	s.messages = messages
	s.input = ""
	s.errMsg = ""
	s.pending = false
	s.dataset = ds
	s.csv = csv
	s.images = nil
	s.artifactIDs = nil
	s.hasImages = false
	s.progress = make(map[string]int)
}
