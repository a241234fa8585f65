package chat

import (
	"context"
	"sync"
	"time"

	"github.com/Hari31416/multimodal-chatbot/internal/api"
	"github.com/Hari31416/multimodal-chatbot/internal/observe"
	"github.com/Hari31416/multimodal-chatbot/internal/ui"
)

// Backend is the remote chat service as this client sees it. api.Client
// implements it; tests substitute stubs.
type Backend interface {
	CreateSession(ctx context.Context) (string, error)
	ListSessions(ctx context.Context) ([]api.SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) ([]api.RawMessage, error)
	DeleteSession(ctx context.Context, sessionID string) error
	SendChat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	UploadImage(ctx context.Context, up api.ImageUpload) (*api.ImageUploadResult, error)
	UploadCSV(ctx context.Context, up api.CSVUpload) (*api.CSVUploadResult, error)
	DeleteArtifact(ctx context.Context, artifactID, sessionID string) error
}

// SessionRecorder remembers the last active session so a new run can
// resume it. Implemented by the local store; optional.
type SessionRecorder interface {
	SetLastSession(id string) error
	LastSession() (string, error)
}

// DefaultListTTL bounds how long a cached session list is served.
const DefaultListTTL = 60 * time.Second

// DefaultSendTimeout caps one chat round trip so an unresponsive backend
// resolves into the failure path instead of leaving pending set forever.
const DefaultSendTimeout = 2 * time.Minute

// Controller owns the chat state machine: session lifecycle, uploads and
// send orchestration. Remote responses that land after a session switch
// or new-chat are discarded via a monotonically increasing epoch.
type Controller struct {
	backend  Backend
	obs      *observe.Observer
	state    *State
	recorder SessionRecorder
	ui       ui.UI

	listTTL     time.Duration
	sendTimeout time.Duration
	now         func() time.Time

	mu    sync.Mutex
	epoch uint64
	cache sessionCache
}

// Option configures a Controller.
type Option func(*Controller)

// WithRecorder attaches a local last-session recorder.
func WithRecorder(r SessionRecorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithListTTL overrides the session-list cache TTL.
func WithListTTL(ttl time.Duration) Option {
	return func(c *Controller) { c.listTTL = ttl }
}

// WithSendTimeout overrides the per-send deadline. Zero disables it.
func WithSendTimeout(d time.Duration) Option {
	return func(c *Controller) { c.sendTimeout = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// NewController creates a chat controller over the given backend.
func NewController(backend Backend, obs *observe.Observer, opts ...Option) *Controller {
	c := &Controller{
		backend:     backend,
		obs:         obs,
		state:       NewState(),
		ui:          ui.SilentUI{},
		listTTL:     DefaultListTTL,
		sendTimeout: DefaultSendTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUI attaches a UI notifier for status and upload-progress events.
func (c *Controller) SetUI(u ui.UI) {
	if u != nil {
		c.ui = u
	}
}

// State exposes the canonical chat state for rendering.
func (c *Controller) State() *State {
	return c.state
}

// currentEpoch reads the session epoch a logical operation belongs to.
func (c *Controller) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// bumpEpoch invalidates every in-flight operation started before a
// session switch or new-chat.
func (c *Controller) bumpEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	return c.epoch
}

// stale reports whether an operation's epoch has been superseded; its
// result must then be discarded rather than applied to the new session.
func (c *Controller) stale(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch != epoch
}

// recordSession persists the active session id for resumption; failures
// are logged, never surfaced.
func (c *Controller) recordSession(id string) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.SetLastSession(id); err != nil {
		c.obs.Log().Warn().Err(err).Msg("failed to record active session")
	}
}
