package chat

import (
	"context"
	"time"

	"github.com/Hari31416/multimodal-chatbot/internal/api"
)

// sessionCache holds one fetched session list with its fetch time; a
// pure staleness predicate replaces ad hoc timestamp comparisons.
type sessionCache struct {
	sessions  []api.SessionInfo
	fetchedAt time.Time
}

func (sc sessionCache) isStale(now time.Time, ttl time.Duration) bool {
	if len(sc.sessions) == 0 {
		return true
	}
	return now.Sub(sc.fetchedAt) > ttl
}

// EnsureSession returns the active session id, creating a remote session
// first when none exists. A creation failure is a SessionCreationError;
// upload and artifact flows must abort on it, while plain text sends may
// proceed sessionless.
func (c *Controller) EnsureSession(ctx context.Context) (string, error) {
	if id := c.state.SessionID(); id != "" {
		return id, nil
	}

	id, err := c.backend.CreateSession(ctx)
	if err != nil {
		return "", &SessionCreationError{Err: err}
	}
	c.state.SetSessionID(id)
	c.recordSession(id)
	c.obs.Log().Info().Str("sessionID", id).Msg("session created lazily")
	return id, nil
}

// NewChat resets every draft and message field, then force-creates a
// fresh session even if one was active. On failure the active id stays
// empty and the error is surfaced in state.
func (c *Controller) NewChat(ctx context.Context) error {
	ctx, span := c.obs.StartSpan(ctx, "chat.NewChat")
	defer span.End()

	c.bumpEpoch()
	c.state.ResetForSession("", nil, Dataset{}, nil)

	id, err := c.backend.CreateSession(ctx)
	if err != nil {
		cerr := &SessionCreationError{Err: err}
		c.state.SetError(cerr.Error())
		c.obs.Log().Error().Err(err).Msg("new chat: session creation failed")
		return cerr
	}

	c.state.SetSessionID(id)
	c.recordSession(id)
	c.obs.Log().Info().Str("sessionID", id).Msg("new chat started")
	return nil
}

// SwitchTo loads a session's full history, converts it and installs it as
// active. All draft state resets in the same step. Switching to the
// already-active session is valid: messages may be unchanged but drafts
// still reset.
func (c *Controller) SwitchTo(ctx context.Context, sessionID string) error {
	ctx, span := c.obs.StartSpan(ctx, "chat.SwitchTo")
	defer span.End()

	epoch := c.bumpEpoch()

	raws, err := c.backend.GetSession(ctx, sessionID)
	if err != nil {
		c.state.SetError(err.Error())
		return err
	}
	if c.stale(epoch) {
		c.obs.Log().Debug().Str("sessionID", sessionID).Msg("discarding superseded switch")
		return nil
	}

	res := ConvertHistory(sessionID, raws)
	for _, derr := range res.DecodeErrs {
		c.obs.Log().Warn().Err(derr).Msg("skipped undecodable history artifact")
	}
	if len(res.ArtifactIDs) > 0 {
		c.obs.Log().Debug().
			Int("artifacts", len(res.ArtifactIDs)).
			Bool("hasImages", res.HasImages).
			Msg("history artifacts catalogued")
	}

	// The catalogued artifact ids are context only; the post-switch
	// reset clears them along with every other draft field.
	c.state.ResetForSession(sessionID, res.Messages, res.Dataset, res.CSV)
	c.recordSession(sessionID)
	c.obs.Log().Info().Str("sessionID", sessionID).Int("messages", len(res.Messages)).Msg("switched session")
	return nil
}

// DeleteSession removes a session remotely and prunes the list cache.
// Deleting the active session triggers NewChat so the client never holds
// a dangling active id.
func (c *Controller) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, span := c.obs.StartSpan(ctx, "chat.DeleteSession")
	defer span.End()

	c.state.SetError("")

	if err := c.backend.DeleteSession(ctx, sessionID); err != nil {
		c.state.SetError(err.Error())
		return err
	}

	c.mu.Lock()
	kept := c.cache.sessions[:0]
	for _, s := range c.cache.sessions {
		if s.SessionID != sessionID {
			kept = append(kept, s)
		}
	}
	c.cache.sessions = kept
	c.mu.Unlock()

	c.obs.Log().Info().Str("sessionID", sessionID).Msg("session deleted")

	if c.state.SessionID() == sessionID {
		return c.NewChat(ctx)
	}
	return nil
}

// ListSessions returns the session list, served from cache while it is
// younger than the TTL and non-empty. force bypasses the cache. A failed
// refetch leaves the previous cache intact and returns the error.
func (c *Controller) ListSessions(ctx context.Context, force bool) ([]api.SessionInfo, error) {
	ctx, span := c.obs.StartSpan(ctx, "chat.ListSessions")
	defer span.End()

	c.mu.Lock()
	cached := c.cache
	ttl := c.listTTL
	c.mu.Unlock()

	if !force && !cached.isStale(c.now(), ttl) {
		return cached.sessions, nil
	}

	sessions, err := c.backend.ListSessions(ctx)
	if err != nil {
		c.obs.Log().Warn().Err(err).Msg("session list refetch failed, keeping cache")
		return nil, err
	}

	c.mu.Lock()
	c.cache = sessionCache{sessions: sessions, fetchedAt: c.now()}
	c.mu.Unlock()
	return sessions, nil
}
