package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Hari31416/multimodal-chatbot/internal/api"
)

// stagedModality derives the outgoing user-message modality from what is
// staged: vision when any image artifact is staged, data when a dataset
// is staged, text otherwise. Note this inspects presence, not artifact
// type, so a staged CSV plus a plain question still tags the turn as
// data; the behavior is kept intentionally and isolated here so it can
// be corrected in one place.
func stagedModality(images []UploadedImage, dataset Dataset) Modality {
	if len(images) > 0 {
		return ModalityVision
	}
	if !dataset.Empty() {
		return ModalityData
	}
	return ModalityText
}

// Send submits one user turn: stages an optimistic user message, consumes
// every staged attachment exactly once, awaits the assistant reply and
// appends its normalized form. Failures of any kind are absorbed into a
// synthetic assistant message; Send never propagates the remote error to
// the render path.
func (c *Controller) Send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	ctx, span := c.obs.StartSpan(ctx, "chat.Send")
	defer span.End()

	c.state.SetError("")
	epoch := c.currentEpoch()

	sessionID, err := c.EnsureSession(ctx)
	if err != nil {
		// Plain text chat tolerates a missing session; attachment and
		// analysis turns have per-session state and do not.
		if c.state.HasImages() || !c.state.Dataset().Empty() {
			c.state.SetError(err.Error())
			return
		}
		c.obs.Log().Warn().Err(err).Msg("sending without a session")
		sessionID = ""
	}

	dataset := c.state.Dataset()
	images, _, artifactIDs := c.state.TakeStaged()
	userModality := stagedModality(images, dataset)

	userMsg := Message{
		ID:        localMessageID(),
		Role:      RoleUser,
		Content:   text,
		Modality:  userModality,
		Timestamp: time.Now(),
	}
	if len(images) > 0 {
		urls := make([]string, len(images))
		for i, img := range images {
			urls[i] = imageRef(api.Artifact{
				Kind:   api.ArtifactImage,
				Data:   img.Data,
				Format: img.Format,
			})
		}
		userMsg.ImageURLs = urls
		userMsg.ImageURL = urls[0]
	}
	c.state.AppendMessage(userMsg)
	c.state.SetPending(true)
	defer c.state.SetPending(false)
	c.ui.Status("waiting for reply")

	if c.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.sendTimeout)
		defer cancel()
	}

	resp, err := c.backend.SendChat(ctx, api.ChatRequest{
		Message:     text,
		SessionID:   sessionID,
		ArtifactIDs: artifactIDs,
	})
	if c.stale(epoch) {
		c.obs.Log().Debug().Msg("discarding reply that arrived after session change")
		return
	}
	if err != nil {
		rerr := &RemoteCallError{Op: "SendChat", Err: err}
		c.obs.Log().Error().Err(err).Msg("chat call failed")
		c.state.AppendMessage(Message{
			ID:        localMessageID(),
			Role:      RoleAssistant,
			Content:   "Error: " + errorText(err),
			Modality:  ModalityText,
			Timestamp: time.Now(),
		})
		c.state.SetError(rerr.Error())
		return
	}

	reply := Message{
		ID:        localMessageID(),
		Role:      RoleAssistant,
		Content:   resp.Content,
		Modality:  ModalityText,
		Timestamp: time.Now(),
	}
	applyArtifacts(&reply, resp.Artifacts)

	// A turn that attached artifacts while the user side was a vision
	// turn stays a vision turn, whatever the response artifacts implied.
	if len(artifactIDs) > 0 && userModality == ModalityVision {
		reply.Modality = ModalityVision
	}

	c.state.AppendMessage(reply)
	c.obs.Log().Info().
		Str("modality", string(reply.Modality)).
		Int("artifacts", len(resp.Artifacts)).
		Msg("assistant reply appended")
}

// errorText unwraps api errors down to the human-readable part.
func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		if apiErr.Err != nil {
			return apiErr.Err.Error()
		}
	}
	return err.Error()
}
