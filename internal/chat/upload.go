package chat

import (
	"context"
	"errors"

	"github.com/Hari31416/multimodal-chatbot/internal/api"
)

// UploadFile is one local file queued for transfer.
type UploadFile struct {
	Name    string
	Data    []byte
	Caption string
}

// UploadImages transfers image files sequentially. A session is required:
// artifacts must be anchored somewhere, so a creation failure aborts the
// whole batch. The first transfer failure aborts the remaining files and
// clears every progress entry.
func (c *Controller) UploadImages(ctx context.Context, files []UploadFile) error {
	ctx, span := c.obs.StartSpan(ctx, "chat.UploadImages")
	defer span.End()

	c.state.SetError("")
	epoch := c.currentEpoch()

	sessionID, err := c.EnsureSession(ctx)
	if err != nil {
		c.state.SetError(err.Error())
		return err
	}

	for _, f := range files {
		if err := c.uploadOneImage(ctx, sessionID, f, epoch); err != nil {
			if IsSuperseded(err) {
				// The session changed mid-transfer; the new session's
				// state must not observe this batch at all.
				return err
			}
			c.state.ClearAllProgress()
			c.state.SetError(err.Error())
			return err
		}
	}
	return nil
}

func (c *Controller) uploadOneImage(ctx context.Context, sessionID string, f UploadFile, epoch uint64) error {
	defer c.state.ClearProgress(f.Name)

	result, err := c.backend.UploadImage(ctx, api.ImageUpload{
		SessionID: sessionID,
		FileName:  f.Name,
		Data:      f.Data,
		Caption:   f.Caption,
		Progress: func(pct int) {
			c.state.SetProgress(f.Name, pct)
			c.ui.Progress(f.Name, pct)
		},
	})
	if err != nil {
		return &UploadTransportError{FileName: f.Name, Err: err}
	}
	if c.stale(epoch) {
		c.obs.Log().Debug().Str("file", f.Name).Msg("discarding upload finished after session switch")
		return errSuperseded
	}

	c.state.AddImage(UploadedImage{
		ArtifactID:  result.ArtifactID,
		Data:        result.Data,
		FileName:    f.Name,
		Description: result.Description,
		Format:      result.Format,
		Width:       result.Width,
		Height:      result.Height,
	})
	c.obs.Log().Info().Str("file", f.Name).Str("artifactID", result.ArtifactID).Msg("image staged")
	return nil
}

// UploadCSV transfers one CSV file, stages its artifact record and
// populates the dataset preview from a local decode of the response.
func (c *Controller) UploadCSV(ctx context.Context, f UploadFile) error {
	ctx, span := c.obs.StartSpan(ctx, "chat.UploadCSV")
	defer span.End()

	c.state.SetError("")
	epoch := c.currentEpoch()

	sessionID, err := c.EnsureSession(ctx)
	if err != nil {
		c.state.SetError(err.Error())
		return err
	}

	defer c.state.ClearProgress(f.Name)

	result, err := c.backend.UploadCSV(ctx, api.CSVUpload{
		SessionID:   sessionID,
		FileName:    f.Name,
		Data:        f.Data,
		Description: f.Caption,
		Progress: func(pct int) {
			c.state.SetProgress(f.Name, pct)
			c.ui.Progress(f.Name, pct)
		},
	})
	if err != nil {
		uerr := &UploadTransportError{FileName: f.Name, Err: err}
		c.state.SetError(uerr.Error())
		return uerr
	}
	if c.stale(epoch) {
		c.obs.Log().Debug().Str("file", f.Name).Msg("discarding upload finished after session switch")
		return errSuperseded
	}

	ds, _, derr := decodeCSVArtifact(result.Data)
	if derr != nil {
		// Fall back to whatever the server reported; preview stays
		// empty but the artifact is still staged and attachable.
		c.obs.Log().Warn().Err(derr).Str("file", f.Name).Msg("csv preview decode failed")
		ds = Dataset{Columns: result.Columns, NumRows: result.NumRows}
	}

	c.state.SetCSV(&UploadedCSV{
		ArtifactID:  result.ArtifactID,
		FileName:    f.Name,
		Description: result.Description,
		Columns:     ds.Columns,
		NumRows:     ds.NumRows,
	}, ds)
	c.obs.Log().Info().Str("file", f.Name).Str("artifactID", result.ArtifactID).Int("rows", ds.NumRows).Msg("csv staged")
	return nil
}

// RemoveArtifact deletes a staged artifact remotely, then locally. A
// missing session is a recoverable precondition: one is created just to
// scope the delete call. Local state never changes unless the remote
// delete succeeded.
func (c *Controller) RemoveArtifact(ctx context.Context, artifactID string) error {
	ctx, span := c.obs.StartSpan(ctx, "chat.RemoveArtifact")
	defer span.End()

	c.state.SetError("")

	sessionID, err := c.EnsureSession(ctx)
	if err != nil {
		c.state.SetError(err.Error())
		return err
	}

	if err := c.backend.DeleteArtifact(ctx, artifactID, sessionID); err != nil {
		derr := &ArtifactDeleteError{ArtifactID: artifactID, Err: err}
		c.state.SetError(derr.Error())
		return derr
	}

	c.state.RemoveArtifact(artifactID)
	c.obs.Log().Info().Str("artifactID", artifactID).Msg("artifact removed")
	return nil
}

// errSuperseded marks results discarded because a session switch or
// new-chat happened while the call was in flight.
var errSuperseded = errors.New("operation superseded by session change")

// IsSuperseded reports whether an error only means the operation's result
// was discarded after a session change.
func IsSuperseded(err error) bool {
	return errors.Is(err, errSuperseded)
}
