package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/Hari31416/multimodal-chatbot/internal/observe"
)

// Client talks to the chat backend over HTTP. All remote state (sessions,
// messages, artifacts) lives behind this boundary; the client never
// interprets payloads beyond decoding the documented response shapes.
type Client struct {
	baseURL string
	userID  string
	http    *http.Client
	obs     *observe.Observer
}

// New creates a backend client. userID scopes every call; the backend
// uses it for session ownership checks.
func New(baseURL, userID string, obs *observe.Observer) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		http:    &http.Client{},
		obs:     obs,
	}
}

// SetHTTPClient replaces the underlying HTTP client (tests, custom
// transports).
func (c *Client) SetHTTPClient(h *http.Client) {
	c.http = h
}

// Health pings the backend.
func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	if err := c.getJSON(ctx, "Health", "/health", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return &Error{Op: "Health", Detail: resp.Status, StatusCode: http.StatusOK}
	}
	return nil
}

// CreateSession asks the backend for a fresh session and returns its id.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	ctx, span := c.obs.StartSpan(ctx, "api.CreateSession")
	defer span.End()

	var resp createSessionResponse
	if err := c.getJSON(ctx, "CreateSession", "/sessions/new", nil, &resp); err != nil {
		return "", err
	}
	c.obs.Log().Debug().Str("sessionID", resp.SessionID).Msg("session created")
	return resp.SessionID, nil
}

// ListSessions returns the summaries of every session owned by the user.
func (c *Client) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	ctx, span := c.obs.StartSpan(ctx, "api.ListSessions")
	defer span.End()

	var resp listSessionsResponse
	if err := c.getJSON(ctx, "ListSessions", "/sessions/list", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// GetSession fetches the full message history of a session.
func (c *Client) GetSession(ctx context.Context, sessionID string) ([]RawMessage, error) {
	ctx, span := c.obs.StartSpan(ctx, "api.GetSession")
	defer span.End()

	var resp sessionResponse
	if err := c.getJSON(ctx, "GetSession", "/sessions/"+url.PathEscape(sessionID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// DeleteSession removes a session and everything it owns.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	ctx, span := c.obs.StartSpan(ctx, "api.DeleteSession")
	defer span.End()

	var resp deleteSessionResponse
	return c.doJSON(ctx, "DeleteSession", http.MethodDelete,
		"/sessions/delete/"+url.PathEscape(sessionID), nil, nil, &resp)
}

// DeleteArtifact removes a stored artifact from its session.
func (c *Client) DeleteArtifact(ctx context.Context, artifactID, sessionID string) error {
	ctx, span := c.obs.StartSpan(ctx, "api.DeleteArtifact")
	defer span.End()

	q := url.Values{"session_id": {sessionID}}
	var resp deleteSessionResponse
	return c.doJSON(ctx, "DeleteArtifact", http.MethodDelete,
		"/artifacts/"+url.PathEscape(artifactID), q, nil, &resp)
}

// SendChat submits one user turn and returns the assistant reply. Both
// SessionID and ArtifactIDs are optional on the wire.
func (c *Client) SendChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	ctx, span := c.obs.StartSpan(ctx, "api.SendChat")
	defer span.End()

	form := url.Values{
		"message": {req.Message},
		"user_id": {c.userID},
	}
	if req.SessionID != "" {
		form.Set("session_id", req.SessionID)
	}
	if len(req.ArtifactIDs) > 0 {
		form.Set("artifact_ids", strings.Join(req.ArtifactIDs, ","))
	}

	body := strings.NewReader(form.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/send", body)
	if err != nil {
		return nil, &Error{Op: "SendChat", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp ChatResponse
	if err := c.roundTrip("SendChat", httpReq, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadImage transfers one image file and returns the stored artifact
// record. Progress (when set) observes request-body bytes.
func (c *Client) UploadImage(ctx context.Context, up ImageUpload) (*ImageUploadResult, error) {
	ctx, span := c.obs.StartSpan(ctx, "api.UploadImage")
	defer span.End()

	fields := map[string]string{
		"sessionId": up.SessionID,
		"userId":    c.userID,
	}
	if up.Caption != "" {
		fields["caption"] = up.Caption
	}

	var resp ImageUploadResult
	if err := c.uploadFile(ctx, "UploadImage", "/upload/image", up.FileName, up.Data, fields, up.Progress, &resp); err != nil {
		return nil, err
	}
	c.obs.Log().Debug().Str("artifactID", resp.ArtifactID).Str("file", up.FileName).Msg("image uploaded")
	return &resp, nil
}

// UploadCSV transfers one CSV file and returns the stored artifact record.
func (c *Client) UploadCSV(ctx context.Context, up CSVUpload) (*CSVUploadResult, error) {
	ctx, span := c.obs.StartSpan(ctx, "api.UploadCSV")
	defer span.End()

	fields := map[string]string{
		"sessionId": up.SessionID,
		"userId":    c.userID,
	}
	if up.Description != "" {
		fields["description"] = up.Description
	}

	var resp CSVUploadResult
	if err := c.uploadFile(ctx, "UploadCSV", "/upload/csv", up.FileName, up.Data, fields, up.Progress, &resp); err != nil {
		return nil, err
	}
	c.obs.Log().Debug().Str("artifactID", resp.ArtifactID).Str("file", up.FileName).Msg("csv uploaded")
	return &resp, nil
}

// uploadFile builds a multipart body and streams it through a progress
// reader so callers see byte-level transfer percentages.
func (c *Client) uploadFile(ctx context.Context, op, path, fileName string, data []byte, fields map[string]string, progress func(int), out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	if _, err := fw.Write(data); err != nil {
		return &Error{Op: op, Err: err}
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return &Error{Op: op, Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return &Error{Op: op, Err: err}
	}

	total := int64(buf.Len())
	body := newProgressReader(&buf, total, progress)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.ContentLength = total

	return c.roundTrip(op, req, out)
}

// getJSON issues a GET with the user_id query parameter appended.
func (c *Client) getJSON(ctx context.Context, op, path string, q url.Values, out any) error {
	return c.doJSON(ctx, op, http.MethodGet, path, q, nil, out)
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, q url.Values, body io.Reader, out any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("user_id", c.userID)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+q.Encode(), body)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	return c.roundTrip(op, req, out)
}

func (c *Client) roundTrip(op string, req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &Error{Op: op, StatusCode: resp.StatusCode, Detail: errorDetail(detail)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// errorDetail extracts FastAPI-style {"detail": "..."} bodies, falling
// back to the raw text.
func errorDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return strings.TrimSpace(string(body))
}
