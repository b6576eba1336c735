package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sathvik-kandimala-2003/major-project/model"
)

// REST is the session-management API client.
type REST struct {
	base string
	http *http.Client
}

// NewREST builds a REST client for the backend at baseURL.
func NewREST(baseURL string) *REST {
	return &REST{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateSession creates a fresh session; the server seeds it with
// the welcome message.
func (r *REST) CreateSession(ctx context.Context) (model.SessionInfo, error) {
	var info model.SessionInfo
	err := r.do(ctx, http.MethodPost, "/chat/sessions", &info)
	return info, err
}

// GetSession fetches a session with its full transcript.
func (r *REST) GetSession(ctx context.Context, sessionID string) (model.SessionInfo, error) {
	var info model.SessionInfo
	err := r.do(ctx, http.MethodGet, "/chat/sessions/"+sessionID, &info)
	return info, err
}

// DeleteSession removes a session server-side.
func (r *REST) DeleteSession(ctx context.Context, sessionID string) error {
	return r.do(ctx, http.MethodDelete, "/chat/sessions/"+sessionID, nil)
}

// Messages lists a session's messages, newest last. limit <= 0
// fetches everything.
func (r *REST) Messages(ctx context.Context, sessionID string, limit int) ([]model.ChatMessage, error) {
	path := "/chat/sessions/" + sessionID + "/messages"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Messages []model.ChatMessage `json:"messages"`
	}
	if err := r.do(ctx, http.MethodGet, path, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// ListSessions returns all known session ids.
func (r *REST) ListSessions(ctx context.Context) ([]string, error) {
	var out struct {
		SessionIDs []string `json:"session_ids"`
	}
	if err := r.do(ctx, http.MethodGet, "/chat/sessions", &out); err != nil {
		return nil, err
	}
	return out.SessionIDs, nil
}

func (r *REST) do(ctx context.Context, method, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, r.base+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
