package hertzclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sessionreplay/internal/domain/session"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/common/config"
)

var ErrFetchFailed = errors.New("fetch session events failed")

// Fetcher reads a session's event log from GET <base>/api/sessions/{id}/events.
type Fetcher struct {
	baseURL string
	client  *client.Client
}

func New(baseURL string, timeout time.Duration) (*Fetcher, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("fetcher base url is required")
	}
	opts := []config.ClientOption{}
	if timeout > 0 {
		opts = append(opts, client.WithDialTimeout(timeout), client.WithClientReadTimeout(timeout))
	}
	c, err := client.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("new hertz client: %w", err)
	}
	return &Fetcher{baseURL: base, client: c}, nil
}

type eventsResponse struct {
	Events []eventDTO `json:"events"`
}

type eventDTO struct {
	ID           string          `json:"id"`
	SessionID    string          `json:"session_id"`
	Timestamp    string          `json:"timestamp"`
	EventType    string          `json:"event_type"`
	EventPayload json.RawMessage `json:"event_payload"`
	WorkspaceDir string          `json:"workspace_dir"`
}

func (f *Fetcher) FetchEvents(ctx context.Context, sessionID string) ([]session.Event, error) {
	endpoint := f.baseURL + "/api/sessions/" + url.PathEscape(sessionID) + "/events"
	status, body, err := f.client.Get(ctx, nil, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: status=%d", ErrFetchFailed, status)
	}

	var resp eventsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrFetchFailed, err)
	}
	out := make([]session.Event, 0, len(resp.Events))
	for _, e := range resp.Events {
		out = append(out, session.Event{
			ID:           e.ID,
			SessionID:    e.SessionID,
			Timestamp:    parseTimestamp(e.Timestamp),
			Type:         session.EventType(e.EventType),
			Payload:      decodePayload(e.EventPayload),
			WorkspaceDir: e.WorkspaceDir,
		})
	}
	return out, nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// decodePayload accepts an object or a JSON-encoded string holding one. Any
// other shape is kept under "raw" for the sink to deal with.
func decodePayload(raw json.RawMessage) map[string]any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &obj); err == nil {
			return obj
		}
		return map[string]any{"raw": s}
	}
	var v any
	_ = json.Unmarshal(raw, &v)
	return map[string]any{"raw": v}
}
