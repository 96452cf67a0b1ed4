package record

import "sessionreplay/internal/domain/session"

type Request struct {
	SessionID    string
	DeviceID     string
	WorkspaceDir string
	Events       []session.Event
}

type Response struct {
	SessionID string   `json:"session_id"`
	EventIDs  []string `json:"event_ids"`
}
