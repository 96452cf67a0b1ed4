package session

import "time"

type EventType string

const (
	EventConnectionEstablished EventType = "connection_established"
	EventAgentInitialized      EventType = "agent_initialized"
	EventWorkspaceInfo         EventType = "workspace_info"
	EventProcessing            EventType = "processing"
	EventAgentThinking         EventType = "agent_thinking"
	EventToolCall              EventType = "tool_call"
	EventToolResult            EventType = "tool_result"
	EventAgentResponse         EventType = "agent_response"
	EventStreamComplete        EventType = "stream_complete"
	EventError                 EventType = "error"
	EventSystem                EventType = "system"
	EventUserMessage           EventType = "user_message"
	EventFileEdit              EventType = "file_edit"
)

// Event is one persisted agent event. Its position in a fetched slice is its
// sequence index.
type Event struct {
	ID           string         `json:"id"`
	SessionID    string         `json:"session_id,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
	Type         EventType      `json:"event_type"`
	Payload      map[string]any `json:"event_payload"`
	WorkspaceDir string         `json:"workspace_dir,omitempty"`
}

type Session struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"device_id"`
	WorkspaceDir string    `json:"workspace_dir"`
	CreatedAt    time.Time `json:"created_at"`
	FirstMessage string    `json:"first_message"`
}
