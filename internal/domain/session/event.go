package session

import "strings"

// Message returns the payload merged with the event id, the shape a sink
// applies. The stored payload is left untouched.
func (e Event) Message() map[string]any {
	out := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		out[k] = v
	}
	out["id"] = e.ID
	return out
}

// PayloadType is the "type" field of the payload, falling back to the
// envelope type.
func (e Event) PayloadType() EventType {
	if t, ok := e.Payload["type"].(string); ok && strings.TrimSpace(t) != "" {
		return EventType(t)
	}
	return e.Type
}

// Content is the payload's "content" object, nil when absent or not an object.
func (e Event) Content() map[string]any {
	c, _ := e.Payload["content"].(map[string]any)
	return c
}

func (e Event) ContentString(key string) string {
	s, _ := e.Content()[key].(string)
	return s
}

// WorkspaceOf resolves the workspace a sequence belongs to: the first event's
// envelope wins, then the first workspace_info announcement anywhere in the
// sequence.
func WorkspaceOf(events []Event) string {
	if len(events) == 0 {
		return ""
	}
	if dir := strings.TrimSpace(events[0].WorkspaceDir); dir != "" {
		return dir
	}
	for _, evt := range events {
		if evt.PayloadType() != EventWorkspaceInfo && evt.Type != EventWorkspaceInfo {
			continue
		}
		if path := strings.TrimSpace(evt.ContentString("path")); path != "" {
			return path
		}
	}
	return ""
}

// FirstUserMessage returns the text of the earliest user_message event.
func FirstUserMessage(events []Event) string {
	for _, evt := range events {
		if evt.Type != EventUserMessage && evt.PayloadType() != EventUserMessage {
			continue
		}
		return evt.ContentString("text")
	}
	return ""
}
