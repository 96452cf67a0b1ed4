// Package timeline rebuilds a session's visible history from replayed events.
package timeline

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"sessionreplay/internal/domain/session"
)

type Kind string

const (
	KindUser       Kind = "user"
	KindAgent      Kind = "agent"
	KindThinking   Kind = "thinking"
	KindToolCall   Kind = "tool_call"
	KindToolResult Kind = "tool_result"
	KindError      Kind = "error"
	KindStatus     Kind = "status"
	KindRaw        Kind = "raw"
)

type Entry struct {
	ID        string `json:"id"`
	Kind      Kind   `json:"kind"`
	Text      string `json:"text,omitempty"`
	Tool      string `json:"tool,omitempty"`
	Workspace string `json:"workspace,omitempty"`
}

// Timeline is an EventSink. Entries are keyed by event id, so applying the
// same event twice updates it in place.
type Timeline struct {
	mu        sync.Mutex
	out       io.Writer
	entries   []Entry
	index     map[string]int
	workspace string
	effects   int
}

// New returns an empty timeline; out, when non-nil, receives one line per new
// entry.
func New(out io.Writer) *Timeline {
	return &Timeline{out: out, index: map[string]int{}}
}

func (t *Timeline) Apply(evt session.Event, sinkContext string, quiet bool) {
	msg := evt.Message()
	entry := Entry{ID: evt.ID, Workspace: sinkContext}
	content, _ := msg["content"].(map[string]any)

	switch evt.PayloadType() {
	case session.EventUserMessage:
		entry.Kind, entry.Text = KindUser, str(content, "text")
	case session.EventAgentResponse:
		entry.Kind, entry.Text = KindAgent, str(content, "text")
	case session.EventAgentThinking:
		entry.Kind, entry.Text = KindThinking, str(content, "text")
	case session.EventToolCall:
		entry.Kind, entry.Tool = KindToolCall, str(content, "tool_name")
		entry.Text = summarize(content["tool_input"])
	case session.EventToolResult:
		entry.Kind, entry.Tool = KindToolResult, str(content, "tool_name")
		entry.Text = summarize(content["result"])
	case session.EventError:
		entry.Kind, entry.Text = KindError, str(content, "message")
	case session.EventWorkspaceInfo:
		entry.Kind, entry.Text = KindStatus, str(content, "path")
	case session.EventConnectionEstablished, session.EventAgentInitialized,
		session.EventProcessing, session.EventStreamComplete, session.EventSystem:
		entry.Kind, entry.Text = KindStatus, string(evt.PayloadType())
		if m := str(content, "message"); m != "" {
			entry.Text = m
		}
	default:
		entry.Kind, entry.Text = KindRaw, summarize(evt.Payload)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if evt.PayloadType() == session.EventWorkspaceInfo && entry.Text != "" {
		t.workspace = entry.Text
	} else if t.workspace == "" && sinkContext != "" {
		t.workspace = sinkContext
	}
	if entry.Kind == KindToolCall && !quiet && strings.HasPrefix(entry.Tool, "browser_") {
		t.effects++
	}
	if i, ok := t.index[evt.ID]; ok && evt.ID != "" {
		t.entries[i] = entry
		return
	}
	t.index[evt.ID] = len(t.entries)
	t.entries = append(t.entries, entry)
	if t.out != nil {
		t.print(entry)
	}
}

func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

func (t *Timeline) Workspace() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.workspace
}

// Effects counts transient effects triggered by live (non-quiet) arrivals.
func (t *Timeline) Effects() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.effects
}

func (t *Timeline) print(e Entry) {
	label := string(e.Kind)
	if e.Tool != "" {
		label += "(" + e.Tool + ")"
	}
	_, _ = fmt.Fprintf(t.out, "%-24s %s\n", label, oneLine(e.Text))
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func summarize(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// maxLine is counted in runes.
const maxLine = 160

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxLine {
		return s
	}
	return string([]rune(s)[:maxLine-3]) + "..."
}
