package memory

import (
	"context"
	"sort"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"
)

type SessionRepo struct {
	store *Store
}

func NewSessionRepo(store *Store) SessionRepo {
	return SessionRepo{store: store}
}

func (r SessionRepo) EnsureExists(_ context.Context, rec ports.SessionRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sessions[rec.SessionID]; ok {
		return nil
	}
	r.store.sessions[rec.SessionID] = rec
	return nil
}

// ListByDeviceID only returns sessions that contain a user message.
func (r SessionRepo) ListByDeviceID(_ context.Context, deviceID string) ([]session.Session, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]session.Session, 0)
	for id, rec := range r.store.sessions {
		if rec.DeviceID != deviceID {
			continue
		}
		first := session.FirstUserMessage(r.store.events[id])
		if first == "" && !hasUserMessage(r.store.events[id]) {
			continue
		}
		out = append(out, session.Session{
			ID:           id,
			DeviceID:     rec.DeviceID,
			WorkspaceDir: rec.WorkspaceDir,
			CreatedAt:    rec.CreatedAt,
			FirstMessage: first,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func hasUserMessage(events []session.Event) bool {
	for _, e := range events {
		if e.Type == session.EventUserMessage {
			return true
		}
	}
	return false
}
