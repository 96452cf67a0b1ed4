package memory

import (
	"context"
	"sort"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, sessionID string, events []session.Event) error {
	if len(events) == 0 {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	list := r.store.events[sessionID]
	seen := make(map[string]struct{}, len(list)+len(events))
	for _, e := range list {
		seen[e.ID] = struct{}{}
	}
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			return ports.ErrConflict
		}
		seen[e.ID] = struct{}{}
	}
	for _, e := range events {
		e.SessionID = sessionID
		list = append(list, e)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.Before(list[j].Timestamp)
	})
	r.store.events[sessionID] = list
	return nil
}

func (r EventRepo) ListBySessionID(_ context.Context, q ports.EventQuery) ([]session.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	workspace := r.store.sessions[q.SessionID].WorkspaceDir
	out := make([]session.Event, 0)
	for _, e := range r.store.events[q.SessionID] {
		if !q.OccurredFrom.IsZero() && e.Timestamp.Before(q.OccurredFrom) {
			continue
		}
		if !q.OccurredTo.IsZero() && e.Timestamp.After(q.OccurredTo) {
			continue
		}
		if workspace != "" {
			e.WorkspaceDir = workspace
		}
		out = append(out, e)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}
