package memory

import (
	"sync"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"
)

type Store struct {
	txMu     sync.Mutex
	mu       sync.RWMutex
	sessions map[string]ports.SessionRecord
	events   map[string][]session.Event
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]ports.SessionRecord),
		events:   make(map[string][]session.Event),
	}
}

type storeSnapshot struct {
	sessions map[string]ports.SessionRecord
	events   map[string][]session.Event
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := storeSnapshot{
		sessions: make(map[string]ports.SessionRecord, len(s.sessions)),
		events:   make(map[string][]session.Event, len(s.events)),
	}
	for id, rec := range s.sessions {
		snap.sessions[id] = rec
	}
	for id, list := range s.events {
		snap.events[id] = append([]session.Event(nil), list...)
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = snap.sessions
	s.events = snap.events
}
