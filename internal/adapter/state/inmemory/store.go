package inmemory

import (
	"sync"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type Snapshot struct {
	FetchLoading    bool     `json:"fetch_loading"`
	PlaybackLoading bool     `json:"playback_loading"`
	Workspace       string   `json:"workspace"`
	Notifications   []string `json:"notifications"`
}

// Store is the host's shared replay state. The two loading flags are
// independent.
type Store struct {
	mu              sync.RWMutex
	fetchLoading    bool
	playbackLoading bool
	workspace       string
	notifications   []string
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) SetFetchLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchLoading = loading
}

func (s *Store) SetPlaybackLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playbackLoading = loading
}

func (s *Store) SetWorkspace(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspace = dir
}

func (s *Store) NotifyFailure(message string) {
	hlog.Warnf("replay notification: %s", message)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, message)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		FetchLoading:    s.fetchLoading,
		PlaybackLoading: s.playbackLoading,
		Workspace:       s.workspace,
		Notifications:   append([]string(nil), s.notifications...),
	}
}
