package playback

import (
	"sync"

	"sessionreplay/internal/domain/session"
)

type Mode int

const (
	ModeIdle Mode = iota
	ModeTimed
	ModeImmediate
)

func (m Mode) String() string {
	switch m {
	case ModeTimed:
		return "timed"
	case ModeImmediate:
		return "immediate"
	default:
		return "idle"
	}
}

type replaySession struct {
	events      []session.Event
	sinkContext string
	cursor      int
	mode        Mode
	token       *cancelToken

	retireOnce sync.Once
	retired    chan struct{}
}

func newReplaySession(events []session.Event, sinkContext string) *replaySession {
	return &replaySession{
		events:      append([]session.Event(nil), events...),
		sinkContext: sinkContext,
		mode:        ModeTimed,
		token:       newCancelToken(),
		retired:     make(chan struct{}),
	}
}

func (r *replaySession) retire() {
	r.mode = ModeIdle
	r.retireOnce.Do(func() { close(r.retired) })
}
