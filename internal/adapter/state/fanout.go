package state

import "sessionreplay/internal/app/ports"

type Publisher interface {
	ports.StatePublisher
	ports.Notifier
}

// Fanout forwards every signal to each publisher in order.
type Fanout []Publisher

func (f Fanout) SetFetchLoading(loading bool) {
	for _, p := range f {
		p.SetFetchLoading(loading)
	}
}

func (f Fanout) SetPlaybackLoading(loading bool) {
	for _, p := range f {
		p.SetPlaybackLoading(loading)
	}
}

func (f Fanout) SetWorkspace(dir string) {
	for _, p := range f {
		p.SetWorkspace(dir)
	}
}

func (f Fanout) NotifyFailure(message string) {
	for _, p := range f {
		p.NotifyFailure(message)
	}
}
