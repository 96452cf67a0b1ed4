package ports

import (
	"context"

	"sessionreplay/internal/domain/session"
)

type EventFetcher interface {
	FetchEvents(ctx context.Context, sessionID string) ([]session.Event, error)
}

// EventSink applies one event's effect. quiet asks the sink to update state
// without the transient effects of a live arrival.
type EventSink interface {
	Apply(evt session.Event, sinkContext string, quiet bool)
}

// StatePublisher exports the host-visible replay state. Each setter is a
// last-write-wins assignment.
type StatePublisher interface {
	SetFetchLoading(loading bool)
	SetPlaybackLoading(loading bool)
	SetWorkspace(dir string)
}

type Notifier interface {
	NotifyFailure(message string)
}
