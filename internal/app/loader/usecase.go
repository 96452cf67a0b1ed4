package loader

import (
	"context"
	"fmt"
	"strings"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

type Player interface {
	StartReplay(events []session.Event, sinkContext string) error
	Retire()
}

// UseCase fetches a session's event log once and hands it to the player.
// Failures end up on the Notifier; Execute never returns them.
type UseCase struct {
	Fetcher  ports.EventFetcher
	Player   Player
	State    ports.StatePublisher
	Notifier ports.Notifier
	Metrics  ports.PlaybackMetrics
}

func (u UseCase) Execute(ctx context.Context, req Request) Response {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return Response{Outcome: OutcomeIdle}
	}

	u.Player.Retire()
	events, err := u.fetch(ctx, sessionID)
	if err != nil {
		hlog.CtxErrorf(ctx, "load session %s: %v", sessionID, err)
		if u.Metrics != nil {
			u.Metrics.RecordFetchFailure()
		}
		u.notify(fmt.Sprintf("failed to load session %s", sessionID))
		return Response{Outcome: OutcomeFailed}
	}

	workspace := session.WorkspaceOf(events)
	if workspace != "" && u.State != nil {
		u.State.SetWorkspace(workspace)
	}
	if len(events) == 0 {
		hlog.CtxInfof(ctx, "session %s has no events", sessionID)
		return Response{Outcome: OutcomeEmpty, WorkspaceDir: workspace}
	}

	if err := u.Player.StartReplay(events, workspace); err != nil {
		hlog.CtxErrorf(ctx, "start replay of session %s: %v", sessionID, err)
		u.notify(fmt.Sprintf("failed to replay session %s", sessionID))
		return Response{Outcome: OutcomeFailed, EventCount: len(events), WorkspaceDir: workspace}
	}
	hlog.CtxInfof(ctx, "replaying session %s: events=%d workspace=%q", sessionID, len(events), workspace)
	return Response{Outcome: OutcomeReplaying, EventCount: len(events), WorkspaceDir: workspace}
}

func (u UseCase) fetch(ctx context.Context, sessionID string) ([]session.Event, error) {
	if u.State != nil {
		u.State.SetFetchLoading(true)
		defer u.State.SetFetchLoading(false)
	}
	return u.Fetcher.FetchEvents(ctx, sessionID)
}

func (u UseCase) notify(message string) {
	if u.Notifier != nil {
		u.Notifier.NotifyFailure(message)
	}
}
