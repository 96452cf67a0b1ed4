package replay

import (
	"context"
	"errors"
	"strings"
	"time"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"
)

var ErrInvalidRequest = errors.New("invalid replay request")

// UseCase serves a session's stored event log in emission order.
type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" || req.Limit < 0 {
		return Response{}, ErrInvalidRequest
	}
	if req.OccurredFrom > 0 && req.OccurredTo > 0 && req.OccurredFrom > req.OccurredTo {
		return Response{}, ErrInvalidRequest
	}

	q := ports.EventQuery{SessionID: sessionID, Limit: req.Limit}
	if req.OccurredFrom > 0 {
		q.OccurredFrom = time.Unix(req.OccurredFrom, 0)
	}
	if req.OccurredTo > 0 {
		q.OccurredTo = time.Unix(req.OccurredTo, 0)
	}
	events, err := u.Events.ListBySessionID(ctx, q)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return Response{}, err
	}
	if events == nil {
		events = []session.Event{}
	}
	return Response{Events: events, WorkspaceDir: session.WorkspaceOf(events)}, nil
}
