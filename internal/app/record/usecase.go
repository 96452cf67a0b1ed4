package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"

	"github.com/google/uuid"
)

var ErrInvalidRequest = errors.New("invalid record request")

// UseCase appends agent events to a session's log, creating the session on
// first write.
type UseCase struct {
	TxManager ports.TxManager
	Sessions  ports.SessionRepository
	Events    ports.EventRepository
	Now       func() time.Time
	NewID     func() string
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" || len(req.Events) == 0 {
		return Response{}, ErrInvalidRequest
	}
	now := u.now()

	events := make([]session.Event, 0, len(req.Events))
	ids := make([]string, 0, len(req.Events))
	for i, evt := range req.Events {
		if strings.TrimSpace(string(evt.Type)) == "" {
			evt.Type = evt.PayloadType()
		}
		if strings.TrimSpace(string(evt.Type)) == "" {
			return Response{}, fmt.Errorf("%w: event %d has no type", ErrInvalidRequest, i)
		}
		if strings.TrimSpace(evt.ID) == "" {
			evt.ID = u.newID()
		}
		if evt.Timestamp.IsZero() {
			evt.Timestamp = now
		}
		evt.SessionID = sessionID
		if evt.WorkspaceDir == "" {
			evt.WorkspaceDir = req.WorkspaceDir
		}
		events = append(events, evt)
		ids = append(ids, evt.ID)
	}

	err := u.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := u.Sessions.EnsureExists(txCtx, ports.SessionRecord{
			SessionID:    sessionID,
			DeviceID:     strings.TrimSpace(req.DeviceID),
			WorkspaceDir: req.WorkspaceDir,
			CreatedAt:    now,
		}); err != nil {
			return fmt.Errorf("ensure session: %w", err)
		}
		if err := u.Events.Append(txCtx, sessionID, events); err != nil {
			return fmt.Errorf("append events: %w", err)
		}
		return nil
	})
	if err != nil {
		return Response{}, err
	}
	return Response{SessionID: sessionID, EventIDs: ids}, nil
}

func (u UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u UseCase) newID() string {
	if u.NewID != nil {
		return u.NewID()
	}
	return uuid.NewString()
}
