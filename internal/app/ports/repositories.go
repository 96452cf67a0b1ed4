package ports

import (
	"context"
	"time"

	"sessionreplay/internal/domain/session"
)

type EventQuery struct {
	SessionID    string
	Limit        int
	OccurredFrom time.Time
	OccurredTo   time.Time
}

type EventRepository interface {
	Append(ctx context.Context, sessionID string, events []session.Event) error
	// ListBySessionID returns events oldest first.
	ListBySessionID(ctx context.Context, q EventQuery) ([]session.Event, error)
}

type SessionRecord struct {
	SessionID    string
	DeviceID     string
	WorkspaceDir string
	CreatedAt    time.Time
}

type SessionRepository interface {
	EnsureExists(ctx context.Context, rec SessionRecord) error
	// ListByDeviceID returns sessions newest first.
	ListByDeviceID(ctx context.Context, deviceID string) ([]session.Session, error)
}

// TxManager runs fn so that the repository writes it makes through ctx
// either all land or none do.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
