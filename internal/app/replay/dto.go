package replay

import "sessionreplay/internal/domain/session"

type Request struct {
	SessionID    string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

type Response struct {
	Events       []session.Event
	WorkspaceDir string
}
