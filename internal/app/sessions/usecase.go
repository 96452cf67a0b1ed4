package sessions

import (
	"context"
	"errors"
	"strings"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"
)

var ErrInvalidRequest = errors.New("invalid sessions request")

type Request struct {
	DeviceID string
}

type Response struct {
	Sessions []session.Session
}

// UseCase lists a device's recorded sessions, newest first.
type UseCase struct {
	Sessions ports.SessionRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		return Response{}, ErrInvalidRequest
	}
	list, err := u.Sessions.ListByDeviceID(ctx, deviceID)
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		return Response{}, err
	}
	if list == nil {
		list = []session.Session{}
	}
	return Response{Sessions: list}, nil
}
