package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/app/record"
	"sessionreplay/internal/app/replay"
	"sessionreplay/internal/app/sessions"
	"sessionreplay/internal/domain/session"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

var ErrInvalidTimestamp = errors.New("invalid event timestamp")

type Handler struct {
	ReplayUC   replay.UseCase
	SessionsUC sessions.UseCase
	RecordUC   record.UseCase
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api/sessions")
	api.GET("/:id", h.listSessions)
	api.GET("/:id/events", h.events)
	api.POST("/:id/events", h.record)

	s.GET("/healthz", h.healthz)
}

type eventDTO struct {
	ID           string         `json:"id"`
	SessionID    string         `json:"session_id"`
	Timestamp    string         `json:"timestamp"`
	EventType    string         `json:"event_type"`
	EventPayload map[string]any `json:"event_payload"`
	WorkspaceDir string         `json:"workspace_dir,omitempty"`
}

type eventsResponse struct {
	Events       []eventDTO `json:"events"`
	WorkspaceDir string     `json:"workspace_dir,omitempty"`
}

type sessionDTO struct {
	ID           string `json:"id"`
	DeviceID     string `json:"device_id"`
	WorkspaceDir string `json:"workspace_dir"`
	CreatedAt    string `json:"created_at"`
	FirstMessage string `json:"first_message"`
}

type sessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type recordRequest struct {
	DeviceID     string     `json:"device_id"`
	WorkspaceDir string     `json:"workspace_dir"`
	Events       []eventDTO `json:"events"`
}

// events serves the log a replay client fetches, oldest first.
func (h Handler) events(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		SessionID:    ctx.Param("id"),
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	out := eventsResponse{Events: make([]eventDTO, 0, len(resp.Events)), WorkspaceDir: resp.WorkspaceDir}
	for _, e := range resp.Events {
		out.Events = append(out.Events, toEventDTO(e))
	}
	ctx.JSON(consts.StatusOK, out)
}

func (h Handler) listSessions(c context.Context, ctx *app.RequestContext) {
	resp, err := h.SessionsUC.Execute(c, sessions.Request{DeviceID: ctx.Param("id")})
	if err != nil {
		writeError(ctx, err)
		return
	}
	out := sessionsResponse{Sessions: make([]sessionDTO, 0, len(resp.Sessions))}
	for _, s := range resp.Sessions {
		out.Sessions = append(out.Sessions, sessionDTO{
			ID:           s.ID,
			DeviceID:     s.DeviceID,
			WorkspaceDir: s.WorkspaceDir,
			CreatedAt:    s.CreatedAt.UTC().Format(time.RFC3339Nano),
			FirstMessage: s.FirstMessage,
		})
	}
	ctx.JSON(consts.StatusOK, out)
}

func (h Handler) record(c context.Context, ctx *app.RequestContext) {
	var body recordRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}
	events := make([]session.Event, 0, len(body.Events))
	for _, dto := range body.Events {
		evt, err := fromEventDTO(dto)
		if err != nil {
			writeError(ctx, err)
			return
		}
		events = append(events, evt)
	}
	resp, err := h.RecordUC.Execute(c, record.Request{
		SessionID:    ctx.Param("id"),
		DeviceID:     body.DeviceID,
		WorkspaceDir: body.WorkspaceDir,
		Events:       events,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

func toEventDTO(e session.Event) eventDTO {
	payload := e.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return eventDTO{
		ID:           e.ID,
		SessionID:    e.SessionID,
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
		EventType:    string(e.Type),
		EventPayload: payload,
		WorkspaceDir: e.WorkspaceDir,
	}
}

func fromEventDTO(dto eventDTO) (session.Event, error) {
	evt := session.Event{
		ID:           strings.TrimSpace(dto.ID),
		Type:         session.EventType(strings.TrimSpace(dto.EventType)),
		Payload:      dto.EventPayload,
		WorkspaceDir: dto.WorkspaceDir,
	}
	if ts := strings.TrimSpace(dto.Timestamp); ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return session.Event{}, ErrInvalidTimestamp
		}
		evt.Timestamp = parsed
	}
	return evt, nil
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, ErrInvalidTimestamp),
		errors.Is(err, record.ErrInvalidRequest),
		errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, sessions.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		hlog.Errorf("unhandled request error: %v", err)
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
