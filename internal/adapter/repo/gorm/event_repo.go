package gormrepo

import (
	"context"
	"encoding/json"
	"errors"

	"sessionreplay/internal/adapter/repo/gorm/model"
	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, sessionID string, events []session.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.Event, 0, len(events))
	for _, e := range events {
		payload := e.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		rows = append(rows, model.Event{
			ID:           e.ID,
			SessionID:    sessionID,
			EventType:    string(e.Type),
			EventPayload: b,
			OccurredAt:   e.Timestamp,
		})
	}
	err := dbFor(ctx, r.db).Create(&rows).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ports.ErrConflict
	}
	return err
}

func (r EventRepo) ListBySessionID(ctx context.Context, q ports.EventQuery) ([]session.Event, error) {
	db := dbFor(ctx, r.db)
	rows := []model.Event{}
	query := db.
		Where(&model.Event{SessionID: q.SessionID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "occurred_at"}},
				{Column: clause.Column{Name: "seq"}},
			},
		})
	if !q.OccurredFrom.IsZero() {
		query = query.Where("occurred_at >= ?", q.OccurredFrom)
	}
	if !q.OccurredTo.IsZero() {
		query = query.Where("occurred_at <= ?", q.OccurredTo)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	var sess model.Session
	workspace := ""
	if err := db.Select("workspace_dir").Where(&model.Session{ID: q.SessionID}).Take(&sess).Error; err == nil {
		workspace = sess.WorkspaceDir
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	out := make([]session.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainEvent(row, workspace))
	}
	return out, nil
}

func toDomainEvent(row model.Event, workspace string) session.Event {
	var payload map[string]any
	if len(row.EventPayload) > 0 {
		_ = json.Unmarshal(row.EventPayload, &payload)
	}
	return session.Event{
		ID:           row.ID,
		SessionID:    row.SessionID,
		Timestamp:    row.OccurredAt,
		Type:         session.EventType(row.EventType),
		Payload:      payload,
		WorkspaceDir: workspace,
	}
}
