package gormrepo

import (
	"context"
	"time"

	"sessionreplay/internal/adapter/repo/gorm/model"
	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepo struct {
	db *gorm.DB
}

func NewSessionRepo(db *gorm.DB) SessionRepo {
	return SessionRepo{db: db}
}

func (r SessionRepo) EnsureExists(ctx context.Context, rec ports.SessionRecord) error {
	m := model.Session{
		ID:           rec.SessionID,
		DeviceID:     rec.DeviceID,
		WorkspaceDir: rec.WorkspaceDir,
		CreatedAt:    rec.CreatedAt,
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return dbFor(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&m).Error
}

type sessionRow struct {
	ID           string
	DeviceID     string
	WorkspaceDir string
	CreatedAt    time.Time
	FirstMessage string
}

const listByDeviceSQL = `
SELECT s.id, s.device_id, s.workspace_dir, s.created_at,
       COALESCE(first_msg.event_payload #>> '{content,text}', '') AS first_message
FROM sessions s
JOIN LATERAL (
  SELECT e.event_payload
  FROM events e
  WHERE e.session_id = s.id AND e.event_type = ?
  ORDER BY e.occurred_at ASC, e.seq ASC
  LIMIT 1
) first_msg ON TRUE
WHERE s.device_id = ?
ORDER BY s.created_at DESC`

// ListByDeviceID only returns sessions that contain a user message.
func (r SessionRepo) ListByDeviceID(ctx context.Context, deviceID string) ([]session.Session, error) {
	rows := []sessionRow{}
	err := dbFor(ctx, r.db).
		Raw(listByDeviceSQL, string(session.EventUserMessage), deviceID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]session.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, session.Session{
			ID:           row.ID,
			DeviceID:     row.DeviceID,
			WorkspaceDir: row.WorkspaceDir,
			CreatedAt:    row.CreatedAt,
			FirstMessage: row.FirstMessage,
		})
	}
	return out, nil
}

