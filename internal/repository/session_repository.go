package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"course-service/internal/model"
)

type SessionRepository interface {
	FindOverlapping(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]model.ClassSession, error)
	ExistingKeys(ctx context.Context, seriesID uuid.UUID) (map[string]bool, error)
	ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]model.ClassSession, error)
	CreateIfAbsent(ctx context.Context, tx *sqlx.Tx, session *model.ClassSession) (bool, error)
}

type postgresSessionRepository struct {
	db *sqlx.DB
}

func NewPostgresSessionRepository(db *sqlx.DB) SessionRepository {
	return &postgresSessionRepository{db: db}
}

func (r *postgresSessionRepository) FindOverlapping(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]model.ClassSession, error) {
	var sessions []model.ClassSession
	query := `
		SELECT * FROM class_sessions
		WHERE lead_coach_id = $1 AND start_at < $3 AND end_at > $2
		ORDER BY start_at ASC
	`
	err := r.db.SelectContext(ctx, &sessions, query, coachID, start, end)

	if err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = []model.ClassSession{}
	}

	return sessions, nil
}

func (r *postgresSessionRepository) ExistingKeys(ctx context.Context, seriesID uuid.UUID) (map[string]bool, error) {
	var keys []string
	query := `SELECT occurrence_key FROM class_sessions WHERE series_id = $1`
	if err := r.db.SelectContext(ctx, &keys, query, seriesID); err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(keys))
	for _, key := range keys {
		existing[key] = true
	}

	return existing, nil
}

func (r *postgresSessionRepository) ListBySeries(ctx context.Context, seriesID uuid.UUID) ([]model.ClassSession, error) {
	var sessions []model.ClassSession
	query := `SELECT * FROM class_sessions WHERE series_id = $1 ORDER BY start_at ASC`
	err := r.db.SelectContext(ctx, &sessions, query, seriesID)

	if err != nil {
		return nil, err
	}

	if sessions == nil {
		sessions = []model.ClassSession{}
	}

	return sessions, nil
}

// CreateIfAbsent inserts the session unless one already exists for the same
// (series_id, occurrence_key). The unique index decides, not the application,
// so concurrent publishers from different processes cannot both insert.
// Returns false when the row already existed.
func (r *postgresSessionRepository) CreateIfAbsent(ctx context.Context, tx *sqlx.Tx, session *model.ClassSession) (bool, error) {
	query := `
		INSERT INTO class_sessions (series_id, occurrence_key, start_at, end_at, location, lead_coach_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (series_id, occurrence_key) DO NOTHING
		RETURNING id, created_at
	`

	row := tx.QueryRowxContext(ctx, query,
		session.SeriesID, session.OccurrenceKey,
		session.StartAt, session.EndAt,
		session.Location, session.LeadCoachID,
	)
	err := row.Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}

		return false, err
	}

	return true, nil
}
