package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"course-service/internal/model"
)

type SeriesRepository interface {
	Create(ctx context.Context, series *model.CourseSeries) (*model.CourseSeries, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CourseSeries, error)
	List(ctx context.Context, page int, limit int) ([]model.CourseSeries, int, error)
	Update(ctx context.Context, series *model.CourseSeries) error
	FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.CourseSeries, error)
	MarkPublished(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, publishedAt time.Time) error
}

type postgresSeriesRepository struct {
	db *sqlx.DB
}

func NewPostgresSeriesRepository(db *sqlx.DB) SeriesRepository {
	return &postgresSeriesRepository{db: db}
}

func (r *postgresSeriesRepository) Create(ctx context.Context, series *model.CourseSeries) (*model.CourseSeries, error) {
	query := `
		INSERT INTO course_series (
			catalog_id, title, description, remark,
			start_date, end_date, recurrence_rule, duration_minutes,
			venue_type, class_mode, location, leave_cutoff_hours,
			max_learners, price_cents, default_coach_id, status,
			created_by, updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		series.CatalogID, series.Title, series.Description, series.Remark,
		series.StartDate, series.EndDate, series.RecurrenceRule, series.DurationMinutes,
		series.VenueType, series.ClassMode, series.Location, series.LeaveCutoffHours,
		series.MaxLearners, series.PriceCents, series.DefaultCoachID, series.Status,
		series.CreatedBy, series.UpdatedBy,
	)
	if err := row.Scan(&series.ID, &series.CreatedAt, &series.UpdatedAt); err != nil {
		return nil, err
	}

	return series, nil
}

func (r *postgresSeriesRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CourseSeries, error) {
	var series model.CourseSeries
	query := `SELECT * FROM course_series WHERE id = $1`
	err := r.db.GetContext(ctx, &series, query, id)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &series, nil
}

func (r *postgresSeriesRepository) List(ctx context.Context, page int, limit int) ([]model.CourseSeries, int, error) {
	offset := (page - 1) * limit

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM course_series`); err != nil {
		return nil, 0, err
	}

	var series []model.CourseSeries
	query := `SELECT * FROM course_series ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &series, query, limit, offset); err != nil {
		return nil, 0, err
	}

	if series == nil {
		series = []model.CourseSeries{}
	}

	return series, total, nil
}

func (r *postgresSeriesRepository) Update(ctx context.Context, series *model.CourseSeries) error {
	query := `
		UPDATE course_series SET
			title = $2, description = $3, remark = $4,
			start_date = $5, end_date = $6, recurrence_rule = $7, duration_minutes = $8,
			venue_type = $9, class_mode = $10, location = $11, leave_cutoff_hours = $12,
			max_learners = $13, price_cents = $14, default_coach_id = $15,
			updated_by = $16, updated_at = now()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query,
		series.ID, series.Title, series.Description, series.Remark,
		series.StartDate, series.EndDate, series.RecurrenceRule, series.DurationMinutes,
		series.VenueType, series.ClassMode, series.Location, series.LeaveCutoffHours,
		series.MaxLearners, series.PriceCents, series.DefaultCoachID,
		series.UpdatedBy,
	)
	return err
}

// FindByIDForUpdate takes a row lock on the series so concurrent publish
// attempts serialize on it.
func (r *postgresSeriesRepository) FindByIDForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*model.CourseSeries, error) {
	var series model.CourseSeries
	query := `SELECT * FROM course_series WHERE id = $1 FOR UPDATE`
	err := tx.GetContext(ctx, &series, query, id)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &series, nil
}

func (r *postgresSeriesRepository) MarkPublished(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, publishedAt time.Time) error {
	query := `
		UPDATE course_series
		SET status = $2, published_at = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`

	result, err := tx.ExecContext(ctx, query, id, model.SeriesStatusPublished, publishedAt, model.SeriesStatusPlanned)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return sql.ErrNoRows
	}

	return nil
}
