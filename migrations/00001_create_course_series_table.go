package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateCourseSeriesTable, downCreateCourseSeriesTable)
}

func upCreateCourseSeriesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
		CREATE TABLE course_series (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			catalog_id UUID NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			remark TEXT NOT NULL DEFAULT '',
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			recurrence_rule TEXT,
			duration_minutes INT NOT NULL,
			venue_type TEXT NOT NULL,
			class_mode TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			leave_cutoff_hours INT NOT NULL DEFAULT 0,
			max_learners INT NOT NULL,
			price_cents BIGINT NOT NULL DEFAULT 0,
			default_coach_id UUID,
			status TEXT NOT NULL DEFAULT 'PLANNED',
			published_at TIMESTAMP WITH TIME ZONE,
			created_by UUID NOT NULL,
			updated_by UUID NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
		);

		CREATE INDEX idx_course_series_catalog_id ON course_series (catalog_id);
		CREATE INDEX idx_course_series_status ON course_series (status);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateCourseSeriesTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS course_series;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
