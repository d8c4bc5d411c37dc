package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateClassSessionsTable, downCreateClassSessionsTable)
}

func upCreateClassSessionsTable(ctx context.Context, tx *sql.Tx) error {
	// The unique (series_id, occurrence_key) pair is what makes retried
	// publishes idempotent across processes; do not relax it.
	query := `
		CREATE TABLE class_sessions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			series_id UUID NOT NULL REFERENCES course_series(id) ON DELETE CASCADE,
			occurrence_key TEXT NOT NULL,
			start_at TIMESTAMP WITH TIME ZONE NOT NULL,
			end_at TIMESTAMP WITH TIME ZONE NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			lead_coach_id UUID,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			UNIQUE (series_id, occurrence_key)
		);

		CREATE INDEX idx_class_sessions_coach_window ON class_sessions (lead_coach_id, start_at, end_at);
	`

	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}

func downCreateClassSessionsTable(ctx context.Context, tx *sql.Tx) error {
	query := `DROP TABLE IF EXISTS class_sessions;`
	_, err := tx.ExecContext(ctx, query)

	if err != nil {
		return err
	}

	return nil
}
