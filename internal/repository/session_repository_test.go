package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"course-service/internal/model"
	repo "course-service/internal/repository"
)

func TestPostgresSessionRepository_CreateIfAbsent_Inserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	id := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO class_sessions (series_id, occurrence_key, start_at, end_at, location, lead_coach_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (series_id, occurrence_key) DO NOTHING
		RETURNING id, created_at
	`)).WithArgs(sqlmock.AnyArg(), "2024-06-03T09:00#v1", sqlmock.AnyArg(), sqlmock.AnyArg(), "Studio A", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id, now))

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	coachID := uuid.New()
	session := &model.ClassSession{
		SeriesID:      uuid.New(),
		OccurrenceKey: "2024-06-03T09:00#v1",
		StartAt:       time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC),
		EndAt:         time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC),
		Location:      "Studio A",
		LeadCoachID:   &coachID,
	}

	created, err := r.CreateIfAbsent(context.Background(), tx, session)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, id, session.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_CreateIfAbsent_SkipsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	mock.ExpectBegin()
	// ON CONFLICT DO NOTHING yields no row for an existing key.
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO class_sessions`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}))

	tx, err := sqlxDB.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	session := &model.ClassSession{
		SeriesID:      uuid.New(),
		OccurrenceKey: "2024-06-03T09:00#v1",
		StartAt:       time.Now(),
		EndAt:         time.Now().Add(time.Hour),
	}

	created, err := r.CreateIfAbsent(context.Background(), tx, session)
	require.NoError(t, err)
	require.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_FindOverlapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	coachID := uuid.New()
	start := time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	rows := sqlmock.NewRows([]string{"id", "series_id", "occurrence_key", "start_at", "end_at", "location", "lead_coach_id", "created_at"}).
		AddRow(uuid.New(), uuid.New(), "2024-06-03T08:30#v1", start.Add(-30*time.Minute), end.Add(-30*time.Minute), "Studio B", coachID, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT * FROM class_sessions
		WHERE lead_coach_id = $1 AND start_at < $3 AND end_at > $2
		ORDER BY start_at ASC
	`)).WithArgs(coachID, start, end).WillReturnRows(rows)

	sessions, err := r.FindOverlapping(context.Background(), coachID, start, end)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "2024-06-03T08:30#v1", sessions[0].OccurrenceKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_FindOverlapping_NoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM class_sessions`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "series_id", "occurrence_key", "start_at", "end_at", "location", "lead_coach_id", "created_at"}))

	sessions, err := r.FindOverlapping(context.Background(), uuid.New(), time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, sessions)
	require.Empty(t, sessions)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSessionRepository_ExistingKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	r := repo.NewPostgresSessionRepository(sqlxDB)

	seriesID := uuid.New()
	rows := sqlmock.NewRows([]string{"occurrence_key"}).
		AddRow("2024-06-03T09:00#v1").
		AddRow("2024-06-05T09:00#v1")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT occurrence_key FROM class_sessions WHERE series_id = $1`)).
		WithArgs(seriesID).WillReturnRows(rows)

	keys, err := r.ExistingKeys(context.Background(), seriesID)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.True(t, keys["2024-06-03T09:00#v1"])
	require.False(t, keys["2024-06-10T09:00#v1"])
	require.NoError(t, mock.ExpectationsWereMet())
}
