package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"course-service/internal/model"
	"course-service/internal/schedule"
)

type stubSessionFinder struct {
	sessions []model.ClassSession
	calls    int
}

func (f *stubSessionFinder) FindOverlapping(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]model.ClassSession, error) {
	f.calls++
	return f.sessions, nil
}

func occurrenceAt(t *testing.T, day string, hour int) schedule.Occurrence {
	t.Helper()
	parsed, err := time.Parse(time.DateOnly, day)
	require.NoError(t, err)
	startAt := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), hour, 0, 0, 0, time.UTC)
	return schedule.Occurrence{
		Key:     schedule.OccurrenceKey(startAt),
		Date:    day,
		StartAt: startAt,
		EndAt:   startAt.Add(time.Hour),
	}
}

func sessionAt(day string, startHour, endHour int) model.ClassSession {
	parsed, _ := time.Parse(time.DateOnly, day)
	return model.ClassSession{
		ID:      uuid.New(),
		StartAt: time.Date(parsed.Year(), parsed.Month(), parsed.Day(), startHour, 0, 0, 0, time.UTC),
		EndAt:   time.Date(parsed.Year(), parsed.Month(), parsed.Day(), endHour, 0, 0, 0, time.UTC),
	}
}

func TestAnnotateConflicts_CountsOverlaps(t *testing.T) {
	finder := &stubSessionFinder{sessions: []model.ClassSession{
		sessionAt("2024-06-03", 8, 10),
		sessionAt("2024-06-03", 9, 11),
		sessionAt("2024-06-05", 14, 15),
	}}

	occurrences := []schedule.Occurrence{
		occurrenceAt(t, "2024-06-03", 9),
		occurrenceAt(t, "2024-06-05", 9),
	}

	err := schedule.AnnotateConflicts(context.Background(), finder, uuid.New(), occurrences)
	require.NoError(t, err)

	require.NotNil(t, occurrences[0].Conflict)
	require.True(t, occurrences[0].Conflict.HasConflict)
	require.Equal(t, 2, occurrences[0].Conflict.Count)

	require.NotNil(t, occurrences[1].Conflict)
	require.False(t, occurrences[1].Conflict.HasConflict)
	require.Equal(t, 0, occurrences[1].Conflict.Count)
}

func TestAnnotateConflicts_BackToBackDoesNotConflict(t *testing.T) {
	// Existing session ends exactly when the candidate starts.
	finder := &stubSessionFinder{sessions: []model.ClassSession{
		sessionAt("2024-06-03", 8, 9),
		sessionAt("2024-06-03", 10, 11),
	}}

	occurrences := []schedule.Occurrence{occurrenceAt(t, "2024-06-03", 9)}

	err := schedule.AnnotateConflicts(context.Background(), finder, uuid.New(), occurrences)
	require.NoError(t, err)
	require.False(t, occurrences[0].Conflict.HasConflict)
	require.Equal(t, 0, occurrences[0].Conflict.Count)
}

func TestAnnotateConflicts_SingleWindowQuery(t *testing.T) {
	finder := &stubSessionFinder{}

	occurrences := []schedule.Occurrence{
		occurrenceAt(t, "2024-06-03", 9),
		occurrenceAt(t, "2024-06-05", 9),
		occurrenceAt(t, "2024-06-10", 9),
	}

	err := schedule.AnnotateConflicts(context.Background(), finder, uuid.New(), occurrences)
	require.NoError(t, err)
	require.Equal(t, 1, finder.calls)
}

func TestAnnotateConflicts_EmptyInputDoesNotQuery(t *testing.T) {
	finder := &stubSessionFinder{}

	err := schedule.AnnotateConflicts(context.Background(), finder, uuid.New(), nil)
	require.NoError(t, err)
	require.Zero(t, finder.calls)
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2024, time.June, 3, 9, 0, 0, 0, time.UTC)

	// Identical intervals overlap.
	require.True(t, schedule.Overlaps(base, base.Add(time.Hour), base, base.Add(time.Hour)))
	// Touching endpoints do not (half-open intervals).
	require.False(t, schedule.Overlaps(base, base.Add(time.Hour), base.Add(time.Hour), base.Add(2*time.Hour)))
	// Containment overlaps.
	require.True(t, schedule.Overlaps(base, base.Add(3*time.Hour), base.Add(time.Hour), base.Add(2*time.Hour)))
}
