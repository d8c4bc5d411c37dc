package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"course-service/internal/model"
)

// SessionFinder is the read-only slice of the session store the detector
// needs: every committed session for a coach that touches a time window.
type SessionFinder interface {
	FindOverlapping(ctx context.Context, coachID uuid.UUID, start, end time.Time) ([]model.ClassSession, error)
}

// AnnotateConflicts marks each occurrence with the number of committed
// sessions of coachID that overlap it. Intervals are half-open: back-to-back
// sessions do not conflict. The result is advisory; publish-time checks are
// what actually prevent double writes.
func AnnotateConflicts(ctx context.Context, finder SessionFinder, coachID uuid.UUID, occurrences []Occurrence) error {
	if len(occurrences) == 0 {
		return nil
	}

	// One window query for the whole set, then per-occurrence counting.
	windowStart := occurrences[0].StartAt
	windowEnd := occurrences[0].EndAt
	for _, occ := range occurrences[1:] {
		if occ.StartAt.Before(windowStart) {
			windowStart = occ.StartAt
		}
		if occ.EndAt.After(windowEnd) {
			windowEnd = occ.EndAt
		}
	}

	existing, err := finder.FindOverlapping(ctx, coachID, windowStart, windowEnd)
	if err != nil {
		return err
	}

	for i := range occurrences {
		count := 0
		for _, session := range existing {
			if Overlaps(session.StartAt, session.EndAt, occurrences[i].StartAt, occurrences[i].EndAt) {
				count++
			}
		}
		occurrences[i].Conflict = &Conflict{HasConflict: count > 0, Count: count}
	}

	return nil
}

// Overlaps reports whether [aStart, aEnd) intersects [bStart, bEnd).
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
