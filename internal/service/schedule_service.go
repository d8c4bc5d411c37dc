package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"course-service/internal/events"
	"course-service/internal/model"
	"course-service/internal/repository"
	"course-service/internal/schedule"
)

var (
	ErrSeriesAlreadyPublished = errors.New("series is already published")
	ErrPreviewStale           = errors.New("preview hash does not match the current schedule")
	ErrUnknownOccurrenceKey   = errors.New("selection references an unknown occurrence key")
	ErrLeadCoachRequired      = errors.New("lead coach id is required for manager and admin callers")
)

type PreviewResult struct {
	Series             *model.CourseSeries   `json:"series"`
	Occurrences        []schedule.Occurrence `json:"occurrences"`
	PreviewHash        string                `json:"preview_hash"`
	DefaultLeadCoachID *uuid.UUID            `json:"default_lead_coach_id,omitempty"`
}

type PublishInput struct {
	SeriesID     uuid.UUID
	SelectedKeys []string // nil selects the whole occurrence set
	PreviewHash  string
	DryRun       bool
	LeadCoachID  *uuid.UUID
}

type PublishResult struct {
	SeriesID        uuid.UUID             `json:"series_id"`
	Status          model.SeriesStatus    `json:"status"`
	PublishedAt     *time.Time            `json:"published_at,omitempty"`
	CreatedSessions int                   `json:"created_sessions"`
	Occurrences     []schedule.Occurrence `json:"occurrences"`
}

type ScheduleService interface {
	Preview(ctx context.Context, identity model.Identity, seriesID uuid.UUID, checkConflicts bool) (*PreviewResult, error)
	Publish(ctx context.Context, identity model.Identity, input PublishInput) (*PublishResult, error)
}

type scheduleService struct {
	db          *sqlx.DB
	seriesRepo  repository.SeriesRepository
	sessionRepo repository.SessionRepository
	expander    *schedule.Expander
	publisher   events.EventPublisher
}

func NewScheduleService(
	db *sqlx.DB,
	seriesRepo repository.SeriesRepository,
	sessionRepo repository.SessionRepository,
	expander *schedule.Expander,
	publisher events.EventPublisher,
) ScheduleService {
	return &scheduleService{
		db:          db,
		seriesRepo:  seriesRepo,
		sessionRepo: sessionRepo,
		expander:    expander,
		publisher:   publisher,
	}
}

// Preview expands the series' current schedule inputs into annotated
// occurrences plus the digest a later publish must present. It never writes,
// so operators can call it as often as they edit.
func (s *scheduleService) Preview(ctx context.Context, identity model.Identity, seriesID uuid.UUID, checkConflicts bool) (*PreviewResult, error) {
	series, err := s.loadPlannedSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}

	occurrences, err := s.expandSeries(series)
	if err != nil {
		return nil, err
	}

	defaultCoach := DefaultLeadCoach(identity)
	if defaultCoach == nil {
		defaultCoach = series.DefaultCoachID
	}

	if checkConflicts && defaultCoach != nil {
		if err := schedule.AnnotateConflicts(ctx, s.sessionRepo, *defaultCoach, occurrences); err != nil {
			return nil, err
		}
	}

	return &PreviewResult{
		Series:             series,
		Occurrences:        occurrences,
		PreviewHash:        schedule.PreviewHash(series.ID, occurrences),
		DefaultLeadCoachID: defaultCoach,
	}, nil
}

// Publish re-derives the occurrence set from the series' current state,
// verifies the caller previewed exactly that set, and materializes the
// selected occurrences as class sessions in one transaction. Re-running the
// same publish after a partial failure only creates the missing sessions.
func (s *scheduleService) Publish(ctx context.Context, identity model.Identity, input PublishInput) (*PublishResult, error) {
	series, err := s.loadPlannedSeries(ctx, input.SeriesID)
	if err != nil {
		return nil, err
	}

	occurrences, err := s.expandSeries(series)
	if err != nil {
		return nil, err
	}

	if schedule.PreviewHash(series.ID, occurrences) != input.PreviewHash {
		return nil, fmt.Errorf("%w: series %s changed since preview", ErrPreviewStale, series.ID)
	}

	selected, err := resolveSelection(occurrences, input.SelectedKeys)
	if err != nil {
		return nil, err
	}

	leadCoach, err := ResolveLeadCoach(identity, input.LeadCoachID)
	if err != nil {
		return nil, err
	}

	if err := schedule.AnnotateConflicts(ctx, s.sessionRepo, *leadCoach, occurrences); err != nil {
		return nil, err
	}

	if input.DryRun {
		return s.dryRun(ctx, series, occurrences, selected)
	}

	return s.commit(ctx, series, occurrences, selected, leadCoach)
}

func (s *scheduleService) loadPlannedSeries(ctx context.Context, seriesID uuid.UUID) (*model.CourseSeries, error) {
	series, err := s.seriesRepo.FindByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, ErrSeriesNotFound
	}
	if series.Status == model.SeriesStatusPublished {
		return nil, ErrSeriesAlreadyPublished
	}
	if series.Status != model.SeriesStatusPlanned {
		return nil, ErrSeriesNotPlanned
	}
	return series, nil
}

func (s *scheduleService) expandSeries(series *model.CourseSeries) ([]schedule.Occurrence, error) {
	var rule *schedule.Rule
	if series.RecurrenceRule != nil {
		parsed, err := schedule.ParseRule(*series.RecurrenceRule)
		if err != nil {
			return nil, err
		}
		rule = parsed
	}

	return s.expander.Expand(series.StartDate, series.EndDate, rule, series.DurationMinutes)
}

// resolveSelection maps the caller's keys onto the authoritative occurrence
// set. A nil selection means everything; any key outside the set is a hard
// error, returned in ascending key order for deterministic inserts.
func resolveSelection(occurrences []schedule.Occurrence, selectedKeys []string) ([]schedule.Occurrence, error) {
	byKey := make(map[string]schedule.Occurrence, len(occurrences))
	for _, occ := range occurrences {
		byKey[occ.Key] = occ
	}

	if selectedKeys == nil {
		selected := make([]schedule.Occurrence, len(occurrences))
		copy(selected, occurrences)
		sort.Slice(selected, func(i, j int) bool { return selected[i].Key < selected[j].Key })
		return selected, nil
	}

	seen := make(map[string]bool, len(selectedKeys))
	selected := make([]schedule.Occurrence, 0, len(selectedKeys))
	for _, key := range selectedKeys {
		occ, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOccurrenceKey, key)
		}
		if !seen[key] {
			seen[key] = true
			selected = append(selected, occ)
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].Key < selected[j].Key })
	return selected, nil
}

// dryRun reports what a real publish would create without touching storage.
func (s *scheduleService) dryRun(ctx context.Context, series *model.CourseSeries, occurrences, selected []schedule.Occurrence) (*PublishResult, error) {
	existing, err := s.sessionRepo.ExistingKeys(ctx, series.ID)
	if err != nil {
		return nil, err
	}

	wouldCreate := 0
	for _, occ := range selected {
		if !existing[occ.Key] {
			wouldCreate++
		}
	}

	return &PublishResult{
		SeriesID:        series.ID,
		Status:          series.Status,
		PublishedAt:     nil,
		CreatedSessions: wouldCreate,
		Occurrences:     occurrences,
	}, nil
}

func (s *scheduleService) commit(ctx context.Context, series *model.CourseSeries, occurrences, selected []schedule.Occurrence, leadCoach *uuid.UUID) (*PublishResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Re-check under the row lock: a concurrent publish either already won,
	// or is blocked behind this transaction.
	locked, err := s.seriesRepo.FindByIDForUpdate(ctx, tx, series.ID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return nil, ErrSeriesNotFound
	}
	if locked.Status != model.SeriesStatusPlanned {
		return nil, ErrSeriesAlreadyPublished
	}

	created := 0
	for _, occ := range selected {
		session := &model.ClassSession{
			SeriesID:      series.ID,
			OccurrenceKey: occ.Key,
			StartAt:       occ.StartAt,
			EndAt:         occ.EndAt,
			Location:      series.Location,
			LeadCoachID:   leadCoach,
		}

		inserted, err := s.sessionRepo.CreateIfAbsent(ctx, tx, session)
		if err != nil {
			return nil, err
		}
		if inserted {
			created++
		}
	}

	publishedAt := time.Now().UTC()
	if err := s.seriesRepo.MarkPublished(ctx, tx, series.ID, publishedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "series published",
		slog.String("series_id", series.ID.String()),
		slog.Int("created_sessions", created),
	)

	go s.publisher.PublishSeriesPublished(series.ID, *leadCoach, publishedAt, created)

	return &PublishResult{
		SeriesID:        series.ID,
		Status:          model.SeriesStatusPublished,
		PublishedAt:     &publishedAt,
		CreatedSessions: created,
		Occurrences:     occurrences,
	}, nil
}
