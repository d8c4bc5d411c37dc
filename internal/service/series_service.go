package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"course-service/internal/events"
	"course-service/internal/model"
	"course-service/internal/repository"
	"course-service/internal/schedule"
)

var (
	ErrSeriesNotFound   = errors.New("series not found")
	ErrSeriesNotPlanned = errors.New("series is not in planned status")
)

type SeriesService interface {
	CreateSeries(ctx context.Context, identity model.Identity, series *model.CourseSeries) (*model.CourseSeries, error)
	GetSeries(ctx context.Context, id uuid.UUID) (*model.CourseSeries, error)
	ListSeries(ctx context.Context, page int, limit int) ([]model.CourseSeries, int, error)
	UpdateSeries(ctx context.Context, identity model.Identity, series *model.CourseSeries) (*model.CourseSeries, error)
	ListSessions(ctx context.Context, seriesID uuid.UUID) ([]model.ClassSession, error)
}

type seriesService struct {
	seriesRepo  repository.SeriesRepository
	sessionRepo repository.SessionRepository
	publisher   events.EventPublisher
}

func NewSeriesService(seriesRepo repository.SeriesRepository, sessionRepo repository.SessionRepository, publisher events.EventPublisher) SeriesService {
	return &seriesService{
		seriesRepo:  seriesRepo,
		sessionRepo: sessionRepo,
		publisher:   publisher,
	}
}

// validateScheduleInputs rejects drafts whose rule or date range could never
// expand, so operators hear about it at authoring time rather than at first
// preview.
func validateScheduleInputs(series *model.CourseSeries) error {
	if series.RecurrenceRule != nil {
		if _, err := schedule.ParseRule(*series.RecurrenceRule); err != nil {
			return err
		}
	}
	if series.EndDate.Before(series.StartDate) {
		return schedule.ErrInvalidRange
	}
	return nil
}

func (s *seriesService) CreateSeries(ctx context.Context, identity model.Identity, series *model.CourseSeries) (*model.CourseSeries, error) {
	if err := validateScheduleInputs(series); err != nil {
		return nil, err
	}

	series.Status = model.SeriesStatusPlanned
	series.CreatedBy = identity.UserID
	series.UpdatedBy = identity.UserID
	if series.DefaultCoachID == nil {
		series.DefaultCoachID = DefaultLeadCoach(identity)
	}

	created, err := s.seriesRepo.Create(ctx, series)
	if err != nil {
		return nil, err
	}

	go s.publisher.PublishSeriesCreated(created)

	return created, nil
}

func (s *seriesService) GetSeries(ctx context.Context, id uuid.UUID) (*model.CourseSeries, error) {
	series, err := s.seriesRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, ErrSeriesNotFound
	}
	return series, nil
}

func (s *seriesService) ListSeries(ctx context.Context, page int, limit int) ([]model.CourseSeries, int, error) {
	return s.seriesRepo.List(ctx, page, limit)
}

// UpdateSeries replaces the draft's schedule inputs. Published series are
// frozen; a changed rule needs a new draft.
func (s *seriesService) UpdateSeries(ctx context.Context, identity model.Identity, series *model.CourseSeries) (*model.CourseSeries, error) {
	if err := validateScheduleInputs(series); err != nil {
		return nil, err
	}

	current, err := s.seriesRepo.FindByID(ctx, series.ID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrSeriesNotFound
	}
	if current.Status != model.SeriesStatusPlanned {
		return nil, ErrSeriesNotPlanned
	}

	series.UpdatedBy = identity.UserID
	if err := s.seriesRepo.Update(ctx, series); err != nil {
		return nil, err
	}

	return s.seriesRepo.FindByID(ctx, series.ID)
}

func (s *seriesService) ListSessions(ctx context.Context, seriesID uuid.UUID) ([]model.ClassSession, error) {
	series, err := s.seriesRepo.FindByID(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, ErrSeriesNotFound
	}

	return s.sessionRepo.ListBySeries(ctx, seriesID)
}
