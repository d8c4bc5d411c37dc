package api

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"course-service/internal/model"
	"course-service/internal/schedule"
	"course-service/internal/service"
)

func isScheduleInputError(err error) bool {
	return errors.Is(err, schedule.ErrInvalidRange) ||
		errors.Is(err, schedule.ErrUnsupportedRuleToken) ||
		errors.Is(err, schedule.ErrInvalidRuleValue)
}

type SeriesHandler struct {
	seriesService service.SeriesService
	validate      *validator.Validate
}

func NewSeriesHandler(seriesService service.SeriesService) *SeriesHandler {
	return &SeriesHandler{
		seriesService: seriesService,
		validate:      validator.New(),
	}
}

type SeriesRequest struct {
	CatalogID        uuid.UUID  `json:"catalog_id" validate:"required"`
	Title            string     `json:"title" validate:"required,min=3,max=100"`
	Description      string     `json:"description,omitempty" validate:"max=2000"`
	Remark           string     `json:"remark,omitempty" validate:"max=500"`
	StartDate        string     `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string     `json:"end_date" validate:"required,datetime=2006-01-02"`
	RecurrenceRule   *string    `json:"recurrence_rule,omitempty"`
	DurationMinutes  int        `json:"duration_minutes" validate:"required,min=1,max=1440"`
	VenueType        string     `json:"venue_type" validate:"required"`
	ClassMode        string     `json:"class_mode" validate:"required"`
	Location         string     `json:"location,omitempty" validate:"max=200"`
	LeaveCutoffHours int        `json:"leave_cutoff_hours" validate:"min=0"`
	MaxLearners      int        `json:"max_learners" validate:"required,min=1"`
	PriceCents       int64      `json:"price_cents" validate:"min=0"`
	DefaultCoachID   *uuid.UUID `json:"default_coach_id,omitempty"`
}

func (r *SeriesRequest) toModel() (*model.CourseSeries, error) {
	startDate, err := time.Parse(time.DateOnly, r.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := time.Parse(time.DateOnly, r.EndDate)
	if err != nil {
		return nil, err
	}

	return &model.CourseSeries{
		CatalogID:        r.CatalogID,
		Title:            r.Title,
		Description:      r.Description,
		Remark:           r.Remark,
		StartDate:        startDate,
		EndDate:          endDate,
		RecurrenceRule:   r.RecurrenceRule,
		DurationMinutes:  r.DurationMinutes,
		VenueType:        r.VenueType,
		ClassMode:        r.ClassMode,
		Location:         r.Location,
		LeaveCutoffHours: r.LeaveCutoffHours,
		MaxLearners:      r.MaxLearners,
		PriceCents:       r.PriceCents,
		DefaultCoachID:   r.DefaultCoachID,
	}, nil
}

func (h *SeriesHandler) CreateSeries(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	var request SeriesRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	series, err := request.toModel()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format"})
	}

	created, err := h.seriesService.CreateSeries(c.Context(), identity, series)
	if err != nil {
		if isScheduleInputError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		slog.ErrorContext(c.UserContext(), "Error creating series", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not create series"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *SeriesHandler) GetSeries(c *fiber.Ctx) error {
	seriesID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid series ID format"})
	}

	series, err := h.seriesService.GetSeries(c.Context(), seriesID)
	if err != nil {
		if errors.Is(err, service.ErrSeriesNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch series"})
	}

	return c.Status(fiber.StatusOK).JSON(series)
}

func (h *SeriesHandler) ListSeries(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	series, total, err := h.seriesService.ListSeries(c.Context(), page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch series"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": series,
		"meta": fiber.Map{"page": page, "per_page": limit, "total_items": total},
	})
}

func (h *SeriesHandler) UpdateSeries(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	seriesID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid series ID format"})
	}

	var request SeriesRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	series, err := request.toModel()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date format"})
	}
	series.ID = seriesID

	updated, err := h.seriesService.UpdateSeries(c.Context(), identity, series)
	if err != nil {
		switch {
		case isScheduleInputError(err):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrSeriesNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, service.ErrSeriesNotPlanned):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		default:
			slog.ErrorContext(c.UserContext(), "Error updating series", slog.String("error", err.Error()))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update series"})
		}
	}

	return c.Status(fiber.StatusOK).JSON(updated)
}

func (h *SeriesHandler) ListSessions(c *fiber.Ctx) error {
	seriesID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid series ID format"})
	}

	sessions, err := h.seriesService.ListSessions(c.Context(), seriesID)
	if err != nil {
		if errors.Is(err, service.ErrSeriesNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch sessions"})
	}

	return c.Status(fiber.StatusOK).JSON(sessions)
}
