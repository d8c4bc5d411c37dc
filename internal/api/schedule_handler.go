package api

import (
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"course-service/internal/schedule"
	"course-service/internal/service"
)

type ScheduleHandler struct {
	scheduleService service.ScheduleService
	validate        *validator.Validate
}

func NewScheduleHandler(scheduleService service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		validate:        validator.New(),
	}
}

type PublishRequest struct {
	SelectedKeys []string   `json:"selected_keys,omitempty"`
	PreviewHash  string     `json:"preview_hash" validate:"required,len=64,hexadecimal"`
	DryRun       bool       `json:"dry_run,omitempty"`
	LeadCoachID  *uuid.UUID `json:"lead_coach_id,omitempty"`
}

func (h *ScheduleHandler) PreviewSchedule(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	seriesID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid series ID format"})
	}

	checkConflicts := c.QueryBool("conflicts", true)

	result, err := h.scheduleService.Preview(c.Context(), identity, seriesID, checkConflicts)
	if err != nil {
		return scheduleErrorResponse(c, err, "Could not preview schedule")
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *ScheduleHandler) PublishSchedule(c *fiber.Ctx) error {
	identity, err := GetIdentity(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	seriesID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid series ID format"})
	}

	var request PublishRequest

	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if err := h.validate.Struct(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input", "details": err.Error()})
	}

	result, err := h.scheduleService.Publish(c.Context(), identity, service.PublishInput{
		SeriesID:     seriesID,
		SelectedKeys: request.SelectedKeys,
		PreviewHash:  request.PreviewHash,
		DryRun:       request.DryRun,
		LeadCoachID:  request.LeadCoachID,
	})
	if err != nil {
		return scheduleErrorResponse(c, err, "Could not publish schedule")
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// scheduleErrorResponse maps caller-correctable scheduling errors onto HTTP
// statuses; anything unrecognized is an infrastructure failure and stays
// generic.
func scheduleErrorResponse(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrSeriesNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrSeriesNotPlanned),
		errors.Is(err, service.ErrSeriesAlreadyPublished),
		errors.Is(err, service.ErrPreviewStale):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownOccurrenceKey),
		errors.Is(err, service.ErrLeadCoachRequired),
		errors.Is(err, schedule.ErrInvalidRange),
		errors.Is(err, schedule.ErrInvalidDuration),
		errors.Is(err, schedule.ErrUnsupportedRuleToken),
		errors.Is(err, schedule.ErrInvalidRuleValue):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		slog.ErrorContext(c.UserContext(), "Schedule operation failed", slog.String("error", err.Error()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fallback})
	}
}
