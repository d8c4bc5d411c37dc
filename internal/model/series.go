package model

import (
	"time"

	"github.com/google/uuid"
)

type SeriesStatus string

const (
	SeriesStatusPlanned   SeriesStatus = "PLANNED"
	SeriesStatusPublished SeriesStatus = "PUBLISHED"
)

// CourseSeries is the recurring-course draft aggregate. While PLANNED its
// schedule inputs may change freely; once PUBLISHED the derived occurrence
// set is frozen.
type CourseSeries struct {
	ID               uuid.UUID    `db:"id" json:"id"`
	CatalogID        uuid.UUID    `db:"catalog_id" json:"catalog_id"`
	Title            string       `db:"title" json:"title"`
	Description      string       `db:"description" json:"description"`
	Remark           string       `db:"remark" json:"remark,omitempty"`
	StartDate        time.Time    `db:"start_date" json:"start_date"`
	EndDate          time.Time    `db:"end_date" json:"end_date"`
	RecurrenceRule   *string      `db:"recurrence_rule" json:"recurrence_rule,omitempty"`
	DurationMinutes  int          `db:"duration_minutes" json:"duration_minutes"`
	VenueType        string       `db:"venue_type" json:"venue_type"`
	ClassMode        string       `db:"class_mode" json:"class_mode"`
	Location         string       `db:"location" json:"location"`
	LeaveCutoffHours int          `db:"leave_cutoff_hours" json:"leave_cutoff_hours"`
	MaxLearners      int          `db:"max_learners" json:"max_learners"`
	PriceCents       int64        `db:"price_cents" json:"price_cents"`
	DefaultCoachID   *uuid.UUID   `db:"default_coach_id" json:"default_coach_id,omitempty"`
	Status           SeriesStatus `db:"status" json:"status"`
	PublishedAt      *time.Time   `db:"published_at" json:"published_at,omitempty"`
	CreatedBy        uuid.UUID    `db:"created_by" json:"created_by"`
	UpdatedBy        uuid.UUID    `db:"updated_by" json:"updated_by"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}
