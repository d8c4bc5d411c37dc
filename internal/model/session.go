package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassSession is one materialized occurrence of a published series. The
// (series_id, occurrence_key) pair is unique in storage, which is what makes
// retried publishes idempotent.
type ClassSession struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	SeriesID      uuid.UUID  `db:"series_id" json:"series_id"`
	OccurrenceKey string     `db:"occurrence_key" json:"occurrence_key"`
	StartAt       time.Time  `db:"start_at" json:"start_at"`
	EndAt         time.Time  `db:"end_at" json:"end_at"`
	Location      string     `db:"location" json:"location"`
	LeadCoachID   *uuid.UUID `db:"lead_coach_id" json:"lead_coach_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}
