package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"course-service/internal/model"
)

type EventPublisher interface {
	PublishSeriesCreated(series *model.CourseSeries) error
	PublishSeriesPublished(seriesID, leadCoachID uuid.UUID, publishedAt time.Time, createdSessions int) error
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (EventPublisher, error) {
	nc, err := nats.Connect(natsURL)

	if err != nil {
		return nil, err
	}

	return &NatsPublisher{conn: nc}, nil
}

type SeriesCreatedEvent struct {
	EventType string    `json:"event_type"`
	SeriesID  uuid.UUID `json:"series_id"`
	CatalogID uuid.UUID `json:"catalog_id"`
	Title     string    `json:"title"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type SeriesPublishedEvent struct {
	EventType       string    `json:"event_type"`
	SeriesID        uuid.UUID `json:"series_id"`
	LeadCoachID     uuid.UUID `json:"lead_coach_id"`
	PublishedAt     time.Time `json:"published_at"`
	CreatedSessions int       `json:"created_sessions"`
}

func (p *NatsPublisher) PublishSeriesCreated(series *model.CourseSeries) error {
	event := SeriesCreatedEvent{
		EventType: "series.created",
		SeriesID:  series.ID,
		CatalogID: series.CatalogID,
		Title:     series.Title,
		StartDate: series.StartDate,
		EndDate:   series.EndDate,
	}

	return p.publish("series.created", event)
}

func (p *NatsPublisher) PublishSeriesPublished(seriesID, leadCoachID uuid.UUID, publishedAt time.Time, createdSessions int) error {
	event := SeriesPublishedEvent{
		EventType:       "series.published",
		SeriesID:        seriesID,
		LeadCoachID:     leadCoachID,
		PublishedAt:     publishedAt,
		CreatedSessions: createdSessions,
	}

	return p.publish("series.published", event)
}

func (p *NatsPublisher) publish(subject string, event any) error {
	eventJSON, err := json.Marshal(event)

	if err != nil {
		slog.Error("Error marshalling event JSON", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	if err := p.conn.Publish(subject, eventJSON); err != nil {
		slog.Error("Error publishing to NATS", slog.String("subject", subject), slog.String("error", err.Error()))
		return err
	}

	slog.Info("Published event to NATS", slog.String("subject", subject))

	return nil
}
