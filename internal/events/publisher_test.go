package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"course-service/internal/events"
	"course-service/internal/model"
)

func TestSeriesCreatedEvent_Marshal(t *testing.T) {
	series := &model.CourseSeries{
		ID:        uuid.New(),
		CatalogID: uuid.New(),
		Title:     "Morning Strength",
		StartDate: time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, time.June, 17, 0, 0, 0, 0, time.UTC),
	}
	ev := events.SeriesCreatedEvent{
		EventType: "series.created",
		SeriesID:  series.ID,
		CatalogID: series.CatalogID,
		Title:     series.Title,
		StartDate: series.StartDate,
		EndDate:   series.EndDate,
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "series.created", decoded["event_type"])
	require.Equal(t, series.ID.String(), decoded["series_id"])
}

func TestSeriesPublishedEvent_Marshal(t *testing.T) {
	ev := events.SeriesPublishedEvent{
		EventType:       "series.published",
		SeriesID:        uuid.New(),
		LeadCoachID:     uuid.New(),
		PublishedAt:     time.Now(),
		CreatedSessions: 5,
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "series.published", decoded["event_type"])
	require.Equal(t, float64(5), decoded["created_sessions"])
}
