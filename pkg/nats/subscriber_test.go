package nats

import (
	"encoding/json"
	"testing"
	"time"

	"voice-assistant-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	at := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(events.BaseEvent{
		Type:       events.TypeCalendarEventCreated,
		Data:       map[string]interface{}{"user_id": "u-1", "event_id": "e-1"},
		OccurredAt: at,
	})
	require.NoError(t, err)

	event, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, events.TypeCalendarEventCreated, event.EventType())
	assert.Equal(t, "u-1", events.UserID(event))
	assert.True(t, at.Equal(event.Timestamp()))
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"data":{}}`))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.calendar.deleted", Subject(events.TypeCalendarEventDeleted))
}
