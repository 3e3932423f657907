package events

import (
	"context"
	"time"
)

const (
	TypeCalendarEventCreated = "calendar.created"
	TypeCalendarEventUpdated = "calendar.updated"
	TypeCalendarEventDeleted = "calendar.deleted"
	TypeCalendarSynced       = "calendar.synced"
)

// Event is a domain fact published on the bus.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Publisher sends events to whatever bus is configured.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// CalendarChanged builds the event emitted whenever a user's calendar is modified.
func CalendarChanged(eventType, userID, eventID string) BaseEvent {
	data := map[string]interface{}{"user_id": userID}
	if eventID != "" {
		data["event_id"] = eventID
	}
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

// UserID reads the owning user from a calendar event payload.
func UserID(e Event) string {
	if e == nil {
		return ""
	}
	id, _ := e.Payload()["user_id"].(string)
	return id
}
