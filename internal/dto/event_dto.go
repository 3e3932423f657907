package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateEventRequest struct {
	Summary     string                 `json:"summary" validate:"required,max=255"`
	Description string                 `json:"description" validate:"max=5000"`
	Location    string                 `json:"location" validate:"max=255"`
	Start       time.Time              `json:"start" validate:"required"`
	End         time.Time              `json:"end" validate:"required,gtfield=Start"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// UpdateEventRequest patches only the fields that are present.
type UpdateEventRequest struct {
	Summary     *string    `json:"summary" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Location    *string    `json:"location" validate:"omitempty,max=255"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end"`
}

// ListEventsRequest bounds are RFC 3339 timestamps; either may be omitted.
// Upcoming drops events that have already ended.
type ListEventsRequest struct {
	From     string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To       string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Upcoming bool   `query:"upcoming"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset   int    `query:"offset" validate:"omitempty,min=0"`
}

func (r ListEventsRequest) Range() (from, to time.Time) {
	from, _ = time.Parse(time.RFC3339, r.From)
	to, _ = time.Parse(time.RFC3339, r.To)
	return from, to
}

type SyncEventsRequest struct {
	Events []CreateEventRequest `json:"events" validate:"dive"`
}

type EventResponse struct {
	Id          uuid.UUID              `json:"id"`
	Summary     string                 `json:"summary"`
	Description string                 `json:"description,omitempty"`
	Location    string                 `json:"location,omitempty"`
	Start       time.Time              `json:"start"`
	End         time.Time              `json:"end"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   *time.Time             `json:"updated_at,omitempty"`
}

type SyncEventsResponse struct {
	Count   int    `json:"count"`
	FeedURL string `json:"feed_url"`
}

type FeedURLResponse struct {
	FeedURL string `json:"feed_url"`
}
