package entity

import (
	"time"

	"github.com/google/uuid"
)

// Event is a calendar entry owned by one user.
type Event struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Metadata    map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
