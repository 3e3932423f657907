package assistant

import (
	"context"
	"time"

	"voice-assistant-be/internal/entity"
	"voice-assistant-be/pkg/encyclopedia"

	"github.com/google/uuid"
)

// EventDraft is what the router asks the store to create.
type EventDraft struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	Metadata    map[string]interface{}
}

// EventPatch updates only the non-nil fields.
type EventPatch struct {
	Summary     *string
	Description *string
	Location    *string
	Start       *time.Time
	End         *time.Time
}

// EventStore owns the user's calendar. Update and Delete report false when the event does not exist.
type EventStore interface {
	ListEvents(ctx context.Context, userID uuid.UUID) ([]*entity.Event, error)
	CreateEvent(ctx context.Context, userID uuid.UUID, draft EventDraft) (*entity.Event, error)
	UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, patch EventPatch) (bool, error)
	DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) (bool, error)
}

// Renderer is told when the user's calendar changed so views can refresh.
type Renderer interface {
	EventsChanged(ctx context.Context, userID uuid.UUID)
}

// Encyclopedia resolves definition queries.
type Encyclopedia interface {
	FetchSummary(ctx context.Context, title string) (*encyclopedia.Summary, error)
	Lookup(ctx context.Context, term string) (*encyclopedia.SearchResult, error)
}

type nopRenderer struct{}

func (nopRenderer) EventsChanged(context.Context, uuid.UUID) {}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, userID uuid.UUID)

func (f RendererFunc) EventsChanged(ctx context.Context, userID uuid.UUID) {
	f(ctx, userID)
}
