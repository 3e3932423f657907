package dialogue

import (
	"time"

	"voice-assistant-be/internal/entity"
	"voice-assistant-be/pkg/encyclopedia"

	"github.com/google/uuid"
)

// State is what the conversation is waiting for. Exactly one value is live per Session:
// Idle, PendingDisambiguation or PendingAction.
type State interface {
	Name() string
	isState()
}

// Idle means no thread is open; every utterance is classified fresh.
type Idle struct{}

// PendingDisambiguation waits for the user to pick one of several lookup candidates.
type PendingDisambiguation struct {
	Term       string
	Candidates []encyclopedia.Candidate
}

type ActionKind string

const (
	ActionDelete ActionKind = "DELETE"
	ActionEdit   ActionKind = "EDIT"
	ActionRename ActionKind = "RENAME"
)

// PendingAction waits for an event number (Delete, Edit) or a new title (Rename).
// Target is only set for Rename.
type PendingAction struct {
	Kind   ActionKind
	Events []*entity.Event
	Target *entity.Event
}

func (Idle) Name() string                  { return "IDLE" }
func (PendingDisambiguation) Name() string { return "PENDING_DISAMBIGUATION" }
func (a PendingAction) Name() string       { return "PENDING_" + string(a.Kind) }

func (Idle) isState()                  {}
func (PendingDisambiguation) isState() {}
func (PendingAction) isState()         {}

// Session is the conversational context of one conversation.
type Session struct {
	ID     string    `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	State  State     `json:"-"`

	// Generation increments on every transition; a handler that saw generation N
	// must not overwrite a session that has moved past it.
	Generation uint64    `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewSession(id string, userID uuid.UUID) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		State:     Idle{},
		UpdatedAt: time.Now(),
	}
}

// IsIdle reports whether no thread is open. A nil State counts as Idle.
func (s *Session) IsIdle() bool {
	if s.State == nil {
		return true
	}
	_, ok := s.State.(Idle)
	return ok
}

// Clone copies the session so a handler can work on it without touching the stored value.
// Slices inside the state are shared; states are replaced, never mutated in place.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}
