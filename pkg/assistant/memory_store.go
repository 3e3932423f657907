package assistant

import (
	"context"
	"sort"
	"sync"
	"time"

	"voice-assistant-be/internal/entity"

	"github.com/google/uuid"
)

// MemoryEventStore keeps events in process. Used by the console client and tests.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]*entity.Event
	now    func() time.Time
}

func NewMemoryEventStore() *MemoryEventStore {
	return &MemoryEventStore{
		events: make(map[uuid.UUID][]*entity.Event),
		now:    time.Now,
	}
}

// ListEvents returns copies ordered by start time.
func (s *MemoryEventStore) ListEvents(_ context.Context, userID uuid.UUID) ([]*entity.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Event, 0, len(s.events[userID]))
	for _, e := range s.events[userID] {
		c := *e
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *MemoryEventStore) CreateEvent(_ context.Context, userID uuid.UUID, draft EventDraft) (*entity.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := &entity.Event{
		Id:          uuid.New(),
		UserId:      userID,
		Summary:     draft.Summary,
		Description: draft.Description,
		Location:    draft.Location,
		Start:       draft.Start,
		End:         draft.End,
		Metadata:    draft.Metadata,
		CreatedAt:   s.now(),
	}
	s.events[userID] = append(s.events[userID], e)

	c := *e
	return &c, nil
}

func (s *MemoryEventStore) UpdateEvent(_ context.Context, userID, eventID uuid.UUID, patch EventPatch) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.events[userID] {
		if e.Id != eventID {
			continue
		}
		ApplyPatch(e, patch)
		now := s.now()
		e.UpdatedAt = &now
		return true, nil
	}
	return false, nil
}

func (s *MemoryEventStore) DeleteEvent(_ context.Context, userID, eventID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.events[userID]
	for i, e := range list {
		if e.Id == eventID {
			s.events[userID] = append(list[:i:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// ApplyPatch copies the set fields of patch onto e.
func ApplyPatch(e *entity.Event, patch EventPatch) {
	if patch.Summary != nil {
		e.Summary = *patch.Summary
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Location != nil {
		e.Location = *patch.Location
	}
	if patch.Start != nil {
		e.Start = *patch.Start
	}
	if patch.End != nil {
		e.End = *patch.End
	}
}
