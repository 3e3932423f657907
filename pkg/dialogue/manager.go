package dialogue

import (
	"time"

	"voice-assistant-be/internal/entity"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/encyclopedia"
)

// Manager performs every Dialogue State transition so each one is logged and bumps
// the session generation.
type Manager struct {
	logger logger.ILogger
	now    func() time.Time
}

func NewManager(log logger.ILogger) *Manager {
	return &Manager{logger: log, now: time.Now}
}

// Reset closes any open thread.
func (m *Manager) Reset(session *Session) {
	prev := stateName(session)
	m.set(session, Idle{})
	if prev != (Idle{}).Name() {
		m.logger.Debug("DIALOGUE", "Transitioned to IDLE", map[string]interface{}{"session": session.ID, "from": prev})
	}
}

// AwaitSelection opens a disambiguation thread over the given candidates.
func (m *Manager) AwaitSelection(session *Session, term string, candidates []encyclopedia.Candidate) {
	m.set(session, PendingDisambiguation{Term: term, Candidates: candidates})
	m.logger.Debug("DIALOGUE", "Transitioned to PENDING_DISAMBIGUATION", map[string]interface{}{
		"session":    session.ID,
		"term":       term,
		"candidates": len(candidates),
	})
}

// AwaitEventChoice opens a Delete or Edit thread over the listed events.
func (m *Manager) AwaitEventChoice(session *Session, kind ActionKind, events []*entity.Event) {
	m.set(session, PendingAction{Kind: kind, Events: events})
	m.logger.Debug("DIALOGUE", "Transitioned to PENDING_"+string(kind), map[string]interface{}{
		"session": session.ID,
		"events":  len(events),
	})
}

// AwaitNewTitle moves an Edit thread to Rename for the chosen event.
func (m *Manager) AwaitNewTitle(session *Session, target *entity.Event) {
	var events []*entity.Event
	if pending, ok := session.State.(PendingAction); ok {
		events = pending.Events
	}
	m.set(session, PendingAction{Kind: ActionRename, Events: events, Target: target})
	m.logger.Debug("DIALOGUE", "Transitioned to PENDING_RENAME", map[string]interface{}{
		"session": session.ID,
		"event":   target.Id.String(),
	})
}

func (m *Manager) set(session *Session, state State) {
	session.State = state
	session.Generation++
	session.UpdatedAt = m.now()
}

func stateName(session *Session) string {
	if session.State == nil {
		return (Idle{}).Name()
	}
	return session.State.Name()
}
