package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"voice-assistant-be/internal/entity"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/dialogue"
)

// ErrInvalidSelection marks a reply that does not pick anything from a pending list.
var ErrInvalidSelection = errors.New("assistant: invalid selection")

type Intent string

const (
	IntentEmpty            Intent = "EMPTY"
	IntentGreeting         Intent = "GREETING"
	IntentDeleteEvent      Intent = "DELETE_EVENT"
	IntentEditEvent        Intent = "EDIT_EVENT"
	IntentRenameEvent      Intent = "RENAME_EVENT"
	IntentCreateEvent      Intent = "CREATE_EVENT"
	IntentMalformedEvent   Intent = "MALFORMED_EVENT"
	IntentPoem             Intent = "POEM"
	IntentDefinition       Intent = "DEFINITION"
	IntentDisambiguation   Intent = "DISAMBIGUATION"
	IntentFact             Intent = "FACT"
	IntentEcho             Intent = "ECHO"
	IntentCancel           Intent = "CANCEL"
	IntentInvalidSelection Intent = "INVALID_SELECTION"
	IntentFailure          Intent = "FAILURE"
)

// Response is what the assistant says back. Text is shown, Speech is spoken.
type Response struct {
	Intent  Intent        `json:"intent"`
	Text    string        `json:"text"`
	Speech  string        `json:"speech"`
	Options []string      `json:"options,omitempty"`
	Event   *entity.Event `json:"-"`
	State   string        `json:"state"`
}

func reply(intent Intent, text string) Response {
	return Response{Intent: intent, Text: text, Speech: text}
}

type Option func(*Router)

func WithEventStore(store EventStore) Option {
	return func(r *Router) { r.events = store }
}

func WithEncyclopedia(e Encyclopedia) Option {
	return func(r *Router) { r.encyclopedia = e }
}

func WithRenderer(renderer Renderer) Option {
	return func(r *Router) {
		if renderer != nil {
			r.renderer = renderer
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// Router decides what an utterance means and acts on it. A session with an open
// thread always gets continuation resolution first; otherwise the fresh
// classification waterfall runs and the first matching rule wins.
type Router struct {
	dialogue     *dialogue.Manager
	events       EventStore
	encyclopedia Encyclopedia
	renderer     Renderer
	logger       logger.ILogger
	now          func() time.Time
}

func NewRouter(manager *dialogue.Manager, log logger.ILogger, opts ...Option) *Router {
	r := &Router{
		dialogue: manager,
		renderer: nopRenderer{},
		logger:   log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle processes one utterance against the session and updates its state in place.
// Every failure is turned into a user-facing reply; Handle never returns an error.
func (r *Router) Handle(ctx context.Context, session *dialogue.Session, utterance string) Response {
	text := strings.TrimSpace(utterance)

	var resp Response
	if session.IsIdle() {
		resp = r.classify(ctx, session, text)
	} else {
		resp = r.continueThread(ctx, session, text)
	}

	resp.State = "IDLE"
	if session.State != nil {
		resp.State = session.State.Name()
	}

	r.logger.Debug("ROUTER", "Utterance handled", map[string]interface{}{
		"session": session.ID,
		"intent":  string(resp.Intent),
		"state":   resp.State,
	})
	return resp
}

func (r *Router) notifyChanged(ctx context.Context, session *dialogue.Session) {
	r.renderer.EventsChanged(ctx, session.UserID)
}
