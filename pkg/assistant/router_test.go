package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"voice-assistant-be/internal/entity"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/dialogue"
	"voice-assistant-be/pkg/encyclopedia"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, 2025-01-15 14:37 local
var testNow = time.Date(2025, time.January, 15, 14, 37, 0, 0, time.Local)

type fakeEncyclopedia struct {
	summaries map[string]encyclopedia.Summary
	searches  map[string][]encyclopedia.Candidate
	fetched   []string
}

func (f *fakeEncyclopedia) FetchSummary(_ context.Context, title string) (*encyclopedia.Summary, error) {
	f.fetched = append(f.fetched, title)
	s, ok := f.summaries[title]
	if !ok {
		return nil, encyclopedia.ErrTitleNotFound
	}
	return &s, nil
}

func (f *fakeEncyclopedia) Lookup(ctx context.Context, term string) (*encyclopedia.SearchResult, error) {
	if s, ok := f.summaries[term]; ok {
		return &encyclopedia.SearchResult{Summary: &s}, nil
	}
	hits, ok := f.searches[term]
	if !ok {
		return nil, errors.Join(encyclopedia.ErrTitleNotFound, encyclopedia.ErrNoResults)
	}
	return &encyclopedia.SearchResult{Disambiguation: true, Term: term, Candidates: hits}, nil
}

type failingStore struct{ *MemoryEventStore }

func (f *failingStore) DeleteEvent(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, errors.New("db down")
}

type fixture struct {
	router  *Router
	store   *MemoryEventStore
	wiki    *fakeEncyclopedia
	session *dialogue.Session
	renders int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: NewMemoryEventStore(),
		wiki: &fakeEncyclopedia{
			summaries: map[string]encyclopedia.Summary{
				"Stoicism":            {Title: "Stoicism", Summary: "A school of Hellenistic philosophy."},
				"Mercury (planet)":    {Title: "Mercury (planet)", Summary: "The smallest planet."},
				"Mercury (element)":   {Title: "Mercury (element)", Summary: "A chemical element."},
				"Mercury (mythology)": {Title: "Mercury (mythology)", Summary: "A Roman god."},
			},
			searches: map[string][]encyclopedia.Candidate{
				"mercury": {
					{Title: "Mercury (planet)"},
					{Title: "Mercury (element)"},
					{Title: "Mercury (mythology)"},
				},
			},
		},
		session: dialogue.NewSession("conv-test", uuid.New()),
	}

	log := logger.NewNopLogger()
	f.router = NewRouter(dialogue.NewManager(log), log,
		WithEventStore(f.store),
		WithEncyclopedia(f.wiki),
		WithRenderer(RendererFunc(func(context.Context, uuid.UUID) { f.renders++ })),
		WithClock(func() time.Time { return testNow }),
	)
	return f
}

func (f *fixture) say(text string) Response {
	return f.router.Handle(context.Background(), f.session, text)
}

func (f *fixture) seed(t *testing.T, titles ...string) []*entity.Event {
	t.Helper()
	for i, title := range titles {
		start := testNow.Add(time.Duration(i+1) * time.Hour)
		_, err := f.store.CreateEvent(context.Background(), f.session.UserID, EventDraft{Summary: title, Start: start, End: start.Add(time.Hour)})
		require.NoError(t, err)
	}
	events, err := f.store.ListEvents(context.Background(), f.session.UserID)
	require.NoError(t, err)
	return events
}

func TestCreateEventEndToEnd(t *testing.T) {
	f := newFixture(t)

	resp := f.say("create event workout tomorrow at 6am")

	assert.Equal(t, IntentCreateEvent, resp.Intent)
	events, err := f.store.ListEvents(context.Background(), f.session.UserID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "workout", e.Summary)
	assert.Equal(t, time.Date(2025, time.January, 16, 6, 0, 0, 0, time.Local), e.Start)
	assert.Equal(t, time.Date(2025, time.January, 16, 7, 0, 0, 0, time.Local), e.End)
	assert.Equal(t, "assistant", e.Metadata["source"])
	assert.Equal(t, `Created "workout" tomorrow at 6:00 AM.`, resp.Text)
	assert.Equal(t, 1, f.renders)
	assert.True(t, f.session.IsIdle())
}

func TestDeleteEventEndToEnd(t *testing.T) {
	f := newFixture(t)
	seeded := f.seed(t, "Standup", "Design review")

	resp := f.say("delete my meeting")
	assert.Equal(t, IntentDeleteEvent, resp.Intent)
	require.Len(t, resp.Options, 2)
	assert.True(t, strings.HasPrefix(resp.Options[0], "1. Standup"))
	assert.True(t, strings.HasPrefix(resp.Options[1], "2. Design review"))
	assert.Equal(t, "PENDING_DELETE", resp.State)

	resp = f.say("2")
	assert.Equal(t, IntentDeleteEvent, resp.Intent)
	assert.Equal(t, `Deleted "Design review".`, resp.Text)
	assert.True(t, f.session.IsIdle())
	assert.Equal(t, "IDLE", resp.State)

	remaining, _ := f.store.ListEvents(context.Background(), f.session.UserID)
	require.Len(t, remaining, 1)
	assert.Equal(t, seeded[0].Id, remaining[0].Id)
	assert.Equal(t, 1, f.renders)
}

func TestDeleteWithNoEvents(t *testing.T) {
	f := newFixture(t)

	resp := f.say("remove the appointment")
	assert.Equal(t, "You don't have any events to delete.", resp.Text)
	assert.True(t, f.session.IsIdle())
}

func TestPendingActionInvalidNumberKeepsState(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Standup", "Design review")
	f.say("delete meeting")

	for _, bad := range []string{"7", "0", "two", ""} {
		resp := f.say(bad)
		assert.Equal(t, IntentInvalidSelection, resp.Intent, bad)
		assert.Contains(t, resp.Text, "Invalid number")
		pending, ok := f.session.State.(dialogue.PendingAction)
		require.True(t, ok)
		assert.Len(t, pending.Events, 2)
	}

	resp := f.say("Never mind")
	assert.Equal(t, IntentCancel, resp.Intent)
	assert.True(t, f.session.IsIdle())

	events, _ := f.store.ListEvents(context.Background(), f.session.UserID)
	assert.Len(t, events, 2)
}

func TestEditRenameFlow(t *testing.T) {
	f := newFixture(t)
	seeded := f.seed(t, "Standup", "Design review")

	resp := f.say("rename an event")
	assert.Equal(t, IntentEditEvent, resp.Intent)

	resp = f.say("1")
	assert.Equal(t, `What should the new title for "Standup" be?`, resp.Text)
	assert.Equal(t, "PENDING_RENAME", resp.State)

	// the next utterance is taken verbatim, even if it looks like a command
	resp = f.say("  delete meeting notes  ")
	assert.Equal(t, IntentRenameEvent, resp.Intent)
	assert.Equal(t, `Renamed "Standup" to "delete meeting notes".`, resp.Text)
	assert.True(t, f.session.IsIdle())

	events, _ := f.store.ListEvents(context.Background(), f.session.UserID)
	assert.Equal(t, seeded[0].Id, events[0].Id)
	assert.Equal(t, "delete meeting notes", events[0].Summary)
}

func TestRenameRejectsEmptyTitle(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Standup")
	f.say("edit event")
	f.say("1")

	resp := f.say("   ")
	assert.Equal(t, IntentInvalidSelection, resp.Intent)
	assert.Equal(t, "PENDING_RENAME", resp.State)

	resp = f.say("cancel")
	assert.Equal(t, IntentCancel, resp.Intent)
	assert.True(t, f.session.IsIdle())
}

func TestDeleteFailureResets(t *testing.T) {
	log := logger.NewNopLogger()
	store := &failingStore{MemoryEventStore: NewMemoryEventStore()}
	router := NewRouter(dialogue.NewManager(log), log, WithEventStore(store))
	session := dialogue.NewSession("c", uuid.New())

	_, err := store.CreateEvent(context.Background(), session.UserID, EventDraft{Summary: "Standup", Start: testNow})
	require.NoError(t, err)

	router.Handle(context.Background(), session, "delete meeting")
	resp := router.Handle(context.Background(), session, "1")

	assert.Equal(t, IntentFailure, resp.Intent)
	assert.Equal(t, "Sorry, I failed to delete that event.", resp.Text)
	assert.True(t, session.IsIdle())
}

func TestDisambiguationEndToEnd(t *testing.T) {
	f := newFixture(t)

	resp := f.say("what is mercury")
	assert.Equal(t, IntentDisambiguation, resp.Intent)
	assert.Equal(t, `I found multiple meanings for "mercury". Which one did you mean?`, resp.Speech)
	assert.Equal(t, []string{"1. Mercury (planet)", "2. Mercury (element)", "3. Mercury (mythology)"}, resp.Options)

	resp = f.say("second")
	assert.Equal(t, IntentDefinition, resp.Intent)
	assert.Equal(t, "Mercury (element): A chemical element.", resp.Text)
	assert.Equal(t, "A chemical element.", resp.Speech, "only the summary is spoken")
	assert.Equal(t, []string{"Mercury (element)"}, f.wiki.fetched)
	assert.True(t, f.session.IsIdle())
}

func TestDisambiguationInvalidIndexIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.say("define mercury")
	before := f.session.State.(dialogue.PendingDisambiguation)

	for i := 0; i < 2; i++ {
		resp := f.say("9")
		assert.Equal(t, IntentInvalidSelection, resp.Intent)
		assert.Contains(t, resp.Text, "Invalid number")

		after, ok := f.session.State.(dialogue.PendingDisambiguation)
		require.True(t, ok)
		assert.Equal(t, before.Candidates, after.Candidates)
		assert.Equal(t, before.Term, after.Term)
	}
	assert.Empty(t, f.wiki.fetched)
}

func TestDisambiguationSelections(t *testing.T) {
	tests := []struct {
		reply string
		title string
	}{
		{"1", "Mercury (planet)"},
		{" 3 ", "Mercury (mythology)"},
		{"the third one", "Mercury (mythology)"},
		{"mercury (ELEMENT)", "Mercury (element)"},
		{"mythology", "Mercury (mythology)"},
		{"I meant Mercury (planet) please", "Mercury (planet)"},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			f := newFixture(t)
			f.say("tell me about mercury")

			resp := f.say(tt.reply)
			assert.Equal(t, IntentDefinition, resp.Intent)
			assert.Equal(t, []string{tt.title}, f.wiki.fetched)
		})
	}
}

func TestDisambiguationOrdinalOutOfRangeFallsBackToTitle(t *testing.T) {
	f := newFixture(t)
	f.say("what is mercury")

	resp := f.say("fifth")
	assert.Equal(t, IntentInvalidSelection, resp.Intent)
	assert.Contains(t, resp.Text, "couldn't match")
	assert.False(t, f.session.IsIdle())
}

func TestDisambiguationCancel(t *testing.T) {
	f := newFixture(t)
	f.say("what is mercury")

	resp := f.say("Cancel")
	assert.Equal(t, "Okay, cancelled selection.", resp.Text)
	assert.True(t, f.session.IsIdle())
}

func TestFreshWaterfall(t *testing.T) {
	tests := []struct {
		input  string
		intent Intent
		text   string
	}{
		{"Hello!", IntentGreeting, "Hello! How can I help you today?"},
		{"good   morning", IntentGreeting, "Good morning! What's on the agenda today?"},
		{"thank you.", IntentGreeting, "You're welcome!"},
		{"schedule a meeting at 3pm", IntentMalformedEvent, msgMalformedEvent},
		{"write me a poem", IntentPoem, msgPoem},
		{"define Stoicism", IntentDefinition, "Stoicism: A school of Hellenistic philosophy."},
		{"what is zzzqqq", IntentFailure, msgLookupFailed},
		{"do we really have free will", IntentFact, ""},
		{"I feel like a true stoic today", IntentFact, ""},
		{"hello there friend", IntentEcho, `You said: "hello there friend". I'm thinking about that...`},
		{"   ", IntentEmpty, msgEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f := newFixture(t)
			resp := f.say(tt.input)
			assert.Equal(t, tt.intent, resp.Intent)
			if tt.text != "" {
				assert.Equal(t, tt.text, resp.Text)
			}
			assert.NotEmpty(t, resp.Speech)
			assert.True(t, f.session.IsIdle())
		})
	}
}

func TestWaterfallPrecedence(t *testing.T) {
	f := newFixture(t)

	// creation wins over the poem rule
	resp := f.say(`create event called "poem reading" tomorrow`)
	assert.Equal(t, IntentCreateEvent, resp.Intent)

	// greeting only matches the whole utterance
	resp = f.say("hi, what is Stoicism")
	assert.Equal(t, IntentDefinition, resp.Intent)
}

func TestMissingCollaborators(t *testing.T) {
	log := logger.NewNopLogger()
	router := NewRouter(dialogue.NewManager(log), log)
	session := dialogue.NewSession("bare", uuid.New())

	resp := router.Handle(context.Background(), session, "create event gym tomorrow")
	assert.Equal(t, msgNoCalendar, resp.Text)

	resp = router.Handle(context.Background(), session, "define gravity")
	assert.Equal(t, msgLookupFailed, resp.Text)
}
