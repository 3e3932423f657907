package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractEventTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{"heuristic with date", "create event workout tomorrow at 6am", "workout", true},
		{"heuristic with article", "schedule a meeting Budget Review on friday", "Budget Review", true},
		{"heuristic strips fillers", "please can you book the dentist appointment for me tomorrow", "dentist appointment", true},
		{"set up", "set up an event team lunch today", "team lunch", true},
		{"called unquoted", "create a meeting called Sprint Planning next week", "Sprint Planning", true},
		{"named quoted", "add event named 'Mom birthday' on the 12th", "Mom birthday", true},
		{"titled curly quotes", "plan an event titled “Launch Party” tomorrow", "Launch Party", true},
		{"first quoted", `add "Pay rent" to my reminders on the 1st`, "Pay rent", true},
		{"noun only", "meeting with design team tomorrow", "with design team", true},
		{"no trigger or noun", "what is the weather like", "", false},
		{"too short", "create event x tomorrow", "", false},
		{"nothing before date", "schedule a meeting at 3pm", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractEventTitle(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractEventTitle_QuotedCalledRoundTrip(t *testing.T) {
	titles := []string{
		"ab",
		"Quarterly Review",
		"call mom tomorrow at 5",
		"Meeting: the sequel!",
		"ünïcödé party",
		strings.Repeat("x", 99),
	}
	verbs := []string{"create event", "CREATE EVENT", "Create Event", "cReAtE eVeNt"}

	for _, title := range titles {
		for _, verb := range verbs {
			got, ok := ExtractEventTitle(verb + ` called "` + title + `" tomorrow`)
			assert.True(t, ok, title)
			assert.Equal(t, title, got)
		}
	}
}

func TestGateHelpers(t *testing.T) {
	assert.True(t, HasTrigger("Set  up a call"))
	assert.False(t, HasTrigger("addition"))
	assert.True(t, HasEventNoun("my Meetings"))
	assert.False(t, HasEventNoun("eventually"))
}
