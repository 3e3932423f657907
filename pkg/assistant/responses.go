package assistant

import (
	"fmt"
	"strings"
	"time"

	"voice-assistant-be/internal/entity"
	"voice-assistant-be/pkg/encyclopedia"
	"voice-assistant-be/pkg/extract"
)

const (
	msgPoem = "In circuits deep and wires bright,\nI dream in code through day and night.\nYou speak, I listen, thoughts arise,\nTogether we explore the skies."

	msgLookupFailed   = "I couldn't find a good Wikipedia summary for that term. Try a shorter or different query."
	msgNoTerm         = "I couldn't determine the term to define. Could you rephrase?"
	msgFetchFailed    = "Failed to fetch that article."
	msgSelectionNote  = `You can reply with the number (e.g. "2") or say/type the exact title.`
	msgCancelledPick  = "Okay, cancelled selection."
	msgCancelled      = "Okay, cancelled."
	msgEmpty          = "I didn't catch that. Could you say it again?"
	msgNoCalendar     = "Your calendar isn't available right now."
	msgMalformedEvent = `I couldn't work out the event title. Try something like: create event called "Team sync" tomorrow at 3pm, or schedule dentist appointment on friday at 10am.`
	msgNewTitleEmpty  = `Please tell me the new title, or say "cancel".`
)

const listTimeLayout = "Mon Jan 2, 3:04 PM"

var greetings = map[string]string{
	"hello":     "Hello! How can I help you today?",
	"hi":        "Hi there! What can I do for you?",
	"hey":       "Hey! What can I do for you?",
	"greetings": "Greetings! How can I help you today?",
	"welcome":   "Thank you! How can I help you today?",

	"how are you":         "I'm doing well, thank you for asking! How can I help you?",
	"how are you doing":   "I'm doing well, thank you for asking! How can I help you?",
	"how's it going":      "All systems running smoothly. What can I do for you?",
	"hows it going":       "All systems running smoothly. What can I do for you?",
	"how are things":      "Things are good on my end. What can I do for you?",
	"what's up":           "Not much, just waiting to help. What do you need?",
	"good morning":        "Good morning! What's on the agenda today?",
	"good afternoon":      "Good afternoon! How can I help?",
	"good evening":        "Good evening! How can I help?",
	"thanks":              "You're welcome!",
	"thank you":           "You're welcome!",
	"thanks a lot":        "Happy to help!",
	"thank you very much": "Happy to help!",
	"thx":                 "You're welcome!",
}

type fact struct {
	keywords []string
	answer   string
}

// Checked in order; the first keyword hit wins.
var facts = []fact{
	{
		keywords: []string{"free will"},
		answer: "Free will is the capacity to choose between different courses of action. Determinists argue every choice " +
			"is fixed by prior causes, libertarians hold that some choices are genuinely open, and compatibilists " +
			"say freedom means acting on your own reasons even in a caused world.",
	},
	{
		keywords: []string{"i think therefore i am", "cogito"},
		answer: "\"Cogito, ergo sum\" (I think, therefore I am) is Descartes' foundation for knowledge: even while doubting " +
			"everything, the act of doubting proves that a thinking self exists.",
	},
	{
		keywords: []string{"consciousness", "conscious"},
		answer: "Consciousness is the experience of being aware. The hard problem, as Chalmers put it, is explaining why " +
			"physical processes in the brain are accompanied by subjective experience at all.",
	},
	{
		keywords: []string{"stoicism", "stoic"},
		answer: "Stoicism teaches that virtue is the only true good and that we should focus on what is in our control: " +
			"our judgments and actions. Epictetus, Seneca and Marcus Aurelius are its best-known voices.",
	},
	{
		keywords: []string{"meaning of life"},
		answer: "Philosophers disagree. Aristotle pointed to flourishing, existentialists say we create meaning through " +
			"our choices, and Douglas Adams suggested 42.",
	},
}

func echoReply(text string) string {
	return fmt.Sprintf("You said: \"%s\". I'm thinking about that...", text)
}

func summaryReply(s *encyclopedia.Summary) Response {
	return Response{
		Intent: IntentDefinition,
		Text:   s.Title + ": " + s.Summary,
		Speech: s.Summary,
	}
}

func disambiguationReply(term string, candidates []encyclopedia.Candidate) Response {
	header := fmt.Sprintf("I found multiple meanings for %q. Which one did you mean?", term)

	options := make([]string, 0, len(candidates))
	var b strings.Builder
	b.WriteString(header)
	for i, c := range candidates {
		line := fmt.Sprintf("%d. %s", i+1, c.Title)
		options = append(options, line)
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\n")
	b.WriteString(msgSelectionNote)

	return Response{
		Intent:  IntentDisambiguation,
		Text:    b.String(),
		Speech:  header,
		Options: options,
	}
}

func eventListReply(intent Intent, verb string, events []*entity.Event) Response {
	header := fmt.Sprintf("Which event should I %s?", verb)

	options := make([]string, 0, len(events))
	var b strings.Builder
	b.WriteString(header)
	for i, e := range events {
		line := fmt.Sprintf("%d. %s (%s)", i+1, e.Summary, e.Start.Format(listTimeLayout))
		options = append(options, line)
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\nReply with the number, or say \"cancel\".")

	return Response{
		Intent:  intent,
		Text:    b.String(),
		Speech:  header + " Reply with its number.",
		Options: options,
	}
}

func invalidNumberReply(n int) string {
	return fmt.Sprintf("Invalid number. Please reply with a number from 1 to %d, or say \"cancel\".", n)
}

func unmatchedChoiceReply(n int) string {
	return fmt.Sprintf("I couldn't match that to any option. Reply with a number from 1 to %d, the exact title, or say \"cancel\".", n)
}

func createdReply(e *entity.Event, now time.Time) string {
	return fmt.Sprintf("Created %q %s.", e.Summary, describeWhen(e.Start, now))
}

func describeWhen(t, now time.Time) string {
	clock := t.Format("3:04 PM")
	switch {
	case extract.IsSameDay(now, t):
		return "today at " + clock
	case extract.IsSameDay(now.AddDate(0, 0, 1), t):
		return "tomorrow at " + clock
	default:
		return "on " + t.Format("Monday, January 2") + " at " + clock
	}
}
