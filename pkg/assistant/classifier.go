package assistant

import (
	"context"
	"regexp"
	"strings"

	"voice-assistant-be/pkg/dialogue"
	"voice-assistant-be/pkg/extract"
)

var (
	deleteVerbPattern = regexp.MustCompile(`(?i)\b(delete|remove)\b`)
	editVerbPattern   = regexp.MustCompile(`(?i)\b(edit|change|rename)\b`)
	poemPattern       = regexp.MustCompile(`(?i)poem`)
	greetingTrim      = regexp.MustCompile(`[\s!.?,]+$`)
)

var factPatterns = compileFacts(facts)

type compiledFact struct {
	pattern *regexp.Regexp
	answer  string
}

func compileFacts(list []fact) []compiledFact {
	out := make([]compiledFact, 0, len(list))
	for _, f := range list {
		quoted := make([]string, 0, len(f.keywords))
		for _, k := range f.keywords {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
		out = append(out, compiledFact{
			pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
			answer:  f.answer,
		})
	}
	return out
}

// classify runs the fresh-intent waterfall:
//  1. greeting (whole utterance)
//  2. delete + event noun
//  3. edit + event noun
//  4. event creation
//  5. malformed creation (trigger and noun, no title)
//  6. poem
//  7. definition / knowledge query
//  8. fixed-fact topics
//  9. echo
func (r *Router) classify(ctx context.Context, session *dialogue.Session, text string) Response {
	if text == "" {
		return reply(IntentEmpty, msgEmpty)
	}

	if answer, ok := matchGreeting(text); ok {
		return reply(IntentGreeting, answer)
	}

	if deleteVerbPattern.MatchString(text) && extract.HasEventNoun(text) {
		return r.listEventsFor(ctx, session, dialogue.ActionDelete)
	}

	if editVerbPattern.MatchString(text) && extract.HasEventNoun(text) {
		return r.listEventsFor(ctx, session, dialogue.ActionEdit)
	}

	if title, ok := extract.ExtractEventTitle(text); ok {
		return r.createEvent(ctx, session, title, text)
	}

	if extract.HasTrigger(text) && extract.HasEventNoun(text) {
		return reply(IntentMalformedEvent, msgMalformedEvent)
	}

	if poemPattern.MatchString(text) {
		return reply(IntentPoem, msgPoem)
	}

	if extract.IsDefinitionQuery(text) {
		return r.define(ctx, session, text)
	}

	for _, f := range factPatterns {
		if f.pattern.MatchString(text) {
			return reply(IntentFact, f.answer)
		}
	}

	return reply(IntentEcho, echoReply(text))
}

func matchGreeting(text string) (string, bool) {
	key := strings.Join(strings.Fields(strings.ToLower(greetingTrim.ReplaceAllString(text, ""))), " ")
	answer, ok := greetings[key]
	return answer, ok
}

func (r *Router) listEventsFor(ctx context.Context, session *dialogue.Session, kind dialogue.ActionKind) Response {
	intent, verb := IntentDeleteEvent, "delete"
	if kind == dialogue.ActionEdit {
		intent, verb = IntentEditEvent, "edit"
	}

	if r.events == nil {
		return reply(IntentFailure, msgNoCalendar)
	}

	events, err := r.events.ListEvents(ctx, session.UserID)
	if err != nil {
		r.logger.Error("ROUTER", "Failed to list events", map[string]interface{}{"error": err.Error()})
		return reply(IntentFailure, "Sorry, I failed to load your events.")
	}
	if len(events) == 0 {
		return reply(intent, "You don't have any events to "+verb+".")
	}

	r.dialogue.AwaitEventChoice(session, kind, events)
	return eventListReply(intent, verb, events)
}

func (r *Router) createEvent(ctx context.Context, session *dialogue.Session, title, text string) Response {
	if r.events == nil {
		return reply(IntentFailure, msgNoCalendar)
	}

	now := r.now()
	start, end := extract.ResolveSchedule(text, now)

	event, err := r.events.CreateEvent(ctx, session.UserID, EventDraft{
		Summary: title,
		Start:   start,
		End:     end,
		Metadata: map[string]interface{}{
			"source":    "assistant",
			"utterance": text,
		},
	})
	if err != nil {
		r.logger.Error("ROUTER", "Failed to create event", map[string]interface{}{"title": title, "error": err.Error()})
		return reply(IntentFailure, "Sorry, I failed to create that event.")
	}

	r.logger.Info("ROUTER", "Event created", map[string]interface{}{
		"event": event.Id.String(),
		"start": start,
	})
	r.notifyChanged(ctx, session)

	resp := reply(IntentCreateEvent, createdReply(event, now))
	resp.Event = event
	return resp
}

// define runs the lookup policy: exact title first, search on any failure, one
// generic message when both fail.
func (r *Router) define(ctx context.Context, session *dialogue.Session, text string) Response {
	term, ok := extract.ExtractDefinitionTerm(text)
	if !ok {
		return reply(IntentDefinition, msgNoTerm)
	}
	if r.encyclopedia == nil {
		return reply(IntentFailure, msgLookupFailed)
	}

	result, err := r.encyclopedia.Lookup(ctx, term)
	if err != nil {
		r.logger.Warn("ROUTER", "Lookup failed", map[string]interface{}{"term": term, "error": err.Error()})
		return reply(IntentFailure, msgLookupFailed)
	}

	if result.Disambiguation && len(result.Candidates) > 0 {
		r.dialogue.AwaitSelection(session, result.Term, result.Candidates)
		return disambiguationReply(result.Term, result.Candidates)
	}
	if result.Summary == nil {
		return reply(IntentFailure, msgLookupFailed)
	}
	return summaryReply(result.Summary)
}
