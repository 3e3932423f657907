package assistant

import (
	"context"
	"fmt"
	"strings"

	"voice-assistant-be/internal/entity"
	"voice-assistant-be/pkg/dialogue"
	"voice-assistant-be/pkg/encyclopedia"
	"voice-assistant-be/pkg/extract"
)

// continueThread resolves a reply against the open thread. A reply that selects
// nothing re-prompts and leaves the thread open; only cancel words abandon it.
func (r *Router) continueThread(ctx context.Context, session *dialogue.Session, text string) Response {
	switch state := session.State.(type) {
	case dialogue.PendingDisambiguation:
		return r.resolveDisambiguation(ctx, session, state, text)
	case dialogue.PendingAction:
		if state.Kind == dialogue.ActionRename {
			return r.resolveRename(ctx, session, state, text)
		}
		return r.resolveEventChoice(ctx, session, state, text)
	default:
		r.dialogue.Reset(session)
		return r.classify(ctx, session, text)
	}
}

func (r *Router) resolveDisambiguation(ctx context.Context, session *dialogue.Session, state dialogue.PendingDisambiguation, text string) Response {
	if extract.IsCancel(text) {
		r.dialogue.Reset(session)
		return reply(IntentCancel, msgCancelledPick)
	}

	candidate, err := selectCandidate(state.Candidates, text)
	if err != nil {
		r.logger.Info("ROUTER", "Selection did not match", map[string]interface{}{
			"session": session.ID,
			"reply":   text,
			"error":   err.Error(),
		})
		if _, numeric := extract.ParseNumber(text); numeric {
			return reply(IntentInvalidSelection, invalidNumberReply(len(state.Candidates)))
		}
		return reply(IntentInvalidSelection, unmatchedChoiceReply(len(state.Candidates)))
	}

	r.dialogue.Reset(session)

	if r.encyclopedia == nil {
		return reply(IntentFailure, msgFetchFailed)
	}
	summary, err := r.encyclopedia.FetchSummary(ctx, candidate.Title)
	if err != nil {
		r.logger.Warn("ROUTER", "Failed to fetch selected title", map[string]interface{}{
			"title": candidate.Title,
			"error": err.Error(),
		})
		return reply(IntentFailure, msgFetchFailed)
	}
	return summaryReply(summary)
}

// selectCandidate tries, in order: a plain number, an ordinal word, then a
// case-insensitive exact or substring title match in either direction.
func selectCandidate(candidates []encyclopedia.Candidate, text string) (encyclopedia.Candidate, error) {
	if n, ok := extract.ParseNumber(text); ok {
		if n >= 1 && n <= len(candidates) {
			return candidates[n-1], nil
		}
		return encyclopedia.Candidate{}, fmt.Errorf("%w: %d out of range 1..%d", ErrInvalidSelection, n, len(candidates))
	}

	if n, ok := extract.ParseOrdinal(text); ok && n <= len(candidates) {
		return candidates[n-1], nil
	}

	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return encyclopedia.Candidate{}, fmt.Errorf("%w: empty reply", ErrInvalidSelection)
	}
	for _, c := range candidates {
		title := strings.ToLower(c.Title)
		if title == t || strings.Contains(title, t) || strings.Contains(t, title) {
			return c, nil
		}
	}
	return encyclopedia.Candidate{}, fmt.Errorf("%w: %q matches no candidate", ErrInvalidSelection, text)
}

func (r *Router) resolveEventChoice(ctx context.Context, session *dialogue.Session, state dialogue.PendingAction, text string) Response {
	if extract.IsCancel(text) {
		r.dialogue.Reset(session)
		return reply(IntentCancel, msgCancelled)
	}

	n, ok := extract.ParseNumber(text)
	if !ok || n < 1 || n > len(state.Events) {
		r.logger.Info("ROUTER", "Invalid event number", map[string]interface{}{
			"session": session.ID,
			"reply":   text,
			"error":   ErrInvalidSelection.Error(),
		})
		return reply(IntentInvalidSelection, invalidNumberReply(len(state.Events)))
	}
	event := state.Events[n-1]

	if state.Kind == dialogue.ActionEdit {
		r.dialogue.AwaitNewTitle(session, event)
		return reply(IntentEditEvent, fmt.Sprintf("What should the new title for %q be?", event.Summary))
	}

	r.dialogue.Reset(session)
	return r.deleteEvent(ctx, session, event)
}

func (r *Router) deleteEvent(ctx context.Context, session *dialogue.Session, event *entity.Event) Response {
	if r.events == nil {
		return reply(IntentFailure, msgNoCalendar)
	}

	deleted, err := r.events.DeleteEvent(ctx, session.UserID, event.Id)
	if err != nil || !deleted {
		r.logger.Error("ROUTER", "Failed to delete event", map[string]interface{}{
			"event":   event.Id.String(),
			"deleted": deleted,
			"error":   errString(err),
		})
		return reply(IntentFailure, "Sorry, I failed to delete that event.")
	}

	r.notifyChanged(ctx, session)
	resp := reply(IntentDeleteEvent, fmt.Sprintf("Deleted %q.", event.Summary))
	resp.Event = event
	return resp
}

func (r *Router) resolveRename(ctx context.Context, session *dialogue.Session, state dialogue.PendingAction, text string) Response {
	if extract.IsCancel(text) {
		r.dialogue.Reset(session)
		return reply(IntentCancel, msgCancelled)
	}
	if text == "" {
		return reply(IntentInvalidSelection, msgNewTitleEmpty)
	}

	target := state.Target
	r.dialogue.Reset(session)

	if r.events == nil || target == nil {
		return reply(IntentFailure, msgNoCalendar)
	}

	updated, err := r.events.UpdateEvent(ctx, session.UserID, target.Id, EventPatch{Summary: &text})
	if err != nil || !updated {
		r.logger.Error("ROUTER", "Failed to rename event", map[string]interface{}{
			"event":   target.Id.String(),
			"updated": updated,
			"error":   errString(err),
		})
		return reply(IntentFailure, "Sorry, I failed to rename that event.")
	}

	r.notifyChanged(ctx, session)

	renamed := *target
	renamed.Summary = text
	resp := reply(IntentRenameEvent, fmt.Sprintf("Renamed %q to %q.", target.Summary, text))
	resp.Event = &renamed
	return resp
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
