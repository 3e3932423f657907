package service

import (
	"context"
	"strings"

	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/assistant"
	"voice-assistant-be/pkg/events"
	pktNats "voice-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

const calendarSubject = "events.calendar.>"

// CalendarNotifier listens for calendar events on the bus and tells the user's open
// views to refresh.
type CalendarNotifier struct {
	subscriber *pktNats.Subscriber
	renderer   assistant.Renderer
	logger     logger.ILogger
}

func NewCalendarNotifier(sub *pktNats.Subscriber, renderer assistant.Renderer, log logger.ILogger) *CalendarNotifier {
	return &CalendarNotifier{
		subscriber: sub,
		renderer:   renderer,
		logger:     log,
	}
}

func (n *CalendarNotifier) Start(ctx context.Context) error {
	if err := n.subscriber.Subscribe(ctx, calendarSubject, "calendar-notifier", n.handleEvent); err != nil {
		n.logger.Error("CALENDAR_NOTIFIER", "Failed to start subscriber", map[string]interface{}{"error": err})
		return err
	}
	n.logger.Info("CALENDAR_NOTIFIER", "Listening for calendar events", map[string]interface{}{"subject": calendarSubject})
	return nil
}

func (n *CalendarNotifier) handleEvent(ctx context.Context, event events.Event) error {
	if !strings.HasPrefix(event.EventType(), "calendar.") {
		return nil
	}

	userID, err := uuid.Parse(events.UserID(event))
	if err != nil {
		n.logger.Warn("CALENDAR_NOTIFIER", "Event without a valid user", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	n.renderer.EventsChanged(ctx, userID)
	return nil
}
