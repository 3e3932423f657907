package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/entity"
	"voice-assistant-be/internal/mapper"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/repository/specification"
	"voice-assistant-be/internal/repository/unitofwork"
	"voice-assistant-be/pkg/assistant"
	"voice-assistant-be/pkg/events"
	"voice-assistant-be/pkg/ics"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// FeedInvalidateTopic carries {"user_id"} whenever a user's rendered feed must be dropped.
const FeedInvalidateTopic = "calendar.feed.invalidate"

var ErrEventNotFound = fiber.NewError(fiber.StatusNotFound, "Event not found")

type IEventService interface {
	assistant.EventStore

	List(ctx context.Context, userId uuid.UUID, req *dto.ListEventsRequest) ([]*dto.EventResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	Update(ctx context.Context, userId, eventId uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, userId, eventId uuid.UUID) error
	Sync(ctx context.Context, userId uuid.UUID, req *dto.SyncEventsRequest) (*dto.SyncEventsResponse, error)

	Feed(ctx context.Context, userId uuid.UUID) (string, error)
	FeedURL(userId uuid.UUID) string
	InvalidateFeed(userId uuid.UUID)
}

type EventServiceConfig struct {
	BaseURL  string
	Feed     ics.Feed
	FeedTTL  time.Duration
	Bus      events.Publisher  // optional
	FeedSink message.Publisher // optional; nil invalidates inline
}

type eventService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.EventMapper
	feeds      *cache.Cache
	cfg        EventServiceConfig
	logger     logger.ILogger
}

func NewEventService(uowFactory unitofwork.RepositoryFactory, cfg EventServiceConfig, log logger.ILogger) IEventService {
	if cfg.FeedTTL <= 0 {
		cfg.FeedTTL = 10 * time.Minute
	}
	return &eventService{
		uowFactory: uowFactory,
		mapper:     mapper.NewEventMapper(),
		feeds:      cache.New(cfg.FeedTTL, 2*cfg.FeedTTL),
		cfg:        cfg,
		logger:     log,
	}
}

// --- assistant.EventStore ---

func (s *eventService) ListEvents(ctx context.Context, userID uuid.UUID) ([]*entity.Event, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.EventRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.ChronologicalOrder{},
	)
}

func (s *eventService) CreateEvent(ctx context.Context, userID uuid.UUID, draft assistant.EventDraft) (*entity.Event, error) {
	event := &entity.Event{
		UserId:      userID,
		Summary:     draft.Summary,
		Description: draft.Description,
		Location:    draft.Location,
		Start:       draft.Start,
		End:         draft.End,
		Metadata:    draft.Metadata,
	}
	if event.End.Before(event.Start) {
		event.End = event.Start
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.EventRepository().Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.changed(ctx, userID, events.TypeCalendarEventCreated, event.Id)
	return event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, userID, eventID uuid.UUID, patch assistant.EventPatch) (bool, error) {
	event, err := s.patch(ctx, userID, eventID, patch)
	if err != nil {
		return false, err
	}
	return event != nil, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, userID, eventID uuid.UUID) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.EventRepository()

	existing, err := repo.FindOne(ctx, specification.ByID{ID: eventID}, specification.UserOwnedBy{UserID: userID})
	if err != nil {
		return false, fmt.Errorf("find event: %w", err)
	}
	if existing == nil {
		return false, nil
	}

	if err := repo.Delete(ctx, eventID); err != nil {
		return false, fmt.Errorf("delete event: %w", err)
	}

	s.changed(ctx, userID, events.TypeCalendarEventDeleted, eventID)
	return true, nil
}

// --- REST surface ---

func (s *eventService) List(ctx context.Context, userId uuid.UUID, req *dto.ListEventsRequest) ([]*dto.EventResponse, error) {
	specs := []specification.Specification{
		specification.UserOwnedBy{UserID: userId},
		specification.ChronologicalOrder{},
	}
	if req != nil {
		from, to := req.Range()
		specs = append(specs,
			specification.StartsBetween{From: from, To: to},
			specification.Pagination{Limit: req.Limit, Offset: req.Offset},
		)
		if req.Upcoming {
			specs = append(specs, specification.Upcoming{Now: time.Now()})
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	list, err := uow.EventRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return s.mapper.ToResponses(list), nil
}

func (s *eventService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	event, err := s.CreateEvent(ctx, userId, draftFromRequest(req))
	if err != nil {
		return nil, err
	}
	return s.mapper.ToResponse(event), nil
}

func (s *eventService) Update(ctx context.Context, userId, eventId uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.patch(ctx, userId, eventId, assistant.EventPatch{
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Start:       req.Start,
		End:         req.End,
	})
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return s.mapper.ToResponse(event), nil
}

func (s *eventService) Delete(ctx context.Context, userId, eventId uuid.UUID) error {
	ok, err := s.DeleteEvent(ctx, userId, eventId)
	if err != nil {
		return err
	}
	if !ok {
		return ErrEventNotFound
	}
	return nil
}

// Sync replaces all of the user's events in one transaction.
func (s *eventService) Sync(ctx context.Context, userId uuid.UUID, req *dto.SyncEventsRequest) (*dto.SyncEventsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = uow.Rollback()
			panic(r)
		}
	}()

	repo := uow.EventRepository()
	if err := repo.DeleteAllByUserId(ctx, userId); err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("clear events: %w", err)
	}

	for i := range req.Events {
		draft := draftFromRequest(&req.Events[i])
		event := &entity.Event{
			UserId:      userId,
			Summary:     draft.Summary,
			Description: draft.Description,
			Location:    draft.Location,
			Start:       draft.Start,
			End:         draft.End,
			Metadata:    draft.Metadata,
		}
		if err := repo.Create(ctx, event); err != nil {
			_ = uow.Rollback()
			return nil, fmt.Errorf("sync event %d: %w", i, err)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("EVENT_SERVICE", "Calendar synced", map[string]interface{}{
		"user_id": userId.String(),
		"count":   len(req.Events),
	})
	s.changed(ctx, userId, events.TypeCalendarSynced, uuid.Nil)

	return &dto.SyncEventsResponse{
		Count:   len(req.Events),
		FeedURL: s.FeedURL(userId),
	}, nil
}

// --- calendar feed ---

func (s *eventService) Feed(ctx context.Context, userId uuid.UUID) (string, error) {
	key := userId.String()
	if cached, ok := s.feeds.Get(key); ok {
		return cached.(string), nil
	}

	list, err := s.ListEvents(ctx, userId)
	if err != nil {
		return "", err
	}

	body := ics.Render(s.cfg.Feed, list, time.Now())
	s.feeds.Set(key, body, cache.DefaultExpiration)
	return body, nil
}

func (s *eventService) FeedURL(userId uuid.UUID) string {
	return fmt.Sprintf("%s/calendar/%s.ics", strings.TrimRight(s.cfg.BaseURL, "/"), userId)
}

func (s *eventService) InvalidateFeed(userId uuid.UUID) {
	s.feeds.Delete(userId.String())
}

// --- helpers ---

// patch returns nil without error when the event does not belong to the user.
func (s *eventService) patch(ctx context.Context, userID, eventID uuid.UUID, patch assistant.EventPatch) (*entity.Event, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.EventRepository()

	event, err := repo.FindOne(ctx, specification.ByID{ID: eventID}, specification.UserOwnedBy{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	if event == nil {
		return nil, nil
	}

	assistant.ApplyPatch(event, patch)
	if event.End.Before(event.Start) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "End must not be before start")
	}

	if err := repo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.changed(ctx, userID, events.TypeCalendarEventUpdated, eventID)
	return event, nil
}

// changed drops the cached feed and announces the change. Bus failures are logged, never returned.
func (s *eventService) changed(ctx context.Context, userID uuid.UUID, eventType string, eventID uuid.UUID) {
	if err := s.requestInvalidation(userID); err != nil {
		s.logger.Warn("EVENT_SERVICE", "Feed invalidation publish failed, dropping inline", map[string]interface{}{"error": err.Error()})
		s.InvalidateFeed(userID)
	}

	if s.cfg.Bus == nil {
		return
	}
	id := ""
	if eventID != uuid.Nil {
		id = eventID.String()
	}
	if err := s.cfg.Bus.Publish(ctx, events.CalendarChanged(eventType, userID.String(), id)); err != nil {
		s.logger.Warn("EVENT_SERVICE", "Failed to publish calendar event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

func (s *eventService) requestInvalidation(userID uuid.UUID) error {
	if s.cfg.FeedSink == nil {
		s.InvalidateFeed(userID)
		return nil
	}

	payload, err := json.Marshal(feedInvalidation{UserID: userID})
	if err != nil {
		return err
	}
	return s.cfg.FeedSink.Publish(FeedInvalidateTopic, message.NewMessage(watermill.NewUUID(), payload))
}

type feedInvalidation struct {
	UserID uuid.UUID `json:"user_id"`
}

func draftFromRequest(req *dto.CreateEventRequest) assistant.EventDraft {
	return assistant.EventDraft{
		Summary:     strings.TrimSpace(req.Summary),
		Description: req.Description,
		Location:    req.Location,
		Start:       req.Start,
		End:         req.End,
		Metadata:    req.Metadata,
	}
}
