package bootstrap

import (
	"context"
	"errors"
	"log"
	"time"

	"voice-assistant-be/internal/config"
	"voice-assistant-be/internal/controller"
	"voice-assistant-be/internal/handler"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/repository/memory"
	"voice-assistant-be/internal/repository/unitofwork"
	"voice-assistant-be/internal/service"
	"voice-assistant-be/internal/websocket"
	"voice-assistant-be/pkg/assistant"
	"voice-assistant-be/pkg/dialogue"
	"voice-assistant-be/pkg/encyclopedia"
	"voice-assistant-be/pkg/ics"
	"voice-assistant-be/pkg/knowledge"
	pktNats "voice-assistant-be/pkg/nats"
	"voice-assistant-be/pkg/speech"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	EventController     controller.IEventController
	CalendarController  controller.ICalendarController
	HealthController    controller.IHealthController

	// WebSockets
	VoiceHandler *handler.VoiceHandler
	WebSocketHub *websocket.Hub

	// Background
	ConsumerService  service.IConsumerService
	CalendarNotifier *service.CalendarNotifier

	closers []func()
	logger  *logger.ZapLogger
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	voiceLogger := logger.NewIsolatedLogger(cfg.App.VoiceLogFilePath)
	c.logger = sysLogger

	// 2. In-process bus for feed invalidation
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewStdLogger(false, false))
	c.onClose(func() { _ = pubSub.Close() })

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.onClose(natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.onClose(natsSub.Close)
	}

	rdb := connectRedis(ctx, cfg.App.RedisURL)
	if rdb != nil {
		c.onClose(func() { _ = rdb.Close() })
	}

	// 4. Knowledge
	var summaries knowledge.Cache[encyclopedia.Summary]
	switch {
	case cfg.Encyclopedia.CacheDriver == "redis" && rdb != nil:
		summaries = knowledge.NewRedisCache[encyclopedia.Summary](rdb, cfg.Encyclopedia.CacheTTL, sysLogger)
		log.Printf("[INFO] Knowledge cache: REDIS (ttl %s)", cfg.Encyclopedia.CacheTTL)
	default:
		summaries = knowledge.NewMemoryCache[encyclopedia.Summary](cfg.Encyclopedia.CacheTTL)
		log.Printf("[INFO] Knowledge cache: MEMORY (ttl %s)", cfg.Encyclopedia.CacheTTL)
	}
	wiki := encyclopedia.NewClient(encyclopedia.Config{
		RestBaseURL: cfg.Encyclopedia.RestBaseURL,
		APIBaseURL:  cfg.Encyclopedia.APIBaseURL,
		UserAgent:   cfg.Encyclopedia.UserAgent,
		Timeout:     cfg.Encyclopedia.Timeout,
	}, summaries, sysLogger)

	// 5. Calendar
	feed := ics.DefaultFeed()
	feed.Name = cfg.App.CalendarName
	eventCfg := service.EventServiceConfig{
		BaseURL:  cfg.App.BaseURL,
		Feed:     feed,
		FeedSink: pubSub,
	}
	if natsPub != nil {
		eventCfg.Bus = natsPub
	}
	eventService := service.NewEventService(uowFactory, eventCfg, sysLogger)

	// 6. Realtime
	wsHub := websocket.NewHub(rdb, voiceLogger)
	c.WebSocketHub = wsHub

	// Calendar changes reach open views through NATS when it is up; the router
	// notifies the hub directly otherwise.
	var renderer assistant.Renderer
	if natsSub != nil {
		c.CalendarNotifier = service.NewCalendarNotifier(natsSub, wsHub, sysLogger)
	} else {
		renderer = wsHub
	}

	// 7. Assistant
	router := assistant.NewRouter(
		dialogue.NewManager(sysLogger),
		sysLogger,
		assistant.WithEventStore(eventService),
		assistant.WithEncyclopedia(wiki),
		assistant.WithRenderer(renderer),
	)
	sessions := memory.NewSessionRepository(cfg.Session.TTL)
	assistantService := service.NewAssistantService(router, sessions, sysLogger)

	c.ConsumerService = service.NewConsumerService(pubSub, service.FeedInvalidateTopic, eventService, sysLogger)

	// 8. Controllers & handlers
	c.VoiceHandler = handler.NewVoiceHandler(wsHub, assistantService, websocket.VoiceOptions{
		Voice: speech.Voice{
			Lang:      cfg.Speech.Lang,
			Rate:      cfg.Speech.Rate,
			Pitch:     cfg.Speech.Pitch,
			VoiceHint: cfg.Speech.VoiceHint,
		},
		Remote: speech.RemoteConfig{
			Endpoint: cfg.Speech.TTSEndpoint,
			Token:    cfg.Speech.TTSToken,
			Timeout:  cfg.Speech.TTSTimeout,
		},
	}, voiceLogger)
	c.AssistantController = controller.NewAssistantController(assistantService)
	c.EventController = controller.NewEventController(eventService)
	c.CalendarController = controller.NewCalendarController(eventService)
	c.HealthController = controller.NewHealthController("voice-assistant-be", cfg.App.Port)

	c.onClose(func() {
		_ = voiceLogger.Sync()
		_ = sysLogger.Sync()
	})
	return c
}

// StartBackground launches the hub, the feed consumer and the calendar notifier.
// They stop when ctx is cancelled.
func (c *Container) StartBackground(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	var errs []error
	if err := c.ConsumerService.Consume(ctx); err != nil {
		errs = append(errs, err)
	}
	if c.CalendarNotifier != nil {
		if err := c.CalendarNotifier.Start(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// connectRedis returns nil when Redis is unreachable so callers fall back to local state.
func connectRedis(ctx context.Context, url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
