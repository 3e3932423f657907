package integration

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/entity"
	"voice-assistant-be/internal/model"
	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/internal/repository/specification"
	"voice-assistant-be/internal/repository/unitofwork"
	"voice-assistant-be/internal/service"
	"voice-assistant-be/pkg/assistant"
	"voice-assistant-be/pkg/dialogue"
	"voice-assistant-be/pkg/database"
	"voice-assistant-be/pkg/ics"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err, "connect")
	require.NoError(t, db.AutoMigrate(&model.Event{}), "migrate")
	return db
}

func cleanup(t *testing.T, db *gorm.DB, userId uuid.UUID) {
	t.Cleanup(func() {
		db.Unscoped().Where("user_id = ?", userId).Delete(&model.Event{})
	})
}

func TestEventRepository(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	userId := uuid.New()
	cleanup(t, db, userId)

	repo := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(ctx).EventRepository()
	base := time.Date(2030, 3, 14, 9, 0, 0, 0, time.UTC)

	for i, title := range []string{"Late sync", "Early standup", "Lunch"} {
		offset := []time.Duration{5 * time.Hour, 0, 3 * time.Hour}[i]
		require.NoError(t, repo.Create(ctx, &entity.Event{
			UserId:   userId,
			Summary:  title,
			Start:    base.Add(offset),
			End:      base.Add(offset + 30*time.Minute),
			Metadata: map[string]interface{}{"source": "integration"},
		}))
	}

	t.Run("chronological listing", func(t *testing.T) {
		list, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: userId}, specification.ChronologicalOrder{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Early standup", list[0].Summary)
		assert.Equal(t, "Lunch", list[1].Summary)
		assert.Equal(t, "Late sync", list[2].Summary)
		assert.Equal(t, "integration", list[0].Metadata["source"])
	})

	t.Run("range filter", func(t *testing.T) {
		count, err := repo.Count(ctx,
			specification.UserOwnedBy{UserID: userId},
			specification.StartsBetween{From: base.Add(time.Hour), To: base.Add(4 * time.Hour)},
		)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("other users see nothing", func(t *testing.T) {
		list, err := repo.FindAll(ctx, specification.UserOwnedBy{UserID: uuid.New()})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("missing event is nil", func(t *testing.T) {
		got, err := repo.FindOne(ctx, specification.ByID{ID: uuid.New()})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestEventService_SyncAndFeed(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	userId := uuid.New()
	cleanup(t, db, userId)

	svc := service.NewEventService(unitofwork.NewRepositoryFactory(db), service.EventServiceConfig{
		BaseURL: "http://localhost:3000",
		Feed:    ics.DefaultFeed(),
	}, logger.NewNopLogger())

	start := time.Date(2030, 6, 1, 15, 0, 0, 0, time.UTC)
	_, err := svc.Create(ctx, userId, &dto.CreateEventRequest{Summary: "Replaced", Start: start, End: start.Add(time.Hour)})
	require.NoError(t, err)

	res, err := svc.Sync(ctx, userId, &dto.SyncEventsRequest{Events: []dto.CreateEventRequest{
		{Summary: "Dentist", Start: start, End: start.Add(time.Hour)},
		{Summary: "Gym; legs", Start: start.Add(24 * time.Hour), End: start.Add(25 * time.Hour)},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.True(t, strings.HasSuffix(res.FeedURL, "/calendar/"+userId.String()+".ics"))

	feed, err := svc.Feed(ctx, userId)
	require.NoError(t, err)
	assert.Contains(t, feed, "SUMMARY:Dentist")
	assert.Contains(t, feed, `SUMMARY:Gym\; legs`)
	assert.NotContains(t, feed, "Replaced")

	// Deleting through the assistant contract drops the cached feed.
	list, err := svc.ListEvents(ctx, userId)
	require.NoError(t, err)
	require.Len(t, list, 2)
	ok, err := svc.DeleteEvent(ctx, userId, list[0].Id)
	require.NoError(t, err)
	assert.True(t, ok)

	feed, err = svc.Feed(ctx, userId)
	require.NoError(t, err)
	assert.NotContains(t, feed, "SUMMARY:Dentist")
}

func TestAssistant_AgainstDatabase(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	userId := uuid.New()
	cleanup(t, db, userId)

	log := logger.NewNopLogger()
	svc := service.NewEventService(unitofwork.NewRepositoryFactory(db), service.EventServiceConfig{Feed: ics.DefaultFeed()}, log)
	router := assistant.NewRouter(dialogue.NewManager(log), log, assistant.WithEventStore(svc))
	session := dialogue.NewSession("integration", userId)

	resp := router.Handle(ctx, session, "create event workout tomorrow at 6am")
	require.Equal(t, assistant.IntentCreateEvent, resp.Intent)

	resp = router.Handle(ctx, session, "rename my event")
	require.Equal(t, "PENDING_EDIT", resp.State)
	resp = router.Handle(ctx, session, "1")
	require.Equal(t, "PENDING_RENAME", resp.State)
	router.Handle(ctx, session, "Morning run")

	list, err := svc.ListEvents(ctx, userId)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Morning run", list[0].Summary)
	assert.True(t, session.IsIdle())
}
