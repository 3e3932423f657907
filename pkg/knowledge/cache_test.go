package knowledge

import (
	"context"
	"os"
	"testing"
	"time"

	"voice-assistant-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache[entry](time.Hour)

	c.Set(ctx, "title:mercury", entry{Title: "Mercury", Summary: "A planet."})

	got, ok := c.Get(ctx, "title:mercury")
	require.True(t, ok)
	assert.Equal(t, entry{Title: "Mercury", Summary: "A planet."}, got)

	_, ok = c.Get(ctx, "search:mercury")
	assert.False(t, ok, "namespaces must not collide")
}

func TestMemoryCache_ExpiryIsLazyAndPermanent(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache[entry](30 * time.Millisecond)

	c.Set(ctx, "k", entry{Title: "v"})
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, 1, c.Len(), "no background sweep")

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry removed on access")

	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_OverwriteRefreshesTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache[string](80 * time.Millisecond)

	c.Set(ctx, "k", "old")
	time.Sleep(50 * time.Millisecond)
	c.Set(ctx, "k", "new")
	time.Sleep(50 * time.Millisecond)

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "new", got)
}

func TestRedisCache(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("Skipping: REDIS_URL not set")
	}

	opts, err := redis.ParseURL(redisURL)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	c := NewRedisCache[entry](client, time.Second, logger.NewNopLogger())

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	c.Set(ctx, key, entry{Title: "Mercury"})

	got, ok := c.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, "Mercury", got.Title)

	time.Sleep(1100 * time.Millisecond)
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
}
