package knowledge

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryCache keeps entries in process. Expiry is lazy: there is no janitor, an
// expired entry is removed by the Get that finds it.
type MemoryCache[V any] struct {
	items *cache.Cache
}

func NewMemoryCache[V any](ttl time.Duration) *MemoryCache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	// cleanupInterval 0 disables the background sweep
	return &MemoryCache[V]{items: cache.New(ttl, 0)}
}

func (c *MemoryCache[V]) Get(_ context.Context, key string) (V, bool) {
	var zero V

	if x, found := c.items.Get(key); found {
		if v, ok := x.(V); ok {
			return v, true
		}
	}

	// go-cache hides expired items from Get but keeps them until deleted
	c.items.Delete(key)
	return zero, false
}

func (c *MemoryCache[V]) Set(_ context.Context, key string, value V) {
	c.items.Set(key, value, cache.DefaultExpiration)
}

// Len counts stored entries, including expired ones not yet touched by Get.
func (c *MemoryCache[V]) Len() int {
	return c.items.ItemCount()
}
