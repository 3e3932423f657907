package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"voice-assistant-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "knowledge:"

// RedisCache shares lookup results between instances. Redis enforces the TTL itself.
type RedisCache[V any] struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.ILogger
}

func NewRedisCache[V any](client *redis.Client, ttl time.Duration, log logger.ILogger) *RedisCache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache[V]{client: client, ttl: ttl, logger: log}
}

// Get treats any redis or decode failure as a miss.
func (c *RedisCache[V]) Get(ctx context.Context, key string) (V, bool) {
	var value V

	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("KNOWLEDGE_CACHE", "Redis get failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
		return value, false
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.Warn("KNOWLEDGE_CACHE", "Dropping undecodable entry", map[string]interface{}{"key": key, "error": err.Error()})
		c.client.Del(ctx, redisKeyPrefix+key)
		return value, false
	}
	return value, true
}

func (c *RedisCache[V]) Set(ctx context.Context, key string, value V) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("KNOWLEDGE_CACHE", "Failed to encode entry", map[string]interface{}{"key": key, "error": err.Error()})
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("KNOWLEDGE_CACHE", "Redis set failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
