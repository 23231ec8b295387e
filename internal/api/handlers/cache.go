package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the read-through cache the handlers use for derived
// payloads. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
}

// RedisCache backs Cache with Redis. Failures degrade to cache misses;
// the cache is never load-bearing.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCacheFromEnv connects to the Redis named by REDIS_URL.
// Returns (nil, nil) when REDIS_URL is unset so callers can treat the
// cache as optional.
func NewRedisCacheFromEnv(ctx context.Context) (*RedisCache, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(fmt.Sprintf("redis://%s", redisURL))
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("NewRedisCacheFromEnv: connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Get returns the cached bytes for key, or a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores value as JSON with a TTL. Marshal or write failures are
// ignored; the next read recomputes.
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.client.SetEx(ctx, key, data, ttl)
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
