package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"naver-map-scraper/utils"
)

const placeIDKeyPrefix = "naver:place_id:"

// RedisIDCache remembers display name → place id lookups so repeated
// single-place runs skip the search click-through.
type RedisIDCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIDCache connects to addr and waits for the server to answer using
// retry.
func NewRedisIDCache(ctx context.Context, addr, password string, db int, ttl time.Duration, retry *utils.RetryConfig) (*RedisIDCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := retry.Do(ctx, "redis ping", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}

	return NewRedisIDCacheFromClient(client, ttl), nil
}

// NewRedisIDCacheFromClient wraps an existing client. ttl <= 0 stores keys
// without expiry.
func NewRedisIDCacheFromClient(client *redis.Client, ttl time.Duration) *RedisIDCache {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisIDCache{client: client, ttl: ttl}
}

func placeIDKey(name string) string { return placeIDKeyPrefix + name }

// Get returns the cached id for name. A miss reports false with a nil error.
func (c *RedisIDCache) Get(ctx context.Context, name string) (string, bool, error) {
	id, err := c.client.Get(ctx, placeIDKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: get %q: %w", name, err)
	}
	return id, true, nil
}

func (c *RedisIDCache) Put(ctx context.Context, name, id string) error {
	if err := c.client.Set(ctx, placeIDKey(name), id, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %q: %w", name, err)
	}
	return nil
}

func (c *RedisIDCache) Close() error {
	return c.client.Close()
}
