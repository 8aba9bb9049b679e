package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "case-tracker:snapshot:"

// CacheKey is the Redis key holding the snapshot for act.
func CacheKey(act string) string {
	return keyPrefix + act
}

// RedisCache stores snapshots as JSON strings.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache wraps an open client.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Snapshot, error) {
	raw, getErr := c.client.Get(ctx, key).Bytes()
	if errors.Is(getErr, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if getErr != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, getErr)
	}

	var s Snapshot
	if unmarshalErr := json.Unmarshal(raw, &s); unmarshalErr != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", unmarshalErr)
	}
	return &s, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, s *Snapshot, ttl time.Duration) error {
	raw, marshalErr := json.Marshal(s)
	if marshalErr != nil {
		return fmt.Errorf("encode snapshot: %w", marshalErr)
	}
	if setErr := c.client.Set(ctx, key, raw, ttl).Err(); setErr != nil {
		return fmt.Errorf("redis set %s: %w", key, setErr)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
		return fmt.Errorf("redis del %s: %w", key, delErr)
	}
	return nil
}
