package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Redis-backed read-through cache for list responses. Entries are
// keyed per resource and query shape and expire after a short TTL; any write to
// a resource invalidates every cached list for it. Failures here must never
// fail a request: callers fall back to the database.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// listKey generates the Redis key for a cached list
func listKey(resource, variant string) string {
	return fmt.Sprintf("cache:%s:%s", resource, variant)
}

// listPrefix generates the match pattern covering all cached lists of a resource
func listPrefix(resource string) string {
	return fmt.Sprintf("cache:%s:*", resource)
}

// GetList loads a cached list into dest. The second return value reports a hit.
func (c *Cache) GetList(ctx context.Context, resource, variant string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, listKey(resource, variant)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cached list: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten.
		return false, nil
	}

	return true, nil
}

// SetList stores a list response under the resource/variant key with the cache TTL.
func (c *Cache) SetList(ctx context.Context, resource, variant string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode list for cache: %w", err)
	}

	if err := c.client.Set(ctx, listKey(resource, variant), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store cached list: %w", err)
	}

	return nil
}

// Invalidate removes every cached list for the resource. Called after any
// create, update, or delete.
func (c *Cache) Invalidate(ctx context.Context, resource string) error {
	iter := c.client.Scan(ctx, 0, listPrefix(resource), 100).Iterator()

	pipe := c.client.Pipeline()
	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached lists: %w", err)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate cached lists: %w", err)
	}

	return nil
}
