// Package cache provides a small JSON-over-Redis read cache for the public
// profile surface. Profile pages are read far more often than they change,
// so GETs are served from Redis and every mutation invalidates the key.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client with a key prefix and JSON encoding.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

// New creates a cache using the given Redis client. All keys are namespaced
// under the prefix (e.g. "profile:").
func New(rdb *redis.Client, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

// Get loads a cached value into dest. Returns false on a miss; a corrupt
// or unreadable entry is treated as a miss so the caller falls through to
// the database.
func (c *Cache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading cache key %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		// Stale encoding from an older release -- drop it and miss.
		_ = c.rdb.Del(ctx, c.prefix+key).Err()
		return false, nil
	}

	return true, nil
}

// Set stores a JSON-encoded value with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshaling cache value: %w", err)
	}

	if err := c.rdb.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("writing cache key %s: %w", key, err)
	}

	return nil
}

// Delete removes a key. Used by mutation paths to invalidate.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("deleting cache key %s: %w", key, err)
	}
	return nil
}
