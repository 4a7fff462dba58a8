package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"slotbook/internal/metrics"
)

const cachePrefix = "slotbook:"

// queryCache is a read-through Redis cache for computed availability
// responses. A nil client or zero TTL disables it.
type queryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func newQueryCache(rdb *redis.Client, ttl time.Duration) *queryCache {
	return &queryCache{rdb: rdb, ttl: ttl}
}

func (c *queryCache) enabled() bool {
	return c.rdb != nil && c.ttl > 0
}

func (c *queryCache) read(ctx context.Context, key string, out any) bool {
	if !c.enabled() {
		return false
	}
	data, err := c.rdb.Get(ctx, cachePrefix+key).Bytes()
	if err != nil {
		metrics.IncCache("miss")
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		metrics.IncCache("miss")
		return false
	}
	metrics.IncCache("hit")
	return true
}

func (c *queryCache) write(ctx context.Context, key string, v any) {
	if !c.enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	// Caching is best-effort; a failed write only costs a recompute.
	_ = c.rdb.Set(ctx, cachePrefix+key, data, c.ttl).Err()
}

// Flush removes all cached availability responses. Called after a busy sync
// changes the underlying snapshot.
func (c *queryCache) Flush(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}

	iter := c.rdb.Scan(ctx, 0, cachePrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
