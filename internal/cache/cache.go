// Package cache keeps rendered day grids in Redis so repeated calendar
// reads skip the schedule resolver and the occupancy builder. Every
// write that can change a grid invalidates the affected resource-day.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"slotnik/internal/grid"
)

const keyPrefix = "grid:"

// GridCache caches []grid.Slot per resource-day. A nil *GridCache is a
// valid no-op cache, so callers never branch on whether Redis is
// configured.
type GridCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *GridCache {
	return &GridCache{client: client, ttl: ttl}
}

func key(resourceID int64, date time.Time) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, resourceID, date.Format("2006-01-02"))
}

// Get returns the cached grid and true on a hit. Corrupt or missing
// entries read as a miss; the caller rebuilds.
func (c *GridCache) Get(ctx context.Context, resourceID int64, date time.Time) ([]grid.Slot, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	val, err := c.client.Get(ctx, key(resourceID, date)).Result()
	if err != nil {
		return nil, false
	}
	var slots []grid.Slot
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, false
	}
	return slots, true
}

// Set stores a rendered grid. Failures are dropped: a cold cache costs
// one rebuild, not a failed request.
func (c *GridCache) Set(ctx context.Context, resourceID int64, date time.Time, slots []grid.Slot) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key(resourceID, date), data, c.ttl).Err()
}

// Invalidate drops the grid for one resource-day.
func (c *GridCache) Invalidate(ctx context.Context, resourceID int64, date time.Time) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, key(resourceID, date)).Err()
}

// InvalidateDate drops every cached grid for a date. Used for global
// blockages, which touch all resources at once.
func (c *GridCache) InvalidateDate(ctx context.Context, date time.Time) {
	if c == nil || c.client == nil {
		return
	}
	pattern := fmt.Sprintf("%s*:%s", keyPrefix, date.Format("2006-01-02"))
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}
