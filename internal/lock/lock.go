// Package lock serializes writes that touch the same resource-day.
// The SQL layer re-checks overlaps inside its transactions, so the lock
// is an optimization that keeps concurrent writers from burning retries,
// not a correctness requirement.
package lock

import (
	"context"
	"fmt"
	"time"
)

// Locker acquires short-lived advisory locks by key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// DayKey builds the lock key for a single resource on a single date.
func DayKey(resourceID int64, date time.Time) string {
	return fmt.Sprintf("%d:%s", resourceID, date.Format("2006-01-02"))
}

// Noop satisfies Locker without any coordination. Used when no Redis
// endpoint is configured; single-process deployments lose nothing.
type Noop struct{}

func (Noop) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (Noop) Release(ctx context.Context, key string) error { return nil }
