package ratelimit

import (
	"context"
	"time"
)

// Store defines the interface for window counter backends.
type Store interface {
	// Incr atomically increments the counter for the window identified by
	// key and windowStart, creating it with count 1 on first call, and
	// returns the count after the increment. ttl bounds how long the window
	// is retained past its creation.
	Incr(ctx context.Context, key string, windowStart time.Time, ttl time.Duration) (int64, error)

	// Reset discards the counter for the window. Mainly for tests and
	// operator tooling.
	Reset(ctx context.Context, key string, windowStart time.Time) error
}
