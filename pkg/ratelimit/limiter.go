package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/taskforge/entitlement/pkg/tier"
)

// Limiter enforces fixed-window ceilings over a Store.
type Limiter struct {
	store  Store
	window time.Duration
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source for deterministic window tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLimiter creates a fixed-window limiter with the given window size.
func NewLimiter(store Store, window time.Duration, opts ...Option) (*Limiter, error) {
	if store == nil {
		panic("ratelimit: Store is required")
	}
	if window <= 0 {
		return nil, ErrInvalidWindow
	}

	l := &Limiter{
		store:  store,
		window: window,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// CheckAndIncrement counts one request for (key, class) against ceiling.
//
// The window is the current wall-clock interval rounded down to the window
// size; the first call in a window creates it with count 1, later calls
// increment atomically. Once count exceeds ceiling the request is denied
// with ResetAt at the window boundary. Ceiling 0 denies without touching
// the store; Unlimited allows without counting.
func (l *Limiter) CheckAndIncrement(ctx context.Context, key string, class tier.ActionClass, ceiling int64) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	if ceiling < Unlimited {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCeiling, ceiling)
	}

	now := l.now()
	windowStart := now.Truncate(l.window)
	resetAt := windowStart.Add(l.window)

	if ceiling == Unlimited {
		return &Result{Allowed: true, Limit: Unlimited, Remaining: Unlimited, ResetAt: resetAt}, nil
	}
	if ceiling == 0 {
		// No access for this tier; distinct from unlimited.
		return &Result{Allowed: false, Limit: 0, Remaining: 0, ResetAt: resetAt}, nil
	}

	// Windows only need to survive their own span; double the window gives
	// slow clocks room without accumulating stale keys.
	count, err := l.store.Incr(ctx, windowKey(key, class), windowStart, 2*l.window)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   count <= ceiling,
		Limit:     ceiling,
		Remaining: max(ceiling-count, 0),
		ResetAt:   resetAt,
	}, nil
}

func windowKey(key string, class tier.ActionClass) string {
	return key + ":" + string(class)
}
