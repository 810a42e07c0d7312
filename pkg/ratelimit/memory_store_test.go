package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/entitlement/pkg/ratelimit"
)

func TestMemoryStoreIncr(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	windowStart := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("sequential increments", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
		t.Cleanup(store.Close)

		for want := int64(1); want <= 10; want++ {
			count, err := store.Incr(ctx, "k", windowStart, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, count)
		}
	})

	t.Run("concurrent increments never lose updates", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
		t.Cleanup(store.Close)

		const goroutines = 50
		const perGoroutine = 20

		var wg sync.WaitGroup
		wg.Add(goroutines)
		for range goroutines {
			go func() {
				defer wg.Done()
				for range perGoroutine {
					_, _ = store.Incr(ctx, "k", windowStart, time.Minute)
				}
			}()
		}
		wg.Wait()

		count, err := store.Incr(ctx, "k", windowStart, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(goroutines*perGoroutine+1), count)
	})

	t.Run("expired window restarts at one", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
		t.Cleanup(store.Close)

		_, err := store.Incr(ctx, "k", windowStart, time.Millisecond)
		require.NoError(t, err)

		time.Sleep(5 * time.Millisecond)

		count, err := store.Incr(ctx, "k", windowStart, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("reset removes the window", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(0))
		t.Cleanup(store.Close)

		_, err := store.Incr(ctx, "k", windowStart, time.Minute)
		require.NoError(t, err)
		require.NoError(t, store.Reset(ctx, "k", windowStart))

		count, err := store.Incr(ctx, "k", windowStart, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
