package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/entitlement/pkg/ratelimit"
	"github.com/taskforge/entitlement/pkg/tier"
)

func newTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStoreIncr(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	windowStart := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("increments per window", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewRedisStore(newTestRedis(t))

		for want := int64(1); want <= 5; want++ {
			count, err := store.Incr(ctx, "tenant-a:ai_generate", windowStart, time.Minute)
			require.NoError(t, err)
			assert.Equal(t, want, count)
		}

		// A different window start is a separate counter.
		count, err := store.Incr(ctx, "tenant-a:ai_generate", windowStart.Add(time.Minute), time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("reset clears the counter", func(t *testing.T) {
		t.Parallel()

		store := ratelimit.NewRedisStore(newTestRedis(t))

		_, err := store.Incr(ctx, "tenant-a:export", windowStart, time.Minute)
		require.NoError(t, err)
		require.NoError(t, store.Reset(ctx, "tenant-a:export", windowStart))

		count, err := store.Incr(ctx, "tenant-a:export", windowStart, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("store error surfaces as unavailable", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		store := ratelimit.NewRedisStore(client)
		require.NoError(t, client.Close())

		_, err := store.Incr(ctx, "tenant-a:export", windowStart, time.Minute)
		assert.ErrorIs(t, err, ratelimit.ErrStoreUnavailable)
	})
}

func TestLimiterWithRedisStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	at := time.Date(2026, 3, 15, 12, 0, 30, 0, time.UTC)

	store := ratelimit.NewRedisStore(newTestRedis(t), ratelimit.WithKeyPrefix("rl-test"))
	limiter, err := ratelimit.NewLimiter(store, time.Minute,
		ratelimit.WithClock(func() time.Time { return at }))
	require.NoError(t, err)

	for range 3 {
		res, err := limiter.CheckAndIncrement(ctx, "tenant-a", tier.ActionAIGenerate, 3)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}

	res, err := limiter.CheckAndIncrement(ctx, "tenant-a", tier.ActionAIGenerate, 3)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, at.Truncate(time.Minute).Add(time.Minute), res.ResetAt)
}
