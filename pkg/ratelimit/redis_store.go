package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis so windows are shared across
// processes. INCR and PEXPIRE run in one pipeline; INCR itself is atomic on
// the server, which is what keeps concurrent checks honest.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "ratelimit" key namespace.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed window store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	if client == nil {
		panic("ratelimit: redis client is required")
	}

	rs := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit",
	}

	for _, opt := range opts {
		opt(rs)
	}

	return rs
}

func (rs *RedisStore) Incr(ctx context.Context, key string, windowStart time.Time, ttl time.Duration) (int64, error) {
	redisKey := rs.redisKey(key, windowStart)

	pipe := rs.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	// PExpire on every call keeps the TTL fresh without a separate
	// first-call branch; the window key dies shortly after the window does.
	pipe.PExpire(ctx, redisKey, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}

	return incr.Val(), nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string, windowStart time.Time) error {
	if err := rs.client.Del(ctx, rs.redisKey(key, windowStart)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (rs *RedisStore) redisKey(key string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", rs.keyPrefix, key, windowStart.UnixMilli())
}
