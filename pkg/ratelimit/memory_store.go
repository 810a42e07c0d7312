package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count     int64
	expiresAt time.Time
}

type memoryKey struct {
	key         string
	windowStart int64 // unix millis
}

// MemoryStore implements Store using in-memory counters.
// Expired windows are swept by a background goroutine; logically they are
// discarded the moment their TTL passes, never archived.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[memoryKey]*window

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithCleanupInterval sets the sweep interval for expired windows.
// Set to 0 to disable the background sweep.
func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(ms *MemoryStore) {
		ms.cleanupInterval = interval
	}
}

// NewMemoryStore creates an in-memory window store with optional cleanup.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	ms := &MemoryStore{
		windows:         make(map[memoryKey]*window),
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(ms)
	}

	if ms.cleanupInterval > 0 {
		go ms.cleanup()
	}

	return ms
}

func (ms *MemoryStore) Incr(ctx context.Context, key string, windowStart time.Time, ttl time.Duration) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	k := memoryKey{key: key, windowStart: windowStart.UnixMilli()}
	w, exists := ms.windows[k]
	if !exists || time.Now().After(w.expiresAt) {
		w = &window{expiresAt: time.Now().Add(ttl)}
		ms.windows[k] = w
	}

	w.count++
	return w.count, nil
}

func (ms *MemoryStore) Reset(ctx context.Context, key string, windowStart time.Time) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.windows, memoryKey{key: key, windowStart: windowStart.UnixMilli()})
	return nil
}

// Close stops the background cleanup goroutine.
func (ms *MemoryStore) Close() {
	ms.stopOnce.Do(func() {
		close(ms.stopCleanup)
	})
}

func (ms *MemoryStore) cleanup() {
	ticker := time.NewTicker(ms.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ms.removeExpired()
		case <-ms.stopCleanup:
			return
		}
	}
}

func (ms *MemoryStore) removeExpired() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	for k, w := range ms.windows {
		if now.After(w.expiresAt) {
			delete(ms.windows, k)
		}
	}
}
