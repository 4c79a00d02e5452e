package cache

import (
	"context"
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time // zero = never
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCache is an in-process cache with a background janitor that drops
// expired entries.
type MemoryCache[V any] struct {
	mu    sync.Mutex
	items map[string]entry[V]
	now   func() time.Time

	quit     chan struct{}
	stopOnce sync.Once
}

// NewMemoryCache starts a cache whose janitor runs every janitorInterval.
// A non-positive interval disables the janitor; expired keys are then only
// removed on access.
func NewMemoryCache[V any](janitorInterval time.Duration) *MemoryCache[V] {
	mc := &MemoryCache[V]{
		items: make(map[string]entry[V]),
		now:   time.Now,
		quit:  make(chan struct{}),
	}
	if janitorInterval > 0 {
		go mc.janitor(janitorInterval)
	}
	return mc
}

func (mc *MemoryCache[V]) Get(_ context.Context, key string) (V, error) {
	var zero V
	mc.mu.Lock()
	defer mc.mu.Unlock()

	e, ok := mc.items[key]
	if !ok {
		return zero, ErrCacheMiss
	}
	if e.expired(mc.now()) {
		delete(mc.items, key)
		return zero, ErrCacheMiss
	}
	return e.value, nil
}

func (mc *MemoryCache[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = mc.now().Add(ttl)
	}

	mc.mu.Lock()
	mc.items[key] = e
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache[V]) Delete(_ context.Context, key string) error {
	mc.mu.Lock()
	delete(mc.items, key)
	mc.mu.Unlock()
	return nil
}

// Len counts stored entries, expired ones included until swept
func (mc *MemoryCache[V]) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return len(mc.items)
}

// Close stops the janitor. It is safe to call more than once.
func (mc *MemoryCache[V]) Close() error {
	mc.stopOnce.Do(func() { close(mc.quit) })
	return nil
}

func (mc *MemoryCache[V]) sweep() {
	now := mc.now()
	mc.mu.Lock()
	for k, e := range mc.items {
		if e.expired(now) {
			delete(mc.items, k)
		}
	}
	mc.mu.Unlock()
}

func (mc *MemoryCache[V]) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			mc.sweep()
		case <-mc.quit:
			return
		}
	}
}
