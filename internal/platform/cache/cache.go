package cache

import (
	"sync"
	"time"
)

// TTL is a small keyed cache for dashboard aggregates. Entries expire after
// a fixed duration; staleness within the window is acceptable to callers.
// The clock is injected so tests can advance time without sleeping.
type TTL[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry[V]
}

type entry[V any] struct {
	value   V
	storedAt time.Time
}

func New[V any](ttl time.Duration) *TTL[V] {
	return NewWithClock[V](ttl, time.Now)
}

func NewWithClock[V any](ttl time.Duration, now func() time.Time) *TTL[V] {
	return &TTL[V]{
		ttl:     ttl,
		now:     now,
		entries: map[string]entry[V]{},
	}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil || c.ttl <= 0 {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	ent, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().Sub(ent.storedAt) >= c.ttl {
		delete(c.entries, key)
		return zero, false
	}
	return ent.value, true
}

func (c *TTL[V]) Set(key string, value V) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.now()}
}

func (c *TTL[V]) Invalidate(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
