// Package cache provides a small in-process TTL cache with lazy expiration.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is used by Set when no explicit TTL is given.
const DefaultTTL = 5 * time.Minute

// Clock returns the current time. Tests inject a controllable clock.
type Clock func() time.Time

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL is a key/value store whose entries expire after a per-entry TTL.
// Expired entries are only evicted when they are read; there is no sweeper.
type TTL[V any] struct {
	mu         sync.Mutex
	entries    map[string]entry[V]
	now        Clock
	defaultTTL time.Duration
}

// NewTTL creates a cache. A nil clock uses time.Now and a non-positive
// defaultTTL falls back to DefaultTTL.
func NewTTL[V any](now Clock, defaultTTL time.Duration) *TTL[V] {
	if now == nil {
		now = time.Now
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTTL
	}
	return &TTL[V]{
		entries:    make(map[string]entry[V]),
		now:        now,
		defaultTTL: defaultTTL,
	}
}

// Set stores value under key with the default TTL.
func (c *TTL[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key, replacing any existing entry. Empty keys
// are ignored.
func (c *TTL[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	if key == "" {
		return
	}
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Get returns the value for key if it exists and has not expired. An expired
// entry is removed as a side effect.
func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if key == "" {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return zero, false
	}
	return e.value, true
}

// Invalidate removes key if present.
func (c *TTL[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *TTL[V]) Clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}

// Len reports the number of stored entries, including expired entries that
// have not been read since they expired.
func (c *TTL[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
