// Package cache provides a single-entry TTL cache for point-in-time
// snapshots of the registration table and its derived aggregates.
package cache

import (
	"sync"
	"time"
)

// Entry caches one value with a time-to-live and explicit invalidation.
// The snapshot is replaced atomically: readers either see the previous
// complete value or the new one, never a partial write.
type Entry[T any] struct {
	mu         sync.Mutex
	value      T
	capturedAt time.Time
	expiresAt  time.Time
	ttl        time.Duration
}

// New creates an empty cache entry. A non-positive ttl means every Get
// misses, which disables caching without changing call sites.
func New[T any](ttl time.Duration) *Entry[T] {
	return &Entry[T]{ttl: ttl}
}

// Get returns the cached value and true on a hit. Expired or invalidated
// entries report a miss.
func (e *Entry[T]) Get() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	if e.expiresAt.IsZero() || !time.Now().Before(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Set replaces the snapshot in full and restarts the TTL clock.
func (e *Entry[T]) Set(value T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	e.value = value
	e.capturedAt = now
	e.expiresAt = now.Add(e.ttl)
}

// Invalidate clears the entry so the next Get misses regardless of TTL.
func (e *Entry[T]) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()

	var zero T
	e.value = zero
	e.capturedAt = time.Time{}
	e.expiresAt = time.Time{}
}

// CapturedAt returns when the current value was stored; zero if empty.
func (e *Entry[T]) CapturedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.capturedAt
}
