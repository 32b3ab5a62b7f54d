// Package cache provides a keyed in-memory store with TTL-based freshness.
// The store performs no I/O; fetching is the caller's responsibility.
package cache

import (
	"sync"
	"time"
)

// Entry holds one cached value with its freshness bookkeeping.
type Entry[T any] struct {
	Value          T
	FetchedAt      time.Time
	LastAccessedAt time.Time
}

// Store memoizes values of type T for up to a TTL. Eviction is lazy: a stale
// entry stays in the map and is treated as a miss until the next Put replaces
// it. Safe for concurrent use.
type Store[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*Entry[T]
	now     func() time.Time
}

// New creates an empty store whose entries stay fresh for ttl.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		ttl:     ttl,
		entries: make(map[string]*Entry[T]),
		now:     time.Now,
	}
}

// WithClock overrides the store's time source. Used by tests.
func (s *Store[T]) WithClock(now func() time.Time) *Store[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// Get returns the cached value for key if a fresh entry exists. A stale hit
// behaves exactly like a miss: the zero value and false.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}

	now := s.now()
	if now.Sub(entry.FetchedAt) >= s.ttl {
		var zero T
		return zero, false
	}

	entry.LastAccessedAt = now
	return entry.Value, true
}

// Put stores or overwrites the value for key and resets its freshness window.
func (s *Store[T]) Put(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = &Entry[T]{
		Value:          value,
		FetchedAt:      now,
		LastAccessedAt: now,
	}
}

// Update applies fn to the cached value for key, if a fresh entry exists, and
// refreshes the entry's timestamps. Returns false when there was nothing
// fresh to update. Used to patch a cached projection in place after an
// upload confirmation without refetching.
func (s *Store[T]) Update(key string, fn func(value T) T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return false
	}

	now := s.now()
	if now.Sub(entry.FetchedAt) >= s.ttl {
		return false
	}

	entry.Value = fn(entry.Value)
	entry.FetchedAt = now
	entry.LastAccessedAt = now
	return true
}

// Invalidate removes the entry for key immediately, regardless of TTL.
// Invalidating an absent key is a no-op.
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// InvalidateAll clears the entire store. Used on logout and account deletion.
func (s *Store[T]) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry[T])
}

// Len returns the number of physical entries, fresh or stale.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// OldestFetch returns the earliest FetchedAt across all entries, or the zero
// time when the store is empty. Exposed for cache statistics.
func (s *Store[T]) OldestFetch() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest time.Time
	for _, entry := range s.entries {
		if oldest.IsZero() || entry.FetchedAt.Before(oldest) {
			oldest = entry.FetchedAt
		}
	}
	return oldest
}
