// Package cache provides in-memory caching for upstream API responses.
// Every entry carries the timestamp of its last successful fetch. Expired
// entries are never swept: they stay available as fallback data for when a
// live refresh fails (stale data is better than no data). Entries only leave
// a store through an explicit delete/clear or a process restart.
package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Entry is a cached value together with the time it was stored.
type Entry[T any] struct {
	Value    T
	StoredAt time.Time
}

// Store is an in-memory key/value cache for one data domain. Each store owns
// its TTL; freshness is decided at read time, so an entry that outlives the
// TTL remains retrievable via Get for fallback use.
//
// The mutex makes individual operations safe under concurrent requests. A
// miss-fetch-set sequence is deliberately not atomic: two concurrent requests
// for the same cold key may both fetch and both store, and the last write
// wins.
type Store[T any] struct {
	name string
	ttl  time.Duration
	log  zerolog.Logger

	mu      sync.RWMutex
	entries map[string]Entry[T]

	now func() time.Time // swapped out in tests
}

// New creates an empty store named for logging/admin purposes, with the given
// freshness window.
func New[T any](name string, ttl time.Duration, log zerolog.Logger) *Store[T] {
	return &Store[T]{
		name:    name,
		ttl:     ttl,
		log:     log.With().Str("store", name).Logger(),
		entries: make(map[string]Entry[T]),
		now:     time.Now,
	}
}

// Name returns the store name.
func (s *Store[T]) Name() string {
	return s.name
}

// TTL returns the store's freshness window.
func (s *Store[T]) TTL() time.Duration {
	return s.ttl
}

// GetIfFresh returns the value for key only if it is still within the TTL.
// Use Get to retrieve stale data as a fallback when an upstream call fails.
func (s *Store[T]) GetIfFresh(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if s.now().Sub(entry.StoredAt) >= s.ttl {
		var zero T
		return zero, false
	}
	return entry.Value, true
}

// Get returns the value for key regardless of freshness, along with the time
// it was stored. Use this as a fallback when upstream calls fail.
func (s *Store[T]) Get(key string) (T, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		var zero T
		return zero, time.Time{}, false
	}
	return entry.Value, entry.StoredAt, true
}

// Set stores value under key, unconditionally overwriting any previous entry
// and stamping it with the current time.
func (s *Store[T]) Set(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry[T]{Value: value, StoredAt: s.now()}
}

// Delete removes a single entry. Deleting a missing key is a no-op.
func (s *Store[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Clear empties the store and returns the number of entries removed.
func (s *Store[T]) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.entries)
	s.entries = make(map[string]Entry[T])
	return n
}

// Len returns the number of entries currently held, fresh or stale.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Flusher is the type-independent store surface used by the admin cache
// endpoints and the status monitor.
type Flusher interface {
	Name() string
	TTL() time.Duration
	Len() int
	Delete(key string)
	Clear() int
}

var _ Flusher = (*Store[string])(nil)
