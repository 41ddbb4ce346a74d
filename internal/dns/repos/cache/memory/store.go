// Package memory provides an in-process, map-backed cache.Store for tests
// and for standalone runs that don't want a bbolt file on disk.
package memory

import (
	"sync"
	"time"

	"github.com/rrwalk/rrwalk/internal/dns/common/clock"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a mutex-guarded map implementing cache.Store, with lazy expiry
// applied on Get the same way the bbolt-backed store applies it.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   clock.Clock
}

// New builds an empty in-memory store using the given clock for expiry
// checks (use clock.RealClock{} outside of tests).
func New(c clock.Clock) *Store {
	return &Store{entries: make(map[string]entry), clock: c}
}

// Get returns the stored value, reporting a miss and deleting the entry if
// its TTL has already elapsed.
func (s *Store) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !s.clock.Now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// SetIfAbsent stores value under key only if no live entry occupies it.
func (s *Store) SetIfAbsent(key string, value []byte, ttlSeconds uint32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		if e.expiresAt.IsZero() || s.clock.Now().Before(e.expiresAt) {
			return false, nil
		}
	}

	expiresAt := s.clock.Now().Add(time.Duration(ttlSeconds) * time.Second)
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
	return true, nil
}

// Clear removes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
	return nil
}
