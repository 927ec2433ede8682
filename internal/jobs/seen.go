package jobs

import (
	"sync"
	"time"
)

// SeenSet remembers which notifications were already delivered
type SeenSet struct {
	mu    sync.Mutex
	items map[string]time.Time
}

// NewSeenSet creates an empty set
func NewSeenSet() *SeenSet {
	return &SeenSet{items: make(map[string]time.Time)}
}

// Add records key with the time of the event it refers to
func (s *SeenSet) Add(key string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = at
}

// Has reports whether key was delivered
func (s *SeenSet) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[key]
	return ok
}

// Prune forgets entries for events older than before and returns how many
// were removed.
func (s *SeenSet) Prune(before time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, at := range s.items {
		if at.Before(before) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of remembered keys
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
