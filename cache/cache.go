// Package cache holds recent search results in memory so repeat queries can
// skip a full render. Freshness is decided by the caller per lookup, so one
// store serves requests with different staleness tolerances.
package cache

import (
	"sync"
	"time"

	"github.com/umerzulfiqar021/Puppeteer/models"
)

type entry struct {
	hotels  []models.HotelSummary
	addedAt time.Time
}

// Store is a bounded in-memory result cache keyed by canonical search URL.
// Insertion order drives eviction.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	order   []string
	max     int
}

// New returns a store that keeps at most max entries. A non-positive max
// yields a store that caches nothing.
func New(max int) *Store {
	return &Store{
		entries: make(map[string]entry),
		max:     max,
	}
}

// Get returns the cached hotels for key when the entry is younger than
// maxAge. The second return is false on miss or when the entry is stale.
func (s *Store) Get(key string, maxAge time.Duration) ([]models.HotelSummary, bool) {
	if maxAge <= 0 {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || time.Since(e.addedAt) > maxAge {
		return nil, false
	}

	// Callers may mutate the slice; hand out a copy.
	hotels := make([]models.HotelSummary, len(e.hotels))
	copy(hotels, e.hotels)
	return hotels, true
}

// Put stores the hotels under key, evicting the oldest entry when full.
// Re-putting an existing key refreshes its timestamp without re-ordering.
func (s *Store) Put(key string, hotels []models.HotelSummary) {
	if s.max <= 0 {
		return
	}

	stored := make([]models.HotelSummary, len(hotels))
	copy(stored, hotels)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists {
		if len(s.order) >= s.max {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.entries, oldest)
		}
		s.order = append(s.order, key)
	}
	s.entries[key] = entry{hotels: stored, addedAt: time.Now()}
}

// Len reports the number of cached entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
