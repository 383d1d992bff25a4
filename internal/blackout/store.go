package blackout

import (
	"sort"
	"sync"
	"time"

	"sheetcal/internal/calendar"
	"sheetcal/internal/model"
)

// Store holds the dates that are not selectable: the static dates from the
// config plus the days blocked by the last successful feed refresh.
type Store struct {
	mu sync.RWMutex

	static    map[calendar.Date]struct{}
	feed      []model.Blackout
	feedDates map[calendar.Date]struct{}
	updatedAt time.Time
}

// NewStore creates a Store seeded with static disabled dates.
func NewStore(static ...calendar.Date) *Store {
	s := &Store{
		static:    make(map[calendar.Date]struct{}, len(static)),
		feedDates: map[calendar.Date]struct{}{},
	}
	for _, d := range static {
		s.static[d] = struct{}{}
	}
	return s
}

// Replace swaps the feed-derived blackouts. Static dates are kept.
func (s *Store) Replace(feed []model.Blackout) {
	dates := make(map[calendar.Date]struct{}, len(feed))
	for _, d := range model.Dates(feed) {
		dates[d] = struct{}{}
	}
	copied := append([]model.Blackout(nil), feed...)

	s.mu.Lock()
	s.feed = copied
	s.feedDates = dates
	s.updatedAt = time.Now()
	s.mu.Unlock()
}

// Dates returns every disabled date in ascending order.
func (s *Store) Dates() []calendar.Date {
	s.mu.RLock()
	out := make([]calendar.Date, 0, len(s.static)+len(s.feedDates))
	for d := range s.static {
		out = append(out, d)
	}
	for d := range s.feedDates {
		if _, dup := s.static[d]; !dup {
			out = append(out, d)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Contains reports whether d is disabled.
func (s *Store) Contains(d calendar.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.static[d]; ok {
		return true
	}
	_, ok := s.feedDates[d]
	return ok
}

// Blackouts returns a copy of the feed-derived blackouts.
func (s *Store) Blackouts() []model.Blackout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Blackout(nil), s.feed...)
}

// UpdatedAt is the time of the last Replace, zero if the feeds never loaded.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
