package store

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

// ErrNotFound is returned when no snapshot is available for a given location.
var ErrNotFound = errors.New("no forecast snapshot for location")

// MemoryStore keeps the daily forecast snapshots of favorite locations,
// oldest first, bounded by count and age.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]weather.Snapshot // keyed by folded location name

	maxHistory int           // <= 0 means unlimited
	maxAge     time.Duration // <= 0 means unlimited

	now func() time.Time
}

// NewMemoryStore creates a MemoryStore with the given retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		snapshots:  make(map[string][]weather.Snapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// key folds case so "paris" and "Paris" share a history.
func key(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// SaveSnapshot records a snapshot for location and applies retention.
func (s *MemoryStore) SaveSnapshot(location string, snapshot weather.Snapshot) {
	k := key(location)

	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.snapshots[k], snapshot)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp.Before(list[j].Timestamp)
	})
	s.snapshots[k] = s.prune(list)
}

// prune drops snapshots past the count limit, then those older than maxAge.
// The newest snapshot always survives.
func (s *MemoryStore) prune(list []weather.Snapshot) []weather.Snapshot {
	if s.maxHistory > 0 && len(list) > s.maxHistory {
		list = list[len(list)-s.maxHistory:]
	}
	if s.maxAge <= 0 {
		return list
	}

	cutoff := s.now().Add(-s.maxAge)
	first := sort.Search(len(list)-1, func(i int) bool {
		return !list[i].Timestamp.Before(cutoff)
	})
	return list[first:]
}

// GetLatest returns the most recent snapshot for a location.
func (s *MemoryStore) GetLatest(location string) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.snapshots[key(location)]
	if len(list) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return list[len(list)-1], nil
}

// GetRange returns the snapshots of a location taken between from and to, inclusive.
func (s *MemoryStore) GetRange(location string, from, to time.Time) ([]weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.Snapshot
	for _, snap := range s.snapshots[key(location)] {
		if snap.Timestamp.Before(from) || snap.Timestamp.After(to) {
			continue
		}
		out = append(out, snap)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

var _ weather.Store = (*MemoryStore)(nil)
