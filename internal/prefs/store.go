package prefs

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

// MaxRecentSearches caps the recent-searches list.
const MaxRecentSearches = 5

// DefaultName is the name of the persisted preference blob.
const DefaultName = "user-preferences"

// ErrNotFound is returned by a Persister when no blob has been saved yet.
var ErrNotFound = errors.New("preferences not found")

// Preferences is the persisted preference blob.
type Preferences struct {
	Unit              weather.Unit `json:"unit"`
	FavoriteLocations []string     `json:"favoriteLocations"`
	RecentSearches    []string     `json:"recentSearches"`
}

// Persister loads and saves the named preference blob.
type Persister interface {
	Load(ctx context.Context, name string) (Preferences, error)
	Save(ctx context.Context, name string, p Preferences) error
}

// Store owns the user's preferences and rewrites the blob on every mutation.
// Persistence failures are logged, never returned.
type Store struct {
	mu        sync.Mutex
	name      string
	persister Persister
	prefs     Preferences
}

// NewStore loads the named blob from persister (nil keeps state in memory
// only). A missing or unreadable blob starts from defaults.
func NewStore(ctx context.Context, name string, persister Persister, defaultUnit weather.Unit) *Store {
	if name == "" {
		name = DefaultName
	}
	if defaultUnit == "" {
		defaultUnit = weather.UnitMetric
	}

	s := &Store{
		name:      name,
		persister: persister,
		prefs:     Preferences{Unit: defaultUnit},
	}

	if persister == nil {
		return s
	}

	loaded, err := persister.Load(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		log.Printf("INFO: no saved preferences %q; starting with defaults", name)
	case err != nil:
		log.Printf("warning: could not load preferences %q, starting with defaults: %v", name, err)
	default:
		s.prefs = normalize(loaded, defaultUnit)
	}
	return s
}

// Unit returns the preferred unit system.
func (s *Store) Unit() weather.Unit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Unit
}

// SetUnit changes the preferred unit system.
func (s *Store) SetUnit(unit weather.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs.Unit = unit
	s.persistLocked()
}

// AddFavorite adds location to the favorites; adding an existing one is a no-op.
func (s *Store) AddFavorite(location string) {
	location = strings.TrimSpace(location)
	if location == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if indexOf(s.prefs.FavoriteLocations, location) >= 0 {
		return
	}
	s.prefs.FavoriteLocations = append(s.prefs.FavoriteLocations, location)
	s.persistLocked()
}

// RemoveFavorite removes location from the favorites, if present.
func (s *Store) RemoveFavorite(location string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.prefs.FavoriteLocations, location)
	if i < 0 {
		return
	}
	s.prefs.FavoriteLocations = append(s.prefs.FavoriteLocations[:i:i], s.prefs.FavoriteLocations[i+1:]...)
	s.persistLocked()
}

// IsFavorite reports whether location is a favorite.
func (s *Store) IsFavorite(location string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return indexOf(s.prefs.FavoriteLocations, location) >= 0
}

// Favorites returns the favorites in insertion order.
func (s *Store) Favorites() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.prefs.FavoriteLocations)
}

// AddRecentSearch puts name at the front of the recent searches, moving it
// there if already present, and drops anything past MaxRecentSearches.
func (s *Store) AddRecentSearch(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]string, 0, MaxRecentSearches)
	updated = append(updated, name)
	for _, r := range s.prefs.RecentSearches {
		if r != name && len(updated) < MaxRecentSearches {
			updated = append(updated, r)
		}
	}
	s.prefs.RecentSearches = updated
	s.persistLocked()
}

// RecentSearches returns the recent searches, most recent first.
func (s *Store) RecentSearches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.prefs.RecentSearches)
}

// Snapshot returns a copy of the whole blob.
func (s *Store) Snapshot() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Preferences{
		Unit:              s.prefs.Unit,
		FavoriteLocations: clone(s.prefs.FavoriteLocations),
		RecentSearches:    clone(s.prefs.RecentSearches),
	}
}

func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshot := Preferences{
		Unit:              s.prefs.Unit,
		FavoriteLocations: clone(s.prefs.FavoriteLocations),
		RecentSearches:    clone(s.prefs.RecentSearches),
	}
	if err := s.persister.Save(ctx, s.name, snapshot); err != nil {
		log.Printf("warning: failed to persist preferences %q: %v", s.name, err)
	}
}

// normalize repairs a loaded blob: known unit, unique favorites, capped recents.
func normalize(p Preferences, defaultUnit weather.Unit) Preferences {
	out := Preferences{Unit: defaultUnit}
	if u, err := weather.ParseUnit(string(p.Unit)); err == nil {
		out.Unit = u
	}

	out.FavoriteLocations = make([]string, 0, len(p.FavoriteLocations))
	for _, f := range p.FavoriteLocations {
		if f != "" && indexOf(out.FavoriteLocations, f) < 0 {
			out.FavoriteLocations = append(out.FavoriteLocations, f)
		}
	}

	out.RecentSearches = make([]string, 0, MaxRecentSearches)
	for _, r := range p.RecentSearches {
		if len(out.RecentSearches) == MaxRecentSearches {
			break
		}
		if r != "" && indexOf(out.RecentSearches, r) < 0 {
			out.RecentSearches = append(out.RecentSearches, r)
		}
	}
	return out
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

func clone(list []string) []string {
	out := make([]string, len(list))
	copy(out, list)
	return out
}
