package prefs

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

func TestFavorites(t *testing.T) {
	s := NewStore(context.Background(), "", nil, weather.UnitMetric)

	s.AddFavorite("Paris")
	s.AddFavorite("Paris")
	s.AddFavorite("Tokyo")

	if got := s.Favorites(); !reflect.DeepEqual(got, []string{"Paris", "Tokyo"}) {
		t.Fatalf("unexpected favorites: %v", got)
	}
	if !s.IsFavorite("Paris") {
		t.Fatal("expected Paris to be a favorite")
	}

	s.RemoveFavorite("Paris")
	if s.IsFavorite("Paris") {
		t.Fatal("expected Paris to be removed")
	}
	s.RemoveFavorite("Paris")
	if got := s.Favorites(); !reflect.DeepEqual(got, []string{"Tokyo"}) {
		t.Fatalf("unexpected favorites after removal: %v", got)
	}
}

func TestRecentSearchesCapAndPromote(t *testing.T) {
	s := NewStore(context.Background(), "", nil, weather.UnitMetric)

	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		s.AddRecentSearch(name)
	}
	if got := s.RecentSearches(); !reflect.DeepEqual(got, []string{"F", "E", "D", "C", "B"}) {
		t.Fatalf("unexpected recent searches: %v", got)
	}

	s.AddRecentSearch("C")
	if got := s.RecentSearches(); !reflect.DeepEqual(got, []string{"C", "F", "E", "D", "B"}) {
		t.Fatalf("unexpected recent searches after promote: %v", got)
	}
}

func TestRecentSearchesReturnsCopy(t *testing.T) {
	s := NewStore(context.Background(), "", nil, weather.UnitMetric)
	s.AddRecentSearch("Paris")

	got := s.RecentSearches()
	got[0] = "changed"
	if s.RecentSearches()[0] != "Paris" {
		t.Fatal("expected store state to be unaffected by caller mutation")
	}
}

func TestPersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	s := NewStore(ctx, "prefs", p, weather.UnitMetric)

	s.SetUnit(weather.UnitImperial)
	s.AddFavorite("Paris")
	s.AddRecentSearch("Paris")

	if p.Saves() != 3 {
		t.Fatalf("expected 3 saves, got %d", p.Saves())
	}

	reloaded := NewStore(ctx, "prefs", p, weather.UnitMetric)
	want := Preferences{
		Unit:              weather.UnitImperial,
		FavoriteLocations: []string{"Paris"},
		RecentSearches:    []string{"Paris"},
	}
	if got := reloaded.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected reloaded preferences: %+v", got)
	}
}

type failingPersister struct{}

func (failingPersister) Load(ctx context.Context, name string) (Preferences, error) {
	return Preferences{}, errors.New("disk on fire")
}

func (failingPersister) Save(ctx context.Context, name string, p Preferences) error {
	return errors.New("disk on fire")
}

func TestPersistenceFailuresAreNotFatal(t *testing.T) {
	s := NewStore(context.Background(), "prefs", failingPersister{}, weather.UnitImperial)
	if s.Unit() != weather.UnitImperial {
		t.Fatalf("expected default unit, got %s", s.Unit())
	}

	s.AddFavorite("Paris")
	if !s.IsFavorite("Paris") {
		t.Fatal("expected in-memory state to be updated despite save failure")
	}
}

func TestNormalizeRepairsLoadedBlob(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	_ = p.Save(ctx, "prefs", Preferences{
		Unit:              "kelvin",
		FavoriteLocations: []string{"Paris", "Paris", ""},
		RecentSearches:    []string{"A", "B", "A", "C", "D", "E", "F"},
	})

	s := NewStore(ctx, "prefs", p, weather.UnitMetric)
	got := s.Snapshot()
	if got.Unit != weather.UnitMetric {
		t.Fatalf("expected fallback unit, got %s", got.Unit)
	}
	if !reflect.DeepEqual(got.FavoriteLocations, []string{"Paris"}) {
		t.Fatalf("unexpected favorites: %v", got.FavoriteLocations)
	}
	if !reflect.DeepEqual(got.RecentSearches, []string{"A", "B", "C", "D", "E"}) {
		t.Fatalf("unexpected recent searches: %v", got.RecentSearches)
	}
}
