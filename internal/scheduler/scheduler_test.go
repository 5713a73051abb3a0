package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

type fakeFavorites struct {
	names []string
	unit  weather.Unit
}

func (f fakeFavorites) Favorites() []string { return f.names }
func (f fakeFavorites) Unit() weather.Unit  { return f.unit }

type fakeFetcher struct {
	mu      sync.Mutex
	fetched []string
	units   []weather.Unit
}

func (f *fakeFetcher) FetchAndStore(ctx context.Context, location string, unit weather.Unit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, location)
	f.units = append(f.units, unit)
	if location == "Atlantis" {
		return errors.New("location not found")
	}
	return nil
}

func TestRunOnceRefreshesEveryFavorite(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := New(fakeFavorites{names: []string{"Paris", "Atlantis", "Tokyo"}, unit: weather.UnitImperial}, 0, fetcher)

	s.RunOnce()

	sort.Strings(fetcher.fetched)
	want := []string{"Atlantis", "Paris", "Tokyo"}
	if len(fetcher.fetched) != len(want) {
		t.Fatalf("expected %d fetches, got %v", len(want), fetcher.fetched)
	}
	for i := range want {
		if fetcher.fetched[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, fetcher.fetched)
		}
	}
	for _, u := range fetcher.units {
		if u != weather.UnitImperial {
			t.Fatalf("expected preferred unit, got %s", u)
		}
	}
}

func TestStartDisabledWithoutInterval(t *testing.T) {
	fetcher := &fakeFetcher{}
	s := New(fakeFavorites{names: []string{"Paris"}}, 0, fetcher)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()

	if len(fetcher.fetched) != 0 {
		t.Fatalf("expected no fetches, got %v", fetcher.fetched)
	}
}
