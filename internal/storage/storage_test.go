package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/anurag121124/Weather-Forecast/internal/prefs"
	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

func roundTrip(t *testing.T, p prefs.Persister) {
	t.Helper()
	ctx := context.Background()

	if _, err := p.Load(ctx, "missing"); !errors.Is(err, prefs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	want := prefs.Preferences{
		Unit:              weather.UnitImperial,
		FavoriteLocations: []string{"Paris", "Tokyo"},
		RecentSearches:    []string{"Tokyo", "Paris"},
	}
	if err := p.Save(ctx, "user-preferences", want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	want.RecentSearches = []string{"Lima", "Tokyo", "Paris"}
	if err := p.Save(ctx, "user-preferences", want); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := p.Load(ctx, "user-preferences")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected blob: got %+v want %+v", got, want)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test_prefs.db")

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer func() {
		_ = s.Close()
		_ = os.Remove(dbPath)
	}()

	roundTrip(t, s)
}

func TestSQLiteBacksPreferenceStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	ctx := context.Background()

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	store := prefs.NewStore(ctx, "", s, weather.UnitMetric)
	store.AddFavorite("Paris")
	store.AddRecentSearch("Berlin")
	_ = s.Close()

	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	again := prefs.NewStore(ctx, "", reopened, weather.UnitMetric)
	if !again.IsFavorite("Paris") {
		t.Fatal("expected favorite to survive a restart")
	}
	if got := again.RecentSearches(); len(got) != 1 || got[0] != "Berlin" {
		t.Fatalf("unexpected recent searches: %v", got)
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	p, err := NewPostgres(context.Background(), url)
	if err != nil {
		t.Fatalf("NewPostgres failed: %v", err)
	}
	defer p.Close()

	if _, err := p.pool.Exec(context.Background(), `DELETE FROM preferences WHERE name IN ('missing', 'user-preferences')`); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	roundTrip(t, p)
}
