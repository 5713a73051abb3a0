package store

import (
	"errors"
	"testing"
	"time"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

func snap(ts time.Time) weather.Snapshot {
	return weather.Snapshot{Location: "Paris", Unit: weather.UnitMetric, Timestamp: ts}
}

func TestMemoryStoreRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		s.SaveSnapshot("Paris", snap(base.Add(time.Duration(i)*time.Hour)))
	}

	all, err := s.GetRange("paris", base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || !all[0].Timestamp.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected the two newest snapshots, got %+v", all)
	}
}

func TestMemoryStoreRetentionByAge(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveSnapshot("Paris", snap(now.Add(-3*time.Hour)))
	s.SaveSnapshot("Paris", snap(now.Add(-2*time.Hour)))
	s.SaveSnapshot("Paris", snap(now))

	all, err := s.GetRange("Paris", now.Add(-24*time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 1 || !all[0].Timestamp.Equal(now) {
		t.Fatalf("expected only the fresh snapshot, got %+v", all)
	}
}

func TestMemoryStoreKeepsNewestEvenIfOld(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }

	s.SaveSnapshot("Paris", snap(now.Add(-5*time.Hour)))

	if _, err := s.GetLatest("Paris"); err != nil {
		t.Fatalf("expected newest snapshot to be kept, got %v", err)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore(10, time.Hour)

	if _, err := s.GetLatest("Nowhere"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	base := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	s.SaveSnapshot("Paris", snap(base))
	if _, err := s.GetRange("Paris", base.Add(time.Hour), base.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty range, got %v", err)
	}
}
