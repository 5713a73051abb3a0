package weather

import (
	"context"
	"time"
)

// Provider abstracts the upstream weather API (e.g. OpenWeatherMap). Both
// calls take the same query and unit so their requests share parameters.
type Provider interface {
	Name() string
	Current(ctx context.Context, q LocationQuery, unit Unit) (CurrentConditions, error)
	Forecast(ctx context.Context, q LocationQuery, unit Unit) (RawForecast, error)
}

// RecentSearches receives the display name of every successful lookup.
type RecentSearches interface {
	AddRecentSearch(name string)
}

// Store is the contract the snapshot store must satisfy.
type Store interface {
	SaveSnapshot(location string, snapshot Snapshot)
	GetLatest(location string) (Snapshot, error)
	GetRange(location string, from, to time.Time) ([]Snapshot, error)
}
