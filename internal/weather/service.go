package weather

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"
)

var errNoProvider = errors.New("no weather provider configured")

// Service resolves location queries against the upstream provider and keeps
// the side effects of a lookup (recent searches, favorite snapshots).
type Service struct {
	provider Provider
	recents  RecentSearches
	store    Store
}

// NewService creates a new Service. recents and store may be nil.
func NewService(provider Provider, recents RecentSearches, store Store) *Service {
	return &Service{
		provider: provider,
		recents:  recents,
		store:    store,
	}
}

// Lookup fetches current conditions and the forecast for q concurrently.
// Both calls must succeed; there is no partial result. On success the
// resolved display name is recorded as a recent search.
func (s *Service) Lookup(ctx context.Context, q LocationQuery, unit Unit) (Result, error) {
	res, err := s.resolve(ctx, q, unit)
	if err != nil {
		return Result{}, err
	}

	if s.recents != nil {
		s.recents.AddRecentSearch(displayName(res, q))
	}
	return res, nil
}

// Daily performs a Lookup and aggregates the forecast by calendar day in loc.
func (s *Service) Daily(ctx context.Context, q LocationQuery, unit Unit, loc *time.Location) (DailyReport, error) {
	if loc == nil {
		loc = time.Local
	}
	if unit == "" {
		unit = UnitMetric
	}

	res, err := s.Lookup(ctx, q, unit)
	if err != nil {
		return DailyReport{}, err
	}

	return DailyReport{
		Location:   displayName(res, q),
		Unit:       unit,
		UnitSymbol: unit.Symbol(),
		Timezone:   loc.String(),
		Days:       AggregateDaily(res.Forecast.List, loc),
	}, nil
}

// FetchAndStore resolves a favorite location by name, aggregates it in UTC and
// stores a snapshot. It does not touch recent searches.
func (s *Service) FetchAndStore(ctx context.Context, location string, unit Unit) error {
	if s.store == nil {
		return errors.New("no snapshot store configured")
	}
	if unit == "" {
		unit = UnitMetric
	}

	res, err := s.resolve(ctx, ByName(location), unit)
	if err != nil {
		return err
	}

	s.store.SaveSnapshot(location, Snapshot{
		Location:  location,
		Unit:      unit,
		Timestamp: time.Now().UTC(),
		Days:      AggregateDaily(res.Forecast.List, time.UTC),
	})
	return nil
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(location string) (Snapshot, error) {
	if s.store == nil {
		return Snapshot{}, errors.New("no snapshot store configured")
	}
	return s.store.GetLatest(location)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(location string, from, to time.Time) ([]Snapshot, error) {
	if s.store == nil {
		return nil, errors.New("no snapshot store configured")
	}
	return s.store.GetRange(location, from, to)
}

func (s *Service) resolve(ctx context.Context, q LocationQuery, unit Unit) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}
	if unit == "" {
		unit = UnitMetric
	}
	if s.provider == nil {
		return Result{}, NewError(KindUnknown, ErrUnknown.Message, errNoProvider)
	}

	var res Result

	// The first failure cancels the sibling call.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		current, err := s.provider.Current(gctx, q, unit)
		if err != nil {
			return err
		}
		res.Current = current
		return nil
	})
	g.Go(func() error {
		forecast, err := s.provider.Forecast(gctx, q, unit)
		if err != nil {
			return err
		}
		res.Forecast = forecast
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("provider %s lookup failed for %s: %v", s.provider.Name(), q.Label(), err)
		return Result{}, AsError(err)
	}
	return res, nil
}

func displayName(res Result, q LocationQuery) string {
	if res.Current.Name != "" {
		return res.Current.Name
	}
	if res.Forecast.City.Name != "" {
		return res.Forecast.City.Name
	}
	return q.Label()
}
