package client

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

// Fetcher performs a combined lookup.
type Fetcher interface {
	Lookup(ctx context.Context, q weather.LocationQuery, unit weather.Unit) (weather.Result, error)
}

// View is what the dashboard currently displays.
type View struct {
	Token  string
	Query  weather.LocationQuery
	Unit   weather.Unit
	Result weather.Result
	Days   []weather.DailyForecast
	Err    error
}

// Dashboard tracks the latest search. Every search gets a token; a response
// whose token is no longer the latest issued is dropped.
type Dashboard struct {
	fetcher Fetcher
	loc     *time.Location

	mu     sync.Mutex
	latest string
	view   View
}

// NewDashboard creates a Dashboard bucketing days in loc (nil means local time).
func NewDashboard(fetcher Fetcher, loc *time.Location) *Dashboard {
	if loc == nil {
		loc = time.Local
	}
	return &Dashboard{fetcher: fetcher, loc: loc}
}

// Search looks up q and, if no newer search was issued in the meantime,
// replaces the current view. The boolean reports whether the view was updated.
func (d *Dashboard) Search(ctx context.Context, q weather.LocationQuery, unit weather.Unit) (View, bool) {
	token := uuid.NewString()
	d.mu.Lock()
	d.latest = token
	d.mu.Unlock()

	res, err := d.fetcher.Lookup(ctx, q, unit)

	v := View{Token: token, Query: q, Unit: unit, Err: err}
	if err == nil {
		v.Result = res
		v.Days = weather.AggregateDaily(res.Forecast.List, d.loc)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if token != d.latest {
		log.Printf("DEBUG: discarding stale response for %s", q.Label())
		return v, false
	}
	d.view = v
	return v, true
}

// View returns the currently displayed view.
func (d *Dashboard) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}
