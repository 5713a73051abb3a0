package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

// Fetcher refreshes and stores the forecast of one location.
type Fetcher interface {
	FetchAndStore(ctx context.Context, location string, unit weather.Unit) error
}

// Favorites supplies the current favorites and preferred unit.
type Favorites interface {
	Favorites() []string
	Unit() weather.Unit
}

// Scheduler periodically refreshes the forecast snapshots of favorite locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	favorites Favorites
	interval  time.Duration
}

// New creates a new Scheduler.
func New(favorites Favorites, interval time.Duration, fetcher Fetcher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		fetcher:   fetcher,
		favorites: favorites,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// A non-positive interval disables the refresh.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		log.Println("scheduler: favorites refresh disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every favorite concurrently and waits for all of them.
func (s *Scheduler) RunOnce() {
	locations := s.favorites.Favorites()
	if len(locations) == 0 {
		log.Println("scheduler: no favorite locations; nothing to refresh")
		return
	}
	unit := s.favorites.Unit()

	log.Printf("scheduler: refreshing %d favorite locations", len(locations))

	var wg sync.WaitGroup
	for _, loc := range locations {
		loc := loc
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.fetcher.FetchAndStore(ctx, loc, unit); err != nil {
				log.Printf("scheduler: refresh failed for %s: %v", loc, err)
			}
		}()
	}
	wg.Wait()
	log.Println("scheduler: completed favorites refresh")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
