package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/time/rate"

	httpapi "github.com/anurag121124/Weather-Forecast/internal/api/http"
	"github.com/anurag121124/Weather-Forecast/internal/config"
	"github.com/anurag121124/Weather-Forecast/internal/prefs"
	"github.com/anurag121124/Weather-Forecast/internal/scheduler"
	"github.com/anurag121124/Weather-Forecast/internal/storage"
	"github.com/anurag121124/Weather-Forecast/internal/store"
	"github.com/anurag121124/Weather-Forecast/internal/weather"
	"github.com/anurag121124/Weather-Forecast/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.OpenWeatherAPIKey == "" {
		log.Println("warning: OPENWEATHER_API_KEY is not set; lookups will fail as UNAUTHORIZED")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound calls. Zero timeout keeps the transport default.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var limiter *rate.Limiter
	if cfg.UpstreamRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.UpstreamRPS), cfg.UpstreamBurst)
	}

	provider := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, limiter)

	persister, closer, err := openPersister(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open preference storage: %v", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	preferences := prefs.NewStore(ctx, cfg.PrefsName, persister, cfg.DefaultUnit)

	// In-memory snapshot store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Core service: concurrent lookup, recent searches and favorite snapshots.
	service := weather.NewService(provider, preferences, memStore)

	// Scheduler that periodically refreshes favorites.
	sched := scheduler.New(preferences, cfg.FavoritesRefreshInterval, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weather-forecast",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
		Immutable:             true,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		if h, ok := persister.(healthChecker); ok {
			if err := h.Health(c.UserContext()); err != nil {
				log.Printf("ERROR: storage health check failed: %v", err)
				return fiber.NewError(fiber.StatusServiceUnavailable, "preference storage unavailable")
			}
		}
		return c.JSON(fiber.Map{
			"status":   "ok",
			"service":  "weather-forecast",
			"provider": provider.Name(),
			"storage":  cfg.PrefsBackend,
		})
	})

	httpapi.RegisterRoutes(app, service, preferences)

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

type healthChecker interface {
	Health(ctx context.Context) error
}

// openPersister picks the preference backend. The returned closer may be nil.
func openPersister(ctx context.Context, cfg *config.AppConfig) (prefs.Persister, io.Closer, error) {
	switch cfg.PrefsBackend {
	case config.BackendMemory:
		return prefs.NewMemoryPersister(), nil, nil
	case config.BackendPostgres:
		pg, err := storage.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg, nil
	default:
		db, err := storage.NewSQLite(cfg.PrefsSQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("INFO: preferences stored in %s", cfg.PrefsSQLitePath)
		return db, db, nil
	}
}
