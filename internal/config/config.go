package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/anurag121124/Weather-Forecast/internal/prefs"
	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

// Preference persistence backends.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// HTTPTimeout bounds outbound calls; 0 keeps the transport default.
	HTTPTimeout time.Duration

	// Outbound pacing (requests per second and burst); UpstreamRPS <= 0 disables it.
	UpstreamRPS   float64
	UpstreamBurst int

	// Preference persistence.
	PrefsBackend    string
	PrefsName       string
	PrefsSQLitePath string
	DatabaseURL     string
	DefaultUnit     weather.Unit

	// FavoritesRefreshInterval controls how often favorites are refreshed (0 = never).
	FavoritesRefreshInterval time.Duration

	// In-memory snapshot store retention.
	StoreMaxHistory int           // max number of snapshots per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	CORSAllowOrigins string
	Port             string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "0s"); err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(getenvDefault("UPSTREAM_RPS", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid UPSTREAM_RPS: %w", err)
	}
	cfg.UpstreamRPS = rps
	cfg.UpstreamBurst = getenvInt("UPSTREAM_BURST", 10)

	cfg.PrefsBackend = strings.ToLower(getenvDefault("PREFS_BACKEND", BackendSQLite))
	switch cfg.PrefsBackend {
	case BackendMemory, BackendSQLite, BackendPostgres:
	default:
		return nil, fmt.Errorf("invalid PREFS_BACKEND %q: use memory, sqlite or postgres", cfg.PrefsBackend)
	}
	cfg.PrefsName = getenvDefault("PREFS_NAME", prefs.DefaultName)
	cfg.PrefsSQLitePath = getenvDefault("PREFS_SQLITE_PATH", "preferences.db")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.PrefsBackend == BackendPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required when PREFS_BACKEND=postgres")
	}

	unit, err := weather.ParseUnit(getenvDefault("DEFAULT_UNIT", string(weather.UnitMetric)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_UNIT: %w", err)
	}
	cfg.DefaultUnit = unit

	// Favorites refresh: disabled by default.
	if cfg.FavoritesRefreshInterval, err = getenvDuration("FAVORITES_REFRESH_INTERVAL", "0s"); err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 48)
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	cfg.CORSAllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS", "*")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
