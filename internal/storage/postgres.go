package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anurag121124/Weather-Forecast/internal/prefs"
)

// PostgresPersister stores preference blobs in a jsonb column.
type PostgresPersister struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL and applies the schema.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresPersister, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: health check failed: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS preferences (
			name       TEXT PRIMARY KEY,
			blob       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: failed to apply schema: %w", err)
	}

	return &PostgresPersister{pool: pool}, nil
}

// Load reads the named blob.
func (r *PostgresPersister) Load(ctx context.Context, name string) (prefs.Preferences, error) {
	var blob []byte
	err := r.pool.QueryRow(ctx, `SELECT blob FROM preferences WHERE name = $1`, name).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return prefs.Preferences{}, prefs.ErrNotFound
	}
	if err != nil {
		return prefs.Preferences{}, fmt.Errorf("postgres: failed to load preferences: %w", err)
	}

	var p prefs.Preferences
	if err := json.Unmarshal(blob, &p); err != nil {
		return prefs.Preferences{}, fmt.Errorf("postgres: failed to decode preferences: %w", err)
	}
	return p, nil
}

// Save rewrites the named blob.
func (r *PostgresPersister) Save(ctx context.Context, name string, p prefs.Preferences) error {
	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode preferences: %w", err)
	}

	query := `
		INSERT INTO preferences (name, blob, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET blob = EXCLUDED.blob, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, query, name, blob); err != nil {
		return fmt.Errorf("postgres: failed to save preferences: %w", err)
	}
	return nil
}

// Health checks database connectivity.
func (r *PostgresPersister) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

func (r *PostgresPersister) Close() error {
	r.pool.Close()
	return nil
}

var _ prefs.Persister = (*PostgresPersister)(nil)
