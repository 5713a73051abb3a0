package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anurag121124/Weather-Forecast/internal/prefs"
)

// SQLitePersister stores preference blobs in a SQLite database
// (pure Go driver modernc.org/sqlite).
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Println("warning: could not set WAL mode:", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS preferences (
        name TEXT PRIMARY KEY,
        blob TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &SQLitePersister{db: db}, nil
}

// Load reads the named blob.
func (s *SQLitePersister) Load(ctx context.Context, name string) (prefs.Preferences, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM preferences WHERE name = ?`, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return prefs.Preferences{}, prefs.ErrNotFound
	}
	if err != nil {
		return prefs.Preferences{}, fmt.Errorf("sqlite: load preferences: %w", err)
	}

	var p prefs.Preferences
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return prefs.Preferences{}, fmt.Errorf("sqlite: decode preferences: %w", err)
	}
	return p, nil
}

// Save rewrites the named blob.
func (s *SQLitePersister) Save(ctx context.Context, name string, p prefs.Preferences) error {
	blob, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("sqlite: encode preferences: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO preferences(name, blob, updated_at) VALUES(?,?,?)`,
		name, string(blob), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite: save preferences: %w", err)
	}
	return nil
}

func (s *SQLitePersister) Close() error {
	return s.db.Close()
}

var _ prefs.Persister = (*SQLitePersister)(nil)
