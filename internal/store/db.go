package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrSchemaOutdated means the database was not migrated to the schema this
// binary expects.
var ErrSchemaOutdated = errors.New("database schema is outdated")

// DB is the halflife SQLite database: the drink log and saved settings.
type DB struct {
	*sql.DB
	Path string
}

// Health is a snapshot of what the database holds, for /api/health and
// `halflife status`.
type Health struct {
	Path          string `json:"path"`
	SchemaVersion int    `json:"schema_version"`
	Drinks        int    `json:"drinks"`
	SettingsSaved bool   `json:"settings_saved"`
}

// DefaultDBPath returns ~/.halflife/halflife.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".halflife", "halflife.db"), nil
}

// Open opens or creates the drink log at path and brings its schema up to
// date.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return initialize(&DB{DB: sqlDB, Path: path})
}

// OpenMemory opens a throwaway in-memory drink log, for tests.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// Every connection to :memory: is its own database.
	sqlDB.SetMaxOpenConns(1)
	return initialize(&DB{DB: sqlDB, Path: ":memory:"})
}

func initialize(db *DB) (*DB, error) {
	if err := db.configurePragmas(); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Check verifies the database answers and carries the current schema, and
// reports how many drinks it holds.
func (db *DB) Check(ctx context.Context) (Health, error) {
	h := Health{Path: db.Path}
	if err := db.PingContext(ctx); err != nil {
		return h, fmt.Errorf("ping %s: %w", db.Path, err)
	}

	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_versions`).Scan(&h.SchemaVersion)
	if err != nil {
		return h, fmt.Errorf("read schema version: %w", err)
	}
	if want := latestVersion(); h.SchemaVersion < want {
		return h, fmt.Errorf("%w: at version %d, want %d", ErrSchemaOutdated, h.SchemaVersion, want)
	}

	var settingsRows int
	err = db.QueryRowContext(ctx, `SELECT (SELECT COUNT(*) FROM drinks), (SELECT COUNT(*) FROM settings)`).
		Scan(&h.Drinks, &settingsRows)
	if err != nil {
		return h, fmt.Errorf("count rows: %w", err)
	}
	h.SettingsSaved = settingsRows > 0
	return h, nil
}

func (db *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}
