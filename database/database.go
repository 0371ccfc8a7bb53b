// Package database provides database connectivity and schema management.
package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3" // Import sqlite3 driver
)

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A :memory: database lives and dies with its connection.
	if dataSourceName == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// InitSchema initializes the database schema
func (db *DB) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tmdb_cache (
		cache_key TEXT PRIMARY KEY NOT NULL,
		data TEXT NOT NULL,
		cached_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tmdb_cache_cached_at ON tmdb_cache(cached_at);

	CREATE TABLE IF NOT EXISTS search_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		keyword TEXT,
		result_count INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_search_events_created_at ON search_events(created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	slog.Debug("Database schema initialized")
	return nil
}
