// Package repository provides data access layer for the application.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cinefinder/database"
)

// CacheRepository stores raw TMDB response bodies keyed by endpoint
type CacheRepository struct {
	db  *database.DB
	ttl time.Duration
	now func() time.Time
}

// NewCacheRepository creates a new cache repository whose entries expire after ttl
func NewCacheRepository(db *database.DB, ttl time.Duration) *CacheRepository {
	return &CacheRepository{db: db, ttl: ttl, now: time.Now}
}

// Enabled reports whether entries are kept at all
func (r *CacheRepository) Enabled() bool {
	return r != nil && r.ttl > 0
}

// Get returns the cached body for key if present and not expired
func (r *CacheRepository) Get(key string) ([]byte, bool, error) {
	if !r.Enabled() {
		return nil, false, nil
	}

	var data string
	var cachedAt int64
	err := r.db.QueryRow(`SELECT data, cached_at FROM tmdb_cache WHERE cache_key = ?`, key).Scan(&data, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	if r.now().Sub(time.Unix(cachedAt, 0)) > r.ttl {
		return nil, false, nil
	}

	return []byte(data), true, nil
}

// Set stores body under key, replacing any previous entry
func (r *CacheRepository) Set(key string, body []byte) error {
	if !r.Enabled() {
		return nil
	}

	query := `INSERT INTO tmdb_cache (cache_key, data, cached_at) VALUES (?, ?, ?)
			  ON CONFLICT(cache_key) DO UPDATE SET data = excluded.data, cached_at = excluded.cached_at`
	if _, err := r.db.Exec(query, key, string(body), r.now().Unix()); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// DeleteExpired removes entries older than the TTL and returns how many were dropped
func (r *CacheRepository) DeleteExpired() (int64, error) {
	if !r.Enabled() {
		return 0, nil
	}

	cutoff := r.now().Add(-r.ttl).Unix()
	res, err := r.db.Exec(`DELETE FROM tmdb_cache WHERE cached_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted cache entries: %w", err)
	}
	return n, nil
}
