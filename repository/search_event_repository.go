package repository

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"cinefinder/database"
	"cinefinder/models"
)

// SearchEventRepository handles the search log
type SearchEventRepository struct {
	db *database.DB
}

// NewSearchEventRepository creates a new search event repository
func NewSearchEventRepository(db *database.DB) *SearchEventRepository {
	return &SearchEventRepository{db: db}
}

// Create appends a search event and fills in its ID and timestamp
func (r *SearchEventRepository) Create(event *models.SearchEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO search_events (query, keyword, result_count, error, created_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.Exec(query, event.Query, event.Keyword, event.ResultCount, event.Error, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create search event: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get search event id: %w", err)
	}
	event.ID = int(id)
	return nil
}

// Recent returns the latest events, newest first
func (r *SearchEventRepository) Recent(limit int) ([]models.SearchEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, query, keyword, result_count, error, created_at
			  FROM search_events
			  ORDER BY created_at DESC, id DESC
			  LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query search events: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("Failed to close rows", "error", cerr)
		}
	}()

	events := []models.SearchEvent{}
	for rows.Next() {
		var event models.SearchEvent
		var keyword, errText sql.NullString

		if err := rows.Scan(&event.ID, &event.Query, &keyword, &event.ResultCount, &errText, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan search event: %w", err)
		}

		if keyword.Valid {
			event.Keyword = keyword.String
		}
		if errText.Valid {
			event.Error = errText.String
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search events: %w", err)
	}

	return events, nil
}

// GetStatistics summarises the whole search log
func (r *SearchEventRepository) GetStatistics() (*models.SearchStats, error) {
	stats := &models.SearchStats{}

	err := r.db.QueryRow(`SELECT COUNT(*) FROM search_events`).Scan(&stats.TotalSearches)
	if err != nil {
		return nil, fmt.Errorf("failed to count searches: %w", err)
	}

	err = r.db.QueryRow(`SELECT COUNT(*) FROM search_events WHERE error IS NOT NULL AND error != ''`).Scan(&stats.FailedSearches)
	if err != nil {
		return nil, fmt.Errorf("failed to count failed searches: %w", err)
	}

	err = r.db.QueryRow(`SELECT COUNT(*) FROM search_events WHERE result_count = 0 AND (error IS NULL OR error = '')`).Scan(&stats.EmptySearches)
	if err != nil {
		return nil, fmt.Errorf("failed to count empty searches: %w", err)
	}

	var last time.Time
	err = r.db.QueryRow(`SELECT created_at FROM search_events ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get last search time: %w", err)
	}
	if !last.IsZero() {
		stats.LastSearchTime = last.UTC().Format(time.RFC3339)
	}

	return stats, nil
}

// DeleteOldEvents removes events older than the specified duration.
// A zero retention keeps every event.
func (r *SearchEventRepository) DeleteOldEvents(olderThan time.Duration) error {
	if olderThan <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().Add(-olderThan)
	if _, err := r.db.Exec(`DELETE FROM search_events WHERE created_at < ?`, cutoff); err != nil {
		return fmt.Errorf("failed to delete old events: %w", err)
	}
	return nil
}
