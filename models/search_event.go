package models

import "time"

// SearchEvent records one natural-language search and how it resolved
type SearchEvent struct {
	ID          int       `json:"id"`
	Query       string    `json:"query"`
	Keyword     string    `json:"keyword,omitempty"`
	ResultCount int       `json:"result_count"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Failed reports whether the search ended in an error
func (e SearchEvent) Failed() bool {
	return e.Error != ""
}

// SearchStats summarises the search log
type SearchStats struct {
	TotalSearches  int    `json:"total_searches"`
	FailedSearches int    `json:"failed_searches"`
	EmptySearches  int    `json:"empty_searches"`
	LastSearchTime string `json:"last_search_time,omitempty"`
}

// RecentSearchesResponse is the payload of the recent searches endpoint
type RecentSearchesResponse struct {
	Events     []SearchEvent `json:"events"`
	Statistics *SearchStats  `json:"statistics"`
}

// SearchResponse is the payload of the JSON search endpoint
type SearchResponse struct {
	Query   string         `json:"query"`
	Keyword string         `json:"keyword"`
	Results []MediaSummary `json:"results"`
	Message string         `json:"message,omitempty"`
}

// InterpretResponse is the payload of the query interpretation endpoint
type InterpretResponse struct {
	Query   string `json:"query"`
	Keyword string `json:"keyword"`
}
