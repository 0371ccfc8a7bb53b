package views

import (
	"context"
	"log/slog"
	"strings"

	"cinefinder/models"
)

// SearchOutcome is what one interpreted search produced.
type SearchOutcome struct {
	Keyword string
	Results []models.MediaSummary
}

// Notice returns the message shown in place of an empty result grid.
func (s SearchOutcome) Notice() string {
	if len(s.Results) == 0 {
		return NoResultsMessage
	}
	return ""
}

// Searcher runs the interpret, search and record chain shared by every
// search entry point.
type Searcher struct {
	Metadata    MetadataSource
	Interpreter QueryInterpreter
	// Recorder is optional.
	Recorder SearchRecorder
	Log      *slog.Logger
}

// Run interprets query into a keyword and searches with it. Every run is
// recorded, failed ones included. Callers handle blank queries.
func (s Searcher) Run(ctx context.Context, query string) (SearchOutcome, error) {
	query = strings.TrimSpace(query)
	event := &models.SearchEvent{Query: query}
	defer s.record(event)

	var outcome SearchOutcome
	keyword, err := s.Interpreter.InterpretQuery(ctx, query)
	if err != nil {
		event.Error = err.Error()
		return outcome, err
	}
	event.Keyword = keyword
	outcome.Keyword = keyword

	results, err := s.Metadata.SearchMulti(ctx, keyword)
	if err != nil {
		event.Error = err.Error()
		return outcome, err
	}
	event.ResultCount = len(results)
	outcome.Results = results
	return outcome, nil
}

func (s Searcher) record(event *models.SearchEvent) {
	if s.Recorder == nil {
		return
	}
	if err := s.Recorder.Create(event); err != nil {
		s.logger().Warn("Failed to record search", "query", event.Query, "error", err)
	}
}

func (s Searcher) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
