package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cinefinder/models"
	"cinefinder/services"
	"cinefinder/views"

	"github.com/gorilla/mux"
)

const (
	sessionCookieName  = "cinefinder_session"
	defaultRecentLimit = 20
	maxRecentLimit     = 100
	homeTitle          = "Inicio"
	statusClientClosed = 499
)

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// session returns the orchestrator bound to the request's cookie, starting
// a new session when the cookie is missing or unknown.
func (app *App) session(w http.ResponseWriter, r *http.Request) *views.Orchestrator {
	var id string
	if c, err := r.Cookie(sessionCookieName); err == nil {
		id = c.Value
	}

	newID, orch, created := app.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return orch
}

// HTML pages

func (app *App) homePage(w http.ResponseWriter, r *http.Request) {
	orch := app.session(w, r)
	if orch.HomePending() {
		// failures are stored in the state and rendered
		_ = orch.EnterHome(r.Context())
	}
	app.renderState(w, orch)
}

func (app *App) searchPage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	orch := app.session(w, r)
	if err := orch.Search(r.Context(), r.FormValue("q")); err != nil && !errors.Is(err, views.ErrSuperseded) {
		slog.Debug("Search ended with error", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *App) titlePage(w http.ResponseWriter, r *http.Request) {
	id, mediaType, ok := parseMediaRef(w, r)
	if !ok {
		return
	}

	orch := app.session(w, r)
	if err := orch.Select(r.Context(), id, mediaType); err != nil && !errors.Is(err, views.ErrSuperseded) {
		slog.Debug("Select ended with error", "media_id", id, "error", err)
	}
	app.renderState(w, orch)
}

func (app *App) backPage(w http.ResponseWriter, r *http.Request) {
	orch := app.session(w, r)
	if err := orch.Back(r.Context()); err != nil {
		slog.Debug("Back ended with error", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *App) renderState(w http.ResponseWriter, orch *views.Orchestrator) {
	state := orch.Snapshot()

	page := "home"
	data := pageData{Title: homeTitle, State: state, Region: app.region}
	if state.View == views.ViewDetails && state.Detail != nil {
		page = "details"
		data.Title = state.Detail.Title
		data.Refresh = state.SeasonsLoading
	}

	if err := app.renderer.render(w, page, data); err != nil {
		slog.Error("Failed to render page", "page", page, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if state.ScrollTop {
		orch.ClearScrollTop()
	}
}

// JSON API

func (app *App) homeHandler(w http.ResponseWriter, r *http.Request) {
	sections, err := app.metadata.HomeSections(r.Context())
	if err != nil {
		writeServiceError(w, "Error loading home sections", err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (app *App) searchHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	response := &models.SearchResponse{Query: query, Results: []models.MediaSummary{}}
	if query == "" {
		writeJSON(w, http.StatusOK, response)
		return
	}

	outcome, err := app.searcher().Run(r.Context(), query)
	if err != nil {
		writeServiceError(w, "Error searching", err)
		return
	}

	response.Keyword = outcome.Keyword
	if len(outcome.Results) > 0 {
		response.Results = outcome.Results
	}
	response.Message = outcome.Notice()
	writeJSON(w, http.StatusOK, response)
}

func (app *App) interpretHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}

	keyword, err := app.interpreter.InterpretQuery(r.Context(), query)
	if err != nil {
		writeServiceError(w, "Error interpreting query", err)
		return
	}
	writeJSON(w, http.StatusOK, &models.InterpretResponse{Query: query, Keyword: keyword})
}

func (app *App) mediaHandler(w http.ResponseWriter, r *http.Request) {
	id, mediaType, ok := parseMediaRef(w, r)
	if !ok {
		return
	}

	detail, err := app.metadata.Detail(r.Context(), id, mediaType)
	if err != nil {
		writeServiceError(w, "Error fetching media detail", err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (app *App) seasonHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	showID, err := strconv.Atoi(vars["id"])
	if err != nil || showID <= 0 {
		http.Error(w, "Invalid media ID", http.StatusBadRequest)
		return
	}
	seasonNumber, err := strconv.Atoi(vars["season"])
	if err != nil || seasonNumber < 0 {
		http.Error(w, "Invalid season number", http.StatusBadRequest)
		return
	}

	season, err := app.metadata.Season(r.Context(), showID, seasonNumber)
	if err != nil {
		writeServiceError(w, "Error fetching season", err)
		return
	}
	writeJSON(w, http.StatusOK, season)
}

func (app *App) sessionHandler(w http.ResponseWriter, r *http.Request) {
	orch := app.session(w, r)
	writeJSON(w, http.StatusOK, orch.Snapshot())
}

func (app *App) recentSearchesHandler(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = min(parsed, maxRecentLimit)
	}

	events, err := app.searchRepo.Recent(limit)
	if err != nil {
		slog.Error("Failed to get recent searches", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	stats, err := app.searchRepo.GetStatistics()
	if err != nil {
		slog.Error("Failed to get search statistics", "error", err)
		stats = &models.SearchStats{}
	}

	writeJSON(w, http.StatusOK, &models.RecentSearchesResponse{Events: events, Statistics: stats})
}

func (app *App) searcher() views.Searcher {
	s := views.Searcher{Metadata: app.metadata, Interpreter: app.interpreter}
	if app.searchRepo != nil {
		s.Recorder = app.searchRepo
	}
	return s
}

// parseMediaRef reads the {type} and {id} path variables, answering 400 when
// either is invalid.
func parseMediaRef(w http.ResponseWriter, r *http.Request) (int, models.MediaType, bool) {
	vars := mux.Vars(r)

	mediaType, ok := models.ParseMediaType(vars["type"])
	if !ok {
		http.Error(w, "Invalid media type", http.StatusBadRequest)
		return 0, "", false
	}
	id, err := strconv.Atoi(vars["id"])
	if err != nil || id <= 0 {
		http.Error(w, "Invalid media ID", http.StatusBadRequest)
		return 0, "", false
	}
	return id, mediaType, true
}

func statusForError(err error) int {
	var transportErr *services.TransportError
	switch {
	case errors.Is(err, services.ErrInvalidMediaType):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrEmptyResult):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, logMsg string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		slog.Error(logMsg, "error", err, "status", status)
	} else {
		slog.Warn(logMsg, "error", err, "status", status)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// requestLogger logs each request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Handled request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
