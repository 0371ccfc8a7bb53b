// Package main provides the entry point for the film and series discovery server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinefinder/config"
	"cinefinder/database"
	"cinefinder/jobs"
	"cinefinder/ratelimit"
	"cinefinder/repository"
	"cinefinder/services"
	"cinefinder/views"

	"github.com/gorilla/mux"
	"github.com/lepinkainen/humanlog"
)

// App represents the application with its dependencies
type App struct {
	metadata    views.MetadataSource
	interpreter views.QueryInterpreter
	cacheRepo   *repository.CacheRepository
	searchRepo  *repository.SearchEventRepository
	sessions    *views.Registry
	jobManager  *jobs.Manager
	renderer    *renderer
	region      string
}

func main() {
	initLogging(slog.LevelInfo)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	initLogging(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func initLogging(level slog.Level) {
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func run(cfg *config.Config) error {
	// Initialize database
	db, err := database.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	if err := db.InitSchema(); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	app, err := newApp(cfg, db)
	if err != nil {
		return err
	}
	app.jobManager.Start()
	defer app.sessions.CloseAll()
	defer app.jobManager.Stop()

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newApp wires repositories, API clients, the session registry and the
// background job manager. The manager is not started.
func newApp(cfg *config.Config, db *database.DB) (*App, error) {
	cacheRepo := repository.NewCacheRepository(db, cfg.CacheTTL)
	searchRepo := repository.NewSearchEventRepository(db)

	tmdbOpts := []services.TMDBOption{
		services.WithTMDBBaseURL(cfg.TMDB.BaseURL),
		services.WithLanguage(cfg.TMDB.Language),
		services.WithRegion(cfg.TMDB.Region),
		services.WithRateLimiter(newLimiter("tmdb", cfg.TMDB.RateLimit)),
	}
	if cacheRepo.Enabled() {
		tmdbOpts = append(tmdbOpts, services.WithResponseCache(cacheRepo))
		slog.Info("TMDB response cache enabled", "ttl", cfg.CacheTTL)
	}
	tmdbService := services.NewTMDBService(cfg.TMDB.APIKey, tmdbOpts...)

	geminiService := services.NewGeminiService(cfg.Gemini.APIKey,
		services.WithGeminiBaseURL(cfg.Gemini.BaseURL),
		services.WithModel(cfg.Gemini.Model),
		services.WithGeminiRateLimiter(newLimiter("gemini", cfg.Gemini.RateLimit)),
	)
	if !geminiService.IsConfigured() {
		slog.Warn("GEMINI_API_KEY not set - natural-language search will be disabled")
	}

	rndr, err := newRenderer(services.NewImageURLs(cfg.TMDB.ImageBaseURL))
	if err != nil {
		return nil, err
	}

	app := &App{
		metadata:    tmdbService,
		interpreter: geminiService,
		cacheRepo:   cacheRepo,
		searchRepo:  searchRepo,
		renderer:    rndr,
		region:      tmdbService.Region(),
	}

	app.jobManager = jobs.NewManager(cfg.MaintenanceInterval, app.maintenanceTasks(cfg)...)
	app.sessions = views.NewRegistry(func() *views.Orchestrator {
		return views.NewOrchestrator(tmdbService, geminiService,
			views.WithRecorder(searchRepo),
			views.WithRunner(app.jobManager),
		)
	})

	return app, nil
}

func (app *App) maintenanceTasks(cfg *config.Config) []jobs.Task {
	tasks := []jobs.Task{
		{
			Name: "prune-sessions",
			Run: func(context.Context) error {
				if n := app.sessions.Prune(cfg.SessionTTL); n > 0 {
					slog.Info("Pruned idle sessions", "count", n)
				}
				return nil
			},
		},
	}

	if cfg.SearchLogRetention > 0 {
		tasks = append(tasks, jobs.Task{
			Name: "prune-search-log",
			Run: func(context.Context) error {
				return app.searchRepo.DeleteOldEvents(cfg.SearchLogRetention)
			},
		})
	}

	if app.cacheRepo.Enabled() {
		tasks = append(tasks, jobs.Task{
			Name: "prune-response-cache",
			Run: func(context.Context) error {
				n, err := app.cacheRepo.DeleteExpired()
				if err != nil {
					return err
				}
				if n > 0 {
					slog.Info("Pruned expired cache entries", "count", n)
				}
				return nil
			},
		})
	}
	return tasks
}

func newLimiter(name string, requestsPerSecond int) *ratelimit.Limiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	l := ratelimit.New(name, requestsPerSecond)
	slog.Debug("Rate limiter configured", "api", l.Name(), "rps", requestsPerSecond)
	return l
}

func newRouter(app *App) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger)

	// Health check endpoint
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.PathPrefix("/static/").Handler(staticHandler()).Methods("GET")

	// HTML pages
	r.HandleFunc("/", app.homePage).Methods("GET")
	r.HandleFunc("/search", app.searchPage).Methods("POST")
	r.HandleFunc("/title/{type}/{id}", app.titlePage).Methods("GET")
	r.HandleFunc("/back", app.backPage).Methods("GET")

	// API routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/home", app.homeHandler).Methods("GET")
	api.HandleFunc("/search", app.searchHandler).Methods("GET")
	api.HandleFunc("/interpret", app.interpretHandler).Methods("GET")
	api.HandleFunc("/media/tv/{id}/season/{season}", app.seasonHandler).Methods("GET")
	api.HandleFunc("/media/{type}/{id}", app.mediaHandler).Methods("GET")
	api.HandleFunc("/session", app.sessionHandler).Methods("GET")
	api.HandleFunc("/searches/recent", app.recentSearchesHandler).Methods("GET")

	return r
}
