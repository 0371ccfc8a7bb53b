// Package views holds the per-session view state and the transitions that
// drive it: home browsing, keyword search, title details and back navigation.
package views

//go:generate mockgen -destination=mocks_test.go -package=views . MetadataSource,QueryInterpreter,SearchRecorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"cinefinder/models"

	"github.com/sourcegraph/conc/pool"
)

// User-facing messages.
const (
	HomeLoadErrorMessage = "No se pudo cargar el contenido inicial."
	NoResultsMessage     = "No se encontraron resultados."
)

// ErrSuperseded is returned by a transition whose result was discarded
// because a newer transition of the same kind started meanwhile.
var ErrSuperseded = errors.New("superseded by a newer request")

// View is the top-level screen.
type View string

// Screens.
const (
	ViewHome    View = "home"
	ViewDetails View = "details"
)

// MetadataSource is the metadata client as seen by the orchestrator.
type MetadataSource interface {
	HomeSections(ctx context.Context) ([]models.HomeSection, error)
	SearchMulti(ctx context.Context, term string) ([]models.MediaSummary, error)
	Detail(ctx context.Context, id int, mediaType models.MediaType) (*models.MediaDetail, error)
	Season(ctx context.Context, showID, seasonNumber int) (*models.SeasonDetail, error)
}

// QueryInterpreter turns free text into search keywords.
type QueryInterpreter interface {
	InterpretQuery(ctx context.Context, freeText string) (string, error)
}

// SearchRecorder keeps a log of searches.
type SearchRecorder interface {
	Create(event *models.SearchEvent) error
}

// Runner runs background work tied to parent's lifetime.
type Runner interface {
	Go(parent context.Context, name string, fn func(ctx context.Context)) bool
}

// State is everything a screen renders from. Slices and the detail pointer
// are replaced wholesale, never mutated in place, so copies may share them.
type State struct {
	View           View                  `json:"view"`
	Query          string                `json:"query"`
	Searching      bool                  `json:"searching"`
	Keyword        string                `json:"keyword,omitempty"`
	Sections       []models.HomeSection  `json:"sections"`
	Results        []models.MediaSummary `json:"results"`
	Detail         *models.MediaDetail   `json:"detail,omitempty"`
	Seasons        []models.SeasonDetail `json:"seasons"`
	SeasonsLoading bool                  `json:"seasons_loading"`
	Loading        bool                  `json:"loading"`
	Error          string                `json:"error,omitempty"`
	Notice         string                `json:"notice,omitempty"`
	ScrollTop      bool                  `json:"scroll_top"`
}

// Orchestrator owns one session's State and sequences calls to the
// metadata client and the query interpreter.
type Orchestrator struct {
	metadata    MetadataSource
	interpreter QueryInterpreter
	recorder    SearchRecorder
	runner      Runner
	log         *slog.Logger

	mu    sync.Mutex
	state State

	// generation counters; a result is applied only if its counter is unchanged
	detailGen uint64
	searchGen uint64
	homeGen   uint64

	// searchRunning is set while the latest search owns the Loading flag
	searchRunning bool

	cancelDetail  context.CancelFunc
	cancelSeasons context.CancelFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRecorder logs every non-blank search.
func WithRecorder(r SearchRecorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithRunner runs season fan-outs through r instead of bare goroutines.
func WithRunner(r Runner) Option {
	return func(o *Orchestrator) { o.runner = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// NewOrchestrator creates an orchestrator on the home screen.
func NewOrchestrator(metadata MetadataSource, interpreter QueryInterpreter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		metadata:    metadata,
		interpreter: interpreter,
		log:         slog.Default(),
		state:       State{View: ViewHome},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ClearScrollTop acknowledges a pending scroll-to-top once it was rendered.
func (o *Orchestrator) ClearScrollTop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.ScrollTop = false
}

// HomePending reports whether the home sections still need loading.
func (o *Orchestrator) HomePending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.View == ViewHome && !o.state.Searching && !o.state.Loading && len(o.state.Sections) == 0
}

// EnterHome switches to the home screen and loads the curated sections.
func (o *Orchestrator) EnterHome(ctx context.Context) error {
	o.mu.Lock()
	o.homeGen++
	token := o.homeGen
	o.state.View = ViewHome
	o.state.Loading = true
	o.mu.Unlock()

	sections, err := o.metadata.HomeSections(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()
	if token != o.homeGen {
		return ErrSuperseded
	}
	o.state.Loading = false
	if err != nil {
		o.log.Error("Failed to load home sections", "error", err)
		o.state.Error = HomeLoadErrorMessage
		return err
	}
	o.state.Sections = sections
	return nil
}

// Search interprets query, searches with the resulting keywords and shows
// the results grid on the home screen. A blank query returns to browsing
// without any request.
func (o *Orchestrator) Search(ctx context.Context, query string) error {
	trimmed := strings.TrimSpace(query)

	o.mu.Lock()
	o.searchGen++
	token := o.searchGen
	o.state.Query = query
	o.state.Keyword = ""
	o.state.Results = nil
	o.state.Notice = ""
	if trimmed == "" {
		o.state.Searching = false
		if o.searchRunning {
			o.searchRunning = false
			o.state.Loading = false
		}
		o.mu.Unlock()
		return nil
	}

	o.detailGen++
	o.cancelInFlightLocked()
	if o.state.View != ViewHome {
		o.state.View = ViewHome
		o.state.ScrollTop = true
	}
	o.state.Detail = nil
	o.state.Seasons = nil
	o.state.SeasonsLoading = false
	o.searchRunning = true
	o.state.Loading = true
	o.state.Error = ""
	o.state.Searching = true
	o.mu.Unlock()

	outcome, err := o.searcher().Run(ctx, trimmed)

	o.mu.Lock()
	defer o.mu.Unlock()
	if token != o.searchGen {
		return ErrSuperseded
	}
	o.searchRunning = false
	o.state.Loading = false
	if err != nil {
		o.log.Warn("Search failed", "query", trimmed, "keyword", outcome.Keyword, "error", err)
		o.state.Error = errorMessage(err)
		return err
	}

	o.state.Keyword = outcome.Keyword
	o.state.Results = outcome.Results
	o.state.Notice = outcome.Notice()
	return nil
}

// Select loads the detail of one title and switches to the details screen.
// A newer Select (or Back) cancels this one and its result is discarded.
// On failure the current screen stays and an error is shown.
func (o *Orchestrator) Select(ctx context.Context, id int, mediaType models.MediaType) error {
	fetchCtx, cancel := context.WithCancel(ctx)

	o.mu.Lock()
	o.detailGen++
	token := o.detailGen
	o.cancelInFlightLocked()
	o.cancelDetail = cancel
	o.state.Loading = true
	o.state.Error = ""
	o.state.Detail = nil
	o.state.Seasons = nil
	o.state.SeasonsLoading = false
	o.mu.Unlock()

	detail, err := o.metadata.Detail(fetchCtx, id, mediaType)

	o.mu.Lock()
	defer o.mu.Unlock()
	cancel()
	if token != o.detailGen {
		o.log.Debug("Discarding stale detail", "media_id", id, "media_type", mediaType)
		return ErrSuperseded
	}
	o.cancelDetail = nil
	o.state.Loading = false
	if err != nil {
		o.log.Warn("Failed to load detail", "media_id", id, "media_type", mediaType, "error", err)
		o.state.Error = errorMessage(err)
		return err
	}

	o.state.Detail = detail
	o.state.View = ViewDetails
	o.state.ScrollTop = true

	if numbers := detail.FetchableSeasons(); len(numbers) > 0 {
		o.startSeasonsLocked(ctx, token, detail.ID, numbers)
	}
	return nil
}

// Back discards the detail and search state and reloads the home screen.
func (o *Orchestrator) Back(ctx context.Context) error {
	o.mu.Lock()
	o.detailGen++
	o.searchGen++
	o.searchRunning = false
	o.cancelInFlightLocked()
	o.state = State{
		View:     ViewHome,
		Sections: o.state.Sections,
	}
	o.mu.Unlock()

	return o.EnterHome(ctx)
}

// Close cancels any in-flight work.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.detailGen++
	o.cancelInFlightLocked()
}

func (o *Orchestrator) cancelInFlightLocked() {
	if o.cancelDetail != nil {
		o.cancelDetail()
		o.cancelDetail = nil
	}
	if o.cancelSeasons != nil {
		o.cancelSeasons()
		o.cancelSeasons = nil
	}
}

// startSeasonsLocked fans out one fetch per season. The work outlives the
// request that triggered it but not the detail view it belongs to.
func (o *Orchestrator) startSeasonsLocked(ctx context.Context, token uint64, showID int, numbers []int) {
	seasonCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.cancelSeasons = cancel
	o.state.SeasonsLoading = true

	run := func(ctx context.Context) {
		o.loadSeasons(ctx, token, showID, numbers)
	}

	if o.runner == nil {
		go run(seasonCtx)
		return
	}
	if !o.runner.Go(seasonCtx, fmt.Sprintf("seasons:%d", showID), run) {
		cancel()
		o.cancelSeasons = nil
		o.state.SeasonsLoading = false
		o.log.Warn("Season fetch not started", "media_id", showID)
	}
}

func (o *Orchestrator) loadSeasons(ctx context.Context, token uint64, showID int, numbers []int) {
	seasons := make([]models.SeasonDetail, len(numbers))

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, n := range numbers {
		p.Go(func(ctx context.Context) error {
			season, err := o.metadata.Season(ctx, showID, n)
			if err != nil {
				return fmt.Errorf("season %d: %w", n, err)
			}
			if season != nil {
				seasons[i] = *season
			}
			return nil
		})
	}
	err := p.Wait()

	o.mu.Lock()
	defer o.mu.Unlock()
	if token != o.detailGen {
		o.log.Debug("Discarding stale seasons", "media_id", showID)
		return
	}
	o.cancelSeasons = nil
	o.state.SeasonsLoading = false
	if err != nil {
		o.log.Warn("Failed to fetch season details", "media_id", showID, "error", err)
		return
	}
	o.state.Seasons = seasons
}

func (o *Orchestrator) searcher() Searcher {
	return Searcher{
		Metadata:    o.metadata,
		Interpreter: o.interpreter,
		Recorder:    o.recorder,
		Log:         o.log,
	}
}

func errorMessage(err error) string {
	return "Error: " + err.Error()
}
