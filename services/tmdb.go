// Package services provides external service integrations.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"cinefinder/models"
	"cinefinder/ratelimit"

	"github.com/sourcegraph/conc/pool"
)

const (
	defaultTMDBBaseURL = "https://api.themoviedb.org/3"
	defaultLanguage    = "es-ES"
	defaultRegion      = "ES"
	tmdbServiceName    = "TMDB"
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// ResponseCache stores raw response bodies keyed by endpoint.
type ResponseCache interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, body []byte) error
}

// TMDBService handles interactions with The Movie Database API
type TMDBService struct {
	apiKey   string
	baseURL  string
	language string
	region   string
	client   HTTPDoer
	limiter  *ratelimit.Limiter
	cache    ResponseCache
}

// TMDBOption configures a TMDBService.
type TMDBOption func(*TMDBService)

// WithTMDBBaseURL points the service at a different API root.
func WithTMDBBaseURL(base string) TMDBOption {
	return func(s *TMDBService) {
		if base != "" {
			s.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithLanguage sets the language parameter sent on every call.
func WithLanguage(lang string) TMDBOption {
	return func(s *TMDBService) {
		if lang != "" {
			s.language = lang
		}
	}
}

// WithRegion sets the region used to pick streaming providers.
func WithRegion(region string) TMDBOption {
	return func(s *TMDBService) {
		if region != "" {
			s.region = strings.ToUpper(region)
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) TMDBOption {
	return func(s *TMDBService) {
		if c != nil {
			s.client = c
		}
	}
}

// WithRateLimiter sets the limiter shared by outbound calls.
func WithRateLimiter(l *ratelimit.Limiter) TMDBOption {
	return func(s *TMDBService) {
		s.limiter = l
	}
}

// WithResponseCache enables caching of successful responses.
func WithResponseCache(c ResponseCache) TMDBOption {
	return func(s *TMDBService) {
		s.cache = c
	}
}

// NewTMDBService creates a new TMDB service instance
func NewTMDBService(apiKey string, opts ...TMDBOption) *TMDBService {
	s := &TMDBService{
		apiKey:   strings.TrimSpace(apiKey),
		baseURL:  defaultTMDBBaseURL,
		language: defaultLanguage,
		region:   defaultRegion,
		client:   &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Region returns the region streaming providers are picked for.
func (s *TMDBService) Region() string {
	return s.region
}

type homeEndpoint struct {
	title     string
	path      string
	mediaType models.MediaType
}

var homeEndpoints = []homeEndpoint{
	{title: "Películas Populares", path: "/movie/popular", mediaType: models.MediaTypeMovie},
	{title: "Series Populares", path: "/tv/popular", mediaType: models.MediaTypeTV},
	{title: "Películas Mejor Valoradas", path: "/movie/top_rated", mediaType: models.MediaTypeMovie},
}

// HomeSections fetches the curated home lists concurrently.
// The first failure cancels the remaining requests and fails the whole call.
func (s *TMDBService) HomeSections(ctx context.Context) ([]models.HomeSection, error) {
	sections := make([]models.HomeSection, len(homeEndpoints))

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, ep := range homeEndpoints {
		p.Go(func(ctx context.Context) error {
			var payload tmdbListResponse
			if err := s.getJSON(ctx, ep.path, nil, &payload); err != nil {
				return err
			}
			sections[i] = models.HomeSection{
				Title: ep.title,
				Items: summarize(payload.Results, func(tmdbListItem) models.MediaType { return ep.mediaType }),
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	return sections, nil
}

// SearchMulti runs a multi-type search and keeps only movies and shows with a poster.
func (s *TMDBService) SearchMulti(ctx context.Context, term string) ([]models.MediaSummary, error) {
	params := url.Values{}
	params.Set("query", term)

	var payload tmdbListResponse
	if err := s.getJSON(ctx, "/search/multi", params, &payload); err != nil {
		return nil, err
	}

	return summarize(payload.Results, func(item tmdbListItem) models.MediaType {
		mt, _ := models.ParseMediaType(item.MediaType)
		return mt
	}), nil
}

// Detail fetches one title with credits, watch providers and videos embedded.
func (s *TMDBService) Detail(ctx context.Context, id int, mediaType models.MediaType) (*models.MediaDetail, error) {
	if !mediaType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMediaType, mediaType)
	}

	params := url.Values{}
	params.Set("append_to_response", "credits,watch/providers,videos")

	var payload tmdbDetailResponse
	if err := s.getJSON(ctx, fmt.Sprintf("/%s/%d", mediaType, id), params, &payload); err != nil {
		return nil, err
	}

	return payload.toDetail(mediaType, s.region), nil
}

// Season fetches the episode list of one season of a show.
func (s *TMDBService) Season(ctx context.Context, showID, seasonNumber int) (*models.SeasonDetail, error) {
	var payload tmdbSeasonResponse
	if err := s.getJSON(ctx, fmt.Sprintf("/tv/%d/season/%d", showID, seasonNumber), nil, &payload); err != nil {
		return nil, err
	}
	return payload.toSeason(), nil
}

func summarize(items []tmdbListItem, typeOf func(tmdbListItem) models.MediaType) []models.MediaSummary {
	out := make([]models.MediaSummary, 0, len(items))
	for _, item := range items {
		mt := typeOf(item)
		if !mt.Valid() || item.PosterPath == "" {
			continue
		}
		title := item.Title
		if title == "" {
			title = item.Name
		}
		out = append(out, models.MediaSummary{
			ID:         item.ID,
			MediaType:  mt,
			Title:      title,
			PosterPath: item.PosterPath,
		})
	}
	return out
}

func (s *TMDBService) getJSON(ctx context.Context, path string, params url.Values, target any) error {
	if s.apiKey == "" {
		return fmt.Errorf("tmdb: %w", ErrNotConfigured)
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("language", s.language)
	cacheKey := path + "?" + query.Encode()

	if s.cache != nil {
		body, ok, err := s.cache.Get(cacheKey)
		if err != nil {
			slog.Warn("TMDB cache read failed", "key", cacheKey, "error", err)
		} else if ok {
			if err := json.Unmarshal(body, target); err == nil {
				return nil
			}
			slog.Warn("Discarding undecodable TMDB cache entry", "key", cacheKey)
		}
	}

	body, err := s.fetch(ctx, path, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode TMDB response: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(cacheKey, body); err != nil {
			slog.Warn("TMDB cache write failed", "key", cacheKey, "error", err)
		}
	}

	return nil
}

func (s *TMDBService) fetch(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query.Set("api_key", s.apiKey)
	endpoint := s.baseURL + path + "?" + query.Encode()
	query.Del("api_key")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build TMDB request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, networkError(tmdbServiceName, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Debug("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(tmdbServiceName, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(tmdbServiceName, err)
	}
	return body, nil
}
