package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"cinefinder/ratelimit"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.5-flash"
	geminiServiceName    = "Gemini"
)

// GeminiService turns free-text requests into search keywords
type GeminiService struct {
	apiKey  string
	baseURL string
	model   string
	client  HTTPDoer
	limiter *ratelimit.Limiter
}

// GeminiOption configures a GeminiService.
type GeminiOption func(*GeminiService)

// WithGeminiBaseURL points the service at a different API root.
func WithGeminiBaseURL(base string) GeminiOption {
	return func(g *GeminiService) {
		if base != "" {
			g.baseURL = strings.TrimSuffix(base, "/")
		}
	}
}

// WithModel selects the generative model.
func WithModel(model string) GeminiOption {
	return func(g *GeminiService) {
		if model != "" {
			g.model = model
		}
	}
}

// WithGeminiHTTPClient sets a custom HTTP client.
func WithGeminiHTTPClient(c HTTPDoer) GeminiOption {
	return func(g *GeminiService) {
		if c != nil {
			g.client = c
		}
	}
}

// WithGeminiRateLimiter sets the limiter for outbound calls.
func WithGeminiRateLimiter(l *ratelimit.Limiter) GeminiOption {
	return func(g *GeminiService) {
		g.limiter = l
	}
}

// NewGeminiService creates a new query interpreter
func NewGeminiService(apiKey string, opts ...GeminiOption) *GeminiService {
	g := &GeminiService{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultGeminiBaseURL,
		model:   defaultGeminiModel,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsConfigured reports whether a credential is present.
func (g *GeminiService) IsConfigured() bool {
	return g.apiKey != ""
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string        `json:"responseMimeType,omitempty"`
	ResponseSchema   *geminiSchema `json:"responseSchema,omitempty"`
}

type geminiSchema struct {
	Type       string                   `json:"type"`
	Properties map[string]*geminiSchema `json:"properties,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type keywordPayload struct {
	SearchQuery string `json:"search_query"`
}

func interpretPrompt(query string) string {
	return fmt.Sprintf("Analiza la siguiente petición de un usuario sobre películas o series: %q. "+
		"Extrae las palabras clave más efectivas para buscar en una base de datos de películas.", query)
}

// InterpretQuery asks the model for a single search_query string and returns it.
// A missing or blank field yields ErrEmptyResult.
func (g *GeminiService) InterpretQuery(ctx context.Context, freeText string) (string, error) {
	if !g.IsConfigured() {
		return "", fmt.Errorf("gemini: %w", ErrNotConfigured)
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: interpretPrompt(freeText)}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema: &geminiSchema{
				Type: "OBJECT",
				Properties: map[string]*geminiSchema{
					"search_query": {Type: "STRING"},
				},
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal gemini request: %w", err)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", networkError(geminiServiceName, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Debug("Failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("Gemini request failed", "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return "", statusError(geminiServiceName, resp)
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("decode gemini response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResult
	}

	text := strings.TrimSpace(geminiResp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyResult
	}

	var payload keywordPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return "", fmt.Errorf("parse gemini keywords: %w", err)
	}

	keyword := strings.TrimSpace(payload.SearchQuery)
	if keyword == "" {
		return "", ErrEmptyResult
	}

	slog.Debug("Interpreted query", "query", freeText, "keyword", keyword)
	return keyword, nil
}
