// Package ratelimit provides named token-bucket limiters for outbound API clients.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket shared by every request to one upstream API.
type Limiter struct {
	bucket *rate.Limiter
	name   string
}

// New creates a limiter for requestsPerSecond with a burst of the same size.
func New(name string, requestsPerSecond int) *Limiter {
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		name:   name,
	}
}

// Wait blocks until a request to the upstream may proceed or ctx is done.
// A nil Limiter never blocks, so clients can hold one unconditionally.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}
	if l.bucket.Tokens() < 1 {
		slog.Debug("Waiting for rate limit", "api", l.name)
	}
	if err := l.bucket.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit: %w", l.name, err)
	}
	return nil
}

// Name identifies the upstream API in logs.
func (l *Limiter) Name() string {
	return l.name
}
