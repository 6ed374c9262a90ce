package ratelimit

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/time/rate"

	"hyperiq/internal/fetcher"
)

// Limit configures the request budget of one provider.
// A non-positive Rate means unlimited.
type Limit struct {
	Rate  float64 // requests per second
	Burst int
}

// Limiter manages rate limits for different providers, keyed by provider name
type Limiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
}

// New creates an empty limiter; providers without a limit are not throttled.
func New() *Limiter {
	return &Limiter{limiters: make(map[string]*rate.Limiter)}
}

// Set installs or replaces the limit for a provider.
func (l *Limiter) Set(provider string, limit Limit) {
	r := rate.Limit(limit.Rate)
	if limit.Rate <= 0 {
		r = rate.Inf
	}
	burst := limit.Burst
	if burst <= 0 {
		burst = 1
	}

	l.mu.Lock()
	l.limiters[provider] = rate.NewLimiter(r, burst)
	l.mu.Unlock()
}

// Wait blocks until the rate limiter permits an event for the given provider.
// It returns an error if the context is canceled before the event can proceed.
func (l *Limiter) Wait(ctx context.Context, provider string) error {
	l.mu.RLock()
	limiter, exists := l.limiters[provider]
	l.mu.RUnlock()

	if !exists {
		return nil
	}

	return limiter.Wait(ctx)
}

// Allow reports whether an event for the given provider may happen now
func (l *Limiter) Allow(provider string) bool {
	l.mu.RLock()
	limiter, exists := l.limiters[provider]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}

// Fetcher gates every call of the wrapped fetcher on the limiter.
type Fetcher struct {
	next    fetcher.Fetcher
	limiter *Limiter
}

// Wrap returns f throttled by l under f's provider name.
func Wrap(f fetcher.Fetcher, l *Limiter) *Fetcher {
	return &Fetcher{next: f, limiter: l}
}

// Name implements fetcher.Fetcher
func (f *Fetcher) Name() string { return f.next.Name() }

// Fetch takes a token, waiting for one when none is available, then delegates.
func (f *Fetcher) Fetch(ctx context.Context, symbol string, period fetcher.Period) ([]fetcher.PricePoint, error) {
	provider := f.next.Name()
	if !f.limiter.Allow(provider) {
		slog.Debug("rate limited, waiting for token",
			"provider", provider,
			"symbol", symbol)

		if err := f.limiter.Wait(ctx, provider); err != nil {
			return nil, fetcher.NewTimeoutError(err)
		}
	}
	return f.next.Fetch(ctx, symbol, period)
}
