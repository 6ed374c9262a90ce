package testutil

import (
	"context"
	"sync"
	"time"

	"hyperiq/internal/fetcher"
)

// MockFetcher is a mock implementation of the Fetcher interface for testing
type MockFetcher struct {
	FetchFunc func(ctx context.Context, symbol string, period fetcher.Period) ([]fetcher.PricePoint, error)
	NameFunc  func() string
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, symbol string, period fetcher.Period) ([]fetcher.PricePoint, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, symbol, period)
	}
	return nil, fetcher.NewNoDataError(symbol)
}

// Name implements the Fetcher interface
func (m *MockFetcher) Name() string {
	if m.NameFunc != nil {
		return m.NameFunc()
	}
	return "mock"
}

// SeriesFetcher serves canned histories keyed by symbol, whatever the period.
// Symbols listed in Errors fail with that error; unknown symbols have no data.
// It records the calls it receives.
type SeriesFetcher struct {
	Series map[string][]fetcher.PricePoint
	Errors map[string]error

	mu    sync.Mutex
	calls []Call
}

// Call is one recorded Fetch invocation.
type Call struct {
	Symbol string
	Period fetcher.Period
}

// Fetch implements the Fetcher interface
func (s *SeriesFetcher) Fetch(ctx context.Context, symbol string, period fetcher.Period) ([]fetcher.PricePoint, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Symbol: symbol, Period: period})
	s.mu.Unlock()

	if err, ok := s.Errors[symbol]; ok {
		return nil, err
	}
	points, ok := s.Series[symbol]
	if !ok || len(points) == 0 {
		return nil, fetcher.NewNoDataError(symbol)
	}
	out := make([]fetcher.PricePoint, len(points))
	copy(out, points)
	return out, nil
}

// Name implements the Fetcher interface
func (s *SeriesFetcher) Name() string { return "series" }

// Calls returns the calls received so far.
func (s *SeriesFetcher) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

var seriesStart = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// Closes builds a daily series with the given closes and a flat volume of 100.
func Closes(closes ...float64) []fetcher.PricePoint {
	points := make([]fetcher.PricePoint, len(closes))
	for i, c := range closes {
		points[i] = fetcher.PricePoint{Time: seriesStart.AddDate(0, 0, i), Close: c, Volume: 100}
	}
	return points
}

// WithVolumes sets the volumes of a series built by Closes, in order.
func WithVolumes(points []fetcher.PricePoint, volumes ...float64) []fetcher.PricePoint {
	for i := range points {
		if i < len(volumes) {
			points[i].Volume = volumes[i]
		}
	}
	return points
}
