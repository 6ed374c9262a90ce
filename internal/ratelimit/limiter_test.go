package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperiq/internal/fetcher"
	"hyperiq/internal/testutil"
)

func TestLimiter_UnknownProviderIsUnlimited(t *testing.T) {
	l := New()

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("yahoo"))
	}
	assert.NoError(t, l.Wait(context.Background(), "yahoo"))
}

func TestLimiter_NonPositiveRateIsUnlimited(t *testing.T) {
	l := New()
	l.Set("yahoo", Limit{Rate: 0})

	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("yahoo"))
	}
}

func TestLimiter_BurstIsEnforced(t *testing.T) {
	l := New()
	l.Set("yahoo", Limit{Rate: 0.001, Burst: 2})

	assert.True(t, l.Allow("yahoo"))
	assert.True(t, l.Allow("yahoo"))
	assert.False(t, l.Allow("yahoo"))
}

func TestFetcher_WaitAbortedByContext(t *testing.T) {
	calls := 0
	inner := &testutil.MockFetcher{
		FetchFunc: func(ctx context.Context, symbol string, period fetcher.Period) ([]fetcher.PricePoint, error) {
			calls++
			return testutil.Closes(1, 2), nil
		},
		NameFunc: func() string { return "yahoo" },
	}

	l := New()
	l.Set("yahoo", Limit{Rate: 0.001, Burst: 1})
	f := Wrap(inner, l)
	assert.Equal(t, "yahoo", f.Name())

	_, err := f.Fetch(context.Background(), "AAPL", fetcher.PeriodMonth)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = f.Fetch(ctx, "MSFT", fetcher.PeriodMonth)
	var fe *fetcher.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fetcher.ErrorTypeTimeout, fe.Type)
	assert.Equal(t, 1, calls)
}

func TestFetcher_Delegates(t *testing.T) {
	inner := &testutil.SeriesFetcher{Series: map[string][]fetcher.PricePoint{"AAPL": testutil.Closes(1, 2, 3)}}
	f := Wrap(inner, New())

	points, err := f.Fetch(context.Background(), "AAPL", fetcher.PeriodYear)
	require.NoError(t, err)
	assert.Len(t, points, 3)
	assert.Equal(t, []testutil.Call{{Symbol: "AAPL", Period: fetcher.PeriodYear}}, inner.Calls())
}

func TestFetcher_WaitsWhenTokensRunOut(t *testing.T) {
	inner := &testutil.SeriesFetcher{Series: map[string][]fetcher.PricePoint{
		"AAPL": testutil.Closes(1, 2),
		"MSFT": testutil.Closes(3, 4),
	}}

	l := New()
	l.Set(inner.Name(), Limit{Rate: 20, Burst: 1})
	f := Wrap(inner, l)

	start := time.Now()
	_, err := f.Fetch(context.Background(), "AAPL", fetcher.PeriodMonth)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), "MSFT", fetcher.PeriodMonth)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	assert.Len(t, inner.Calls(), 2)
	assert.False(t, l.Allow(inner.Name()))
}
