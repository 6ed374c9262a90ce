package financego

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"hyperiq/internal/fetcher"
)

// barIterator is the subset of *chart.Iter the fetcher drains.
type barIterator interface {
	Next() bool
	Bar() *finance.ChartBar
	Err() error
}

// ChartFetcher fetches daily history through github.com/piquette/finance-go.
// The library takes absolute start/end dates, so periods are turned into windows
// relative to the fetcher's clock.
type ChartFetcher struct {
	now   func() time.Time
	chart func(*chart.Params) barIterator
}

// NewChartFetcher creates a finance-go backed fetcher
func NewChartFetcher() *ChartFetcher {
	return &ChartFetcher{
		now: time.Now,
		chart: func(p *chart.Params) barIterator {
			return chart.Get(p)
		},
	}
}

// Name implements fetcher.Fetcher
func (f *ChartFetcher) Name() string { return "financego" }

// Fetch drains the chart iterator for symbol over period
func (f *ChartFetcher) Fetch(ctx context.Context, symbol string, period fetcher.Period) ([]fetcher.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, fetcher.NewTimeoutError(err)
	}

	end := f.now().UTC()
	start, keep, err := window(end, period)
	if err != nil {
		return nil, fetcher.NewValidationError(err.Error())
	}

	iter := f.chart(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	var points []fetcher.PricePoint
	for iter.Next() {
		b := iter.Bar()
		points = append(points, fetcher.PricePoint{
			Time:   time.Unix(int64(b.Timestamp), 0).UTC(),
			Close:  b.Close.InexactFloat64(),
			Volume: float64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fetcher.NewNetworkError(err)
	}

	if len(points) == 0 {
		return nil, fetcher.NewNoDataError(symbol)
	}
	if keep > 0 && len(points) > keep {
		points = points[len(points)-keep:]
	}
	return points, nil
}

// window returns the start of the lookup window ending at end, and how many
// trailing bars to keep (0 keeps all). The two-day lookback spans ten calendar
// days so that weekends and holidays still yield the last two sessions.
func window(end time.Time, period fetcher.Period) (time.Time, int, error) {
	switch period {
	case fetcher.PeriodMonth:
		return end.AddDate(0, -1, 0), 0, nil
	case fetcher.PeriodYear:
		return end.AddDate(-1, 0, 0), 0, nil
	case fetcher.PeriodTwoDays:
		return end.AddDate(0, 0, -10), 2, nil
	default:
		return time.Time{}, 0, fmt.Errorf("unsupported period %q", period)
	}
}
