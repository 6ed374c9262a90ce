package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/panics"

	"hyperiq/internal/aggregate"
	"hyperiq/internal/catalog"
	"hyperiq/internal/fetcher"
)

// Periods selects the growth window of each growth view.
type Periods struct {
	Commodities fetcher.Period
	ShortStocks fetcher.Period
	LongStocks  fetcher.Period
}

// DefaultPeriods are one month for commodities and short-term stocks, one year for long-term stocks.
var DefaultPeriods = Periods{
	Commodities: fetcher.PeriodMonth,
	ShortStocks: fetcher.PeriodMonth,
	LongStocks:  fetcher.PeriodYear,
}

// Snapshot is the complete outcome of one refresh. It is handed over whole and
// never mutated afterwards.
type Snapshot struct {
	Prices      aggregate.Result[aggregate.PriceRow]
	Commodities aggregate.Result[aggregate.GrowthRow]
	ShortStocks aggregate.Result[aggregate.GrowthRow]
	LongStocks  aggregate.Result[aggregate.GrowthRow]
	UpdatedAt   time.Time
}

// Errors concatenates the errors of the four aggregations in call order.
func (s Snapshot) Errors() []aggregate.FetchError {
	var out []aggregate.FetchError
	out = append(out, s.Prices.Errors...)
	out = append(out, s.Commodities.Errors...)
	out = append(out, s.ShortStocks.Errors...)
	out = append(out, s.LongStocks.Errors...)
	return out
}

// Coordinator runs the four aggregations that make up a refresh
type Coordinator struct {
	agg     *aggregate.Aggregator
	catalog catalog.Catalog
	periods Periods
	log     *slog.Logger
	now     func() time.Time
}

// New creates a new Coordinator over the given catalog
func New(f fetcher.Fetcher, cat catalog.Catalog, periods Periods, log *slog.Logger) (*Coordinator, error) {
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		agg:     aggregate.New(f, log),
		catalog: cat,
		periods: periods,
		log:     log,
		now:     time.Now,
	}, nil
}

// Refresh runs, one after the other: current prices, commodities growth,
// short-term stocks growth and long-term stocks growth. It always returns a
// snapshot; failures end up in the snapshot's errors. A panic while refreshing
// is recovered and reported as an error of the snapshot.
func (c *Coordinator) Refresh(ctx context.Context) Snapshot {
	start := c.now()
	var snap Snapshot

	var pc panics.Catcher
	pc.Try(func() {
		snap.Prices = c.agg.CurrentPrices(ctx, c.catalog)
		snap.Commodities = c.agg.Growth(ctx, c.catalog.Commodities, c.periods.Commodities)
		snap.ShortStocks = c.agg.Growth(ctx, c.catalog.Stocks, c.periods.ShortStocks)
		snap.LongStocks = c.agg.Growth(ctx, c.catalog.Stocks, c.periods.LongStocks)
	})
	if r := pc.Recovered(); r != nil {
		c.log.Error("refresh panicked", "panic", r.Value, "stack", string(r.Stack))
		snap = Snapshot{
			Prices: aggregate.Result[aggregate.PriceRow]{
				Errors: []aggregate.FetchError{{Message: fmt.Sprintf("Refresh aborted: %v", r.Value)}},
			},
		}
	}

	snap.UpdatedAt = c.now()
	c.log.Info("refresh completed",
		"duration", snap.UpdatedAt.Sub(start),
		"prices", len(snap.Prices.Rows),
		"errors", len(snap.Errors()))
	return snap
}
