package fetcher

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -destination=fetchermock/fetcher.go -package=fetchermock . Fetcher

// Period is the coarse time window a price history covers.
type Period string

const (
	// PeriodMonth is roughly the last month of daily closes
	PeriodMonth Period = "1mo"
	// PeriodYear is roughly the last year of daily closes
	PeriodYear Period = "1y"
	// PeriodTwoDays is the last two sessions, used for current price and 24h change
	PeriodTwoDays Period = "2d"
)

// ParsePeriod validates a period selector.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodMonth, PeriodYear, PeriodTwoDays:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported period %q (want 1mo, 1y or 2d)", s)
	}
}

// PricePoint is one observation of an instrument's price history.
type PricePoint struct {
	Time   time.Time
	Close  float64
	Volume float64
}

// Fetcher is the core interface that every price history provider implements.
// A provider retrieves the daily history of one symbol over a period, ordered by
// time ascending. Each call goes to the provider; nothing is cached.
type Fetcher interface {
	// Fetch retrieves the price history of symbol over period.
	// An empty history is reported as a no_data FetchError, every other
	// failure as a transport FetchError carrying the provider's description.
	Fetch(ctx context.Context, symbol string, period Period) ([]PricePoint, error)

	// Name identifies the provider in logs, e.g. "yahoo".
	Name() string
}
