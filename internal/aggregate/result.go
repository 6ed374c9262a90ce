package aggregate

import (
	"hyperiq/internal/catalog"
)

// Reason labels what most plausibly drove an instrument's move.
// It is a heuristic for display, not a predictive signal.
type Reason int

const (
	// MarketTrend is the default label
	MarketTrend Reason = iota
	// VolumeSpike marks a last session traded well above the window's average
	VolumeSpike
)

// String returns the label shown to users.
func (r Reason) String() string {
	if r == VolumeSpike {
		return "Trading volume increase"
	}
	return "Market trend"
}

// GrowthRow summarizes one instrument over a growth window.
type GrowthRow struct {
	Name      string
	GrowthPct float64 // rounded to 2 decimals
	Reason    Reason
}

// Growth renders GrowthPct the way it is displayed, e.g. "10.0%" or "-3.25%".
func (r GrowthRow) Growth() string {
	return FormatGrowth(r.GrowthPct)
}

// PriceRow is the latest quote of one instrument.
type PriceRow struct {
	Instrument     catalog.Instrument
	Price          float64
	PriceFormatted string
	Change24hPct   float64
}

// Label is the category-qualified asset name, e.g. "Crypto: Bitcoin".
func (r PriceRow) Label() string {
	return r.Instrument.Label()
}

// Change renders Change24hPct, e.g. "5.00%".
func (r PriceRow) Change() string {
	return FormatChange(r.Change24hPct)
}

// FetchError reports an instrument that produced no row.
type FetchError struct {
	Instrument catalog.Instrument
	Message    string
}

// Error implements the error interface
func (e FetchError) Error() string {
	return e.Message
}

// Result is the outcome of one aggregation: rows for the instruments that
// succeeded and one error for each that did not.
type Result[R any] struct {
	Rows   []R
	Errors []FetchError
}

// Messages returns the error messages in order.
func (r Result[R]) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Message
	}
	return out
}
