package aggregate

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"hyperiq/internal/catalog"
	"hyperiq/internal/fetcher"
)

// volumeSpikeFactor is how far above the window's mean volume the last session
// must trade to be labelled a volume spike.
const volumeSpikeFactor = 1.2

// Aggregator turns batches of per-symbol fetches into rows and errors.
// A failing symbol never aborts the batch: it becomes one FetchError and the
// aggregator moves on.
type Aggregator struct {
	fetcher fetcher.Fetcher
	log     *slog.Logger
}

// New creates an Aggregator on top of f. A nil logger uses slog.Default().
func New(f fetcher.Fetcher, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{fetcher: f, log: log}
}

// Growth computes, for each instrument of the partition in order, the growth over
// period and a reason label.
func (a *Aggregator) Growth(ctx context.Context, partition []catalog.Instrument, period fetcher.Period) Result[GrowthRow] {
	var res Result[GrowthRow]

	for _, inst := range partition {
		points, err := a.fetcher.Fetch(ctx, inst.Key, period)
		if err == nil && len(points) < 2 {
			err = fetcher.NewNoDataError(inst.Key)
		}
		if err == nil && points[0].Close == 0 {
			err = fetcher.NewValidationError("first close is zero")
		}
		if err != nil {
			a.log.Debug("growth fetch failed",
				"instrument", inst.Label(),
				"symbol", inst.Key,
				"period", period,
				"error", err)

			msg := fmt.Sprintf("Error fetching %s (%s): %v", inst.Name, inst.Key, err)
			if fetcher.IsNoData(err) {
				msg = fmt.Sprintf("No data for %s (%s)", inst.Name, inst.Key)
			}
			res.Errors = append(res.Errors, FetchError{Instrument: inst, Message: msg})
			continue
		}

		res.Rows = append(res.Rows, GrowthRow{
			Name:      inst.Name,
			GrowthPct: growth(points),
			Reason:    classify(points),
		})
	}

	return res
}

// CurrentPrices fetches the two-day lookback of every instrument in the catalog
// and reports the last close and its change against the previous session. Rows
// are ordered by category rank then label, independently of fetch order.
func (a *Aggregator) CurrentPrices(ctx context.Context, cat catalog.Catalog) Result[PriceRow] {
	var res Result[PriceRow]

	for _, inst := range cat.All() {
		points, err := a.fetcher.Fetch(ctx, inst.Key, fetcher.PeriodTwoDays)
		if err == nil && len(points) < 1 {
			err = fetcher.NewNoDataError(inst.Key)
		}
		if err != nil {
			a.log.Debug("price fetch failed",
				"instrument", inst.Label(),
				"symbol", inst.Key,
				"error", err)

			msg := fmt.Sprintf("Error fetching price for %s (%s): %v", inst.Label(), inst.Key, err)
			if fetcher.IsNoData(err) {
				msg = fmt.Sprintf("No price data for %s (%s)", inst.Label(), inst.Key)
			}
			res.Errors = append(res.Errors, FetchError{Instrument: inst, Message: msg})
			continue
		}

		price := points[len(points)-1].Close
		res.Rows = append(res.Rows, PriceRow{
			Instrument:     inst,
			Price:          price,
			PriceFormatted: FormatPrice(price),
			Change24hPct:   change24h(points),
		})
	}

	slices.SortStableFunc(res.Rows, func(x, y PriceRow) int {
		return cmp.Or(
			cmp.Compare(x.Instrument.Category.Rank(), y.Instrument.Category.Rank()),
			cmp.Compare(x.Label(), y.Label()),
		)
	})

	return res
}

// growth is the percentage move from the first to the last close, rounded to two decimals.
func growth(points []fetcher.PricePoint) float64 {
	first, last := points[0].Close, points[len(points)-1].Close
	return roundPct((last - first) / first * 100)
}

// classify labels a series VolumeSpike when its last volume exceeds the mean
// volume by volumeSpikeFactor.
func classify(points []fetcher.PricePoint) Reason {
	var total float64
	for _, p := range points {
		total += p.Volume
	}
	mean := total / float64(len(points))

	if points[len(points)-1].Volume > mean*volumeSpikeFactor {
		return VolumeSpike
	}
	return MarketTrend
}

// change24h is the percentage move between the last two observations; a single
// observation counts as no change.
func change24h(points []fetcher.PricePoint) float64 {
	if len(points) < 2 {
		return 0
	}
	prev, last := points[len(points)-2].Close, points[len(points)-1].Close
	if prev == 0 {
		return 0
	}
	return (last - prev) / prev * 100
}
