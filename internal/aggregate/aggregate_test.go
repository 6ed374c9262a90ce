package aggregate

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hyperiq/internal/catalog"
	"hyperiq/internal/fetcher"
	"hyperiq/internal/fetcher/fetchermock"
	"hyperiq/internal/testutil"
)

func TestGrowth_Computation(t *testing.T) {
	f := &testutil.SeriesFetcher{Series: map[string][]fetcher.PricePoint{
		"GC=F": testutil.Closes(50, 52, 55),
	}}
	partition := catalog.New(catalog.Commodity, [2]string{"Gold", "GC=F"})

	res := New(f, nil).Growth(context.Background(), partition, fetcher.PeriodMonth)

	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Gold", res.Rows[0].Name)
	assert.Equal(t, 10.0, res.Rows[0].GrowthPct)
	assert.Equal(t, "10.0%", res.Rows[0].Growth())
	assert.Equal(t, MarketTrend, res.Rows[0].Reason)
}

func TestGrowth_PassesPeriod(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := fetchermock.NewMockFetcher(ctrl)

	gomock.InOrder(
		f.EXPECT().Fetch(gomock.Any(), "NVDA", fetcher.PeriodYear).Return(testutil.Closes(100, 150), nil),
		f.EXPECT().Fetch(gomock.Any(), "TSLA", fetcher.PeriodYear).Return(testutil.Closes(200, 150), nil),
	)

	partition := catalog.New(catalog.Stock, [2]string{"Nvidia", "NVDA"}, [2]string{"Tesla", "TSLA"})
	res := New(f, nil).Growth(context.Background(), partition, fetcher.PeriodYear)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "50.0%", res.Rows[0].Growth())
	assert.Equal(t, "-25.0%", res.Rows[1].Growth())
}

func TestGrowth_ReasonClassification(t *testing.T) {
	tests := []struct {
		name    string
		volumes []float64
		want    Reason
	}{
		// mean 107.5, threshold 129
		{"spike", []float64{100, 100, 100, 130}, VolumeSpike},
		{"trend", []float64{100, 100, 100, 110}, MarketTrend},
		{"flat", []float64{100, 100, 100, 100}, MarketTrend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &testutil.SeriesFetcher{Series: map[string][]fetcher.PricePoint{
				"AAPL": testutil.WithVolumes(testutil.Closes(1, 2, 3, 4), tt.volumes...),
			}}
			partition := catalog.New(catalog.Stock, [2]string{"Apple", "AAPL"})

			res := New(f, nil).Growth(context.Background(), partition, fetcher.PeriodMonth)
			require.Len(t, res.Rows, 1)
			assert.Equal(t, tt.want, res.Rows[0].Reason)
		})
	}
}

func TestGrowth_ErrorMessages(t *testing.T) {
	f := &testutil.SeriesFetcher{
		Series: map[string][]fetcher.PricePoint{
			"ONE":  testutil.Closes(42),
			"ZERO": testutil.Closes(0, 5),
		},
		Errors: map[string]error{
			"BAD": fetcher.NewClientError(403, "Forbidden"),
		},
	}
	partition := catalog.New(catalog.Stock,
		[2]string{"Missing", "NONE"},
		[2]string{"Single", "ONE"},
		[2]string{"Broken", "BAD"},
		[2]string{"Zero", "ZERO"},
	)

	res := New(f, nil).Growth(context.Background(), partition, fetcher.PeriodMonth)

	assert.Empty(t, res.Rows)
	assert.Equal(t, []string{
		"No data for Missing (NONE)",
		"No data for Single (ONE)",
		"Error fetching Broken (BAD): client error (status 403): Forbidden",
		"Error fetching Zero (ZERO): validation error: first close is zero",
	}, res.Messages())
	assert.Equal(t, "BAD", res.Errors[2].Instrument.Key)
}

func TestGrowth_PreservesCatalogOrder(t *testing.T) {
	f := &testutil.SeriesFetcher{Series: map[string][]fetcher.PricePoint{
		"C": testutil.Closes(1, 2),
		"A": testutil.Closes(1, 2),
		"B": testutil.Closes(1, 2),
	}}
	partition := catalog.New(catalog.Stock, [2]string{"Charlie", "C"}, [2]string{"Alpha", "A"}, [2]string{"Bravo", "B"})

	res := New(f, nil).Growth(context.Background(), partition, fetcher.PeriodMonth)

	var names []string
	for _, r := range res.Rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Charlie", "Alpha", "Bravo"}, names)
}

func TestGrowth_FaultInjection(t *testing.T) {
	series := make(map[string][]fetcher.PricePoint)
	var pairs [][2]string
	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("SYM%d", i)
		series[key] = testutil.Closes(100, 101)
		pairs = append(pairs, [2]string{fmt.Sprintf("Instrument %d", i), key})
	}
	f := &testutil.SeriesFetcher{
		Series: series,
		Errors: map[string]error{"SYM4": fetcher.NewNetworkError(errors.New("connection reset by peer"))},
	}
	partition := catalog.New(catalog.Stock, pairs...)

	res := New(f, nil).Growth(context.Background(), partition, fetcher.PeriodMonth)

	assert.Len(t, res.Rows, 9)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Error fetching Instrument 4 (SYM4): network error: network request failed: connection reset by peer", res.Errors[0].Message)
	assert.Len(t, f.Calls(), 10)
}

func TestGrowth_EveryInstrumentYieldsRowOrError(t *testing.T) {
	cat := catalog.Default()
	f := &testutil.SeriesFetcher{
		Series: map[string][]fetcher.PricePoint{
			"NVDA": testutil.Closes(1, 2),
			"AAPL": testutil.Closes(3, 2),
			"META": testutil.Closes(5),
		},
		Errors: map[string]error{"TSLA": fetcher.NewServerError(503)},
	}

	res := New(f, nil).Growth(context.Background(), cat.Stocks, fetcher.PeriodMonth)

	assert.Equal(t, len(cat.Stocks), len(res.Rows)+len(res.Errors))
	assert.Len(t, res.Rows, 2)
}

func TestCurrentPrices_Computation(t *testing.T) {
	f := &testutil.SeriesFetcher{Series: map[string][]fetcher.PricePoint{
		"BTC-USD": testutil.Closes(100, 105),
		"AAPL":    testutil.Closes(100),
		"GC=F":    testutil.Closes(2000, 1990),
	}}
	cat := catalog.Catalog{
		Commodities: catalog.New(catalog.Commodity, [2]string{"Gold", "GC=F"}),
		Stocks:      catalog.New(catalog.Stock, [2]string{"Apple", "AAPL"}),
		Crypto:      catalog.New(catalog.Crypto, [2]string{"Bitcoin", "BTC-USD"}),
	}

	res := New(f, nil).CurrentPrices(context.Background(), cat)

	require.Empty(t, res.Errors)
	require.Len(t, res.Rows, 3)

	btc := res.Rows[0]
	assert.Equal(t, "Crypto: Bitcoin", btc.Label())
	assert.Equal(t, 105.0, btc.Price)
	assert.Equal(t, "$105", btc.PriceFormatted)
	assert.InDelta(t, 5.0, btc.Change24hPct, 1e-9)
	assert.Equal(t, "5.00%", btc.Change())

	apple := res.Rows[1]
	assert.Equal(t, "Stock: Apple", apple.Label())
	assert.Equal(t, 0.0, apple.Change24hPct)
	assert.Equal(t, "0.00%", apple.Change())

	gold := res.Rows[2]
	assert.Equal(t, "Commodity: Gold", gold.Label())
	assert.Equal(t, "$1,990", gold.PriceFormatted)
	assert.Equal(t, "-0.50%", gold.Change())

	for _, c := range f.Calls() {
		assert.Equal(t, fetcher.PeriodTwoDays, c.Period)
	}
}

func TestCurrentPrices_SortOrderIndependentOfFetchOrder(t *testing.T) {
	f := &testutil.SeriesFetcher{Series: map[string][]fetcher.PricePoint{
		"XRP-USD": testutil.Closes(0.5),
		"BTC-USD": testutil.Closes(60000),
		"ZW=F":    testutil.Closes(5.5),
		"CL=F":    testutil.Closes(70.25),
		"TSLA":    testutil.Closes(250),
		"AMZN":    testutil.Closes(180),
	}}
	cat := catalog.Catalog{
		Commodities: catalog.New(catalog.Commodity, [2]string{"Wheat", "ZW=F"}, [2]string{"Oil", "CL=F"}),
		Stocks:      catalog.New(catalog.Stock, [2]string{"Tesla", "TSLA"}, [2]string{"Amazon", "AMZN"}),
		Crypto:      catalog.New(catalog.Crypto, [2]string{"XRP", "XRP-USD"}, [2]string{"Bitcoin", "BTC-USD"}),
	}

	res := New(f, nil).CurrentPrices(context.Background(), cat)

	var labels []string
	for _, r := range res.Rows {
		labels = append(labels, r.Label())
	}
	assert.Equal(t, []string{
		"Crypto: Bitcoin",
		"Crypto: XRP",
		"Stock: Amazon",
		"Stock: Tesla",
		"Commodity: Oil",
		"Commodity: Wheat",
	}, labels)
}

func TestCurrentPrices_SameNameInTwoCategories(t *testing.T) {
	f := &testutil.SeriesFetcher{Series: map[string][]fetcher.PricePoint{
		"GC=F":     testutil.Closes(2000),
		"PAXG-USD": testutil.Closes(1995.5),
	}}
	cat := catalog.Catalog{
		Commodities: catalog.New(catalog.Commodity, [2]string{"Gold", "GC=F"}),
		Crypto:      catalog.New(catalog.Crypto, [2]string{"Gold", "PAXG-USD"}),
	}

	res := New(f, nil).CurrentPrices(context.Background(), cat)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Crypto: Gold", res.Rows[0].Label())
	assert.Equal(t, "$1,995.50", res.Rows[0].PriceFormatted)
	assert.Equal(t, "Commodity: Gold", res.Rows[1].Label())
}

func TestCurrentPrices_ErrorMessages(t *testing.T) {
	f := &testutil.SeriesFetcher{
		Series: map[string][]fetcher.PricePoint{"ETH-USD": testutil.Closes(3000, 3030)},
		Errors: map[string]error{"SOL-USD": fetcher.NewRateLimitError(429)},
	}
	cat := catalog.Catalog{
		Crypto: catalog.New(catalog.Crypto,
			[2]string{"Ethereum", "ETH-USD"},
			[2]string{"Solana", "SOL-USD"},
			[2]string{"Dogecoin", "DOGE-USD"},
		),
	}

	res := New(f, nil).CurrentPrices(context.Background(), cat)

	assert.Len(t, res.Rows, 1)
	assert.Equal(t, []string{
		"Error fetching price for Crypto: Solana (SOL-USD): rate_limit error (status 429): rate limit exceeded",
		"No price data for Crypto: Dogecoin (DOGE-USD)",
	}, res.Messages())
}

func TestCurrentPrices_AllFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := fetchermock.NewMockFetcher(ctrl)
	f.EXPECT().Fetch(gomock.Any(), gomock.Any(), fetcher.PeriodTwoDays).
		Return(nil, fetcher.NewNetworkError(errors.New("no route to host"))).
		Times(catalog.Default().Len())

	res := New(f, nil).CurrentPrices(context.Background(), catalog.Default())

	assert.Empty(t, res.Rows)
	assert.Len(t, res.Errors, catalog.Default().Len())
}

func TestAggregations_AreIdempotent(t *testing.T) {
	f := &testutil.SeriesFetcher{
		Series: map[string][]fetcher.PricePoint{
			"BTC-USD": testutil.Closes(60000.5, 61000.25),
			"GC=F":    testutil.WithVolumes(testutil.Closes(1900, 1950, 2000), 10, 10, 50),
			"NVDA":    testutil.Closes(0.05),
		},
		Errors: map[string]error{"TSLA": fetcher.NewServerError(500)},
	}
	cat := catalog.Default()
	a := New(f, nil)

	prices1 := a.CurrentPrices(context.Background(), cat)
	prices2 := a.CurrentPrices(context.Background(), cat)
	assert.Equal(t, prices1, prices2)

	growth1 := a.Growth(context.Background(), cat.Commodities, fetcher.PeriodMonth)
	growth2 := a.Growth(context.Background(), cat.Commodities, fetcher.PeriodMonth)
	assert.Equal(t, growth1, growth2)
}
