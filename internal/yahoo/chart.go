package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"resty.dev/v3"

	"hyperiq/internal/fetcher"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const chartPath = "/v8/finance/chart/{symbol}"

// notFoundCode is the chart.error.code of unknown and delisted symbols.
const notFoundCode = "Not Found"

// ChartResponse represents the Yahoo v8 chart API payload.
// Errors come back in the same envelope with a nil result.
type ChartResponse struct {
	Chart struct {
		Result []ChartResult `json:"result"`
		Error  *ChartError   `json:"error"`
	} `json:"chart"`
}

// ChartResult holds one symbol's series.
type ChartResult struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

// ChartError is the error object Yahoo returns alongside failed lookups.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ChartFetcher fetches daily price history from the Yahoo chart API
type ChartFetcher struct {
	client *resty.Client
}

// NewChartFetcher creates a chart fetcher on top of an HTTP client built with
// fetcher.NewHTTPClient.
func NewChartFetcher(client *resty.Client) *ChartFetcher {
	return &ChartFetcher{client: client}
}

// Name implements fetcher.Fetcher
func (f *ChartFetcher) Name() string { return "yahoo" }

// Fetch retrieves the daily closes and volumes of symbol over period
func (f *ChartFetcher) Fetch(ctx context.Context, symbol string, period fetcher.Period) ([]fetcher.PricePoint, error) {
	var result ChartResponse

	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"range":    string(period),
			"interval": "1d",
		}).
		SetResult(&result).
		Get(chartPath)

	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fetcher.NewTimeoutError(err)
		}
		return nil, fetcher.NewNetworkError(err)
	}

	if !resp.IsSuccess() {
		ce := chartError(resp.String())
		if resp.StatusCode() == http.StatusNotFound && ce != nil && ce.Code == notFoundCode {
			return nil, fetcher.NewNoDataError(symbol)
		}
		fe := fetcher.ClassifyHTTPError(resp.StatusCode())
		if ce != nil && ce.Description != "" {
			fe.Message = ce.Description
		}
		return nil, fe
	}

	if e := result.Chart.Error; e != nil {
		return nil, fetcher.NewValidationError(fmt.Sprintf("%s: %s", e.Code, e.Description))
	}

	if len(result.Chart.Result) == 0 {
		return nil, fetcher.NewNoDataError(symbol)
	}

	points, err := decodeSeries(result.Chart.Result[0])
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fetcher.NewNoDataError(symbol)
	}
	return points, nil
}

// decodeSeries zips timestamps with quote columns. Sessions without a close
// (halted or not yet settled) are skipped, missing volumes read as zero.
func decodeSeries(r ChartResult) ([]fetcher.PricePoint, error) {
	if len(r.Timestamp) == 0 {
		return nil, nil
	}
	if len(r.Indicators.Quote) == 0 {
		return nil, fetcher.NewValidationError("quote indicators missing from response")
	}

	q := r.Indicators.Quote[0]
	if len(q.Close) != len(r.Timestamp) {
		return nil, fetcher.NewValidationError(
			fmt.Sprintf("got %d closes for %d timestamps", len(q.Close), len(r.Timestamp)))
	}

	points := make([]fetcher.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if q.Close[i] == nil {
			continue
		}
		var volume float64
		if i < len(q.Volume) && q.Volume[i] != nil {
			volume = *q.Volume[i]
		}
		points = append(points, fetcher.PricePoint{
			Time:   time.Unix(ts, 0).UTC(),
			Close:  *q.Close[i],
			Volume: volume,
		})
	}
	return points, nil
}

// chartError extracts chart.error from an error body, if any.
func chartError(body string) *ChartError {
	var env ChartResponse
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return nil
	}
	return env.Chart.Error
}
