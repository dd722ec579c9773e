package twelvedata

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

// ─── Quote ──────────────────────────────────────────────────────────

type quoteFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newQuoteFetcher(p *Provider) *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelQuote,
			"Latest equity quote",
			[]string{provider.ParamSymbol},
			nil,
			5*time.Minute, 8, time.Minute,
		),
		p: p,
	}
}

func (f *quoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func(ctx context.Context) (any, error) {
		symbol := params[provider.ParamSymbol]
		var raw tdQuote
		if err := f.p.get(ctx, "quote", url.Values{"symbol": {symbol}}, &raw); err != nil {
			return nil, err
		}
		if raw.Close.Float() == 0 {
			return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Detail: "quote has no close"}
		}

		name := raw.Name
		if name == "" {
			name = symbol
		}
		currency := raw.Currency
		if currency == "" {
			currency = "USD"
		}
		return &models.Quote{
			Ticker:        symbol,
			Name:          name,
			Source:        "twelve_data",
			CurrentPrice:  raw.Close.Float(),
			OpenPrice:     raw.Open.Float(),
			DayHigh:       raw.High.Float(),
			DayLow:        raw.Low.Float(),
			PreviousClose: raw.PreviousClose.Float(),
			Volume:        raw.Volume.Float(),
			Change:        raw.Change.Float(),
			ChangePct:     raw.PercentChange.Float(),
			WeekHigh52:    raw.FiftyTwoWeek.High.Float(),
			WeekLow52:     raw.FiftyTwoWeek.Low.Float(),
			Exchange:      raw.Exchange,
			Currency:      currency,
		}, nil
	})
}

// ─── Time series ────────────────────────────────────────────────────

// outputSizes maps a Yahoo-style period to a daily bar count.
var outputSizes = map[string]int{
	"1d": 1, "5d": 5, "1mo": 30, "3mo": 90, "6mo": 180,
	"1y": 365, "2y": 730, "5y": 1825, "10y": 3650,
	"20y": 7300, "max": 36500,
}

const (
	defaultOutputSize = 90
	maxOutputSize     = 5000
)

// OutputSize returns the bar count requested for period.
func OutputSize(period string) int {
	n, ok := outputSizes[period]
	if !ok {
		return defaultOutputSize
	}
	return min(n, maxOutputSize)
}

type timeSeriesFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newTimeSeriesFetcher(p *Provider) *timeSeriesFetcher {
	return &timeSeriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelHistorical,
			"Daily OHLCV time series",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod},
			5*time.Minute, 8, time.Minute,
		),
		p: p,
	}
}

func (f *timeSeriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func(ctx context.Context) (any, error) {
		symbol := params[provider.ParamSymbol]
		q := url.Values{
			"symbol":     {symbol},
			"interval":   {"1day"},
			"outputsize": {strconv.Itoa(OutputSize(params[provider.ParamPeriod]))},
		}
		var raw tdTimeSeries
		if err := f.p.get(ctx, "time_series", q, &raw); err != nil {
			return nil, err
		}
		if len(raw.Values) == 0 {
			return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Detail: "empty time series"}
		}

		// Values arrive newest first.
		bars := make([]models.OHLCV, 0, len(raw.Values))
		for i := len(raw.Values) - 1; i >= 0; i-- {
			v := raw.Values[i]
			bars = append(bars, models.OHLCV{
				Date:   v.Datetime,
				Open:   v.Open.Float(),
				High:   v.High.Float(),
				Low:    v.Low.Float(),
				Close:  v.Close.Float(),
				Volume: v.Volume.Float(),
			})
		}
		return models.NewHistory(symbol, "twelve_data", bars), nil
	})
}
