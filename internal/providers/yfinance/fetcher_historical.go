package yfinance

import (
	"context"
	"time"

	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

type historicalFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newHistoricalFetcher(p *Provider) *historicalFetcher {
	return &historicalFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelHistorical,
			"Daily OHLCV bars for a Yahoo range (1mo, 3mo, 1y, 5y, max)",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamInterval},
			5*time.Minute, 2, time.Second,
		),
		p: p,
	}
}

func (f *historicalFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func(ctx context.Context) (any, error) {
		symbol := params[provider.ParamSymbol]
		period := params[provider.ParamPeriod]
		if period == "" {
			period = "3mo"
		}
		interval := params[provider.ParamInterval]
		if interval == "" {
			interval = "1d"
		}

		res, err := f.p.chart(ctx, symbol, period, interval)
		if err != nil {
			return nil, err
		}
		bars := parseBars(res)
		if len(bars) == 0 {
			return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Detail: "no price data"}
		}
		return models.NewHistory(symbol, "yahoo", bars), nil
	})
}

// parseBars skips timestamps whose close is null.
func parseBars(res *yfChartResult) []models.OHLCV {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	q := res.Indicators.Quote[0]
	bars := make([]models.OHLCV, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		c, ok := at(q.Close, i)
		if !ok {
			continue
		}
		bar := models.OHLCV{Date: tradingDate(ts, res.Meta.GMTOffset), Close: c}
		bar.Open, _ = at(q.Open, i)
		bar.High, _ = at(q.High, i)
		bar.Low, _ = at(q.Low, i)
		bar.Volume, _ = at(q.Volume, i)
		bars = append(bars, bar)
	}
	return bars
}
