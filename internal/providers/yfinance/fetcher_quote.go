package yfinance

import (
	"context"
	"time"

	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

type quoteFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newQuoteFetcher(p *Provider) *quoteFetcher {
	return &quoteFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelQuote,
			"Latest price from the 5-day daily chart",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamName},
			5*time.Minute, 2, time.Second,
		),
		p: p,
	}
}

func (f *quoteFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func(ctx context.Context) (any, error) {
		symbol := params[provider.ParamSymbol]
		res, err := f.p.chart(ctx, symbol, "5d", "1d")
		if err != nil {
			return nil, err
		}
		q := buildQuote(symbol, res)
		if q == nil {
			return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Detail: "no price data"}
		}
		if name := params[provider.ParamName]; name != "" {
			q.Name = name
		}
		return q, nil
	})
}

// buildQuote returns nil when the chart has no closes.
func buildQuote(symbol string, res *yfChartResult) *models.Quote {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	ind := res.Indicators.Quote[0]
	closes := nonNil(ind.Close)
	if len(closes) == 0 {
		return nil
	}

	meta := res.Meta
	q := &models.Quote{
		Ticker:       symbol,
		Name:         firstNonEmpty(meta.LongName, meta.ShortName, symbol),
		Source:       "yahoo",
		CurrentPrice: closes[len(closes)-1],
		Currency:     firstNonEmpty(meta.Currency, "USD"),
		Exchange:     meta.ExchangeName,
		WeekHigh52:   meta.FiftyTwoWeekHigh,
		WeekLow52:    meta.FiftyTwoWeekLow,
	}

	switch {
	case meta.PreviousClose != nil && *meta.PreviousClose != 0:
		q.PreviousClose = *meta.PreviousClose
	case meta.ChartPreviousClose != nil && *meta.ChartPreviousClose != 0:
		q.PreviousClose = *meta.ChartPreviousClose
	case len(closes) > 1:
		q.PreviousClose = closes[len(closes)-2]
	}

	for i, h := range nonZero(nonNil(ind.High)) {
		if i == 0 || h > q.DayHigh {
			q.DayHigh = h
		}
	}
	for i, l := range nonZero(nonNil(ind.Low)) {
		if i == 0 || l < q.DayLow {
			q.DayLow = l
		}
	}
	if n := len(ind.Volume); n > 0 && ind.Volume[n-1] != nil {
		q.Volume = *ind.Volume[n-1]
	}

	q.FillChange()
	return q
}

func nonZero(s []float64) []float64 {
	out := s[:0:0]
	for _, v := range s {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
