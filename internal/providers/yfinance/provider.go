// Package yfinance implements the Yahoo Finance provider on top of the
// public v8 chart endpoint. It needs no API key and serves stocks,
// futures, FX pairs, indices and treasury yields.
package yfinance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/stonks/internal/infra"
	"github.com/seenimoa/stonks/internal/provider"
)

const (
	providerName   = "yfinance"
	defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL points the provider at a different chart endpoint.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

// New creates the provider and registers its fetchers.
func New(opts ...Option) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Yahoo Finance chart API - free global market data",
			"https://finance.yahoo.com",
			nil,
		),
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(p)
	}

	p.RegisterFetcher(newQuoteFetcher(p))
	p.RegisterFetcher(newHistoricalFetcher(p))
	return p
}

// Ping fetches a one-day SPY chart.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.chart(ctx, "SPY", "1d", "1d"); err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	return nil
}

// chart fetches and validates a chart response.
func (p *Provider) chart(ctx context.Context, symbol, rng, interval string) (*yfChartResult, error) {
	url := fmt.Sprintf("%s/%s?range=%s&interval=%s", p.baseURL, symbol, rng, interval)
	data, err := infra.GetBytes(ctx, url, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, err
	}

	var resp yfChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parse chart JSON: %w", err)
	}
	if resp.Chart.Error != nil {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Detail: resp.Chart.Error.Description}
	}
	if len(resp.Chart.Result) == 0 {
		return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol}
	}
	return &resp.Chart.Result[0], nil
}

// tradingDate converts a bar timestamp to the exchange-local calendar date.
func tradingDate(ts, gmtOffset int64) string {
	return time.Unix(ts+gmtOffset, 0).UTC().Format("2006-01-02")
}
