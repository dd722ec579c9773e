// Package coingecko implements the CoinGecko provider: coin detail,
// market charts and coin search from the free v3 API.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/stonks/internal/infra"
	"github.com/seenimoa/stonks/internal/provider"
)

const (
	providerName   = "coingecko"
	defaultBaseURL = "https://api.coingecko.com/api/v3"
)

type Provider struct {
	provider.BaseProvider
	baseURL string
}

type Option func(*Provider)

func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

func New(opts ...Option) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"CoinGecko - cryptocurrency prices and market data",
			"https://www.coingecko.com",
			nil,
		),
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(p)
	}

	p.RegisterFetcher(newCoinFetcher(p))
	p.RegisterFetcher(newMarketChartFetcher(p))
	p.RegisterFetcher(newSearchFetcher(p))
	return p
}

// Ping calls /ping.
func (p *Provider) Ping(ctx context.Context) error {
	var out struct {
		GeckoSays string `json:"gecko_says"`
	}
	if err := p.get(ctx, "ping", nil, &out); err != nil {
		return fmt.Errorf("coingecko ping: %w", err)
	}
	return nil
}

func (p *Provider) get(ctx context.Context, path string, q url.Values, out any) error {
	u := p.baseURL + "/" + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	data, err := infra.GetBytes(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s JSON: %w", path, err)
	}
	return nil
}

// unixDate formats a millisecond timestamp as a UTC date.
func unixDate(ms float64) string {
	return time.UnixMilli(int64(ms)).UTC().Format("2006-01-02")
}
