// Package twelvedata implements the Twelve Data provider for equity
// quotes and daily time series. The public "demo" key works for a
// handful of large caps; set TWELVE_DATA_KEY for anything else.
//
// Docs: https://twelvedata.com/docs
package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/seenimoa/stonks/internal/infra"
	"github.com/seenimoa/stonks/internal/provider"
)

const (
	providerName   = "twelvedata"
	defaultBaseURL = "https://api.twelvedata.com"
	credAPIKey     = "api_key"
	demoKey        = "demo"
)

// Provider implements provider.Provider for Twelve Data.
type Provider struct {
	provider.BaseProvider
	baseURL string
}

type Option func(*Provider)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

func New(opts ...Option) *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"Twelve Data - real-time and historical equity prices",
			"https://twelvedata.com",
			[]provider.ProviderCredential{
				{
					Name:        credAPIKey,
					Description: "Twelve Data API key (defaults to the public demo key)",
					EnvVar:      "TWELVE_DATA_KEY",
				},
			},
		),
		baseURL: defaultBaseURL,
	}
	for _, o := range opts {
		o(p)
	}

	p.RegisterFetcher(newQuoteFetcher(p))
	p.RegisterFetcher(newTimeSeriesFetcher(p))
	return p
}

func (p *Provider) apiKey() string {
	if k := p.Credential(credAPIKey); k != "" {
		return k
	}
	return demoKey
}

// get calls endpoint and decodes into out. Twelve Data reports errors in
// the body with HTTP 200, so the payload is checked for a "code" first.
func (p *Provider) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	q.Set("apikey", p.apiKey())
	u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, q.Encode())

	data, err := infra.GetBytes(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return err
	}

	var apiErr tdError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Code != 0 {
		return &provider.ErrNoData{Provider: providerName, Symbol: q.Get("symbol"), Detail: apiErr.Message}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s JSON: %w", endpoint, err)
	}
	return nil
}

func (p *Provider) Ping(ctx context.Context) error {
	var q tdQuote
	if err := p.get(ctx, "quote", url.Values{"symbol": {"AAPL"}}, &q); err != nil {
		return fmt.Errorf("twelvedata ping: %w", err)
	}
	return nil
}
