package coingecko

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/stonks/internal/infra"
	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

const (
	maxDescription = 500
	searchLimit    = 5
	unranked       = 9999
)

// ════════════════════════════════════════════════════════════════════
// Coin detail
// ════════════════════════════════════════════════════════════════════

type coinFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newCoinFetcher(p *Provider) *coinFetcher {
	return &coinFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoQuote,
			"Coin price, supply and market data by CoinGecko id",
			[]string{provider.ParamSymbol},
			nil,
			5*time.Minute, 10, time.Minute,
		),
		p: p,
	}
}

func (f *coinFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func(ctx context.Context) (any, error) {
		id := params[provider.ParamSymbol]
		q := url.Values{
			"localization":   {"false"},
			"tickers":        {"false"},
			"market_data":    {"true"},
			"community_data": {"true"},
			"sparkline":      {"false"},
		}
		var c cgCoin
		if err := f.p.get(ctx, "coins/"+url.PathEscape(id), q, &c); err != nil {
			var httpErr *infra.ErrHTTP
			if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
				return nil, &provider.ErrNoData{Provider: providerName, Symbol: id, Detail: "coin not found"}
			}
			return nil, err
		}
		return coinQuote(&c), nil
	})
}

func coinQuote(c *cgCoin) *models.Quote {
	md := c.MarketData
	desc := c.Description.En
	if r := []rune(desc); len(r) > maxDescription {
		desc = string(r[:maxDescription])
	}
	return &models.Quote{
		Ticker:       c.ID,
		Name:         c.Name,
		AssetType:    "crypto",
		Source:       providerName,
		CurrentPrice: md.CurrentPrice.USD,
		Volume:       md.TotalVolume.USD,
		DayHigh:      md.High24h.USD,
		DayLow:       md.Low24h.USD,
		Change:       md.PriceChange24h,
		ChangePct:    md.PriceChangePct24h,
		Currency:     "USD",
		CryptoDetail: &models.CryptoDetail{
			ID:                  c.ID,
			Symbol:              strings.ToUpper(c.Symbol),
			MarketCap:           md.MarketCap.USD,
			MarketCapRank:       c.MarketCapRank,
			TotalVolume:         md.TotalVolume.USD,
			High24h:             md.High24h.USD,
			Low24h:              md.Low24h.USD,
			PriceChange24h:      md.PriceChange24h,
			PriceChangePct24h:   md.PriceChangePct24h,
			PriceChangePct7d:    md.PriceChangePct7d,
			PriceChangePct30d:   md.PriceChangePct30d,
			CirculatingSupply:   md.CirculatingSupply,
			TotalSupply:         md.TotalSupply,
			MaxSupply:           md.MaxSupply,
			ATH:                 md.ATH.USD,
			ATHChangePercentage: md.ATHChangePercentage.USD,
			ATL:                 md.ATL.USD,
			Description:         desc,
		},
	}
}

// ════════════════════════════════════════════════════════════════════
// Market chart
// ════════════════════════════════════════════════════════════════════

type marketChartFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newMarketChartFetcher(p *Provider) *marketChartFetcher {
	return &marketChartFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoHistorical,
			"USD price and volume history over the last N days",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamDays},
			5*time.Minute, 10, time.Minute,
		),
		p: p,
	}
}

func (f *marketChartFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func(ctx context.Context) (any, error) {
		id := params[provider.ParamSymbol]
		days := params[provider.ParamDays]
		if _, err := strconv.Atoi(days); err != nil {
			days = "90"
		}

		var chart cgMarketChart
		q := url.Values{"vs_currency": {"usd"}, "days": {days}}
		if err := f.p.get(ctx, "coins/"+url.PathEscape(id)+"/market_chart", q, &chart); err != nil {
			return nil, err
		}
		if len(chart.Prices) == 0 {
			return nil, &provider.ErrNoData{Provider: providerName, Symbol: id, Detail: "empty market chart"}
		}

		bars := make([]models.OHLCV, 0, len(chart.Prices))
		for i, pt := range chart.Prices {
			price := pt[1]
			bar := models.OHLCV{Date: unixDate(pt[0]), Open: price, High: price, Low: price, Close: price}
			if i < len(chart.TotalVolumes) {
				bar.Volume = chart.TotalVolumes[i][1]
			}
			bars = append(bars, bar)
		}
		h := models.NewHistory(id, providerName, bars)
		// Short ranges return intraday points; keep one per day.
		h.Dedupe()
		return h, nil
	})
}

// ════════════════════════════════════════════════════════════════════
// Search
// ════════════════════════════════════════════════════════════════════

type searchFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newSearchFetcher(p *Provider) *searchFetcher {
	return &searchFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelCryptoSearch,
			"Coin search ranked by market cap",
			[]string{provider.ParamQuery},
			nil,
			30*time.Minute, 10, time.Minute,
		),
		p: p,
	}
}

func (f *searchFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func(ctx context.Context) (any, error) {
		var res cgSearch
		if err := f.p.get(ctx, "search", url.Values{"query": {params[provider.ParamQuery]}}, &res); err != nil {
			return nil, err
		}

		rank := func(r *int) int {
			if r == nil || *r == 0 {
				return unranked
			}
			return *r
		}
		coins := res.Coins
		sort.SliceStable(coins, func(i, j int) bool {
			return rank(coins[i].MarketCapRank) < rank(coins[j].MarketCapRank)
		})

		out := make([]models.SearchResult, 0, searchLimit)
		for _, c := range coins {
			if len(out) == searchLimit {
				break
			}
			out = append(out, models.SearchResult{
				ID:     c.ID,
				Symbol: strings.ToUpper(c.Symbol),
				Name:   c.Name,
				Type:   "crypto",
			})
		}
		return out, nil
	})
}
