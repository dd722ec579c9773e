package fred

import (
	"context"
	"time"

	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

type seriesFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newSeriesFetcher(p *Provider) *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.ModelMacroSeries,
			"FRED series with current value, changes and one year of history",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamName},
			10*time.Minute, 10, time.Second,
		),
		p: p,
	}
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return f.Cached(ctx, params, func(ctx context.Context) (any, error) {
		symbol := params[provider.ParamSymbol]
		points, err := f.p.observations(ctx, symbol)
		if err != nil {
			return nil, err
		}
		if len(points) == 0 {
			return nil, &provider.ErrNoData{Provider: providerName, Symbol: symbol, Detail: "no valid data points"}
		}
		name := params[provider.ParamName]
		if name == "" {
			name = "FRED: " + symbol
		}
		return models.NewMacroSeries(symbol, name, sourceFullName, points, time.Now()), nil
	})
}
