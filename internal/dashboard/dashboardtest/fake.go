// Package dashboardtest provides in-memory market and news sources for
// tests of the dashboard and its front ends.
package dashboardtest

import (
	"context"
	"sync"
	"time"

	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/pkg/models"
)

// Key is the lookup key used by Market: "class:id".
func Key(class catalog.AssetClass, id string) string { return string(class) + ":" + id }

// Bars builds n daily bars starting 2023-01-02.
func Bars(ticker string, n int, price func(i int) float64) *models.History {
	start := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.OHLCV, n)
	for i := range bars {
		p := price(i)
		bars[i] = models.OHLCV{
			Date:  start.AddDate(0, 0, i).Format(time.DateOnly),
			Open:  p,
			High:  p * 1.01,
			Low:   p * 0.99,
			Close: p,
		}
	}
	return models.NewHistory(ticker, "test", bars)
}

// Market serves canned data. Unknown keys answer market.ErrNotFound.
type Market struct {
	Histories map[string]*models.History
	Quotes    map[string]*models.Quote
	Series    map[string]*models.MacroSeries
	Results   []models.SearchResult
	Catalog   *catalog.Catalog

	mu    sync.Mutex
	calls []string
}

// Calls lists the history keys requested so far.
func (m *Market) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Market) cat() *catalog.Catalog {
	if m.Catalog != nil {
		return m.Catalog
	}
	return catalog.Default()
}

func (m *Market) history(class catalog.AssetClass, id string) (*models.History, error) {
	k := Key(class, id)
	m.mu.Lock()
	m.calls = append(m.calls, k)
	m.mu.Unlock()
	if h, ok := m.Histories[k]; ok {
		return h, nil
	}
	return nil, market.NotFound("no history for "+k, nil)
}

func (m *Market) Quote(_ context.Context, class catalog.AssetClass, id string) (*models.Quote, error) {
	if q, ok := m.Quotes[Key(class, id)]; ok {
		return q, nil
	}
	return nil, market.NotFound("no quote for "+id, nil)
}

func (m *Market) History(_ context.Context, class catalog.AssetClass, id, _, _ string) (*models.History, error) {
	return m.history(class, id)
}

func (m *Market) AnalysisHistory(_ context.Context, class catalog.AssetClass, id, _ string) (*models.History, error) {
	return m.history(class, id)
}

func (m *Market) ScanHistory(_ context.Context, class catalog.AssetClass, id, _ string) (*models.History, error) {
	return m.history(class, id)
}

func (m *Market) FetchAll(ctx context.Context, refs []market.AssetRef, period string) ([]market.Loaded, error) {
	return m.FetchAllWith(ctx, refs, func(ctx context.Context, class catalog.AssetClass, id string) (*models.History, error) {
		return m.AnalysisHistory(ctx, class, id, period)
	})
}

// FetchAllWith loads refs one after another.
func (m *Market) FetchAllWith(ctx context.Context, refs []market.AssetRef, load market.HistoryFunc) ([]market.Loaded, error) {
	out := make([]market.Loaded, len(refs))
	for i, ref := range refs {
		out[i].Ref = ref
		class, err := ref.Class()
		if err != nil {
			out[i].Err = err
			continue
		}
		out[i].Class = class
		out[i].History, out[i].Err = load(ctx, class, ref.ID)
	}
	return out, ctx.Err()
}

func (m *Market) Macro(_ context.Context, name string) (*models.MacroSeries, error) {
	if s, ok := m.Series[name]; ok {
		return s, nil
	}
	return nil, market.NotFound("Unknown macro indicator: "+name, nil)
}

func (m *Market) Indicators() []catalog.MacroInfo { return m.cat().Indicators() }

func (m *Market) IndicatorsByRegion() map[string][]catalog.MacroInfo {
	return m.cat().IndicatorsByRegion()
}

func (m *Market) Search(_ context.Context, _ string) []models.SearchResult { return m.Results }

// Feed returns fixed articles.
type Feed struct {
	Articles []models.NewsArticle
	Sources  []string
	Err      error
}

func (f *Feed) Collect(_ context.Context, _, _ string) ([]models.NewsArticle, []string, error) {
	return f.Articles, f.Sources, f.Err
}
