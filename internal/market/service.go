// Package market is the facade the API and CLI use for quotes, history,
// macro indicators and search. It resolves user queries through the
// catalog and routes them to providers through the registry.
package market

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

const (
	yahoo = "yfinance"

	defaultConcurrency = 4
	searchLimit        = 10
	remoteCryptoHits   = 3
)

// Service answers market-data requests.
type Service struct {
	reg         *provider.Registry
	cat         *catalog.Catalog
	log         zerolog.Logger
	concurrency int
	now         func() time.Time
}

type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithConcurrency bounds concurrent provider calls in multi-asset fetches.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(reg *provider.Registry, cat *catalog.Catalog, opts ...Option) *Service {
	s := &Service{
		reg:         reg,
		cat:         cat,
		log:         log.Logger,
		concurrency: defaultConcurrency,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With().Str("component", "market").Logger()
	return s
}

func (s *Service) Catalog() *catalog.Catalog   { return s.cat }
func (s *Service) Registry() *provider.Registry { return s.reg }

// ════════════════════════════════════════════════════════════════════
// Quotes
// ════════════════════════════════════════════════════════════════════

// Quote returns the latest quote for id in class. Macro indicators are
// served by Macro instead.
func (s *Service) Quote(ctx context.Context, class catalog.AssetClass, id string) (*models.Quote, error) {
	var (
		q   *models.Quote
		err error
	)
	switch class {
	case catalog.ClassCrypto:
		q, err = s.fetchQuote(ctx, provider.ModelCryptoQuote, provider.QueryParams{
			provider.ParamSymbol: s.cat.ResolveCrypto(id),
		}, false)
	case catalog.ClassStocks:
		q, err = s.fetchQuote(ctx, provider.ModelQuote, provider.QueryParams{
			provider.ParamSymbol: s.cat.ResolveStock(id),
		}, true)
	case catalog.ClassCommodities:
		sym := s.cat.ResolveCommodity(id)
		q, err = s.yahooQuote(ctx, sym, s.cat.CommodityName(id, sym))
	case catalog.ClassForex:
		sym := s.cat.ResolveForex(id)
		q, err = s.yahooQuote(ctx, sym, strings.TrimSuffix(sym, "=X"))
	case catalog.ClassIndices:
		q, err = s.yahooQuote(ctx, s.cat.ResolveIndex(id), "")
	case catalog.ClassTreasury:
		q, err = s.yahooQuote(ctx, s.cat.ResolveTreasury(id), "")
		if err == nil {
			q.Name = "US Treasury " + strings.ToUpper(strings.TrimSpace(id)) + " Yield"
			q.Currency = "%"
		}
	default:
		return nil, Invalid("quotes are not available for %s", class)
	}

	if err != nil {
		s.log.Debug().Err(err).Str("class", string(class)).Str("id", id).Msg("quote lookup failed")
		return nil, NotFound(notFoundMessage(class, id), err)
	}
	q.AssetType = AssetType(class)
	return q, nil
}

func (s *Service) yahooQuote(ctx context.Context, symbol, name string) (*models.Quote, error) {
	params := provider.QueryParams{
		provider.ParamSymbol:   symbol,
		provider.ParamProvider: yahoo,
	}
	if name != "" {
		params[provider.ParamName] = name
	}
	return s.fetchQuote(ctx, provider.ModelQuote, params, false)
}

// fetchQuote returns a copy so callers can decorate it without touching
// the provider cache.
func (s *Service) fetchQuote(ctx context.Context, model provider.ModelType, params provider.QueryParams, fallback bool) (*models.Quote, error) {
	res, err := s.fetch(ctx, model, params, fallback)
	if err != nil {
		return nil, err
	}
	q, err := provider.Data[*models.Quote](res)
	if err != nil {
		return nil, err
	}
	out := *q
	return &out, nil
}

func (s *Service) fetch(ctx context.Context, model provider.ModelType, params provider.QueryParams, fallback bool) (*provider.FetchResult, error) {
	if fallback {
		return s.reg.FetchWithFallback(ctx, model, params)
	}
	return s.reg.Fetch(ctx, model, params)
}

// ════════════════════════════════════════════════════════════════════
// History
// ════════════════════════════════════════════════════════════════════

// History returns daily bars for the chart endpoints. Crypto periods use
// the chart day mapping; interval only applies to stocks.
func (s *Service) History(ctx context.Context, class catalog.AssetClass, id, period, interval string) (*models.History, error) {
	if period == "" {
		period = "3mo"
	}
	if class == catalog.ClassCrypto {
		return s.cryptoHistory(ctx, id, CryptoDays(period))
	}
	return s.history(ctx, class, id, period, interval)
}

// AnalysisHistory returns bars for the analytics endpoints. It accepts
// longer crypto periods and serves macro indicators from their series.
func (s *Service) AnalysisHistory(ctx context.Context, class catalog.AssetClass, id, period string) (*models.History, error) {
	switch class {
	case catalog.ClassCrypto:
		return s.cryptoHistory(ctx, id, AnalysisCryptoDays(period))
	case catalog.ClassMacro:
		m, err := s.Macro(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(m.History) == 0 {
			return nil, NotFound("No macro history data", nil)
		}
		return models.SeriesToHistory(m.Symbol, m.Source, m.History), nil
	}
	return s.history(ctx, class, id, period, "1d")
}

func (s *Service) cryptoHistory(ctx context.Context, id string, days int) (*models.History, error) {
	coin := s.cat.ResolveCrypto(id)
	res, err := s.reg.Fetch(ctx, provider.ModelCryptoHistorical, provider.QueryParams{
		provider.ParamSymbol: coin,
		provider.ParamDays:   strconv.Itoa(days),
	})
	if err != nil {
		return nil, NotFound("No history available for crypto '"+id+"'", err)
	}
	return provider.Data[*models.History](res)
}

func (s *Service) history(ctx context.Context, class catalog.AssetClass, id, period, interval string) (*models.History, error) {
	if interval == "" {
		interval = "1d"
	}
	params := provider.QueryParams{provider.ParamPeriod: period}
	fallback := false

	switch class {
	case catalog.ClassStocks:
		params[provider.ParamSymbol] = s.cat.ResolveStock(id)
		// Twelve Data only serves daily bars.
		if interval == "1d" {
			fallback = true
		} else {
			params[provider.ParamInterval] = interval
			params[provider.ParamProvider] = yahoo
		}
	case catalog.ClassCommodities:
		params[provider.ParamSymbol] = s.cat.ResolveCommodity(id)
	case catalog.ClassForex:
		params[provider.ParamSymbol] = s.cat.ResolveForex(id)
	case catalog.ClassIndices:
		params[provider.ParamSymbol] = s.cat.ResolveIndex(id)
	case catalog.ClassTreasury:
		params[provider.ParamSymbol] = s.cat.ResolveTreasury(id)
	default:
		return nil, Invalid("history is not available for %s", class)
	}
	if !fallback {
		params[provider.ParamProvider] = yahoo
	}

	res, err := s.fetch(ctx, provider.ModelHistorical, params, fallback)
	if err != nil {
		return nil, NotFound("No history available for "+AssetType(class)+" '"+id+"'", err)
	}
	return provider.Data[*models.History](res)
}

// ════════════════════════════════════════════════════════════════════
// Macro
// ════════════════════════════════════════════════════════════════════

// Macro resolves a friendly name ("fed funds") or raw FRED id and
// returns the indicator series.
func (s *Service) Macro(ctx context.Context, name string) (*models.MacroSeries, error) {
	info, ok := s.cat.ResolveMacro(name)
	if !ok {
		if catalog.IsFREDSymbol(name) {
			m, err := s.fredSeries(ctx, name, "FRED: "+name)
			if err == nil {
				m.Region = "US"
				return m, nil
			}
			s.log.Debug().Err(err).Str("symbol", name).Msg("FRED passthrough failed")
		}
		return nil, NotFound("Unknown macro indicator: "+name+". Try: "+notFoundHints[catalog.ClassMacro], nil)
	}

	var (
		m   *models.MacroSeries
		err error
	)
	if info.Source == catalog.SourceFRED {
		m, err = s.fredSeries(ctx, info.Symbol, info.Name)
	} else {
		m, err = s.yahooSeries(ctx, info.Symbol, info.Name)
	}
	if err != nil {
		return nil, NotFound("No data for macro indicator '"+name+"'", err)
	}
	m.Region = info.Region
	return m, nil
}

func (s *Service) fredSeries(ctx context.Context, symbol, name string) (*models.MacroSeries, error) {
	res, err := s.reg.Fetch(ctx, provider.ModelMacroSeries, provider.QueryParams{
		provider.ParamSymbol: symbol,
		provider.ParamName:   name,
	})
	if err != nil {
		return nil, err
	}
	m, err := provider.Data[*models.MacroSeries](res)
	if err != nil {
		return nil, err
	}
	out := *m
	return &out, nil
}

// yahooSeries summarizes two years of daily closes so Yahoo-sourced
// indicators carry the same fields as FRED ones.
func (s *Service) yahooSeries(ctx context.Context, symbol, name string) (*models.MacroSeries, error) {
	res, err := s.reg.Fetch(ctx, provider.ModelHistorical, provider.QueryParams{
		provider.ParamSymbol:   symbol,
		provider.ParamPeriod:   "2y",
		provider.ParamProvider: yahoo,
	})
	if err != nil {
		return nil, err
	}
	h, err := provider.Data[*models.History](res)
	if err != nil {
		return nil, err
	}
	m := models.NewMacroSeries(symbol, name, "Yahoo Finance", models.HistoryToSeries(h), s.now())
	if m == nil {
		return nil, &provider.ErrNoData{Provider: yahoo, Symbol: symbol}
	}
	return m, nil
}

// Indicators lists the catalog's macro indicators.
func (s *Service) Indicators() []catalog.MacroInfo { return s.cat.Indicators() }

// IndicatorsByRegion groups the indicators by region.
func (s *Service) IndicatorsByRegion() map[string][]catalog.MacroInfo {
	return s.cat.IndicatorsByRegion()
}

// ════════════════════════════════════════════════════════════════════
// Search
// ════════════════════════════════════════════════════════════════════

// Search combines local alias hits, the top CoinGecko matches and a
// ticker guess for short alphabetic queries. Remote hits already found
// locally are dropped and remote failures are ignored. The result is
// never nil.
func (s *Service) Search(ctx context.Context, query string) []models.SearchResult {
	query = strings.TrimSpace(query)
	out := []models.SearchResult{}
	seen := make(map[string]bool)
	add := func(r models.SearchResult) {
		out = append(out, r)
		seen[r.ID] = true
	}

	for _, h := range s.cat.Search(query) {
		add(models.SearchResult(h))
	}

	if query != "" {
		res, err := s.reg.Fetch(ctx, provider.ModelCryptoSearch, provider.QueryParams{provider.ParamQuery: query})
		if err != nil {
			s.log.Debug().Err(err).Str("query", query).Msg("crypto search failed")
		} else if hits, err := provider.Data[[]models.SearchResult](res); err == nil {
			for _, h := range hits[:min(remoteCryptoHits, len(hits))] {
				if !seen[h.ID] {
					add(h)
				}
			}
		}
	}

	if looksLikeTicker(query) && !hasType(out, "stock") {
		t := strings.ToUpper(query)
		add(models.SearchResult{ID: t, Symbol: t, Name: t, Type: "stock"})
	}

	if len(out) > searchLimit {
		out = out[:searchLimit]
	}
	return out
}

func looksLikeTicker(q string) bool {
	if q == "" || len(q) > 5 {
		return false
	}
	for _, r := range q {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func hasType(rs []models.SearchResult, typ string) bool {
	for _, r := range rs {
		if r.Type == typ {
			return true
		}
	}
	return false
}
