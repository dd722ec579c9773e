// Package dashboard wires market data into the analytics packages. The
// HTTP API and the CLI both drive it, so request defaults and validation
// live here rather than in either front end.
package dashboard

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stonks/internal/analysis/compare"
	"github.com/seenimoa/stonks/internal/analysis/macro"
	"github.com/seenimoa/stonks/internal/analysis/montecarlo"
	"github.com/seenimoa/stonks/internal/analysis/sentiment"
	"github.com/seenimoa/stonks/internal/analysis/technical"
	"github.com/seenimoa/stonks/internal/backtest"
	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/internal/provider"
	"github.com/seenimoa/stonks/pkg/models"
)

// Request defaults and bounds.
const (
	DefaultHistoryPeriod  = "3mo"
	DefaultAnalysisPeriod = "1y"
	DefaultLookback       = "1y"
	DefaultSentimentType  = "stock"

	MaxCompareAssets = 10
	MaxForecastDays  = 1260
	MinSimulations   = 100
	MaxSimulations   = 50000
)

// Market is the market-data facade. *market.Service implements it.
type Market interface {
	macro.Source
	Quote(ctx context.Context, class catalog.AssetClass, id string) (*models.Quote, error)
	History(ctx context.Context, class catalog.AssetClass, id, period, interval string) (*models.History, error)
	AnalysisHistory(ctx context.Context, class catalog.AssetClass, id, period string) (*models.History, error)
	FetchAll(ctx context.Context, refs []market.AssetRef, period string) ([]market.Loaded, error)
	Macro(ctx context.Context, name string) (*models.MacroSeries, error)
	Indicators() []catalog.MacroInfo
	IndicatorsByRegion() map[string][]catalog.MacroInfo
	Search(ctx context.Context, query string) []models.SearchResult
}

// Config holds what New needs. Zero Simulations and ForecastDays select
// the montecarlo defaults; an empty ExportDir disables scan snapshots.
type Config struct {
	Market       Market
	News         sentiment.Feed
	Catalog      *catalog.Catalog
	Simulations  int
	ForecastDays int
	ExportDir    string
	RiskFreeRate float64            // scan Sharpe ratios; zero keeps the macro default
	Registry     *provider.Registry // optional, for Providers
	Logger       *zerolog.Logger
}

// Dashboard answers every front-end request.
type Dashboard struct {
	mkt      Market
	analyzer *sentiment.Analyzer
	scanner  *macro.Scanner
	reg      *provider.Registry
	sims     int
	days     int
	log      zerolog.Logger
}

func New(cfg Config) *Dashboard {
	l := log.Logger
	if cfg.Logger != nil {
		l = *cfg.Logger
	}
	opts := []macro.Option{macro.WithLogger(l), macro.WithExportDir(cfg.ExportDir)}
	if cfg.RiskFreeRate != 0 {
		opts = append(opts, macro.WithRiskFreeRate(cfg.RiskFreeRate))
	}
	if cfg.Catalog != nil {
		opts = append(opts, macro.WithCatalog(cfg.Catalog))
	}
	d := &Dashboard{
		mkt:     cfg.Market,
		scanner: macro.NewScanner(cfg.Market, opts...),
		reg:     cfg.Registry,
		sims:    cfg.Simulations,
		days:    cfg.ForecastDays,
		log:     l.With().Str("component", "dashboard").Logger(),
	}
	if cfg.News != nil {
		d.analyzer = sentiment.NewAnalyzer(cfg.News)
	}
	return d
}

// Market exposes the underlying facade for pass-through endpoints.
func (d *Dashboard) Market() Market { return d.mkt }

// ProviderStatus describes the registered upstream sources.
type ProviderStatus struct {
	Providers []provider.ProviderInfo         `json:"providers"`
	Coverage  map[provider.ModelType][]string `json:"coverage"`
	Models    map[string][]provider.ModelType `json:"models"`
}

// Providers lists the registry's sources and, per model type, the
// providers serving it in fallback order. Model types are grouped by
// category. Without a registry the lists are empty.
func (d *Dashboard) Providers() *ProviderStatus {
	st := &ProviderStatus{
		Providers: []provider.ProviderInfo{},
		Coverage:  map[provider.ModelType][]string{},
		Models:    map[string][]provider.ModelType{},
	}
	for _, m := range provider.AllModels() {
		cat := provider.ModelCategory(m)
		st.Models[cat] = append(st.Models[cat], m)
	}
	if d.reg == nil {
		return st
	}
	st.Providers = d.reg.List()
	st.Coverage = d.reg.ModelCoverage()
	return st
}

func parseClass(s string) (catalog.AssetClass, error) {
	c, err := catalog.ParseClass(s)
	if err != nil {
		return "", market.Invalid("unknown asset class %q", s)
	}
	return c, nil
}

// ════════════════════════════════════════════════════════════════════
// Quotes & history
// ════════════════════════════════════════════════════════════════════

// Quote returns the latest quote for id in the named class.
func (d *Dashboard) Quote(ctx context.Context, class, id string) (*models.Quote, error) {
	c, err := parseClass(class)
	if err != nil {
		return nil, err
	}
	return d.mkt.Quote(ctx, c, id)
}

// History returns chart bars. period defaults to 3mo.
func (d *Dashboard) History(ctx context.Context, class, id, period, interval string) (*models.History, error) {
	c, err := parseClass(class)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = DefaultHistoryPeriod
	}
	return d.mkt.History(ctx, c, id, period, interval)
}

// Technical returns the indicator snapshot over period (default 1y).
func (d *Dashboard) Technical(ctx context.Context, class, id, period string) (*technical.Snapshot, error) {
	c, err := parseClass(class)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = DefaultAnalysisPeriod
	}
	h, err := d.mkt.AnalysisHistory(ctx, c, id, period)
	if err != nil {
		return nil, err
	}
	snap := technical.Analyze(h)
	if snap == nil {
		return nil, market.Insufficient("no price history for %s", id)
	}
	return snap, nil
}

// ════════════════════════════════════════════════════════════════════
// Comparison
// ════════════════════════════════════════════════════════════════════

// Analyze compares 2 to 10 assets over period (default 1y).
func (d *Dashboard) Analyze(ctx context.Context, refs []market.AssetRef, period string) (*compare.Result, error) {
	if len(refs) < 2 {
		return nil, market.Invalid("at least 2 assets are required for comparison")
	}
	if len(refs) > MaxCompareAssets {
		return nil, market.Invalid("at most %d assets can be compared", MaxCompareAssets)
	}
	for _, r := range refs {
		if strings.TrimSpace(r.ID) == "" {
			return nil, market.Invalid("asset id is required")
		}
		if _, err := parseClass(r.Type); err != nil {
			return nil, err
		}
	}
	if period == "" {
		period = DefaultAnalysisPeriod
	}

	loaded, err := d.mkt.FetchAll(ctx, refs, period)
	if err != nil {
		return nil, err
	}
	inputs := make([]compare.Input, len(loaded))
	for i, l := range loaded {
		inputs[i] = compare.Input{Class: l.Class, History: l.History}
		if l.Err != nil {
			d.log.Warn().Err(l.Err).Str("asset", l.Ref.String()).Msg("skipping asset")
		}
	}
	return compare.Analyze(period, inputs)
}

// ════════════════════════════════════════════════════════════════════
// Forecast
// ════════════════════════════════════════════════════════════════════

// ForecastRequest selects the asset and simulation size. Zero Days and
// Simulations fall back to the configured values.
type ForecastRequest struct {
	Class       string
	ID          string
	Days        int
	Simulations int
	Lookback    string
}

// Forecast runs the Monte Carlo simulation for one asset.
func (d *Dashboard) Forecast(ctx context.Context, req ForecastRequest) (*montecarlo.Forecast, error) {
	c, err := parseClass(req.Class)
	if err != nil {
		return nil, err
	}
	days, sims := req.Days, req.Simulations
	if days == 0 {
		days = d.days
	}
	if sims == 0 {
		sims = d.sims
	}
	if days < 0 || days > MaxForecastDays {
		return nil, market.Invalid("days must be between 1 and %d", MaxForecastDays)
	}
	if sims != 0 && (sims < MinSimulations || sims > MaxSimulations) {
		return nil, market.Invalid("simulations must be between %d and %d", MinSimulations, MaxSimulations)
	}
	lookback := req.Lookback
	if lookback == "" {
		lookback = DefaultLookback
	}

	h, err := d.mkt.AnalysisHistory(ctx, c, req.ID, lookback)
	if err != nil {
		return nil, err
	}
	return montecarlo.Simulate(montecarlo.Input{
		Ticker:    h.Ticker,
		AssetType: market.AssetType(c),
		Lookback:  lookback,
		Dates:     h.Dates(),
		Prices:    h.Closes(),
	}, montecarlo.Options{Days: days, Simulations: sims})
}

// ════════════════════════════════════════════════════════════════════
// Investment
// ════════════════════════════════════════════════════════════════════

// InvestRequest is the investment plan. A nil Initial means the default
// lump sum; an explicit zero is kept.
type InvestRequest struct {
	Asset     string   `json:"asset"`
	Type      string   `json:"type"`
	Period    string   `json:"period"`
	Initial   *float64 `json:"initial"`
	Recurring float64  `json:"recurring"`
	Frequency string   `json:"frequency"`
	Benchmark string   `json:"benchmark"`
}

// Invest replays the plan. The benchmark is fetched alongside the asset;
// a missing benchmark only drops the comparison.
func (d *Dashboard) Invest(ctx context.Context, req InvestRequest) (*backtest.Result, error) {
	if strings.TrimSpace(req.Asset) == "" {
		return nil, market.Invalid("asset is required")
	}
	c, err := parseClass(req.Type)
	if err != nil {
		return nil, err
	}
	freq, err := backtest.ParseFrequency(req.Frequency)
	if err != nil {
		return nil, err
	}
	initial := backtest.DefaultInitial
	if req.Initial != nil {
		initial = *req.Initial
	}
	period := req.Period
	if period == "" {
		period = DefaultAnalysisPeriod
	}
	bench := req.Benchmark
	if bench == "" {
		bench = backtest.DefaultBenchmark
	}

	var h, bh *models.History
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		h, err = d.mkt.AnalysisHistory(gctx, c, req.Asset, period)
		return err
	})
	g.Go(func() error {
		var err error
		bh, err = d.mkt.AnalysisHistory(gctx, catalog.ClassStocks, bench, period)
		if err != nil {
			d.log.Debug().Err(err).Str("benchmark", bench).Msg("benchmark unavailable")
			bh = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return backtest.Invest(backtest.Request{
		Ticker:          req.Asset,
		AssetType:       market.AssetType(c),
		Period:          period,
		Initial:         initial,
		Recurring:       req.Recurring,
		Frequency:       freq,
		BenchmarkTicker: bench,
	}, h, bh)
}

// ════════════════════════════════════════════════════════════════════
// Sentiment & macro scan
// ════════════════════════════════════════════════════════════════════

// Sentiment scores recent news for query. assetType defaults to stock.
func (d *Dashboard) Sentiment(ctx context.Context, query, assetType string) (*sentiment.Report, error) {
	if strings.TrimSpace(query) == "" {
		return nil, market.Invalid("query is required")
	}
	if d.analyzer == nil {
		return nil, sentiment.ErrNoNews
	}
	if assetType == "" {
		assetType = DefaultSentimentType
	}
	return d.analyzer.Run(ctx, query, assetType)
}

// Scan runs the deep macro scan. progress may be nil.
func (d *Dashboard) Scan(ctx context.Context, req macro.Request, progress macro.ProgressFunc) (*macro.Result, error) {
	return d.scanner.Run(ctx, req, progress)
}
