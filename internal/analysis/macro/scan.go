// Package macro runs the deep multi-asset scan: long-horizon history for a
// cross-asset universe, per-asset performance, cross-asset dependence,
// market regimes and a snapshot export.
package macro

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/pkg/models"
)

// DefaultPeriod is the scan lookback when none is given.
const DefaultPeriod = "10y"

// Scan stages reported through Progress.
const (
	StageFetching    = "fetching"
	StageAnalyzing   = "analyzing"
	StageCorrelating = "correlating"
	StageExporting   = "exporting"
	StageDone        = "done"
)

// Source loads scan histories. *market.Service implements it.
type Source interface {
	FetchAllWith(ctx context.Context, refs []market.AssetRef, load market.HistoryFunc) ([]market.Loaded, error)
	ScanHistory(ctx context.Context, class catalog.AssetClass, id, period string) (*models.History, error)
}

// Request selects what to scan. Class limits the default universe to one
// class; Assets are scanned in addition.
type Request struct {
	Period string            `json:"period"`
	Class  string            `json:"class,omitempty"`
	Assets []market.AssetRef `json:"assets,omitempty"`
}

// Progress is one scan status update.
type Progress struct {
	ScanID string `json:"scan_id"`
	Stage  string `json:"stage"`
	Done   int    `json:"done"`
	Total  int    `json:"total"`
	Asset  string `json:"asset,omitempty"`
}

// ProgressFunc receives updates. It is called from several goroutines
// during the fetch stage but never concurrently.
type ProgressFunc func(Progress)

// DateRange spans the analyzed assets.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Result is the scan report.
type Result struct {
	ScanID                 string                               `json:"scan_id"`
	Period                 string                               `json:"period"`
	GeneratedAt            time.Time                            `json:"generated_at"`
	AssetsAnalyzed         int                                  `json:"assets_analyzed"`
	TotalDataPoints        int                                  `json:"total_data_points"`
	DurationSeconds        float64                              `json:"analysis_duration_seconds"`
	DateRange              DateRange                            `json:"date_range"`
	ClassSummary           map[catalog.AssetClass]*ClassSummary `json:"class_summary"`
	Assets                 []*AssetStats                        `json:"assets"`
	Failed                 []string                             `json:"failed_assets"`
	CorrelationMatrix      [][]float64                          `json:"correlation_matrix"`
	SpearmanMatrix         [][]float64                          `json:"spearman_matrix"`
	Tickers                []string                             `json:"tickers"`
	AssetClassMap          map[string]catalog.AssetClass        `json:"asset_class_map"`
	TopCorrelations        []*Pair                              `json:"top_correlations"`
	BottomCorrelations     []*Pair                              `json:"bottom_correlations"`
	SurprisingCorrelations []*Pair                              `json:"surprising_correlations"`
	Heatmap                *Heatmap                             `json:"heatmap"`
	Regimes                map[string]Regime                    `json:"regime_analysis"`
	ChartData              []ChartPoint                         `json:"chart_data"`
	SnapshotFile           string                               `json:"snapshot_file,omitempty"`
}

// Scanner runs scans against a Source.
type Scanner struct {
	src       Source
	cat       *catalog.Catalog
	log       zerolog.Logger
	exportDir string
	rf        float64
	now       func() time.Time
}

type Option func(*Scanner)

// WithLogger sets the scanner logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// WithExportDir enables snapshot export into dir.
func WithExportDir(dir string) Option {
	return func(s *Scanner) { s.exportDir = dir }
}

// WithCatalog sets the catalog used for display names.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Scanner) { s.cat = c }
}

// WithRiskFreeRate sets the annual rate used for Sharpe ratios.
func WithRiskFreeRate(rf float64) Option {
	return func(s *Scanner) { s.rf = rf }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

func NewScanner(src Source, opts ...Option) *Scanner {
	s := &Scanner{src: src, log: log.Logger, rf: DefaultRiskFreeRate, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.cat == nil {
		s.cat = catalog.Default()
	}
	s.log = s.log.With().Str("component", "macro-scan").Logger()
	return s
}

// Run scans req. progress may be nil. Assets that fail to load or have
// too little data are listed in Result.Failed; the scan fails only when
// none could be analyzed.
func (s *Scanner) Run(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	started := s.now()
	period := req.Period
	if period == "" {
		period = DefaultPeriod
	}
	var class catalog.AssetClass
	if req.Class != "" {
		c, err := catalog.ParseClass(req.Class)
		if err != nil {
			return nil, market.Invalid("%v", err)
		}
		class = c
	}

	scanID := uuid.NewString()
	refs := Universe(class, req.Assets)
	report := serialize(progress)
	report(Progress{ScanID: scanID, Stage: StageFetching, Total: len(refs)})

	l := s.log.With().Str("scan_id", scanID).Logger()
	l.Info().Str("period", period).Int("assets", len(refs)).Msg("scan started")

	var (
		mu   sync.Mutex
		seen = make(map[string]bool, len(refs))
	)
	load := func(ctx context.Context, c catalog.AssetClass, id string) (*models.History, error) {
		h, err := s.src.ScanHistory(ctx, c, id, period)
		key := string(c) + ":" + id
		mu.Lock()
		if !seen[key] {
			seen[key] = true
			report(Progress{ScanID: scanID, Stage: StageFetching, Done: len(seen), Total: len(refs), Asset: key})
		}
		mu.Unlock()
		return h, err
	}
	loaded, err := s.src.FetchAllWith(ctx, refs, load)
	if err != nil {
		return nil, err
	}

	report(Progress{ScanID: scanID, Stage: StageAnalyzing, Done: len(refs), Total: len(refs)})
	assets, failed := s.analyze(loaded)
	l.Info().Int("analyzed", len(assets)).Int("failed", len(failed)).Msg("assets analyzed")
	if len(assets) == 0 {
		return nil, market.Insufficient("no assets could be analyzed")
	}

	report(Progress{ScanID: scanID, Stage: StageCorrelating, Done: len(refs), Total: len(refs)})
	corr, err := correlate(ctx, assets)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ScanID:                 scanID,
		Period:                 period,
		GeneratedAt:            started.UTC(),
		AssetsAnalyzed:         len(assets),
		DateRange:              dateRange(assets),
		ClassSummary:           summarizeClasses(assets),
		Assets:                 assets,
		Failed:                 failed,
		CorrelationMatrix:      corr.Pearson,
		SpearmanMatrix:         corr.Spearman,
		Tickers:                corr.Tickers,
		AssetClassMap:          corr.Classes,
		TopCorrelations:        corr.Top,
		BottomCorrelations:     corr.Bottom,
		SurprisingCorrelations: corr.Surprising,
		Heatmap:                buildHeatmap(corr),
		Regimes:                detectRegimes(assets),
		ChartData:              chartData(assets),
	}
	for _, a := range assets {
		res.TotalDataPoints += a.DataPoints
	}

	if s.exportDir != "" {
		report(Progress{ScanID: scanID, Stage: StageExporting, Done: len(refs), Total: len(refs)})
		name, err := WriteSnapshot(s.exportDir, newSnapshot(scanID, period, started, assets, corr.All))
		if err != nil {
			l.Warn().Err(err).Msg("snapshot export failed")
		} else {
			res.SnapshotFile = name
		}
	}

	res.DurationSeconds = models.Round(s.now().Sub(started).Seconds(), 1)
	report(Progress{ScanID: scanID, Stage: StageDone, Done: len(refs), Total: len(refs)})
	l.Info().Float64("seconds", res.DurationSeconds).Int("pairs", len(corr.All)).Msg("scan complete")
	return res, nil
}

// analyze keeps the first asset per ticker.
func (s *Scanner) analyze(loaded []market.Loaded) ([]*AssetStats, []string) {
	assets := []*AssetStats{}
	failed := []string{}
	tickers := make(map[string]bool)
	for _, ld := range loaded {
		if ld.Err != nil || ld.History == nil {
			failed = append(failed, ld.Ref.String())
			continue
		}
		a := analyzeAsset(ld.Class, s.displayName(ld.Class, ld.Ref.ID, ld.History.Ticker), ld.History, s.rf)
		if a == nil {
			s.log.Debug().Str("asset", ld.Ref.String()).Int("bars", len(ld.History.Data)).Msg("too few prices")
			failed = append(failed, ld.Ref.String())
			continue
		}
		if tickers[a.Ticker] {
			continue
		}
		tickers[a.Ticker] = true
		assets = append(assets, a)
	}
	return assets, failed
}

func (s *Scanner) displayName(class catalog.AssetClass, id, ticker string) string {
	switch class {
	case catalog.ClassMacro:
		if info, ok := s.cat.ResolveMacro(id); ok {
			return info.Name
		}
	case catalog.ClassCommodities:
		return s.cat.CommodityName(id, ticker)
	case catalog.ClassCrypto:
		return catalog.CoinName(s.cat.ResolveCrypto(id))
	}
	return ticker
}

func dateRange(assets []*AssetStats) DateRange {
	var r DateRange
	for _, a := range assets {
		if a.StartDate != "" && (r.Start == "" || a.StartDate < r.Start) {
			r.Start = a.StartDate
		}
		if a.EndDate > r.End {
			r.End = a.EndDate
		}
	}
	return r
}

// serialize makes f safe to call from several goroutines.
func serialize(f ProgressFunc) ProgressFunc {
	if f == nil {
		return func(Progress) {}
	}
	var mu sync.Mutex
	return func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		f(p)
	}
}
