package macro

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stonks/internal/analysis/technical"
	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/pkg/models"
)

// ─── fixtures ───────────────────────────────────────────────────────

func date(i int) string {
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format(time.DateOnly)
}

func series(ticker string, n int, price func(i int) float64) *models.History {
	bars := make([]models.OHLCV, n)
	for i := range bars {
		bars[i] = models.OHLCV{Date: date(i), Close: price(i)}
	}
	return models.NewHistory(ticker, "test", bars)
}

func wave(base, amp, drift float64) func(int) float64 {
	return func(i int) float64 {
		return base * (1 + drift*float64(i) + amp*math.Sin(float64(i)*0.7))
	}
}

type fakeSource struct {
	histories map[string]*models.History
}

func (f *fakeSource) ScanHistory(_ context.Context, c catalog.AssetClass, id, _ string) (*models.History, error) {
	if h, ok := f.histories[string(c)+":"+id]; ok {
		return h, nil
	}
	return nil, errors.New("no data")
}

func (f *fakeSource) FetchAllWith(ctx context.Context, refs []market.AssetRef, load market.HistoryFunc) ([]market.Loaded, error) {
	out := make([]market.Loaded, len(refs))
	for i, r := range refs {
		c, err := r.Class()
		out[i] = market.Loaded{Ref: r, Class: c, Err: err}
		if err == nil {
			out[i].History, out[i].Err = load(ctx, c, r.ID)
		}
	}
	return out, ctx.Err()
}

func assetOf(ticker string, class catalog.AssetClass, prices []float64) *AssetStats {
	bars := make([]models.OHLCV, len(prices))
	for i, p := range prices {
		bars[i] = models.OHLCV{Date: date(i), Close: p}
	}
	return analyzeAsset(class, "", models.NewHistory(ticker, "test", bars), DefaultRiskFreeRate)
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// ─── scan ───────────────────────────────────────────────────────────

func TestScannerRun(t *testing.T) {
	src := &fakeSource{histories: map[string]*models.History{
		"indices:^GSPC":    series("^GSPC", 300, wave(4000, 0.02, 0.001)),
		"indices:^DJI":     series("^DJI", 300, wave(30000, 0.03, 0.001)),
		"indices:^VIX":     series("^VIX", 300, wave(20, -0.05, 0)),
		"commodities:gold": series("GC=F", 300, func(i int) float64 { return 1800 + math.Cos(float64(i)*1.3)*20 }),
	}}
	dir := t.TempDir()
	s := NewScanner(src, WithExportDir(dir))

	var mu sync.Mutex
	var updates []Progress
	res, err := s.Run(context.Background(), Request{
		Period: "1y",
		Class:  "index",
		Assets: []market.AssetRef{{ID: "gold", Type: "commodity"}, {ID: "^GSPC", Type: "indices"}},
	}, func(p Progress) {
		mu.Lock()
		updates = append(updates, p)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Equal(t, "1y", res.Period)
	assert.NotEmpty(t, res.ScanID)
	assert.Equal(t, 4, res.AssetsAnalyzed)
	assert.Equal(t, 1200, res.TotalDataPoints)
	assert.Len(t, res.Failed, 11)
	assert.Equal(t, DateRange{Start: date(0), End: date(299)}, res.DateRange)

	require.Len(t, res.Tickers, 4)
	require.Len(t, res.CorrelationMatrix, 4)
	for i := range res.CorrelationMatrix {
		assert.Equal(t, 1.0, res.CorrelationMatrix[i][i])
		assert.Equal(t, 1.0, res.SpearmanMatrix[i][i])
		for j := range res.CorrelationMatrix {
			assert.Equal(t, res.CorrelationMatrix[i][j], res.CorrelationMatrix[j][i])
		}
	}
	assert.Equal(t, catalog.ClassCommodities, res.AssetClassMap["GC=F"])

	require.Len(t, res.TopCorrelations, 6)
	require.Len(t, res.BottomCorrelations, 6)
	assert.GreaterOrEqual(t, res.TopCorrelations[0].Pearson, res.TopCorrelations[5].Pearson)
	assert.LessOrEqual(t, res.BottomCorrelations[0].Pearson, res.BottomCorrelations[5].Pearson)
	for _, p := range res.TopCorrelations {
		assert.NotNil(t, p.Kendall, "%s/%s", p.Asset1, p.Asset2)
		assert.NotNil(t, p.MutualInfo)
	}
	for _, p := range res.SurprisingCorrelations {
		assert.False(t, p.SameClass)
		assert.Greater(t, p.SurprisingScore, surpriseThreshold)
	}

	require.NotNil(t, res.Heatmap)
	assert.Equal(t, []string{"^DJI", "^GSPC", "^VIX", "GC=F"}, res.Heatmap.Tickers)
	assert.Equal(t, 0, res.Heatmap.ClassBoundaries[catalog.ClassIndices])
	assert.Equal(t, 3, res.Heatmap.ClassBoundaries[catalog.ClassCommodities])
	assert.Equal(t, -1, res.Heatmap.ClassBoundaries[catalog.ClassStocks])
	assert.Len(t, res.Heatmap.Cells, 16)

	var periods int
	for _, r := range res.Regimes {
		periods += r.Periods
	}
	assert.Equal(t, 3, periods)

	require.Len(t, res.ChartData, 300)
	assert.Equal(t, date(0), res.ChartData[0]["date"])
	assert.Equal(t, 100.0, res.ChartData[0]["^GSPC"])

	assert.Equal(t, 3, res.ClassSummary[catalog.ClassIndices].Count)
	assert.Equal(t, "GC=F", res.ClassSummary[catalog.ClassCommodities].Best.Ticker)

	require.NotEmpty(t, res.SnapshotFile)
	snap, err := ReadSnapshot(filepath.Join(dir, res.SnapshotFile))
	require.NoError(t, err)
	assert.Equal(t, res.ScanID, snap.ScanID)
	assert.Len(t, snap.Assets, 4)
	assert.Len(t, snap.Pairs, 6)

	require.NotEmpty(t, updates)
	assert.Equal(t, StageFetching, updates[0].Stage)
	assert.Equal(t, 15, updates[0].Total)
	assert.Equal(t, StageDone, updates[len(updates)-1].Stage)
	var fetched int
	for _, u := range updates {
		if u.Stage == StageFetching && u.Asset != "" {
			fetched++
			assert.LessOrEqual(t, u.Done, u.Total)
		}
	}
	assert.Equal(t, 15, fetched)

	_, err = json.Marshal(res)
	require.NoError(t, err)
}

func TestScannerRunErrors(t *testing.T) {
	s := NewScanner(&fakeSource{})

	_, err := s.Run(context.Background(), Request{Class: "bonds"}, nil)
	assert.ErrorIs(t, err, market.ErrInvalidInput)

	_, err = s.Run(context.Background(), Request{Class: "crypto"}, nil)
	assert.ErrorIs(t, err, market.ErrInsufficientData)
}

func TestUniverse(t *testing.T) {
	all := Universe("", nil)
	var total int
	for _, ca := range DefaultUniverse {
		total += len(ca.IDs)
	}
	assert.Len(t, all, total)

	refs := Universe(catalog.ClassCrypto, []market.AssetRef{
		{ID: "bitcoin", Type: "crypto"},
		{ID: "AAPL", Type: "stock"},
		{ID: "x", Type: "bogus"},
	})
	assert.Equal(t, []market.AssetRef{
		{ID: "bitcoin", Type: "crypto"},
		{ID: "ethereum", Type: "crypto"},
		{ID: "AAPL", Type: "stocks"},
		{ID: "x", Type: "bogus"},
	}, refs)
}

// ─── per-asset ──────────────────────────────────────────────────────

func TestAnalyzeAsset(t *testing.T) {
	assert.Nil(t, assetOf("X", catalog.ClassStocks, linear(9, 100, 1)))

	prices := append([]float64{0, -1}, linear(10, 100, 10.0/9)...)
	a := assetOf("X", catalog.ClassStocks, prices)
	require.NotNil(t, a)

	assert.Equal(t, 10, a.DataPoints)
	assert.Equal(t, date(0), a.StartDate, "dates span every bar")
	assert.InDelta(t, 10.0, a.TotalReturn, 1e-9)
	assert.InDelta(t, (math.Pow(1.1, 10)-1)*100, a.CAGR, 1e-9, "years floor at 0.1")
	assert.Zero(t, a.MaxDrawdown)
	assert.Greater(t, a.SharpeRatio, 0.0)
	assert.Equal(t, "X", a.Name)
}

func TestClassTrend(t *testing.T) {
	up, down, flat := technical.TrendUp, technical.TrendDown, technical.TrendNeutral
	cases := []struct {
		in   []technical.Trend
		want technical.Trend
	}{
		{[]technical.Trend{up, technical.TrendStrongUp, up, flat}, up},
		{[]technical.Trend{up, up, flat}, flat},
		{[]technical.Trend{down, technical.TrendStrongDown, down}, down},
		{[]technical.Trend{up, down}, flat},
		{[]technical.Trend{flat}, flat},
	}
	for i, c := range cases {
		assert.Equal(t, c.want, classTrend(c.in), "case %d", i)
	}
}

// ─── correlations ───────────────────────────────────────────────────

func TestAlignReturnsTrailingWindow(t *testing.T) {
	a := assetOf("A", catalog.ClassStocks, linear(40, 100, 1))
	b := assetOf("B", catalog.ClassStocks, linear(25, 100, 1))
	short := assetOf("C", catalog.ClassStocks, linear(15, 100, 1))

	valid, aligned := alignReturns([]*AssetStats{a, b, short})
	require.Len(t, valid, 2)
	assert.Len(t, aligned["A"], 24)
	assert.Equal(t, a.returns[15:], aligned["A"])
}

func TestCorrelateSameClassNeverSurprising(t *testing.T) {
	a := assetOf("A", catalog.ClassStocks, series("A", 60, wave(100, 0.05, 0)).Closes())
	b := assetOf("B", catalog.ClassStocks, series("B", 60, wave(50, 0.05, 0)).Closes())
	c, err := correlate(context.Background(), []*AssetStats{a, b})
	require.NoError(t, err)

	require.Len(t, c.All, 1)
	assert.InDelta(t, 1.0, c.All[0].Pearson, 1e-9)
	assert.Zero(t, c.All[0].SurprisingScore)
	assert.Empty(t, c.Surprising)
	require.NotNil(t, c.All[0].Kendall)
	assert.InDelta(t, 1.0, *c.All[0].Kendall, 1e-9)
}

func TestCorrelateTooFewAssets(t *testing.T) {
	c, err := correlate(context.Background(), []*AssetStats{assetOf("A", catalog.ClassStocks, linear(40, 1, 1))})
	require.NoError(t, err)
	assert.Nil(t, c.Pearson)
	assert.NotNil(t, c.Top)
	assert.Nil(t, buildHeatmap(c))
}

// ─── regimes & chart ────────────────────────────────────────────────

func TestDetectRegimes(t *testing.T) {
	prices := make([]float64, 400)
	for i := range prices {
		prices[i] = 100 * math.Pow(1.002, float64(i))
	}
	spx := assetOf("^GSPC", catalog.ClassIndices, prices)
	other := assetOf("X", catalog.ClassStocks, prices)

	r := detectRegimes([]*AssetStats{other, spx})
	require.Len(t, r, 4)
	assert.Equal(t, 5, r[RegimeBull].Periods)
	assert.InDelta(t, (math.Pow(1.002, 125)-1)*100, r[RegimeBull].AvgReturn, 1e-9)
	assert.Equal(t, 6.0, r[RegimeBull].AvgDuration)
	assert.Zero(t, r[RegimeBear].Periods)

	assert.Empty(t, detectRegimes([]*AssetStats{other}))
	assert.Empty(t, detectRegimes([]*AssetStats{assetOf("^GSPC", catalog.ClassIndices, prices[:200])}))
}

func TestChartDataDownsamples(t *testing.T) {
	a := assetOf("A", catalog.ClassStocks, linear(1200, 100, 1))
	b := assetOf("B", catalog.ClassStocks, linear(1100, 50, 1))

	got := chartData([]*AssetStats{a, b})
	require.Len(t, got, 550)
	assert.Equal(t, date(2), got[1]["date"])
	assert.Equal(t, 102.0, got[1]["A"])
	assert.Equal(t, 104.0, got[1]["B"])
}

// ─── export ─────────────────────────────────────────────────────────

func TestCleanupSnapshots(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	snap := newSnapshot("0123456789", "1y", now, []*AssetStats{assetOf("A", catalog.ClassStocks, linear(20, 1, 1))}, nil)
	name, err := WriteSnapshot(dir, snap)
	require.NoError(t, err)
	assert.Equal(t, "macro_scan_20240601_000000_01234567.msgpack", name)

	oldName := SnapshotName("old", now.AddDate(0, 0, -10))
	require.NoError(t, os.WriteFile(filepath.Join(dir, oldName), []byte{0x80}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))
	old := now.AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(filepath.Join(dir, oldName), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "notes.txt"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(dir, name), now, now))

	n, err := CleanupSnapshots(dir, 7*24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(dir, name))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))

	n, err = CleanupSnapshots(filepath.Join(dir, "missing"), time.Hour, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := assetOf("A", catalog.ClassStocks, linear(30, 100, 1))
	tau := 0.5
	pairs := []*Pair{{Asset1: "A", Asset2: "B", Pearson: 0.9, Kendall: &tau}}

	name, err := WriteSnapshot(dir, newSnapshot("scan-1", "5y", time.Now(), []*AssetStats{a}, pairs))
	require.NoError(t, err)
	got, err := ReadSnapshot(filepath.Join(dir, name))
	require.NoError(t, err)

	assert.Equal(t, "5y", got.Period)
	assert.Equal(t, a.TotalReturn, got.Assets[0].TotalReturn)
	assert.Equal(t, a.Trend, got.Assets[0].Trend)
	require.NotNil(t, got.Pairs[0].Kendall)
	assert.Equal(t, 0.5, *got.Pairs[0].Kendall)
	assert.Nil(t, got.Pairs[0].MutualInfo)
}

func TestScannerRiskFreeRate(t *testing.T) {
	src := &fakeSource{histories: map[string]*models.History{
		"indices:^GSPC": series("^GSPC", 300, wave(4000, 0.02, 0.001)),
	}}
	sharpeWith := func(opts ...Option) float64 {
		res, err := NewScanner(src, opts...).Run(context.Background(), Request{Class: "indices"}, nil)
		require.NoError(t, err)
		require.Len(t, res.Assets, 1)
		return res.Assets[0].SharpeRatio
	}

	assert.Greater(t, sharpeWith(WithRiskFreeRate(0)), sharpeWith())
}
