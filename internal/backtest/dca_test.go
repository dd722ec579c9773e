package backtest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

func bars(dates []string, closes []float64) *models.History {
	out := make([]models.OHLCV, len(dates))
	for i := range dates {
		out[i] = models.OHLCV{Date: dates[i], Close: closes[i]}
	}
	return models.NewHistory("TEST", "test", out)
}

var monthlyDates = []string{"2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02", "2024-03-01"}

// ════════════════════════════════════════════════════════════════════
// Schedule
// ════════════════════════════════════════════════════════════════════

func TestParseFrequency(t *testing.T) {
	for in, want := range map[string]Frequency{"": Once, "ONCE": Once, " weekly ": Weekly, "monthly": Monthly, "Daily": Daily} {
		got, err := ParseFrequency(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseFrequency("hourly")
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestPurchaseDays(t *testing.T) {
	dates := []string{"2024-12-27", "2024-12-30", "2024-12-31", "2025-01-02", "2025-01-06", "2025-01-07"}

	// ISO week 1 spans the new year; each calendar year gets its own buy
	assert.Equal(t, map[int]bool{1: true, 3: true, 4: true}, Weekly.purchaseDays(dates))
	assert.Equal(t, map[int]bool{1: true, 3: true}, Monthly.purchaseDays(dates))
	assert.Len(t, Daily.purchaseDays(dates), 5)
	assert.Empty(t, Once.purchaseDays(dates))
	assert.Empty(t, Weekly.purchaseDays(nil))
	assert.Empty(t, Monthly.purchaseDays(dates[:1]))
}

func TestPurchaseDaysBuysDayOne(t *testing.T) {
	dates := []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-02-01", "2024-02-02"}
	assert.Equal(t, map[int]bool{1: true, 3: true}, Monthly.purchaseDays(dates))
	assert.Equal(t, map[int]bool{1: true}, Weekly.purchaseDays(dates[:3]))
}

// ════════════════════════════════════════════════════════════════════
// Invest
// ════════════════════════════════════════════════════════════════════

func TestInvestMonthly(t *testing.T) {
	h := bars(monthlyDates, []float64{10, 20, 10, 20, 25})
	bench := bars(monthlyDates, []float64{100, 100, 100, 100, 200})

	res, err := Invest(Request{
		Ticker: "TEST", AssetType: "stock", Period: "3mo",
		Initial: 100, Recurring: 50, Frequency: Monthly,
		BenchmarkTicker: DefaultBenchmark,
	}, h, bench)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-30", res.StartDate)
	assert.Equal(t, "2024-03-01", res.EndDate)
	assert.InDelta(t, 150.0, res.PriceChangePct, 1e-9)

	inv := res.Investment
	// day 0 initial, then day 1 (January), day 2 (February), day 4 (March)
	assert.Equal(t, 4, inv.NumPurchases)
	assert.InDelta(t, 250.0, inv.TotalInvested, 1e-9)
	assert.InDelta(t, 19.5, inv.SharesBought, 1e-9)
	assert.InDelta(t, 250.0/19.5, inv.AvgCostBasis, 1e-9)

	assert.InDelta(t, 487.5, res.Results.FinalValue, 1e-9)
	assert.InDelta(t, 237.5, res.Results.TotalReturn, 1e-9)
	assert.InDelta(t, 95.0, res.Results.TotalReturnPct, 1e-9)
	assert.Greater(t, res.Results.CAGR, 0.0)

	assert.InDelta(t, 150.0, res.Comparison.ReturnPct, 1e-9)
	assert.InDelta(t, 625.0, res.Comparison.FinalValue, 1e-9)
	assert.InDelta(t, -55.0, res.Comparison.DCAAdvantage, 1e-9)

	assert.InDelta(t, 30.0, res.Risk.MaxDrawdown, 1e-9)
	assert.Greater(t, res.Risk.Volatility, 0.0)

	require.NotNil(t, res.Benchmark)
	assert.Equal(t, DefaultBenchmark, res.Benchmark.Ticker)
	assert.InDelta(t, 450.0, res.Benchmark.FinalValue, 1e-9)
	assert.InDelta(t, 80.0, res.Benchmark.ReturnPct, 1e-9)
	assert.InDelta(t, 100.0, res.Benchmark.PriceChangePct, 1e-9)
	assert.InDelta(t, 15.0, res.Benchmark.Alpha, 1e-9)
	assert.True(t, res.Benchmark.Outperformed)

	m := res.Monthly
	assert.Equal(t, 2, m.TotalMonths)
	assert.Equal(t, 2, m.WinningMonths)
	assert.Equal(t, 100.0, m.WinRate)
	require.NotNil(t, m.BestMonth)
	assert.Equal(t, "2024-02", m.BestMonth.Month)
	assert.Equal(t, "2024-01", m.WorstMonth.Month)
	assert.InDelta(t, 75.0, m.WorstMonth.ReturnPct, 1e-9)
	assert.InDelta(t, (75+(487.5/175-1)*100)/2, m.AvgMonthlyReturn, 1e-9)
}

func TestInvestTimeline(t *testing.T) {
	h := bars(monthlyDates, []float64{10, 20, 10, 20, 25})
	bench := bars(monthlyDates[:4], []float64{100, 100, 100, 100})

	res, err := Invest(Request{Initial: 100, Recurring: 50, Frequency: Monthly}, h, bench)
	require.NoError(t, err)
	require.Len(t, res.Timeline, 5)

	day0 := res.Timeline[0]
	assert.Equal(t, 100.0, day0.InvestedToday)
	assert.InDelta(t, 10.0, day0.Shares, 1e-9)
	assert.Zero(t, day0.ReturnPct)
	require.NotNil(t, day0.BenchmarkValue)
	assert.InDelta(t, 100.0, *day0.BenchmarkValue, 1e-9)

	day1 := res.Timeline[1]
	assert.Equal(t, 50.0, day1.InvestedToday)
	assert.InDelta(t, 12.5, day1.Shares, 1e-9)

	day2 := res.Timeline[2]
	assert.Equal(t, 50.0, day2.InvestedToday)
	assert.InDelta(t, 200.0, day2.Invested, 1e-9)
	assert.InDelta(t, 30.0, day2.Drawdown, 1e-9)
	assert.InDelta(t, -25.0, day2.ProfitLoss, 1e-9)

	last := res.Timeline[4]
	assert.Nil(t, last.BenchmarkPrice)
	assert.Nil(t, last.BenchmarkValue)
	assert.Nil(t, res.Benchmark, "benchmark missing on the last day")

	_, err = json.Marshal(res)
	require.NoError(t, err)
}

func TestInvestLumpSum(t *testing.T) {
	h := bars(monthlyDates, []float64{10, 11, 12, 13, 15})
	res, err := Invest(Request{Initial: 1000, Recurring: 50, Frequency: Once}, h, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Investment.NumPurchases)
	assert.InDelta(t, 50.0, res.Results.TotalReturnPct, 1e-9)
	assert.InDelta(t, 0.0, res.Comparison.DCAAdvantage, 1e-9)
	assert.Zero(t, res.Risk.MaxDrawdown)
	assert.Nil(t, res.Benchmark)
}

func TestInvestRecurringOnly(t *testing.T) {
	h := bars(monthlyDates, []float64{10, 10, 10, 10, 10})
	res, err := Invest(Request{Recurring: 10, Frequency: Daily}, h, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Investment.NumPurchases)
	assert.Zero(t, res.Timeline[0].Value)
	assert.InDelta(t, 40.0, res.Investment.TotalInvested, 1e-9)
}

func TestInvestNothingBought(t *testing.T) {
	h := bars(monthlyDates, []float64{10, 11, 12, 13, 15})
	res, err := Invest(Request{Recurring: 10, Frequency: Once}, h, nil)
	require.NoError(t, err)

	assert.Zero(t, res.Investment.NumPurchases)
	assert.Zero(t, res.Investment.AvgCostBasis)
	assert.Zero(t, res.Results.FinalValue)
	assert.Zero(t, res.Results.TotalReturnPct)
	assert.Zero(t, res.Comparison.ReturnPct)
	assert.Zero(t, res.Risk.Volatility)
	assert.InDelta(t, 50.0, res.PriceChangePct, 1e-9)
	assert.Len(t, res.Timeline, 5)
	assert.Zero(t, res.Monthly.TotalMonths)
}

func TestInvestSortsAndFilters(t *testing.T) {
	h := bars(
		[]string{"2024-01-05", "2024-01-01", "2024-01-03", "", "2024-01-02", "2024-01-04", "2024-01-06"},
		[]float64{15, 10, 12, 99, 0, 11, 16},
	)
	res, err := Invest(Request{Initial: 100}, h, nil)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", res.StartDate)
	assert.Equal(t, 10.0, res.StartPrice)
	assert.Len(t, res.Timeline, 5)
}

func TestInvestErrors(t *testing.T) {
	h := bars(monthlyDates[:4], []float64{1, 2, 3, 4})

	_, err := Invest(Request{Initial: 100}, h, nil)
	assert.ErrorIs(t, err, market.ErrInsufficientData)

	_, err = Invest(Request{Initial: -1}, h, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Invest(Request{Recurring: -10, Frequency: Daily}, h, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Invest(Request{Initial: 100}, nil, nil)
	assert.ErrorIs(t, err, market.ErrInsufficientData)
}

func TestMonthlyAnalysisEmpty(t *testing.T) {
	a := monthlyAnalysis([]TimelinePoint{{Date: "2024-01-01", Value: 10}})
	assert.Zero(t, a.TotalMonths)
	assert.Nil(t, a.BestMonth)
	assert.NotNil(t, a.Months)
}
