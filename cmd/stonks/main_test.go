package main

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/config"
	"github.com/seenimoa/stonks/internal/dashboard"
	"github.com/seenimoa/stonks/internal/dashboard/dashboardtest"
	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/pkg/models"
)

func wave(base, drift float64) func(int) float64 {
	return func(i int) float64 {
		return base * (1 + drift*float64(i)/100 + 0.03*math.Sin(float64(i)/7))
	}
}

func fakeDashboard(t *testing.T) {
	t.Helper()
	key := dashboardtest.Key
	mkt := &dashboardtest.Market{
		Histories: map[string]*models.History{
			key(catalog.ClassStocks, "AAPL"):    dashboardtest.Bars("AAPL", 300, wave(150, 0.02)),
			key(catalog.ClassStocks, "^GSPC"):   dashboardtest.Bars("^GSPC", 300, wave(4000, 0.01)),
			key(catalog.ClassCrypto, "bitcoin"): dashboardtest.Bars("bitcoin", 300, wave(30000, 0.05)),
		},
		Quotes: map[string]*models.Quote{
			key(catalog.ClassStocks, "AAPL"): {Ticker: "AAPL", Name: "Apple Inc.", CurrentPrice: 190.5, Source: "test"},
		},
		Results: []models.SearchResult{{ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", Type: "crypto"}},
	}
	orig := newDashboard
	newDashboard = func(*config.Config) (*dashboard.Dashboard, error) {
		return dashboard.New(dashboard.Config{Market: mkt, Simulations: 200, ForecastDays: 10}), nil
	}
	t.Cleanup(func() { newDashboard = orig })
}

// run executes the root command with fresh flags. Cobra keeps parsed
// values on the package-level commands between executions.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	err := rootCmd.Execute()
	return stdout.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", formatMoney(1234.5, "USD"))
	assert.Equal(t, "$1,234.50", formatMoney(1234.5, ""))
	assert.Equal(t, "4.250%", formatMoney(4.25, "%"))
	assert.Equal(t, "0.000123 USD", formatMoney(0.000123, "usd"))
	assert.Equal(t, "12.00 XYZ", formatMoney(12, "XYZ"))
}

func TestSignedPct(t *testing.T) {
	assert.Contains(t, signedPct(1.234), "+1.23%")
	assert.Contains(t, signedPct(-0.5), "-0.50%")
	assert.Equal(t, "+0.00%", signedPct(0))
}

func TestParseRefs(t *testing.T) {
	refs := parseRefs([]string{"crypto:bitcoin", "AAPL", "indices:^GSPC"})
	assert.Equal(t, []market.AssetRef{
		{ID: "bitcoin", Type: "crypto"},
		{ID: "AAPL", Type: "stocks"},
		{ID: "^GSPC", Type: "indices"},
	}, refs)
}

func TestHousekeeping(t *testing.T) {
	c := &config.Config{}
	jobs := housekeeping(c)
	require.Len(t, jobs, 1)
	assert.Equal(t, "cache-sweep", jobs[0].job.Name())
	assert.NoError(t, jobs[0].job.Run())

	dir := t.TempDir()
	stale := filepath.Join(dir, "macro_scan_old.msgpack")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	c.Scan = config.ScanConfig{ExportDir: dir, CleanupSchedule: "0 0 * * * *", SnapshotMaxAge: "1ns"}
	jobs = housekeeping(c)
	require.Len(t, jobs, 2)
	assert.Equal(t, "snapshot-cleanup", jobs[1].job.Name())
	assert.Equal(t, "0 0 * * * *", jobs[1].spec)
	assert.NoError(t, jobs[1].job.Run())
	assert.NoFileExists(t, stale)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Stonks dev")
}

func TestStatusCommandJSON(t *testing.T) {
	t.Setenv("TWELVE_DATA_KEY", "td_secret_key_999")
	out, err := run(t, "--json", "status")
	require.NoError(t, err)

	var got struct {
		Keys []config.KeyStatus `json:"keys"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Keys, 2)
	assert.True(t, got.Keys[0].IsSet)
	assert.NotContains(t, out, "td_secret_key_999")
}

func TestQuoteCommand(t *testing.T) {
	fakeDashboard(t)

	out, err := run(t, "quote", "stocks", "AAPL")
	require.NoError(t, err)
	assert.Contains(t, out, "Apple Inc. (AAPL)")
	assert.Contains(t, out, "$190.50")

	out, err = run(t, "--json", "quote", "stocks", "AAPL")
	require.NoError(t, err)
	var q models.Quote
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, 190.5, q.CurrentPrice)
}

func TestQuoteCommandErrors(t *testing.T) {
	fakeDashboard(t)

	_, err := run(t, "quote", "stocks", "NOPE")
	assert.ErrorIs(t, err, market.ErrNotFound)

	_, err = run(t, "quote", "bonds", "AAPL")
	assert.ErrorIs(t, err, market.ErrInvalidInput)

	_, err = run(t, "quote", "stocks")
	assert.Error(t, err)
}

func TestHistoryCommandLimitsRows(t *testing.T) {
	fakeDashboard(t)

	out, err := run(t, "history", "stocks", "AAPL", "--rows", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "AAPL: 300 bars")
	last := dashboardtest.Bars("AAPL", 300, wave(150, 0.02)).Data
	assert.Contains(t, out, last[299].Date)
	assert.NotContains(t, out, last[295].Date)
}

func TestAnalyzeCommand(t *testing.T) {
	fakeDashboard(t)

	out, err := run(t, "analyze", "stocks:AAPL", "crypto:bitcoin")
	require.NoError(t, err)
	assert.Contains(t, out, "Correlation")
	assert.Contains(t, out, "bitcoin")

	_, err = run(t, "analyze", "AAPL")
	assert.Error(t, err)
}

func TestForecastCommand(t *testing.T) {
	fakeDashboard(t)

	out, err := run(t, "--json", "forecast", "stocks", "AAPL", "--days", "20", "--simulations", "150")
	require.NoError(t, err)
	var f struct {
		Days  int `json:"forecast_days"`
		Sims  int `json:"num_simulations"`
		Stats []struct {
			Day int `json:"day"`
		} `json:"forecast_stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Equal(t, 20, f.Days)
	assert.Equal(t, 150, f.Sims)
	assert.Len(t, f.Stats, 21)

	_, err = run(t, "forecast", "stocks", "AAPL", "--simulations", "5")
	assert.ErrorIs(t, err, market.ErrInvalidInput)
}

func TestInvestCommand(t *testing.T) {
	fakeDashboard(t)

	out, err := run(t, "--json", "invest", "stocks", "AAPL", "--recurring", "100", "--frequency", "monthly")
	require.NoError(t, err)
	var res struct {
		Investment struct {
			Initial   float64 `json:"initial_amount"`
			Recurring float64 `json:"recurring_amount"`
		} `json:"investment"`
		Benchmark *struct {
			Ticker string `json:"benchmark_ticker"`
		} `json:"benchmark_comparison"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1000.0, res.Investment.Initial)
	assert.Equal(t, 100.0, res.Investment.Recurring)
	require.NotNil(t, res.Benchmark)
	assert.Equal(t, "^GSPC", res.Benchmark.Ticker)

	out, err = run(t, "invest", "stocks", "AAPL", "--initial", "5000")
	require.NoError(t, err)
	assert.Contains(t, out, "$5,000.00")
}

func TestSearchCommand(t *testing.T) {
	fakeDashboard(t)

	out, err := run(t, "search", "bit")
	require.NoError(t, err)
	assert.Contains(t, out, "Bitcoin")
}

func TestSentimentCommandWithoutFeed(t *testing.T) {
	fakeDashboard(t)

	_, err := run(t, "sentiment", "AAPL")
	assert.ErrorIs(t, err, market.ErrNotFound)
}

func TestProvidersCommand(t *testing.T) {
	out, err := run(t, "providers")
	require.NoError(t, err)
	assert.Contains(t, out, "coingecko")
	assert.Contains(t, out, "MacroSeries")
}
