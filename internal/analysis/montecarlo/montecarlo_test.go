package montecarlo

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stonks/internal/market"
)

func history(n int, price func(i int) float64) Input {
	in := Input{Ticker: "TEST", AssetType: "stock", Lookback: "1y"}
	for i := 0; i < n; i++ {
		in.Dates = append(in.Dates, fmt.Sprintf("2024-01-%02d", i%28+1))
		in.Prices = append(in.Prices, price(i))
	}
	return in
}

func noisy(i int) float64 { return 100 * (1 + 0.05*math.Sin(float64(i)*1.7) + 0.001*float64(i)) }

func TestSimulateInsufficient(t *testing.T) {
	in := history(30, func(i int) float64 {
		if i%2 == 0 {
			return 0
		}
		return 100
	})
	_, err := Simulate(in, Options{})
	assert.ErrorIs(t, err, market.ErrInsufficientData)
}

func TestSimulateShape(t *testing.T) {
	f, err := Simulate(history(120, noisy), Options{Days: 30, Simulations: 500})
	require.NoError(t, err)

	assert.Equal(t, 30, f.ForecastDays)
	assert.Equal(t, 500, f.Simulations)
	assert.Equal(t, 120, f.Historical.DataPoints)
	require.Len(t, f.ForecastStats, 31)
	assert.InDelta(t, f.CurrentPrice, f.ForecastStats[0].Mean, 1e-9)
	assert.InDelta(t, 0, f.ForecastStats[0].Std, 1e-9)

	require.Len(t, f.SamplePaths, 100)
	for _, p := range f.SamplePaths {
		require.Len(t, p, 31)
		assert.Equal(t, f.CurrentPrice, p[0])
	}

	require.Len(t, f.Risk.Horizons, 1)
	assert.Equal(t, 21, f.Risk.Horizons[0].Days)
	assert.LessOrEqual(t, f.Risk.CVaR95, f.Risk.VaR95)
	assert.LessOrEqual(t, f.Risk.VaR99, f.Risk.VaR95)
	assert.GreaterOrEqual(t, f.Risk.WorstDrawdown, f.Risk.P95MaxDrawdown)

	assert.LessOrEqual(t, f.Scenarios.ExtremeBear.FinalPrice, f.Scenarios.Bear.FinalPrice)
	assert.LessOrEqual(t, f.Scenarios.Bear.FinalPrice, f.Scenarios.Base.FinalPrice)
	assert.LessOrEqual(t, f.Scenarios.Base.FinalPrice, f.Scenarios.Bull.FinalPrice)
	assert.LessOrEqual(t, f.Scenarios.Bull.FinalPrice, f.Scenarios.ExtremeBull.FinalPrice)

	var total float64
	for _, b := range f.ReturnDistribution.Buckets {
		total += b.Pct
	}
	assert.InDelta(t, 100.0, total, 1e-9)
	assert.LessOrEqual(t, f.Probabilities.Positive+f.Probabilities.Negative, 100.0)
	assert.Equal(t, f.Probabilities.Positive, f.FinalDistribution.ProbPositive)
}

func TestSimulateDeterministic(t *testing.T) {
	in := history(60, noisy)
	a, err := Simulate(in, Options{Days: 10, Simulations: 200})
	require.NoError(t, err)
	b, err := Simulate(in, Options{Days: 10, Simulations: 200})
	require.NoError(t, err)
	assert.Equal(t, a.SamplePaths, b.SamplePaths)

	seven := uint64(7)
	c, err := Simulate(in, Options{Days: 10, Simulations: 200, Seed: &seven})
	require.NoError(t, err)
	assert.NotEqual(t, a.SamplePaths, c.SamplePaths)

	def := uint64(DefaultSeed)
	d, err := Simulate(in, Options{Days: 10, Simulations: 200, Seed: &def})
	require.NoError(t, err)
	assert.Equal(t, a.SamplePaths, d.SamplePaths)
}

func TestSimulateSeedZero(t *testing.T) {
	in := history(60, noisy)
	zero := uint64(0)
	a, err := Simulate(in, Options{Days: 10, Simulations: 200, Seed: &zero})
	require.NoError(t, err)
	b, err := Simulate(in, Options{Days: 10, Simulations: 200, Seed: &zero})
	require.NoError(t, err)
	assert.Equal(t, a.SamplePaths, b.SamplePaths)

	def, err := Simulate(in, Options{Days: 10, Simulations: 200})
	require.NoError(t, err)
	assert.NotEqual(t, def.SamplePaths, a.SamplePaths)
}

func TestSimulateFlatHistory(t *testing.T) {
	f, err := Simulate(history(40, func(int) float64 { return 100 }), Options{Days: 5, Simulations: 50})
	require.NoError(t, err)

	assert.Zero(t, f.Parameters.Skewness)
	assert.Equal(t, 3.0, f.Parameters.Kurtosis)
	assert.Zero(t, f.Parameters.CAGR)
	assert.Zero(t, f.Risk.VaR95)
	assert.Zero(t, f.Probabilities.Positive)
	assert.Zero(t, f.Probabilities.Negative)
	assert.Equal(t, 100.0, f.ReturnDistribution.Buckets[4].Pct)
	assert.Empty(t, f.Risk.Horizons)
}

func TestSample(t *testing.T) {
	paths := make([][]float64, 5)
	for i := range paths {
		paths[i] = []float64{float64(i)}
	}
	got := sample(paths, 3)
	assert.Equal(t, [][]float64{{0}, {2}, {4}}, got)
}

func TestBuckets(t *testing.T) {
	b := buckets([]float64{-60, -30, -5, 0, 5, 150})
	require.Len(t, b, 9)
	assert.InDelta(t, 100.0/6, b[0].Pct, 1e-9)
	assert.InDelta(t, 200.0/6, b[4].Pct, 1e-9, "0 and 5")
	assert.Zero(t, b[7].Pct)
	assert.InDelta(t, 100.0/6, b[8].Pct, 1e-9)
}
