package stats

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/stonks/pkg/models"
)

var nan = math.NaN()

func TestLogReturns(t *testing.T) {
	r := LogReturns([]float64{100, 110, nan, 121})
	require.Len(t, r, 3)
	assert.InDelta(t, math.Log(1.1), r[0], 1e-12)
	assert.Zero(t, r[1])
	assert.Zero(t, r[2])

	assert.Nil(t, LogReturns([]float64{100}))
}

func TestSimpleReturns(t *testing.T) {
	r := SimpleReturns([]float64{100, 110, 0, 121})
	require.Len(t, r, 3)
	assert.InDelta(t, 0.1, r[0], 1e-12)
	assert.Zero(t, r[1], "current price zero")
	assert.Zero(t, r[2], "previous price zero")
}

func TestVolatility(t *testing.T) {
	assert.InDelta(t, 0.01*math.Sqrt(252), Volatility([]float64{0.01, -0.01}), 1e-12)
	assert.Zero(t, Volatility([]float64{0.05}))
}

func TestCorrelation(t *testing.T) {
	a := []float64{0, 1, 2, 0, 3}
	b := []float64{0, 2, 4, 0, 6}
	assert.InDelta(t, 1.0, Correlation(a, b), 1e-12)

	assert.Zero(t, Correlation([]float64{1, 2}, []float64{1}), "length mismatch")
	assert.Zero(t, Correlation([]float64{0, 0, 1}, []float64{0, 0, 1}), "one usable pair")
	assert.Zero(t, Correlation([]float64{1, 1, 1}, []float64{1, 2, 3}), "constant series")
}

func TestBeta(t *testing.T) {
	market := []float64{0.01, -0.02, 0.03, 0}
	asset := []float64{0.02, -0.04, 0.06, 0}
	// sample covariance over population variance: 2 * n/(n-1) with n = 3
	assert.InDelta(t, 3.0, Beta(asset, market), 1e-9)

	assert.Equal(t, 1.0, Beta([]float64{0.1, 0.2}, []float64{0.05, 0.05}))
	assert.Equal(t, 1.0, Beta([]float64{0.1}, []float64{0.1}))
}

func TestAlpha(t *testing.T) {
	market := []float64{0.01, -0.02, 0.03, 0}
	asset := []float64{0.02, -0.04, 0.06, 0}
	ma := (0.02 - 0.04 + 0.06) / 4 * 252
	mm := (0.01 - 0.02 + 0.03) / 4 * 252
	assert.InDelta(t, ma-3*mm, Alpha(asset, market, 0), 1e-9)
}

func TestPercentile(t *testing.T) {
	v := []float64{4, 1, 3, 2}
	assert.InDelta(t, 2.5, Percentile(v, 50), 1e-12)
	assert.InDelta(t, 1.75, Percentile(v, 25), 1e-12)
	assert.Equal(t, 4.0, Percentile(v, 100))
	assert.Equal(t, []float64{4, 1, 3, 2}, v, "input untouched")
	assert.True(t, math.IsNaN(Percentile(nil, 50)))

	ps := Percentiles(v, 0, 50, 100)
	assert.Equal(t, []float64{1, 2.5, 4}, ps)
}

func TestVaRAndCVaR(t *testing.T) {
	r := make([]float64, 10)
	for i := range r {
		r[i] = float64(i+1) / 100
	}
	assert.InDelta(t, 1.45, VaR(r, 0.95), 1e-9)
	assert.InDelta(t, 1.0, CVaR(r, 0.95), 1e-9)

	assert.Zero(t, VaR(r[:9], 0.95))
	assert.Zero(t, CVaR(r[:9], 0.95))
}

func TestSortino(t *testing.T) {
	assert.Zero(t, Sortino([]float64{0.01, 0.02, 0.03}, 0), "no losing periods")
	assert.Zero(t, Sortino([]float64{0.01, -0.02, -0.02}, 0), "flat downside")

	r := []float64{0.02, -0.01, 0.03, -0.03}
	down := 0.01 * math.Sqrt(252)
	assert.InDelta(t, 0.0025*252/down, Sortino(r, 0), 1e-9)
}

func TestDrawdownSeries(t *testing.T) {
	dd := DrawdownSeries([]float64{nan, 100, 120, 90, nan, 130})
	assert.Equal(t, []float64{0, 0, 0, 25, 0, 0}, dd)
	assert.Equal(t, []float64{0, 0}, DrawdownSeries([]float64{nan, 0}))
	assert.InDelta(t, 25.0, MaxDrawdown([]float64{nan, 100, 120, 90, nan, 130}), 1e-12)
}

func TestRollingStats(t *testing.T) {
	short := RollingStats(make([]float64, 10), 20)
	assert.Empty(t, short.Volatility)
	assert.Empty(t, short.Mean)

	prices := make([]float64, 25)
	for i := range prices {
		prices[i] = 100 * math.Pow(1.01, float64(i))
	}
	rs := RollingStats(prices, 20)
	require.Len(t, rs.Volatility, 24)
	for i := 0; i < 19; i++ {
		_, ok := rs.Volatility.At(i)
		assert.False(t, ok, "index %d", i)
	}
	v, ok := rs.Volatility.At(19)
	require.True(t, ok)
	assert.InDelta(t, 0, v, 1e-9, "constant growth has no volatility")
	m, _ := rs.Mean.At(23)
	assert.InDelta(t, math.Log(1.01)*252*100, m, 1e-9)
}

func TestRollingCorrelation(t *testing.T) {
	assert.Empty(t, RollingCorrelation([]float64{1, 2}, []float64{1, 2, 3}, 2))
	assert.Empty(t, RollingCorrelation([]float64{1, 2}, []float64{1, 2}, 20))

	a := []float64{0.1, -0.2, 0.3, -0.1, 0.2}
	rc := RollingCorrelation(a, a, 3)
	require.Len(t, rc, 5)
	_, ok := rc.At(1)
	assert.False(t, ok)
	v, _ := rc.At(4)
	assert.InDelta(t, 1.0, v, 1e-12)
}

func TestSeriesMarshalJSON(t *testing.T) {
	b, err := json.Marshal(Series{1, nan, 2.5})
	require.NoError(t, err)
	assert.JSONEq(t, `[1,null,2.5]`, string(b))

	b, err = json.Marshal(struct {
		S Series `json:"s"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":[]}`, string(b))
}

func TestAlign(t *testing.T) {
	al := Align([]Column{
		{Name: "A", Points: []models.DatedValue{{Date: "2024-01-01", Value: 1}, {Date: "2024-01-03", Value: 3}}},
		{Name: "B", Points: []models.DatedValue{{Date: "2024-01-02", Value: 5}, {Date: "2024-01-04", Value: 0}}},
	})
	assert.Equal(t, []string{"2024-01-01", "2024-01-02", "2024-01-03"}, al.Dates)
	assert.Equal(t, []string{"A", "B"}, al.Names)
	assert.Equal(t, []float64{1, 1, 3}, al.Values["A"])
	b := al.Values["B"]
	assert.True(t, math.IsNaN(b[0]))
	assert.Equal(t, []float64{5, 5}, b[1:])
}

func TestAlignDuplicateNameKeepsPosition(t *testing.T) {
	al := Align([]Column{
		{Name: "A", Points: []models.DatedValue{{Date: "2024-01-01", Value: 1}}},
		{Name: "B", Points: []models.DatedValue{{Date: "2024-01-01", Value: 2}}},
		{Name: "A", Points: []models.DatedValue{{Date: "2024-01-01", Value: 7}}},
	})
	assert.Equal(t, []string{"A", "B"}, al.Names)
	assert.Equal(t, []float64{7}, al.Values["A"])
}

func TestStatistics(t *testing.T) {
	assert.Nil(t, Statistics([]float64{nan, 0}, nil))

	s := Statistics([]float64{100, 110, nan, 121}, nil)
	require.NotNil(t, s)
	assert.Equal(t, 121.0, s.CurrentPrice)
	assert.Equal(t, 100.0, s.StartPrice)
	assert.Equal(t, 100.0, s.MinPrice)
	assert.InDelta(t, 21.0, s.TotalReturn, 1e-9)
	assert.Equal(t, 1.0, s.Beta)
	assert.Zero(t, s.Alpha)
	assert.Zero(t, s.MaxDrawdown)
	assert.Zero(t, s.VaR95, "too few returns")
}

func TestStatisticsWithBenchmark(t *testing.T) {
	prices := []float64{100, 102, 101, 105, 103, 108}
	bench := LogReturns([]float64{50, 50.5, 50.2, 51, 50.8, 52})
	s := Statistics(prices, bench)
	require.NotNil(t, s)
	r := LogReturns(prices)
	assert.InDelta(t, Beta(r, bench), s.Beta, 1e-12)
	assert.InDelta(t, Alpha(r, bench, 0)*100, s.Alpha, 1e-9)

	s = Statistics(prices, bench[:3])
	assert.Equal(t, 1.0, s.Beta, "benchmark length mismatch")
}

func TestRanks(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, Ranks([]float64{10, 20, 20, 30}))
	assert.Equal(t, []float64{3, 1, 2}, Ranks([]float64{5, -1, 0}))
}

func TestSpearmanAndKendall(t *testing.T) {
	x := make([]float64, 12)
	y := make([]float64, 12)
	for i := range x {
		x[i] = float64(i)
		y[i] = math.Exp(float64(i))
	}
	assert.InDelta(t, 1.0, Spearman(x, y), 1e-12)
	assert.InDelta(t, 1.0, Kendall(x, y), 1e-12)

	rev := make([]float64, len(x))
	for i := range x {
		rev[i] = -y[i]
	}
	assert.InDelta(t, -1.0, Spearman(x, rev), 1e-12)
	assert.InDelta(t, -1.0, Kendall(x, rev), 1e-12)

	assert.Zero(t, Spearman(x[:5], y[:5]))
	assert.Zero(t, Kendall(x[:5], y[:5]))
}

func TestKendallWithTies(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	y := []float64{1, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	// one tied pair in y, no discordance: 44 / sqrt(45*44)
	assert.InDelta(t, 44/math.Sqrt(45*44), Kendall(x, y), 1e-12)
}

func TestMutualInformation(t *testing.T) {
	x := make([]float64, 40)
	for i := range x {
		x[i] = math.Sin(float64(i))
	}
	assert.InDelta(t, 1.0, MutualInformation(x, x, 20), 1e-9)

	flat := make([]float64, 40)
	assert.Zero(t, MutualInformation(x, flat, 20))
	assert.Zero(t, MutualInformation(x[:10], x[:10], 20))
}
