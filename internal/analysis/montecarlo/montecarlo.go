// Package montecarlo forecasts price distributions by simulating
// Geometric Brownian Motion paths calibrated on historical log returns.
package montecarlo

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/seenimoa/stonks/internal/analysis/stats"
	"github.com/seenimoa/stonks/internal/market"
)

const (
	DefaultDays        = 252
	DefaultSimulations = 10000
	DefaultSeed        = 42

	minHistory     = 20
	drawdownSample = 1000
	samplePaths    = 100
)

var (
	bandPercentiles = []float64{1, 5, 10, 25, 50, 75, 90, 95, 99}
	horizons        = []int{21, 63, 126, 252}
)

// Options controls the simulation. Zero values select the defaults; a nil
// Seed selects DefaultSeed, so seed 0 stays requestable.
type Options struct {
	Days        int
	Simulations int
	Seed        *uint64
}

func (o Options) withDefaults() Options {
	if o.Days <= 0 {
		o.Days = DefaultDays
	}
	if o.Simulations <= 0 {
		o.Simulations = DefaultSimulations
	}
	if o.Seed == nil {
		seed := uint64(DefaultSeed)
		o.Seed = &seed
	}
	return o
}

// Input is the calibration history for one asset.
type Input struct {
	Ticker    string
	AssetType string
	Lookback  string
	Dates     []string
	Prices    []float64
}

// Simulate runs the forecast. Non-positive prices are dropped; at least 20
// must remain. The same seed always produces the same paths.
func Simulate(in Input, opts Options) (*Forecast, error) {
	opts = opts.withDefaults()

	var prices []float64
	var dates []string
	for i, p := range in.Prices {
		if p > 0 {
			prices = append(prices, p)
			if i < len(in.Dates) {
				dates = append(dates, in.Dates[i])
			} else {
				dates = append(dates, "")
			}
		}
	}
	if len(prices) < minHistory {
		return nil, market.Insufficient("need at least %d price points, have %d", minHistory, len(prices))
	}

	params, dailyMean, dailyVol := calibrate(prices)
	current := prices[len(prices)-1]

	paths := simulatePaths(current, params.AnnualizedReturn/100, params.AnnualizedVolatility/100, opts)
	days := opts.Days

	f := &Forecast{
		Ticker:         in.Ticker,
		AssetType:      in.AssetType,
		CurrentPrice:   current,
		LookbackPeriod: in.Lookback,
		ForecastDays:   days,
		Simulations:    opts.Simulations,
		Historical: Historical{
			StartDate:  dates[0],
			EndDate:    dates[len(dates)-1],
			StartPrice: prices[0],
			EndPrice:   current,
			MinPrice:   floats.Min(prices),
			MaxPrice:   floats.Max(prices),
			MeanPrice:  stat.Mean(prices, nil),
			DataPoints: len(prices),
		},
		Parameters: params,
	}

	col := make([]float64, len(paths))
	f.ForecastStats = make([]DayStats, days+1)
	for d := 0; d <= days; d++ {
		for i, p := range paths {
			col[i] = p[d]
		}
		f.ForecastStats[d] = dayStats(d, col)
	}

	final := make([]float64, len(paths))
	finalRet := make([]float64, len(paths))
	for i, p := range paths {
		final[i] = p[days]
		finalRet[i] = (p[days]/current - 1) * 100
	}

	rp := stats.Percentiles(finalRet, bandPercentiles...)
	pp := stats.Percentiles(final, bandPercentiles...)
	f.Risk = riskMetrics(paths, current, finalRet, rp[1], rp[0], days)
	f.Risk.ParametricVaR95 = parametricVaR(dailyMean, dailyVol, days, 0.05)
	f.Scenarios = Scenarios{
		Base:        scenario("Expected outcome (median)", pp[4], rp[4]),
		Bull:        scenario("Optimistic scenario (90th percentile)", pp[6], rp[6]),
		Bear:        scenario("Pessimistic scenario (10th percentile)", pp[2], rp[2]),
		ExtremeBull: scenario("Extreme upside (99th percentile)", pp[8], rp[8]),
		ExtremeBear: scenario("Extreme downside (1st percentile)", pp[0], rp[0]),
	}
	f.Probabilities = probabilities(final, finalRet, current)

	retMean, retStd := stat.PopMeanStdDev(finalRet, nil)
	f.ReturnDistribution = ReturnDistribution{
		Mean:    retMean,
		Std:     retStd,
		Skew:    params.Skewness,
		Buckets: buckets(finalRet),
		Bands:   toBands(rp),
	}

	finMean, finStd := stat.PopMeanStdDev(final, nil)
	f.FinalDistribution = FinalDistribution{
		Mean:         finMean,
		Std:          finStd,
		Min:          floats.Min(final),
		Max:          floats.Max(final),
		Bands:        toBands(pp),
		ProbPositive: f.Probabilities.Positive,
		ProbDouble:   f.Probabilities.Double,
		ProbHalve:    f.Probabilities.Halve,
	}

	f.SamplePaths = sample(paths, samplePaths)
	return f, nil
}

// calibrate estimates drift and volatility from daily log returns.
func calibrate(prices []float64) (Parameters, float64, float64) {
	lr := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		lr[i-1] = math.Log(prices[i] / prices[i-1])
	}
	mean, sd := stat.PopMeanStdDev(lr, nil)

	skew, kurt := 0.0, 3.0
	if sd > 0 {
		skew = stat.MomentAbout(3, lr, mean, nil) / math.Pow(sd, 3)
		kurt = stat.MomentAbout(4, lr, mean, nil) / math.Pow(sd, 4)
	}

	years := float64(len(prices)) / stats.TradingDays
	cagr := math.Pow(prices[len(prices)-1]/prices[0], 1/years) - 1

	return Parameters{
		CAGR:                 cagr * 100,
		AnnualizedReturn:     mean * stats.TradingDays * 100,
		AnnualizedVolatility: sd * math.Sqrt(stats.TradingDays) * 100,
		DailyDrift:           mean * 100,
		DailyVolatility:      sd * 100,
		Skewness:             skew,
		Kurtosis:             kurt,
	}, mean, sd
}

// simulatePaths returns Simulations paths of Days+1 prices each, starting
// at start.
func simulatePaths(start, mu, sigma float64, opts Options) [][]float64 {
	dt := 1.0 / stats.TradingDays
	step := distuv.Normal{
		Mu:    (mu - 0.5*sigma*sigma) * dt,
		Sigma: sigma * math.Sqrt(dt),
		Src:   rand.NewPCG(*opts.Seed, *opts.Seed),
	}

	paths := make([][]float64, opts.Simulations)
	for i := range paths {
		p := make([]float64, opts.Days+1)
		p[0] = start
		var cum float64
		for d := 1; d <= opts.Days; d++ {
			cum += step.Rand()
			p[d] = start * math.Exp(cum)
		}
		paths[i] = p
	}
	return paths
}

func dayStats(day int, col []float64) DayStats {
	mean, std := stat.PopMeanStdDev(col, nil)
	return DayStats{
		Day:   day,
		Mean:  mean,
		Std:   std,
		Min:   floats.Min(col),
		Max:   floats.Max(col),
		Bands: toBands(stats.Percentiles(col, bandPercentiles...)),
	}
}

func riskMetrics(paths [][]float64, current float64, finalRet []float64, var95, var99 float64, days int) RiskMetrics {
	r := RiskMetrics{
		VaR95:  var95,
		VaR99:  var99,
		CVaR95: stats.TailMean(finalRet, var95),
		CVaR99: stats.TailMean(finalRet, var99),
	}

	for _, h := range horizons {
		if h >= days {
			continue
		}
		ret := make([]float64, len(paths))
		for i, p := range paths {
			ret[i] = (p[h]/current - 1) * 100
		}
		q := stats.Percentiles(ret, 5, 1)
		r.Horizons = append(r.Horizons, HorizonVaR{Days: h, VaR95: q[0], VaR99: q[1]})
	}

	n := min(drawdownSample, len(paths))
	dds := make([]float64, n)
	for i := 0; i < n; i++ {
		dds[i] = stats.MaxDrawdown(paths[i])
	}
	r.MeanMaxDrawdown = stat.Mean(dds, nil)
	r.MedianMaxDrawdown = stats.Percentile(dds, 50)
	r.P95MaxDrawdown = stats.Percentile(dds, 95)
	r.WorstDrawdown = floats.Max(dds)
	return r
}

// parametricVaR is the normal-approximation VaR of the cumulative log
// return over days, in percent.
func parametricVaR(dailyMean, dailyVol float64, days int, tail float64) float64 {
	if dailyVol == 0 {
		return (math.Exp(dailyMean*float64(days)) - 1) * 100
	}
	n := distuv.Normal{Mu: dailyMean * float64(days), Sigma: dailyVol * math.Sqrt(float64(days))}
	return (math.Exp(n.Quantile(tail)) - 1) * 100
}

func scenario(desc string, price, ret float64) Scenario {
	return Scenario{Description: desc, FinalPrice: price, ReturnPct: ret}
}

func share(values []float64, pred func(float64) bool) float64 {
	var n int
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return float64(n) / float64(len(values)) * 100
}

func probabilities(final, ret []float64, current float64) Probabilities {
	above := func(x float64) func(float64) bool { return func(v float64) bool { return v > x } }
	below := func(x float64) func(float64) bool { return func(v float64) bool { return v < x } }
	return Probabilities{
		Positive: share(ret, above(0)),
		Negative: share(ret, below(0)),
		Up10:     share(ret, above(10)),
		Up25:     share(ret, above(25)),
		Up50:     share(ret, above(50)),
		Double:   share(final, above(current*2)),
		Down10:   share(ret, below(-10)),
		Down25:   share(ret, below(-25)),
		Down50:   share(ret, below(-50)),
		Halve:    share(final, below(current*0.5)),
	}
}

var bucketEdges = []struct {
	label  string
	lo, hi float64
}{
	{"<-50%", math.Inf(-1), -50},
	{"-50% to -25%", -50, -25},
	{"-25% to -10%", -25, -10},
	{"-10% to 0%", -10, 0},
	{"0% to 10%", 0, 10},
	{"10% to 25%", 10, 25},
	{"25% to 50%", 25, 50},
	{"50% to 100%", 50, 100},
	{">100%", 100, math.Inf(1)},
}

func buckets(ret []float64) []Bucket {
	out := make([]Bucket, len(bucketEdges))
	for i, b := range bucketEdges {
		out[i] = Bucket{Range: b.label, Pct: share(ret, func(v float64) bool { return v >= b.lo && v < b.hi })}
	}
	return out
}

func sample(paths [][]float64, k int) [][]float64 {
	n := len(paths)
	if n == 0 {
		return nil
	}
	out := make([][]float64, k)
	for i := range out {
		idx := 0
		if k > 1 {
			idx = int(float64(i) * float64(n-1) / float64(k-1))
		}
		out[i] = paths[idx]
	}
	return out
}

func toBands(v []float64) Bands {
	return Bands{P1: v[0], P5: v[1], P10: v[2], P25: v[3], P50: v[4], P75: v[5], P90: v[6], P95: v[7], P99: v[8]}
}
