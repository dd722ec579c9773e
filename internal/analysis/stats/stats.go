// Package stats holds the numeric building blocks used by the comparison,
// forecast and macro analytics: returns, volatility, correlation, beta,
// tail risk and rolling windows.
//
// Series use NaN to mark a missing observation. Prices are valid when they
// are strictly positive.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// TradingDays is the annualization factor for daily series.
const TradingDays = 252

// sqrtYear is the volatility annualization factor.
var sqrtYear = math.Sqrt(TradingDays)

func valid(p float64) bool { return p > 0 }

// LogReturns returns ln(p[i]/p[i-1]) for each step, or 0 when either price
// is missing or not positive. The result has len(prices)-1 elements.
func LogReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if valid(prices[i]) && valid(prices[i-1]) {
			out[i-1] = math.Log(prices[i] / prices[i-1])
		}
	}
	return out
}

// SimpleReturns returns p[i]/p[i-1]-1 for each step, or 0 when the previous
// price is not positive or the current one is missing or zero.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		cur, prev := prices[i], prices[i-1]
		if valid(prev) && cur != 0 && !math.IsNaN(cur) {
			out[i-1] = (cur - prev) / prev
		}
	}
	return out
}

// Volatility is the annualized population standard deviation of returns.
func Volatility(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return stat.PopStdDev(returns, nil) * sqrtYear
}

// nonZeroPairs drops the positions where both series are zero, which is
// how forward-filled gaps show up in return space.
func nonZeroPairs(a, b []float64) (x, y []float64) {
	x = make([]float64, 0, len(a))
	y = make([]float64, 0, len(b))
	for i := range a {
		if a[i] != 0 || b[i] != 0 {
			x = append(x, a[i])
			y = append(y, b[i])
		}
	}
	return x, y
}

// Pearson is the plain correlation coefficient, 0 when undefined.
func Pearson(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	return finiteOr(stat.Correlation(a, b, nil), 0)
}

// Correlation is the Pearson correlation of two equally long return series
// after dropping positions where both are zero.
func Correlation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	x, y := nonZeroPairs(a, b)
	if len(x) < 2 {
		return 0
	}
	return finiteOr(stat.Correlation(x, y, nil), 0)
}

// Beta is the sample covariance of asset and market returns divided by
// the population variance of the market, over positions where at least
// one series moved. It falls back to 1 when undefined.
func Beta(asset, market []float64) float64 {
	if len(asset) != len(market) || len(asset) < 2 {
		return 1
	}
	x, y := nonZeroPairs(asset, market)
	if len(x) < 2 {
		return 1
	}
	v := stat.PopVariance(y, nil)
	if v == 0 {
		return 1
	}
	return finiteOr(stat.Covariance(x, y, nil)/v, 1)
}

// Alpha is annualized Jensen's alpha.
func Alpha(asset, market []float64, riskFree float64) float64 {
	if len(asset) < 2 || len(market) == 0 {
		return 0
	}
	beta := Beta(asset, market)
	ra := stat.Mean(asset, nil) * TradingDays
	rm := stat.Mean(market, nil) * TradingDays
	return finiteOr(ra-(riskFree+beta*(rm-riskFree)), 0)
}

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between the closest ranks. values is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return percentileSorted(sorted, p)
}

// Percentiles evaluates several percentiles with a single sort.
func Percentiles(values []float64, ps ...float64) []float64 {
	out := make([]float64, len(ps))
	if len(values) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	for i, p := range ps {
		out[i] = percentileSorted(sorted, p)
	}
	return out
}

func percentileSorted(sorted []float64, p float64) float64 {
	p = min(max(p, 0), 100)
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// minTailObservations is the smallest sample VaR and CVaR are computed on.
const minTailObservations = 10

// VaR is the historical value at risk at the given confidence, in percent.
func VaR(returns []float64, confidence float64) float64 {
	if len(returns) < minTailObservations {
		return 0
	}
	return Percentile(returns, (1-confidence)*100) * 100
}

// CVaR is the mean of the returns at or below the VaR threshold, in percent.
func CVaR(returns []float64, confidence float64) float64 {
	if len(returns) < minTailObservations {
		return 0
	}
	threshold := Percentile(returns, (1-confidence)*100)
	return TailMean(returns, threshold) * 100
}

// TailMean averages the values at or below threshold, returning threshold
// itself when none qualify.
func TailMean(values []float64, threshold float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v <= threshold {
			sum += v
			n++
		}
	}
	if n == 0 {
		return threshold
	}
	return sum / float64(n)
}

// Sortino divides annualized excess return by annualized downside
// deviation. It is 0 when there are no losing periods.
func Sortino(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	var neg []float64
	for _, r := range returns {
		if r < 0 {
			neg = append(neg, r)
		}
	}
	if len(neg) == 0 {
		return 0
	}
	downside := stat.PopStdDev(neg, nil) * sqrtYear
	if downside == 0 {
		return 0
	}
	return finiteOr((stat.Mean(returns, nil)*TradingDays-riskFree)/downside, 0)
}

// MaxDrawdown is the largest peak-to-trough decline in percent, measured
// over the positive prices only.
func MaxDrawdown(prices []float64) float64 {
	var peak, worst float64
	for _, p := range prices {
		if !valid(p) {
			continue
		}
		if p > peak {
			peak = p
		}
		if dd := (peak - p) / peak; dd > worst {
			worst = dd
		}
	}
	return worst * 100
}

// Positive returns the strictly positive values in order.
func Positive(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if valid(v) {
			out = append(out, v)
		}
	}
	return out
}

func finiteOr(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
