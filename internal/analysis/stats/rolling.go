package stats

import (
	"bytes"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindow is the rolling window used by the comparison charts.
const DefaultWindow = 20

// Series is a numeric column where NaN marks "no value yet". It encodes
// NaN as JSON null so charting clients can leave gaps.
type Series []float64

// MarshalJSON implements json.Marshaler.
func (s Series) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// At returns the value at i and whether it is present.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s) || math.IsNaN(s[i]) {
		return 0, false
	}
	return s[i], true
}

func nanSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// Rolling holds annualized rolling volatility and mean return, both in
// percent and aligned with the log-return series.
type Rolling struct {
	Volatility Series `json:"rolling_volatility"`
	Mean       Series `json:"rolling_mean"`
}

// RollingStats computes Rolling over the log returns of prices. Entries
// before the first full window are NaN; both series are empty when there
// are fewer prices than the window.
func RollingStats(prices []float64, window int) Rolling {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(prices) < window {
		return Rolling{Volatility: Series{}, Mean: Series{}}
	}
	returns := LogReturns(prices)
	vol := nanSeries(len(returns))
	mean := nanSeries(len(returns))
	for i := window - 1; i < len(returns); i++ {
		w := returns[i-window+1 : i+1]
		m, sd := stat.PopMeanStdDev(w, nil)
		vol[i] = sd * sqrtYear * 100
		mean[i] = m * TradingDays * 100
	}
	return Rolling{Volatility: vol, Mean: mean}
}

// RollingCorrelation is Correlation over a trailing window of two return
// series. It is empty when the series differ in length or are shorter
// than the window.
func RollingCorrelation(a, b []float64, window int) Series {
	if window <= 0 {
		window = DefaultWindow
	}
	if len(a) != len(b) || len(a) < window {
		return Series{}
	}
	out := nanSeries(len(a))
	for i := window - 1; i < len(a); i++ {
		out[i] = Correlation(a[i-window+1:i+1], b[i-window+1:i+1])
	}
	return out
}

// DrawdownSeries gives, for every price, the percentage below the running
// peak. The peak starts at the first positive price; missing prices
// report 0.
func DrawdownSeries(prices []float64) []float64 {
	out := make([]float64, len(prices))
	var peak float64
	for _, p := range prices {
		if valid(p) {
			peak = p
			break
		}
	}
	if peak == 0 {
		return out
	}
	for i, p := range prices {
		if !valid(p) {
			continue
		}
		if p > peak {
			peak = p
		}
		out[i] = (peak - p) / peak * 100
	}
	return out
}
