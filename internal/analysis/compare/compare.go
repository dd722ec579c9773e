// Package compare analyzes several assets side by side over a shared
// date axis.
package compare

import (
	"math"

	"github.com/seenimoa/stonks/internal/analysis/stats"
	"github.com/seenimoa/stonks/internal/analysis/technical"
	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/pkg/models"
)

// Input is one fetched asset. History may be nil when the fetch failed;
// such assets are skipped.
type Input struct {
	Class   catalog.AssetClass
	History *models.History
}

// Result is the full comparison payload.
type Result struct {
	Period              string                          `json:"period"`
	DataPoints          int                             `json:"data_points"`
	Tickers             []string                        `json:"tickers"`
	Dates               []string                        `json:"dates"`
	ChartData           []Row                           `json:"chart_data"`
	Statistics          map[string]*stats.Summary       `json:"statistics"`
	CorrelationMatrix   [][]float64                     `json:"correlation_matrix"`
	CorrelationLabels   []string                        `json:"correlation_labels"`
	RollingCorrelations map[string]stats.Series         `json:"rolling_correlations"`
	TrendLines          map[string]technical.TrendLines `json:"trend_lines"`
	AlignedPrices       map[string]stats.Series         `json:"aligned_prices"`
}

// Row is one chart point: "date" plus per-ticker columns. Missing rolling
// values are nil.
type Row map[string]any

// PairKey names the pair column for two tickers.
func PairKey(a, b string) string { return a + "_vs_" + b }

// Analyze compares the inputs over period. The first input serves as the
// beta/alpha benchmark when it is an index. At least two inputs must carry
// history.
func Analyze(period string, inputs []Input) (*Result, error) {
	var cols []stats.Column
	for _, in := range inputs {
		if in.History == nil || len(in.History.Data) == 0 {
			continue
		}
		cols = append(cols, stats.Column{Name: in.History.Ticker, Points: models.HistoryToSeries(in.History)})
	}
	if len(cols) < 2 {
		return nil, market.Insufficient("could not fetch data for enough assets")
	}

	al := stats.Align(cols)
	if len(al.Dates) == 0 {
		return nil, market.Insufficient("no overlapping dates found")
	}
	tickers := al.Names

	var benchmark []float64
	if first := inputs[0]; first.Class == catalog.ClassIndices && first.History != nil {
		if prices, ok := al.Values[first.History.Ticker]; ok {
			benchmark = stats.LogReturns(prices)
		}
	}

	res := &Result{
		Period:              period,
		DataPoints:          len(al.Dates),
		Tickers:             tickers,
		Dates:               al.Dates,
		Statistics:          make(map[string]*stats.Summary, len(tickers)),
		CorrelationLabels:   tickers,
		RollingCorrelations: make(map[string]stats.Series),
		TrendLines:          make(map[string]technical.TrendLines, len(tickers)),
		AlignedPrices:       make(map[string]stats.Series, len(tickers)),
	}

	returns := make(map[string][]float64, len(tickers))
	rolling := make(map[string]stats.Rolling, len(tickers))
	drawdowns := make(map[string][]float64, len(tickers))
	for _, t := range tickers {
		prices := al.Values[t]
		returns[t] = stats.LogReturns(prices)
		res.Statistics[t] = stats.Statistics(prices, benchmark)
		res.TrendLines[t] = technical.FindTrendLines(al.Dates, prices, technical.MinTrendGap)
		res.AlignedPrices[t] = prices
		rolling[t] = stats.RollingStats(prices, stats.DefaultWindow)
		drawdowns[t] = stats.DrawdownSeries(prices)
	}

	n := len(tickers)
	res.CorrelationMatrix = make([][]float64, n)
	for i := range res.CorrelationMatrix {
		res.CorrelationMatrix[i] = make([]float64, n)
		res.CorrelationMatrix[i][i] = 1
	}
	var pairs []string
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := tickers[i], tickers[j]
			c := stats.Correlation(returns[a], returns[b])
			res.CorrelationMatrix[i][j] = c
			res.CorrelationMatrix[j][i] = c
			key := PairKey(a, b)
			pairs = append(pairs, key)
			res.RollingCorrelations[key] = stats.RollingCorrelation(returns[a], returns[b], stats.DefaultWindow)
		}
	}

	res.ChartData = chartRows(al, drawdowns, rolling, pairs, res.RollingCorrelations)
	return res, nil
}

// chartRows normalizes every ticker to 100 at its first positive price.
// Where a ticker has no price the previous row's values carry forward, or
// 100 before its first observation.
func chartRows(al stats.Aligned, drawdowns map[string][]float64, rolling map[string]stats.Rolling,
	pairs []string, corr map[string]stats.Series) []Row {

	base := make(map[string]float64, len(al.Names))
	for _, t := range al.Names {
		base[t] = 1
		for _, p := range al.Values[t] {
			if p > 0 {
				base[t] = p
				break
			}
		}
	}

	rows := make([]Row, len(al.Dates))
	for idx, date := range al.Dates {
		row := Row{"date": date}
		for _, t := range al.Names {
			raw, norm, dd := t+"_raw", t, t+"_dd"
			if p := al.Values[t][idx]; p > 0 {
				row[norm] = models.Round(p/base[t]*100, 2)
				row[raw] = models.Round(p, 4)
				row[dd] = models.Round(drawdowns[t][idx], 2)
			} else if idx > 0 {
				prev := rows[idx-1]
				row[norm], row[raw], row[dd] = prev[norm], prev[raw], prev[dd]
			} else {
				row[norm], row[raw], row[dd] = 100.0, base[t], 0.0
			}

			rs := rolling[t]
			if idx < len(rs.Volatility) {
				row[t+"_vol"] = nullable(rs.Volatility, idx)
				row[t+"_mean"] = nullable(rs.Mean, idx)
			}
		}
		for _, key := range pairs {
			if s := corr[key]; idx < len(s) {
				row["corr_"+key] = nullable(s, idx)
			}
		}
		rows[idx] = row
	}
	return rows
}

func nullable(s stats.Series, i int) any {
	v, ok := s.At(i)
	if !ok || math.IsInf(v, 0) {
		return nil
	}
	return v
}
