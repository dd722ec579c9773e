package macro

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/stonks/internal/analysis/technical"
	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/pkg/models"
)

const (
	maxChartPoints = 500
	trendDominance = 1.5
	trendMajority  = 0.7
)

// Performer names the best or worst asset of a class.
type Performer struct {
	Ticker string  `json:"ticker"`
	Return float64 `json:"return"`
}

// ClassSummary aggregates the analyzed assets of one class.
type ClassSummary struct {
	Count         int             `json:"count"`
	AvgReturn     float64         `json:"avg_return"`
	AvgVolatility float64         `json:"avg_volatility"`
	Best          *Performer      `json:"best"`
	Worst         *Performer      `json:"worst"`
	Trend         technical.Trend `json:"trend"`
}

func summarizeClasses(assets []*AssetStats) map[catalog.AssetClass]*ClassSummary {
	byClass := make(map[catalog.AssetClass][]*AssetStats)
	for _, a := range assets {
		byClass[a.Class] = append(byClass[a.Class], a)
	}

	out := make(map[catalog.AssetClass]*ClassSummary, len(byClass))
	for class, members := range byClass {
		rets := make([]float64, len(members))
		vols := make([]float64, len(members))
		trends := make([]technical.Trend, len(members))
		for i, a := range members {
			rets[i], vols[i], trends[i] = a.TotalReturn, a.Volatility, a.Trend
		}

		sorted := append([]*AssetStats(nil), members...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalReturn > sorted[j].TotalReturn })
		best, worst := sorted[0], sorted[len(sorted)-1]

		out[class] = &ClassSummary{
			Count:         len(members),
			AvgReturn:     stat.Mean(rets, nil),
			AvgVolatility: stat.Mean(vols, nil),
			Best:          &Performer{Ticker: best.Ticker, Return: best.TotalReturn},
			Worst:         &Performer{Ticker: worst.Ticker, Return: worst.TotalReturn},
			Trend:         classTrend(trends),
		}
	}
	return out
}

// classTrend is UP or DOWN only when that direction outnumbers the other
// by 1.5x and covers more than 70% of the class.
func classTrend(trends []technical.Trend) technical.Trend {
	var up, down int
	for _, t := range trends {
		switch {
		case t.IsUp():
			up++
		case t.IsDown():
			down++
		}
	}
	n := float64(len(trends))
	switch {
	case float64(up) > float64(down)*trendDominance:
		if float64(up) > n*trendMajority {
			return technical.TrendUp
		}
	case float64(down) > float64(up)*trendDominance:
		if float64(down) > n*trendMajority {
			return technical.TrendDown
		}
	}
	return technical.TrendNeutral
}

// ChartPoint is "date" plus one normalized value per ticker.
type ChartPoint map[string]any

// chartData normalizes every asset to 100 at its first price and samples
// positions 0, step, 2*step... up to the shortest price series, so at most
// about 500 points come back. Dates are those of the first asset.
func chartData(assets []*AssetStats) []ChartPoint {
	if len(assets) == 0 {
		return []ChartPoint{}
	}
	minLen := len(assets[0].prices)
	for _, a := range assets[1:] {
		minLen = min(minLen, len(a.prices))
	}
	if minLen < minPrices {
		return []ChartPoint{}
	}

	step := max(1, minLen/maxChartPoints)
	ref := assets[0]
	out := make([]ChartPoint, 0, minLen/step+1)
	for i := 0; i < minLen; i += step {
		p := ChartPoint{"date": ref.dates[i]}
		for _, a := range assets {
			p[a.Ticker] = models.Round(a.prices[i]/a.prices[0]*100, 2)
		}
		out = append(out, p)
	}
	return out
}
