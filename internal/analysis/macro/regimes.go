package macro

import (
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/stonks/internal/analysis/stats"
)

// Regime labels.
const (
	RegimeBull     = "BULL"
	RegimeBear     = "BEAR"
	RegimeSideways = "SIDEWAYS"
	RegimeVolatile = "VOLATILE"
)

const (
	regimeWindow    = 126
	regimeStep      = regimeWindow / 2
	regimeMinPrices = 252
	tradingMonth    = 21
	volatileVolPct  = 30
	bullBearMovePct = 10
)

// marketTickers identify the broad-market asset regimes are measured on.
var marketTickers = map[string]bool{"^GSPC": true, "SPY": true, "S&P 500": true}

// Regime aggregates the half-year windows that fell into one label.
// AvgDuration is in months.
type Regime struct {
	Periods     int     `json:"periods"`
	AvgReturn   float64 `json:"avg_return"`
	AvgDuration float64 `json:"avg_duration"`
}

// detectRegimes classifies overlapping 6-month windows of the first market
// asset. The map is empty without a market asset of at least 252 prices.
func detectRegimes(assets []*AssetStats) map[string]Regime {
	out := map[string]Regime{}
	var prices []float64
	for _, a := range assets {
		if marketTickers[a.Ticker] {
			prices = a.prices
			break
		}
	}
	if len(prices) < regimeMinPrices {
		return out
	}

	returns := map[string][]float64{}
	for _, label := range []string{RegimeBull, RegimeBear, RegimeSideways, RegimeVolatile} {
		returns[label] = nil
	}
	for i := 0; i < len(prices)-regimeWindow; i += regimeStep {
		w := prices[i : i+regimeWindow]
		ret := (w[len(w)-1]/w[0] - 1) * 100
		vol := stats.Volatility(stats.SimpleReturns(w)) * 100

		label := RegimeSideways
		switch {
		case vol > volatileVolPct:
			label = RegimeVolatile
		case ret > bullBearMovePct:
			label = RegimeBull
		case ret < -bullBearMovePct:
			label = RegimeBear
		}
		returns[label] = append(returns[label], ret)
	}

	for label, rs := range returns {
		r := Regime{Periods: len(rs)}
		if len(rs) > 0 {
			r.AvgReturn = stat.Mean(rs, nil)
			r.AvgDuration = regimeWindow / tradingMonth
		}
		out[label] = r
	}
	return out
}
