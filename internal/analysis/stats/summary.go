package stats

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary is the per-asset statistics panel. Percent-valued fields are
// noted; ratios are plain numbers.
type Summary struct {
	CurrentPrice float64 `json:"current_price"`
	StartPrice   float64 `json:"start_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	MeanPrice    float64 `json:"mean_price"`
	TotalReturn  float64 `json:"total_return"` // %
	Volatility   float64 `json:"volatility"`   // %, annualized
	Sharpe       float64 `json:"sharpe_ratio"`
	Sortino      float64 `json:"sortino_ratio"`
	VaR95        float64 `json:"var_95"`  // %, daily
	CVaR95       float64 `json:"cvar_95"` // %, daily
	Beta         float64 `json:"beta"`
	Alpha        float64 `json:"alpha"` // %, annualized
	MaxDrawdown  float64 `json:"max_drawdown"`
}

// Statistics summarizes an aligned price column. The returns are the log
// returns of prices (missing steps as 0). Beta and alpha are computed only
// when benchmark has the same length as the returns; otherwise beta is 1
// and alpha 0. It returns nil when no price is positive.
func Statistics(prices, benchmark []float64) *Summary {
	vp := Positive(prices)
	if len(vp) == 0 {
		return nil
	}
	returns := LogReturns(prices)

	s := &Summary{
		CurrentPrice: vp[len(vp)-1],
		StartPrice:   vp[0],
		MinPrice:     slices.Min(vp),
		MaxPrice:     slices.Max(vp),
		MeanPrice:    stat.Mean(vp, nil),
		TotalReturn:  (vp[len(vp)-1]/vp[0] - 1) * 100,
		Volatility:   Volatility(returns) * 100,
		Beta:         1,
		MaxDrawdown:  MaxDrawdown(vp),
	}

	if len(returns) > 1 {
		if vol := Volatility(returns); vol > 0 {
			s.Sharpe = stat.Mean(returns, nil) * TradingDays / vol
		}
		s.Sortino = Sortino(returns, 0)
		s.VaR95 = VaR(returns, 0.95)
		s.CVaR95 = CVaR(returns, 0.95)
		if len(benchmark) > 0 && len(benchmark) == len(returns) {
			s.Beta = Beta(returns, benchmark)
			s.Alpha = Alpha(returns, benchmark, 0) * 100
		}
	}
	return s
}
