package backtest

import (
	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/stonks/internal/analysis/stats"
)

const tradingYear = stats.TradingDays

// ════════════════════════════════════════════════════════════════════
// Risk Metrics
// ════════════════════════════════════════════════════════════════════

// Risk describes the portfolio value path. Volatility and drawdown are
// percentages; Sharpe assumes a zero risk-free rate.
type Risk struct {
	Volatility  float64 `json:"volatility"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
}

// riskMetrics works on daily log returns of the positive portfolio values.
// Contributions show up as returns too; the figures describe the account
// balance, not the asset.
func riskMetrics(timeline []TimelinePoint, maxDrawdown float64) Risk {
	values := make([]float64, 0, len(timeline))
	for _, t := range timeline {
		if t.Value > 0 {
			values = append(values, t.Value)
		}
	}
	r := Risk{MaxDrawdown: maxDrawdown}

	rets := stats.LogReturns(values)
	vol := stats.Volatility(rets)
	r.Volatility = vol * 100
	if len(rets) > 1 && vol > 0 {
		r.SharpeRatio = stat.Mean(rets, nil) * tradingYear / vol
	}
	return r
}

// ════════════════════════════════════════════════════════════════════
// Monthly Analysis
// ════════════════════════════════════════════════════════════════════

// MonthReturn is the portfolio change from the first day of a month to the
// first day of the next.
type MonthReturn struct {
	Month     string  `json:"month"`
	ReturnPct float64 `json:"return_pct"`
}

type MonthlyAnalysis struct {
	TotalMonths      int           `json:"total_months"`
	WinningMonths    int           `json:"winning_months"`
	LosingMonths     int           `json:"losing_months"`
	WinRate          float64       `json:"win_rate"`
	BestMonth        *MonthReturn  `json:"best_month"`
	WorstMonth       *MonthReturn  `json:"worst_month"`
	AvgMonthlyReturn float64       `json:"avg_monthly_return"`
	Months           []MonthReturn `json:"months"`
}

// monthlyReturns only reports completed months: the last month in the
// timeline has no following month start to measure against.
func monthlyReturns(timeline []TimelinePoint) []MonthReturn {
	var out []MonthReturn
	var current string
	var startValue float64
	for _, t := range timeline {
		key := monthKey(t.Date)
		if key == current {
			continue
		}
		if current != "" && startValue > 0 {
			out = append(out, MonthReturn{Month: current, ReturnPct: (t.Value/startValue - 1) * 100})
		}
		current = key
		startValue = t.Value
	}
	return out
}

func monthlyAnalysis(timeline []TimelinePoint) MonthlyAnalysis {
	months := monthlyReturns(timeline)
	a := MonthlyAnalysis{TotalMonths: len(months), Months: months}
	if len(months) == 0 {
		a.Months = []MonthReturn{}
		return a
	}

	pcts := make([]float64, len(months))
	best, worst := 0, 0
	for i, m := range months {
		pcts[i] = m.ReturnPct
		switch {
		case m.ReturnPct > 0:
			a.WinningMonths++
		case m.ReturnPct < 0:
			a.LosingMonths++
		}
		if m.ReturnPct > months[best].ReturnPct {
			best = i
		}
		if m.ReturnPct < months[worst].ReturnPct {
			worst = i
		}
	}
	a.WinRate = float64(a.WinningMonths) / float64(len(months)) * 100
	a.BestMonth = &months[best]
	a.WorstMonth = &months[worst]
	a.AvgMonthlyReturn = stat.Mean(pcts, nil)
	return a
}
