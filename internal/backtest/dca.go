// Package backtest replays an investment plan over historical prices: an
// initial lump sum plus optional recurring purchases (dollar-cost
// averaging), compared against buy & hold and a benchmark.
package backtest

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/stonks/internal/market"
	"github.com/seenimoa/stonks/pkg/models"
)

const (
	DefaultInitial   = 1000.0
	DefaultBenchmark = "^GSPC"

	minPoints = 5
)

// ErrInvalidAmount is returned for negative amounts. A plan that never buys
// anything still replays the prices and reports zero values.
var ErrInvalidAmount = fmt.Errorf("%w: amount", market.ErrInvalidInput)

// ════════════════════════════════════════════════════════════════════
// Request / Result
// ════════════════════════════════════════════════════════════════════

// Request describes the plan. Amounts are in the asset's quote currency.
type Request struct {
	Ticker          string
	AssetType       string
	Period          string
	Initial         float64
	Recurring       float64
	Frequency       Frequency
	BenchmarkTicker string
}

// Result is the full report.
type Result struct {
	Ticker         string          `json:"ticker"`
	AssetType      string          `json:"asset_type"`
	Period         string          `json:"period"`
	Frequency      Frequency       `json:"frequency"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	StartPrice     float64         `json:"start_price"`
	EndPrice       float64         `json:"end_price"`
	PriceChangePct float64         `json:"price_change_pct"`
	Investment     Investment      `json:"investment"`
	Results        Returns         `json:"results"`
	Risk           Risk            `json:"risk_metrics"`
	Comparison     BuyHold         `json:"comparison"`
	Benchmark      *Benchmark      `json:"benchmark_comparison"`
	Monthly        MonthlyAnalysis `json:"monthly_analysis"`
	Timeline       []TimelinePoint `json:"timeline"`
}

type Investment struct {
	InitialAmount   float64 `json:"initial_amount"`
	RecurringAmount float64 `json:"recurring_amount"`
	TotalInvested   float64 `json:"total_invested"`
	NumPurchases    int     `json:"num_purchases"`
	SharesBought    float64 `json:"shares_bought"`
	AvgCostBasis    float64 `json:"avg_cost_basis"`
}

type Returns struct {
	FinalValue     float64 `json:"final_value"`
	TotalReturn    float64 `json:"total_return"`
	TotalReturnPct float64 `json:"total_return_pct"`
	CAGR           float64 `json:"cagr"`
}

// BuyHold is the same total invested as a single purchase on day 0.
type BuyHold struct {
	ReturnPct    float64 `json:"buy_hold_return_pct"`
	FinalValue   float64 `json:"buy_hold_final_value"`
	DCAAdvantage float64 `json:"dca_advantage"`
}

// Benchmark mirrors every purchase into the benchmark.
type Benchmark struct {
	Ticker         string  `json:"benchmark_ticker"`
	StartPrice     float64 `json:"benchmark_start_price"`
	EndPrice       float64 `json:"benchmark_end_price"`
	PriceChangePct float64 `json:"benchmark_price_change_pct"`
	FinalValue     float64 `json:"benchmark_final_value"`
	ReturnPct      float64 `json:"benchmark_return_pct"`
	Alpha          float64 `json:"alpha"`
	Outperformed   bool    `json:"outperformed"`
}

// TimelinePoint is the portfolio state at the close of one day.
type TimelinePoint struct {
	Date           string   `json:"date"`
	Price          float64  `json:"price"`
	Shares         float64  `json:"shares"`
	Value          float64  `json:"value"`
	Invested       float64  `json:"invested"`
	InvestedToday  float64  `json:"invested_today"`
	Drawdown       float64  `json:"drawdown"`
	ProfitLoss     float64  `json:"profit_loss"`
	ReturnPct      float64  `json:"return_pct"`
	BenchmarkPrice *float64 `json:"benchmark_price"`
	BenchmarkValue *float64 `json:"benchmark_value"`
}

// ════════════════════════════════════════════════════════════════════
// Ledger
// ════════════════════════════════════════════════════════════════════

// ledger keeps cash and share balances in decimal so repeated small
// purchases do not accumulate float error.
type ledger struct {
	shares      decimal.Decimal
	invested    decimal.Decimal
	benchShares decimal.Decimal
	purchases   int
}

func (l *ledger) buy(amount, price decimal.Decimal, bench *float64) {
	l.shares = l.shares.Add(amount.Div(price))
	l.invested = l.invested.Add(amount)
	l.purchases++
	if bench != nil {
		l.benchShares = l.benchShares.Add(amount.Div(decimal.NewFromFloat(*bench)))
	}
}

type point struct {
	date  string
	price float64
	bench *float64
}

// ════════════════════════════════════════════════════════════════════
// Invest
// ════════════════════════════════════════════════════════════════════

// Invest replays req over h. benchmark may be nil; when present its closes
// are matched to h by date.
func Invest(req Request, h *models.History, benchmark *models.History) (*Result, error) {
	if req.Initial < 0 || req.Recurring < 0 {
		return nil, fmt.Errorf("%w: amounts must not be negative", ErrInvalidAmount)
	}
	freq := req.Frequency
	if freq == "" {
		freq = Once
	}
	recurringActive := freq != Once && req.Recurring > 0
	if h == nil {
		return nil, market.Insufficient("no price history")
	}

	points := pricedPoints(h, benchmark)
	if len(points) < minPoints {
		return nil, market.Insufficient("need at least %d priced days, have %d", minPoints, len(points))
	}

	dates := make([]string, len(points))
	for i, p := range points {
		dates[i] = p.date
	}
	recurringDays := freq.purchaseDays(dates)

	initial := decimal.NewFromFloat(req.Initial)
	recurring := decimal.NewFromFloat(req.Recurring)

	var l ledger
	var peak, maxDD float64
	timeline := make([]TimelinePoint, 0, len(points))
	for i, p := range points {
		price := decimal.NewFromFloat(p.price)
		today := decimal.Zero
		if i == 0 && initial.IsPositive() {
			l.buy(initial, price, p.bench)
			today = today.Add(initial)
		}
		if recurringActive && recurringDays[i] {
			l.buy(recurring, price, p.bench)
			today = today.Add(recurring)
		}

		value := l.shares.Mul(price)
		invested := l.invested.InexactFloat64()
		v := value.InexactFloat64()

		if v > peak {
			peak = v
		}
		var dd float64
		if peak > 0 {
			dd = (peak - v) / peak * 100
			maxDD = math.Max(maxDD, dd)
		}

		tp := TimelinePoint{
			Date:           p.date,
			Price:          p.price,
			Shares:         l.shares.InexactFloat64(),
			Value:          v,
			Invested:       invested,
			InvestedToday:  today.InexactFloat64(),
			Drawdown:       dd,
			ProfitLoss:     value.Sub(l.invested).InexactFloat64(),
			BenchmarkPrice: p.bench,
		}
		if invested > 0 {
			tp.ReturnPct = (v/invested - 1) * 100
		}
		if p.bench != nil && l.benchShares.IsPositive() {
			bv := l.benchShares.Mul(decimal.NewFromFloat(*p.bench)).InexactFloat64()
			tp.BenchmarkValue = &bv
		}
		timeline = append(timeline, tp)
	}

	first, last := points[0], points[len(points)-1]
	res := &Result{
		Ticker:         req.Ticker,
		AssetType:      req.AssetType,
		Period:         req.Period,
		Frequency:      freq,
		StartDate:      first.date,
		EndDate:        last.date,
		StartPrice:     first.price,
		EndPrice:       last.price,
		PriceChangePct: (last.price/first.price - 1) * 100,
		Timeline:       timeline,
	}

	finalValue := l.shares.Mul(decimal.NewFromFloat(last.price))
	res.Investment = Investment{
		InitialAmount:   req.Initial,
		RecurringAmount: req.Recurring,
		TotalInvested:   l.invested.InexactFloat64(),
		NumPurchases:    l.purchases,
		SharesBought:    l.shares.InexactFloat64(),
	}
	if l.shares.IsPositive() {
		res.Investment.AvgCostBasis = l.invested.Div(l.shares).InexactFloat64()
	}
	res.Results = returns(finalValue, l.invested, len(points))
	res.Comparison = buyHold(l.invested, first.price, last.price, res.Results.TotalReturnPct)
	res.Risk = riskMetrics(timeline, maxDD)
	res.Monthly = monthlyAnalysis(timeline)

	if first.bench != nil && last.bench != nil && l.benchShares.IsPositive() {
		res.Benchmark = compareBenchmark(req.BenchmarkTicker, *first.bench, *last.bench,
			l.benchShares, l.invested, res.Results.TotalReturnPct)
	}
	return res, nil
}

// pricedPoints keeps dated bars with a positive close, sorted by date, and
// attaches the benchmark close for the same date.
func pricedPoints(h, benchmark *models.History) []point {
	bench := make(map[string]float64)
	if benchmark != nil {
		for _, b := range benchmark.Data {
			if b.Date != "" && b.Close > 0 {
				bench[b.Date] = b.Close
			}
		}
	}

	points := make([]point, 0, len(h.Data))
	for _, b := range h.Data {
		if b.Date == "" || b.Close <= 0 || math.IsNaN(b.Close) {
			continue
		}
		p := point{date: b.Date, price: b.Close}
		if bp, ok := bench[b.Date]; ok {
			p.bench = &bp
		}
		points = append(points, p)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].date < points[j].date })
	return points
}

func returns(final, invested decimal.Decimal, days int) Returns {
	r := Returns{
		FinalValue:  final.InexactFloat64(),
		TotalReturn: final.Sub(invested).InexactFloat64(),
	}
	if !invested.IsPositive() {
		return r
	}
	ratio := final.Div(invested).InexactFloat64()
	r.TotalReturnPct = (ratio - 1) * 100
	if years := float64(days) / tradingYear; years > 0 {
		r.CAGR = (math.Pow(ratio, 1/years) - 1) * 100
	}
	return r
}

func buyHold(invested decimal.Decimal, startPrice, endPrice, dcaReturnPct float64) BuyHold {
	if !invested.IsPositive() {
		return BuyHold{DCAAdvantage: dcaReturnPct}
	}
	shares := invested.Div(decimal.NewFromFloat(startPrice))
	final := shares.Mul(decimal.NewFromFloat(endPrice))
	pct := (final.Div(invested).InexactFloat64() - 1) * 100
	return BuyHold{
		ReturnPct:    pct,
		FinalValue:   final.InexactFloat64(),
		DCAAdvantage: dcaReturnPct - pct,
	}
}

func compareBenchmark(ticker string, start, end float64, shares, invested decimal.Decimal, returnPct float64) *Benchmark {
	final := shares.Mul(decimal.NewFromFloat(end))
	b := &Benchmark{
		Ticker:         ticker,
		StartPrice:     start,
		EndPrice:       end,
		PriceChangePct: (end/start - 1) * 100,
		FinalValue:     final.InexactFloat64(),
	}
	if invested.IsPositive() {
		b.ReturnPct = (final.Div(invested).InexactFloat64() - 1) * 100
	}
	b.Alpha = returnPct - b.ReturnPct
	b.Outperformed = returnPct > b.ReturnPct
	return b
}
