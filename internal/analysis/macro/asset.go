package macro

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/seenimoa/stonks/internal/analysis/stats"
	"github.com/seenimoa/stonks/internal/analysis/technical"
	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/pkg/models"
)

const (
	// DefaultRiskFreeRate is the annual rate used for scan Sharpe ratios.
	DefaultRiskFreeRate = 0.02

	minPrices  = 10
	minReturns = 20
	minYears   = 0.1
)

// AssetStats is the per-asset scan row.
type AssetStats struct {
	Ticker       string             `json:"ticker" msgpack:"ticker"`
	Name         string             `json:"name" msgpack:"name"`
	Class        catalog.AssetClass `json:"asset_class" msgpack:"asset_class"`
	DataPoints   int                `json:"data_points" msgpack:"data_points"`
	StartDate    string             `json:"start_date" msgpack:"start_date"`
	EndDate      string             `json:"end_date" msgpack:"end_date"`
	StartPrice   float64            `json:"start_price" msgpack:"start_price"`
	EndPrice     float64            `json:"end_price" msgpack:"end_price"`
	CurrentPrice float64            `json:"current_price" msgpack:"current_price"`
	TotalReturn  float64            `json:"total_return" msgpack:"total_return"`
	CAGR         float64            `json:"cagr" msgpack:"cagr"`
	Volatility   float64            `json:"volatility" msgpack:"volatility"`
	SharpeRatio  float64            `json:"sharpe_ratio" msgpack:"sharpe_ratio"`
	MaxDrawdown  float64            `json:"max_drawdown" msgpack:"max_drawdown"`
	Trend        technical.Trend    `json:"trend" msgpack:"trend"`

	prices  []float64
	dates   []string
	returns []float64
}

// analyzeAsset summarizes h. It returns nil when fewer than 10 positive
// prices remain.
func analyzeAsset(class catalog.AssetClass, name string, h *models.History, rf float64) *AssetStats {
	var prices []float64
	var dates []string
	var start, end string
	for _, b := range h.Data {
		if b.Date != "" {
			if start == "" {
				start = b.Date
			}
			end = b.Date
		}
		if b.Close > 0 && !math.IsInf(b.Close, 0) {
			prices = append(prices, b.Close)
			dates = append(dates, b.Date)
		}
	}
	if len(prices) < minPrices {
		return nil
	}
	if name == "" {
		name = h.Ticker
	}

	first, last := prices[0], prices[len(prices)-1]
	returns := stats.SimpleReturns(prices)
	years := math.Max(float64(len(prices))/stats.TradingDays, minYears)

	return &AssetStats{
		Ticker:       h.Ticker,
		Name:         name,
		Class:        class,
		DataPoints:   len(prices),
		StartDate:    start,
		EndDate:      end,
		StartPrice:   first,
		EndPrice:     last,
		CurrentPrice: last,
		TotalReturn:  (last/first - 1) * 100,
		CAGR:         cagr(first, last, years),
		Volatility:   stats.Volatility(returns) * 100,
		SharpeRatio:  sharpe(returns, rf),
		MaxDrawdown:  stats.MaxDrawdown(prices),
		Trend:        technical.DetermineTrend(prices),
		prices:       prices,
		dates:        dates,
		returns:      returns,
	}
}

func cagr(start, end, years float64) float64 {
	if start <= 0 || end <= 0 || years <= 0 {
		return 0
	}
	return (math.Pow(end/start, 1/years) - 1) * 100
}

func sharpe(returns []float64, rf float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	vol := stats.Volatility(returns)
	if vol == 0 {
		return 0
	}
	return (stat.Mean(returns, nil)*stats.TradingDays - rf) / vol
}
