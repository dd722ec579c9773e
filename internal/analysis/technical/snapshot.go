package technical

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/seenimoa/stonks/pkg/models"
)

// Snapshot is the latest technical picture of one series.
type Snapshot struct {
	Ticker      string     `json:"ticker"`
	Date        string     `json:"date"`
	Close       float64    `json:"close"`
	Trend       Trend      `json:"trend"`
	TrendChange float64    `json:"trend_change_pct"`
	RSI14       *float64   `json:"rsi_14"`
	SMA20       *float64   `json:"sma_20"`
	SMA50       *float64   `json:"sma_50"`
	EMA20       *float64   `json:"ema_20"`
	Pivots      Levels     `json:"pivots"`
	Swing       Levels     `json:"swing_levels"`
	TrendLines  TrendLines `json:"trend_lines"`
}

// Analyze builds a Snapshot from daily bars. Indicators whose lookback
// exceeds the available history are left nil.
func Analyze(h *models.History) *Snapshot {
	if h == nil || len(h.Data) == 0 {
		return nil
	}
	closes := h.Closes()
	last := h.Data[len(h.Data)-1]
	pct, _ := TrendChange(closes)

	return &Snapshot{
		Ticker:      h.Ticker,
		Date:        last.Date,
		Close:       last.Close,
		Trend:       DetermineTrend(closes),
		TrendChange: models.Round(pct, 2),
		RSI14:       latest(closes, 15, func(x []float64) []float64 { return talib.Rsi(x, 14) }),
		SMA20:       latest(closes, 20, func(x []float64) []float64 { return talib.Sma(x, 20) }),
		SMA50:       latest(closes, 50, func(x []float64) []float64 { return talib.Sma(x, 50) }),
		EMA20:       latest(closes, 20, func(x []float64) []float64 { return talib.Ema(x, 20) }),
		Pivots:      PivotPoints(h.Data, PivotClassic),
		Swing:       AutoLevels(closes, 5, 0),
		TrendLines:  FindTrendLines(h.Dates(), closes, MinTrendGap),
	}
}

func latest(closes []float64, need int, f func([]float64) []float64) *float64 {
	if len(closes) < need {
		return nil
	}
	out := f(closes)
	v := out[len(out)-1]
	if math.IsNaN(v) {
		return nil
	}
	v = models.Round(v, 4)
	return &v
}
