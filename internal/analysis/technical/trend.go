package technical

import (
	"github.com/markcheno/go-talib"
)

// Trend is a coarse direction label derived from a regression slope.
type Trend string

const (
	TrendStrongUp   Trend = "STRONG_UP"
	TrendUp         Trend = "UP"
	TrendNeutral    Trend = "NEUTRAL"
	TrendDown       Trend = "DOWN"
	TrendStrongDown Trend = "STRONG_DOWN"
)

// IsUp reports whether t points upward.
func (t Trend) IsUp() bool { return t == TrendUp || t == TrendStrongUp }

// IsDown reports whether t points downward.
func (t Trend) IsDown() bool { return t == TrendDown || t == TrendStrongDown }

const trendLookback = 60

// TrendChange fits a least-squares line through the last 60 prices and
// returns the fitted move over that window as a percentage of its first
// price. ok is false with fewer than 20 prices.
func TrendChange(prices []float64) (pct float64, ok bool) {
	if len(prices) < minTrendPoints {
		return 0, false
	}
	recent := prices[len(prices)-min(trendLookback, len(prices)):]
	if recent[0] == 0 {
		return 0, true
	}
	slope := talib.LinearRegSlope(recent, len(recent))[len(recent)-1]
	return slope * float64(len(recent)) / recent[0] * 100, true
}

// DetermineTrend labels the recent regression move: beyond ±15% is strong,
// beyond ±5% is a trend, anything else is neutral.
func DetermineTrend(prices []float64) Trend {
	pct, ok := TrendChange(prices)
	switch {
	case !ok:
		return TrendNeutral
	case pct > 15:
		return TrendStrongUp
	case pct > 5:
		return TrendUp
	case pct < -15:
		return TrendStrongDown
	case pct < -5:
		return TrendDown
	default:
		return TrendNeutral
	}
}
