package models

import (
	"slices"
	"time"
)

// TradingYear is the number of observations treated as one year for
// year-over-year and 52-week figures, whatever the series frequency.
const TradingYear = 252

// NewMacroSeries summarizes date-sorted points. It returns nil when
// points is empty.
func NewMacroSeries(symbol, name, source string, points []DatedValue, now time.Time) *MacroSeries {
	n := len(points)
	if n == 0 {
		return nil
	}
	values := make([]float64, n)
	for i, p := range points {
		values[i] = p.Value
	}

	current := values[n-1]
	previous := current
	if n > 1 {
		previous = values[n-2]
	}
	change := current - previous
	var changePct float64
	if previous != 0 {
		changePct = change / previous * 100
	}

	yearAgo := values[max(0, n-TradingYear)]
	var yoy float64
	if yearAgo != 0 {
		yoy = (current - yearAgo) / yearAgo * 100
	}

	lastYear := values[max(0, n-TradingYear):]
	return &MacroSeries{
		Symbol:       symbol,
		Name:         name,
		Source:       source,
		Current:      current,
		Previous:     previous,
		Change:       change,
		ChangePct:    Round(changePct, 2),
		YoYChangePct: Round(yoy, 2),
		High52w:      slices.Max(lastYear),
		Low52w:       slices.Min(lastYear),
		AllTimeHigh:  slices.Max(values),
		AllTimeLow:   slices.Min(values),
		DataPoints:   n,
		StartDate:    points[0].Date,
		EndDate:      points[n-1].Date,
		LastUpdated:  now.Format(time.RFC3339),
		History:      slices.Clone(points[max(0, n-TradingYear):]),
	}
}

// HistoryToSeries converts bar closes to dated values.
func HistoryToSeries(h *History) []DatedValue {
	out := make([]DatedValue, len(h.Data))
	for i, b := range h.Data {
		out[i] = DatedValue{Date: b.Date, Value: b.Close}
	}
	return out
}

// SeriesToHistory wraps a value series as close-only bars.
func SeriesToHistory(ticker, source string, points []DatedValue) *History {
	bars := make([]OHLCV, len(points))
	for i, p := range points {
		bars[i] = OHLCV{Date: p.Date, Close: p.Value}
	}
	return NewHistory(ticker, source, bars)
}
