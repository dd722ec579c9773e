// Package models defines the data structures shared by the providers,
// the analytics packages and the API.
package models

import (
	"math"
	"sort"
)

// OHLCV is one daily bar. Crypto and FRED series only carry Close (and
// Volume for crypto), so the other fields may be zero.
type OHLCV struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open,omitempty"`
	High   float64 `json:"high,omitempty"`
	Low    float64 `json:"low,omitempty"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// History is a price series for one symbol.
type History struct {
	Ticker     string  `json:"ticker"`
	Source     string  `json:"source,omitempty"`
	DataPoints int     `json:"data_points"`
	Data       []OHLCV `json:"data"`
}

// NewHistory builds a History and fills DataPoints.
func NewHistory(ticker, source string, bars []OHLCV) *History {
	return &History{Ticker: ticker, Source: source, DataPoints: len(bars), Data: bars}
}

// Closes returns the close column.
func (h *History) Closes() []float64 {
	out := make([]float64, len(h.Data))
	for i, b := range h.Data {
		out[i] = b.Close
	}
	return out
}

// Dates returns the date column.
func (h *History) Dates() []string {
	out := make([]string, len(h.Data))
	for i, b := range h.Data {
		out[i] = b.Date
	}
	return out
}

// Dedupe sorts bars by date and keeps the last bar seen for each date.
// CoinGecko returns intraday points for short ranges.
func (h *History) Dedupe() {
	if len(h.Data) == 0 {
		return
	}
	sort.SliceStable(h.Data, func(i, j int) bool { return h.Data[i].Date < h.Data[j].Date })
	out := h.Data[:0]
	for _, b := range h.Data {
		if n := len(out); n > 0 && out[n-1].Date == b.Date {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	h.Data = out
	h.DataPoints = len(out)
}

// DatedValue is a single observation of a series.
type DatedValue struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Quote is a latest-price snapshot for any asset class. Provider-specific
// extras live in the embedded detail structs and are omitted when nil.
type Quote struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	AssetType     string  `json:"asset_type"`
	Source        string  `json:"source"`
	CurrentPrice  float64 `json:"current_price"`
	PreviousClose float64 `json:"previous_close,omitempty"`
	OpenPrice     float64 `json:"open_price,omitempty"`
	DayHigh       float64 `json:"day_high,omitempty"`
	DayLow        float64 `json:"day_low,omitempty"`
	Volume        float64 `json:"volume,omitempty"`
	Change        float64 `json:"price_change,omitempty"`
	ChangePct     float64 `json:"price_change_percent,omitempty"`
	WeekHigh52    float64 `json:"fifty_two_week_high,omitempty"`
	WeekLow52     float64 `json:"fifty_two_week_low,omitempty"`
	Currency      string  `json:"currency,omitempty"`
	Exchange      string  `json:"exchange,omitempty"`

	*CryptoDetail
}

// FillChange derives Change and ChangePct from the current and previous
// prices when both are known.
func (q *Quote) FillChange() {
	if q.CurrentPrice == 0 || q.PreviousClose == 0 {
		return
	}
	q.Change = q.CurrentPrice - q.PreviousClose
	q.ChangePct = q.Change / q.PreviousClose * 100
}

// CryptoDetail carries CoinGecko market data.
type CryptoDetail struct {
	ID                  string   `json:"id"`
	Symbol              string   `json:"symbol"`
	MarketCap           float64  `json:"market_cap,omitempty"`
	MarketCapRank       int      `json:"market_cap_rank,omitempty"`
	TotalVolume         float64  `json:"total_volume,omitempty"`
	High24h             float64  `json:"high_24h,omitempty"`
	Low24h              float64  `json:"low_24h,omitempty"`
	PriceChange24h      float64  `json:"price_change_24h,omitempty"`
	PriceChangePct24h   float64  `json:"price_change_percentage_24h,omitempty"`
	PriceChangePct7d    float64  `json:"price_change_percentage_7d,omitempty"`
	PriceChangePct30d   float64  `json:"price_change_percentage_30d,omitempty"`
	CirculatingSupply   float64  `json:"circulating_supply,omitempty"`
	TotalSupply         float64  `json:"total_supply,omitempty"`
	MaxSupply           *float64 `json:"max_supply,omitempty"`
	ATH                 float64  `json:"ath,omitempty"`
	ATHChangePercentage float64  `json:"ath_change_percentage,omitempty"`
	ATL                 float64  `json:"atl,omitempty"`
	Description         string   `json:"description,omitempty"`
}

// MacroSeries is a macro indicator with summary statistics over its history.
type MacroSeries struct {
	Symbol       string       `json:"symbol"`
	Name         string       `json:"name"`
	Source       string       `json:"source"`
	Region       string       `json:"region,omitempty"`
	Current      float64      `json:"current_value"`
	Previous     float64      `json:"previous_value"`
	Change       float64      `json:"change"`
	ChangePct    float64      `json:"change_pct"`
	YoYChangePct float64      `json:"yoy_change_pct"`
	High52w      float64      `json:"high_52w"`
	Low52w       float64      `json:"low_52w"`
	AllTimeHigh  float64      `json:"all_time_high"`
	AllTimeLow   float64      `json:"all_time_low"`
	DataPoints   int          `json:"data_points"`
	StartDate    string       `json:"start_date"`
	EndDate      string       `json:"end_date"`
	LastUpdated  string       `json:"last_updated"`
	History      []DatedValue `json:"history"`
}

// SearchResult is one entry of the cross-asset search.
type SearchResult struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// Round rounds x to the given number of decimals, half away from zero.
func Round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
