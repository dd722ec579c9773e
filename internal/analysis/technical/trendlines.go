// Package technical detects trend lines, trend direction and horizontal
// price levels in daily series.
package technical

import (
	"math"
	"sort"
)

const (
	minTrendPoints = 20
	extremaWindow  = 5
	// MinTrendGap is the minimum distance, in bars, between the two
	// anchors of a trend line.
	MinTrendGap = 15
)

// Anchor is one of the two points a trend line is drawn through.
type Anchor struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
	Index int     `json:"index"`
}

// LinePoint is an end of the extended line.
type LinePoint struct {
	Index int     `json:"index"`
	Price float64 `json:"price"`
}

// Extension is the line projected across the whole series.
type Extension struct {
	Start LinePoint `json:"start"`
	End   LinePoint `json:"end"`
}

// TrendLine passes through two local extrema.
type TrendLine struct {
	Point1   Anchor    `json:"point1"`
	Point2   Anchor    `json:"point2"`
	Slope    float64   `json:"slope"`
	Extended Extension `json:"extended"`
}

// TrendLines holds the support line (through two lows) and the resistance
// line (through two highs). Either may be nil.
type TrendLines struct {
	Support    *TrendLine `json:"support"`
	Resistance *TrendLine `json:"resistance"`
}

// FindTrendLines looks for local minima and maxima (five bars either side)
// among the present prices, then anchors support on the lowest pair of
// minima and resistance on the highest pair of maxima that lie at least
// minGap bars apart. Indices refer to positions in prices; NaN entries are
// skipped.
func FindTrendLines(dates []string, prices []float64, minGap int) TrendLines {
	if minGap <= 0 {
		minGap = MinTrendGap
	}
	if len(prices) < minTrendPoints {
		return TrendLines{}
	}

	var pts []Anchor
	for i, p := range prices {
		if math.IsNaN(p) {
			continue
		}
		var d string
		if i < len(dates) {
			d = dates[i]
		}
		pts = append(pts, Anchor{Date: d, Price: p, Index: i})
	}
	if len(pts) < minTrendPoints {
		return TrendLines{}
	}

	var minima, maxima []Anchor
	for i := extremaWindow; i < len(pts)-extremaWindow; i++ {
		isMin, isMax := true, true
		for j := 1; j <= extremaWindow; j++ {
			lo, hi := pts[i-j].Price, pts[i+j].Price
			if pts[i].Price > lo || pts[i].Price > hi {
				isMin = false
			}
			if pts[i].Price < lo || pts[i].Price < hi {
				isMax = false
			}
		}
		if isMin {
			minima = append(minima, pts[i])
		}
		if isMax {
			maxima = append(maxima, pts[i])
		}
	}

	sort.SliceStable(minima, func(a, b int) bool { return minima[a].Price < minima[b].Price })
	sort.SliceStable(maxima, func(a, b int) bool { return maxima[a].Price > maxima[b].Price })

	first, last := pts[0].Index, pts[len(pts)-1].Index
	return TrendLines{
		Support:    lineThrough(minima, minGap, first, last),
		Resistance: lineThrough(maxima, minGap, first, last),
	}
}

// lineThrough takes the first pair, in ranked order, whose points lie at
// least minGap bars apart, and orders it by position.
func lineThrough(ranked []Anchor, minGap, first, last int) *TrendLine {
	for i := range ranked {
		for j := i + 1; j < len(ranked); j++ {
			if abs(ranked[j].Index-ranked[i].Index) < minGap {
				continue
			}
			p1, p2 := ranked[i], ranked[j]
			if p1.Index > p2.Index {
				p1, p2 = p2, p1
			}
			slope := (p2.Price - p1.Price) / float64(p2.Index-p1.Index)
			return &TrendLine{
				Point1: p1,
				Point2: p2,
				Slope:  slope,
				Extended: Extension{
					Start: LinePoint{Index: first, Price: p1.Price + slope*float64(first-p1.Index)},
					End:   LinePoint{Index: last, Price: p1.Price + slope*float64(last-p1.Index)},
				},
			}
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
