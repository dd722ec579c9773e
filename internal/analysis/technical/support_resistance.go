package technical

import (
	"sort"

	"github.com/seenimoa/stonks/pkg/models"
)

// PivotMethod selects the pivot-point formula.
type PivotMethod string

const (
	PivotClassic   PivotMethod = "classic"
	PivotFibonacci PivotMethod = "fibonacci"
	PivotCamarilla PivotMethod = "camarilla"
)

// Levels is a set of horizontal support and resistance prices.
type Levels struct {
	Method      string    `json:"method"`
	PivotPoint  float64   `json:"pivot_point"`
	S1          float64   `json:"s1"`
	S2          float64   `json:"s2"`
	S3          float64   `json:"s3"`
	R1          float64   `json:"r1"`
	R2          float64   `json:"r2"`
	R3          float64   `json:"r3"`
	Supports    []float64 `json:"supports"`
	Resistances []float64 `json:"resistances"`
}

// PivotPoints calculates pivot-based levels from the last bar. Close-only
// series (crypto, macro) use the close for high and low.
func PivotPoints(bars []models.OHLCV, method PivotMethod) Levels {
	if method == "" {
		method = PivotClassic
	}
	if len(bars) == 0 {
		return Levels{Method: string(method)}
	}

	last := bars[len(bars)-1]
	h, l, c := last.High, last.Low, last.Close
	if h == 0 || l == 0 {
		h, l = c, c
	}
	rng := h - l
	pp := (h + l + c) / 3

	lv := Levels{Method: string(method), PivotPoint: pp}
	switch method {
	case PivotFibonacci:
		lv.S1 = pp - 0.382*rng
		lv.S2 = pp - 0.618*rng
		lv.S3 = pp - rng
		lv.R1 = pp + 0.382*rng
		lv.R2 = pp + 0.618*rng
		lv.R3 = pp + rng

	case PivotCamarilla:
		lv.S1 = c - rng*1.1/12
		lv.S2 = c - rng*1.1/6
		lv.S3 = c - rng*1.1/4
		lv.R1 = c + rng*1.1/12
		lv.R2 = c + rng*1.1/6
		lv.R3 = c + rng*1.1/4

	default:
		lv.S1 = 2*pp - h
		lv.S2 = pp - rng
		lv.S3 = l - 2*(h-pp)
		lv.R1 = 2*pp - l
		lv.R2 = pp + rng
		lv.R3 = h + 2*(pp-l)
	}

	lv.Supports = []float64{lv.S1, lv.S2, lv.S3}
	lv.Resistances = []float64{lv.R1, lv.R2, lv.R3}
	return lv
}

// AutoLevels detects support/resistance from swing highs and lows in the
// closes, clustering levels that lie within threshold (a fraction) of
// each other.
func AutoLevels(closes []float64, window int, threshold float64) Levels {
	if window <= 0 {
		window = 5
	}
	if threshold <= 0 {
		threshold = 0.015
	}
	lv := Levels{Method: "auto"}

	n := len(closes)
	if n < window*2+1 {
		return lv
	}

	var levels []float64
	for i := window; i < n-window; i++ {
		isHigh, isLow := true, true
		for j := i - window; j <= i+window; j++ {
			if j == i {
				continue
			}
			if closes[j] >= closes[i] {
				isHigh = false
			}
			if closes[j] <= closes[i] {
				isLow = false
			}
		}
		if isHigh || isLow {
			levels = append(levels, closes[i])
		}
	}
	if len(levels) == 0 {
		return lv
	}

	sort.Float64s(levels)
	current := closes[n-1]
	var supports, resistances []float64
	for _, level := range clusterLevels(levels, threshold) {
		if level < current {
			supports = append(supports, level)
		} else {
			resistances = append(resistances, level)
		}
	}

	// nearest first
	sort.Sort(sort.Reverse(sort.Float64Slice(supports)))
	sort.Float64s(resistances)

	lv.Supports = capSlice(supports, 3)
	lv.Resistances = capSlice(resistances, 3)
	set := func(dst []*float64, src []float64) {
		for i := range src {
			*dst[i] = src[i]
		}
	}
	set([]*float64{&lv.S1, &lv.S2, &lv.S3}, lv.Supports)
	set([]*float64{&lv.R1, &lv.R2, &lv.R3}, lv.Resistances)

	if lv.S1 > 0 && lv.R1 > 0 {
		lv.PivotPoint = (lv.S1 + lv.R1) / 2
	} else {
		lv.PivotPoint = current
	}
	return lv
}

// clusterLevels groups nearby price levels and returns their midpoints.
func clusterLevels(sorted []float64, threshold float64) []float64 {
	if len(sorted) == 0 {
		return nil
	}

	var clusters []float64
	sum := sorted[0]
	count := 1
	for i := 1; i < len(sorted); i++ {
		mid := sum / float64(count)
		if (sorted[i]-mid)/mid <= threshold {
			sum += sorted[i]
			count++
			continue
		}
		clusters = append(clusters, sum/float64(count))
		sum = sorted[i]
		count = 1
	}
	return append(clusters, sum/float64(count))
}

func capSlice(s []float64, max int) []float64 {
	if len(s) > max {
		return s[:max]
	}
	return s
}
