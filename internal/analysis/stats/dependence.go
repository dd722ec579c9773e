package stats

import (
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MinRankObservations is the smallest sample the rank correlations use.
const MinRankObservations = 10

// MinMIObservations is the smallest sample MutualInformation uses.
const MinMIObservations = 20

// Ranks assigns 1-based ranks to x, giving tied values the average of the
// ranks they span.
func Ranks(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	out := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// Spearman is the rank correlation of x and y, 0 when undefined or when
// either sample is shorter than MinRankObservations.
func Spearman(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < MinRankObservations {
		return 0
	}
	return finiteOr(stat.Correlation(Ranks(x), Ranks(y), nil), 0)
}

// Kendall is Kendall's tau-b, which corrects for ties in either sample.
// gonum's stat.Kendall is tau-a and treats ties as concordant.
func Kendall(x, y []float64) float64 {
	n := len(x)
	if n != len(y) || n < MinRankObservations {
		return 0
	}
	var concordant, discordant, tiesX, tiesY float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := x[j] - x[i]
			dy := y[j] - y[i]
			switch {
			case dx == 0 && dy == 0:
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case (dx > 0) == (dy > 0):
				concordant++
			default:
				discordant++
			}
		}
	}
	den := math.Sqrt((concordant + discordant + tiesX) * (concordant + discordant + tiesY))
	if den == 0 {
		return 0
	}
	return finiteOr((concordant-discordant)/den, 0)
}

// MutualInformation is the mutual information of x and y after binning
// each into equal-width buckets, normalized by the smaller marginal
// entropy. The result is in [0, 1]; 0 means no detectable dependence.
func MutualInformation(x, y []float64, bins int) float64 {
	if len(x) != len(y) || len(x) < MinMIObservations {
		return 0
	}
	if bins < 2 {
		bins = 20
	}
	bx := digitize(x, bins)
	by := digitize(y, bins)

	n := float64(len(x))
	joint := make(map[[2]int]float64)
	px := make(map[int]float64)
	py := make(map[int]float64)
	for i := range bx {
		joint[[2]int{bx[i], by[i]}]++
		px[bx[i]]++
		py[by[i]]++
	}

	hx := entropy(px, n)
	hy := entropy(py, n)
	hxy := entropy(joint, n)
	h := min(hx, hy)
	if h <= 0 {
		return 0
	}
	return finiteOr((hx+hy-hxy)/h, 0)
}

// digitize maps each value to the number of bin edges at or below it, with
// edges spaced evenly from min(x) to max(x).
func digitize(x []float64, bins int) []int {
	edges := make([]float64, bins)
	floats.Span(edges, slices.Min(x), slices.Max(x))
	out := make([]int, len(x))
	for i, v := range x {
		out[i] = sort.Search(len(edges), func(k int) bool { return edges[k] > v })
	}
	return out
}

func entropy[K comparable](counts map[K]float64, n float64) float64 {
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := c / n
		h -= p * math.Log2(p)
	}
	return h
}
