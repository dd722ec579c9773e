package macro

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/stonks/internal/analysis/stats"
	"github.com/seenimoa/stonks/internal/catalog"
)

const (
	topN              = 20
	surpriseThreshold = 0.4
	crossClassWeight  = 1.5
	miBins            = 20
)

// Pair is the dependence between two assets' aligned daily returns.
// Kendall and MutualInfo are only filled for pairs that appear in one of
// the reported lists.
type Pair struct {
	Asset1          string             `json:"asset1" msgpack:"asset1"`
	Asset2          string             `json:"asset2" msgpack:"asset2"`
	Class1          catalog.AssetClass `json:"class1" msgpack:"class1"`
	Class2          catalog.AssetClass `json:"class2" msgpack:"class2"`
	Pearson         float64            `json:"pearson" msgpack:"pearson"`
	Spearman        float64            `json:"spearman" msgpack:"spearman"`
	Kendall         *float64           `json:"kendall,omitempty" msgpack:"kendall,omitempty"`
	MutualInfo      *float64           `json:"mutual_info,omitempty" msgpack:"mutual_info,omitempty"`
	SameClass       bool               `json:"same_class" msgpack:"same_class"`
	SurprisingScore float64            `json:"surprising_score" msgpack:"surprising_score"`

	x, y []float64
}

// Correlations holds the matrices and ranked pair lists.
type Correlations struct {
	Tickers    []string
	Classes    map[string]catalog.AssetClass
	Pearson    [][]float64
	Spearman   [][]float64
	Top        []*Pair
	Bottom     []*Pair
	Surprising []*Pair
	All        []*Pair
}

// alignReturns takes the trailing min-length window of every asset with
// at least 20 returns. NaN returns become 0.
func alignReturns(assets []*AssetStats) ([]*AssetStats, map[string][]float64) {
	var valid []*AssetStats
	for _, a := range assets {
		if len(a.returns) >= minReturns {
			valid = append(valid, a)
		}
	}
	if len(valid) < 2 {
		return nil, nil
	}

	minLen := len(valid[0].returns)
	for _, a := range valid[1:] {
		minLen = min(minLen, len(a.returns))
	}

	aligned := make(map[string][]float64, len(valid))
	for _, a := range valid {
		tail := a.returns[len(a.returns)-minLen:]
		clean := make([]float64, minLen)
		for i, r := range tail {
			if !math.IsNaN(r) {
				clean[i] = r
			}
		}
		aligned[a.Ticker] = clean
	}
	return valid, aligned
}

// correlate builds both matrices over every pair, ranks the pairs, then
// adds Kendall tau and normalized mutual information to the reported ones.
func correlate(ctx context.Context, assets []*AssetStats) (*Correlations, error) {
	c := &Correlations{
		Tickers:    []string{},
		Classes:    map[string]catalog.AssetClass{},
		Top:        []*Pair{},
		Bottom:     []*Pair{},
		Surprising: []*Pair{},
	}
	valid, aligned := alignReturns(assets)
	if len(valid) < 2 {
		return c, nil
	}

	n := len(valid)
	c.Pearson = identity(n)
	c.Spearman = identity(n)
	for _, a := range valid {
		c.Tickers = append(c.Tickers, a.Ticker)
		c.Classes[a.Ticker] = a.Class
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := valid[i], valid[j]
			x, y := aligned[a.Ticker], aligned[b.Ticker]
			p := &Pair{
				Asset1:    a.Ticker,
				Asset2:    b.Ticker,
				Class1:    a.Class,
				Class2:    b.Class,
				Pearson:   stats.Pearson(x, y),
				Spearman:  stats.Spearman(x, y),
				SameClass: a.Class == b.Class,
				x:         x,
				y:         y,
			}
			if !p.SameClass {
				p.SurprisingScore = math.Abs(p.Pearson) * crossClassWeight
			}
			c.Pearson[i][j], c.Pearson[j][i] = p.Pearson, p.Pearson
			c.Spearman[i][j], c.Spearman[j][i] = p.Spearman, p.Spearman
			c.All = append(c.All, p)
		}
	}

	c.Top = ranked(c.All, func(a, b *Pair) bool { return a.Pearson > b.Pearson }, topN)
	c.Bottom = ranked(c.All, func(a, b *Pair) bool { return a.Pearson < b.Pearson }, topN)
	bySurprise := ranked(c.All, func(a, b *Pair) bool { return a.SurprisingScore > b.SurprisingScore }, len(c.All))
	for _, p := range bySurprise {
		if p.SurprisingScore <= surpriseThreshold || len(c.Surprising) == topN {
			break
		}
		c.Surprising = append(c.Surprising, p)
	}

	if err := addDependence(ctx, c.Top, c.Bottom, c.Surprising); err != nil {
		return nil, err
	}
	return c, nil
}

// addDependence computes the rank and information measures once per
// distinct pair, in parallel.
func addDependence(ctx context.Context, lists ...[]*Pair) error {
	seen := make(map[*Pair]bool)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, list := range lists {
		for _, p := range list {
			if seen[p] {
				continue
			}
			seen[p] = true
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				tau := stats.Kendall(p.x, p.y)
				mi := stats.MutualInformation(p.x, p.y, miBins)
				p.Kendall, p.MutualInfo = &tau, &mi
				return nil
			})
		}
	}
	return g.Wait()
}

// ranked returns the first k pairs under less, keeping input order for
// ties.
func ranked(pairs []*Pair, less func(a, b *Pair) bool, k int) []*Pair {
	out := append([]*Pair(nil), pairs...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func identity(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		m[i][i] = 1
	}
	return m
}
