package macro

import (
	"slices"

	"github.com/seenimoa/stonks/internal/catalog"
	"github.com/seenimoa/stonks/pkg/models"
)

// Cell is one heatmap square; X and Y index Heatmap.Tickers.
type Cell struct {
	X       int                `json:"x"`
	Y       int                `json:"y"`
	Ticker1 string             `json:"ticker1"`
	Ticker2 string             `json:"ticker2"`
	Class1  catalog.AssetClass `json:"class1"`
	Class2  catalog.AssetClass `json:"class2"`
	Value   float64            `json:"value"`
}

// Heatmap is the Pearson matrix reordered so each class is contiguous.
type Heatmap struct {
	Tickers         []string                   `json:"tickers"`
	ClassBoundaries map[catalog.AssetClass]int `json:"class_boundaries"`
	Cells           []Cell                     `json:"cells"`
	Size            int                        `json:"size"`
}

// buildHeatmap groups tickers by class in catalog.Classes order, sorted
// within a class. A class boundary is the index of its first ticker, -1
// when the class is absent.
func buildHeatmap(c *Correlations) *Heatmap {
	if len(c.Tickers) == 0 {
		return nil
	}

	groups := make(map[catalog.AssetClass][]string)
	for _, t := range c.Tickers {
		groups[c.Classes[t]] = append(groups[c.Classes[t]], t)
	}
	order := append([]catalog.AssetClass(nil), catalog.Classes...)
	known := make(map[catalog.AssetClass]bool, len(order))
	for _, cl := range order {
		known[cl] = true
	}
	for _, t := range c.Tickers {
		if cl := c.Classes[t]; !known[cl] {
			known[cl] = true
			order = append(order, cl)
		}
	}

	h := &Heatmap{ClassBoundaries: make(map[catalog.AssetClass]int, len(catalog.Classes))}
	for _, cl := range catalog.Classes {
		h.ClassBoundaries[cl] = -1
	}
	for _, cl := range order {
		g := groups[cl]
		if len(g) == 0 {
			continue
		}
		sorted := append([]string(nil), g...)
		slices.Sort(sorted)
		h.ClassBoundaries[cl] = len(h.Tickers)
		h.Tickers = append(h.Tickers, sorted...)
	}

	index := make(map[string]int, len(c.Tickers))
	for i, t := range c.Tickers {
		index[t] = i
	}
	for i, t1 := range h.Tickers {
		for j, t2 := range h.Tickers {
			h.Cells = append(h.Cells, Cell{
				X:       j,
				Y:       i,
				Ticker1: t1,
				Ticker2: t2,
				Class1:  c.Classes[t1],
				Class2:  c.Classes[t2],
				Value:   models.Round(c.Pearson[index[t1]][index[t2]], 3),
			})
		}
	}
	h.Size = len(h.Tickers)
	return h
}
