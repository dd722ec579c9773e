package stats

import (
	"math"
	"slices"

	"github.com/seenimoa/stonks/pkg/models"
)

// Column is one named input series for Align.
type Column struct {
	Name   string
	Points []models.DatedValue
}

// Aligned is a set of series sharing one date axis.
type Aligned struct {
	Dates  []string
	Names  []string
	Values map[string][]float64
}

// Align puts the columns on the sorted union of their dates, carrying each
// series' last value forward. Before a series' first observation the value
// is NaN. Zero and NaN observations are ignored. A repeated name replaces
// the earlier column's data but keeps its position.
func Align(cols []Column) Aligned {
	byName := make(map[string]map[string]float64, len(cols))
	var names []string
	seen := make(map[string]struct{})
	for _, c := range cols {
		m := make(map[string]float64, len(c.Points))
		for _, p := range c.Points {
			if p.Date == "" || p.Value == 0 || math.IsNaN(p.Value) {
				continue
			}
			m[p.Date] = p.Value
			seen[p.Date] = struct{}{}
		}
		if _, dup := byName[c.Name]; !dup {
			names = append(names, c.Name)
		}
		byName[c.Name] = m
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	out := Aligned{Dates: dates, Names: names, Values: make(map[string][]float64, len(names))}
	for _, name := range names {
		m := byName[name]
		col := make([]float64, len(dates))
		last := math.NaN()
		for i, d := range dates {
			if v, ok := m[d]; ok {
				last = v
			}
			col[i] = last
		}
		out.Values[name] = col
	}
	return out
}
