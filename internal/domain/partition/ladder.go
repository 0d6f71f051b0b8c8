package partition

import (
	"math"
	"sort"

	"github.com/vellascocode/lookingglass/internal/domain"
)

// Direction selects the percent-change ordering used when walking the
// threshold ladder.
type Direction int

const (
	// Descending picks the strongest movers first ("best" bucket).
	Descending Direction = iota
	// Ascending picks the most negative movers first ("worst" bucket).
	Ascending
)

// Ladder is the fixed ascending sequence of candidate price ceilings
// searched during threshold selection.
type Ladder struct {
	Rungs []float64
}

// NewLadder builds rungs start, start+step, ... up to and including max.
// With the production values (0.01, 0.05, 1.00) this yields
// 0.01, 0.06, ..., 0.96, 1.00.
func NewLadder(start, step, max float64) Ladder {
	var rungs []float64
	for r := start; r < max; r += step {
		// Guard against float drift producing a rung at or past max.
		rungs = append(rungs, math.Round(r*100)/100)
	}
	rungs = append(rungs, max)
	return Ladder{Rungs: rungs}
}

// First returns the lowest rung.
func (l Ladder) First() float64 { return l.Rungs[0] }

// Last returns the highest rung.
func (l Ladder) Last() float64 { return l.Rungs[len(l.Rungs)-1] }

// Search walks the ladder bottom-up and returns the selected instruments
// together with the winning ceiling. A ceiling qualifies when at least
// target instruments are priced strictly below it; the first qualifying
// rung wins and the selection is capped at target. If no rung qualifies
// the final rung is returned with every instrument below it. An empty
// pool yields an empty selection at the first rung.
func (l Ladder) Search(pool []domain.Instrument, target int, dir Direction) ([]domain.Instrument, float64) {
	if len(pool) == 0 {
		return nil, l.First()
	}

	var selected []domain.Instrument
	ceiling := l.First()

	for _, rung := range l.Rungs {
		below := filterBelow(pool, rung)
		sortByPercentChange(below, dir)
		if len(below) >= target {
			return below[:target], rung
		}
		selected = below
		ceiling = rung
	}
	return selected, ceiling
}

func filterBelow(pool []domain.Instrument, ceiling float64) []domain.Instrument {
	out := make([]domain.Instrument, 0, len(pool))
	for _, in := range pool {
		if in.Price < ceiling {
			out = append(out, in)
		}
	}
	return out
}

// sortByPercentChange sorts in place. The sort is stable so ties keep
// their input order; no secondary key is imposed.
func sortByPercentChange(ins []domain.Instrument, dir Direction) {
	sort.SliceStable(ins, func(i, j int) bool {
		if dir == Ascending {
			return ins[i].PercentChange24h < ins[j].PercentChange24h
		}
		return ins[i].PercentChange24h > ins[j].PercentChange24h
	})
}
