// core/dp/cell.go
package dp

import (
	"math"

	"pairdp/core/model"
)

// Cell is one grid point. Scores and Back have one slot per state in DP
// order; Emissions has one slot per emitting state and is shared with the
// emission cache, so it must not be written.
type Cell struct {
	Scores    []float64
	Emissions []float64
	Back      []*BackPointer
}

func newCell(states int, withBack bool) *Cell {
	c := &Cell{Scores: make([]float64, states)}
	if withBack {
		c.Back = make([]*BackPointer, states)
	}
	return c
}

// edgeCell stands for every coordinate off the grid: unreachable scores,
// unsupported emissions, no backpointers. Nothing writes to it.
func edgeCell(states, emitting int) *Cell {
	c := &Cell{
		Scores:    make([]float64, states),
		Emissions: make([]float64, emitting),
		Back:      make([]*BackPointer, states),
	}
	for i := range c.Scores {
		c.Scores[i] = math.Inf(-1)
	}
	for i := range c.Emissions {
		c.Emissions[i] = math.Inf(-1)
	}
	return c
}

// BackPointer is an immutable Viterbi traceback node. Partial paths share
// their common prefix; the terminal node is its own predecessor.
type BackPointer struct {
	State *model.State
	Back  *BackPointer
	Score float64
}

func terminal(s *model.State) *BackPointer {
	bp := &BackPointer{State: s}
	bp.Back = bp
	return bp
}

func (bp *BackPointer) Terminal() bool { return bp.Back == bp }
