// core/dp/matrix.go
package dp

import (
	"pairdp/core/alphabet"
	"pairdp/core/model"
)

// Matrix is a retained Forward or Backward grid. Coordinates include the
// padding: 0..len+1 on each axis.
type Matrix struct {
	states []*model.State
	seqs   [2]alphabet.Sequence
	score  float64
	cells  *gridCursor
}

func newMatrix(r *run, cur *gridCursor, score float64) *Matrix {
	return &Matrix{states: r.states, seqs: r.seqs, score: score, cells: cur}
}

// Score is the run's total log score.
func (m *Matrix) Score() float64 { return m.score }

// States are the model states in the order of the score slots.
func (m *Matrix) States() []*model.State { return m.states }

func (m *Matrix) Sequences() [2]alphabet.Sequence { return m.seqs }

// Dims is the grid size along sequence 1 and sequence 2.
func (m *Matrix) Dims() (int, int) { return m.cells.ext[0], m.cells.ext[1] }

// At is the log score of state at (p0, p1); off-grid reads as -Inf.
func (m *Matrix) At(p0, p1, state int) float64 { return m.cells.at(p0, p1).Scores[state] }

// Cell exposes a whole grid point.
func (m *Matrix) Cell(p0, p1 int) *Cell { return m.cells.at(p0, p1) }
