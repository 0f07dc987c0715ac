// core/dp/forward.go
package dp

import (
	"math"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
)

// Forward returns the total log score of all alignments of seqs[0] against
// seqs[1]. NaN means no alignment exists; that is not an error.
func (dp *PairwiseDP) Forward(seqs []alphabet.Sequence, st dist.ScoreType) (float64, error) {
	r, err := dp.begin("forward", seqs, st)
	if err != nil {
		return math.NaN(), err
	}
	defer r.release()
	return r.forward(newRollingCursor(r, false)), nil
}

// ForwardMatrix is Forward keeping every cell.
func (dp *PairwiseDP) ForwardMatrix(seqs []alphabet.Sequence, st dist.ScoreType) (*Matrix, error) {
	r, err := dp.begin("forward", seqs, st)
	if err != nil {
		return nil, err
	}
	defer r.release()
	cur := newMatrixCursor(r)
	score := r.forward(cur)
	return newMatrix(r, cur, score), nil
}

func (r *run) forward(cur cursor) float64 {
	w := cur.press()
	first := true
	for cur.hasNext() {
		cur.next(w)
		r.forwardCell(w, first)
		first = false
	}
	return w[0][0].Scores[r.magic]
}

// forwardCell sums over incoming transitions. Emitting states look back
// along their advance; silent states read the cell being filled.
func (r *run) forwardCell(w *window, first bool) {
	cell := w[0][0]
	col := cell.Scores
	for l := range r.states {
		if l < r.nEmit && first {
			col[l] = seed(l == r.magic)
			continue
		}
		weight := 0.0
		src := col
		if l < r.nEmit {
			weight = cell.Emissions[l]
			if !usable(weight) {
				col[l] = math.NaN()
				continue
			}
			a := r.adv[l]
			src = w[a[0]][a[1]].Scores
		}
		opts := r.gather(src, r.pred[l])
		s, _ := logSum(opts, r.predW[l])
		col[l] = weight + s
	}
}

// gather copies src at the option indexes into the run's scratch buffer.
func (r *run) gather(src []float64, idx []int) []float64 {
	opts := r.buf[:len(idx)]
	for k, j := range idx {
		opts[k] = src[j]
	}
	return opts
}

// seed initializes emitting states at the scan origin.
func seed(magic bool) float64 {
	if magic {
		return 0
	}
	return math.NaN()
}
