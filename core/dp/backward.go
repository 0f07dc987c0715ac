// core/dp/backward.go
package dp

import (
	"math"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
)

// Backward computes the same total as Forward, from the far corner inward.
func (dp *PairwiseDP) Backward(seqs []alphabet.Sequence, st dist.ScoreType) (float64, error) {
	m, err := dp.BackwardMatrix(seqs, st)
	if err != nil {
		return math.NaN(), err
	}
	return m.Score(), nil
}

// BackwardMatrix keeps every cell. The reverse scan addresses its lookback
// relative to the far boundary, so it always needs the full grid.
func (dp *PairwiseDP) BackwardMatrix(seqs []alphabet.Sequence, st dist.ScoreType) (*Matrix, error) {
	r, err := dp.begin("backward", seqs, st)
	if err != nil {
		return nil, err
	}
	defer r.release()
	cur := newBackMatrixCursor(r)
	score := r.backward(cur)
	return newMatrix(r, cur, score), nil
}

func (r *run) backward(cur cursor) float64 {
	w := cur.press()
	first := true
	for cur.hasNext() {
		cur.next(w)
		r.backwardCell(w, first)
		first = false
	}
	return w[0][0].Scores[r.magic]
}

// backwardCell sums over outgoing transitions, visiting states in reverse
// DP order so silent successors in the same cell are already done.
func (r *run) backwardCell(w *window, first bool) {
	cell := w[0][0]
	col := cell.Scores
	for l := len(r.states) - 1; l >= 0; l-- {
		if l < r.nEmit && first {
			col[l] = seed(l == r.magic)
			continue
		}
		dests := r.succ[l]
		opts := r.buf[:len(dests)]
		for k, d := range dests {
			if d < r.nEmit {
				a := r.adv[d]
				target := w[a[0]][a[1]]
				opts[k] = target.Scores[d] + target.Emissions[d]
			} else {
				opts[k] = col[d]
			}
		}
		col[l], _ = logSum(opts, r.succW[l])
	}
}
