// core/dp/viterbi.go
package dp

import (
	"math"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
)

// Viterbi finds the best single alignment. An unreachable alignment comes
// back as a StatePath with a NaN score and no columns, not as an error.
func (dp *PairwiseDP) Viterbi(seqs []alphabet.Sequence, st dist.ScoreType) (*StatePath, error) {
	r, err := dp.begin("viterbi", seqs, st)
	if err != nil {
		return nil, err
	}
	defer r.release()

	origin := terminal(r.states[r.magic])
	cur := newRollingCursor(r, true)
	w := cur.press()
	first := true
	for cur.hasNext() {
		cur.next(w)
		r.viterbiCell(w, first, origin)
		first = false
	}

	end := w[0][0]
	score := end.Scores[r.magic]
	if !usable(score) {
		return r.emptyPath(score), nil
	}
	bp := end.Back[r.magic]
	if bp == nil {
		return nil, invariant("viterbi", "end score %v has no backpointer", score)
	}
	return r.traceback(bp, score)
}

// viterbiCell keeps the best incoming option per state and links a new
// backpointer to the winner's own node.
func (r *run) viterbiCell(w *window, first bool, origin *BackPointer) {
	cell := w[0][0]
	col, bps := cell.Scores, cell.Back
	for l, s := range r.states {
		if l < r.nEmit && first {
			col[l] = seed(l == r.magic)
			bps[l] = nil
			if l == r.magic {
				bps[l] = origin
			}
			continue
		}
		weight := 0.0
		src, back := col, bps
		if l < r.nEmit {
			weight = cell.Emissions[l]
			if !usable(weight) {
				col[l], bps[l] = math.NaN(), nil
				continue
			}
			a := r.adv[l]
			prev := w[a[0]][a[1]]
			src, back = prev.Scores, prev.Back
		}
		best, k := maxScore(r.gather(src, r.pred[l]), r.predW[l])
		if k < 0 {
			col[l], bps[l] = math.NaN(), nil
			continue
		}
		col[l] = weight + best
		bps[l] = &BackPointer{State: s, Back: back[r.pred[l][k]], Score: col[l]}
	}
}
