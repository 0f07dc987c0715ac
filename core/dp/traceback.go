// core/dp/traceback.go
package dp

import (
	"slices"

	"pairdp/core/alphabet"
	"pairdp/core/model"
)

// traceback rebuilds the alignment from the end sentinel's backpointer.
//
// Pass 1 walks the chain from the end, consuming each sequence from its
// last position backwards and building reversed tracks and states. Only
// once the walk is over is the column count known, so pass 2 re-walks the
// chain and drops each cumulative score into its column from the right.
func (r *run) traceback(end *BackPointer, score float64) (*StatePath, error) {
	var (
		states []*model.State
		cols   [2][]alphabet.Symbol
		left   = [2]int{r.seqs[0].Len(), r.seqs[1].Len()}
	)

	// pass 1
	prev := end
	for bp := end.Back; ; prev, bp = bp, bp.Back {
		if bp == nil {
			return nil, invariant("traceback", "chain broken after state %s", prev.State.Name())
		}
		if bp.Terminal() {
			break
		}
		states = append(states, bp.State)
		adv := bp.State.Advance()
		for axis := 0; axis < 2; axis++ {
			if !bp.State.Emitting() || adv[axis] == 0 {
				cols[axis] = append(cols[axis], alphabet.Gap)
				continue
			}
			if left[axis] == 0 {
				return nil, invariant("traceback", "state %s consumes past the start of sequence %d", bp.State.Name(), axis+1)
			}
			cols[axis] = append(cols[axis], r.symbol(axis, left[axis]))
			left[axis]--
		}
	}
	if left != [2]int{} {
		return nil, invariant("traceback", "path leaves %d and %d positions unconsumed", left[0], left[1])
	}
	slices.Reverse(states)
	slices.Reverse(cols[0])
	slices.Reverse(cols[1])

	// pass 2
	scores := make([]float64, len(states))
	k := len(states) - 1
	for bp := end.Back; !bp.Terminal(); bp = bp.Back {
		scores[k] = bp.Score
		k--
	}

	return &StatePath{
		Score: score,
		Alignment: Alignment{Tracks: [2]Track{
			{Seq: r.seqs[0], Columns: cols[0]},
			{Seq: r.seqs[1], Columns: cols[1]},
		}},
		States: states,
		Scores: scores,
	}, nil
}
