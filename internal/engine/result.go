// internal/engine/result.go
package engine

import (
	"math"

	"pairdp/core/dist"
	"pairdp/core/dp"
	"pairdp/internal/config"
	"pairdp/internal/pairs"
	"pairdp/pkg/api"
)

// Alignment is a Viterbi path flattened to text.
type Alignment struct {
	Track1, Track2 string
	States         []string
	Scores         []float64 // cumulative, per column
}

// Result of one engine run. Scores are natural logs; NaN means either
// unreachable or not requested (see Ran).
type Result struct {
	RunID     string
	Pair      pairs.Pair
	Len1      int
	Len2      int
	Model     string
	ScoreType dist.ScoreType
	Algorithm string

	Viterbi, Forward, Backward float64
	Alignment                  *Alignment

	// MatchProbs[i][j] is the posterior that residue i of seq1 pairs with
	// residue j of seq2. Only filled when posteriors are requested.
	MatchProbs [][]float64
	Cached     bool
}

// Ran reports whether algo was part of this run.
func (r Result) Ran(algo string) bool {
	return r.Algorithm == config.AlgoAll || r.Algorithm == algo
}

// Score is the headline score: Viterbi if it ran, else Forward, else Backward.
func (r Result) Score() float64 {
	switch {
	case r.Ran(config.AlgoViterbi):
		return r.Viterbi
	case r.Ran(config.AlgoForward):
		return r.Forward
	default:
		return r.Backward
	}
}

// Reachable reports whether the headline score is usable.
func (r Result) Reachable() bool {
	s := r.Score()
	return !math.IsNaN(s) && !math.IsInf(s, -1)
}

func newAlignment(p *dp.StatePath) *Alignment {
	t1, t2 := p.Alignment.Strings()
	return &Alignment{
		Track1: t1,
		Track2: t2,
		States: p.StateNames(),
		Scores: append([]float64(nil), p.Scores...),
	}
}

func (r Result) score(algo string, v float64) *api.Score {
	if !r.Ran(algo) {
		return nil
	}
	return api.ScoreOf(v)
}

// V1 converts to the stable wire schema.
func (r Result) V1() api.ResultV1 {
	out := api.ResultV1{
		RunID:      r.RunID,
		PairID:     r.Pair.ID,
		Seq1ID:     r.Pair.Seq1ID,
		Seq2ID:     r.Pair.Seq2ID,
		Len1:       r.Len1,
		Len2:       r.Len2,
		Model:      r.Model,
		ScoreType:  r.ScoreType.String(),
		Algorithm:  r.Algorithm,
		Reachable:  r.Reachable(),
		Viterbi:    r.score(config.AlgoViterbi, r.Viterbi),
		Forward:    r.score(config.AlgoForward, r.Forward),
		Backward:   r.score(config.AlgoBackward, r.Backward),
		MatchProbs: r.MatchProbs,
		Cached:     r.Cached,
	}
	if a := r.Alignment; a != nil {
		av := &api.AlignmentV1{Track1: a.Track1, Track2: a.Track2, States: a.States, Scores: make([]api.Score, len(a.Scores))}
		for i, s := range a.Scores {
			av.Scores[i] = api.Score(s)
		}
		out.Alignment = av
	}
	return out
}

// fromV1 restores a stored result. Sequences come from the job, not the
// store, since the key already pins them.
func fromV1(v api.ResultV1, p pairs.Pair, st dist.ScoreType) Result {
	r := Result{
		Pair:       p,
		Len1:       v.Len1,
		Len2:       v.Len2,
		Model:      v.Model,
		ScoreType:  st,
		Algorithm:  v.Algorithm,
		Viterbi:    v.Viterbi.Float(),
		Forward:    v.Forward.Float(),
		Backward:   v.Backward.Float(),
		MatchProbs: v.MatchProbs,
	}
	if a := v.Alignment; a != nil {
		al := &Alignment{Track1: a.Track1, Track2: a.Track2, States: a.States, Scores: make([]float64, len(a.Scores))}
		for i, s := range a.Scores {
			al.Scores[i] = float64(s)
		}
		r.Alignment = al
	}
	return r
}
