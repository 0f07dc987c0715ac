// core/dp/posterior.go
package dp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
)

// PosteriorMatrix combines a Forward and a Backward matrix into per-cell
// state posteriors.
type PosteriorMatrix struct {
	Forward, Backward *Matrix
	Total             float64
}

// Posterior runs both directions. A pair with no alignment fails with
// ErrNoAlignment since no posterior is defined.
func (dp *PairwiseDP) Posterior(seqs []alphabet.Sequence, st dist.ScoreType) (*PosteriorMatrix, error) {
	// one lease across both passes so they see the same model
	lease := dp.model.Lease()
	defer lease.Release()

	f, err := dp.ForwardMatrix(seqs, st)
	if err != nil {
		return nil, err
	}
	b, err := dp.BackwardMatrix(seqs, st)
	if err != nil {
		return nil, err
	}
	if !usable(f.Score()) {
		return nil, fmt.Errorf("posterior: %w", ErrNoAlignment)
	}
	return &PosteriorMatrix{Forward: f, Backward: b, Total: f.Score()}, nil
}

// LogProb is log P(state at (p0,p1) | seqs), -Inf where unreachable.
func (pm *PosteriorMatrix) LogProb(p0, p1, state int) float64 {
	v := pm.Forward.At(p0, p1, state) + pm.Backward.At(p0, p1, state) - pm.Total
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}

func (pm *PosteriorMatrix) Prob(p0, p1, state int) float64 {
	return math.Exp(pm.LogProb(p0, p1, state))
}

// MatchProb is the posterior that residue p0 of sequence 1 is aligned to
// residue p1 of sequence 2 by any [1,1] state other than the sentinel.
func (pm *PosteriorMatrix) MatchProb(p0, p1 int) float64 {
	var terms []float64
	for i, s := range pm.Forward.States() {
		if s.Magical() || s.Advance() != [2]int{1, 1} {
			continue
		}
		terms = append(terms, pm.LogProb(p0, p1, i))
	}
	if len(terms) == 0 {
		return 0
	}
	return math.Exp(floats.LogSumExp(terms))
}

// MatchProbs is MatchProb over every residue pair, row-major by sequence 1.
func (pm *PosteriorMatrix) MatchProbs() [][]float64 {
	n0, n1 := pm.Forward.Dims()
	out := make([][]float64, n0-2)
	for i := range out {
		out[i] = make([]float64, n1-2)
		for j := range out[i] {
			out[i][j] = pm.MatchProb(i+1, j+1)
		}
	}
	return out
}
