// internal/visitors/gate.go
package visitors

import (
	"math"

	"pairdp/internal/engine"
)

// ScoreGate drops results below a headline score. Unreachable results are
// kept only when ReachableOnly is false and no MinScore is set.
type ScoreGate struct {
	ReachableOnly bool
	MinScore      float64 // log score; -Inf disables
}

func NewScoreGate(reachableOnly bool, minScore float64) ScoreGate {
	return ScoreGate{ReachableOnly: reachableOnly, MinScore: minScore}
}

func (g ScoreGate) Visit(r engine.Result) (bool, engine.Result, error) {
	if !r.Reachable() {
		return !g.ReachableOnly && math.IsInf(g.MinScore, -1), r, nil
	}
	return r.Score() >= g.MinScore, r, nil
}
