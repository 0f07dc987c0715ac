// internal/common/sort.go
package common

import (
	"sort"

	"pairdp/internal/engine"
)

// LessResult defines a stable order for results (for --sort).
func LessResult(a, b engine.Result) bool {
	if a.Pair.ID != b.Pair.ID {
		return a.Pair.ID < b.Pair.ID
	}
	if a.Pair.Seq1ID != b.Pair.Seq1ID {
		return a.Pair.Seq1ID < b.Pair.Seq1ID
	}
	return a.Pair.Seq2ID < b.Pair.Seq2ID
}

func SortResults(rs []engine.Result) {
	sort.SliceStable(rs, func(i, j int) bool { return LessResult(rs[i], rs[j]) })
}

// SortResultsByScore orders by headline score, best first. Unreachable
// results go last; ties keep LessResult order.
func SortResultsByScore(rs []engine.Result) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		ra, rb := a.Reachable(), b.Reachable()
		if ra != rb {
			return ra
		}
		if ra && a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		return LessResult(a, b)
	})
}
