// internal/output/rows.go
package output

import (
	"fmt"
	"math"
	"strconv"

	"pairdp/internal/config"
	"pairdp/internal/engine"
)

// FormatScore prints a log score for TSV: "." when the algorithm did not
// run, "NA" when it ran and found no alignment.
func FormatScore(v float64, ran bool) string {
	switch {
	case !ran:
		return "."
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "NA"
	default:
		return strconv.FormatFloat(v, 'f', 6, 64)
	}
}

// FormatRowTSV returns the TSVHeader columns (no trailing newline).
func FormatRowTSV(r engine.Result) string {
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\t%t\t%t",
		r.Pair.ID, r.Pair.Seq1ID, r.Pair.Seq2ID,
		r.Len1, r.Len2, r.ScoreType,
		FormatScore(r.Viterbi, r.Ran(config.AlgoViterbi)),
		FormatScore(r.Forward, r.Ran(config.AlgoForward)),
		FormatScore(r.Backward, r.Ran(config.AlgoBackward)),
		r.Reachable(), r.Cached,
	)
}
