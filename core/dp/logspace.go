// core/dp/logspace.go
package dp

import "math"

// combiner folds the incoming (or outgoing) options of one state.
// src[k] is the option's score, trans[k] its log transition weight.
// It returns the combined score and the winning option, -1 when no
// option is usable (the state is unreachable and the score is NaN).
type combiner func(src, trans []float64) (float64, int)

func usable(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, -1) }

// logSum is log(sum_k exp(src[k]+trans[k])). The first usable source is
// factored out as a constant; unusable sources and transitions are skipped.
func logSum(src, trans []float64) (float64, int) {
	constant := math.NaN()
	sum := 0.0
	for k, s := range src {
		if !usable(s) {
			continue
		}
		if math.IsNaN(constant) {
			constant = s
		}
		if t := trans[k]; usable(t) {
			sum += math.Exp(s + t - constant)
		}
	}
	if math.IsNaN(constant) {
		return math.NaN(), -1
	}
	return math.Log(sum) + constant, -1
}

// maxScore keeps the first strictly greater src[k]+trans[k].
func maxScore(src, trans []float64) (float64, int) {
	best, bestK := math.Inf(-1), -1
	for k, s := range src {
		if !usable(s) {
			continue
		}
		if v := s + trans[k]; v > best {
			best, bestK = v, k
		}
	}
	if bestK < 0 {
		return math.NaN(), -1
	}
	return best, bestK
}
