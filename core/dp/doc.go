// Package dp is the pairwise dynamic-programming core: Forward, Backward
// and Viterbi over a pair-HMM from core/model, in log space.
//
// It is domain-only. It never imports internal/ packages, never logs and
// never looks at a context; callers own cancellation between runs.
//
// Scores are natural logs. NaN is the in-band "unreachable" value and is a
// result, not an error. Errors are reserved for bad input (ErrNotPair,
// ErrAlphabetMismatch, alphabet.ErrIllegalSymbol) and broken internal
// contracts (ErrInvariant).
package dp
