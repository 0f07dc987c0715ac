// core/dp/errors.go
package dp

import (
	"errors"
	"fmt"
)

var (
	ErrNotPair          = errors.New("pairwise DP needs exactly two sequences")
	ErrAlphabetMismatch = errors.New("sequence alphabet does not match the model")
	ErrNoAlignment      = errors.New("no alignment exists")
	ErrInvariant        = errors.New("dp invariant violated")
)

// InvariantError is a broken internal contract. It is a defect, never a
// legitimately unreachable alignment, and is always reported as an error.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrInvariant, e.Detail)
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

func invariant(op, format string, a ...any) error {
	return &InvariantError{Op: op, Detail: fmt.Sprintf(format, a...)}
}
