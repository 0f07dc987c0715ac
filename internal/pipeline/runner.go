// internal/pipeline/runner.go
package pipeline

import (
	"context"

	"pairdp/internal/engine"
	"pairdp/internal/pairs"
)

// Runner is the minimal capability the pipeline needs.
// Any engine (including fakes in tests) can satisfy this.
type Runner interface {
	Run(ctx context.Context, p pairs.Pair) (engine.Result, error)
}
