// internal/cmdutil/run.go
package cmdutil

import (
	"context"

	"pairdp/internal/engine"
	"pairdp/internal/pairs"
	"pairdp/internal/pipeline"
)

// Counts tallies one streamed run.
type Counts struct {
	Seen int // results handed to the visitor
	Kept int // results the visitor kept and send accepted
}

// RunStream runs the pipeline, filters each result through visit and passes
// kept outputs to send, in input order. The first visit or send error stops
// the run.
func RunStream[T any](
	ctx context.Context,
	cfg pipeline.Config,
	list []pairs.Pair,
	r pipeline.Runner,
	visit func(engine.Result) (bool, T, error),
	send func(T) error,
) (Counts, error) {
	var c Counts
	err := pipeline.ForEachResult(ctx, cfg, list, r, func(res engine.Result) error {
		c.Seen++
		keep, out, err := visit(res)
		if err != nil || !keep {
			return err
		}
		if err := send(out); err != nil {
			return err
		}
		c.Kept++
		return nil
	})
	return c, err
}
