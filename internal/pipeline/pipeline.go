// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"pairdp/internal/engine"
	"pairdp/internal/logging"
	"pairdp/internal/pairs"
	"pairdp/internal/runutil"
	"pairdp/internal/telemetry"
)

// Config controls the batch pipeline.
type Config struct {
	Threads   int // worker goroutines (>=1)
	DedupeCap int // identical-pair memory; 0 uses the runutil default
	Logger    *slog.Logger
}

// ForEachResult runs every pair and calls visit with results in input order.
// Pairs repeated verbatim (same ID and sequences) run once. It returns the
// first error encountered (including context cancellation); visit is not
// called for pairs after a failed one.
func ForEachResult(
	parent context.Context,
	cfg Config,
	list []pairs.Pair,
	r Runner,
	visit func(engine.Result) error,
) error {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	log := logging.OrDiscard(cfg.Logger)

	sctx, span := telemetry.StartSpan(parent, "pipeline.batch",
		attribute.Int("pairs", len(list)), attribute.Int("threads", cfg.Threads))
	defer span.End()

	ctx, cancel := context.WithCancel(sctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)

	type done struct {
		idx int
		res engine.Result
	}
	results := make(chan done, cfg.Threads*2)

	// Collector: reorders and visits.
	var cerr error
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		pending := make(map[int]engine.Result, cfg.Threads*2)
		next := 0
		for d := range results {
			if cerr != nil {
				continue
			}
			pending[d.idx] = d.res
			for {
				res, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if err := visit(res); err != nil {
					cerr = err
					cancel()
					break
				}
			}
		}
	}()

	// Feed work
	seen := runutil.NewLRUSet[pairs.Pair](cfg.DedupeCap)
	idx := 0
	for _, p := range list {
		if gctx.Err() != nil {
			break
		}
		if seen.Add(p) {
			log.Warn("duplicate pair skipped", slog.String("pair", p.ID))
			continue
		}
		i := idx
		idx++
		g.Go(func() error {
			res, err := r.Run(gctx, p)
			if err != nil {
				return fmt.Errorf("pair %s: %w", p.ID, err)
			}
			select {
			case results <- done{idx: i, res: res}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	werr := g.Wait()
	close(results)
	<-collected

	err := cerr
	if err == nil {
		err = parent.Err()
	}
	if err == nil {
		err = werr
	}
	telemetry.RecordError(span, err)
	return err
}
