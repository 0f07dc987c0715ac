// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
	"pairdp/core/dp"
	"pairdp/core/model"
	"pairdp/internal/config"
	"pairdp/internal/logging"
	"pairdp/internal/pairs"
	"pairdp/internal/store"
	"pairdp/internal/telemetry"
	"pairdp/pkg/api"
)

// ResultStore persists results between runs. *store.Store satisfies it.
type ResultStore interface {
	Get(ctx context.Context, key string) (api.ResultV1, bool, error)
	Put(ctx context.Context, key string, res api.ResultV1) error
}

type Config struct {
	ScoreType dist.ScoreType
	Algorithm string // config.Algo*
	Posterior bool

	// ModelDigest identifies the model in store keys. Empty falls back to
	// name and version, which only holds within one process.
	ModelDigest string
	Store       ResultStore
	Logger      *slog.Logger
}

var ErrBadAlgorithm = errors.New("unknown algorithm")

// Engine is safe for concurrent use.
type Engine struct {
	cfg   Config
	model *model.Model
	dp    *dp.PairwiseDP
	log   *slog.Logger
	group singleflight.Group
}

func New(m *model.Model, cfg Config) (*Engine, error) {
	switch cfg.Algorithm {
	case config.AlgoViterbi, config.AlgoForward, config.AlgoBackward, config.AlgoAll:
	case "":
		cfg.Algorithm = config.AlgoViterbi
	default:
		return nil, fmt.Errorf("%w %q", ErrBadAlgorithm, cfg.Algorithm)
	}
	if !cfg.ScoreType.Valid() {
		return nil, fmt.Errorf("engine: invalid score type %d", cfg.ScoreType)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if cfg.ModelDigest == "" {
		cfg.ModelDigest = m.Name() + "@" + strconv.FormatUint(m.Version(), 10)
	}
	return &Engine{cfg: cfg, model: m, dp: dp.New(m), log: logging.OrDiscard(cfg.Logger)}, nil
}

func (e *Engine) Model() *model.Model { return e.model }
func (e *Engine) Config() Config      { return e.cfg }

// CacheStats exposes the DP emission cache counters.
func (e *Engine) CacheStats() dp.CacheStats { return e.dp.CacheStats() }

// Run aligns one pair. Identical concurrent jobs share one computation;
// each caller still gets its own RunID.
func (e *Engine) Run(ctx context.Context, p pairs.Pair) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	seqs, err := p.Sequences(e.model.CrossProduct())
	if err != nil {
		return Result{}, err
	}
	key := e.key(seqs)

	ctx, span := telemetry.StartSpan(ctx, "engine.Run",
		attribute.String("pair.id", p.ID),
		attribute.String("algorithm", e.cfg.Algorithm),
		attribute.Int("len1", seqs[0].Len()),
		attribute.Int("len2", seqs[1].Len()),
	)
	defer span.End()

	v, err, shared := e.group.Do(key, func() (any, error) { return e.compute(ctx, key, p, seqs) })
	if err != nil {
		telemetry.RecordError(span, err)
		telemetry.RunsTotal.WithLabelValues(e.cfg.Algorithm, "error").Inc()
		return Result{}, err
	}
	res := v.(Result)
	res.Pair = p
	res.RunID = uuid.NewString()
	span.SetAttributes(attribute.Bool("shared", shared), attribute.Bool("cached", res.Cached))
	return res, nil
}

func (e *Engine) key(seqs []alphabet.Sequence) string {
	return store.Key(e.cfg.ModelDigest, e.cfg.ScoreType.String(), e.cfg.Algorithm,
		strconv.FormatBool(e.cfg.Posterior), seqs[0].String(), seqs[1].String())
}

func (e *Engine) compute(ctx context.Context, key string, p pairs.Pair, seqs []alphabet.Sequence) (Result, error) {
	if e.cfg.Store != nil {
		v, ok, err := e.cfg.Store.Get(ctx, key)
		switch {
		case err != nil:
			telemetry.StoreLookups.WithLabelValues("error").Inc()
			e.log.Warn("result store lookup failed", slog.String("pair", p.ID), slog.Any("error", err))
		case ok:
			telemetry.StoreLookups.WithLabelValues("hit").Inc()
			telemetry.RunsTotal.WithLabelValues(e.cfg.Algorithm, "cached").Inc()
			res := fromV1(v, p, e.cfg.ScoreType)
			res.Cached = true
			return res, nil
		default:
			telemetry.StoreLookups.WithLabelValues("miss").Inc()
		}
	}

	start := time.Now()
	res, err := e.align(p, seqs)
	if err != nil {
		return Result{}, err
	}
	telemetry.RunDuration.WithLabelValues(e.cfg.Algorithm).Observe(time.Since(start).Seconds())
	telemetry.GridCells.Observe(float64((seqs[0].Len() + 2) * (seqs[1].Len() + 2)))
	outcome := "ok"
	if !res.Reachable() {
		outcome = "unreachable"
	}
	telemetry.RunsTotal.WithLabelValues(e.cfg.Algorithm, outcome).Inc()
	cs := e.dp.CacheStats()
	telemetry.EmissionCache.WithLabelValues("hit").Set(float64(cs.Hits))
	telemetry.EmissionCache.WithLabelValues("miss").Set(float64(cs.Misses))
	telemetry.EmissionCache.WithLabelValues("reset").Set(float64(cs.Resets))

	e.log.Debug("aligned",
		slog.String("pair", p.ID),
		slog.Float64("score", res.Score()),
		slog.Duration("took", time.Since(start)),
	)

	if e.cfg.Store != nil {
		if err := e.cfg.Store.Put(ctx, key, res.V1()); err != nil {
			e.log.Warn("result store write failed", slog.String("pair", p.ID), slog.Any("error", err))
		}
	}
	return res, nil
}

func (e *Engine) align(p pairs.Pair, seqs []alphabet.Sequence) (Result, error) {
	st := e.cfg.ScoreType
	nan := math.NaN()
	res := Result{
		Pair:      p,
		Len1:      seqs[0].Len(),
		Len2:      seqs[1].Len(),
		Model:     e.model.Name(),
		ScoreType: st,
		Algorithm: e.cfg.Algorithm,
		Viterbi:   nan,
		Forward:   nan,
		Backward:  nan,
	}
	var err error
	if res.Ran(config.AlgoViterbi) {
		path, verr := e.dp.Viterbi(seqs, st)
		if verr != nil {
			return Result{}, verr
		}
		res.Viterbi = path.Score
		if path.Reachable() {
			res.Alignment = newAlignment(path)
		}
	}
	if res.Ran(config.AlgoForward) {
		if res.Forward, err = e.dp.Forward(seqs, st); err != nil {
			return Result{}, err
		}
	}
	if res.Ran(config.AlgoBackward) {
		if res.Backward, err = e.dp.Backward(seqs, st); err != nil {
			return Result{}, err
		}
	}
	if e.cfg.Posterior {
		pm, perr := e.dp.Posterior(seqs, st)
		switch {
		case errors.Is(perr, dp.ErrNoAlignment):
		case perr != nil:
			return Result{}, perr
		default:
			res.MatchProbs = pm.MatchProbs()
		}
	}
	return res, nil
}
