// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"pairdp/core/dist"
	"pairdp/internal/appcore"
	"pairdp/internal/cli"
	"pairdp/internal/config"
	"pairdp/internal/engine"
	"pairdp/internal/logging"
	"pairdp/internal/modelfile"
	"pairdp/internal/pairs"
	"pairdp/internal/pretty"
	"pairdp/internal/server"
	"pairdp/internal/store"
	"pairdp/internal/telemetry"
	"pairdp/internal/visitors"
	"pairdp/internal/writers"
)

// RunContext parses argv, runs the chosen command and returns its exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	code := appcore.ExitOK
	root := cli.NewRootCmd(cli.Handlers{Align: runBatch, Score: runBatch, Serve: runServe}, stdout, stderr, &code)
	root.SetArgs(argv)
	if err := root.ExecuteContext(parent); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		fmt.Fprintln(stderr, "run 'pairdp --help' for usage")
		return appcore.ExitUsage
	}
	return code
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func newLogger(cfg config.Config, stderr io.Writer, service string) *slog.Logger {
	lvl, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		lvl = logging.LevelWarn
	}
	return logging.New(logging.Config{Level: lvl, JSON: cfg.Log.JSON, Quiet: cfg.Log.Quiet, Service: service}, stderr)
}

// startTracing installs the configured span exporter. Spans go to stderr
// so they never mix with results.
func startTracing(cfg config.Config, stderr io.Writer, log *slog.Logger) (func(), error) {
	shutdown, err := telemetry.InitTracing(cfg.Trace.Exporter, "pairdp", stderr)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn("flush spans", slog.Any("error", err))
		}
	}, nil
}

// openStore returns nil when the store is disabled. The caller closes it.
func openStore(cfg config.Config, log *slog.Logger) (*store.Store, error) {
	if !cfg.Store.Enabled {
		return nil, nil
	}
	sc := store.DefaultConfig(cfg.Store.Path)
	if cfg.Store.InMemory {
		sc = store.InMemoryConfig()
	}
	sc.Logger = log
	return store.Open(sc)
}

func engineConfig(cfg config.Config, digest string, st *store.Store, log *slog.Logger) (engine.Config, error) {
	scoreType, err := dist.ParseScoreType(cfg.Engine.ScoreType)
	if err != nil {
		return engine.Config{}, err
	}
	ec := engine.Config{
		ScoreType:   scoreType,
		Algorithm:   cfg.Engine.Algorithm,
		Posterior:   cfg.Engine.Posterior,
		ModelDigest: digest,
		Logger:      log,
	}
	if st != nil {
		ec.Store = st
	}
	return ec, nil
}

func runBatch(ctx context.Context, inv cli.Invocation) int {
	cfg, o := inv.Config, inv.Options
	log := newLogger(cfg, inv.Stderr, "")
	stopTracing, err := startTracing(cfg, inv.Stderr, log)
	if err != nil {
		fmt.Fprintln(inv.Stderr, err)
		return appcore.ExitUsage
	}
	defer stopTracing()

	loaded, err := modelfile.Load(o.ModelFile)
	if err != nil {
		fmt.Fprintln(inv.Stderr, err)
		return appcore.ExitUsage
	}

	var list []pairs.Pair
	if o.PairsFile != "" {
		if list, err = pairs.LoadTSV(o.PairsFile); err != nil {
			fmt.Fprintln(inv.Stderr, err)
			return appcore.ExitUsage
		}
	} else {
		list = []pairs.Pair{pairs.Inline(o.PairID, o.Seq1, o.Seq2)}
	}

	st, err := openStore(cfg, log)
	if err != nil {
		fmt.Fprintln(inv.Stderr, "open store:", err)
		return appcore.ExitRuntime
	}
	if st != nil {
		defer func() {
			if err := st.Close(); err != nil {
				log.Warn("close store", slog.Any("error", err))
			}
		}()
	}

	ec, err := engineConfig(cfg, loaded.Digest, st, log)
	if err != nil {
		fmt.Fprintln(inv.Stderr, err)
		return appcore.ExitUsage
	}
	eng, err := engine.New(loaded.Model, ec)
	if err != nil {
		fmt.Fprintln(inv.Stderr, err)
		return appcore.ExitUsage
	}
	log.Debug("model loaded", slog.String("model", loaded.Model.Name()), slog.String("path", loaded.Path), slog.Int("pairs", len(list)))

	render := pretty.DefaultOptions
	render.Width = cfg.Output.Width
	wf := appcore.NewResultWriterFactory(writers.Options{
		Format: cfg.Output.Format,
		Sort:   cfg.Output.Sort,
		Rank:   cfg.Output.Rank,
		Header: cfg.Output.Header,
		Pretty: cfg.Output.Pretty,
		Render: render,
	})
	gate := visitors.NewScoreGate(o.ReachableOnly, o.MinScore)

	return appcore.Run[engine.Result](ctx, inv.Stdout, inv.Stderr, appcore.Options{
		Threads:             cfg.Engine.Threads,
		Quiet:               cfg.Log.Quiet,
		NoAlignmentExitCode: cfg.Output.NoAlignmentExitCode,
		Logger:              log,
	}, list, eng, gate.Visit, wf)
}

func runServe(ctx context.Context, inv cli.Invocation) int {
	cfg := inv.Config
	log := newLogger(cfg, inv.Stderr, "pairdp")
	stopTracing, err := startTracing(cfg, inv.Stderr, log)
	if err != nil {
		fmt.Fprintln(inv.Stderr, err)
		return appcore.ExitUsage
	}
	defer stopTracing()

	st, err := openStore(cfg, log)
	if err != nil {
		fmt.Fprintln(inv.Stderr, "open store:", err)
		return appcore.ExitRuntime
	}
	if st != nil {
		defer func() { _ = st.Close() }()
	}
	ec, err := engineConfig(cfg, "", st, log)
	if err != nil {
		fmt.Fprintln(inv.Stderr, err)
		return appcore.ExitUsage
	}

	srv, err := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		ModelPath: inv.Options.ModelFile,
		Watch:     cfg.Server.WatchModel,
		MaxSeqLen: cfg.Server.MaxSeqLen,
		Engine:    ec,
		Logger:    log,
	})
	if err != nil {
		fmt.Fprintln(inv.Stderr, err)
		return appcore.ExitUsage
	}
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(inv.Stderr, err)
		return appcore.ExitRuntime
	}
	if ctx.Err() != nil {
		return appcore.ExitCanceled
	}
	return appcore.ExitOK
}
