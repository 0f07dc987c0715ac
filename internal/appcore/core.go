// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"pairdp/core/alphabet"
	"pairdp/core/dp"
	"pairdp/internal/cmdutil"
	"pairdp/internal/engine"
	"pairdp/internal/logging"
	"pairdp/internal/pairs"
	"pairdp/internal/pipeline"
	"pairdp/internal/runutil"
	"pairdp/internal/writers"
)

// Exit codes shared by every command.
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitRuntime  = 3
	ExitCanceled = 130
)

type Options struct {
	Threads   int
	DedupeCap int

	Quiet               bool
	NoAlignmentExitCode int
	Logger              *slog.Logger
}

type VisitorFunc[T any] func(engine.Result) (keep bool, out T, err error)

type WriterFactory[T any] interface {
	Start(out io.Writer, bufSize int) (chan<- T, <-chan error)
}

// Run aligns every pair, writes kept results and maps the outcome to an
// exit code. When no kept result is reachable it returns
// o.NoAlignmentExitCode.
func Run[T any](
	parent context.Context,
	stdout, stderr io.Writer,
	o Options,
	list []pairs.Pair,
	r pipeline.Runner,
	visit VisitorFunc[T],
	wf WriterFactory[T],
) int {
	outw := bufio.NewWriter(stdout)
	log := logging.OrDiscard(o.Logger)

	thr := runutil.EffectiveThreads(o.Threads)
	if len(list) == 0 {
		cmdutil.Warnf(stderr, o.Quiet, "no pairs to align")
	}

	inCh, writeErr := wf.Start(outw, runutil.WriterBuffer(thr))

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	reachable := 0
	counts, perr := cmdutil.RunStream[T](
		ctx,
		pipeline.Config{Threads: thr, DedupeCap: o.DedupeCap, Logger: o.Logger},
		list,
		r,
		func(res engine.Result) (bool, T, error) {
			keep, out, err := visit(res)
			if keep && res.Reachable() {
				reachable++
			}
			return keep, out, err
		},
		func(x T) error {
			select {
			case inCh <- x:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	)

	close(inCh)

	if werr := <-writeErr; writers.IsBrokenPipe(werr) {
		return ExitOK
	} else if werr != nil {
		fmt.Fprintln(stderr, werr)
		return ExitRuntime
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return ExitOK
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return ExitRuntime
	}

	if perr != nil {
		code := exitCode(perr)
		if code != ExitCanceled {
			fmt.Fprintln(stderr, perr)
		}
		return code
	}
	log.Info("run finished", slog.Int("pairs", len(list)), slog.Int("seen", counts.Seen), slog.Int("written", counts.Kept), slog.Int("reachable", reachable))
	if reachable == 0 {
		return o.NoAlignmentExitCode
	}
	return ExitOK
}

// exitCode classifies a pipeline error. Bad residues and mismatched
// alphabets are input errors; everything else is a runtime failure.
func exitCode(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case errors.Is(err, alphabet.ErrIllegalSymbol), errors.Is(err, dp.ErrAlphabetMismatch):
		return ExitUsage
	}
	return ExitRuntime
}
