// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"pairdp/internal/engine"
	"pairdp/internal/pretty"
)

// Options select and tune a result writer.
type Options struct {
	Format string
	Sort   bool // buffer everything and order by pair ID
	Rank   bool // buffer everything and order by score, best first
	Header bool // TSV header row
	Pretty bool // alignment block after each TSV row
	Render pretty.Options
}

// StartFunc spins up a writer goroutine. The caller closes the returned
// channel and then reads exactly one value from the error channel.
type StartFunc func(out io.Writer, o Options, bufSize int) (chan<- engine.Result, <-chan error)

// ResultWriters maps format → writer. Register in init() blocks.
var ResultWriters = map[string]StartFunc{}

// Register is idempotent, last wins.
func Register(format string, fn StartFunc) { ResultWriters[format] = fn }

// Formats lists registered formats in order.
func Formats() []string {
	out := make([]string, 0, len(ResultWriters))
	for f := range ResultWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// StartResultWriter dispatches on o.Format. An unknown format still returns
// a drained channel so callers can treat every format alike.
func StartResultWriter(out io.Writer, o Options, bufSize int) (chan<- engine.Result, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	if fn, ok := ResultWriters[o.Format]; ok {
		return fn(out, o, bufSize)
	}
	in := make(chan engine.Result, bufSize)
	errCh := make(chan error, 1)
	go func() {
		for range in {
		}
		errCh <- fmt.Errorf("unknown result format %q (no writer registered)", o.Format)
	}()
	return in, errCh
}
