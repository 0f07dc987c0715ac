// internal/writers/result.go
package writers

import (
	"io"

	"pairdp/internal/common"
	"pairdp/internal/engine"
	"pairdp/internal/output"
	"pairdp/internal/pretty"
)

func init() {
	Register(output.FormatText, startText)
	Register(output.FormatJSON, startJSON)
	Register(output.FormatJSONL, StartJSONL)
}

func startText(out io.Writer, o Options, bufSize int) (chan<- engine.Result, <-chan error) {
	in := make(chan engine.Result, bufSize)
	errCh := make(chan error, 1)
	render := func(r engine.Result) string { return pretty.RenderResult(r, o.Render) }
	go func() {
		if o.Sort || o.Rank {
			buf := collect(in)
			order(buf, o)
			errCh <- output.WriteText(out, buf, o.Header, o.Pretty, render)
			return
		}
		errCh <- output.StreamText(out, in, o.Header, o.Pretty, render)
	}()
	return in, errCh
}

// JSON is one array, so it always buffers.
func startJSON(out io.Writer, o Options, bufSize int) (chan<- engine.Result, <-chan error) {
	in := make(chan engine.Result, bufSize)
	errCh := make(chan error, 1)
	go func() {
		buf := collect(in)
		order(buf, o)
		errCh <- output.WriteJSON(out, buf)
	}()
	return in, errCh
}

func collect(in <-chan engine.Result) []engine.Result {
	var buf []engine.Result
	for r := range in {
		buf = append(buf, r)
	}
	return buf
}

func order(buf []engine.Result, o Options) {
	switch {
	case o.Rank:
		common.SortResultsByScore(buf)
	case o.Sort:
		common.SortResults(buf)
	}
}
