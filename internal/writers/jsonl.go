// internal/writers/jsonl.go
package writers

import (
	"encoding/json"
	"io"

	"pairdp/internal/engine"
	"pairdp/internal/jsonlutil"
	"pairdp/internal/output"
)

func encodeResult(enc *json.Encoder, r engine.Result) error {
	return enc.Encode(output.ToAPIResult(r))
}

// StartJSONL writes one v1 result per line. Unsorted output streams as
// results arrive, which the pipeline keeps in input order; --sort and
// --rank buffer first.
func StartJSONL(out io.Writer, o Options, bufSize int) (chan<- engine.Result, <-chan error) {
	if !o.Sort && !o.Rank {
		return jsonlutil.Start[engine.Result](out, bufSize, encodeResult, IsBrokenPipe)
	}
	in := make(chan engine.Result, bufSize)
	errCh := make(chan error, 1)
	go func() {
		buf := collect(in)
		order(buf, o)
		errCh <- jsonlutil.WriteAll(out, buf, encodeResult, IsBrokenPipe)
	}()
	return in, errCh
}
