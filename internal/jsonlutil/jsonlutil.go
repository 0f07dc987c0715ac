// internal/jsonlutil/jsonlutil.go
package jsonlutil

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
)

// 64 KiB line buffers, pooled across writers.
var bwPool = sync.Pool{
	New: func() any { return bufio.NewWriterSize(io.Discard, 64<<10) },
}

// Encode converts one value to its wire type and encodes it as a line.
type Encode[T any] func(*json.Encoder, T) error

// Start runs a JSON Lines writer goroutine. The caller closes the returned
// channel and reads one value from the error channel. After the first
// failure the goroutine keeps draining so senders never block. Errors that
// isBroken accepts (closed pipes) are reported as nil.
func Start[T any](out io.Writer, bufSize int, encode Encode[T], isBroken func(error) bool) (chan<- T, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan T, bufSize)
	done := make(chan error, 1)
	go func() {
		err := withWriter(out, isBroken, func(enc *json.Encoder) error {
			var first error
			for v := range in {
				if first == nil {
					first = encode(enc, v)
				}
			}
			return first
		})
		done <- err
	}()
	return in, done
}

// WriteAll encodes list in order, one value per line.
func WriteAll[T any](out io.Writer, list []T, encode Encode[T], isBroken func(error) bool) error {
	return withWriter(out, isBroken, func(enc *json.Encoder) error {
		for _, v := range list {
			if err := encode(enc, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func withWriter(out io.Writer, isBroken func(error) bool, body func(*json.Encoder) error) error {
	bw := bwPool.Get().(*bufio.Writer)
	bw.Reset(out)
	defer func() {
		bw.Reset(io.Discard)
		bwPool.Put(bw)
	}()

	err := body(json.NewEncoder(bw))
	if err == nil {
		err = bw.Flush()
	}
	if err != nil && isBroken != nil && isBroken(err) {
		return nil
	}
	return err
}
