// internal/output/text.go
package output

import (
	"fmt"
	"io"

	"pairdp/internal/engine"
)

// Renderer returns an optional block printed after a result's TSV row.
type Renderer func(engine.Result) string

// WriteText prints the header (optional) and one row per result.
func WriteText(w io.Writer, list []engine.Result, header, pretty bool, render Renderer) error {
	if header {
		if _, err := fmt.Fprintln(w, TSVHeader); err != nil {
			return err
		}
	}
	for _, r := range list {
		if err := writeRow(w, r, pretty, render); err != nil {
			return err
		}
	}
	return nil
}

// StreamText is WriteText over a channel. It keeps draining in after a
// write error so the producer never blocks, and returns the first error.
func StreamText(w io.Writer, in <-chan engine.Result, header, pretty bool, render Renderer) error {
	var err error
	if header {
		_, err = fmt.Fprintln(w, TSVHeader)
	}
	for r := range in {
		if err != nil {
			continue
		}
		err = writeRow(w, r, pretty, render)
	}
	return err
}

func writeRow(w io.Writer, r engine.Result, pretty bool, render Renderer) error {
	if _, err := fmt.Fprintln(w, FormatRowTSV(r)); err != nil {
		return err
	}
	if pretty && render != nil {
		if _, err := io.WriteString(w, render(r)); err != nil {
			return err
		}
	}
	return nil
}
