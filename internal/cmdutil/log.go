// internal/cmdutil/log.go
package cmdutil

import (
	"fmt"
	"io"
)

// Warnf prints a one-line notice for the person at the terminal. Structured
// diagnostics go to the slog logger instead.
func Warnf(dst io.Writer, quiet bool, format string, a ...any) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(dst, "pairdp: warning: "+format+"\n", a...)
}
