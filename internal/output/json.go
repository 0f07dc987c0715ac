// internal/output/json.go
package output

import (
	"encoding/json"
	"io"

	"pairdp/internal/engine"
	"pairdp/pkg/api"
)

// ToAPIResult converts a domain Result to the stable wire schema (v1).
func ToAPIResult(r engine.Result) api.ResultV1 { return r.V1() }

func toAPIResults(list []engine.Result) []api.ResultV1 {
	out := make([]api.ResultV1, 0, len(list))
	for _, r := range list {
		out = append(out, ToAPIResult(r))
	}
	return out
}

// WriteJSON writes a single JSON array of v1 results (pretty-indented).
func WriteJSON(w io.Writer, list []engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toAPIResults(list))
}
