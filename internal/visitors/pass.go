package visitors

import "pairdp/internal/engine"

// PassThrough returns the result unchanged.
type PassThrough struct{}

func (PassThrough) Visit(r engine.Result) (keep bool, out engine.Result, err error) {
	return true, r, nil
}
