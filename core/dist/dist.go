// core/dist/dist.go
package dist

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"pairdp/core/alphabet"
)

var ErrBadWeight = errors.New("bad weight")

// Distribution holds non-negative weights over a cross-product alphabet,
// plus an optional null model used by the odds score types.
// Mutate it through model.Model so the model version tracks edits.
type Distribution struct {
	cp      *alphabet.CrossProduct
	weights map[alphabet.Pair]float64
	null    map[alphabet.Pair]float64 // nil means uniform
}

func New(cp *alphabet.CrossProduct) *Distribution {
	return &Distribution{cp: cp, weights: make(map[alphabet.Pair]float64)}
}

func (d *Distribution) CrossProduct() *alphabet.CrossProduct { return d.cp }

// Weight is 0 for pairs never set.
func (d *Distribution) Weight(p alphabet.Pair) float64 { return d.weights[p] }

func (d *Distribution) SetWeight(p alphabet.Pair, w float64) error {
	if err := d.check(p, w); err != nil {
		return err
	}
	d.weights[p] = w
	return nil
}

// NullWeight is the null-model weight of p, uniform when no null model is set.
func (d *Distribution) NullWeight(p alphabet.Pair) float64 {
	if d.null == nil {
		return 1 / float64(d.cp.Size())
	}
	return d.null[p]
}

func (d *Distribution) SetNullWeight(p alphabet.Pair, w float64) error {
	if err := d.check(p, w); err != nil {
		return err
	}
	if d.null == nil {
		d.null = make(map[alphabet.Pair]float64)
	}
	d.null[p] = w
	return nil
}

func (d *Distribution) HasNull() bool { return d.null != nil }

// Pairs lists the pairs with an explicit weight in a stable order.
func (d *Distribution) Pairs() []alphabet.Pair {
	out := make([]alphabet.Pair, 0, len(d.weights))
	for p := range d.weights {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

func (d *Distribution) Clone() *Distribution {
	c := &Distribution{cp: d.cp, weights: make(map[alphabet.Pair]float64, len(d.weights))}
	for p, w := range d.weights {
		c.weights[p] = w
	}
	if d.null != nil {
		c.null = make(map[alphabet.Pair]float64, len(d.null))
		for p, w := range d.null {
			c.null[p] = w
		}
	}
	return c
}

func (d *Distribution) check(p alphabet.Pair, w float64) error {
	if !d.cp.Contains(p) {
		return fmt.Errorf("%w: pair %s not in %s", alphabet.ErrIllegalSymbol, d.cp.FormatPair(p), d.cp)
	}
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%w %v for %s", ErrBadWeight, w, d.cp.FormatPair(p))
	}
	return nil
}
