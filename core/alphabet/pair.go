// core/alphabet/pair.go
package alphabet

import (
	"fmt"
	"strings"
)

// Pair is a cross-product symbol: one symbol (or Gap) per sequence.
// It is comparable and used directly as a map key.
type Pair struct {
	A, B Symbol
}

// CrossProduct is the paired alphabet a pair-HMM emits from.
type CrossProduct struct {
	First, Second *Alphabet
}

func NewCrossProduct(first, second *Alphabet) *CrossProduct {
	return &CrossProduct{First: first, Second: second}
}

// Contains accepts gaps on either side, including the all-gap pair.
func (c *CrossProduct) Contains(p Pair) bool {
	return (p.A == Gap || c.First.Contains(p.A)) && (p.B == Gap || c.Second.Contains(p.B))
}

// Size counts every pair, gap rows and columns included.
func (c *CrossProduct) Size() int { return (c.First.Size() + 1) * (c.Second.Size() + 1) }

// ParsePair reads "A:C", "A:-" or "-:C".
func (c *CrossProduct) ParsePair(tok string) (Pair, error) {
	a, b, ok := strings.Cut(strings.TrimSpace(tok), ":")
	if !ok || len(a) != 1 || len(b) != 1 {
		return Pair{}, fmt.Errorf("%w: pair %q (want X:Y)", ErrIllegalSymbol, tok)
	}
	sa, err := side(c.First, a[0])
	if err != nil {
		return Pair{}, err
	}
	sb, err := side(c.Second, b[0])
	if err != nil {
		return Pair{}, err
	}
	return Pair{A: sa, B: sb}, nil
}

func side(a *Alphabet, tok byte) (Symbol, error) {
	if tok == GapToken {
		return Gap, nil
	}
	return a.Symbol(tok)
}

func (c *CrossProduct) FormatPair(p Pair) string {
	return string([]byte{c.First.Token(p.A), ':', c.Second.Token(p.B)})
}

func (c *CrossProduct) String() string {
	return c.First.name + "x" + c.Second.name
}
