// core/alphabet/alphabet.go
package alphabet

import (
	"errors"
	"fmt"
)

// Symbol is an interned alphabet member. Ids start at 1; 0 is the gap.
type Symbol uint16

// Gap is the placeholder shared by every alphabet. It is never a member.
const Gap Symbol = 0

// GapToken is how the gap prints in tracks and pair tokens.
const GapToken = '-'

var (
	ErrIllegalSymbol = errors.New("illegal symbol")
	ErrBadAlphabet   = errors.New("bad alphabet")
)

// Alphabet is a finite, ordered set of single-byte tokens.
type Alphabet struct {
	name   string
	tokens []byte
	index  [256]Symbol
}

// New builds an alphabet. Lookups are case-insensitive for letters.
func New(name, tokens string) (*Alphabet, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrBadAlphabet)
	}
	if tokens == "" {
		return nil, fmt.Errorf("%w %s: no tokens", ErrBadAlphabet, name)
	}
	if len(tokens) >= 1<<16-1 {
		return nil, fmt.Errorf("%w %s: too many tokens", ErrBadAlphabet, name)
	}
	a := &Alphabet{name: name, tokens: make([]byte, 0, len(tokens))}
	for i := 0; i < len(tokens); i++ {
		t := upper(tokens[i])
		if t == GapToken || t <= ' ' {
			return nil, fmt.Errorf("%w %s: reserved token %q", ErrBadAlphabet, name, tokens[i])
		}
		if a.index[t] != Gap {
			return nil, fmt.Errorf("%w %s: duplicate token %q", ErrBadAlphabet, name, t)
		}
		a.tokens = append(a.tokens, t)
		sym := Symbol(len(a.tokens))
		a.index[t] = sym
		if l := lower(t); l != t {
			a.index[l] = sym
		}
	}
	return a, nil
}

// MustNew is New for package-level tables.
func MustNew(name, tokens string) *Alphabet {
	a, err := New(name, tokens)
	if err != nil {
		panic(err)
	}
	return a
}

var (
	DNA     = MustNew("DNA", "ACGT")
	Protein = MustNew("PROTEIN", "ACDEFGHIKLMNPQRSTVWY")
)

func (a *Alphabet) Name() string { return a.name }

// Size is the number of member symbols (gap excluded).
func (a *Alphabet) Size() int { return len(a.tokens) }

// Tokens returns the member tokens in symbol order.
func (a *Alphabet) Tokens() string { return string(a.tokens) }

// Symbol looks a token up.
func (a *Alphabet) Symbol(tok byte) (Symbol, error) {
	if s := a.index[tok]; s != Gap {
		return s, nil
	}
	return Gap, fmt.Errorf("%w %q in alphabet %s", ErrIllegalSymbol, tok, a.name)
}

// Token prints a symbol. Non-members print as '?'.
func (a *Alphabet) Token(s Symbol) byte {
	switch {
	case s == Gap:
		return GapToken
	case a.Contains(s):
		return a.tokens[s-1]
	default:
		return '?'
	}
}

func (a *Alphabet) Contains(s Symbol) bool { return s != Gap && int(s) <= len(a.tokens) }

// Symbols lists every member in id order.
func (a *Alphabet) Symbols() []Symbol {
	out := make([]Symbol, len(a.tokens))
	for i := range out {
		out[i] = Symbol(i + 1)
	}
	return out
}

// Equal compares by name and token order.
func (a *Alphabet) Equal(b *Alphabet) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.name == b.name && string(a.tokens) == string(b.tokens)
}

func (a *Alphabet) String() string { return a.name }

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}
