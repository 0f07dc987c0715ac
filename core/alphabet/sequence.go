// core/alphabet/sequence.go
package alphabet

import (
	"fmt"
	"strings"
)

// Sequence is a named run of symbols over one alphabet.
type Sequence struct {
	ID       string
	Alphabet *Alphabet
	Symbols  []Symbol
}

// Parse converts text to a Sequence. Whitespace is ignored; any other
// non-member token fails with ErrIllegalSymbol and its 1-based position.
func Parse(id, text string, a *Alphabet) (Sequence, error) {
	seq := Sequence{ID: id, Alphabet: a, Symbols: make([]Symbol, 0, len(text))}
	pos := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			continue
		}
		pos++
		s, err := a.Symbol(c)
		if err != nil {
			return Sequence{}, fmt.Errorf("%s:%d: %w", id, pos, err)
		}
		seq.Symbols = append(seq.Symbols, s)
	}
	return seq, nil
}

// MustParse is Parse for tests and fixtures.
func MustParse(id, text string, a *Alphabet) Sequence {
	s, err := Parse(id, text, a)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Sequence) Len() int { return len(s.Symbols) }

// Validate reports the first symbol that is not a member of s.Alphabet.
func (s Sequence) Validate() error {
	if s.Alphabet == nil {
		return fmt.Errorf("%s: %w: no alphabet", s.ID, ErrIllegalSymbol)
	}
	for i, sym := range s.Symbols {
		if !s.Alphabet.Contains(sym) {
			return fmt.Errorf("%s:%d: %w id %d in alphabet %s", s.ID, i+1, ErrIllegalSymbol, sym, s.Alphabet.name)
		}
	}
	return nil
}

func (s Sequence) String() string {
	if s.Alphabet == nil {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s.Symbols))
	for _, sym := range s.Symbols {
		b.WriteByte(s.Alphabet.Token(sym))
	}
	return b.String()
}
