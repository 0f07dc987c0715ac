package alphabet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadTokens(t *testing.T) {
	_, err := New("X", "AA")
	require.ErrorIs(t, err, ErrBadAlphabet)
	_, err = New("X", "A-")
	require.ErrorIs(t, err, ErrBadAlphabet)
	_, err = New("", "AC")
	require.ErrorIs(t, err, ErrBadAlphabet)
}

func TestSymbolLookupIsCaseInsensitive(t *testing.T) {
	a, err := DNA.Symbol('g')
	require.NoError(t, err)
	b, err := DNA.Symbol('G')
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, byte('G'), DNA.Token(a))
	assert.Equal(t, byte('-'), DNA.Token(Gap))
	assert.False(t, DNA.Contains(Gap))
}

func TestParse(t *testing.T) {
	s, err := Parse("s1", "ac gt\n", DNA)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, "ACGT", s.String())
	require.NoError(t, s.Validate())

	_, err = Parse("s2", "ACXT", DNA)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalSymbol))
	assert.Contains(t, err.Error(), "s2:3")
}

func TestValidateCatchesForeignIDs(t *testing.T) {
	s := Sequence{ID: "x", Alphabet: DNA, Symbols: []Symbol{1, 9}}
	require.ErrorIs(t, s.Validate(), ErrIllegalSymbol)
}

func TestCrossProductPairs(t *testing.T) {
	cp := NewCrossProduct(DNA, DNA)
	assert.Equal(t, 25, cp.Size())

	p, err := cp.ParsePair("A:-")
	require.NoError(t, err)
	assert.Equal(t, Gap, p.B)
	assert.True(t, cp.Contains(p))
	assert.Equal(t, "A:-", cp.FormatPair(p))
	assert.True(t, cp.Contains(Pair{}))

	_, err = cp.ParsePair("AC")
	require.ErrorIs(t, err, ErrIllegalSymbol)
	_, err = cp.ParsePair("A:Z")
	require.ErrorIs(t, err, ErrIllegalSymbol)
}

func TestEqual(t *testing.T) {
	assert.True(t, DNA.Equal(MustNew("DNA", "ACGT")))
	assert.False(t, DNA.Equal(MustNew("DNA", "TGCA")))
	assert.False(t, DNA.Equal(nil))
}
