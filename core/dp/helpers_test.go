package dp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	"pairdp/core/alphabet"
	"pairdp/core/model"
)

var ab = alphabet.MustNew("AB", "AB")

func seqs(t *testing.T, a *alphabet.Alphabet, s0, s1 string) []alphabet.Sequence {
	t.Helper()
	x, err := alphabet.Parse("s0", s0, a)
	require.NoError(t, err)
	y, err := alphabet.Parse("s1", s1, a)
	require.NoError(t, err)
	return []alphabet.Sequence{x, y}
}

func pair(t *testing.T, m *model.Model, tok string) alphabet.Pair {
	t.Helper()
	p, err := m.CrossProduct().ParsePair(tok)
	require.NoError(t, err)
	return p
}

func addState(t *testing.T, m *model.Model, name string, adv [2]int) *model.State {
	t.Helper()
	s, err := m.AddState(name, adv)
	require.NoError(t, err)
	return s
}

func link(t *testing.T, m *model.Model, from, to *model.State, w float64) {
	t.Helper()
	require.NoError(t, m.SetTransition(from, to, w))
}

func emit(t *testing.T, m *model.Model, s *model.State, tok string, w float64) {
	t.Helper()
	require.NoError(t, m.SetEmission(s, pair(t, m, tok), w))
}

// matchOnly is the sentinel plus one [1,1] state emitting identical pairs
// with probability 1.
func matchOnly(t *testing.T) *model.Model {
	t.Helper()
	m := model.New("match-only", alphabet.NewCrossProduct(ab, ab))
	match := addState(t, m, "match", [2]int{1, 1})
	emit(t, m, match, "A:A", 1)
	emit(t, m, match, "B:B", 1)
	link(t, m, m.Magical(), match, 1)
	link(t, m, match, match, 1)
	link(t, m, match, m.Magical(), 1)
	return m
}

// indel adds insert [1,0] and delete [0,1] states around a match state.
// With mismatch set, the match state also emits unequal pairs.
func indel(t *testing.T, a *alphabet.Alphabet, mismatch bool) *model.Model {
	t.Helper()
	m := model.New("indel", alphabet.NewCrossProduct(a, a))
	mag := m.Magical()
	match := addState(t, m, "match", [2]int{1, 1})
	ins := addState(t, m, "insert", [2]int{1, 0})
	del := addState(t, m, "delete", [2]int{0, 1})

	n := float64(a.Size())
	for _, x := range a.Tokens() {
		for _, y := range a.Tokens() {
			switch {
			case x == y && mismatch:
				emit(t, m, match, string(x)+":"+string(y), 0.8/n)
			case x == y:
				emit(t, m, match, string(x)+":"+string(y), 1/n)
			case mismatch:
				emit(t, m, match, string(x)+":"+string(y), 0.2/(n*(n-1)))
			}
		}
		emit(t, m, ins, string(x)+":-", 1/n)
		emit(t, m, del, "-:"+string(x), 1/n)
	}

	link(t, m, mag, match, 0.5)
	link(t, m, mag, ins, 0.25)
	link(t, m, mag, del, 0.25)
	link(t, m, match, match, 0.6)
	link(t, m, match, ins, 0.15)
	link(t, m, match, del, 0.15)
	link(t, m, match, mag, 0.1)
	for _, g := range []*model.State{ins, del} {
		link(t, m, g, g, 0.3)
		link(t, m, g, match, 0.6)
		link(t, m, g, mag, 0.1)
	}
	return m
}

func near(a, b float64) bool { return scalar.EqualWithinAbsOrRel(a, b, 1e-9, 1e-9) }
