// core/dp/statepath.go
package dp

import (
	"strings"

	"pairdp/core/alphabet"
	"pairdp/core/model"
)

// Track is one sequence laid out against alignment columns. Gap columns
// hold alphabet.Gap.
type Track struct {
	Seq     alphabet.Sequence
	Columns []alphabet.Symbol
}

func (t Track) Len() int { return len(t.Columns) }

// Column returns the symbol at column i (0-based) and whether it is a gap.
func (t Track) Column(i int) (alphabet.Symbol, bool) {
	s := t.Columns[i]
	return s, s == alphabet.Gap
}

// Residues counts non-gap columns.
func (t Track) Residues() int {
	n := 0
	for _, s := range t.Columns {
		if s != alphabet.Gap {
			n++
		}
	}
	return n
}

func (t Track) String() string {
	var b strings.Builder
	b.Grow(len(t.Columns))
	for _, s := range t.Columns {
		b.WriteByte(t.Seq.Alphabet.Token(s))
	}
	return b.String()
}

// Alignment is the gapped pairwise alignment. Both tracks have one column
// per visited state; silent states contribute all-gap columns.
type Alignment struct {
	Tracks [2]Track
}

func (a Alignment) Len() int { return a.Tracks[0].Len() }

// Strings renders both tracks.
func (a Alignment) Strings() (string, string) {
	return a.Tracks[0].String(), a.Tracks[1].String()
}

// StatePath is a Viterbi result. States and Scores line up with the
// alignment columns; Scores are cumulative log scores after each state.
type StatePath struct {
	Score     float64
	Alignment Alignment
	States    []*model.State
	Scores    []float64
}

func (p *StatePath) Len() int { return len(p.States) }

// Reachable reports whether an alignment exists.
func (p *StatePath) Reachable() bool { return usable(p.Score) }

// StateNames lists the visited states by name.
func (p *StatePath) StateNames() []string {
	out := make([]string, len(p.States))
	for i, s := range p.States {
		out[i] = s.Name()
	}
	return out
}

func (r *run) emptyPath(score float64) *StatePath {
	return &StatePath{
		Score: score,
		Alignment: Alignment{Tracks: [2]Track{
			{Seq: r.seqs[0]},
			{Seq: r.seqs[1]},
		}},
	}
}
