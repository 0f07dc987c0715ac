package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"pairdp/internal/engine"
)

// Options control the ASCII rendering.
type Options struct {
	// Alignment columns per block. If <=0, use default (60).
	Width int

	// Print the visited-state line under each block (first letter of the state).
	ShowStates bool

	// Glyphs for the line between the tracks.
	MatchGlyph    string // default "|"
	MismatchGlyph string // default "."
	GapGlyph      string // default " "
}

// DefaultOptions is the look used by `pairdp align --pretty`.
var DefaultOptions = Options{
	Width:         60,
	ShowStates:    true,
	MatchGlyph:    "|",
	MismatchGlyph: ".",
	GapGlyph:      " ",
}

const linePrefix = "# "

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// RenderResult prints a header line and the wrapped alignment blocks.
func RenderResult(r engine.Result, opt Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s %s (%s, %s)\n", linePrefix, r.Pair.ID, scoreText(r.Score()), r.Algorithm, r.ScoreType)
	if r.Alignment == nil {
		if r.Reachable() {
			fmt.Fprintf(&b, "%s(alignment not computed)\n#\n", linePrefix)
		} else {
			fmt.Fprintf(&b, "%s(no alignment)\n#\n", linePrefix)
		}
		return b.String()
	}
	b.WriteString(RenderAlignment(r.Pair.Seq1ID, r.Pair.Seq2ID, r.Alignment, opt))
	return b.String()
}

func scoreText(v float64) string {
	if v != v {
		return "score=NA"
	}
	return "score=" + strconv.FormatFloat(v, 'f', 4, 64)
}

// RenderAlignment prints blocks of track 1, the match line, track 2 and,
// optionally, the state line. Coordinates are 1-based residue positions.
func RenderAlignment(id1, id2 string, a *engine.Alignment, opt Options) string {
	width := opt.Width
	if width <= 0 {
		width = DefaultOptions.Width
	}
	match := or(opt.MatchGlyph, DefaultOptions.MatchGlyph)
	mismatch := or(opt.MismatchGlyph, DefaultOptions.MismatchGlyph)
	gap := or(opt.GapGlyph, DefaultOptions.GapGlyph)

	t1, t2 := a.Track1, a.Track2
	n := len(t1)
	if len(t2) < n {
		n = len(t2)
	}
	label := max(len(id1), len(id2))
	num := len(strconv.Itoa(max(residues(t1), residues(t2)) + 1))
	indent := strings.Repeat(" ", label+1+num+1)

	var b strings.Builder
	if n == 0 {
		fmt.Fprintf(&b, "%s(empty alignment)\n#\n", linePrefix)
		return b.String()
	}
	pos1, pos2 := 0, 0
	for lo := 0; lo < n; lo += width {
		hi := min(lo+width, n)
		c1, c2 := t1[lo:hi], t2[lo:hi]
		r1, r2 := residues(c1), residues(c2)

		fmt.Fprintf(&b, "%s%-*s %*d %s %d\n", linePrefix, label, id1, num, pos1+1, c1, pos1+r1)

		var ml strings.Builder
		for i := 0; i < len(c1); i++ {
			switch {
			case c1[i] == '-' || c2[i] == '-':
				ml.WriteString(gap)
			case c1[i] == c2[i]:
				ml.WriteString(match)
			default:
				ml.WriteString(mismatch)
			}
		}
		b.WriteString(strings.TrimRight(linePrefix+indent+ml.String(), " "))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s%-*s %*d %s %d\n", linePrefix, label, id2, num, pos2+1, c2, pos2+r2)

		if opt.ShowStates && len(a.States) >= hi {
			var sl strings.Builder
			for _, s := range a.States[lo:hi] {
				if s == "" {
					sl.WriteByte('?')
				} else {
					sl.WriteByte(s[0])
				}
			}
			fmt.Fprintf(&b, "%s%s%s\n", linePrefix, indent, sl.String())
		}
		b.WriteString("#\n")
		pos1 += r1
		pos2 += r2
	}
	return b.String()
}

func residues(track string) int {
	return len(track) - strings.Count(track, "-")
}
