// internal/pairs/pairs.go
package pairs

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pairdp/core/alphabet"
)

// Pair is one alignment job as read from input, before alphabet binding.
type Pair struct {
	ID     string
	Seq1ID string
	Seq2ID string
	Seq1   string
	Seq2   string
}

var ErrBadLine = errors.New("bad pair line")

// Inline builds a pair from command-line sequences. Empty sequences are
// allowed; the DP defines a score for them.
func Inline(id, seq1, seq2 string) Pair {
	if id == "" {
		id = "pair"
	}
	return Pair{ID: id, Seq1ID: id + "/1", Seq2ID: id + "/2", Seq1: seq1, Seq2: seq2}
}

// Sequences binds both sides to the cross-product's alphabets.
func (p Pair) Sequences(cp *alphabet.CrossProduct) ([]alphabet.Sequence, error) {
	s1, err := alphabet.Parse(p.Seq1ID, p.Seq1, cp.First)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", p.ID, err)
	}
	s2, err := alphabet.Parse(p.Seq2ID, p.Seq2, cp.Second)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", p.ID, err)
	}
	return []alphabet.Sequence{s1, s2}, nil
}

// LoadTSV reads a whitespace-separated file with
// id seq1 seq2 [seq1id seq2id]
// A literal "-" stands for an empty sequence.
func LoadTSV(path string) ([]Pair, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(fh, path)
}

// Read parses pair lines from r; name prefixes error positions.
func Read(r io.Reader, name string) ([]Pair, error) {
	var list []Pair
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		f := strings.Fields(line)
		if len(f) != 3 && len(f) != 5 {
			return nil, fmt.Errorf("%w: %s:%d: %d fields (want 3 or 5)", ErrBadLine, name, ln, len(f))
		}
		p := Inline(f[0], empty(f[1]), empty(f[2]))
		if len(f) == 5 {
			p.Seq1ID, p.Seq2ID = f[3], f[4]
		}
		list = append(list, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return list, nil
}

func empty(s string) string {
	if s == "-" {
		return ""
	}
	return s
}
