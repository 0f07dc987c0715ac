// core/dist/scoretype.go
package dist

import (
	"fmt"
	"strings"

	"pairdp/core/alphabet"
)

// ScoreType selects which value a run extracts from each distribution.
type ScoreType uint8

const (
	Probability ScoreType = iota
	Odds
	NullModel
)

// Extractor reads one linear-space value out of a distribution.
type Extractor func(d *Distribution, p alphabet.Pair) float64

var scoreTypes = [...]struct {
	name    string
	extract Extractor
}{
	Probability: {"probability", func(d *Distribution, p alphabet.Pair) float64 { return d.Weight(p) }},
	Odds:        {"odds", odds},
	NullModel:   {"null", func(d *Distribution, p alphabet.Pair) float64 { return d.NullWeight(p) }},
}

// odds is weight over null weight. A zero null weight counts as no support.
func odds(d *Distribution, p alphabet.Pair) float64 {
	n := d.NullWeight(p)
	if n == 0 {
		return 0
	}
	return d.Weight(p) / n
}

func (s ScoreType) Valid() bool { return int(s) < len(scoreTypes) }

func (s ScoreType) String() string {
	if !s.Valid() {
		return fmt.Sprintf("ScoreType(%d)", s)
	}
	return scoreTypes[s].name
}

// Extractor is looked up once per run, never per cell.
func (s ScoreType) Extractor() (Extractor, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown score type %d", s)
	}
	return scoreTypes[s].extract, nil
}

// ParseScoreType accepts the String forms plus a few spellings.
func ParseScoreType(v string) (ScoreType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "probability", "prob", "p":
		return Probability, nil
	case "odds":
		return Odds, nil
	case "null", "null_model", "null-model", "nullmodel":
		return NullModel, nil
	}
	return 0, fmt.Errorf("unknown score type %q (want probability|odds|null)", v)
}

func (s ScoreType) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ScoreType) UnmarshalText(b []byte) error {
	v, err := ParseScoreType(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
