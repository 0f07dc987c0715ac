// pkg/api/result_v1.go
package api

import (
	"encoding/json"
	"math"
	"strconv"
)

// ResultV1 is the stable JSON/JSONL schema for one aligned pair.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type ResultV1 struct {
	RunID     string `json:"run_id"`
	PairID    string `json:"pair_id"`
	Seq1ID    string `json:"seq1_id"`
	Seq2ID    string `json:"seq2_id"`
	Len1      int    `json:"len1"`
	Len2      int    `json:"len2"`
	Model     string `json:"model"`
	ScoreType string `json:"score_type"` // "probability" | "odds" | "null"
	Algorithm string `json:"algorithm"`  // "viterbi" | "forward" | "backward" | "all"
	Reachable bool   `json:"reachable"`

	// Scores are natural logs; a run that was not requested is omitted,
	// an unreachable one is null.
	Viterbi  *Score `json:"viterbi,omitempty"`
	Forward  *Score `json:"forward,omitempty"`
	Backward *Score `json:"backward,omitempty"`

	Alignment  *AlignmentV1 `json:"alignment,omitempty"`
	MatchProbs [][]float64  `json:"match_probs,omitempty"` // posterior, seq1 rows by seq2 columns
	Cached     bool         `json:"cached,omitempty"`
}

// AlignmentV1 is a Viterbi path: two gapped tracks plus, per column, the
// state visited and the cumulative score from the start of the path
// through that column.
type AlignmentV1 struct {
	Track1 string   `json:"track1"`
	Track2 string   `json:"track2"`
	States []string `json:"states"`
	Scores []Score  `json:"scores"`
}

// Score is a log score that encodes NaN and infinities as JSON null.
type Score float64

func ScoreOf(v float64) *Score { s := Score(v); return &s }

// Float returns the value, or NaN for a nil Score.
func (s *Score) Float() float64 {
	if s == nil {
		return math.NaN()
	}
	return float64(*s)
}

func (s Score) MarshalJSON() ([]byte, error) {
	v := float64(s)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Score(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Score(v)
	return nil
}
