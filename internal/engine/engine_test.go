// internal/engine/engine_test.go
package engine

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
	"pairdp/core/model"
	"pairdp/internal/config"
	"pairdp/internal/modelfile"
	"pairdp/internal/pairs"
	"pairdp/internal/store"
)

const indelYAML = `
name: indel
alphabet: {name: DNA}
states:
  - name: match
    emissions: {"A:A": 0.2, "C:C": 0.2, "G:G": 0.2, "T:T": 0.2, "A:C": 0.05, "C:A": 0.05, "G:T": 0.05, "T:G": 0.05}
  - name: ins
    advance: [1, 0]
    emissions: {"A:-": 0.25, "C:-": 0.25, "G:-": 0.25, "T:-": 0.25}
  - name: del
    advance: [0, 1]
    emissions: {"-:A": 0.25, "-:C": 0.25, "-:G": 0.25, "-:T": 0.25}
transitions:
  - {from: _start_, to: match, weight: 0.8}
  - {from: _start_, to: ins, weight: 0.1}
  - {from: _start_, to: del, weight: 0.1}
  - {from: match, to: match, weight: 0.7}
  - {from: match, to: ins, weight: 0.1}
  - {from: match, to: del, weight: 0.1}
  - {from: match, to: _end_, weight: 0.1}
  - {from: ins, to: match, weight: 0.6}
  - {from: ins, to: ins, weight: 0.3}
  - {from: ins, to: _end_, weight: 0.1}
  - {from: del, to: match, weight: 0.6}
  - {from: del, to: del, weight: 0.3}
  - {from: del, to: _end_, weight: 0.1}
`

const matchYAML = `
name: match-only
alphabet: {name: DNA}
states:
  - name: match
    emissions: {"A:A": 0.25, "C:C": 0.25, "G:G": 0.25, "T:T": 0.25}
transitions:
  - {from: _start_, to: match, weight: 1}
  - {from: match, to: match, weight: 0.9}
  - {from: match, to: _end_, weight: 0.1}
`

func load(t *testing.T, body string) *model.Model {
	t.Helper()
	l, err := modelfile.Decode(strings.NewReader(body))
	require.NoError(t, err)
	return l.Model
}

func newEngine(t *testing.T, body string, cfg Config) *Engine {
	t.Helper()
	e, err := New(load(t, body), cfg)
	require.NoError(t, err)
	return e
}

func TestViterbiAlignment(t *testing.T) {
	e := newEngine(t, indelYAML, Config{Algorithm: config.AlgoViterbi})
	res, err := e.Run(context.Background(), pairs.Inline("p", "ACGT", "AGT"))
	require.NoError(t, err)

	assert.True(t, res.Reachable())
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 4, res.Len1)
	assert.Equal(t, 3, res.Len2)
	require.NotNil(t, res.Alignment)
	assert.Equal(t, "ACGT", strings.ReplaceAll(res.Alignment.Track1, "-", ""))
	assert.Equal(t, "AGT", strings.ReplaceAll(res.Alignment.Track2, "-", ""))
	assert.Len(t, res.Alignment.States, len(res.Alignment.Track1))
	assert.True(t, math.IsNaN(res.Forward), "forward not requested")
	assert.False(t, res.Ran(config.AlgoForward))
}

func TestAllAlgorithmsAgree(t *testing.T) {
	for _, st := range []dist.ScoreType{dist.Probability, dist.Odds} {
		e := newEngine(t, indelYAML, Config{Algorithm: config.AlgoAll, ScoreType: st})
		res, err := e.Run(context.Background(), pairs.Inline("p", "GATTACA", "GACTATA"))
		require.NoError(t, err)
		assert.InDelta(t, res.Forward, res.Backward, 1e-9, st.String())
		assert.LessOrEqual(t, res.Viterbi, res.Forward+1e-12, st.String())
		assert.Equal(t, res.Viterbi, res.Score())
	}
}

func TestV1ScoreTypeAndCumulativeScores(t *testing.T) {
	for st, want := range map[dist.ScoreType]string{dist.Probability: "probability", dist.Odds: "odds", dist.NullModel: "null"} {
		e := newEngine(t, indelYAML, Config{Algorithm: config.AlgoViterbi, ScoreType: st})
		res, err := e.Run(context.Background(), pairs.Inline("p", "GATTACA", "GACTATA"))
		require.NoError(t, err)
		assert.Equal(t, want, res.V1().ScoreType)
	}

	e := newEngine(t, indelYAML, Config{Algorithm: config.AlgoViterbi})
	res, err := e.Run(context.Background(), pairs.Inline("p", "GATTACA", "GACTATA"))
	require.NoError(t, err)
	sc := res.V1().Alignment.Scores
	require.NotEmpty(t, sc)
	// log probabilities only fall as the path grows from its start
	for i := 1; i < len(sc); i++ {
		assert.LessOrEqual(t, sc[i].Float(), sc[i-1].Float(), "column %d", i)
	}
	assert.GreaterOrEqual(t, sc[len(sc)-1].Float(), res.Viterbi)
}

func TestUnreachablePair(t *testing.T) {
	e := newEngine(t, matchYAML, Config{Algorithm: config.AlgoAll})
	res, err := e.Run(context.Background(), pairs.Inline("p", "AC", "A"))
	require.NoError(t, err)
	assert.False(t, res.Reachable())
	assert.Nil(t, res.Alignment)
	assert.True(t, math.IsNaN(res.Forward))

	v1 := res.V1()
	assert.False(t, v1.Reachable)
	require.NotNil(t, v1.Viterbi)
	assert.True(t, math.IsNaN(v1.Viterbi.Float()))
}

func TestIllegalSymbol(t *testing.T) {
	e := newEngine(t, matchYAML, Config{})
	_, err := e.Run(context.Background(), pairs.Inline("p", "AXA", "A"))
	require.ErrorIs(t, err, alphabet.ErrIllegalSymbol)
}

func TestBadConfig(t *testing.T) {
	_, err := New(load(t, matchYAML), Config{Algorithm: "smith-waterman"})
	require.ErrorIs(t, err, ErrBadAlgorithm)
	_, err = New(load(t, matchYAML), Config{ScoreType: dist.ScoreType(99)})
	require.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	e := newEngine(t, matchYAML, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Run(ctx, pairs.Inline("p", "A", "A"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestStoreServesRepeatRuns(t *testing.T) {
	st, err := store.Open(store.InMemoryConfig())
	require.NoError(t, err)
	defer st.Close()

	e := newEngine(t, indelYAML, Config{Algorithm: config.AlgoAll, Store: st, ModelDigest: "fixture"})
	ctx := context.Background()
	first, err := e.Run(ctx, pairs.Inline("a", "ACGT", "AGT"))
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := e.Run(ctx, pairs.Inline("b", "acgt", "agt"))
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, "b", second.Pair.ID)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Viterbi, second.Viterbi)
	assert.Equal(t, first.Forward, second.Forward)
	assert.Equal(t, first.Alignment, second.Alignment)
}

func TestPosteriorMatchProbs(t *testing.T) {
	e := newEngine(t, indelYAML, Config{Algorithm: config.AlgoForward, Posterior: true})
	res, err := e.Run(context.Background(), pairs.Inline("p", "ACG", "AC"))
	require.NoError(t, err)
	require.Len(t, res.MatchProbs, 3)
	for _, row := range res.MatchProbs {
		require.Len(t, row, 2)
		for _, p := range row {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0+1e-9)
		}
	}
	// residue 1 of each side pairs far more often than not
	assert.Greater(t, res.MatchProbs[0][0], 0.5)
}

func TestConcurrentRunsAreIdentical(t *testing.T) {
	e := newEngine(t, indelYAML, Config{Algorithm: config.AlgoAll})
	want, err := e.Run(context.Background(), pairs.Inline("p", "GATTACA", "GATACA"))
	require.NoError(t, err)

	var g errgroup.Group
	got := make([]Result, 16)
	for i := range got {
		g.Go(func() error {
			var err error
			got[i], err = e.Run(context.Background(), pairs.Inline("p", "GATTACA", "GATACA"))
			return err
		})
	}
	require.NoError(t, g.Wait())
	for _, r := range got {
		assert.Equal(t, want.Viterbi, r.Viterbi)
		assert.Equal(t, want.Forward, r.Forward)
		assert.Equal(t, want.Alignment, r.Alignment)
	}
}
