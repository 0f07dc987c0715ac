package dp

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairdp/core/alphabet"
	"pairdp/core/dist"
	"pairdp/core/model"
)

func TestMatchOnlyIdentical(t *testing.T) {
	dp := New(matchOnly(t))
	in := seqs(t, ab, "A", "A")

	f, err := dp.Forward(in, dist.Probability)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	b, err := dp.Backward(in, dist.Probability)
	require.NoError(t, err)
	assert.Equal(t, 0.0, b)

	vp, err := dp.Viterbi(in, dist.Probability)
	require.NoError(t, err)
	assert.Equal(t, 0.0, vp.Score)
	require.Equal(t, 1, vp.Alignment.Len())
	s0, s1 := vp.Alignment.Strings()
	assert.Equal(t, "A", s0)
	assert.Equal(t, "A", s1)
	assert.Equal(t, []string{"match"}, vp.StateNames())
	assert.Equal(t, []float64{0}, vp.Scores)
}

func TestMatchOnlyMismatchIsUnreachable(t *testing.T) {
	dp := New(matchOnly(t))
	in := seqs(t, ab, "A", "B")

	f, err := dp.Forward(in, dist.Probability)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))

	b, err := dp.Backward(in, dist.Probability)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(b))

	vp, err := dp.Viterbi(in, dist.Probability)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(vp.Score))
	assert.False(t, vp.Reachable())
	assert.Zero(t, vp.Alignment.Len())
	assert.Empty(t, vp.States)
}

func TestIndelGivesOneGapOnSecondTrack(t *testing.T) {
	dp := New(indel(t, ab, false))
	vp, err := dp.Viterbi(seqs(t, ab, "AB", "A"), dist.Probability)
	require.NoError(t, err)
	require.True(t, vp.Reachable())

	s0, s1 := vp.Alignment.Strings()
	assert.Equal(t, "AB", s0)
	assert.Equal(t, "A-", s1)
	gaps := 0
	for i := 0; i < vp.Alignment.Len(); i++ {
		if _, gap := vp.Alignment.Tracks[1].Column(i); gap {
			gaps++
		}
	}
	assert.Equal(t, 1, gaps)
	assert.Equal(t, []string{"match", "insert"}, vp.StateNames())
	// cumulative, and the last step plus the exit transition is the total
	require.Len(t, vp.Scores, 2)
	assert.Less(t, vp.Scores[1], vp.Scores[0])
	assert.InDelta(t, vp.Scores[1]+math.Log(0.1), vp.Score, 1e-12)
}

func TestScoreProperties(t *testing.T) {
	cases := []struct{ s0, s1 string }{
		{"ACGT", "ACGT"},
		{"ACGTTGCA", "ACTGCA"},
		{"A", "TTTTTTTTT"},
		{"GATTACA", "GCATGCT"},
		{"", "AC"},
		{"CCA", ""},
	}
	dp := New(indel(t, alphabet.DNA, true))
	for _, st := range []dist.ScoreType{dist.Probability, dist.Odds} {
		for _, c := range cases {
			t.Run(st.String()+"/"+c.s0+"_"+c.s1, func(t *testing.T) {
				in := seqs(t, alphabet.DNA, c.s0, c.s1)
				f, err := dp.Forward(in, st)
				require.NoError(t, err)
				b, err := dp.Backward(in, st)
				require.NoError(t, err)
				vp, err := dp.Viterbi(in, st)
				require.NoError(t, err)

				require.False(t, math.IsNaN(f))
				assert.True(t, near(f, b), "forward %v backward %v", f, b)
				assert.LessOrEqual(t, vp.Score, f+1e-9)

				assert.Equal(t, len(c.s0), vp.Alignment.Tracks[0].Residues())
				assert.Equal(t, len(c.s1), vp.Alignment.Tracks[1].Residues())
				assert.Equal(t, vp.Len(), vp.Alignment.Len())
				assert.Equal(t, vp.Len(), len(vp.Scores))
				if vp.Len() > 0 {
					assert.Equal(t, vp.Scores[vp.Len()-1]+math.Log(0.1), vp.Score)
				}
			})
		}
	}
}

func TestRepeatedRunsAreIdentical(t *testing.T) {
	dp := New(indel(t, alphabet.DNA, true))
	in := seqs(t, alphabet.DNA, "ACGGTCA", "ACTTCA")

	f1, _ := dp.Forward(in, dist.Probability)
	v1, _ := dp.Viterbi(in, dist.Probability)
	f2, _ := dp.Forward(in, dist.Probability)
	v2, _ := dp.Viterbi(in, dist.Probability)

	assert.Equal(t, math.Float64bits(f1), math.Float64bits(f2))
	assert.Equal(t, math.Float64bits(v1.Score), math.Float64bits(v2.Score))
	a1, b1 := v1.Alignment.Strings()
	a2, b2 := v2.Alignment.Strings()
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
	assert.Equal(t, v1.Scores, v2.Scores)
}

func TestRollingAxisDoesNotChangeScores(t *testing.T) {
	dp := New(indel(t, alphabet.DNA, true))
	for _, in := range [][]alphabet.Sequence{
		seqs(t, alphabet.DNA, "ACGTACGTAC", "AGT"),
		seqs(t, alphabet.DNA, "AGT", "ACGTACGTAC"),
	} {
		f, err := dp.Forward(in, dist.Probability)
		require.NoError(t, err)
		fm, err := dp.ForwardMatrix(in, dist.Probability)
		require.NoError(t, err)
		assert.True(t, near(f, fm.Score()), "rolling %v matrix %v", f, fm.Score())
	}
}

func TestZeroLength(t *testing.T) {
	t.Run("both empty without a start-end edge", func(t *testing.T) {
		dp := New(indel(t, alphabet.DNA, false))
		in := seqs(t, alphabet.DNA, "", "")
		f, err := dp.Forward(in, dist.Probability)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(f))
		vp, err := dp.Viterbi(in, dist.Probability)
		require.NoError(t, err)
		assert.False(t, vp.Reachable())
		_, err = dp.Posterior(in, dist.Probability)
		require.ErrorIs(t, err, ErrNoAlignment)
	})
	t.Run("empty against one residue", func(t *testing.T) {
		dp := New(indel(t, alphabet.DNA, false))
		vp, err := dp.Viterbi(seqs(t, alphabet.DNA, "", "G"), dist.Probability)
		require.NoError(t, err)
		require.True(t, vp.Reachable())
		s0, s1 := vp.Alignment.Strings()
		assert.Equal(t, "-", s0)
		assert.Equal(t, "G", s1)
		assert.InDelta(t, math.Log(0.25*0.25*0.1), vp.Score, 1e-12)
	})
	t.Run("match-only on empty sequences", func(t *testing.T) {
		dp := New(matchOnly(t))
		for _, in := range [][]alphabet.Sequence{seqs(t, ab, "", ""), seqs(t, ab, "", "A"), seqs(t, ab, "B", "")} {
			f, err := dp.Forward(in, dist.Probability)
			require.NoError(t, err)
			assert.True(t, math.IsNaN(f))
			b, err := dp.Backward(in, dist.Probability)
			require.NoError(t, err)
			assert.True(t, math.IsNaN(b))
		}
	})
}

func TestSilentStatesAddGapColumns(t *testing.T) {
	m := model.New("dots", alphabet.NewCrossProduct(ab, ab))
	mag := m.Magical()
	match := addState(t, m, "match", [2]int{1, 1})
	enter := addState(t, m, "enter", [2]int{})
	emit(t, m, match, "A:A", 0.5)
	emit(t, m, match, "B:B", 0.5)
	link(t, m, mag, enter, 1)
	link(t, m, enter, match, 1)
	link(t, m, match, enter, 0.5)
	link(t, m, match, mag, 0.5)

	dp := New(m)
	in := seqs(t, ab, "AB", "AB")
	vp, err := dp.Viterbi(in, dist.Probability)
	require.NoError(t, err)
	require.True(t, vp.Reachable())
	assert.Equal(t, []string{"enter", "match", "enter", "match"}, vp.StateNames())
	s0, s1 := vp.Alignment.Strings()
	assert.Equal(t, "-A-B", s0)
	assert.Equal(t, "-A-B", s1)
	assert.InDelta(t, math.Log(0.5*0.5*0.5*0.5), vp.Score, 1e-12)

	f, err := dp.Forward(in, dist.Probability)
	require.NoError(t, err)
	b, err := dp.Backward(in, dist.Probability)
	require.NoError(t, err)
	assert.True(t, near(f, vp.Score))
	assert.True(t, near(f, b))
}

func TestPreconditions(t *testing.T) {
	dp := New(matchOnly(t))
	one := seqs(t, ab, "A", "A")[:1]
	_, err := dp.Forward(one, dist.Probability)
	require.ErrorIs(t, err, ErrNotPair)
	_, err = dp.Viterbi(append(seqs(t, ab, "A", "A"), one...), dist.Probability)
	require.ErrorIs(t, err, ErrNotPair)

	_, err = dp.Backward(seqs(t, alphabet.DNA, "A", "A"), dist.Probability)
	require.ErrorIs(t, err, ErrAlphabetMismatch)

	bad := seqs(t, ab, "A", "A")
	bad[1].Symbols = []alphabet.Symbol{7}
	_, err = dp.ForwardMatrix(bad, dist.Probability)
	require.ErrorIs(t, err, alphabet.ErrIllegalSymbol)

	_, err = dp.Forward(seqs(t, ab, "A", "A"), dist.ScoreType(42))
	require.Error(t, err)

	// every failure path released the lease
	_, err = dp.Model().AddState("late", [2]int{1, 1})
	require.NoError(t, err)
}

func TestCacheFollowsModelVersion(t *testing.T) {
	m := matchOnly(t)
	dp := New(m)
	in := seqs(t, ab, "AA", "AA")

	f1, err := dp.Forward(in, dist.Probability)
	require.NoError(t, err)
	st := dp.CacheStats()
	assert.Positive(t, st.Misses)
	assert.Positive(t, st.Hits)
	assert.Equal(t, uint64(1), st.Resets)

	match, _ := m.State("match")
	require.NoError(t, m.SetEmission(match, pair(t, m, "A:A"), 0.5))
	f2, err := dp.Forward(in, dist.Probability)
	require.NoError(t, err)
	assert.InDelta(t, f1+2*math.Log(0.5), f2, 1e-12)
	assert.Equal(t, uint64(2), dp.CacheStats().Resets)
}

func TestConcurrentRunsShareCache(t *testing.T) {
	dp := New(indel(t, ab, true))
	in := seqs(t, ab, "ABBA", "ABA")
	want, err := dp.Viterbi(in, dist.Probability)
	require.NoError(t, err)
	before := dp.CacheStats()

	const n = 16
	got := make([]*StatePath, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = dp.Viterbi(in, dist.Probability)
		}(i)
	}
	wg.Wait()

	for i := range got {
		require.NoError(t, errs[i])
		assert.Equal(t, want.Score, got[i].Score)
		assert.Equal(t, want.StateNames(), got[i].StateNames())
	}
	after := dp.CacheStats()
	assert.Equal(t, before.Misses, after.Misses, "warm cache computes nothing new")
	assert.Equal(t, before.Entries, after.Entries)
	assert.Greater(t, after.Hits, before.Hits)
}

func TestPosterior(t *testing.T) {
	dp := New(matchOnly(t))
	pm, err := dp.Posterior(seqs(t, ab, "AB", "AB"), dist.Probability)
	require.NoError(t, err)
	probs := pm.MatchProbs()
	require.Len(t, probs, 2)
	assert.InDelta(t, 1.0, probs[0][0], 1e-12)
	assert.InDelta(t, 1.0, probs[1][1], 1e-12)
	assert.InDelta(t, 0.0, probs[0][1], 1e-12)

	dp = New(indel(t, alphabet.DNA, true))
	pm, err = dp.Posterior(seqs(t, alphabet.DNA, "ACGT", "AGT"), dist.Probability)
	require.NoError(t, err)
	// each residue of sequence 1 is matched, inserted or neither: row sums stay in [0,1]
	for i, row := range pm.MatchProbs() {
		sum := 0.0
		for _, p := range row {
			sum += p
		}
		assert.LessOrEqual(t, sum, 1+1e-9, "row %d", i)
		assert.GreaterOrEqual(t, sum, 0.0)
	}
}

func TestTracebackRejectsShortChain(t *testing.T) {
	m := matchOnly(t)
	dp := New(m)
	r, err := dp.begin("test", seqs(t, ab, "AB", "AB"), dist.Probability)
	require.NoError(t, err)
	defer r.release()

	match, _ := m.State("match")
	origin := terminal(m.Magical())
	step := &BackPointer{State: match, Back: origin, Score: 0}
	end := &BackPointer{State: m.Magical(), Back: step, Score: 0}
	_, err = r.traceback(end, 0)
	require.ErrorIs(t, err, ErrInvariant)
	var ie *InvariantError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "traceback", ie.Op)

	broken := &BackPointer{State: m.Magical(), Back: &BackPointer{State: match}}
	_, err = r.traceback(broken, 0)
	require.ErrorIs(t, err, ErrInvariant)
}
