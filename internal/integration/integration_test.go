// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairdp/internal/app"
	"pairdp/pkg/api"
)

const modelPath = "../../models/dna-indel.yaml"

func writePairs(t *testing.T, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("# id seq1 seq2\n")
	bases := "ACGT"
	for i := 0; i < n; i++ {
		s1 := strings.Repeat(bases[i%4:]+bases[:i%4], 3)
		s2 := s1[:len(s1)-1-i%3]
		fmt.Fprintf(&b, "p%02d\t%s\t%s\n", i, s1, s2)
	}
	fn := filepath.Join(t.TempDir(), "pairs.tsv")
	require.NoError(t, os.WriteFile(fn, []byte(b.String()), 0o644))
	return fn
}

func TestEndToEnd(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := app.Run([]string{"align", "-m", modelPath, "--seq1", "ACGTACGT", "--seq2", "ACGACGT", "--pretty"}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())

	lines := strings.Split(out.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "pair_id\t"))
	assert.True(t, strings.HasPrefix(lines[1], "pair\tpair/1\tpair/2\t8\t7\t"))
	assert.Contains(t, out.String(), "# pair score=")
}

func TestScoreJSON(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := app.Run([]string{"score", "-m", modelPath, "-p", writePairs(t, 3), "-o", "json"}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())

	var res []api.ResultV1
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res, 3)
	for _, r := range res {
		require.NotNil(t, r.Forward, r.PairID)
		require.NotNil(t, r.Backward, r.PairID)
		require.NotNil(t, r.Viterbi, r.PairID)
		assert.InDelta(t, r.Forward.Float(), r.Backward.Float(), 1e-6)
		assert.GreaterOrEqual(t, r.Forward.Float(), r.Viterbi.Float())
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	fn := writePairs(t, 24)
	run := func(threads int) []api.ResultV1 {
		var out, errBuf bytes.Buffer
		code := app.Run([]string{"align", "-m", modelPath, "-p", fn, "-t", fmt.Sprint(threads), "-o", "json", "--posterior"}, &out, &errBuf)
		require.Equal(t, 0, code, errBuf.String())
		var res []api.ResultV1
		require.NoError(t, json.Unmarshal(out.Bytes(), &res))
		for i := range res {
			res[i].RunID = "" // fresh per run
		}
		return res
	}
	assert.Equal(t, run(1), run(4))
}

func TestStoreServesRepeatRuns(t *testing.T) {
	dir := t.TempDir()
	run := func() []api.ResultV1 {
		var out, errBuf bytes.Buffer
		code := app.Run([]string{"score", "-m", modelPath, "-p", writePairs(t, 2), "--store", dir, "-o", "json"}, &out, &errBuf)
		require.Equal(t, 0, code, errBuf.String())
		var res []api.ResultV1
		require.NoError(t, json.Unmarshal(out.Bytes(), &res))
		return res
	}
	first, second := run(), run()
	require.Len(t, second, 2)
	for i := range first {
		assert.False(t, first[i].Cached)
		assert.True(t, second[i].Cached)
		assert.Equal(t, first[i].Forward.Float(), second[i].Forward.Float())
	}
}

func TestOddsKeepsSubstitution(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := app.Run([]string{"align", "-m", modelPath, "--seq1", "ACGT", "--seq2", "ACTT", "--score-type", "odds", "-o", "json"}, &out, &errBuf)
	require.Equal(t, 0, code, errBuf.String())

	var res []api.ResultV1
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res, 1)
	assert.Equal(t, "odds", res[0].ScoreType)
	require.NotNil(t, res[0].Alignment)
	assert.Equal(t, "ACGT", res[0].Alignment.Track1)
	assert.Equal(t, "ACTT", res[0].Alignment.Track2)
}

func TestExitCodes(t *testing.T) {
	for name, tc := range map[string]struct {
		argv []string
		code int
	}{
		"no command":          {[]string{"nope"}, 2},
		"missing model":       {[]string{"align", "--seq1", "A", "--seq2", "A"}, 2},
		"no pair source":      {[]string{"align", "-m", modelPath}, 2},
		"bad model path":      {[]string{"align", "-m", "absent.yaml", "--seq1", "A", "--seq2", "A"}, 2},
		"illegal symbol":      {[]string{"align", "-m", modelPath, "--seq1", "AXA", "--seq2", "A"}, 2},
		"unreachable":         {[]string{"score", "-m", modelPath, "--seq1", "A", "--seq2", "A", "--min-score", "10", "--no-alignment-exit-code", "4"}, 4},
		"default unreachable": {[]string{"score", "-m", modelPath, "--seq1", "A", "--seq2", "A", "--min-score", "10"}, 1},
		"version":             {[]string{"version"}, 0},
	} {
		t.Run(name, func(t *testing.T) {
			var out, errBuf bytes.Buffer
			assert.Equal(t, tc.code, app.Run(tc.argv, &out, &errBuf), errBuf.String())
		})
	}
}
