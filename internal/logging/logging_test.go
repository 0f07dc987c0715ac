package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": LevelDebug, "": LevelInfo, "WARN": LevelWarn, "error": LevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	got, err := ParseLevel("loud")
	require.Error(t, err)
	assert.Equal(t, LevelInfo, got)
}

func TestNewJSONCarriesService(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, JSON: true, Service: "pairdp"}, &buf)
	l.Debug("cell", "n", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "pairdp", rec["service"])
	assert.Equal(t, "cell", rec["msg"])
}

func TestQuietKeepsErrorsOnly(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: LevelDebug, Quiet: true}, &buf)
	l.Warn("dropped")
	assert.Zero(t, buf.Len())
	l.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}
