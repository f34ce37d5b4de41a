package sink_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rostro36/evodiff/decode"
	"github.com/rostro36/evodiff/engine"
	"github.com/rostro36/evodiff/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFASTAAndCSV(t *testing.T) {
	var fa, cs bytes.Buffer
	f, c := sink.NewFASTA(&fa), sink.NewCSV(&cs)
	m := sink.Multi{f, c}

	require.NoError(t, m.Emit(0, "MKV"))
	require.NoError(t, m.Emit(7, "W"))
	require.NoError(t, f.Flush())
	require.NoError(t, c.Flush())

	assert.Equal(t, ">SEQUENCE_0\nMKV\n>SEQUENCE_7\nW\n", fa.String())
	assert.Equal(t, "MKV\nW\n", cs.String())
}

func TestMultiStopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	m := sink.Multi{
		engine.SinkFunc(func(int, string) error { return boom }),
		engine.SinkFunc(func(int, string) error { calls++; return nil }),
	}
	require.ErrorIs(t, m.Emit(1, "A"), boom)
	assert.Zero(t, calls)
}

func TestDirAppends(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	for run := 0; run < 2; run++ {
		d, err := sink.OpenDir(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, d.Path())
		require.NoError(t, d.Emit(run, "ACD"))
		require.NoError(t, d.Close())
	}

	fa, err := os.ReadFile(filepath.Join(dir, sink.FASTAFile))
	require.NoError(t, err)
	assert.Equal(t, ">SEQUENCE_0\nACD\n>SEQUENCE_1\nACD\n", string(fa))
	cs, err := os.ReadFile(filepath.Join(dir, sink.CSVFile))
	require.NoError(t, err)
	assert.Equal(t, "ACD\nACD\n", string(cs))

	removed, err := sink.Reset(dir)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	_, err = os.Stat(filepath.Join(dir, sink.FASTAFile))
	assert.True(t, os.IsNotExist(err))
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rep := &engine.Report{
		RunID:     "4f1c",
		Mode:      decode.ModeDiffusion,
		Requested: 3,
		Generated: 2,
		Failed:    1,
		Duration:  1500 * time.Millisecond,
		Outcomes: []engine.Outcome{
			{Index: 0, Text: "MK"},
			{Index: 1, Err: &engine.RequestError{Index: 1, Err: engine.ErrInvalidLength}},
			{Index: 2, Text: "AC"},
		},
	}
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := sink.NewManifest(rep, map[string]any{"mode": "diffusion", "count": 3}, created)
	require.NoError(t, sink.WriteManifest(dir, m))

	got, err := sink.ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "4f1c", got.RunID)
	assert.Equal(t, "diffusion", got.Mode)
	assert.True(t, created.Equal(got.Created))
	assert.Equal(t, 2, got.Generated)
	assert.Equal(t, "1.5s", got.Duration)
	require.Len(t, got.Failures, 1)
	assert.Equal(t, 1, got.Failures[0].Index)
	assert.Contains(t, got.Failures[0].Error, "sampled length must be positive")
	assert.Equal(t, map[string]any{"mode": "diffusion", "count": 3}, got.Config)

	_, err = sink.ReadManifest(t.TempDir())
	require.ErrorIs(t, err, os.ErrNotExist)
}
