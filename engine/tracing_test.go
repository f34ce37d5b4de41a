package engine_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/rostro36/evodiff/decode"
	"github.com/rostro36/evodiff/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// recordingTracer returns a tracer whose ended spans land in the recorder.
func recordingTracer(t *testing.T) (*tracetest.SpanRecorder, engine.Option) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	return sr, engine.WithTracer(tp.Tracer("engine-test"))
}

// spansByBatch indexes ended batch spans by their protgen.batch attribute.
func spansByBatch(t *testing.T, sr *tracetest.SpanRecorder) map[int64]sdktrace.ReadOnlySpan {
	t.Helper()
	out := make(map[int64]sdktrace.ReadOnlySpan)
	for _, s := range sr.Ended() {
		require.Equal(t, "engine.batch", s.Name())
		v, ok := attr(s, "protgen.batch")
		require.True(t, ok, "span without protgen.batch")
		out[v.AsInt64()] = s
	}

	return out
}

func attr(s sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}

	return attribute.Value{}, false
}

func hasException(s sdktrace.ReadOnlySpan) bool {
	for _, ev := range s.Events() {
		if ev.Name == "exception" {
			return true
		}
	}

	return false
}

// TestBatchSpansCarryStatus: the length-3 batch gets a too-wide model output
// and must end in an Error span; the length-5 batch ends Ok.
func TestBatchSpansCarryStatus(t *testing.T) {
	a := abcd(t)
	sc := flatScorer(func(length int) int {
		if length == 3 {
			return a.Size() + 1
		}

		return a.Size()
	})
	mask, err := decode.NewMask(a, sc)
	require.NoError(t, err)
	var calls int
	lengths := engine.LengthFunc(func(*rand.Rand) (int, error) {
		calls++
		if calls%2 == 1 {
			return 3, nil
		}

		return 5, nil
	})
	sr, withTracer := recordingTracer(t)
	e, err := engine.New(mask, lengths, engine.Discard,
		engine.WithBatchSize(4), engine.WithWorkers(2), engine.WithRunID("run-1"), withTracer)
	require.NoError(t, err)

	rep, err := e.Generate(context.Background(), 4)
	require.NoError(t, err)
	require.Equal(t, 2, rep.Failed)

	spans := spansByBatch(t, sr)
	require.Len(t, spans, 2)

	bad := spans[0] // lengths sort ascending: batch 0 holds the length-3 rows
	assert.Equal(t, codes.Error, bad.Status().Code)
	assert.Contains(t, bad.Status().Description, "shape")
	assert.True(t, hasException(bad))
	rows, ok := attr(bad, "protgen.rows")
	require.True(t, ok)
	assert.EqualValues(t, 2, rows.AsInt64())
	length, ok := attr(bad, "protgen.length")
	require.True(t, ok)
	assert.EqualValues(t, 3, length.AsInt64())
	runID, ok := attr(bad, "protgen.run_id")
	require.True(t, ok)
	assert.Equal(t, "run-1", runID.AsString())

	good := spans[1]
	assert.Equal(t, codes.Ok, good.Status().Code)
	assert.False(t, hasException(good))
	rows, ok = attr(good, "protgen.rows")
	require.True(t, ok)
	assert.EqualValues(t, 2, rows.AsInt64())
}

// TestSinkErrorMarksSpan records the emit failure on the span of its batch.
func TestSinkErrorMarksSpan(t *testing.T) {
	a := abcd(t)
	full := errors.New("disk full")
	sink := engine.SinkFunc(func(i int, _ string) error {
		if i == 1 {
			return full
		}

		return nil
	})
	sr, withTracer := recordingTracer(t)
	e, err := engine.New(reference(t, a), engine.Fixed(2), sink, withTracer)
	require.NoError(t, err)

	_, err = e.Generate(context.Background(), 4)
	require.ErrorIs(t, err, full)

	spans := spansByBatch(t, sr)
	require.Contains(t, spans, int64(0))
	require.Contains(t, spans, int64(1))
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, spans[1].Status().Description, "disk full")
	assert.True(t, hasException(spans[1]))
}
