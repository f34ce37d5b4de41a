// SPDX-License-Identifier: MIT

package engine

import (
	"fmt"

	"github.com/rostro36/evodiff/decode"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracerName is the instrumentation scope of engine spans.
const TracerName = "github.com/rostro36/evodiff/engine"

// Defaults.
const (
	DefaultBatchSize = 1
	DefaultWorkers   = 1
)

// Option configures an Engine.
type Option func(*Options)

// Options holds engine settings. Invalid values are recorded and reported
// by New.
type Options struct {
	BatchSize int
	Workers   int
	Seed      int64
	RunID     string
	Logger    *zap.Logger
	Metrics   *Metrics
	Tracer    trace.Tracer

	err error
}

// DefaultOptions returns batch size 1, one worker, decode.DefaultSeed, a
// no-op logger, unregistered metrics and the global tracer.
func DefaultOptions() Options {
	return Options{
		BatchSize: DefaultBatchSize,
		Workers:   DefaultWorkers,
		Seed:      decode.DefaultSeed,
		Logger:    zap.NewNop(),
	}
}

// WithBatchSize sets how many requests of equal length share one model query.
func WithBatchSize(n int) Option {
	return func(o *Options) {
		if n <= 0 {
			o.err = fmt.Errorf("WithBatchSize(%d): %w", n, ErrOptionViolation)
			return
		}
		o.BatchSize = n
	}
}

// WithWorkers bounds how many batches decode concurrently.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n <= 0 {
			o.err = fmt.Errorf("WithWorkers(%d): %w", n, ErrOptionViolation)
			return
		}
		o.Workers = n
	}
}

// WithSeed sets the run seed; 0 selects decode.DefaultSeed.
func WithSeed(seed int64) Option {
	return func(o *Options) {
		if seed == 0 {
			seed = decode.DefaultSeed
		}
		o.Seed = seed
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(o *Options) { o.RunID = id }
}

// WithLogger sets the logger; nil selects a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l == nil {
			l = zap.NewNop()
		}
		o.Logger = l
	}
}

// WithMetrics sets the collectors updated by the engine.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithTracer sets the tracer used for batch spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) { o.Tracer = t }
}

func buildOptions(opts []Option) (Options, error) {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.err != nil {
		return o, o.err
	}
	if o.Metrics == nil {
		o.Metrics = NewMetrics(nil)
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(TracerName)
	}

	return o, nil
}
