// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rostro36/evodiff/decode"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine runs one decoding strategy for many requested outputs.
// Schedules and alphabets inside the strategy are shared read-only; each
// batch owns its own decode.State and RNG stream.
type Engine struct {
	strategy decode.Strategy
	lengths  LengthSource
	sink     Sink
	opts     Options

	generated, failed, truncated prometheus.Counter
	batchTime                    prometheus.Observer
}

// Outcome is the result of one requested output.
type Outcome struct {
	Index     int
	Length    int
	Text      string
	Truncated bool
	Steps     int
	Err       error
}

// Report summarizes a run. Outcomes are ordered by request index. A
// request that is neither generated nor failed was skipped because the run
// aborted.
type Report struct {
	RunID     string
	Mode      decode.Mode
	Requested int
	Generated int
	Failed    int
	Truncated int
	Duration  time.Duration
	Outcomes  []Outcome
}

// Failures returns the per-request errors of the run, by index.
func (r *Report) Failures() []*RequestError {
	var out []*RequestError
	for i := range r.Outcomes {
		if re, ok := r.Outcomes[i].Err.(*RequestError); ok {
			out = append(out, re)
		}
	}

	return out
}

// New builds an engine. lengths may be nil only for strategies that decide
// their own length (autoregressive).
func New(s decode.Strategy, lengths LengthSource, sink Sink, opts ...Option) (*Engine, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("New: strategy: %w", ErrMissingDependency)
	}
	if sink == nil {
		return nil, fmt.Errorf("New: sink: %w", ErrMissingDependency)
	}
	if lengths == nil && s.Mode().FixedLength() {
		return nil, fmt.Errorf("New: %s needs a length source: %w", s.Mode(), ErrMissingDependency)
	}

	mode := string(s.Mode())

	return &Engine{
		strategy:  s,
		lengths:   lengths,
		sink:      sink,
		opts:      o,
		generated: o.Metrics.Generated.WithLabelValues(mode),
		failed:    o.Metrics.Failed.WithLabelValues(mode),
		truncated: o.Metrics.Truncated.WithLabelValues(mode),
		batchTime: o.Metrics.Batch.WithLabelValues(mode),
	}, nil
}

// batch is a group of requests of equal length decoded together.
type batch struct {
	stream  uint64
	length  int
	indices []int
}

// Generate produces count outputs and hands each finished sequence to the
// sink. Failures of single requests (bad length, degenerate posterior,
// scorer or shape errors of their batch) are recorded in the Report and do
// not stop siblings. The returned error is non-nil only for an invalid
// count, a sink failure, or cancellation; the Report is still returned.
//
// Stage 1: draw lengths sequentially from the master RNG.
// Stage 2: group equal lengths into batches of at most BatchSize.
// Stage 3: decode batches on up to Workers goroutines, each with the RNG
// stream of its batch number.
func (e *Engine) Generate(ctx context.Context, count int) (*Report, error) {
	if count <= 0 {
		return nil, fmt.Errorf("Generate(%d): %w", count, ErrInvalidCount)
	}

	var (
		began   = time.Now()
		runID   = e.opts.RunID
		log     *zap.Logger
		rep     *Report
		batches []batch
	)
	if runID == "" {
		runID = uuid.NewString()
	}
	log = e.opts.Logger.With(zap.String("run_id", runID), zap.String("mode", string(e.strategy.Mode())))
	rep = &Report{
		RunID:     runID,
		Mode:      e.strategy.Mode(),
		Requested: count,
		Outcomes:  make([]Outcome, count),
	}

	batches = e.plan(rep, log)
	log.Info("generation started",
		zap.Int("count", count),
		zap.Int("batches", len(batches)),
		zap.Int("workers", e.opts.Workers),
	)

	var (
		mu      sync.Mutex
		g, gctx = errgroup.WithContext(ctx)
	)
	g.SetLimit(e.opts.Workers)
	for _, b := range batches {
		b := b
		g.Go(func() error {
			return e.runBatch(gctx, b, rep, &mu, log)
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	rep.Duration = time.Since(began)

	log.Info("generation finished",
		zap.Int("generated", rep.Generated),
		zap.Int("failed", rep.Failed),
		zap.Int("truncated", rep.Truncated),
		zap.Duration("took", rep.Duration),
		zap.Error(err),
	)
	if err != nil {
		return rep, fmt.Errorf("Generate: %w", err)
	}

	return rep, nil
}

// plan draws every length and groups valid requests into batches. Requests
// with an invalid length are failed in rep immediately.
func (e *Engine) plan(rep *Report, log *zap.Logger) []batch {
	var (
		master  = decode.NewRNG(e.opts.Seed)
		fixed   = e.strategy.Mode().FixedLength()
		byLen   = make(map[int][]int)
		keys    []int
		batches []batch
		n       int
		err     error
	)
	for i := range rep.Outcomes {
		rep.Outcomes[i].Index = i
		if !fixed {
			byLen[0] = append(byLen[0], i)
			continue
		}
		if n, err = e.lengths.Length(master); err == nil && n <= 0 {
			err = fmt.Errorf("length %d: %w", n, ErrInvalidLength)
		}
		if err != nil {
			rep.Outcomes[i].Err = &RequestError{Index: i, Err: err}
			rep.Failed++
			e.failed.Inc()
			log.Warn("request rejected", zap.Int("index", i), zap.Error(err))
			continue
		}
		rep.Outcomes[i].Length = n
		byLen[n] = append(byLen[n], i)
	}

	for n := range byLen {
		keys = append(keys, n)
	}
	sort.Ints(keys)
	for _, n := range keys {
		idx := byLen[n]
		for lo := 0; lo < len(idx); lo += e.opts.BatchSize {
			hi := min(lo+e.opts.BatchSize, len(idx))
			batches = append(batches, batch{
				stream:  uint64(len(batches)),
				length:  n,
				indices: idx[lo:hi],
			})
		}
	}

	return batches
}

// runBatch decodes one batch and records its outcomes. Only sink errors are
// returned; decoding errors are per request.
func (e *Engine) runBatch(ctx context.Context, b batch, rep *Report, mu *sync.Mutex, log *zap.Logger) error {
	ctx, span := e.opts.Tracer.Start(ctx, "engine.batch", trace.WithAttributes(
		attribute.String("protgen.run_id", rep.RunID),
		attribute.String("protgen.mode", string(rep.Mode)),
		attribute.Int("protgen.batch", int(b.stream)),
		attribute.Int("protgen.rows", len(b.indices)),
		attribute.Int("protgen.length", b.length),
	))
	defer span.End()

	began := time.Now()
	res, err := decode.Run(ctx, e.strategy, len(b.indices), b.length, decode.StreamRNG(e.opts.Seed, b.stream))
	e.batchTime.Observe(time.Since(began).Seconds())

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		for _, i := range b.indices {
			rep.Outcomes[i].Err = &RequestError{Index: i, Err: err}
		}
		rep.Failed += len(b.indices)
		e.failed.Add(float64(len(b.indices)))
		log.Warn("batch failed", zap.Int("batch", int(b.stream)), zap.Ints("indices", b.indices), zap.Error(err))

		return nil
	}

	for r, i := range b.indices {
		oc := &rep.Outcomes[i]
		oc.Steps = res[r].Steps
		if res[r].Err != nil {
			oc.Err = &RequestError{Index: i, Err: res[r].Err}
			rep.Failed++
			e.failed.Inc()
			log.Warn("request failed", zap.Int("index", i), zap.Error(res[r].Err))
			continue
		}
		oc.Text = res[r].Text
		oc.Truncated = res[r].Truncated
		if !e.strategy.Mode().FixedLength() {
			oc.Length = len(res[r].Tokens)
		}
		if err = e.sink.Emit(i, oc.Text); err != nil {
			err = fmt.Errorf("emit %d: %w", i, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			oc.Err = &RequestError{Index: i, Err: err}
			rep.Failed++
			e.failed.Inc()

			return err
		}
		rep.Generated++
		e.generated.Inc()
		if oc.Truncated {
			rep.Truncated++
			e.truncated.Inc()
		}
		log.Debug("sequence emitted",
			zap.Int("index", i),
			zap.Int("length", len(res[r].Tokens)),
			zap.Int("steps", oc.Steps),
			zap.Bool("truncated", oc.Truncated),
		)
	}
	span.SetStatus(codes.Ok, "")

	return nil
}
