// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/config"
	"github.com/rostro36/evodiff/corpus"
	"github.com/rostro36/evodiff/decode"
	"github.com/rostro36/evodiff/engine"
	"github.com/rostro36/evodiff/model"
	"github.com/rostro36/evodiff/schedule"
	"github.com/rostro36/evodiff/scorer"
	"go.uber.org/zap"
)

// readCorpus loads a FASTA file.
func readCorpus(path string) ([]corpus.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := corpus.ReadFASTA(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return recs, nil
}

// buildSchedule constructs the transition schedule of the diffusion section.
func buildSchedule(a *alphabet.Alphabet, dc config.DiffusionConfig) (*schedule.Schedule, error) {
	family, err := schedule.ParseFamily(dc.Family)
	if err != nil {
		return nil, err
	}
	opts := []schedule.Option{schedule.WithFamily(family)}
	if dc.Beta != "" {
		kind, err := schedule.ParseBetaKind(dc.Beta)
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithBeta(kind))
	}
	if family == schedule.Similarity {
		kernel, err := a.SimilarityKernel(alphabet.BLOSUM62())
		if err != nil {
			return nil, err
		}
		opts = append(opts, schedule.WithKernel(kernel))
	}

	return schedule.Build(a.K(), dc.Steps, opts...)
}

// buildScorer connects to the configured model, or a uniform stand-in when
// no endpoint is set, and bounds concurrent calls.
func buildScorer(a *alphabet.Alphabet, mc config.ModelConfig, log *zap.Logger) (model.Scorer, error) {
	var (
		sc  model.Scorer
		err error
	)
	if mc.Endpoint == "" {
		log.Warn("no model endpoint configured, scoring with uniform logits")
		if sc, err = scorer.Uniform(a.Size()); err != nil {
			return nil, err
		}
	} else {
		sc, err = scorer.NewClient(mc.Endpoint,
			scorer.WithHTTPClient(&http.Client{Timeout: mc.Timeout}),
			scorer.WithLogger(log.Named("scorer")),
		)
		if err != nil {
			return nil, err
		}
	}

	return scorer.NewPooled(sc, mc.Concurrency)
}

// buildStrategy selects the decoder for cfg.Mode once.
func buildStrategy(cfg config.Config, a *alphabet.Alphabet, sc model.Scorer, runID string, log *zap.Logger) (decode.Strategy, error) {
	mode, err := decode.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	deps := decode.Deps{Alphabet: a, Scorer: sc}

	switch mode {
	case decode.ModeDiffusion:
		if deps.Schedule, err = buildSchedule(a, cfg.Diffusion); err != nil {
			return nil, fmt.Errorf("schedule: %w", err)
		}
	case decode.ModeReference:
		recs, err := readCorpus(cfg.Reference.Corpus)
		if err != nil {
			return nil, err
		}
		if deps.Marginals, err = corpus.Marginals(a, recs); err != nil {
			return nil, err
		}
	}

	return decode.New(mode, deps,
		decode.WithExecContext(model.ExecContext{Device: cfg.Device, RunID: runID}),
		decode.WithLogger(log.Named("decode")),
		decode.WithPenalty(cfg.Mask.Penalty),
		decode.WithPositionPolicy(decode.PositionPolicy(cfg.Mask.Position)),
		decode.WithSingleShot(cfg.Diffusion.SingleShot),
		decode.WithMaxLength(cfg.Autoregressive.MaxLength),
		decode.WithStructuralFilter(!cfg.Autoregressive.KeepStructural),
	)
}

// buildLengths returns the length source, or nil for modes that stop on
// their own.
func buildLengths(cfg config.Config) (engine.LengthSource, error) {
	if !decode.Mode(cfg.Mode).FixedLength() {
		return nil, nil
	}
	lc := cfg.Lengths
	switch {
	case lc.Table != "":
		f, err := os.Open(lc.Table)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		return engine.ReadLengthTable(f)
	case lc.Corpus != "":
		recs, err := readCorpus(lc.Corpus)
		if err != nil {
			return nil, err
		}

		return engine.NewEmpirical(corpus.Lengths(recs))
	}

	return engine.Fixed(lc.Fixed), nil
}
