// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/config"
	"github.com/rostro36/evodiff/engine"
	"github.com/rostro36/evodiff/sink"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newGenerateCmd(v *viper.Viper) *cobra.Command {
	d := config.Default()
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate sequences and append them to the output directory",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), generateKeys)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}

			return runGenerate(ctx, cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.String("mode", d.Mode, "decoding mode (oa-mask, diffusion, autoregressive, reference)")
	f.Int("count", d.Count, "number of sequences to generate")
	f.Int("batch-size", d.BatchSize, "requests of equal length sharing one model query")
	f.Int("workers", d.Workers, "batches decoded concurrently")
	f.Int64("seed", d.Seed, "run seed")
	f.String("device", d.Device, "execution device passed to the model")
	f.Int("length", d.Lengths.Fixed, "fixed sequence length")
	f.String("length-corpus", "", "FASTA file whose sequence lengths are sampled")
	f.String("length-table", "", "CSV table of lengths to sample")
	f.String("family", d.Diffusion.Family, "diffusion corruption family (uniform, similarity)")
	f.String("beta", "", "beta schedule (linear, sohl-dickstein, exp, cosine); family default if empty")
	f.Int("steps", d.Diffusion.Steps, "diffusion timesteps T")
	f.Bool("single-shot", false, "sample x0 directly from the model at t = T-1")
	f.Float64("penalty", 0, "order-agnostic repetition penalty (0 disables, otherwise >= 1)")
	f.String("position", d.Mask.Position, "order-agnostic reveal policy (random, confident)")
	f.Int("max-length", d.Autoregressive.MaxLength, "autoregressive length cap")
	f.Bool("keep-structural", d.Autoregressive.KeepStructural, "autoregressive: sample mask/pad/start/gap from the full softmax")
	f.String("reference-corpus", "", "FASTA corpus for reference marginals")
	f.String("endpoint", "", "HTTP endpoint of the scoring model; uniform logits if empty")
	f.Int("concurrency", d.Model.Concurrency, "concurrent model calls")
	f.Duration("timeout", d.Model.Timeout, "timeout of one model call")
	f.String("out", d.Output.Dir, "output directory")
	f.Bool("reset", false, "delete previous generated files in the output directory")
	f.String("metrics-textfile", "", "write Prometheus metrics to this file after the run")

	return cmd
}

// generateKeys maps config keys to generate flags.
var generateKeys = map[string]string{
	"mode":                           "mode",
	"count":                          "count",
	"batch_size":                     "batch-size",
	"workers":                        "workers",
	"seed":                           "seed",
	"device":                         "device",
	"lengths.fixed":                  "length",
	"lengths.corpus":                 "length-corpus",
	"lengths.table":                  "length-table",
	"diffusion.family":               "family",
	"diffusion.beta":                 "beta",
	"diffusion.steps":                "steps",
	"diffusion.single_shot":          "single-shot",
	"mask.penalty":                   "penalty",
	"mask.position":                  "position",
	"autoregressive.max_length":      "max-length",
	"autoregressive.keep_structural": "keep-structural",
	"reference.corpus":               "reference-corpus",
	"model.endpoint":                 "endpoint",
	"model.concurrency":              "concurrency",
	"model.timeout":                  "timeout",
	"output.dir":                     "out",
	"output.reset":                   "reset",
	"metrics.textfile":               "metrics-textfile",
}

// runGenerate wires the configured components and runs the engine.
//
// Stage 1: logger, alphabet, scorer, strategy and length source.
// Stage 2: output directory and metrics.
// Stage 3: generate, then write the manifest and metrics snapshot.
func runGenerate(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	var (
		runID = uuid.NewString()
		a     = alphabet.Protein()
		reg   = prometheus.NewRegistry()
		out   *sink.Dir
	)
	log = log.With(zap.String("run_id", runID))

	sc, err := buildScorer(a, cfg.Model, log)
	if err != nil {
		return err
	}
	strategy, err := buildStrategy(cfg, a, sc, runID, log)
	if err != nil {
		return err
	}
	lengths, err := buildLengths(cfg)
	if err != nil {
		return err
	}

	if cfg.Output.Reset {
		removed, err := sink.Reset(cfg.Output.Dir)
		if err != nil {
			return err
		}
		for _, f := range removed {
			log.Info("deleted previous output", zap.String("file", f))
		}
	}
	if out, err = sink.OpenDir(cfg.Output.Dir); err != nil {
		return err
	}
	defer out.Close()

	e, err := engine.New(strategy, lengths, out,
		engine.WithBatchSize(cfg.BatchSize),
		engine.WithWorkers(cfg.Workers),
		engine.WithSeed(cfg.Seed),
		engine.WithRunID(runID),
		engine.WithLogger(log.Named("engine")),
		engine.WithMetrics(engine.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	rep, genErr := e.Generate(ctx, cfg.Count)
	if err = out.Close(); err != nil {
		return err
	}
	if rep != nil {
		if err = sink.WriteManifest(cfg.Output.Dir, sink.NewManifest(rep, cfg, time.Now())); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s: generated %d of %d (failed %d, truncated %d) in %s\n",
			rep.RunID, rep.Generated, rep.Requested, rep.Failed, rep.Truncated, rep.Duration.Round(time.Millisecond))
	}
	if cfg.Metrics.Textfile != "" {
		if err = prometheus.WriteToTextfile(cfg.Metrics.Textfile, reg); err != nil {
			return err
		}
	}

	return genErr
}
