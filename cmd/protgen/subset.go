// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/rostro36/evodiff/config"
	"github.com/rostro36/evodiff/corpus"
	"github.com/rostro36/evodiff/decode"
	"github.com/rostro36/evodiff/sink"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSubsetCmd(v *viper.Viper) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "subset",
		Short: "Write a random subset of real sequences in the generated-output format",
		Long: `Draw distinct sequences uniformly from a FASTA corpus (for example the
held-out test split) and append them to the output directory exactly as
generate would, so that real and generated samples can be compared.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(v, cmd.Flags(), map[string]string{
				"count":        "count",
				"seed":         "seed",
				"output.dir":   "out",
				"output.reset": "reset",
			})
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			if source == "" {
				return fmt.Errorf("--corpus is required")
			}
			recs, err := readCorpus(source)
			if err != nil {
				return err
			}
			sub, err := corpus.Subset(recs, cfg.Count, decode.NewRNG(cfg.Seed))
			if err != nil {
				return err
			}

			if cfg.Output.Reset {
				if _, err = sink.Reset(cfg.Output.Dir); err != nil {
					return err
				}
			}
			out, err := sink.OpenDir(cfg.Output.Dir)
			if err != nil {
				return err
			}
			for i, rec := range sub {
				if err = out.Emit(i, rec.Seq); err != nil {
					_ = out.Close()

					return err
				}
			}
			if err = out.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d of %d sequences to %s\n", len(sub), len(recs), out.Path())

			return nil
		},
	}

	d := config.Default()
	f := cmd.Flags()
	f.StringVar(&source, "corpus", "", "FASTA corpus to sample from")
	f.Int("count", d.Count, "number of sequences")
	f.Int64("seed", d.Seed, "sampling seed")
	f.String("out", d.Output.Dir, "output directory")
	f.Bool("reset", false, "delete previous generated files in the output directory")

	return cmd
}
