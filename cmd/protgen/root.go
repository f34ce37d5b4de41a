// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/rostro36/evodiff/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// newRootCmd builds the command tree around one viper instance.
func newRootCmd() *cobra.Command {
	var (
		v       = config.NewViper()
		cfgFile string
		d       = config.Default()
	)

	root := &cobra.Command{
		Use:   "protgen",
		Short: "Generate protein sequences with a sequence model",
		Long: `Generate protein sequences from a trained model using order-agnostic
mask decoding, discrete diffusion, autoregressive decoding, or a
reference baseline drawn from corpus statistics.

Examples:
  # 100 sequences of length 120 by discrete diffusion on a similarity schedule
  protgen generate --mode diffusion --family similarity --length 120 --count 100 \
    --endpoint http://localhost:9000/score

  # reference baseline with lengths drawn from the training corpus
  protgen generate --mode reference --reference-corpus train.fasta \
    --length-corpus train.fasta

  # inspect a schedule
  protgen schedule --family uniform --steps 10`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile == "" {
				return nil
			}
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file %s: %w", cfgFile, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Using config file: %s\n", v.ConfigFileUsed())

			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", os.Getenv(config.EnvPrefix+"_CONFIG"), "config file path (e.g. protgen.yaml)")
	pf.String("log-level", d.Log.Level, "logging level (debug, info, warn, error)")
	pf.String("log-style", d.Log.Style, "logging output style (terminal, json, noop)")
	mustBind(v, "log.level", pf.Lookup("log-level"))
	mustBind(v, "log.style", pf.Lookup("log-style"))

	root.AddCommand(newGenerateCmd(v), newScheduleCmd(v), newSubsetCmd(v))

	return root
}

func mustBind(v *viper.Viper, key string, f *pflag.Flag) {
	if err := v.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("bind %s: %v", key, err))
	}
}

// bindFlags binds config keys to the flags of the command being run.
// Subcommands share keys, so binding happens at run time, not construction.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	return nil
}
