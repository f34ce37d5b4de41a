// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rostro36/evodiff/decode"
	"github.com/rostro36/evodiff/schedule"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. PROTGEN_DIFFUSION_STEPS.
const EnvPrefix = "PROTGEN"

// ErrInvalid marks a configuration error. Validate joins one wrapped
// ErrInvalid per offending field.
var ErrInvalid = errors.New("config: invalid")

// Config is the complete run configuration, passed explicitly to every
// component at construction.
type Config struct {
	Mode      string `mapstructure:"mode" yaml:"mode"`
	Count     int    `mapstructure:"count" yaml:"count"`
	BatchSize int    `mapstructure:"batch_size" yaml:"batch_size"`
	Workers   int    `mapstructure:"workers" yaml:"workers"`
	Seed      int64  `mapstructure:"seed" yaml:"seed"`
	Device    string `mapstructure:"device" yaml:"device"`

	Lengths        LengthsConfig        `mapstructure:"lengths" yaml:"lengths"`
	Diffusion      DiffusionConfig      `mapstructure:"diffusion" yaml:"diffusion"`
	Mask           MaskConfig           `mapstructure:"mask" yaml:"mask"`
	Autoregressive AutoregressiveConfig `mapstructure:"autoregressive" yaml:"autoregressive"`
	Reference      ReferenceConfig      `mapstructure:"reference" yaml:"reference"`
	Model          ModelConfig          `mapstructure:"model" yaml:"model"`
	Output         OutputConfig         `mapstructure:"output" yaml:"output"`
	Log            LogConfig            `mapstructure:"log" yaml:"log"`
	Metrics        MetricsConfig        `mapstructure:"metrics" yaml:"metrics"`
}

// LengthsConfig selects the length source of length-fixed modes. Table
// takes precedence over Corpus, Corpus over Fixed.
type LengthsConfig struct {
	Fixed  int    `mapstructure:"fixed" yaml:"fixed"`
	Corpus string `mapstructure:"corpus" yaml:"corpus"`
	Table  string `mapstructure:"table" yaml:"table"`
}

// DiffusionConfig configures the transition schedule.
type DiffusionConfig struct {
	Family     string `mapstructure:"family" yaml:"family"`
	Beta       string `mapstructure:"beta" yaml:"beta"`
	Steps      int    `mapstructure:"steps" yaml:"steps"`
	SingleShot bool   `mapstructure:"single_shot" yaml:"single_shot"`
}

// MaskConfig configures order-agnostic decoding.
type MaskConfig struct {
	Penalty  float64 `mapstructure:"penalty" yaml:"penalty"`
	Position string  `mapstructure:"position" yaml:"position"`
}

// AutoregressiveConfig configures left-to-right decoding.
type AutoregressiveConfig struct {
	MaxLength int `mapstructure:"max_length" yaml:"max_length"`

	// KeepStructural samples mask/pad/start/gap instead of filtering them.
	KeepStructural bool `mapstructure:"keep_structural" yaml:"keep_structural"`
}

// ReferenceConfig names the corpus whose marginals the baseline draws from.
type ReferenceConfig struct {
	Corpus string `mapstructure:"corpus" yaml:"corpus"`
}

// ModelConfig locates the scoring model. An empty Endpoint selects a
// uniform stand-in model.
type ModelConfig struct {
	Endpoint    string        `mapstructure:"endpoint" yaml:"endpoint"`
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// OutputConfig locates the run directory.
type OutputConfig struct {
	Dir   string `mapstructure:"dir" yaml:"dir"`
	Reset bool   `mapstructure:"reset" yaml:"reset"`
}

// LogConfig selects logger level and style (terminal, json, noop).
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Style string `mapstructure:"style" yaml:"style"`
}

// MetricsConfig optionally names a Prometheus textfile written after a run.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Mode:      string(decode.ModeMask),
		Count:     20,
		BatchSize: 1,
		Workers:   1,
		Seed:      decode.DefaultSeed,
		Device:    "cpu",
		Lengths:   LengthsConfig{Fixed: 100},
		Diffusion: DiffusionConfig{
			Family: string(schedule.Uniform),
			Steps:  500,
		},
		Mask:           MaskConfig{Position: string(decode.PositionRandom)},
		Autoregressive: AutoregressiveConfig{MaxLength: decode.DefaultMaxLength},
		Model:          ModelConfig{Concurrency: 1, Timeout: 5 * time.Minute},
		Output:         OutputConfig{Dir: "."},
		Log:            LogConfig{Level: "info", Style: StyleTerminal},
	}
}

// Validate reports every configuration error before any model call.
func (c Config) Validate() error {
	var (
		errs []error
		mode decode.Mode
		err  error
	)
	bad := func(field string, v any, why string) {
		errs = append(errs, fmt.Errorf("%s=%v: %s: %w", field, v, why, ErrInvalid))
	}

	if mode, err = decode.ParseMode(c.Mode); err != nil {
		bad("mode", c.Mode, "unknown decoding mode")
	}
	if c.Count <= 0 {
		bad("count", c.Count, "must be positive")
	}
	if c.BatchSize <= 0 {
		bad("batch_size", c.BatchSize, "must be positive")
	}
	if c.Workers <= 0 {
		bad("workers", c.Workers, "must be positive")
	}

	if mode.FixedLength() && err == nil && c.Lengths.Table == "" && c.Lengths.Corpus == "" && c.Lengths.Fixed <= 0 {
		bad("lengths.fixed", c.Lengths.Fixed, "must be positive without a corpus or table")
	}

	switch mode {
	case decode.ModeDiffusion:
		if _, err = schedule.ParseFamily(c.Diffusion.Family); err != nil {
			bad("diffusion.family", c.Diffusion.Family, "unknown corruption family")
		}
		if c.Diffusion.Beta != "" {
			if _, err = schedule.ParseBetaKind(c.Diffusion.Beta); err != nil {
				bad("diffusion.beta", c.Diffusion.Beta, "unknown beta schedule")
			}
		}
		if c.Diffusion.Steps < 2 {
			bad("diffusion.steps", c.Diffusion.Steps, "need at least 2 timesteps")
		}
	case decode.ModeMask:
		if c.Mask.Penalty != 0 && c.Mask.Penalty < 1 {
			bad("mask.penalty", c.Mask.Penalty, "must be 0 (off) or >= 1")
		}
		if p := decode.PositionPolicy(c.Mask.Position); p != decode.PositionRandom && p != decode.PositionConfident {
			bad("mask.position", c.Mask.Position, "want random or confident")
		}
	case decode.ModeAutoregressive:
		if c.Autoregressive.MaxLength <= 0 {
			bad("autoregressive.max_length", c.Autoregressive.MaxLength, "must be positive")
		}
	case decode.ModeReference:
		if c.Reference.Corpus == "" {
			bad("reference.corpus", "", "a FASTA corpus is required")
		}
	}

	if c.Model.Concurrency <= 0 {
		bad("model.concurrency", c.Model.Concurrency, "must be positive")
	}
	if c.Model.Timeout < 0 {
		bad("model.timeout", c.Model.Timeout, "must not be negative")
	}
	if _, err = ParseLevel(c.Log.Level); err != nil {
		bad("log.level", c.Log.Level, "unknown level")
	}
	switch c.Log.Style {
	case StyleTerminal, StyleJSON, StyleNoop:
	default:
		bad("log.style", c.Log.Style, "want terminal, json or noop")
	}

	return errors.Join(errs...)
}

// NewViper returns a viper instance reading PROTGEN_* environment variables,
// with nested keys separated by '_'.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// SetDefaults registers every key with its Default value, which also makes
// every key reachable from the environment.
func SetDefaults(v *viper.Viper) {
	d := Default()
	for key, val := range map[string]any{
		"mode":                           d.Mode,
		"count":                          d.Count,
		"batch_size":                     d.BatchSize,
		"workers":                        d.Workers,
		"seed":                           d.Seed,
		"device":                         d.Device,
		"lengths.fixed":                  d.Lengths.Fixed,
		"lengths.corpus":                 d.Lengths.Corpus,
		"lengths.table":                  d.Lengths.Table,
		"diffusion.family":               d.Diffusion.Family,
		"diffusion.beta":                 d.Diffusion.Beta,
		"diffusion.steps":                d.Diffusion.Steps,
		"diffusion.single_shot":          d.Diffusion.SingleShot,
		"mask.penalty":                   d.Mask.Penalty,
		"mask.position":                  d.Mask.Position,
		"autoregressive.max_length":      d.Autoregressive.MaxLength,
		"autoregressive.keep_structural": d.Autoregressive.KeepStructural,
		"reference.corpus":               d.Reference.Corpus,
		"model.endpoint":                 d.Model.Endpoint,
		"model.concurrency":              d.Model.Concurrency,
		"model.timeout":                  d.Model.Timeout,
		"output.dir":                     d.Output.Dir,
		"output.reset":                   d.Output.Reset,
		"log.level":                      d.Log.Level,
		"log.style":                      d.Log.Style,
		"metrics.textfile":               d.Metrics.Textfile,
	} {
		v.SetDefault(key, val)
	}
}

// Load decodes v over the defaults and validates the result.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	c := Default()
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("config: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}
