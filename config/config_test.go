package config_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rostro36/evodiff/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
	assert.False(t, config.Default().Autoregressive.KeepStructural)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	t.Setenv("PROTGEN_DIFFUSION_STEPS", "250")
	t.Setenv("PROTGEN_WORKERS", "4")
	t.Setenv("PROTGEN_AUTOREGRESSIVE_KEEP_STRUCTURAL", "true")

	v := config.NewViper()
	require.NoError(t, v.ReadConfig(strings.NewReader(`
mode: diffusion
count: 64
batch_size: 8
diffusion:
  family: similarity
  single_shot: true
lengths:
  corpus: data/train.fasta
model:
  endpoint: http://localhost:9000/score
  timeout: 30s
`)))

	c, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "diffusion", c.Mode)
	assert.Equal(t, 64, c.Count)
	assert.Equal(t, 8, c.BatchSize)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "similarity", c.Diffusion.Family)
	assert.Equal(t, 250, c.Diffusion.Steps)
	assert.True(t, c.Diffusion.SingleShot)
	assert.Equal(t, "data/train.fasta", c.Lengths.Corpus)
	assert.Equal(t, 100, c.Lengths.Fixed)
	assert.Equal(t, 30*time.Second, c.Model.Timeout)
	assert.Equal(t, 1, c.Model.Concurrency)
	assert.Equal(t, "info", c.Log.Level)
	assert.True(t, c.Autoregressive.KeepStructural)
}

func TestValidateCollectsEveryError(t *testing.T) {
	c := config.Default()
	c.Mode = "diffusion"
	c.Count = 0
	c.Diffusion.Steps = 1
	c.Diffusion.Family = "blosum"
	c.Log.Style = "logfmt"

	err := c.Validate()
	require.ErrorIs(t, err, config.ErrInvalid)
	for _, field := range []string{"count=0", "diffusion.steps=1", "diffusion.family=blosum", "log.style=logfmt"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestValidateModes(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*config.Config)
		field string
	}{
		{"unknown mode", func(c *config.Config) { c.Mode = "bert" }, "mode=bert"},
		{"negative length", func(c *config.Config) { c.Lengths.Fixed = -3 }, "lengths.fixed=-3"},
		{"no length source", func(c *config.Config) { c.Lengths.Fixed = 0 }, "lengths.fixed=0"},
		{"penalty below one", func(c *config.Config) { c.Mask.Penalty = 0.5 }, "mask.penalty=0.5"},
		{"position", func(c *config.Config) { c.Mask.Position = "left" }, "mask.position=left"},
		{"max length", func(c *config.Config) {
			c.Mode = "autoregressive"
			c.Autoregressive.MaxLength = 0
		}, "autoregressive.max_length=0"},
		{"reference corpus", func(c *config.Config) { c.Mode = "reference" }, "reference.corpus="},
		{"beta", func(c *config.Config) {
			c.Mode = "diffusion"
			c.Diffusion.Beta = "quadratic"
		}, "diffusion.beta=quadratic"},
		{"concurrency", func(c *config.Config) { c.Model.Concurrency = 0 }, "model.concurrency=0"},
		{"level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level=loud"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := config.Default()
			tc.edit(&c)
			err := c.Validate()
			require.ErrorIs(t, err, config.ErrInvalid)
			assert.Contains(t, err.Error(), tc.field)
		})
	}

	// a corpus overrides the fixed length
	c := config.Default()
	c.Lengths.Fixed = 0
	c.Lengths.Corpus = "train.fasta"
	require.NoError(t, c.Validate())

	// autoregressive needs no length source
	c = config.Default()
	c.Mode = "autoregressive"
	c.Lengths = config.LengthsConfig{}
	require.NoError(t, c.Validate())
}

func TestNewLogger(t *testing.T) {
	for _, style := range []string{config.StyleTerminal, config.StyleJSON, config.StyleNoop} {
		l, err := config.NewLogger(config.LogConfig{Level: "debug", Style: style})
		require.NoError(t, err, style)
		require.NotNil(t, l)
	}
	l, err := config.NewLogger(config.LogConfig{Level: "warn", Style: config.StyleJSON})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.ErrorLevel))

	_, err = config.NewLogger(config.LogConfig{Level: "info", Style: "xml"})
	require.True(t, errors.Is(err, config.ErrInvalid))
}
