// SPDX-License-Identifier: MIT

package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log styles.
const (
	StyleTerminal = "terminal"
	StyleJSON     = "json"
	StyleNoop     = "noop"
)

// ParseLevel maps a level name (debug, info, warn, error) to a zap level.
func ParseLevel(s string) (zapcore.Level, error) {
	return zapcore.ParseLevel(s)
}

// NewLogger builds the process logger: colored console output for
// terminal, production JSON for json, and a no-op logger for noop.
func NewLogger(lc LogConfig) (*zap.Logger, error) {
	lvl, err := ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level=%q: %w", lc.Level, ErrInvalid)
	}

	var zc zap.Config
	switch lc.Style {
	case StyleNoop:
		return zap.NewNop(), nil
	case StyleJSON:
		zc = zap.NewProductionConfig()
	case StyleTerminal:
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zc.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("log.style=%q: %w", lc.Style, ErrInvalid)
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)

	return zc.Build()
}
