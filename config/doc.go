// SPDX-License-Identifier: MIT

// Package config holds the run configuration of protgen: defaults,
// validation that classifies every configuration error before any model
// call, loading through viper (YAML file, PROTGEN_* environment, bound
// flags), and the zap logger built from the log section.
package config
