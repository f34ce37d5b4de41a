// SPDX-License-Identifier: MIT

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the engine's Prometheus collectors, labelled by decoding mode.
type Metrics struct {
	Generated *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	Truncated *prometheus.CounterVec
	Batch     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Generated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protgen_sequences_generated_total",
				Help: "Sequences emitted to the sink, by decoding mode",
			},
			[]string{"mode"},
		),
		Failed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protgen_sequences_failed_total",
				Help: "Requested outputs that failed, by decoding mode",
			},
			[]string{"mode"},
		),
		Truncated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "protgen_sequences_truncated_total",
				Help: "Sequences that hit the maximum length without a stop symbol",
			},
			[]string{"mode"},
		),
		Batch: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "protgen_batch_duration_seconds",
				Help:    "Wall time of one decoding batch",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
			},
			[]string{"mode"},
		),
	}
}
