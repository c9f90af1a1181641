// Package metrics records replay outcomes in a private Prometheus registry
// and writes them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of one replayed input.
const (
	OutcomeOK          = "ok"
	OutcomeEngineError = "engine_error"
)

// Replay collects per-variant replay metrics.
type Replay struct {
	registry *prometheus.Registry

	inputs       *prometheus.CounterVec
	inputBytes   *prometheus.HistogramVec
	unusedBytes  *prometheus.CounterVec
	buildSeconds *prometheus.HistogramVec
}

// NewReplay returns a recorder with its own registry.
func NewReplay() *Replay {
	r := &Replay{
		registry: prometheus.NewRegistry(),
		inputs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rexfuzz_replay_inputs_total",
				Help: "Inputs replayed through the harness, by variant and outcome.",
			},
			[]string{"variant", "outcome"},
		),
		inputBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rexfuzz_replay_input_bytes",
				Help:    "Size of replayed inputs.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
			[]string{"variant"},
		),
		unusedBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rexfuzz_replay_unused_bytes_total",
				Help: "Input bytes left over after decoding. High values mean the corpus carries dead weight.",
			},
			[]string{"variant"},
		),
		buildSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rexfuzz_replay_build_seconds",
				Help:    "Time spent in the engine per input.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"variant"},
		),
	}

	r.registry.MustRegister(r.inputs, r.inputBytes, r.unusedBytes, r.buildSeconds)

	return r
}

// Observe records one replayed input.
func (r *Replay) Observe(variant, outcome string, size, consumed int, took time.Duration) {
	r.inputs.WithLabelValues(variant, outcome).Inc()
	r.inputBytes.WithLabelValues(variant).Observe(float64(size))
	r.unusedBytes.WithLabelValues(variant).Add(float64(max(size-consumed, 0)))
	r.buildSeconds.WithLabelValues(variant).Observe(took.Seconds())
}

// Registry returns the underlying registry.
func (r *Replay) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path atomically.
func (r *Replay) WriteTextfile(path string) error {
	err := prometheus.WriteToTextfile(path, r.registry)
	if err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}

	return nil
}
