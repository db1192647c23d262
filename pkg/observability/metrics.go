package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/fasim/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors updated by the simulator hooks.
type Metrics struct {
	registry    *prometheus.Registry
	steps       *prometheus.CounterVec
	runs        *prometheus.CounterVec
	inputLength prometheus.Histogram
	activeSize  prometheus.Histogram
}

// NewMetrics creates the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fasim_steps_total",
				Help: "Total number of simulation steps",
			},
			[]string{"stuck"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fasim_runs_total",
				Help: "Total number of whole-input simulations by verdict",
			},
			[]string{"verdict"},
		),
		inputLength: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fasim_input_length_symbols",
				Help:    "Length of simulated inputs",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		activeSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fasim_configuration_size_states",
				Help:    "Number of active states after each step",
				Buckets: prometheus.LinearBuckets(0, 1, 10),
			},
		),
	}
	m.registry.MustRegister(m.steps, m.runs, m.inputLength, m.activeSize)
	return m
}

// Registry returns the registry holding the fasim collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that update the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			m.steps.WithLabelValues(strconv.FormatBool(e.Stuck)).Inc()
			m.activeSize.Observe(float64(len(e.To)))
		},
		OnVerdict: func(ctx context.Context, e *domain.VerdictEvent) {
			m.runs.WithLabelValues(string(e.Verdict)).Inc()
			m.inputLength.Observe(float64(e.Length))
		},
	}
}
