// Package metrics exposes Prometheus counters for the credential flows.
package metrics

import (
	"net/http"

	"authcore/config"
	"authcore/internal/domain/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Outcome labels recorded by AuthMetrics.
const (
	OutcomeSuccess = "success"
)

// NewRegistry returns a registry carrying the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

type noopMetrics struct{}

func (noopMetrics) ObserveOutcome(string, string) {}

// Params holds dependencies for AuthMetrics, injected by Fx
type Params struct {
	fx.In

	Config   *config.Config
	Registry *prometheus.Registry
}

// NewAuthMetrics returns Prometheus-backed AuthMetrics, or a no-op when metrics are disabled.
func NewAuthMetrics(params Params) (service.AuthMetrics, error) {
	if params.Config.Metrics == nil || !params.Config.Metrics.Enabled {
		return noopMetrics{}, nil
	}

	return NewPrometheusAuthMetrics(params.Registry)
}

// PrometheusAuthMetrics counts credential operations by operation and outcome.
type PrometheusAuthMetrics struct {
	attempts *prometheus.CounterVec
}

// NewPrometheusAuthMetrics registers the attempt counter on reg, reusing an existing one.
func NewPrometheusAuthMetrics(reg prometheus.Registerer) (*PrometheusAuthMetrics, error) {
	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "authcore",
			Name:      "auth_attempts_total",
			Help:      "Credential operations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	if err := reg.Register(attempts); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		attempts = existing
	}

	return &PrometheusAuthMetrics{attempts: attempts}, nil
}

// ObserveOutcome increments the counter for operation and outcome.
func (m *PrometheusAuthMetrics) ObserveOutcome(operation, outcome string) {
	m.attempts.WithLabelValues(operation, outcome).Inc()
}
