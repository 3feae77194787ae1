package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics records the outcome of model runs on its own registry.
type Metrics struct {
	registry   *prometheus.Registry
	prometheus Prometheus
}

// New creates and registers the collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	p := NewPrometheusMetrics()
	registry.MustRegister(p.Accuracy, p.EpochError, p.Runs)
	return &Metrics{
		registry:   registry,
		prometheus: p,
	}
}

// Accuracy sets the accuracy of the model on the given partition.
func (m *Metrics) Accuracy(model, partition string, value float64) {
	m.prometheus.Accuracy.WithLabelValues(model, partition).Set(value)
}

// Epochs sets the error of the last epoch of the model.
func (m *Metrics) Epochs(model string, errs []float64) {
	if len(errs) == 0 {
		return
	}
	m.prometheus.EpochError.WithLabelValues(model).Set(errs[len(errs)-1])
}

// Increment counts a completed run of the model.
func (m *Metrics) Increment(model string) {
	m.prometheus.Runs.WithLabelValues(model).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes the handler under /metrics on the given address in the background.
func (m *Metrics) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("could not serve metrics")
		}
	}()
	log.Info().Str("addr", addr).Msg("serving metrics")
	return srv
}
