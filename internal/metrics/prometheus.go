package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "free_learn"

// Prometheus holds the collectors of a benchmark run.
type Prometheus struct {
	Accuracy   *prometheus.GaugeVec
	EpochError *prometheus.GaugeVec
	Runs       *prometheus.CounterVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Accuracy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "accuracy",
				Help:      "Accuracy of the model on a partition as a percentage.",
			}, []string{"model", "partition"}),
		EpochError: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "epoch_error",
				Help:      "Sum of squared errors of the last training epoch.",
			}, []string{"model"}),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Number of completed model runs.",
			}, []string{"model"}),
	}
}
