package ml

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Metric defines the distance metric between two feature vectors.
type Metric string

const (
	// Euclidean is the square root of the sum of squared differences.
	Euclidean Metric = "euclidean"
	// Manhattan is the sum of absolute differences.
	Manhattan Metric = "manhattan"
)

// Validate checks that the metric is a known one.
func (m Metric) Validate() error {
	switch m {
	case Euclidean, Manhattan:
		return nil
	}
	return fmt.Errorf("unknown metric '%s': %w", m, ConfigErr)
}

// Distance computes the distance between the given vectors.
func (m Metric) Distance(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("feature vectors of size %d and %d: %w", len(a), len(b), ConfigErr)
	}
	switch m {
	case Euclidean:
		return floats.Distance(a, b, 2), nil
	case Manhattan:
		return floats.Distance(a, b, 1), nil
	}
	return 0, m.Validate()
}
