package buffer

import (
	"fmt"
	"math"
)

// Stats is a set of statistical properties of a stream of numbers.
type Stats struct {
	count          int
	sum            float64
	first, last    float64
	min, max       float64
	mean, dSquared float64
}

// NewStats creates a new Stats.
func NewStats() *Stats {
	return &Stats{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Push adds another element to the set.
func (s *Stats) Push(v float64) {
	s.count++
	s.sum += v
	diff := (v - s.mean) / float64(s.count)
	mean := s.mean + diff
	squaredDiff := (v - mean) * (v - s.mean)
	s.dSquared += squaredDiff
	s.mean = mean

	if s.count == 1 {
		s.first = v
	}

	if s.min > v {
		s.min = v
	}

	if s.max < v {
		s.max = v
	}

	s.last = v
}

// Avg returns the average value of the set.
func (s Stats) Avg() float64 {
	return s.mean
}

// Sum returns the sum of all the elements.
func (s Stats) Sum() float64 {
	return s.sum
}

// Count returns the number of elements.
func (s Stats) Count() int {
	return s.count
}

// Min returns the smallest element seen so far.
// NOTE : for an empty set this is math.MaxFloat64
func (s Stats) Min() float64 {
	return s.min
}

// Max returns the largest element seen so far.
// NOTE : for an empty set this is -math.MaxFloat64
func (s Stats) Max() float64 {
	return s.max
}

// Range returns the difference of max and min.
func (s Stats) Range() float64 {
	if s.count == 0 {
		return 0
	}
	return s.max - s.min
}

// Diff returns the difference of the last and the first element.
func (s Stats) Diff() float64 {
	return s.last - s.first
}

// Variance is the mathematical variance of the set.
func (s Stats) Variance() float64 {
	if s.count == 0 {
		return 0
	}
	return s.dSquared / float64(s.count)
}

// StDev is the standard deviation of the set.
func (s Stats) StDev() float64 {
	return math.Sqrt(s.Variance())
}

// Scale maps v onto [0,1] relative to the min and max of the set.
// A set without spread maps everything to 0.
func (s Stats) Scale(v float64) float64 {
	r := s.Range()
	if r == 0 {
		return 0
	}
	return (v - s.min) / r
}

// StatsCollector is a collection of Stats variables.
// This enables multi-dimensional tracking e.g. one Stats per feature.
type StatsCollector struct {
	dim   int
	stats []*Stats
}

// NewStatsCollector creates a new Stats collector.
func NewStatsCollector(dim int) *StatsCollector {
	stats := make([]*Stats, dim)
	for i := 0; i < dim; i++ {
		stats[i] = NewStats()
	}
	return &StatsCollector{
		dim:   dim,
		stats: stats,
	}
}

// Push pushes each value to the corresponding dimension.
func (sc *StatsCollector) Push(v ...float64) error {
	if len(v) != sc.dim {
		return fmt.Errorf("inconsistent dimensions %d vs %d", len(v), sc.dim)
	}
	for i := 0; i < len(sc.stats); i++ {
		sc.stats[i].Push(v[i])
	}
	return nil
}

// Stats returns the stats for every dimension.
func (sc StatsCollector) Stats() []*Stats {
	return sc.stats
}

// Dim returns the number of tracked dimensions.
func (sc StatsCollector) Dim() int {
	return sc.dim
}

// Size returns the number of pushed elements.
func (sc *StatsCollector) Size() int {
	if sc.dim == 0 {
		return 0
	}
	// we expect all dimensions to have the same size
	return sc.stats[0].count
}

// Scale scales each value against the range of the corresponding dimension.
func (sc *StatsCollector) Scale(v ...float64) ([]float64, error) {
	if len(v) != sc.dim {
		return nil, fmt.Errorf("inconsistent dimensions %d vs %d", len(v), sc.dim)
	}
	scaled := make([]float64, sc.dim)
	for i, s := range sc.stats {
		scaled[i] = s.Scale(v[i])
	}
	return scaled, nil
}
