package ml

import (
	"fmt"
	"math"
	"sort"

	"github.com/drakos74/free-learn/internal/data"
)

// Cluster is a group of records around their centroid.
type Cluster struct {
	Centroid  []float64
	Members   []*data.Record
	Histogram map[int]int
	Dominant  int
}

// NewCluster creates a new cluster seeded with the given record.
func NewCluster(seed *data.Record) *Cluster {
	features := seed.Features()
	centroid := make([]float64, len(features))
	for i, f := range features {
		if math.IsNaN(f) {
			continue
		}
		centroid[i] = f
	}
	return &Cluster{
		Centroid:  centroid,
		Members:   []*data.Record{seed},
		Histogram: map[int]int{seed.Label: 1},
		Dominant:  seed.Label,
	}
}

// Add adds the record to the cluster.
// The centroid is kept as the running mean of the members.
func (c *Cluster) Add(r *data.Record) error {
	features := r.Features()
	if len(features) != len(c.Centroid) {
		return fmt.Errorf("record of size %d for centroid of size %d: %w", len(features), len(c.Centroid), ConfigErr)
	}
	previous := float64(len(c.Members))
	c.Members = append(c.Members, r)
	size := float64(len(c.Members))
	for i := range c.Centroid {
		c.Centroid[i] = (c.Centroid[i]*previous + features[i]) / size
	}
	c.Histogram[r.Label]++
	c.Dominant = dominant(c.Histogram)
	return nil
}

// Size returns the number of members.
func (c *Cluster) Size() int {
	return len(c.Members)
}

// dominant returns the label with the highest count, the smallest label on ties.
// An empty histogram gives -1.
func dominant(histogram map[int]int) int {
	labels := make([]int, 0, len(histogram))
	for l := range histogram {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	best := -1
	max := 0
	for _, l := range labels {
		if histogram[l] > max {
			max = histogram[l]
			best = l
		}
	}
	return best
}
