package ml

import (
	"fmt"
	"math"
	"sort"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/rs/zerolog/log"
)

// KNN is a k-nearest-neighbour classifier over the train partition.
type KNN struct {
	k          int
	metric     Metric
	partitions Partitions
}

// NewKNN creates a new knn classifier.
func NewKNN(k int, metric Metric, partitions Partitions) (*KNN, error) {
	if err := metric.Validate(); err != nil {
		return nil, err
	}
	knn := &KNN{
		metric:     metric,
		partitions: partitions,
	}
	if err := knn.SetK(k); err != nil {
		return nil, err
	}
	return knn, nil
}

// SetK sets the number of neighbours to look for.
func (knn *KNN) SetK(k int) error {
	if k <= 0 {
		return fmt.Errorf("k must be positive but was %d: %w", k, ConfigErr)
	}
	knn.k = k
	log.Debug().Int("k", k).Msg("set k")
	return nil
}

// K returns the current number of neighbours.
func (knn *KNN) K() int {
	return knn.k
}

// Neighbours finds the nearest train records to the query.
// After the closest record, each next neighbour is the closest one strictly further away than the previous.
// Records at equal distance therefore collapse into one neighbour, and fewer than k neighbours may be returned.
func (knn *KNN) Neighbours(query *data.Record) ([]*data.Record, error) {
	train := knn.partitions.Train()
	if len(train) == 0 {
		return nil, fmt.Errorf("no train records for knn: %w", EmptyPartitionErr)
	}
	for _, r := range train {
		d, err := knn.metric.Distance(query.Features(), r.Features())
		if err != nil {
			return nil, err
		}
		r.Distance = d
	}

	neighbours := make([]*data.Record, 0, knn.k)
	previous := math.Inf(-1)
	for i := 0; i < knn.k; i++ {
		min := math.MaxFloat64
		index := -1
		for j, r := range train {
			if r.Distance > previous && r.Distance < min {
				min = r.Distance
				index = j
			}
		}
		if index < 0 {
			// nothing further away left
			break
		}
		neighbours = append(neighbours, train[index])
		previous = min
	}
	return neighbours, nil
}

// Predict returns the label with the most votes among the neighbours of the query.
// Ties go to the smallest label.
func (knn *KNN) Predict(query *data.Record) (int, error) {
	neighbours, err := knn.Neighbours(query)
	if err != nil {
		return 0, err
	}
	votes := make(map[int]int)
	for _, n := range neighbours {
		votes[n.Label]++
	}
	labels := make([]int, 0, len(votes))
	for l := range votes {
		labels = append(labels, l)
	}
	sort.Ints(labels)
	best := 0
	max := 0
	for _, l := range labels {
		if votes[l] > max {
			max = votes[l]
			best = l
		}
	}
	return best, nil
}

// Classify is an alias of Predict.
func (knn *KNN) Classify(query *data.Record) (int, error) {
	return knn.Predict(query)
}

func (knn *KNN) correct(r *data.Record) (bool, error) {
	label, err := knn.Predict(r)
	if err != nil {
		return false, err
	}
	return label == r.Label, nil
}

// Validate returns the accuracy over the validation partition.
func (knn *KNN) Validate() (float64, error) {
	return accuracy("validation", knn.partitions.Validation(), knn.correct)
}

// Test returns the accuracy over the test partition.
func (knn *KNN) Test() (float64, error) {
	return accuracy("test", knn.partitions.Test(), knn.correct)
}
