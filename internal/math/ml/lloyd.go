package ml

import (
	"fmt"

	"github.com/cdipaolo/goml/cluster"
	"github.com/drakos74/free-learn/internal/data"
	"github.com/rs/zerolog/log"
)

// Lloyd is a batch k-means baseline.
// Clusters are labelled with the most frequent label of their train members.
type Lloyd struct {
	k          int
	iterations int
	partitions Partitions
	model      *cluster.KMeans
	labels     map[int]int
}

// NewLloyd creates a batch k-means baseline.
func NewLloyd(k, iterations int, partitions Partitions) (*Lloyd, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive but was %d: %w", k, ConfigErr)
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be positive but was %d: %w", iterations, ConfigErr)
	}
	return &Lloyd{
		k:          k,
		iterations: iterations,
		partitions: partitions,
	}, nil
}

// Train runs the batch algorithm over the train partition and labels the resulting clusters.
func (l *Lloyd) Train() error {
	train := l.partitions.Train()
	if len(train) < l.k {
		return fmt.Errorf("k = %d for %d train records: %w", l.k, len(train), EmptyPartitionErr)
	}
	xData := make([][]float64, len(train))
	for i, r := range train {
		xData[i] = r.Features()
	}
	model := cluster.NewKMeans(l.k, l.iterations, xData)
	if err := model.Learn(); err != nil {
		return fmt.Errorf("could not train k-means: %w", err)
	}
	guesses := model.Guesses()
	histograms := make(map[int]map[int]int)
	for i, g := range guesses {
		if _, ok := histograms[g]; !ok {
			histograms[g] = make(map[int]int)
		}
		histograms[g][train[i].Label]++
	}
	labels := make(map[int]int, len(histograms))
	for g, hist := range histograms {
		labels[g] = dominant(hist)
	}
	l.model = model
	l.labels = labels
	log.Info().Int("k", l.k).Int("clusters", len(labels)).Msg("trained lloyd k-means")
	return nil
}

// Predict returns the label of the cluster the record falls into, -1 for a cluster without members.
func (l *Lloyd) Predict(r *data.Record) (int, error) {
	if l.model == nil {
		return 0, fmt.Errorf("k-means is not trained: %w", StageErr)
	}
	guess, err := l.model.Predict(r.Features())
	if err != nil {
		return 0, fmt.Errorf("could not predict cluster: %w", err)
	}
	if len(guess) == 0 {
		return -1, nil
	}
	label, ok := l.labels[int(guess[0])]
	if !ok {
		return -1, nil
	}
	return label, nil
}

func (l *Lloyd) correct(r *data.Record) (bool, error) {
	label, err := l.Predict(r)
	if err != nil {
		return false, err
	}
	return label == r.Label, nil
}

// Validate returns the accuracy over the validation partition.
func (l *Lloyd) Validate() (float64, error) {
	return accuracy("validation", l.partitions.Validation(), l.correct)
}

// Test returns the accuracy over the test partition.
func (l *Lloyd) Test() (float64, error) {
	return accuracy("test", l.partitions.Test(), l.correct)
}
