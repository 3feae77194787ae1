package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/rs/zerolog/log"
)

// KMeans is a centroid based clustering model.
// Clusters grow incrementally, every train record joins the closest cluster exactly once.
type KMeans struct {
	k          int
	rng        *rand.Rand
	partitions Partitions
	clusters   []*Cluster
	used       map[int]struct{}
}

// NewKMeans creates a new k-means model.
func NewKMeans(k int, rng *rand.Rand, partitions Partitions) (*KMeans, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive but was %d: %w", k, ConfigErr)
	}
	if rng == nil {
		return nil, fmt.Errorf("no random source for k-means: %w", ConfigErr)
	}
	return &KMeans{
		k:          k,
		rng:        rng,
		partitions: partitions,
		clusters:   make([]*Cluster, 0, k),
		used:       make(map[int]struct{}),
	}, nil
}

// K returns the number of clusters requested at construction.
func (km *KMeans) K() int {
	return km.k
}

// InitClusters seeds k clusters with distinct random train records.
func (km *KMeans) InitClusters() error {
	train := km.partitions.Train()
	if km.k > len(train) {
		return fmt.Errorf("k = %d is larger than the %d train records: %w", km.k, len(train), ConfigErr)
	}
	for len(km.clusters) < km.k {
		idx := km.rng.Intn(len(train))
		if _, ok := km.used[idx]; ok {
			continue
		}
		km.clusters = append(km.clusters, NewCluster(train[idx]))
		km.used[idx] = struct{}{}
	}
	log.Debug().Int("clusters", len(km.clusters)).Msg("initialised clusters")
	return nil
}

// InitClustersPerClass seeds one cluster for every distinct label in the train partition,
// with the first train record of that label.
func (km *KMeans) InitClustersPerClass() error {
	train := km.partitions.Train()
	if len(train) == 0 {
		return fmt.Errorf("no train records for k-means: %w", EmptyPartitionErr)
	}
	labels := make(map[int]struct{})
	for i, r := range train {
		if _, ok := labels[r.Label]; ok {
			continue
		}
		km.clusters = append(km.clusters, NewCluster(r))
		labels[r.Label] = struct{}{}
		km.used[i] = struct{}{}
	}
	if len(km.clusters) != km.k {
		log.Warn().Int("k", km.k).Int("clusters", len(km.clusters)).Msg("cluster count follows the train labels")
	}
	log.Debug().Int("clusters", len(km.clusters)).Msg("initialised clusters per class")
	return nil
}

// Train assigns every train record that did not seed a cluster to its closest cluster,
// in random order.
func (km *KMeans) Train() error {
	if len(km.clusters) == 0 {
		return fmt.Errorf("clusters are not initialised: %w", StageErr)
	}
	train := km.partitions.Train()
	for _, idx := range km.rng.Perm(len(train)) {
		if _, ok := km.used[idx]; ok {
			continue
		}
		c, _, err := km.closest(train[idx])
		if err != nil {
			return err
		}
		if err := c.Add(train[idx]); err != nil {
			return err
		}
		km.used[idx] = struct{}{}
	}
	log.Info().Int("clusters", len(km.clusters)).Int("records", len(km.used)).Msg("trained k-means")
	return nil
}

func (km *KMeans) closest(r *data.Record) (*Cluster, float64, error) {
	if len(km.clusters) == 0 {
		return nil, 0, fmt.Errorf("no clusters: %w", StageErr)
	}
	min := math.MaxFloat64
	best := 0
	for i, c := range km.clusters {
		d, err := Euclidean.Distance(c.Centroid, r.Features())
		if err != nil {
			return nil, 0, err
		}
		if d < min {
			min = d
			best = i
		}
	}
	return km.clusters[best], min, nil
}

// Predict returns the dominant label of the closest cluster.
func (km *KMeans) Predict(r *data.Record) (int, error) {
	c, _, err := km.closest(r)
	if err != nil {
		return 0, err
	}
	return c.Dominant, nil
}

func (km *KMeans) correct(r *data.Record) (bool, error) {
	label, err := km.Predict(r)
	if err != nil {
		return false, err
	}
	return label == r.Label, nil
}

// Validate returns the accuracy over the validation partition.
func (km *KMeans) Validate() (float64, error) {
	return accuracy("validation", km.partitions.Validation(), km.correct)
}

// Test returns the accuracy over the test partition.
func (km *KMeans) Test() (float64, error) {
	return accuracy("test", km.partitions.Test(), km.correct)
}

// Clusters returns the current clusters.
func (km *KMeans) Clusters() []*Cluster {
	return km.clusters
}
