package ml

import (
	"testing"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKNN(t *testing.T) {
	_, err := NewKNN(0, Euclidean, partitions{})
	assert.ErrorIs(t, err, ConfigErr)

	_, err = NewKNN(3, Metric("unknown"), partitions{})
	assert.ErrorIs(t, err, ConfigErr)

	knn, err := NewKNN(3, Manhattan, partitions{})
	assert.NoError(t, err)
	assert.Equal(t, 3, knn.K())

	assert.ErrorIs(t, knn.SetK(-1), ConfigErr)
	assert.Equal(t, 3, knn.K())
	assert.NoError(t, knn.SetK(5))
	assert.Equal(t, 5, knn.K())
}

func TestKNN_Neighbours(t *testing.T) {

	type test struct {
		train     []*data.Record
		k         int
		distances []float64
	}

	tests := map[string]test{
		"equidistant-collapse": {
			train: []*data.Record{
				data.NewRecord(0, 1, 0),
				data.NewRecord(1, 0, 1),
				data.NewRecord(2, -1, 0),
			},
			k:         2,
			distances: []float64{1},
		},
		"next-distinct": {
			train: []*data.Record{
				data.NewRecord(0, 1, 0),
				data.NewRecord(1, 0, 1),
				data.NewRecord(2, 2, 0),
			},
			k:         2,
			distances: []float64{1, 2},
		},
		"fewer-records": {
			train: []*data.Record{
				data.NewRecord(0, 3, 0),
				data.NewRecord(1, 0, 4),
			},
			k:         5,
			distances: []float64{3, 4},
		},
		"ordered": {
			train: []*data.Record{
				data.NewRecord(0, 5, 0),
				data.NewRecord(1, 1, 0),
				data.NewRecord(2, 3, 0),
				data.NewRecord(3, 2, 0),
			},
			k:         3,
			distances: []float64{1, 2, 3},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			knn, err := NewKNN(tt.k, Euclidean, partitions{train: tt.train})
			require.NoError(t, err)
			neighbours, err := knn.Neighbours(data.NewRecord(0, 0, 0))
			require.NoError(t, err)
			assert.Equal(t, len(tt.distances), len(neighbours))
			for i, n := range neighbours {
				assert.Equal(t, tt.distances[i], n.Distance)
			}
		})
	}
}

func TestKNN_Predict(t *testing.T) {

	type test struct {
		train []*data.Record
		k     int
		label int
	}

	tests := map[string]test{
		"majority": {
			train: []*data.Record{
				data.NewRecord(4, 1),
				data.NewRecord(2, 2),
				data.NewRecord(4, 3),
			},
			k:     3,
			label: 4,
		},
		"tie-smallest-label": {
			train: []*data.Record{
				data.NewRecord(3, 1),
				data.NewRecord(1, 2),
			},
			k:     2,
			label: 1,
		},
		"nearest": {
			train: []*data.Record{
				data.NewRecord(3, 10),
				data.NewRecord(1, 2),
			},
			k:     1,
			label: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			knn, err := NewKNN(tt.k, Euclidean, partitions{train: tt.train})
			require.NoError(t, err)
			label, err := knn.Predict(data.NewRecord(0, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)
			label, err = knn.Classify(data.NewRecord(0, 0))
			require.NoError(t, err)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestKNN_Errors(t *testing.T) {
	knn, err := NewKNN(1, Euclidean, partitions{})
	require.NoError(t, err)
	_, err = knn.Predict(data.NewRecord(0, 1))
	assert.ErrorIs(t, err, EmptyPartitionErr)

	knn, err = NewKNN(1, Euclidean, partitions{
		train: []*data.Record{data.NewRecord(0, 1, 2)},
		test:  []*data.Record{data.NewRecord(0, 1)},
	})
	require.NoError(t, err)
	_, err = knn.Test()
	assert.ErrorIs(t, err, ConfigErr)
}

func TestKNN_Blobs(t *testing.T) {
	ds := blobs(t, 100, 7)
	knn, err := NewKNN(3, Euclidean, ds)
	require.NoError(t, err)

	acc, err := knn.Test()
	assert.NoError(t, err)
	assert.Equal(t, 100.0, acc)

	acc, err = knn.Validate()
	assert.NoError(t, err)
	assert.Equal(t, 100.0, acc)

	k, best, err := SearchK(1, 5, func(k int) (float64, error) {
		if err := knn.SetK(k); err != nil {
			return 0, err
		}
		return knn.Validate()
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, k)
	assert.Equal(t, 100.0, best)
}
