package ml

import (
	"math/rand"
	"testing"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type partitions struct {
	train      []*data.Record
	validation []*data.Record
	test       []*data.Record
}

func (p partitions) Train() []*data.Record {
	return p.train
}

func (p partitions) Validation() []*data.Record {
	return p.validation
}

func (p partitions) Test() []*data.Record {
	return p.test
}

// blobs creates a normalised and split dataset of two well separated groups in two dimensions.
func blobs(t *testing.T, n int, seed int64) *data.Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds := data.New()
	for i := 0; i < n; i++ {
		label := i % 2
		center := float64(label) * 10
		require.NoError(t, ds.Load(data.NewRecord(label, center+rng.Float64(), center+rng.Float64())))
	}
	require.NoError(t, ds.Normalize())
	require.NoError(t, ds.Split(rng, data.DefaultFractions()))
	return ds
}

func TestAccuracy(t *testing.T) {

	records := []*data.Record{
		data.NewRecord(1, 0),
		data.NewRecord(2, 0),
		data.NewRecord(1, 0),
		data.NewRecord(1, 0),
	}

	acc, err := accuracy("test", records, func(r *data.Record) (bool, error) {
		return r.Label == 1, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 75.0, acc)

	acc, err = accuracy("test", nil, func(r *data.Record) (bool, error) {
		return true, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 0.0, acc)

	_, err = accuracy("test", records, func(r *data.Record) (bool, error) {
		return false, StageErr
	})
	assert.ErrorIs(t, err, StageErr)
}

func TestSearchK(t *testing.T) {

	type test struct {
		from  int
		to    int
		score map[int]float64
		k     int
		best  float64
		err   error
	}

	tests := map[string]test{
		"first-max": {
			from:  1,
			to:    4,
			score: map[int]float64{1: 50, 2: 80, 3: 80, 4: 10},
			k:     2,
			best:  80,
		},
		"all-zero": {
			from:  2,
			to:    5,
			score: map[int]float64{},
			k:     2,
			best:  0,
		},
		"single": {
			from:  3,
			to:    3,
			score: map[int]float64{3: 42},
			k:     3,
			best:  42,
		},
		"zero-from": {
			from: 0,
			to:   3,
			err:  ConfigErr,
		},
		"inverted": {
			from: 5,
			to:   3,
			err:  ConfigErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			k, best, err := SearchK(tt.from, tt.to, func(k int) (float64, error) {
				return tt.score[k], nil
			})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.k, k)
			assert.Equal(t, tt.best, best)
		})
	}
}

func TestSearchK_Error(t *testing.T) {
	_, _, err := SearchK(1, 3, func(k int) (float64, error) {
		if k == 2 {
			return 0, EmptyPartitionErr
		}
		return 1, nil
	})
	assert.ErrorIs(t, err, EmptyPartitionErr)
}

func TestMetric_Distance(t *testing.T) {

	type test struct {
		metric Metric
		a      []float64
		b      []float64
		d      float64
		err    error
	}

	tests := map[string]test{
		"euclidean": {
			metric: Euclidean,
			a:      []float64{0, 0},
			b:      []float64{3, 4},
			d:      5,
		},
		"manhattan": {
			metric: Manhattan,
			a:      []float64{0, 0},
			b:      []float64{3, -4},
			d:      7,
		},
		"same": {
			metric: Euclidean,
			a:      []float64{1, 2, 3},
			b:      []float64{1, 2, 3},
			d:      0,
		},
		"mismatch": {
			metric: Euclidean,
			a:      []float64{1, 2},
			b:      []float64{1, 2, 3},
			err:    ConfigErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d, err := tt.metric.Distance(tt.a, tt.b)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.d, d, 1e-12)
		})
	}

	assert.ErrorIs(t, Metric("cosine").Validate(), ConfigErr)
}
