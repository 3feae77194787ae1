package ml

import (
	"math"
	"math/rand"
	"testing"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNetwork(t *testing.T) {

	type test struct {
		hidden  []int
		inputs  int
		classes int
		rate    float64
		rng     *rand.Rand
		err     error
	}

	rng := rand.New(rand.NewSource(1))

	tests := map[string]test{
		"valid": {
			hidden:  []int{10},
			inputs:  4,
			classes: 3,
			rate:    0.25,
			rng:     rng,
		},
		"no-hidden": {
			inputs:  4,
			classes: 3,
			rate:    0.25,
			rng:     rng,
		},
		"zero-inputs": {
			hidden:  []int{10},
			classes: 3,
			rate:    0.25,
			rng:     rng,
			err:     ConfigErr,
		},
		"zero-classes": {
			hidden: []int{10},
			inputs: 4,
			rate:   0.25,
			rng:    rng,
			err:    ConfigErr,
		},
		"zero-hidden-layer": {
			hidden:  []int{10, 0},
			inputs:  4,
			classes: 3,
			rate:    0.25,
			rng:     rng,
			err:     ConfigErr,
		},
		"negative-rate": {
			hidden:  []int{10},
			inputs:  4,
			classes: 3,
			rate:    -0.25,
			rng:     rng,
			err:     ConfigErr,
		},
		"no-random-source": {
			hidden:  []int{10},
			inputs:  4,
			classes: 3,
			rate:    0.25,
			err:     ConfigErr,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			net, err := NewNetwork(tt.hidden, tt.inputs, tt.classes, tt.rate, tt.rng, partitions{})
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			layers := net.Layers()
			assert.Equal(t, len(tt.hidden)+1, len(layers))
			previous := tt.inputs
			for i, l := range layers {
				assert.Equal(t, previous, l.Inputs())
				for _, n := range l.Neurons {
					for _, w := range n.Weights {
						assert.True(t, w >= -1 && w <= 1)
					}
				}
				if i < len(tt.hidden) {
					assert.Equal(t, tt.hidden[i], l.Size())
				}
				previous = l.Size()
			}
			assert.Equal(t, tt.classes, layers[len(layers)-1].Size())
		})
	}
}

func TestNetwork_Forward(t *testing.T) {
	newNet := func() *Network {
		net, err := NewNetwork([]int{5, 3}, 4, 2, 0.25, rand.New(rand.NewSource(42)), partitions{})
		require.NoError(t, err)
		return net
	}
	features := []float64{0.1, 0.4, 0.9, 0.3}

	first, err := newNet().Forward(features)
	require.NoError(t, err)
	second, err := newNet().Forward(features)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	net := newNet()
	again, err := net.Forward(features)
	require.NoError(t, err)
	again2, err := net.Forward(features)
	require.NoError(t, err)
	assert.Equal(t, again, again2)

	for _, o := range first {
		assert.True(t, o > 0 && o < 1)
	}

	_, err = net.Forward([]float64{1, 2})
	assert.ErrorIs(t, err, ConfigErr)
}

func TestNetwork_Step(t *testing.T) {
	net, err := NewNetwork(nil, 1, 1, 0.25, rand.New(rand.NewSource(1)), partitions{})
	require.NoError(t, err)
	require.NoError(t, net.Restore(Snapshot{
		Inputs: 1,
		Rate:   0.25,
		Layers: [][][]float64{{{0.5, 0.1}}},
	}))

	out, err := net.Forward([]float64{1})
	require.NoError(t, err)
	o := 1 / (1 + math.Exp(-0.6))
	assert.InDelta(t, o, out[0], 1e-12)

	require.NoError(t, net.Backward([]float64{1}))
	delta := (1 - o) * o * (1 - o)
	assert.InDelta(t, delta, net.Layers()[0].Neurons[0].Delta, 1e-12)

	require.NoError(t, net.UpdateWeights())
	weights := net.Snapshot().Layers[0][0]
	assert.InDelta(t, 0.5+0.25*delta, weights[0], 1e-12)
	assert.InDelta(t, 0.1+0.25*delta, weights[1], 1e-12)
}

func TestNetwork_HiddenDelta(t *testing.T) {
	net, err := NewNetwork([]int{1}, 1, 1, 0.5, rand.New(rand.NewSource(1)), partitions{})
	require.NoError(t, err)
	require.NoError(t, net.Restore(Snapshot{
		Inputs: 1,
		Layers: [][][]float64{{{0.3, -0.2}}, {{0.8, 0.4}}},
	}))

	_, err = net.Forward([]float64{2})
	require.NoError(t, err)
	require.NoError(t, net.Backward([]float64{0}))

	h := 1 / (1 + math.Exp(-(0.3*2 - 0.2)))
	o := 1 / (1 + math.Exp(-(0.8*h + 0.4)))
	outDelta := (0 - o) * o * (1 - o)
	hiddenDelta := 0.8 * outDelta * h * (1 - h)

	assert.InDelta(t, outDelta, net.Layers()[1].Neurons[0].Delta, 1e-12)
	assert.InDelta(t, hiddenDelta, net.Layers()[0].Neurons[0].Delta, 1e-12)

	require.NoError(t, net.UpdateWeights())
	s := net.Snapshot()
	assert.InDelta(t, 0.3+0.5*hiddenDelta*2, s.Layers[0][0][0], 1e-12)
	assert.InDelta(t, 0.8+0.5*outDelta*h, s.Layers[1][0][0], 1e-12)
}

func TestNetwork_Stage(t *testing.T) {
	net, err := NewNetwork([]int{2}, 2, 2, 0.25, rand.New(rand.NewSource(1)), partitions{})
	require.NoError(t, err)

	assert.ErrorIs(t, net.Backward([]float64{1, 0}), StageErr)
	assert.ErrorIs(t, net.UpdateWeights(), StageErr)

	_, err = net.Forward([]float64{0.5, 0.5})
	require.NoError(t, err)
	assert.ErrorIs(t, net.UpdateWeights(), StageErr)
	assert.ErrorIs(t, net.Backward([]float64{1}), ConfigErr)
	require.NoError(t, net.Backward([]float64{1, 0}))
	assert.ErrorIs(t, net.Backward([]float64{1, 0}), StageErr)
	require.NoError(t, net.UpdateWeights())
	assert.ErrorIs(t, net.UpdateWeights(), StageErr)
}

func TestNetwork_Snapshot(t *testing.T) {
	source, err := NewNetwork([]int{3}, 2, 2, 0.25, rand.New(rand.NewSource(1)), partitions{})
	require.NoError(t, err)
	target, err := NewNetwork([]int{3}, 2, 2, 0.25, rand.New(rand.NewSource(2)), partitions{})
	require.NoError(t, err)

	features := []float64{0.2, 0.7}
	expected, err := source.Forward(features)
	require.NoError(t, err)
	before, err := target.Forward(features)
	require.NoError(t, err)
	assert.NotEqual(t, expected, before)

	s := source.Snapshot()
	require.NoError(t, target.Restore(s))
	actual, err := target.Forward(features)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	// the snapshot is a copy
	s.Layers[0][0][0] = 100
	actual, err = source.Forward(features)
	require.NoError(t, err)
	assert.Equal(t, expected, actual)

	other, err := NewNetwork([]int{4}, 2, 2, 0.25, rand.New(rand.NewSource(2)), partitions{})
	require.NoError(t, err)
	assert.ErrorIs(t, other.Restore(source.Snapshot()), ConfigErr)
}

func TestNetwork_Train(t *testing.T) {
	net, err := NewNetwork([]int{3}, 2, 2, 0.25, rand.New(rand.NewSource(1)), partitions{})
	require.NoError(t, err)
	_, err = net.Train(1)
	assert.ErrorIs(t, err, EmptyPartitionErr)
	_, err = net.Train(0)
	assert.ErrorIs(t, err, ConfigErr)

	ds := blobs(t, 100, 5)
	net, err = NewNetwork([]int{3}, ds.Dim(), ds.ClassCount(), 0.25, rand.New(rand.NewSource(5)), ds)
	require.NoError(t, err)
	errs, err := net.Train(50)
	require.NoError(t, err)
	assert.Equal(t, 50, len(errs))
	assert.Less(t, errs[len(errs)-1], errs[0])

	acc, err := net.Test()
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 90.0)
}

// TestNetwork_SmallDataset trains a single epoch on a dataset of twenty records.
func TestNetwork_SmallDataset(t *testing.T) {
	rng := rand.New(rand.NewSource(20))
	ds := data.New()
	for i := 0; i < 20; i++ {
		label := i % 2
		require.NoError(t, ds.Load(data.NewRecord(label,
			float64(label)+rng.Float64(),
			rng.Float64(),
			float64(i),
			float64(label*3)+rng.Float64(),
		)))
	}
	require.NoError(t, ds.Normalize())
	require.NoError(t, ds.Split(rng, data.Fractions{Train: 0.75, Validation: 0.05, Test: 0.20}))
	assert.Equal(t, 15, len(ds.Train()))
	assert.Equal(t, 1, len(ds.Validation()))
	assert.Equal(t, 4, len(ds.Test()))

	net, err := NewNetwork([]int{3}, 4, 2, 0.25, rng, ds)
	require.NoError(t, err)
	errs, err := net.Train(1)
	require.NoError(t, err)
	assert.Equal(t, 1, len(errs))

	acc, err := net.Test()
	assert.NoError(t, err)
	assert.True(t, acc >= 0 && acc <= 100)

	acc, err = net.Validate()
	assert.NoError(t, err)
	assert.True(t, acc == 0 || acc == 100)
}
