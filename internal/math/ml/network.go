package ml

import (
	"fmt"
	"math/rand"

	"github.com/drakos74/free-learn/internal/data"
	"github.com/drakos74/go-ex-machina/xmath"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
)

// stage tracks where a network is within the forward, backward, update cycle.
type stage int

const (
	idle stage = iota
	forwarded
	backwarded
)

func (s stage) String() string {
	switch s {
	case forwarded:
		return "forwarded"
	case backwarded:
		return "backwarded"
	}
	return "idle"
}

// Network is a fully connected feed forward network of sigmoid neurons trained with backpropagation.
// The topology is fixed at construction, only the weights change.
type Network struct {
	layers     []*Layer
	inputs     int
	rate       float64
	stage      stage
	partitions Partitions
}

// NewNetwork creates a network with the given hidden layer sizes,
// connecting inputs features to an output layer of one neuron per class.
func NewNetwork(hidden []int, inputs, classes int, rate float64, rng *rand.Rand, partitions Partitions) (*Network, error) {
	if inputs <= 0 {
		return nil, fmt.Errorf("input size must be positive but was %d: %w", inputs, ConfigErr)
	}
	if classes <= 0 {
		return nil, fmt.Errorf("class count must be positive but was %d: %w", classes, ConfigErr)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive but was %f: %w", rate, ConfigErr)
	}
	if rng == nil {
		return nil, fmt.Errorf("no random source for network: %w", ConfigErr)
	}
	layers := make([]*Layer, 0, len(hidden)+1)
	previous := inputs
	for i, size := range hidden {
		if size <= 0 {
			return nil, fmt.Errorf("hidden layer %d has size %d: %w", i, size, ConfigErr)
		}
		layers = append(layers, newLayer(previous, size, rng))
		previous = size
	}
	layers = append(layers, newLayer(previous, classes, rng))
	log.Debug().
		Ints("hidden", hidden).
		Int("inputs", inputs).
		Int("classes", classes).
		Float64("rate", rate).
		Msg("constructed network")
	return &Network{
		layers:     layers,
		inputs:     inputs,
		rate:       rate,
		partitions: partitions,
	}, nil
}

// Layers returns the layers of the network, the last one being the output layer.
func (n *Network) Layers() []*Layer {
	return n.layers
}

func (n *Network) output() *Layer {
	return n.layers[len(n.layers)-1]
}

// Forward feeds the features through all layers and returns the outputs of the last one.
func (n *Network) Forward(features []float64) ([]float64, error) {
	if len(features) != n.inputs {
		return nil, fmt.Errorf("%d features for %d inputs: %w", len(features), n.inputs, ConfigErr)
	}
	inputs := xmath.Vec(len(features)).With(features...)
	for _, l := range n.layers {
		inputs = l.forward(inputs)
	}
	n.stage = forwarded
	return inputs, nil
}

// Backward propagates the error against the expected one-hot vector and sets the delta of every neuron.
// It must follow a forward pass.
func (n *Network) Backward(expected []float64) error {
	if n.stage != forwarded {
		return fmt.Errorf("backward pass on %s network: %w", n.stage, StageErr)
	}
	if len(expected) != n.output().Size() {
		return fmt.Errorf("expected vector of size %d for %d outputs: %w", len(expected), n.output().Size(), ConfigErr)
	}
	for i := len(n.layers) - 1; i >= 0; i-- {
		layer := n.layers[i]
		for j, neuron := range layer.Neurons {
			var e float64
			if i == len(n.layers)-1 {
				e = expected[j] - neuron.Output
			} else {
				for _, next := range n.layers[i+1].Neurons {
					e += next.Weights[j] * next.Delta
				}
			}
			neuron.Delta = e * sigmoidDerivative(neuron.Output)
		}
	}
	n.stage = backwarded
	return nil
}

// UpdateWeights applies the deltas of the last backward pass,
// using the inputs every layer saw in the last forward pass.
func (n *Network) UpdateWeights() error {
	if n.stage != backwarded {
		return fmt.Errorf("weight update on %s network: %w", n.stage, StageErr)
	}
	for _, l := range n.layers {
		l.update(n.rate)
	}
	n.stage = idle
	return nil
}

// step runs a full forward, backward, update cycle on the record and returns its squared error.
func (n *Network) step(r *data.Record) (float64, error) {
	outputs, err := n.Forward(r.Features())
	if err != nil {
		return 0, err
	}
	if len(r.ClassVector) != len(outputs) {
		return 0, fmt.Errorf("class vector of size %d for %d outputs: %w", len(r.ClassVector), len(outputs), ConfigErr)
	}
	diff := xmath.Vector(r.ClassVector).Diff(outputs)
	e := diff.Dot(diff)
	if err := n.Backward(r.ClassVector); err != nil {
		return 0, err
	}
	if err := n.UpdateWeights(); err != nil {
		return 0, err
	}
	return e, nil
}

// Train runs the given number of epochs over the train partition.
// It returns the sum of squared errors of every epoch.
func (n *Network) Train(epochs int) ([]float64, error) {
	if epochs <= 0 {
		return nil, fmt.Errorf("epochs must be positive but was %d: %w", epochs, ConfigErr)
	}
	train := n.partitions.Train()
	if len(train) == 0 {
		return nil, fmt.Errorf("no train records for network: %w", EmptyPartitionErr)
	}
	errs := make([]float64, epochs)
	for epoch := 0; epoch < epochs; epoch++ {
		var sum float64
		for i, r := range train {
			e, err := n.step(r)
			if err != nil {
				return errs[:epoch], fmt.Errorf("could not train on record %d at epoch %d: %w", i, epoch, err)
			}
			sum += e
		}
		errs[epoch] = sum
		log.Info().Int("epoch", epoch).Float64("error", sum).Msg("trained epoch")
	}
	return errs, nil
}

// Predict returns the class index of the highest output, the first one on ties.
func (n *Network) Predict(r *data.Record) (int, error) {
	outputs, err := n.Forward(r.Features())
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(outputs), nil
}

func (n *Network) correct(r *data.Record) (bool, error) {
	class, err := n.Predict(r)
	if err != nil {
		return false, err
	}
	if class >= len(r.ClassVector) {
		return false, fmt.Errorf("class vector of size %d for prediction %d: %w", len(r.ClassVector), class, ConfigErr)
	}
	return r.ClassVector[class] == 1, nil
}

// Validate returns the accuracy over the validation partition.
func (n *Network) Validate() (float64, error) {
	return accuracy("validation", n.partitions.Validation(), n.correct)
}

// Test returns the accuracy over the test partition.
func (n *Network) Test() (float64, error) {
	return accuracy("test", n.partitions.Test(), n.correct)
}

// Snapshot holds the weights of a network.
type Snapshot struct {
	Inputs int           `json:"inputs"`
	Rate   float64       `json:"rate"`
	Layers [][][]float64 `json:"layers"`
}

// Snapshot copies the current weights of the network.
func (n *Network) Snapshot() Snapshot {
	layers := make([][][]float64, len(n.layers))
	for i, l := range n.layers {
		neurons := make([][]float64, len(l.Neurons))
		for j, neuron := range l.Neurons {
			neurons[j] = neuron.Weights.Copy()
		}
		layers[i] = neurons
	}
	return Snapshot{
		Inputs: n.inputs,
		Rate:   n.rate,
		Layers: layers,
	}
}

// Restore sets the weights of the network from the snapshot.
// The snapshot must describe the same topology.
func (n *Network) Restore(s Snapshot) error {
	if s.Inputs != n.inputs || len(s.Layers) != len(n.layers) {
		return fmt.Errorf("snapshot of %d inputs and %d layers for network of %d inputs and %d layers: %w",
			s.Inputs, len(s.Layers), n.inputs, len(n.layers), ConfigErr)
	}
	for i, l := range n.layers {
		if len(s.Layers[i]) != len(l.Neurons) {
			return fmt.Errorf("snapshot layer %d has %d neurons instead of %d: %w", i, len(s.Layers[i]), len(l.Neurons), ConfigErr)
		}
		for j, neuron := range l.Neurons {
			if len(s.Layers[i][j]) != len(neuron.Weights) {
				return fmt.Errorf("snapshot neuron %d:%d has %d weights instead of %d: %w", i, j, len(s.Layers[i][j]), len(neuron.Weights), ConfigErr)
			}
		}
	}
	for i, l := range n.layers {
		for j, neuron := range l.Neurons {
			neuron.Weights = xmath.Vec(len(s.Layers[i][j])).With(s.Layers[i][j]...)
		}
	}
	if s.Rate > 0 {
		n.rate = s.Rate
	}
	n.stage = idle
	return nil
}
