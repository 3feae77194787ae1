package ml

import (
	"math"
	"math/rand"

	"github.com/drakos74/go-ex-machina/xmath"
)

// Neuron is a sigmoid unit, the last weight is the bias.
type Neuron struct {
	Weights xmath.Vector
	Output  float64
	Delta   float64
}

// newNeuron creates a neuron with inputs+1 weights drawn uniformly from [-1,1].
func newNeuron(inputs int, rng *rand.Rand) *Neuron {
	weights := xmath.Vec(inputs + 1)
	for i := range weights {
		weights[i] = rng.Float64()*2 - 1
	}
	return &Neuron{Weights: weights}
}

// activate returns bias + w * x for the given inputs.
func (n *Neuron) activate(inputs xmath.Vector) float64 {
	last := len(n.Weights) - 1
	return n.Weights[last] + n.Weights[:last].Dot(inputs)
}

// fire activates the neuron and keeps its output.
func (n *Neuron) fire(inputs xmath.Vector) float64 {
	n.Output = sigmoid(n.activate(inputs))
	return n.Output
}

// learn moves the weights along the delta of the neuron.
func (n *Neuron) learn(inputs xmath.Vector, rate float64) {
	last := len(n.Weights) - 1
	for i, x := range inputs {
		n.Weights[i] += rate * n.Delta * x
	}
	n.Weights[last] += rate * n.Delta
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// sigmoidDerivative is expressed on the output of the sigmoid.
func sigmoidDerivative(output float64) float64 {
	return output * (1 - output)
}

// Layer is a fully connected layer of neurons sharing the same inputs.
type Layer struct {
	Neurons []*Neuron
	// inputs keeps the vector of the last forward pass for the weight update.
	inputs xmath.Vector
}

func newLayer(inputs, size int, rng *rand.Rand) *Layer {
	neurons := make([]*Neuron, size)
	for i := range neurons {
		neurons[i] = newNeuron(inputs, rng)
	}
	return &Layer{Neurons: neurons}
}

// Size returns the number of neurons.
func (l *Layer) Size() int {
	return len(l.Neurons)
}

// Inputs returns the number of inputs every neuron expects.
func (l *Layer) Inputs() int {
	if len(l.Neurons) == 0 {
		return 0
	}
	return len(l.Neurons[0].Weights) - 1
}

func (l *Layer) forward(inputs xmath.Vector) xmath.Vector {
	l.inputs = inputs
	outputs := xmath.Vec(len(l.Neurons))
	for i, n := range l.Neurons {
		outputs[i] = n.fire(inputs)
	}
	return outputs
}

func (l *Layer) update(rate float64) {
	for _, n := range l.Neurons {
		n.learn(l.inputs, rate)
	}
}
