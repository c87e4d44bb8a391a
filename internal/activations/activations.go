// Package activations provides the element-wise and row-wise activation
// functions used by the spiral classifier.
package activations

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64
}

// Sigmoid activation function.
type Sigmoid struct{}

// sigmoid computes the sigmoid function
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Activate computes sigmoid(x)
func (s Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (s Sigmoid) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 - sigma)
}

// Apply stores act(a) element-wise into a new matrix.
func Apply(act Activation, a mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return act.Activate(v)
	}, a)
	return &out
}

// ApplyDerivative stores act'(a) element-wise into a new matrix.
func ApplyDerivative(act Activation, a mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return act.Derivative(v)
	}, a)
	return &out
}

// Softmax is the row-wise output activation.
//
// The zero value exponentiates the raw scores, so very large scores
// overflow to +Inf and the row turns into NaN. Stable subtracts the row
// maximum first, which gives the same probabilities without the overflow.
type Softmax struct {
	Stable bool
}

// ActivateBatch computes softmax for a slice of values in place.
func (s Softmax) ActivateBatch(x []float64) []float64 {
	shift := 0.0
	if s.Stable {
		shift = floats.Max(x)
	}

	sum := 0.0
	for i := range x {
		x[i] = math.Exp(x[i] - shift)
		sum += x[i]
	}

	floats.Scale(1/sum, x)
	return x
}

// ActivateRows returns a new matrix where every row of z has been
// normalized into a probability distribution.
func (s Softmax) ActivateRows(z mat.Matrix) *mat.Dense {
	out := mat.DenseCopyOf(z)
	rows, _ := out.Dims()
	for i := 0; i < rows; i++ {
		s.ActivateBatch(out.RawRowView(i))
	}
	return out
}
