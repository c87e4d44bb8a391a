// Package opt provides the parameter update rule.
package opt

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultLearningRate is the fixed step size of the reference run.
const DefaultLearningRate = 1.0

// Optimizer updates network parameters based on gradients.
type Optimizer interface {
	// StepInPlace updates params in-place: params = params - lr * gradients
	StepInPlace(params, gradients []float64)
}

// SGD is plain gradient descent with a fixed learning rate.
type SGD struct {
	LearningRate float64
}

// StepInPlace updates params in-place: params = params - lr * gradients
func (s SGD) StepInPlace(params, gradients []float64) {
	floats.AddScaled(params, -s.LearningRate, gradients)
}

// StepMatrices applies o to each parameter matrix and its gradient in
// order, updating the parameters in place. Shapes must match pairwise.
func StepMatrices(o Optimizer, params, gradients []*mat.Dense) error {
	if len(params) != len(gradients) {
		return fmt.Errorf("opt: %d parameters but %d gradients", len(params), len(gradients))
	}
	for i, p := range params {
		pr, pc := p.Dims()
		gr, gc := gradients[i].Dims()
		if pr != gr || pc != gc {
			return fmt.Errorf("opt: parameter %d is %dx%d but gradient is %dx%d", i, pr, pc, gr, gc)
		}
	}
	for i, p := range params {
		o.StepInPlace(rawData(p), rawData(gradients[i]))
	}
	return nil
}

// rawData returns the backing slice of m in row-major order. Matrices built
// by this module are never views, so the stride always equals the width.
func rawData(m *mat.Dense) []float64 {
	raw := m.RawMatrix()
	if raw.Stride != raw.Cols {
		panic("opt: strided matrix view")
	}
	return raw.Data[:raw.Rows*raw.Cols]
}
