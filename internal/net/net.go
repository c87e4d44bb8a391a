// Package net provides the two-layer classifier, its forward and backward
// passes, and the gradient descent training loop.
package net

import (
	"errors"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/spiralnet/internal/activations"
	"github.com/FlavioCFOliveira/spiralnet/internal/layer"
	"github.com/FlavioCFOliveira/spiralnet/internal/loss"
	"github.com/FlavioCFOliveira/spiralnet/internal/opt"
)

// DefaultIterations is the iteration budget of the reference run.
const DefaultIterations = 20000

// Network is an affine → sigmoid → affine → softmax classifier.
//
// Hidden holds W1 [D, H] and b1 [1, H]; Output holds W2 [H, K] and b2 [1, K].
// The training loop is the only writer of these parameters.
type Network struct {
	Hidden *layer.Dense
	Output *layer.Dense

	// Activation is applied to the hidden pre-activation.
	Activation activations.Activation
	// Softmax normalizes the output scores.
	Softmax activations.Softmax
}

// Cache holds the forward intermediates of one batch.
type Cache struct {
	Z1 *mat.Dense // [M, H] hidden pre-activation
	A1 *mat.Dense // [M, H] hidden activation
	Z2 *mat.Dense // [M, K] output scores
	A2 *mat.Dense // [M, K] class probabilities
}

// Gradients holds dL/dP for every parameter plus the error signals at the
// output (D2) and hidden (D1) layers.
type Gradients struct {
	DW1 *mat.Dense
	DB1 *mat.Dense
	DW2 *mat.Dense
	DB2 *mat.Dense

	D2 *mat.Dense
	D1 *mat.Dense
}

// List returns the parameter gradients in the order of Network.Params.
func (g *Gradients) List() []*mat.Dense {
	return []*mat.Dense{g.DW1, g.DB1, g.DW2, g.DB2}
}

// New creates a d→h→k network. W1 is drawn from src before W2, each entry
// 0.01·N(0, 1); biases start at zero.
func New(d, h, k int, src rand.Source) (*Network, error) {
	hidden, err := layer.NewDense(d, h, src)
	if err != nil {
		return nil, fmt.Errorf("hidden layer: %w", err)
	}
	output, err := layer.NewDense(h, k, src)
	if err != nil {
		return nil, fmt.Errorf("output layer: %w", err)
	}
	return FromLayers(hidden, output)
}

// FromLayers assembles a network from existing layers after checking that
// their shapes chain together.
func FromLayers(hidden, output *layer.Dense) (*Network, error) {
	n := &Network{
		Hidden:     hidden,
		Output:     output,
		Activation: activations.Sigmoid{},
	}
	if err := n.validateShapes(); err != nil {
		return nil, err
	}
	return n, nil
}

// validateShapes fails when parameter shapes are inconsistent. Gradients
// are built from the same shapes, so a network that passes here cannot hit a
// shape mismatch during training.
func (n *Network) validateShapes() error {
	if n.Hidden == nil || n.Output == nil {
		return errors.New("network: missing layer")
	}
	d, h := n.Hidden.W.Dims()
	if r, c := n.Hidden.B.Dims(); r != 1 || c != h {
		return fmt.Errorf("network: b1 is %dx%d, want 1x%d", r, c, h)
	}
	h2, k := n.Output.W.Dims()
	if h2 != h {
		return fmt.Errorf("network: W2 has %d rows, want %d", h2, h)
	}
	if r, c := n.Output.B.Dims(); r != 1 || c != k {
		return fmt.Errorf("network: b2 is %dx%d, want 1x%d", r, c, k)
	}
	if d < 1 || h < 1 || k < 1 {
		return fmt.Errorf("network: invalid dimensions %d-%d-%d", d, h, k)
	}
	return nil
}

// Dims returns the input, hidden and class dimensions.
func (n *Network) Dims() (d, h, k int) {
	return n.Hidden.InSize(), n.Hidden.OutSize(), n.Output.OutSize()
}

// Params returns W1, b1, W2, b2. The matrices are live: updating them
// updates the network.
func (n *Network) Params() []*mat.Dense {
	return append(n.Hidden.Params(), n.Output.Params()...)
}

// Forward evaluates the network over the rows of x. It only reads the
// parameters.
func (n *Network) Forward(x mat.Matrix) *Cache {
	z1 := n.Hidden.Forward(x)
	a1 := activations.Apply(n.Activation, z1)
	z2 := n.Output.Forward(a1)
	a2 := n.Softmax.ActivateRows(z2)
	return &Cache{Z1: z1, A1: a1, Z2: z2, A2: a2}
}

// Backward propagates d2 = dL/dz2 back through the network:
//
//	dW2 = a1ᵗ·d2, db2 = Σ_rows d2
//	d1  = act'(z1) ⊙ (d2·W2ᵗ)
//	dW1 = xᵗ·d1,  db1 = Σ_rows d1
func (n *Network) Backward(x mat.Matrix, c *Cache, d2 *mat.Dense) *Gradients {
	g := &Gradients{D2: d2}
	g.DW2 = n.Output.WeightGrad(c.A1, d2)
	g.DB2 = n.Output.BiasGrad(d2)

	d1 := n.Output.InputGrad(d2)
	d1.MulElem(activations.ApplyDerivative(n.Activation, c.Z1), d1)
	g.D1 = d1

	g.DW1 = n.Hidden.WeightGrad(x, d1)
	g.DB1 = n.Hidden.BiasGrad(d1)
	return g
}

// gradients runs the cross-entropy backward pass for labels y from a
// forward cache of x.
func (n *Network) gradients(x mat.Matrix, y []int, c *Cache) *Gradients {
	return n.Backward(x, c, loss.CrossEntropy{}.Backward(c.A2, y))
}

// Step applies one update P ← P - lr·dP to every parameter in place.
func (n *Network) Step(o opt.Optimizer, g *Gradients) error {
	return opt.StepMatrices(o, n.Params(), g.List())
}

// Predict returns the index of the highest score of every row of x.
func (n *Network) Predict(x mat.Matrix) []int {
	scores := n.Forward(x).Z2
	rows, _ := scores.Dims()
	pred := make([]int, rows)
	for i := range pred {
		pred[i] = floats.MaxIdx(scores.RawRowView(i))
	}
	return pred
}

// TrainConfig configures Train. Nil Optimizer and Loss fall back to
// SGD with DefaultLearningRate and CrossEntropy.
type TrainConfig struct {
	Iterations int
	Optimizer  opt.Optimizer
	Loss       loss.Loss
	Callbacks  []Callback
}

// Train runs full-batch gradient descent on (x, y) for exactly
// cfg.Iterations iterations and returns the loss of the last iteration.
//
// Each iteration runs forward, loss, backward and the update, then notifies
// callbacks. There is no early stopping and no guard against a loss that
// becomes NaN or Inf.
func (n *Network) Train(x mat.Matrix, y []int, cfg TrainConfig) (float64, error) {
	if cfg.Iterations <= 0 {
		return 0, fmt.Errorf("train: iterations must be > 0 (got %d)", cfg.Iterations)
	}
	rows, cols := x.Dims()
	if rows != len(y) {
		return 0, fmt.Errorf("train: %d rows but %d labels", rows, len(y))
	}
	if d, _, _ := n.Dims(); cols != d {
		return 0, fmt.Errorf("train: input has %d columns, network expects %d", cols, d)
	}
	if _, _, k := n.Dims(); !labelsInRange(y, k) {
		return 0, fmt.Errorf("train: labels must lie in [0,%d)", k)
	}

	optimizer := cfg.Optimizer
	if optimizer == nil {
		optimizer = opt.SGD{LearningRate: opt.DefaultLearningRate}
	}
	lossFn := cfg.Loss
	if lossFn == nil {
		lossFn = loss.CrossEntropy{}
	}

	for _, cb := range cfg.Callbacks {
		cb.OnTrainBegin(n)
	}

	var l float64
	for i := 0; i < cfg.Iterations; i++ {
		cache := n.Forward(x)
		l = lossFn.Forward(cache.A2, y)
		grads := n.Backward(x, cache, lossFn.Backward(cache.A2, y))
		if err := n.Step(optimizer, grads); err != nil {
			endTraining(cfg.Callbacks, n)
			return l, fmt.Errorf("iteration %d: %w", i, err)
		}

		for _, cb := range cfg.Callbacks {
			cb.OnIterationEnd(i, l, n)
		}
	}

	endTraining(cfg.Callbacks, n)
	return l, nil
}

func endTraining(callbacks []Callback, n *Network) {
	for _, cb := range callbacks {
		cb.OnTrainEnd(n)
	}
}

func labelsInRange(y []int, k int) bool {
	for _, label := range y {
		if label < 0 || label >= k {
			return false
		}
	}
	return true
}
