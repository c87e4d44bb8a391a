// Package layer provides the affine layer used by the spiral classifier.
package layer

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// InitScale multiplies the standard normal draws used for weights.
const InitScale = 0.01

// Dense is a fully connected affine layer computing x·W + b over a batch.
//
// W has shape [in, out] and b has shape [1, out]. The layer keeps no
// per-call state: Forward and the gradient helpers only read W and b.
type Dense struct {
	W *mat.Dense
	B *mat.Dense

	inSize  int
	outSize int
}

// NewDense creates a layer with weights drawn from 0.01·N(0, 1) in
// row-major order from src, and zero biases.
func NewDense(in, out int, src rand.Source) (*Dense, error) {
	if in < 1 || out < 1 {
		return nil, fmt.Errorf("dense layer %dx%d: sizes must be positive", in, out)
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	weights := make([]float64, in*out)
	for i := range weights {
		weights[i] = InitScale * normal.Rand()
	}

	return FromParams(mat.NewDense(in, out, weights), mat.NewDense(1, out, nil))
}

// FromParams wraps existing weight and bias matrices, checking that their
// shapes agree.
func FromParams(w, b *mat.Dense) (*Dense, error) {
	in, out := w.Dims()
	br, bc := b.Dims()
	if br != 1 || bc != out {
		return nil, fmt.Errorf("dense layer: bias shape %dx%d does not match weights %dx%d", br, bc, in, out)
	}
	return &Dense{W: w, B: b, inSize: in, outSize: out}, nil
}

// Forward computes z = x·W + b. The bias row is added to every row of the
// batch explicitly.
func (d *Dense) Forward(x mat.Matrix) *mat.Dense {
	var z mat.Dense
	z.Mul(x, d.W)

	bias := d.B.RawRowView(0)
	rows, _ := z.Dims()
	for i := 0; i < rows; i++ {
		floats.Add(z.RawRowView(i), bias)
	}
	return &z
}

// WeightGrad computes dL/dW = xᵗ·dz.
func (d *Dense) WeightGrad(x, dz mat.Matrix) *mat.Dense {
	var dw mat.Dense
	dw.Mul(x.T(), dz)
	return &dw
}

// BiasGrad computes dL/db as the column-wise sum of dz, shaped [1, out].
func (d *Dense) BiasGrad(dz mat.Matrix) *mat.Dense {
	rows, cols := dz.Dims()
	db := mat.NewDense(1, cols, nil)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, dz)
		db.Set(0, j, floats.Sum(col))
	}
	return db
}

// InputGrad computes dL/dx = dz·Wᵗ.
func (d *Dense) InputGrad(dz mat.Matrix) *mat.Dense {
	var dx mat.Dense
	dx.Mul(dz, d.W.T())
	return &dx
}

// Params returns the layer parameters in update order (W, b). The
// matrices are shared, not copied.
func (d *Dense) Params() []*mat.Dense {
	return []*mat.Dense{d.W, d.B}
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int {
	return d.inSize
}

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int {
	return d.outSize
}
