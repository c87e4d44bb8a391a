// Package layer provides unit tests for the affine layer.
package layer

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func newTestDense(t *testing.T) *Dense {
	t.Helper()
	w := mat.NewDense(2, 3, []float64{
		1, 0, -1,
		0.5, 2, 0,
	})
	b := mat.NewDense(1, 3, []float64{0.1, -0.2, 0.3})
	d, err := FromParams(w, b)
	if err != nil {
		t.Fatalf("FromParams: %v", err)
	}
	return d
}

func TestNewDenseShapes(t *testing.T) {
	d, err := NewDense(2, 50, rand.NewSource(1))
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}

	if r, c := d.W.Dims(); r != 2 || c != 50 {
		t.Errorf("W shape = %dx%d, want 2x50", r, c)
	}
	if r, c := d.B.Dims(); r != 1 || c != 50 {
		t.Errorf("b shape = %dx%d, want 1x50", r, c)
	}
	if d.InSize() != 2 || d.OutSize() != 50 {
		t.Errorf("sizes = %d,%d, want 2,50", d.InSize(), d.OutSize())
	}

	for _, v := range d.B.RawRowView(0) {
		if v != 0 {
			t.Fatalf("bias = %v, want 0", v)
		}
	}

	// 0.01-scaled standard normal draws stay well inside ±0.06.
	nonZero := 0
	for _, v := range d.W.RawMatrix().Data {
		if math.Abs(v) > 0.06 {
			t.Errorf("weight %v too large for 0.01 scale", v)
		}
		if v != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Error("all weights are zero")
	}
}

func TestNewDenseDeterministic(t *testing.T) {
	a, _ := NewDense(3, 4, rand.NewSource(7))
	b, _ := NewDense(3, 4, rand.NewSource(7))
	if !mat.Equal(a.W, b.W) {
		t.Error("same seed produced different weights")
	}
}

func TestNewDenseInvalid(t *testing.T) {
	if _, err := NewDense(0, 3, rand.NewSource(1)); err == nil {
		t.Error("expected error for zero input size")
	}
	if _, err := NewDense(2, -1, rand.NewSource(1)); err == nil {
		t.Error("expected error for negative output size")
	}
}

func TestFromParamsShapeMismatch(t *testing.T) {
	w := mat.NewDense(2, 3, nil)
	if _, err := FromParams(w, mat.NewDense(1, 2, nil)); err == nil {
		t.Error("expected error for bias width mismatch")
	}
	if _, err := FromParams(w, mat.NewDense(2, 3, nil)); err == nil {
		t.Error("expected error for bias with more than one row")
	}
}

// TestDenseForward checks x·W + b with the bias added to every row.
func TestDenseForward(t *testing.T) {
	d := newTestDense(t)
	x := mat.NewDense(2, 2, []float64{
		1, 2,
		0, 0,
	})

	z := d.Forward(x)
	want := mat.NewDense(2, 3, []float64{
		1 + 1 + 0.1, 0 + 4 - 0.2, -1 + 0 + 0.3,
		0.1, -0.2, 0.3,
	})
	if !mat.EqualApprox(z, want, 1e-12) {
		t.Errorf("Forward = %v, want %v", mat.Formatted(z), mat.Formatted(want))
	}
}

func TestDenseForwardDoesNotMutate(t *testing.T) {
	d := newTestDense(t)
	w := mat.DenseCopyOf(d.W)
	b := mat.DenseCopyOf(d.B)
	x := mat.NewDense(1, 2, []float64{3, -4})

	first := d.Forward(x)
	second := d.Forward(x)
	if !mat.Equal(first, second) {
		t.Error("Forward is not idempotent")
	}
	if !mat.Equal(w, d.W) || !mat.Equal(b, d.B) {
		t.Error("Forward mutated parameters")
	}
}

func TestDenseGradients(t *testing.T) {
	d := newTestDense(t)
	x := mat.NewDense(2, 2, []float64{
		1, 2,
		3, 4,
	})
	dz := mat.NewDense(2, 3, []float64{
		1, 0, 2,
		-1, 1, 0,
	})

	dw := d.WeightGrad(x, dz)
	wantDW := mat.NewDense(2, 3, []float64{
		1*1 + 3*-1, 1*0 + 3*1, 1*2 + 3*0,
		2*1 + 4*-1, 2*0 + 4*1, 2*2 + 4*0,
	})
	if !mat.EqualApprox(dw, wantDW, 1e-12) {
		t.Errorf("WeightGrad = %v, want %v", mat.Formatted(dw), mat.Formatted(wantDW))
	}

	db := d.BiasGrad(dz)
	wantDB := mat.NewDense(1, 3, []float64{0, 1, 2})
	if !mat.EqualApprox(db, wantDB, 1e-12) {
		t.Errorf("BiasGrad = %v, want %v", mat.Formatted(db), mat.Formatted(wantDB))
	}

	dx := d.InputGrad(dz)
	wantDX := mat.NewDense(2, 2, []float64{
		1*1 + 0*0 + 2*-1, 1*0.5 + 0*2 + 2*0,
		-1*1 + 1*0 + 0*-1, -1*0.5 + 1*2 + 0*0,
	})
	if !mat.EqualApprox(dx, wantDX, 1e-12) {
		t.Errorf("InputGrad = %v, want %v", mat.Formatted(dx), mat.Formatted(wantDX))
	}
}

func TestDenseParamsShared(t *testing.T) {
	d := newTestDense(t)
	params := d.Params()
	if len(params) != 2 {
		t.Fatalf("Params returned %d tensors, want 2", len(params))
	}
	params[0].Set(0, 0, 42)
	if d.W.At(0, 0) != 42 {
		t.Error("Params should expose the live weight matrix")
	}
}
