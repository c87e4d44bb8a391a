// Package loss provides unit tests for loss functions.
package loss

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TestCrossEntropyForward tests the average negative log-likelihood.
func TestCrossEntropyForward(t *testing.T) {
	ce := CrossEntropy{}

	tests := []struct {
		name     string
		probs    []float64
		cols     int
		labels   []int
		expected float64
	}{
		{"Perfect prediction", []float64{1, 0, 0, 1}, 2, []int{0, 1}, 0},
		{"Uniform three classes", []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, 3, []int{2}, math.Log(3)},
		{"Mixed batch", []float64{0.5, 0.5, 0.2, 0.8}, 2, []int{0, 0}, -(math.Log(0.5) + math.Log(0.2)) / 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probs := mat.NewDense(len(tt.labels), tt.cols, tt.probs)
			result := ce.Forward(probs, tt.labels)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("CrossEntropy.Forward() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestCrossEntropyForwardZeroProbability documents that there is no clipping.
func TestCrossEntropyForwardZeroProbability(t *testing.T) {
	probs := mat.NewDense(1, 2, []float64{0, 1})
	if l := (CrossEntropy{}).Forward(probs, []int{0}); !math.IsInf(l, 1) {
		t.Errorf("loss = %v, want +Inf", l)
	}
}

// TestCrossEntropyBackward tests d2 = (probs - onehot) / M.
func TestCrossEntropyBackward(t *testing.T) {
	probs := mat.NewDense(2, 3, []float64{
		0.2, 0.3, 0.5,
		0.6, 0.1, 0.3,
	})
	labels := []int{2, 0}

	grad := CrossEntropy{}.Backward(probs, labels)
	want := mat.NewDense(2, 3, []float64{
		0.1, 0.15, -0.25,
		-0.2, 0.05, 0.15,
	})
	if !mat.EqualApprox(grad, want, 1e-12) {
		t.Errorf("Backward = %v, want %v", mat.Formatted(grad), mat.Formatted(want))
	}

	// Rows of a softmax gradient sum to zero.
	for i := 0; i < 2; i++ {
		if s := floats.Sum(grad.RawRowView(i)); math.Abs(s) > 1e-12 {
			t.Errorf("row %d of gradient sums to %v", i, s)
		}
	}

	if probs.At(0, 2) != 0.5 {
		t.Error("Backward mutated probabilities")
	}
}

func TestCrossEntropyLabelMismatch(t *testing.T) {
	tests := []struct {
		name   string
		labels []int
	}{
		{"Too few labels", []int{0}},
		{"Label out of range", []int{0, 3}},
		{"Negative label", []int{-1, 0}},
	}

	probs := mat.NewDense(2, 3, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic")
				}
			}()
			CrossEntropy{}.Forward(probs, tt.labels)
		})
	}
}
