// Package loss provides the classification loss used to train the network.
package loss

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Loss is a batched loss function with its gradient.
type Loss interface {
	// Forward computes the scalar loss of probabilities probs (M×K) against
	// the true class of every row.
	Forward(probs mat.Matrix, labels []int) float64

	// Backward computes the gradient of the loss w.r.t. the pre-softmax
	// scores. It returns a new matrix and leaves probs untouched.
	Backward(probs mat.Matrix, labels []int) *mat.Dense
}

// CrossEntropy is the average cross-entropy of a softmax output.
//
// No probability clipping or regularization term is applied.
type CrossEntropy struct{}

// Forward computes -(1/M) * sum_i log(probs[i, labels[i]])
func (c CrossEntropy) Forward(probs mat.Matrix, labels []int) float64 {
	rows := checkLabels("CrossEntropy", probs, labels)

	var sum float64
	for i, y := range labels {
		sum -= math.Log(probs.At(i, y))
	}
	return sum / float64(rows)
}

// Backward computes (probs - onehot(labels)) / M.
// For cross entropy after softmax this is the gradient w.r.t. the scores.
func (c CrossEntropy) Backward(probs mat.Matrix, labels []int) *mat.Dense {
	rows := checkLabels("CrossEntropy", probs, labels)

	grad := mat.DenseCopyOf(probs)
	for i, y := range labels {
		grad.Set(i, y, grad.At(i, y)-1)
	}
	grad.Scale(1/float64(rows), grad)
	return grad
}

// checkLabels panics when labels do not index rows of probs. A mismatch is
// a construction defect, not a runtime condition.
func checkLabels(name string, probs mat.Matrix, labels []int) int {
	rows, cols := probs.Dims()
	if rows != len(labels) {
		panic(fmt.Sprintf("%s: %d rows but %d labels", name, rows, len(labels)))
	}
	for i, y := range labels {
		if y < 0 || y >= cols {
			panic(fmt.Sprintf("%s: label %d at row %d out of range [0,%d)", name, y, i, cols))
		}
	}
	return rows
}
