// Package dataset generates and stores labeled 2-D point sets.
package dataset

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// AngleNoise is the standard deviation of the Gaussian noise added to every
// spiral angle.
const AngleNoise = 0.2

// armSweep is the angular span of one spiral arm, in radians.
const armSweep = 4.0

// Dataset represents a collection of points and their integer class labels.
// Row i of X is labeled Y[i].
type Dataset struct {
	X       *mat.Dense
	Y       []int
	Classes int
}

// New wraps x and y after checking that every row has a label in
// [0, classes).
func New(x *mat.Dense, y []int, classes int) (*Dataset, error) {
	rows, _ := x.Dims()
	if rows != len(y) {
		return nil, fmt.Errorf("dataset: %d points but %d labels", rows, len(y))
	}
	if classes < 1 {
		return nil, fmt.Errorf("dataset: class count must be positive (got %d)", classes)
	}
	for i, label := range y {
		if label < 0 || label >= classes {
			return nil, fmt.Errorf("dataset: label %d at row %d out of range [0,%d)", label, i, classes)
		}
	}
	return &Dataset{X: x, Y: y, Classes: classes}, nil
}

// Spiral generates k interleaved spiral arms of n points each in d=2
// dimensions. Class j occupies rows [n*j, n*(j+1)).
//
// For every arm the radii are evenly spaced in [0, 1] and the angles are
// evenly spaced in [4j, 4(j+1)] plus N(0, 0.2) noise drawn from src. Point i
// is (r_i·sin t_i, r_i·cos t_i).
func Spiral(n, d, k int, src rand.Source) (*Dataset, error) {
	if n < 1 {
		return nil, fmt.Errorf("spiral: points per class must be positive (got %d)", n)
	}
	if k < 1 {
		return nil, fmt.Errorf("spiral: class count must be positive (got %d)", k)
	}
	if d != 2 {
		return nil, fmt.Errorf("spiral: only 2-D points are supported (got %d)", d)
	}

	noise := distuv.Normal{Mu: 0, Sigma: AngleNoise, Src: src}
	x := mat.NewDense(n*k, d, nil)
	y := make([]int, n*k)

	radius := Linspace(0, 1, n)
	for j := 0; j < k; j++ {
		theta := Linspace(armSweep*float64(j), armSweep*float64(j+1), n)
		for i := range theta {
			theta[i] += noise.Rand()
		}

		for i := 0; i < n; i++ {
			row := n*j + i
			x.Set(row, 0, radius[i]*math.Sin(theta[i]))
			x.Set(row, 1, radius[i]*math.Cos(theta[i]))
			y[row] = j
		}
	}

	return &Dataset{X: x, Y: y, Classes: k}, nil
}

// Linspace returns n evenly spaced values over [start, stop], endpoints
// included. n == 1 yields just start.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	floats.Span(out, start, stop)
	return out
}

// Len returns the number of points.
func (d *Dataset) Len() int {
	return len(d.Y)
}

// Dims returns the dimensionality of the points.
func (d *Dataset) Dims() int {
	_, cols := d.X.Dims()
	return cols
}

// Bounds returns the extent of the first two coordinates.
func (d *Dataset) Bounds() (xmin, xmax, ymin, ymax float64) {
	xs := mat.Col(nil, 0, d.X)
	ys := mat.Col(nil, 1, d.X)
	return floats.Min(xs), floats.Max(xs), floats.Min(ys), floats.Max(ys)
}
