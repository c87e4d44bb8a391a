// Package eval scores a trained network on its training set and samples
// its decisions over a regular grid of the input plane.
package eval

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/spiralnet/internal/dataset"
)

const (
	// DefaultGridStep is the spacing between grid points on both axes.
	DefaultGridStep = 0.02
	// DefaultMargin pads the data bounding box on every side.
	DefaultMargin = 1.0
)

// Predictor maps a batch of points to one class id per row.
type Predictor interface {
	Predict(x mat.Matrix) []int
}

// Accuracy returns the fraction of positions where pred equals y.
func Accuracy(pred, y []int) float64 {
	if len(pred) != len(y) {
		panic(fmt.Sprintf("eval: %d predictions for %d labels", len(pred), len(y)))
	}
	if len(y) == 0 {
		return 0
	}
	correct := 0
	for i := range y {
		if pred[i] == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

// TrainingAccuracy predicts every point of ds and scores it against the
// labels.
func TrainingAccuracy(p Predictor, ds *dataset.Dataset) float64 {
	return Accuracy(p.Predict(ds.X), ds.Y)
}

// Grid is a regular lattice over a rectangle of the input plane.
// Xs holds the column coordinates and Ys the row coordinates; Classes[r][c]
// is the class predicted at (Xs[c], Ys[r]) once the grid has been sampled.
type Grid struct {
	Xs      []float64
	Ys      []float64
	Step    float64
	Classes [][]int
}

// NewGrid builds a grid over [xmin, xmax) × [ymin, ymax) at the given step.
// Coordinates are min + i·step for i < ceil((max-min)/step).
func NewGrid(xmin, xmax, ymin, ymax, step float64) (*Grid, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("grid: step must be > 0 (got %v)", step)
	}
	xs := arange(xmin, xmax, step)
	ys := arange(ymin, ymax, step)
	if len(xs) == 0 || len(ys) == 0 {
		return nil, fmt.Errorf("grid: empty range [%v,%v)x[%v,%v)", xmin, xmax, ymin, ymax)
	}
	return &Grid{Xs: xs, Ys: ys, Step: step}, nil
}

// GridFor builds a grid covering the bounding box of ds grown by margin.
func GridFor(ds *dataset.Dataset, margin, step float64) (*Grid, error) {
	xmin, xmax, ymin, ymax := ds.Bounds()
	return NewGrid(xmin-margin, xmax+margin, ymin-margin, ymax+margin, step)
}

// arange returns start, start+step, ... strictly below stop.
func arange(start, stop, step float64) []float64 {
	n := int(math.Ceil((stop - start) / step))
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Rows returns the number of grid rows (y values).
func (g *Grid) Rows() int {
	return len(g.Ys)
}

// Cols returns the number of grid columns (x values).
func (g *Grid) Cols() int {
	return len(g.Xs)
}

// Points flattens the grid into a [Rows·Cols, 2] matrix, row by row with x
// varying fastest.
func (g *Grid) Points() *mat.Dense {
	cols := g.Cols()
	pts := mat.NewDense(g.Rows()*cols, 2, nil)
	for r, y := range g.Ys {
		for c, x := range g.Xs {
			pts.Set(r*cols+c, 0, x)
			pts.Set(r*cols+c, 1, y)
		}
	}
	return pts
}

// Sample predicts every grid point with p and stores the reshaped class
// ids in g.Classes.
func (g *Grid) Sample(p Predictor) [][]int {
	pred := p.Predict(g.Points())
	cols := g.Cols()
	classes := make([][]int, g.Rows())
	for r := range classes {
		classes[r] = pred[r*cols : (r+1)*cols : (r+1)*cols]
	}
	g.Classes = classes
	return classes
}
