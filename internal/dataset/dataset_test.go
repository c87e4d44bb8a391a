package dataset

import (
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestSpiralShapeAndLabels(t *testing.T) {
	const n, k = 50, 3
	ds, err := Spiral(n, 2, k, rand.NewSource(0))
	if err != nil {
		t.Fatalf("Spiral: %v", err)
	}

	rows, cols := ds.X.Dims()
	if rows != n*k || cols != 2 {
		t.Fatalf("X shape = %dx%d, want %dx2", rows, cols, n*k)
	}
	if ds.Len() != n*k || ds.Dims() != 2 || ds.Classes != k {
		t.Fatalf("Len/Dims/Classes = %d/%d/%d", ds.Len(), ds.Dims(), ds.Classes)
	}

	// Contiguous blocks of n points, ascending class id.
	for i, label := range ds.Y {
		if want := i / n; label != want {
			t.Fatalf("Y[%d] = %d, want %d", i, label, want)
		}
	}
}

func TestSpiralRadii(t *testing.T) {
	const n = 20
	ds, err := Spiral(n, 2, 2, rand.NewSource(3))
	if err != nil {
		t.Fatalf("Spiral: %v", err)
	}

	radius := Linspace(0, 1, n)
	for i := 0; i < ds.Len(); i++ {
		r := math.Hypot(ds.X.At(i, 0), ds.X.At(i, 1))
		if want := radius[i%n]; math.Abs(r-want) > 1e-12 {
			t.Errorf("|X[%d]| = %v, want %v", i, r, want)
		}
	}

	// The first point of every arm sits at the origin.
	if ds.X.At(0, 0) != 0 || ds.X.At(n, 1) != 0 {
		t.Error("arm does not start at the origin")
	}
}

func TestSpiralAnglesFollowArm(t *testing.T) {
	const n = 100
	ds, err := Spiral(n, 2, 3, rand.NewSource(11))
	if err != nil {
		t.Fatalf("Spiral: %v", err)
	}

	// Recover the noisy angle of the outermost point of each arm: it must
	// lie near 4(j+1) modulo 2π.
	for j := 0; j < 3; j++ {
		row := n*j + n - 1
		got := math.Atan2(ds.X.At(row, 0), ds.X.At(row, 1))
		want := armSweep * float64(j+1)
		diff := math.Remainder(got-want, 2*math.Pi)
		if math.Abs(diff) > 5*AngleNoise {
			t.Errorf("arm %d outer angle off by %v", j, diff)
		}
	}
}

func TestSpiralDeterministic(t *testing.T) {
	a, _ := Spiral(50, 2, 3, rand.NewSource(42))
	b, _ := Spiral(50, 2, 3, rand.NewSource(42))
	if !mat.Equal(a.X, b.X) {
		t.Error("same seed produced different points")
	}
	for i := range a.Y {
		if a.Y[i] != b.Y[i] {
			t.Fatalf("labels differ at %d", i)
		}
	}

	c, _ := Spiral(50, 2, 3, rand.NewSource(43))
	if mat.Equal(a.X, c.X) {
		t.Error("different seeds produced identical points")
	}
}

func TestSpiralInvalid(t *testing.T) {
	tests := []struct {
		name    string
		n, d, k int
	}{
		{"No points", 0, 2, 3},
		{"No classes", 10, 2, 0},
		{"Three dimensions", 10, 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Spiral(tt.n, tt.d, tt.k, rand.NewSource(1)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLinspace(t *testing.T) {
	tests := []struct {
		start, stop float64
		n           int
		want        []float64
	}{
		{0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{4, 8, 3, []float64{4, 6, 8}},
		{2, 9, 1, []float64{2}},
		{0, 1, 0, nil},
	}

	for _, tt := range tests {
		got := Linspace(tt.start, tt.stop, tt.n)
		if len(got) != len(tt.want) || !floats.EqualApprox(got, tt.want, 1e-12) {
			t.Errorf("Linspace(%v, %v, %d) = %v, want %v", tt.start, tt.stop, tt.n, got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	ds, err := New(mat.NewDense(3, 2, []float64{
		-1, 2,
		0.5, -3,
		4, 0,
	}), []int{0, 1, 1}, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	xmin, xmax, ymin, ymax := ds.Bounds()
	if xmin != -1 || xmax != 4 || ymin != -3 || ymax != 2 {
		t.Errorf("Bounds = %v %v %v %v", xmin, xmax, ymin, ymax)
	}
}

func TestNewValidation(t *testing.T) {
	x := mat.NewDense(2, 2, nil)
	tests := []struct {
		name    string
		y       []int
		classes int
	}{
		{"Label count mismatch", []int{0}, 2},
		{"Label out of range", []int{0, 2}, 2},
		{"No classes", []int{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(x, tt.y, tt.classes); err == nil {
				t.Error("expected error")
			}
		})
	}
}
