// Package render draws the point set and the learned decision regions as
// PNG images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/FlavioCFOliveira/spiralnet/internal/dataset"
	"github.com/FlavioCFOliveira/spiralnet/internal/eval"
)

const (
	// DefaultScatterSize is the side of the raw scatter image in pixels.
	DefaultScatterSize = 400

	// regionAlpha is the opacity of the decision regions over white.
	regionAlpha = 0.8
	// markerRadius is the half-width of a point marker in pixels.
	markerRadius = 2
)

// spectral are the stops of a diverging red→yellow→blue palette.
var spectral = []color.RGBA{
	{0x9e, 0x01, 0x42, 0xff},
	{0xd5, 0x3e, 0x4f, 0xff},
	{0xf4, 0x6d, 0x43, 0xff},
	{0xfd, 0xae, 0x61, 0xff},
	{0xfe, 0xe0, 0x8b, 0xff},
	{0xff, 0xff, 0xbf, 0xff},
	{0xe6, 0xf5, 0x98, 0xff},
	{0xab, 0xdd, 0xa4, 0xff},
	{0x66, 0xc2, 0xa5, 0xff},
	{0x32, 0x88, 0xbd, 0xff},
	{0x5e, 0x4f, 0xa2, 0xff},
}

// ClassColor spreads classes evenly over the palette.
func ClassColor(class, classes int) color.RGBA {
	t := 0.0
	if classes > 1 {
		t = float64(class) / float64(classes-1)
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(spectral)-1)
	i := int(pos)
	if i >= len(spectral)-1 {
		return spectral[len(spectral)-1]
	}
	return lerp(spectral[i], spectral[i+1], pos-float64(i))
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 0xff}
}

// Scatter draws the points of ds over [-1, 1]² on a size×size canvas.
func Scatter(w io.Writer, ds *dataset.Dataset, size int) error {
	if size < 2 {
		return fmt.Errorf("scatter: size must be at least 2 (got %d)", size)
	}
	img := blank(size, size)
	scale := float64(size-1) / 2
	for i := 0; i < ds.Len(); i++ {
		px := (ds.X.At(i, 0) + 1) * scale
		py := (1 - ds.X.At(i, 1)) * scale
		marker(img, int(math.Round(px)), int(math.Round(py)), ClassColor(ds.Y[i], ds.Classes))
	}
	return png.Encode(w, img)
}

// DecisionBoundary draws one pixel per cell of a sampled grid, coloured by
// the predicted class, with the points of ds on top.
func DecisionBoundary(w io.Writer, g *eval.Grid, ds *dataset.Dataset) error {
	if len(g.Classes) != g.Rows() {
		return fmt.Errorf("decision boundary: grid has not been sampled")
	}
	rows, cols := g.Rows(), g.Cols()
	img := blank(cols, rows)

	for r, row := range g.Classes {
		for c, class := range row {
			img.SetRGBA(c, rows-1-r, fade(ClassColor(class, ds.Classes), regionAlpha))
		}
	}

	for i := 0; i < ds.Len(); i++ {
		c := (ds.X.At(i, 0) - g.Xs[0]) / g.Step
		r := (ds.X.At(i, 1) - g.Ys[0]) / g.Step
		marker(img, int(math.Round(c)), rows-1-int(math.Round(r)), ClassColor(ds.Y[i], ds.Classes))
	}
	return png.Encode(w, img)
}

// SaveScatter writes Scatter output to filename.
func SaveScatter(filename string, ds *dataset.Dataset, size int) error {
	return save(filename, func(w io.Writer) error {
		return Scatter(w, ds, size)
	})
}

// SaveDecisionBoundary writes DecisionBoundary output to filename.
func SaveDecisionBoundary(filename string, g *eval.Grid, ds *dataset.Dataset) error {
	return save(filename, func(w io.Writer) error {
		return DecisionBoundary(w, g, ds)
	})
}

func save(filename string, draw func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := draw(f); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return f.Close()
}

func blank(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}

// fade blends c over white with opacity alpha.
func fade(c color.RGBA, alpha float64) color.RGBA {
	return lerp(color.RGBA{0xff, 0xff, 0xff, 0xff}, c, alpha)
}

// marker draws a filled square with a black outline centred on (x, y).
// Parts falling outside the image are clipped.
func marker(img *image.RGBA, x, y int, c color.RGBA) {
	bounds := img.Bounds()
	for dy := -markerRadius - 1; dy <= markerRadius+1; dy++ {
		for dx := -markerRadius - 1; dx <= markerRadius+1; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			edge := dx < -markerRadius || dx > markerRadius || dy < -markerRadius || dy > markerRadius
			if edge {
				img.SetRGBA(p.X, p.Y, color.RGBA{0, 0, 0, 0xff})
			} else {
				img.SetRGBA(p.X, p.Y, c)
			}
		}
	}
}
