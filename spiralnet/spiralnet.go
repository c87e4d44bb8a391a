// Package spiralnet trains a two-layer softmax classifier on the spiral
// point set and renders what it learned.
package spiralnet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/exp/rand"

	"github.com/FlavioCFOliveira/spiralnet/internal/activations"
	"github.com/FlavioCFOliveira/spiralnet/internal/config"
	"github.com/FlavioCFOliveira/spiralnet/internal/dataset"
	"github.com/FlavioCFOliveira/spiralnet/internal/eval"
	"github.com/FlavioCFOliveira/spiralnet/internal/net"
	"github.com/FlavioCFOliveira/spiralnet/internal/opt"
	"github.com/FlavioCFOliveira/spiralnet/internal/render"
)

// Re-export common types for easier access.
type (
	Config   = config.Config
	Dataset  = dataset.Dataset
	Network  = net.Network
	Grid     = eval.Grid
	Callback = net.Callback
)

// Output file names written into Config.OutputDir.
const (
	RawImage    = "spiral_raw.png"
	ResultImage = "spiral_net_results.png"
)

// DefaultConfig returns the reference run configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig reads a run configuration file.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// NewSource returns the seeded source shared by data generation and weight
// initialization.
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

// Spiral generates k arms of n points in the plane.
func Spiral(n, k int, src rand.Source) (*Dataset, error) {
	return dataset.Spiral(n, 2, k, src)
}

// NewNetwork builds a d→h→k network with small random weights.
func NewNetwork(d, h, k int, src rand.Source) (*Network, error) {
	return net.New(d, h, k, src)
}

// Result summarizes a finished run.
type Result struct {
	Dataset  *Dataset
	Network  *Network
	Grid     *Grid
	Loss     float64
	Accuracy float64

	// History holds the loss at every logged iteration.
	History *net.LossHistory
	// NonFiniteIteration is the first iteration with a NaN or Inf loss, or -1.
	NonFiniteIteration int
}

// Run executes the whole pipeline described by cfg: build the point set,
// draw the raw scatter, train, score on the training set, sample the
// decision regions and draw them. Progress and the accuracy line go to out
// (stdout when nil).
func Run(cfg *Config, out io.Writer) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if out == nil {
		out = os.Stdout
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	// Data is drawn before the weights from the same source.
	src := NewSource(cfg.Seed)
	ds, err := loadOrGenerate(cfg, src)
	if err != nil {
		return nil, err
	}

	if cfg.DumpData != "" {
		if err := dataset.SaveCSV(cfg.DumpData, ds); err != nil {
			return nil, fmt.Errorf("dump data: %w", err)
		}
	}

	if err := render.SaveScatter(outputPath(cfg, RawImage), ds, render.DefaultScatterSize); err != nil {
		return nil, fmt.Errorf("render scatter: %w", err)
	}

	n, err := NewNetwork(ds.Dims(), cfg.Hidden, ds.Classes, src)
	if err != nil {
		return nil, fmt.Errorf("build network: %w", err)
	}
	n.Softmax = activations.Softmax{Stable: cfg.StableSoftmax}

	history := net.NewLossHistory(cfg.LogEvery)
	monitor := net.NewNonFiniteMonitor(out)
	callbacks := []net.Callback{
		net.Logger{Interval: cfg.LogEvery, Out: out},
		history,
		monitor,
	}

	var csvLogger *net.CSVLogger
	if cfg.LossCSV != "" {
		csvLogger = net.NewCSVLogger(outputPath(cfg, cfg.LossCSV), false, cfg.LogEvery)
		callbacks = append(callbacks, csvLogger)
	}

	finalLoss, err := n.Train(ds.X, ds.Y, net.TrainConfig{
		Iterations: cfg.Iterations,
		Optimizer:  opt.SGD{LearningRate: cfg.StepSize},
		Callbacks:  callbacks,
	})
	if err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	if csvLogger != nil {
		if err := csvLogger.Err(); err != nil {
			return nil, fmt.Errorf("loss csv: %w", err)
		}
	}

	acc := eval.TrainingAccuracy(n, ds)
	fmt.Fprintf(out, "training accuracy: %.2f\n", acc)

	grid, err := eval.GridFor(ds, eval.DefaultMargin, cfg.GridStep)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	grid.Sample(n)

	if err := render.SaveDecisionBoundary(outputPath(cfg, ResultImage), grid, ds); err != nil {
		return nil, fmt.Errorf("render decision boundary: %w", err)
	}

	return &Result{
		Dataset:            ds,
		Network:            n,
		Grid:               grid,
		Loss:               finalLoss,
		Accuracy:           acc,
		History:            history,
		NonFiniteIteration: monitor.Iteration,
	}, nil
}

func loadOrGenerate(cfg *Config, src rand.Source) (*Dataset, error) {
	if cfg.DataFile != "" {
		ds, err := dataset.LoadCSV(cfg.DataFile, true)
		if err != nil {
			return nil, fmt.Errorf("load data: %w", err)
		}
		if ds.Dims() != 2 {
			return nil, fmt.Errorf("load data: points must have 2 coordinates (got %d)", ds.Dims())
		}
		return ds, nil
	}
	ds, err := Spiral(cfg.Points, cfg.Classes, src)
	if err != nil {
		return nil, fmt.Errorf("generate data: %w", err)
	}
	return ds, nil
}

func outputPath(cfg *Config, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.OutputDir, name)
}
