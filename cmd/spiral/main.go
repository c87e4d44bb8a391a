package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/FlavioCFOliveira/spiralnet/internal/config"
	"github.com/FlavioCFOliveira/spiralnet/spiralnet"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("spiral", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (defaults when empty)")
	points := fs.Int("points", 0, "Points per class")
	classes := fs.Int("classes", 0, "Number of spiral arms")
	hidden := fs.Int("hidden", 0, "Hidden layer width")
	iterations := fs.Int("iterations", 0, "Number of training iterations")
	stepSize := fs.Float64("step-size", 0, "Gradient descent step size")
	seed := fs.Uint64("seed", 0, "PRNG seed")
	logEvery := fs.Int("log-every", 0, "Log the loss every N iterations")
	gridStep := fs.Float64("grid-step", 0, "Decision grid spacing")
	outDir := fs.String("out", "", "Directory for the rendered images")
	dataFile := fs.String("data", "", "Train on points from this CSV instead of generating them")
	dumpData := fs.String("dump-data", "", "Write the training points to this CSV")
	stable := fs.Bool("stable-softmax", false, "Subtract the row max before exponentiating")
	lossCSV := fs.String("loss-csv", "", "Write logged losses to this CSV")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	overrides := config.Overrides{
		Points:     *points,
		Classes:    *classes,
		Hidden:     *hidden,
		Iterations: *iterations,
		StepSize:   *stepSize,
		LogEvery:   *logEvery,
		GridStep:   *gridStep,
		OutputDir:  *outDir,
		LossCSV:    *lossCSV,
		DataFile:   *dataFile,
		DumpData:   *dumpData,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			overrides.Seed = seed
		case "stable-softmax":
			overrides.StableSoftmax = stable
		}
	})
	cfg.ApplyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log.Printf("points=%d classes=%d hidden=%d iterations=%d step_size=%g seed=%d",
		cfg.Points, cfg.Classes, cfg.Hidden, cfg.Iterations, cfg.StepSize, cfg.Seed)

	res, err := spiralnet.Run(cfg, stdout)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	if res.NonFiniteIteration >= 0 {
		log.Printf("warning: loss became non-finite at iteration %d", res.NonFiniteIteration)
	}
	log.Printf("wrote %s and %s to %s", spiralnet.RawImage, spiralnet.ResultImage, cfg.OutputDir)
	return nil
}
