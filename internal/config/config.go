// Package config holds the knobs of a spiral training run.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Points        int     `yaml:"points"`
	Classes       int     `yaml:"classes"`
	Hidden        int     `yaml:"hidden"`
	Iterations    int     `yaml:"iterations"`
	StepSize      float64 `yaml:"step_size"`
	Seed          uint64  `yaml:"seed"`
	LogEvery      int     `yaml:"log_every"`
	GridStep      float64 `yaml:"grid_step"`
	OutputDir     string  `yaml:"output_dir"`
	StableSoftmax bool    `yaml:"stable_softmax"`
	LossCSV       string  `yaml:"loss_csv"`
	DataFile      string  `yaml:"data_file"`
	DumpData      string  `yaml:"dump_data"`
}

// Default returns the reference configuration: 3 arms of 50 points, 50
// hidden units, 20000 iterations at step size 1.0, seed 0.
func Default() *Config {
	return &Config{
		Points:     50,
		Classes:    3,
		Hidden:     50,
		Iterations: 20000,
		StepSize:   1.0,
		Seed:       0,
		LogEvery:   1000,
		GridStep:   0.02,
		OutputDir:  ".",
	}
}

// Overrides captures CLI supplied values. Zero values leave the config
// untouched; pointer fields distinguish an explicit zero or false.
type Overrides struct {
	Points        int
	Classes       int
	Hidden        int
	Iterations    int
	StepSize      float64
	Seed          *uint64
	LogEvery      int
	GridStep      float64
	OutputDir     string
	StableSoftmax *bool
	LossCSV       string
	DataFile      string
	DumpData      string
}

// Load reads a Config from YAML on top of Default and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Points > 0 {
		c.Points = o.Points
	}
	if o.Classes > 0 {
		c.Classes = o.Classes
	}
	if o.Hidden > 0 {
		c.Hidden = o.Hidden
	}
	if o.Iterations > 0 {
		c.Iterations = o.Iterations
	}
	if o.StepSize > 0 {
		c.StepSize = o.StepSize
	}
	if o.Seed != nil {
		c.Seed = *o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.GridStep > 0 {
		c.GridStep = o.GridStep
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.StableSoftmax != nil {
		c.StableSoftmax = *o.StableSoftmax
	}
	if o.LossCSV != "" {
		c.LossCSV = o.LossCSV
	}
	if o.DataFile != "" {
		c.DataFile = o.DataFile
	}
	if o.DumpData != "" {
		c.DumpData = o.DumpData
	}
}

// Validate verifies the config is runnable. It never modifies c.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.DataFile == "" {
		if c.Points <= 0 {
			return fmt.Errorf("points must be > 0 (got %d)", c.Points)
		}
		if c.Classes <= 0 {
			return fmt.Errorf("classes must be > 0 (got %d)", c.Classes)
		}
	}
	if c.Hidden <= 0 {
		return fmt.Errorf("hidden must be > 0 (got %d)", c.Hidden)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be > 0 (got %d)", c.Iterations)
	}
	if !(c.StepSize > 0) {
		return fmt.Errorf("step_size must be > 0 (got %v)", c.StepSize)
	}
	if !(c.GridStep > 0) {
		return fmt.Errorf("grid_step must be > 0 (got %v)", c.GridStep)
	}
	if c.LogEvery <= 0 {
		return fmt.Errorf("log_every must be > 0 (got %d)", c.LogEvery)
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	return nil
}

// Parse reads "key: value" lines on top of Default. Blank lines and lines
// starting with '#' are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("line %d: missing ':'", lineNo)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, "\"'")

		var err error
		switch key {
		case "points":
			cfg.Points, err = strconv.Atoi(value)
		case "classes":
			cfg.Classes, err = strconv.Atoi(value)
		case "hidden":
			cfg.Hidden, err = strconv.Atoi(value)
		case "iterations":
			cfg.Iterations, err = strconv.Atoi(value)
		case "step_size":
			cfg.StepSize, err = strconv.ParseFloat(value, 64)
		case "seed":
			cfg.Seed, err = strconv.ParseUint(value, 10, 64)
		case "log_every":
			cfg.LogEvery, err = strconv.Atoi(value)
		case "grid_step":
			cfg.GridStep, err = strconv.ParseFloat(value, 64)
		case "output_dir":
			cfg.OutputDir = value
		case "stable_softmax":
			cfg.StableSoftmax, err = strconv.ParseBool(value)
		case "loss_csv":
			cfg.LossCSV = value
		case "data_file":
			cfg.DataFile = value
		case "dump_data":
			cfg.DumpData = value
		default:
			return nil, fmt.Errorf("line %d: unknown key %s", lineNo, key)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", lineNo, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
