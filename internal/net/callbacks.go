package net

import (
	"fmt"
	"io"
	"math"
	"os"
)

// Callback defines the interface for training callbacks.
type Callback interface {
	OnTrainBegin(n *Network)
	OnTrainEnd(n *Network)
	OnIterationEnd(iteration int, loss float64, n *Network)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(n *Network)                                {}
func (c BaseCallback) OnTrainEnd(n *Network)                                  {}
func (c BaseCallback) OnIterationEnd(iteration int, loss float64, n *Network) {}

// DefaultLogInterval is how often the reference run reports its loss.
const DefaultLogInterval = 1000

// Logger logs training progress to Out (stdout when nil).
type Logger struct {
	BaseCallback
	Interval int
	Out      io.Writer
}

func (c Logger) OnIterationEnd(iteration int, loss float64, n *Network) {
	if c.Interval > 0 && iteration%c.Interval == 0 {
		fmt.Fprintf(writerOrStdout(c.Out), "iteration %d: loss %f\n", iteration, loss)
	}
}

// LossHistory records the loss every Interval iterations, starting at 0.
type LossHistory struct {
	BaseCallback
	Interval int

	Iterations []int
	Losses     []float64
}

func NewLossHistory(interval int) *LossHistory {
	return &LossHistory{Interval: interval}
}

func (c *LossHistory) OnIterationEnd(iteration int, loss float64, n *Network) {
	if c.Interval > 0 && iteration%c.Interval == 0 {
		c.Iterations = append(c.Iterations, iteration)
		c.Losses = append(c.Losses, loss)
	}
}

// NonFiniteMonitor reports the first iteration whose loss is NaN or Inf.
// Training carries on regardless.
type NonFiniteMonitor struct {
	BaseCallback
	Out io.Writer

	// Iteration is the first non-finite iteration, or -1.
	Iteration int
}

func NewNonFiniteMonitor(out io.Writer) *NonFiniteMonitor {
	return &NonFiniteMonitor{Out: out, Iteration: -1}
}

func (c *NonFiniteMonitor) OnTrainBegin(n *Network) {
	c.Iteration = -1
}

func (c *NonFiniteMonitor) OnIterationEnd(iteration int, loss float64, n *Network) {
	if c.Iteration >= 0 || !(math.IsNaN(loss) || math.IsInf(loss, 0)) {
		return
	}
	c.Iteration = iteration
	fmt.Fprintf(writerOrStdout(c.Out), "iteration %d: loss became %v, parameters are no longer reliable\n", iteration, loss)
}

func writerOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
