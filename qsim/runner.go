package qsim

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// Circuit is an ordered list of gates over a fixed number of qubits.
type Circuit[T Scalar] struct {
	Qubits int
	Gates  []Gate[T]
}

// Validate checks every gate against the qubit count.
func (c Circuit[T]) Validate() error {
	if c.Qubits < 1 || c.Qubits > MaxQubits {
		return fmt.Errorf("%w: %d", ErrQubitCount, c.Qubits)
	}
	for k, g := range c.Gates {
		if err := g.check(c.Qubits); err != nil {
			return &GateError{Step: k, Gate: g.String(), Err: err}
		}
	}
	return nil
}

// Executor applies one gate, reading src and writing dst. *Engine is the
// in-process executor; other implementations marshal state elsewhere.
type Executor[T Scalar] interface {
	Apply(dst, src *StateVector[T], g Gate[T]) error
}

// Observer sees the committed state after each step. It must not keep s
// past the call; clone it if needed.
type Observer[T Scalar] func(step int, g Gate[T], s *StateVector[T])

// Runner applies circuits strictly in order.
type Runner[T Scalar] struct {
	exec         Executor[T]
	logger       *log.Logger
	doubleBuffer bool
	observe      Observer[T]
}

// RunnerOption configures NewRunner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	logger       *log.Logger
	doubleBuffer bool
}

// WithRunnerLogger sets the logger for run-level records.
func WithRunnerLogger(l *log.Logger) RunnerOption {
	return func(o *runnerOptions) { o.logger = l }
}

// WithDoubleBuffer makes the runner apply each gate from one state into a
// second one and swap them, instead of updating in place.
func WithDoubleBuffer(on bool) RunnerOption {
	return func(o *runnerOptions) { o.doubleBuffer = on }
}

// NewRunner returns a runner over exec.
func NewRunner[T Scalar](exec Executor[T], opts ...RunnerOption) *Runner[T] {
	var o runnerOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return &Runner[T]{exec: exec, logger: o.logger, doubleBuffer: o.doubleBuffer}
}

// OnStep registers fn to run after every committed gate.
func (r *Runner[T]) OnStep(fn Observer[T]) *Runner[T] {
	r.observe = fn
	return r
}

// Run applies c to s gate by gate. The context is checked before each gate;
// a cancelled run leaves s holding the output of the last committed gate.
// The first failing gate aborts the run.
func (r *Runner[T]) Run(ctx context.Context, s *StateVector[T], c Circuit[T]) error {
	if s == nil {
		return ErrNilState
	}
	if c.Qubits != s.qubits {
		return fmt.Errorf("%w: circuit %d, state %d", ErrQubitMismatch, c.Qubits, s.qubits)
	}

	start := time.Now()
	r.logger.Info("run start", "qubits", c.Qubits, "gates", len(c.Gates), "layout", s.layout, "storage", s.kind)

	cur := s
	var spare *StateVector[T]
	if r.doubleBuffer {
		spare = s.Clone()
	}
	defer func() {
		if cur != s {
			s.CopyFrom(cur)
		}
	}()

	for k, g := range c.Gates {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run abandoned", "step", k, "err", err)
			return fmt.Errorf("qsim: run abandoned before step %d: %w", k, err)
		}
		dst := cur
		if r.doubleBuffer {
			dst = spare
		}
		if err := r.exec.Apply(dst, cur, g); err != nil {
			r.logger.Error("gate failed", "step", k, "gate", g.String(), "err", err)
			return &GateError{Step: k, Gate: g.String(), Err: err}
		}
		if r.doubleBuffer {
			cur, spare = dst, cur
		}
		if r.observe != nil {
			r.observe(k, g, cur)
		}
	}

	r.logger.Info("run done", "gates", len(c.Gates), "elapsed", time.Since(start))
	return nil
}
