package qsim

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// Scan selects how controlled gates find the pairs they act on.
type Scan int

const (
	// Linear visits every index and tests its control and target bits.
	Linear Scan = iota
	// Block enumerates only the control-set blocks and skips target-set
	// runs inside them without visiting them.
	Block
)

func (s Scan) String() string {
	if s == Block {
		return "block"
	}
	return "linear"
}

// ParseScan accepts "linear" or "block".
func ParseScan(s string) (Scan, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "":
		return Linear, nil
	case "block", "skip":
		return Block, nil
	}
	return Linear, fmt.Errorf("qsim: unknown scan %q", s)
}

// DefaultGrain is the smallest number of work items handed to one worker.
const DefaultGrain = 1 << 12

// Engine applies gates to state vectors. It holds no per-call state and is
// safe for concurrent use on distinct vectors.
type Engine[T Scalar] struct {
	scan    Scan
	workers int
	grain   int
	logger  *log.Logger
}

// EngineOption configures NewEngine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	scan    Scan
	workers int
	grain   int
	logger  *log.Logger
}

// WithScan selects the controlled-gate scan. Default Block.
func WithScan(s Scan) EngineOption {
	return func(o *engineOptions) { o.scan = s }
}

// WithWorkers bounds the goroutines used inside one gate application.
// Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) { o.workers = n }
}

// WithGrain sets the minimum chunk size. Values below 1 mean DefaultGrain.
func WithGrain(n int) EngineOption {
	return func(o *engineOptions) { o.grain = n }
}

// WithLogger sets the logger used for per-gate debug records.
func WithLogger(l *log.Logger) EngineOption {
	return func(o *engineOptions) { o.logger = l }
}

// NewEngine returns an engine for scalar type T.
func NewEngine[T Scalar](opts ...EngineOption) *Engine[T] {
	o := engineOptions{scan: Block}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.grain < 1 {
		o.grain = DefaultGrain
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return &Engine[T]{scan: o.scan, workers: o.workers, grain: o.grain, logger: o.logger}
}

// Scan returns the configured controlled-gate scan.
func (e *Engine[T]) Scan() Scan { return e.scan }

// Apply writes g applied to src into dst. dst may be src. When they differ
// they must have the same qubit count; layouts and storage may differ.
// On a precondition failure dst is left untouched.
func (e *Engine[T]) Apply(dst, src *StateVector[T], g Gate[T]) error {
	if dst == nil || src == nil {
		return ErrNilState
	}
	if dst.qubits != src.qubits {
		return fmt.Errorf("%w: %d != %d", ErrQubitMismatch, dst.qubits, src.qubits)
	}
	if err := g.check(src.qubits); err != nil {
		return err
	}

	e.logger.Debug("apply", "gate", g.String(), "kind", g.kind, "scan", e.scan, "layout", src.layout)

	switch g.kind {
	case SingleQubit:
		e.applySingle(dst, src, g.target, g.u)
	case ControlledExchange:
		e.applyControlled(dst, src, g.control, g.target, exchange[T])
	case ControlledUnitary:
		u := g.u
		e.applyControlled(dst, src, g.control, g.target, func(dst, src *StateVector[T], i, j int) {
			mix(dst, src, i, j, u)
		})
	}
	return nil
}

// pairOp updates the pair (i, j), i having target bit 0 and j = i | 1<<t.
// Both inputs are read before either output is written so dst may be src.
type pairOp[T Scalar] func(dst, src *StateVector[T], i, j int)

func mix[T Scalar](dst, src *StateVector[T], i, j int, u Matrix[T]) {
	a, b := src.At(i), src.At(j)
	dst.Set(i, u[0].Mul(a).Add(u[1].Mul(b)))
	dst.Set(j, u[2].Mul(a).Add(u[3].Mul(b)))
}

func exchange[T Scalar](dst, src *StateVector[T], i, j int) {
	a, b := src.At(i), src.At(j)
	dst.Set(i, b)
	dst.Set(j, a)
}

// applySingle visits every index and owns the pair only from its lower
// member, so every pair is written exactly once.
func (e *Engine[T]) applySingle(dst, src *StateVector[T], target int, u Matrix[T]) {
	bit := 1 << target
	e.parallel(src.size, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			partner := i ^ bit
			if i < partner {
				mix(dst, src, i, partner, u)
			}
		}
	})
}

func (e *Engine[T]) applyControlled(dst, src *StateVector[T], control, target int, op pairOp[T]) {
	if dst != src {
		e.parallel(src.size, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				dst.Set(i, src.At(i))
			}
		})
	}
	if e.scan == Block {
		e.blockScan(dst, src, control, target, op)
		return
	}
	e.linearScan(dst, src, control, target, op)
}

func (e *Engine[T]) linearScan(dst, src *StateVector[T], control, target int, op pairOp[T]) {
	cbit, tbit := 1<<control, 1<<target
	e.parallel(src.size, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if i&cbit != 0 && i&tbit == 0 {
				op(dst, src, i, i|tbit)
			}
		}
	})
}

// blockScan walks the blocks of 2^control indices that start at odd
// multiples of 2^control; those are exactly the indices with the control
// bit set. Inside a block the target bit is either constant (target above
// control) or periodic with period 2^(target+1), and only its zero runs
// are visited.
func (e *Engine[T]) blockScan(dst, src *StateVector[T], control, target int, op pairOp[T]) {
	size := 1 << control
	stride := size << 1
	tbit := 1 << target
	blocks := src.size / stride

	e.parallel(blocks, func(lo, hi int) {
		for b := lo; b < hi; b++ {
			start := b*stride + size
			end := start + size
			if target > control {
				if start&tbit != 0 {
					continue
				}
				for i := start; i < end; i++ {
					op(dst, src, i, i|tbit)
				}
				continue
			}
			period := tbit << 1
			for base := start; base < end; base += period {
				for i := base; i < base+tbit; i++ {
					op(dst, src, i, i|tbit)
				}
			}
		}
	})
}

// parallel splits [0, n) into contiguous chunks and runs body on each,
// using at most e.workers goroutines. Small ranges run on the caller.
func (e *Engine[T]) parallel(n int, body func(lo, hi int)) {
	chunks := min(e.workers, n/e.grain)
	if chunks <= 1 {
		body(0, n)
		return
	}
	step := (n + chunks - 1) / chunks

	var g errgroup.Group
	g.SetLimit(e.workers)
	for lo := 0; lo < n; lo += step {
		hi := min(lo+step, n)
		g.Go(func() error {
			body(lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
