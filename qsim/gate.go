package qsim

import "fmt"

// NoControl marks a gate without a control qubit.
const NoControl = -1

// GateKind tells the engine which update rule a gate uses.
type GateKind int

const (
	// SingleQubit mixes each amplitude pair with the gate matrix.
	SingleQubit GateKind = iota
	// ControlledExchange swaps each pair whose control bit is 1.
	// The matrix is never read.
	ControlledExchange
	// ControlledUnitary mixes each pair whose control bit is 1 with the
	// gate matrix and leaves the rest unchanged.
	ControlledUnitary
)

func (k GateKind) String() string {
	switch k {
	case SingleQubit:
		return "single"
	case ControlledExchange:
		return "exchange"
	case ControlledUnitary:
		return "controlled-unitary"
	default:
		return "unknown"
	}
}

// Gate describes one circuit step. The zero value is not useful; build
// gates with NewGate, NewControlledExchange or NewControlledUnitary.
type Gate[T Scalar] struct {
	kind    GateKind
	target  int
	control int
	u       Matrix[T]
	name    string
}

// NewGate returns a single-qubit gate applying u to target.
func NewGate[T Scalar](target int, u Matrix[T]) Gate[T] {
	return Gate[T]{kind: SingleQubit, target: target, control: NoControl, u: u}
}

// NewControlledExchange returns the controlled amplitude exchange
// (controlled-NOT) on control and target.
func NewControlledExchange[T Scalar](control, target int) Gate[T] {
	return Gate[T]{kind: ControlledExchange, target: target, control: control}
}

// NewControlledUnitary returns a gate applying u to target wherever the
// control qubit is 1.
func NewControlledUnitary[T Scalar](control, target int, u Matrix[T]) Gate[T] {
	return Gate[T]{kind: ControlledUnitary, target: target, control: control, u: u}
}

// WithName returns a copy of g carrying a display name.
func (g Gate[T]) WithName(name string) Gate[T] {
	g.name = name
	return g
}

func (g Gate[T]) Kind() GateKind    { return g.kind }
func (g Gate[T]) Target() int       { return g.target }
func (g Gate[T]) Matrix() Matrix[T] { return g.u }
func (g Gate[T]) Name() string      { return g.name }

// Control returns the control qubit and whether the gate has one.
func (g Gate[T]) Control() (int, bool) {
	if g.kind == SingleQubit {
		return NoControl, false
	}
	return g.control, true
}

// Inverse returns the gate that undoes g. The exchange is its own inverse.
func (g Gate[T]) Inverse() (Gate[T], error) {
	if g.kind == ControlledExchange {
		return g, nil
	}
	inv, err := g.u.Inverse()
	if err != nil {
		return Gate[T]{}, err
	}
	g.u = inv
	return g, nil
}

func (g Gate[T]) String() string {
	name := g.name
	if name == "" {
		name = g.kind.String()
	}
	if g.kind == SingleQubit {
		return fmt.Sprintf("%s q[%d]", name, g.target)
	}
	return fmt.Sprintf("%s q[%d], q[%d]", name, g.control, g.target)
}

// check validates g against an n-qubit state.
func (g Gate[T]) check(n int) error {
	if g.target < 0 || g.target >= n {
		return fmt.Errorf("%w: target %d, qubits %d", ErrTargetRange, g.target, n)
	}
	if g.kind == SingleQubit {
		return nil
	}
	if g.control < 0 || g.control >= n {
		return fmt.Errorf("%w: control %d, qubits %d", ErrControlRange, g.control, n)
	}
	if g.control == g.target {
		return fmt.Errorf("%w: %d", ErrControlIsTarget, g.target)
	}
	return nil
}
