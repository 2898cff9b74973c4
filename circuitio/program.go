// Package circuitio reads circuits from the formats qtermsv understands and
// turns them into qsim circuits.
//
// Two sources are supported: the gate list CSV written by the circuit
// generator (one row per gate, matrix given inline) and a subset of
// OpenQASM 2. Both produce a Program, a precision-independent list of steps
// that Build converts to a qsim.Circuit at the chosen precision.
package circuitio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"qtermsv/qsim"
)

var (
	ErrSyntax          = errors.New("circuitio: syntax error")
	ErrUnsupportedGate = errors.New("circuitio: unsupported gate")
	ErrMatrixShape     = errors.New("circuitio: matrix has the wrong number of entries")
	ErrParam           = errors.New("circuitio: bad gate parameter")
	ErrNoQubits        = errors.New("circuitio: qubit count missing")
	ErrUnknownFormat   = errors.New("circuitio: unknown circuit format")
)

// Op says how a Step is turned into a qsim gate.
type Op int

const (
	// OpSingle applies Matrix to Target.
	OpSingle Op = iota
	// OpControlled is a gate list row with a control column. Whether it
	// becomes an exchange or a controlled unitary depends on ControlledMode.
	OpControlled
	// OpExchange is always the controlled amplitude exchange.
	OpExchange
	// OpControlledUnitary always applies Matrix to Target under Control.
	OpControlledUnitary
)

// Step is one gate of a Program.
type Step struct {
	Index   int // gate number in the source
	Name    string
	Op      Op
	Control int // qsim.NoControl for OpSingle
	Target  int
	Params  []float64
	Matrix  []complex128 // row-major, 4 or 16 entries; nil for OpExchange
}

// Label renders the step the way a QASM line would name it.
func (s Step) Label() string {
	if len(s.Params) == 0 {
		return s.Name
	}
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = FormatParam(p)
	}
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(parts, ","))
}

// Qubits lists the qubits the step touches, control first.
func (s Step) Qubits() []int {
	if s.Op == OpSingle {
		return []int{s.Target}
	}
	return []int{s.Control, s.Target}
}

// Program is a parsed circuit, independent of precision.
type Program struct {
	Name   string
	Qubits int
	Steps  []Step
}

// ControlledMode decides what gate list rows with a control qubit become.
type ControlledMode int

const (
	// Exchange ignores the row's matrix and applies the controlled
	// amplitude exchange.
	Exchange ControlledMode = iota
	// Unitary applies the row's 2x2 matrix, or the lower-right block of a
	// 4x4 matrix, wherever the control qubit is 1.
	Unitary
)

func (m ControlledMode) String() string {
	if m == Unitary {
		return "unitary"
	}
	return "exchange"
}

// ParseControlledMode accepts "exchange" or "unitary".
func ParseControlledMode(s string) (ControlledMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exchange", "":
		return Exchange, nil
	case "unitary":
		return Unitary, nil
	}
	return Exchange, fmt.Errorf("circuitio: unknown controlled mode %q", s)
}

// Load reads a circuit file, choosing the reader by extension.
func Load(path string) (Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return Program{}, err
	}
	defer f.Close()

	var p Program
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		p, err = ReadCSV(f)
	case ".qasm", ".qasm2":
		p, err = ReadQASM(f)
	default:
		return Program{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	if err != nil {
		return Program{}, fmt.Errorf("%s: %w", path, err)
	}
	p.Name = filepath.Base(path)
	return p, nil
}

// Build converts p to a circuit at precision T. Nothing is returned unless
// every step converts and the whole circuit validates.
func Build[T qsim.Scalar](p Program, mode ControlledMode) (qsim.Circuit[T], error) {
	c := qsim.Circuit[T]{Qubits: p.Qubits, Gates: make([]qsim.Gate[T], 0, len(p.Steps))}
	for _, s := range p.Steps {
		g, err := buildGate[T](s, mode)
		if err != nil {
			return qsim.Circuit[T]{}, fmt.Errorf("circuitio: gate %d (%s): %w", s.Index, s.Name, err)
		}
		c.Gates = append(c.Gates, g.WithName(s.Label()))
	}
	if err := c.Validate(); err != nil {
		return qsim.Circuit[T]{}, err
	}
	return c, nil
}

func buildGate[T qsim.Scalar](s Step, mode ControlledMode) (qsim.Gate[T], error) {
	op := s.Op
	if op == OpControlled {
		op = OpExchange
		if mode == Unitary {
			op = OpControlledUnitary
		}
	}

	switch op {
	case OpExchange:
		return qsim.NewControlledExchange[T](s.Control, s.Target), nil
	case OpSingle:
		if len(s.Matrix) != 4 {
			return qsim.Gate[T]{}, fmt.Errorf("%w: %d, want 4", ErrMatrixShape, len(s.Matrix))
		}
		return qsim.NewGate(s.Target, qsim.MatrixOf[T](block2(s.Matrix))), nil
	case OpControlledUnitary:
		switch len(s.Matrix) {
		case 4:
			return qsim.NewControlledUnitary(s.Control, s.Target, qsim.MatrixOf[T](block2(s.Matrix))), nil
		case 16:
			m := s.Matrix
			return qsim.NewControlledUnitary(s.Control, s.Target, qsim.MatrixOf[T]([4]complex128{m[10], m[11], m[14], m[15]})), nil
		}
		return qsim.Gate[T]{}, fmt.Errorf("%w: %d, want 4 or 16", ErrMatrixShape, len(s.Matrix))
	}
	return qsim.Gate[T]{}, fmt.Errorf("%w: op %d", ErrUnsupportedGate, s.Op)
}

func block2(m []complex128) [4]complex128 {
	return [4]complex128{m[0], m[1], m[2], m[3]}
}
