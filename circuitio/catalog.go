package circuitio

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

// Entry describes one gate qtermsv can simulate.
type Entry struct {
	Name    string // display name
	Gate    string // QASM mnemonic
	Symbol  string
	Qubits  int
	Params  int
	Example string // sample argument list for parameterized gates
	Op      Op
	base    string // single-qubit gate applied under the control
}

// Category groups related entries.
type Category struct {
	Name    string
	Entries []Entry
}

// Catalog lists every supported gate, grouped the way the gates command
// prints them.
var Catalog = []Category{
	{
		Name: "Single Qubit",
		Entries: []Entry{
			{Name: "Hadamard", Gate: "h", Symbol: "H"},
			{Name: "Pauli-X (NOT)", Gate: "x", Symbol: "X"},
			{Name: "Pauli-Y", Gate: "y", Symbol: "Y"},
			{Name: "Pauli-Z", Gate: "z", Symbol: "Z"},
			{Name: "Identity", Gate: "id", Symbol: "I"},
			{Name: "Phase (S)", Gate: "s", Symbol: "S"},
			{Name: "Phase Dagger (S†)", Gate: "sdg", Symbol: "S†"},
			{Name: "T Gate", Gate: "t", Symbol: "T"},
			{Name: "T Dagger (T†)", Gate: "tdg", Symbol: "T†"},
			{Name: "√X (SX)", Gate: "sx", Symbol: "√X"},
			{Name: "√X Dagger", Gate: "sxdg", Symbol: "√X†"},
			{Name: "√Y (SY)", Gate: "sy", Symbol: "√Y"},
		},
	},
	{
		Name: "Rotation",
		Entries: []Entry{
			{Name: "Rotate X", Gate: "rx", Symbol: "RX", Params: 1, Example: "pi/2"},
			{Name: "Rotate Y", Gate: "ry", Symbol: "RY", Params: 1, Example: "pi/2"},
			{Name: "Rotate Z", Gate: "rz", Symbol: "RZ", Params: 1, Example: "pi/2"},
			{Name: "Phase Shift", Gate: "p", Symbol: "P", Params: 1, Example: "pi/4"},
			{Name: "Universal U1", Gate: "u1", Symbol: "U1", Params: 1, Example: "lambda"},
			{Name: "Universal U2", Gate: "u2", Symbol: "U2", Params: 2, Example: "phi,lambda"},
			{Name: "Universal U3", Gate: "u3", Symbol: "U3", Params: 3, Example: "theta,phi,lambda"},
		},
	},
	{
		Name: "Multi Qubit",
		Entries: []Entry{
			{Name: "CNOT", Gate: "cx", Symbol: "●─⊕", Qubits: 2, Op: OpExchange, base: "x"},
			{Name: "Controlled-Y", Gate: "cy", Symbol: "●─Y", Qubits: 2, Op: OpControlledUnitary, base: "y"},
			{Name: "Controlled-Z", Gate: "cz", Symbol: "●─●", Qubits: 2, Op: OpControlledUnitary, base: "z"},
			{Name: "Controlled-H", Gate: "ch", Symbol: "●─H", Qubits: 2, Op: OpControlledUnitary, base: "h"},
			{Name: "SWAP", Gate: "swap", Symbol: "×─×", Qubits: 2, Op: OpExchange},
			{Name: "C-Rotate X", Gate: "crx", Symbol: "●─RX", Qubits: 2, Params: 1, Example: "pi/2", Op: OpControlledUnitary, base: "rx"},
			{Name: "C-Rotate Y", Gate: "cry", Symbol: "●─RY", Qubits: 2, Params: 1, Example: "pi/2", Op: OpControlledUnitary, base: "ry"},
			{Name: "C-Rotate Z", Gate: "crz", Symbol: "●─RZ", Qubits: 2, Params: 1, Example: "pi/2", Op: OpControlledUnitary, base: "rz"},
			{Name: "C-Phase", Gate: "cp", Symbol: "●─P", Qubits: 2, Params: 1, Example: "lambda", Op: OpControlledUnitary, base: "p"},
			{Name: "C-Phase (CU1)", Gate: "cu1", Symbol: "●─U1", Qubits: 2, Params: 1, Example: "lambda", Op: OpControlledUnitary, base: "u1"},
		},
	},
}

var aliases = map[string]string{
	"i":       "id",
	"cnot":    "cx",
	"phase":   "p",
	"u":       "u3",
	"toffoli": "ccx",
}

var entries = indexCatalog()

func indexCatalog() map[string]Entry {
	m := make(map[string]Entry)
	for _, cat := range Catalog {
		for _, e := range cat.Entries {
			if e.Qubits == 0 {
				e.Qubits = 1
			}
			m[e.Gate] = e
		}
	}
	return m
}

// Lookup finds a gate by mnemonic, case-insensitively.
func Lookup(name string) (Entry, bool) {
	name = strings.ToLower(name)
	if a, ok := aliases[name]; ok {
		name = a
	}
	e, ok := entries[name]
	return e, ok
}

// Matrix returns the 2x2 matrix the entry applies to its target, under the
// control for two-qubit entries. The exchange entries have none.
func (e Entry) Matrix(params []float64) ([4]complex128, error) {
	if len(params) != e.Params {
		return [4]complex128{}, fmt.Errorf("%w: %s takes %d, got %d", ErrParam, e.Gate, e.Params, len(params))
	}
	name := e.Gate
	if e.base != "" {
		name = e.base
	}
	return unitary(name, params)
}

func expi(x float64) complex128 { return cmplx.Exp(complex(0, x)) }

func unitary(name string, p []float64) ([4]complex128, error) {
	h := complex(1/math.Sqrt2, 0)
	switch name {
	case "id":
		return [4]complex128{1, 0, 0, 1}, nil
	case "h":
		return [4]complex128{h, h, h, -h}, nil
	case "x":
		return [4]complex128{0, 1, 1, 0}, nil
	case "y":
		return [4]complex128{0, -1i, 1i, 0}, nil
	case "z":
		return [4]complex128{1, 0, 0, -1}, nil
	case "s":
		return [4]complex128{1, 0, 0, 1i}, nil
	case "sdg":
		return [4]complex128{1, 0, 0, -1i}, nil
	case "t":
		return [4]complex128{1, 0, 0, expi(math.Pi / 4)}, nil
	case "tdg":
		return [4]complex128{1, 0, 0, expi(-math.Pi / 4)}, nil
	case "sx":
		return [4]complex128{0.5 + 0.5i, 0.5 - 0.5i, 0.5 - 0.5i, 0.5 + 0.5i}, nil
	case "sxdg":
		return [4]complex128{0.5 - 0.5i, 0.5 + 0.5i, 0.5 + 0.5i, 0.5 - 0.5i}, nil
	case "sy":
		return [4]complex128{0.5 + 0.5i, -0.5 - 0.5i, 0.5 + 0.5i, 0.5 + 0.5i}, nil
	case "rx":
		c, s := math.Cos(p[0]/2), math.Sin(p[0]/2)
		return [4]complex128{complex(c, 0), complex(0, -s), complex(0, -s), complex(c, 0)}, nil
	case "ry":
		c, s := math.Cos(p[0]/2), math.Sin(p[0]/2)
		return [4]complex128{complex(c, 0), complex(-s, 0), complex(s, 0), complex(c, 0)}, nil
	case "rz":
		return [4]complex128{expi(-p[0] / 2), 0, 0, expi(p[0] / 2)}, nil
	case "p", "u1":
		return [4]complex128{1, 0, 0, expi(p[0])}, nil
	case "u2":
		phi, lam := p[0], p[1]
		return [4]complex128{h, -h * expi(lam), h * expi(phi), h * expi(phi+lam)}, nil
	case "u3":
		c, s := complex(math.Cos(p[0]/2), 0), complex(math.Sin(p[0]/2), 0)
		phi, lam := p[1], p[2]
		return [4]complex128{c, -expi(lam) * s, expi(phi) * s, expi(phi+lam) * c}, nil
	}
	return [4]complex128{}, fmt.Errorf("%w: %s", ErrUnsupportedGate, name)
}
