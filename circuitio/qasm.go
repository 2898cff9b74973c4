package circuitio

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"qtermsv/qsim"
)

// Pre-compiled regexps for QASM parsing.
var (
	keywordRegex = regexp.MustCompile(`^[A-Za-z_]\w*`)
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]$`)
	gateRegex    = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(?:\(([^)]*)\))?\s*(.*)$`)
	operandRegex = regexp.MustCompile(`^(\w+)\s*(?:\[\s*(\d+)\s*\])?$`)
)

type register struct {
	offset int
	size   int
}

type qasmParser struct {
	regs  map[string]register
	prog  Program
	gates int
}

// ReadQASM parses an OpenQASM 2 program from r.
func ReadQASM(r io.Reader) (Program, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return Program{}, err
	}
	return ParseQASM(string(src))
}

// ParseQASM parses the OpenQASM 2 subset qtermsv simulates: qreg
// declarations, the catalog gates and swap. creg, barrier and measure are
// accepted and skipped. Everything else is an error.
func ParseQASM(src string) (Program, error) {
	ps := &qasmParser{regs: make(map[string]register)}

	for n, line := range strings.Split(src, "\n") {
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if err := ps.statement(stmt, n+1); err != nil {
				return Program{}, err
			}
		}
	}
	if ps.prog.Qubits == 0 {
		return Program{}, ErrNoQubits
	}
	return ps.prog, nil
}

func (ps *qasmParser) statement(stmt string, line int) error {
	switch keywordRegex.FindString(stmt) {
	case "OPENQASM", "include", "creg", "barrier", "measure":
		return nil
	case "qreg":
		return ps.qreg(stmt, line)
	case "gate", "opaque", "reset", "if":
		return fmt.Errorf("%w: line %d: %q", ErrUnsupportedGate, line, stmt)
	case "":
		return fmt.Errorf("%w: line %d: %q", ErrSyntax, line, stmt)
	}
	return ps.gate(stmt, line)
}

func (ps *qasmParser) qreg(stmt string, line int) error {
	m := qregRegex.FindStringSubmatch(stmt)
	if m == nil {
		return fmt.Errorf("%w: line %d: %q", ErrSyntax, line, stmt)
	}
	if _, dup := ps.regs[m[1]]; dup {
		return fmt.Errorf("%w: line %d: register %s declared twice", ErrSyntax, line, m[1])
	}
	size, _ := strconv.Atoi(m[2])
	if size == 0 {
		return fmt.Errorf("%w: line %d: empty register %s", ErrSyntax, line, m[1])
	}
	ps.regs[m[1]] = register{offset: ps.prog.Qubits, size: size}
	ps.prog.Qubits += size
	return nil
}

func (ps *qasmParser) gate(stmt string, line int) error {
	m := gateRegex.FindStringSubmatch(stmt)
	if m == nil {
		return fmt.Errorf("%w: line %d: %q", ErrSyntax, line, stmt)
	}
	e, ok := Lookup(m[1])
	if !ok {
		return fmt.Errorf("%w: line %d: %s", ErrUnsupportedGate, line, m[1])
	}
	params, err := parseParams(m[2])
	if err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	if len(params) != e.Params {
		return fmt.Errorf("%w: line %d: %s takes %d, got %d", ErrParam, line, e.Gate, e.Params, len(params))
	}
	var matrix []complex128
	if e.Gate != "swap" {
		u, err := e.Matrix(params)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		matrix = u[:]
	}

	tuples, err := ps.operands(m[3], e.Qubits)
	if err != nil {
		return fmt.Errorf("line %d: %w", line, err)
	}
	for _, q := range tuples {
		step := Step{
			Index:   ps.gates,
			Name:    e.Gate,
			Op:      e.Op,
			Control: qsim.NoControl,
			Target:  q[len(q)-1],
			Params:  params,
			Matrix:  matrix,
		}
		ps.gates++
		if e.Qubits == 1 {
			ps.prog.Steps = append(ps.prog.Steps, step)
			continue
		}
		if q[0] == q[1] {
			return fmt.Errorf("%w: line %d: %s uses qubit %d twice", ErrSyntax, line, e.Gate, q[0])
		}
		step.Control = q[0]
		if e.Gate != "swap" {
			ps.prog.Steps = append(ps.prog.Steps, step)
			continue
		}
		// swap a, b = cx a,b; cx b,a; cx a,b
		a, b := q[0], q[1]
		for _, cq := range [][2]int{{a, b}, {b, a}, {a, b}} {
			step.Control, step.Target = cq[0], cq[1]
			ps.prog.Steps = append(ps.prog.Steps, step)
		}
	}
	return nil
}

// operands resolves a comma separated operand list to qubit tuples. Whole
// registers broadcast: each one must have the same size, single qubits
// repeat.
func (ps *qasmParser) operands(text string, want int) ([][]int, error) {
	parts := strings.Split(text, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("%w: want %d operands, got %q", ErrSyntax, want, text)
	}

	resolved := make([][]int, len(parts))
	width := 1
	for i, part := range parts {
		m := operandRegex.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, fmt.Errorf("%w: bad operand %q", ErrSyntax, part)
		}
		reg, ok := ps.regs[m[1]]
		if !ok {
			return nil, fmt.Errorf("%w: unknown register %s", ErrSyntax, m[1])
		}
		if m[2] == "" {
			qs := make([]int, reg.size)
			for k := range qs {
				qs[k] = reg.offset + k
			}
			resolved[i] = qs
			if width > 1 && reg.size != width {
				return nil, fmt.Errorf("%w: register sizes differ in %q", ErrSyntax, text)
			}
			width = reg.size
			continue
		}
		idx, _ := strconv.Atoi(m[2])
		if idx >= reg.size {
			return nil, fmt.Errorf("%w: %s[%d] out of range", ErrSyntax, m[1], idx)
		}
		resolved[i] = []int{reg.offset + idx}
	}

	tuples := make([][]int, width)
	for k := range tuples {
		t := make([]int, len(resolved))
		for i, qs := range resolved {
			if len(qs) == 1 {
				t[i] = qs[0]
			} else {
				t[i] = qs[k]
			}
		}
		tuples[k] = t
	}
	return tuples, nil
}
