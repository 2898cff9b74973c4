package circuitio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"qtermsv/qsim"
)

// qubitColumn is the header column holding the qubit count.
const qubitColumn = 5

// ReadCSV parses a gate list. The header's sixth column is the qubit
// count. Each following row is: gate number, gate name, control (empty or
// NaN for none), target, then the matrix in the remaining columns.
func ReadCSV(r io.Reader) (Program, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Program{}, ErrNoQubits
	}
	if err != nil {
		return Program{}, fmt.Errorf("%w: header: %v", ErrSyntax, err)
	}
	if len(header) <= qubitColumn {
		return Program{}, fmt.Errorf("%w: header has %d columns", ErrNoQubits, len(header))
	}
	qubits, err := strconv.Atoi(strings.TrimSpace(header[qubitColumn]))
	if err != nil || qubits < 1 {
		return Program{}, fmt.Errorf("%w: header column %d is %q", ErrNoQubits, qubitColumn+1, header[qubitColumn])
	}

	p := Program{Qubits: qubits}
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Program{}, fmt.Errorf("%w: row %d: %v", ErrSyntax, row, err)
		}
		if blank(fields) {
			continue
		}
		step, err := parseRow(fields)
		if err != nil {
			return Program{}, fmt.Errorf("row %d: %w", row, err)
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

func blank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(fields []string) (Step, error) {
	if len(fields) < 4 {
		return Step{}, fmt.Errorf("%w: %d columns, want at least 4", ErrSyntax, len(fields))
	}
	index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Step{}, fmt.Errorf("%w: gate number %q", ErrSyntax, fields[0])
	}
	step := Step{
		Index:   index,
		Name:    strings.TrimSpace(fields[1]),
		Op:      OpSingle,
		Control: qsim.NoControl,
	}

	if c := strings.TrimSpace(fields[2]); c != "" && !strings.EqualFold(c, "nan") {
		control, err := parseQubit(c)
		if err != nil {
			return Step{}, fmt.Errorf("%w: control %q", ErrSyntax, c)
		}
		step.Control = control
		step.Op = OpControlled
	}
	step.Target, err = parseQubit(strings.TrimSpace(fields[3]))
	if err != nil {
		return Step{}, fmt.Errorf("%w: target %q", ErrSyntax, fields[3])
	}

	// controlled rows may omit the matrix; only unitary mode reads it
	text := ""
	if len(fields) > 4 {
		text = strings.Join(fields[4:], ",")
	}
	if step.Op == OpControlled && strings.Trim(matrixCutset.Replace(text), ",") == "" {
		return step, nil
	}
	step.Matrix, err = parseMatrix(text)
	if err != nil {
		return Step{}, err
	}
	if step.Op == OpSingle && len(step.Matrix) != 4 {
		return Step{}, fmt.Errorf("%w: %d, want 4", ErrMatrixShape, len(step.Matrix))
	}
	return step, nil
}

// parseQubit accepts "3" as well as "3.0", which spreadsheet exports write
// for columns that also hold NaN.
func parseQubit(s string) (int, error) {
	if q, err := strconv.Atoi(s); err == nil {
		return q, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("not a qubit index: %q", s)
	}
	return int(f), nil
}

var matrixCutset = strings.NewReplacer("[", "", "]", "", "(", "", ")", "", " ", "", `"`, "", "\t", "")

// parseMatrix reads a flat list of complex entries written as a, bj, a+bj
// or a-bj. Brackets, parentheses, quotes and spaces are ignored.
func parseMatrix(s string) ([]complex128, error) {
	clean := strings.Trim(matrixCutset.Replace(s), ",")
	if clean == "" {
		return nil, fmt.Errorf("%w: empty matrix", ErrMatrixShape)
	}
	var out []complex128
	for _, tok := range strings.Split(clean, ",") {
		c, err := parseEntry(tok)
		if err != nil {
			return nil, fmt.Errorf("%w: matrix entry %q", ErrSyntax, tok)
		}
		out = append(out, c)
	}
	return out, nil
}

func parseEntry(tok string) (complex128, error) {
	tok = strings.ReplaceAll(strings.ToLower(tok), "j", "i")
	tok = strings.ReplaceAll(tok, "+-", "-")
	if tok == "i" || tok == "+i" || tok == "-i" {
		tok = strings.Replace(tok, "i", "1i", 1)
	}
	return strconv.ParseComplex(tok, 128)
}
