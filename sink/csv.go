// Package sink writes simulation results: the final state as "re+imi"
// text, a content fingerprint, an HTML probability chart and a styled
// terminal summary.
package sink

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultFile is the file name the run command writes when no output path
// is configured.
const DefaultFile = "final_state_vector.csv"

// ErrFormat reports a line that is not a "re+imi" amplitude.
var ErrFormat = errors.New("sink: malformed amplitude line")

// WriteCSV writes one "re+imi" line per amplitude in logical order. The
// imaginary part is always preceded by a literal '+', so negative values
// appear as "+-" and +Inf as "+Inf". Values are printed with the fewest
// digits that round trip.
func WriteCSV(w io.Writer, amps []complex128) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 64)
	for _, a := range amps {
		buf = buf[:0]
		buf = strconv.AppendFloat(buf, real(a), 'g', -1, 64)
		buf = append(buf, '+')
		im := strconv.AppendFloat(nil, imag(a), 'g', -1, 64)
		buf = append(buf, bytes.TrimPrefix(im, []byte("+"))...)
		buf = append(buf, 'i', '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadCSV parses the output of WriteCSV. Blank lines are ignored; both
// "a+-bi" and "a-bi" are accepted.
func ReadCSV(r io.Reader) ([]complex128, error) {
	var amps []complex128
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		c, err := strconv.ParseComplex(strings.ReplaceAll(text, "+-", "-"), 128)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q", ErrFormat, line, text)
		}
		amps = append(amps, c)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return amps, nil
}
