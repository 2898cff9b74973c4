package qsim

import (
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
)

// Scalar is the real type amplitude arithmetic runs in.
type Scalar interface {
	constraints.Float
}

// Amplitude is a complex number at precision T.
type Amplitude[T Scalar] struct {
	Re, Im T
}

// AmplitudeOf rounds a complex128 to precision T.
func AmplitudeOf[T Scalar](c complex128) Amplitude[T] {
	return Amplitude[T]{Re: T(real(c)), Im: T(imag(c))}
}

// Add returns a + b.
func (a Amplitude[T]) Add(b Amplitude[T]) Amplitude[T] {
	return Amplitude[T]{Re: a.Re + b.Re, Im: a.Im + b.Im}
}

// Mul returns a * b.
func (a Amplitude[T]) Mul(b Amplitude[T]) Amplitude[T] {
	return Amplitude[T]{
		Re: a.Re*b.Re - a.Im*b.Im,
		Im: a.Re*b.Im + a.Im*b.Re,
	}
}

// Complex128 widens the amplitude to complex128.
func (a Amplitude[T]) Complex128() complex128 {
	return complex(float64(a.Re), float64(a.Im))
}

// Precision selects the numeric format of a state vector.
type Precision int

const (
	Double Precision = iota // float64 storage and arithmetic
	Single                  // float32 storage and arithmetic
	Half                    // binary16 storage, float32 arithmetic
)

func (p Precision) String() string {
	switch p {
	case Double:
		return "double"
	case Single:
		return "single"
	case Half:
		return "half"
	default:
		return "unknown"
	}
}

// ParsePrecision accepts "double", "single" or "half" (and the aliases
// "f64", "f32", "f16").
func ParsePrecision(s string) (Precision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "double", "f64", "float64":
		return Double, nil
	case "single", "f32", "float32", "float":
		return Single, nil
	case "half", "f16", "float16":
		return Half, nil
	}
	return Double, fmt.Errorf("qsim: unknown precision %q", s)
}

// Matrix is a 2x2 gate matrix in row-major order: u00, u01, u10, u11.
type Matrix[T Scalar] [4]Amplitude[T]

// MatrixOf rounds a complex128 matrix to precision T.
func MatrixOf[T Scalar](m [4]complex128) Matrix[T] {
	var u Matrix[T]
	for i, c := range m {
		u[i] = AmplitudeOf[T](c)
	}
	return u
}

// Identity returns the 2x2 identity.
func Identity[T Scalar]() Matrix[T] {
	return Matrix[T]{{Re: 1}, {}, {}, {Re: 1}}
}

// Complex128 widens every entry.
func (u Matrix[T]) Complex128() [4]complex128 {
	var m [4]complex128
	for i, a := range u {
		m[i] = a.Complex128()
	}
	return m
}

// Inverse returns the matrix inverse, computed in complex128 and rounded
// back to T. For a unitary matrix this is the conjugate transpose.
func (u Matrix[T]) Inverse() (Matrix[T], error) {
	m := u.Complex128()
	det := m[0]*m[3] - m[1]*m[2]
	if det == 0 {
		return Matrix[T]{}, ErrSingular
	}
	return MatrixOf[T]([4]complex128{m[3] / det, -m[1] / det, -m[2] / det, m[0] / det}), nil
}
