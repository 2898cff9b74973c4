package qsim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var hadamard = [4]complex128{
	complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0),
	complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0),
}

// randomAmps returns 2^n complex values drawn from r.
func randomAmps(r *rand.Rand, n int) []complex128 {
	amps := make([]complex128, 1<<n)
	for i := range amps {
		amps[i] = complex(r.NormFloat64(), r.NormFloat64())
	}
	return amps
}

// randomUnitary returns e^{i*alpha} * [[a, -conj(b)], [b, conj(a)]] with |a|^2+|b|^2 = 1.
func randomUnitary(r *rand.Rand) [4]complex128 {
	theta := r.Float64() * math.Pi
	phi, lam, alpha := r.Float64()*2*math.Pi, r.Float64()*2*math.Pi, r.Float64()*2*math.Pi
	a := complex(math.Cos(theta/2), 0) * expi(phi)
	b := complex(math.Sin(theta/2), 0) * expi(lam)
	g := expi(alpha)
	return [4]complex128{g * a, -g * conj(b), g * b, g * conj(a)}
}

func expi(x float64) complex128    { return complex(math.Cos(x), math.Sin(x)) }
func conj(c complex128) complex128 { return complex(real(c), -imag(c)) }

// reference applies g to amps the plain way, on a copy.
func reference(amps []complex128, kind GateKind, control, target int, u [4]complex128) []complex128 {
	out := make([]complex128, len(amps))
	copy(out, amps)
	tbit := 1 << target
	for i := range amps {
		if i&tbit != 0 {
			continue
		}
		if kind != SingleQubit && i&(1<<control) == 0 {
			continue
		}
		j := i | tbit
		switch kind {
		case ControlledExchange:
			out[i], out[j] = amps[j], amps[i]
		default:
			out[i] = u[0]*amps[i] + u[1]*amps[j]
			out[j] = u[2]*amps[i] + u[3]*amps[j]
		}
	}
	return out
}

func mustState[T Scalar](t *testing.T, amps []complex128, opts ...StateOption) *StateVector[T] {
	t.Helper()
	s, err := FromAmplitudes[T](amps, opts...)
	require.NoError(t, err)
	return s
}

// requireClose fails unless every entry of got is within tol of want.
func requireClose(t *testing.T, want, got []complex128, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.InDelta(t, real(want[i]), real(got[i]), tol, "re[%d]", i)
		require.InDelta(t, imag(want[i]), imag(got[i]), tol, "im[%d]", i)
	}
}

// layouts lists every layout/storage combination a float64 state supports.
var layouts = []struct {
	name string
	opts []StateOption
}{
	{"contiguous/interleaved", []StateOption{WithLayout(Contiguous{}), WithStorage(Interleaved)}},
	{"contiguous/split", []StateOption{WithLayout(Contiguous{}), WithStorage(SplitComplex)}},
	{"halves/interleaved", []StateOption{WithLayout(Halves{}), WithStorage(Interleaved)}},
	{"halves/split", []StateOption{WithLayout(Halves{}), WithStorage(SplitComplex)}},
}
