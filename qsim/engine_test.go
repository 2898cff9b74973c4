package qsim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHadamardOnZero(t *testing.T) {
	eng := NewEngine[float64]()
	s, err := NewStateVector[float64](1)
	require.NoError(t, err)

	h := NewGate(0, MatrixOf[float64]([4]complex128{0.7071, 0.7071, 0.7071, -0.7071}))
	require.NoError(t, eng.Apply(s, s, h))

	requireClose(t, []complex128{0.7071, 0.7071}, s.Amplitudes(), 1e-12)
}

func TestControlledExchangeScenarios(t *testing.T) {
	cases := []struct {
		name            string
		control, target int
		in              []complex128
		want            []complex128
	}{
		{"control clear leaves |00> alone", 0, 1, []complex128{1, 0, 0, 0}, []complex128{1, 0, 0, 0}},
		{"target set control clear", 0, 1, []complex128{0, 0, 1, 0}, []complex128{0, 0, 1, 0}},
		{"control 0 set flips qubit 1", 0, 1, []complex128{0, 1, 0, 0}, []complex128{0, 0, 0, 1}},
		{"control 1 set flips qubit 0", 1, 0, []complex128{0, 0, 1, 0}, []complex128{0, 0, 0, 1}},
	}
	for _, scan := range []Scan{Linear, Block} {
		for _, tc := range cases {
			t.Run(fmt.Sprintf("%s/%s", scan, tc.name), func(t *testing.T) {
				eng := NewEngine[float64](WithScan(scan))
				s := mustState[float64](t, tc.in)
				require.NoError(t, eng.Apply(s, s, NewControlledExchange[float64](tc.control, tc.target)))
				assert.Equal(t, tc.want, s.Amplitudes())
			})
		}
	}
}

func TestSingleQubitMatchesReference(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for n := 1; n <= 6; n++ {
		for target := 0; target < n; target++ {
			amps := randomAmps(r, n)
			u := randomUnitary(r)
			want := reference(amps, SingleQubit, NoControl, target, u)
			for _, l := range layouts {
				t.Run(fmt.Sprintf("n=%d/t=%d/%s", n, target, l.name), func(t *testing.T) {
					s := mustState[float64](t, amps, l.opts...)
					require.NoError(t, NewEngine[float64]().Apply(s, s, NewGate(target, MatrixOf[float64](u))))
					requireClose(t, want, s.Amplitudes(), 1e-12)
				})
			}
		}
	}
}

func TestIdentityLeavesStateUnchanged(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	eng := NewEngine[float64]()
	for n := 1; n <= 6; n++ {
		amps := randomAmps(r, n)
		for target := 0; target < n; target++ {
			for _, l := range layouts {
				s := mustState[float64](t, amps, l.opts...)
				require.NoError(t, eng.Apply(s, s, NewGate(target, Identity[float64]())))
				assert.Equal(t, amps, s.Amplitudes(), "n=%d t=%d %s", n, target, l.name)
			}
		}
	}
}

func TestUnitaryThenInverseRoundTrips(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	eng := NewEngine[float64]()
	for n := 1; n <= 6; n++ {
		for target := 0; target < n; target++ {
			amps := randomAmps(r, n)
			g := NewGate(target, MatrixOf[float64](randomUnitary(r)))
			inv, err := g.Inverse()
			require.NoError(t, err)

			s := mustState[float64](t, amps)
			require.NoError(t, eng.Apply(s, s, g))
			require.NoError(t, eng.Apply(s, s, inv))
			requireClose(t, amps, s.Amplitudes(), 1e-9)
		}
	}
}

func TestControlledExchangeIsSelfInverse(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	for n := 2; n <= 6; n++ {
		amps := randomAmps(r, n)
		for c := 0; c < n; c++ {
			for tg := 0; tg < n; tg++ {
				if c == tg {
					continue
				}
				for _, scan := range []Scan{Linear, Block} {
					eng := NewEngine[float64](WithScan(scan))
					orig := mustState[float64](t, amps)
					s := orig.Clone()
					g := NewControlledExchange[float64](c, tg)
					require.NoError(t, eng.Apply(s, s, g))
					require.NoError(t, eng.Apply(s, s, g))
					assert.True(t, orig.Equal(s), "n=%d c=%d t=%d scan=%s", n, c, tg, scan)
				}
			}
		}
	}
}

func TestLinearAndBlockScansAgree(t *testing.T) {
	r := rand.New(rand.NewSource(19))
	linear := NewEngine[float64](WithScan(Linear))
	block := NewEngine[float64](WithScan(Block))
	for n := 2; n <= 7; n++ {
		amps := randomAmps(r, n)
		u := MatrixOf[float64](randomUnitary(r))
		for c := 0; c < n; c++ {
			for tg := 0; tg < n; tg++ {
				if c == tg {
					continue
				}
				for _, g := range []Gate[float64]{
					NewControlledExchange[float64](c, tg),
					NewControlledUnitary(c, tg, u),
				} {
					for _, l := range layouts {
						a := mustState[float64](t, amps, l.opts...)
						b := mustState[float64](t, amps, l.opts...)
						require.NoError(t, linear.Apply(a, a, g))
						require.NoError(t, block.Apply(b, b, g))
						require.True(t, a.Equal(b), "n=%d %s %s", n, g, l.name)

						want := reference(amps, g.Kind(), c, tg, u.Complex128())
						requireClose(t, want, a.Amplitudes(), 1e-12)
					}
				}
			}
		}
	}
}

func TestLayoutsProduceIdenticalOutput(t *testing.T) {
	r := rand.New(rand.NewSource(23))
	eng := NewEngine[float64]()
	for n := 1; n <= 6; n++ {
		amps := randomAmps(r, n)
		u := MatrixOf[float64](randomUnitary(r))
		gates := []Gate[float64]{}
		for tg := 0; tg < n; tg++ {
			gates = append(gates, NewGate(tg, u))
			for c := 0; c < n; c++ {
				if c != tg {
					gates = append(gates, NewControlledExchange[float64](c, tg), NewControlledUnitary(c, tg, u))
				}
			}
		}
		for _, g := range gates {
			base := mustState[float64](t, amps)
			require.NoError(t, eng.Apply(base, base, g))
			for _, l := range layouts[1:] {
				s := mustState[float64](t, amps, l.opts...)
				require.NoError(t, eng.Apply(s, s, g))
				require.True(t, base.Equal(s), "n=%d %s %s", n, g, l.name)
			}
		}
	}
}

func TestDistinctOutputMatchesInPlace(t *testing.T) {
	r := rand.New(rand.NewSource(29))
	eng := NewEngine[float64]()
	n := 5
	amps := randomAmps(r, n)
	u := MatrixOf[float64](randomUnitary(r))
	for _, g := range []Gate[float64]{
		NewGate(2, u),
		NewControlledExchange[float64](4, 1),
		NewControlledUnitary(0, 3, u),
	} {
		in := mustState[float64](t, amps)
		out, err := NewStateVector[float64](n, WithLayout(Halves{}), WithStorage(SplitComplex))
		require.NoError(t, err)
		require.NoError(t, eng.Apply(out, in, g))

		inPlace := mustState[float64](t, amps)
		require.NoError(t, eng.Apply(inPlace, inPlace, g))

		assert.True(t, inPlace.Equal(out), "%s", g)
		assert.Equal(t, amps, in.Amplitudes(), "source must not change")
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewSource(31))
	n := 10
	amps := randomAmps(r, n)
	u := MatrixOf[float64](randomUnitary(r))
	seq := NewEngine[float64](WithWorkers(1))
	par := NewEngine[float64](WithWorkers(4), WithGrain(8))

	for _, g := range []Gate[float64]{
		NewGate(0, u),
		NewGate(9, u),
		NewControlledExchange[float64](9, 0),
		NewControlledExchange[float64](0, 9),
		NewControlledUnitary(3, 6, u),
	} {
		a := mustState[float64](t, amps, WithLayout(Halves{}))
		b := mustState[float64](t, amps, WithLayout(Halves{}))
		require.NoError(t, seq.Apply(a, a, g))
		require.NoError(t, par.Apply(b, b, g))
		assert.True(t, a.Equal(b), "%s", g)
	}
}

func TestSingleQubitOnlyCircuitWithHalvesAtOneQubit(t *testing.T) {
	eng := NewEngine[float64]()
	s, err := NewStateVector[float64](1, WithLayout(Halves{}))
	require.NoError(t, err)

	h := NewGate(0, MatrixOf[float64](hadamard))
	require.NoError(t, eng.Apply(s, s, h))
	require.NoError(t, eng.Apply(s, s, h))
	requireClose(t, []complex128{1, 0}, s.Amplitudes(), 1e-12)
}

func TestApplyPreconditions(t *testing.T) {
	eng := NewEngine[float64]()
	three, err := NewStateVector[float64](3)
	require.NoError(t, err)
	two, err := NewStateVector[float64](2)
	require.NoError(t, err)

	cases := []struct {
		name string
		dst  *StateVector[float64]
		src  *StateVector[float64]
		gate Gate[float64]
		want error
	}{
		{"nil state", nil, three, NewGate(0, Identity[float64]()), ErrNilState},
		{"target too high", three, three, NewGate(3, Identity[float64]()), ErrTargetRange},
		{"negative target", three, three, NewGate(-1, Identity[float64]()), ErrTargetRange},
		{"control too high", three, three, NewControlledExchange[float64](5, 0), ErrControlRange},
		{"negative control", three, three, NewControlledUnitary(-2, 0, Identity[float64]()), ErrControlRange},
		{"control equals target", three, three, NewControlledExchange[float64](1, 1), ErrControlIsTarget},
		{"qubit mismatch", two, three, NewGate(0, Identity[float64]()), ErrQubitMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var before []complex128
			if tc.dst != nil {
				before = tc.dst.Amplitudes()
			}
			err := eng.Apply(tc.dst, tc.src, tc.gate)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			if tc.dst != nil {
				assert.Equal(t, before, tc.dst.Amplitudes())
			}
		})
	}
}

func TestNaNPropagates(t *testing.T) {
	nan := complex(math.NaN(), 0)
	s := mustState[float64](t, []complex128{nan, 1})
	require.NoError(t, NewEngine[float64]().Apply(s, s, NewGate(0, MatrixOf[float64](hadamard))))
	for _, a := range s.Amplitudes() {
		assert.True(t, math.IsNaN(real(a)), "expected NaN, got %v", a)
	}
}

func TestSinglePrecisionTracksDouble(t *testing.T) {
	r := rand.New(rand.NewSource(37))
	amps := randomAmps(r, 4)
	u := randomUnitary(r)

	d := mustState[float64](t, amps)
	f := mustState[float32](t, amps, WithStorage(SplitComplex), WithLayout(Halves{}))
	require.NoError(t, NewEngine[float64]().Apply(d, d, NewGate(2, MatrixOf[float64](u))))
	require.NoError(t, NewEngine[float32]().Apply(f, f, NewGate(2, MatrixOf[float32](u))))
	requireClose(t, d.Amplitudes(), f.Amplitudes(), 1e-5)
}

func TestHalfPrecisionHadamard(t *testing.T) {
	s, err := NewStateVector[float32](2, WithStorage(HalfSplit), WithLayout(Halves{}))
	require.NoError(t, err)
	eng := NewEngine[float32](WithScan(Linear))

	require.NoError(t, eng.Apply(s, s, NewGate(1, MatrixOf[float32](hadamard))))
	require.NoError(t, eng.Apply(s, s, NewControlledExchange[float32](1, 0)))

	// Bell pair on qubits 0 and 1: |00> and |11> at 1/sqrt2, within binary16 resolution.
	requireClose(t, []complex128{0.70710678, 0, 0, 0.70710678}, s.Amplitudes(), 1e-3)
}
