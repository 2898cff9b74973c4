package device

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qtermsv/qsim"
)

var hadamard = [4]complex128{
	complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0),
	complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0),
}

func randomCircuit(r *rand.Rand, n, gates int) qsim.Circuit[float64] {
	c := qsim.Circuit[float64]{Qubits: n}
	for k := 0; k < gates; k++ {
		tg := r.Intn(n)
		theta := r.Float64() * math.Pi
		u := qsim.MatrixOf[float64]([4]complex128{
			complex(math.Cos(theta), 0), complex(0, -math.Sin(theta)),
			complex(0, -math.Sin(theta)), complex(math.Cos(theta), 0),
		})
		switch k % 3 {
		case 0:
			c.Gates = append(c.Gates, qsim.NewGate(tg, u))
		case 1:
			c.Gates = append(c.Gates, qsim.NewControlledExchange[float64]((tg+1)%n, tg))
		default:
			c.Gates = append(c.Gates, qsim.NewControlledUnitary((tg+2)%n, tg, u))
		}
	}
	return c
}

func TestStagedMatchesHostEngine(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	c := randomCircuit(r, 5, 30)

	for _, kind := range []qsim.StorageKind{qsim.Interleaved, qsim.SplitComplex} {
		t.Run(kind.String(), func(t *testing.T) {
			host, err := qsim.NewStateVector[float64](5, qsim.WithBasis(3))
			require.NoError(t, err)
			dev := host.Clone()

			engine := qsim.NewEngine[float64]()
			staged := NewStaged[float64](engine, WithDeviceStorage(kind))
			for _, g := range c.Gates {
				require.NoError(t, engine.Apply(host, host, g))
				require.NoError(t, staged.Apply(dev, dev, g))
			}
			assert.True(t, host.Equal(dev), "staged result differs from host result")
			assert.Equal(t, len(c.Gates), staged.Stats().Launches)
		})
	}
}

func TestStagedCountsTraffic(t *testing.T) {
	s, err := qsim.NewStateVector[float64](3)
	require.NoError(t, err)
	staged := NewStaged[float64](qsim.NewEngine[float64]())

	g := qsim.NewGate(0, qsim.MatrixOf[float64](hadamard))
	require.NoError(t, staged.Apply(s, s, g))
	require.NoError(t, staged.Apply(s, s, g))

	st := staged.Stats()
	assert.Equal(t, 2, st.Launches)
	assert.Equal(t, int64(2*8*16), st.BytesIn)
	assert.Equal(t, st.BytesIn, st.BytesOut)
}

func TestStagedHalfSplitDevice(t *testing.T) {
	s, err := qsim.NewStateVector[float32](2)
	require.NoError(t, err)
	staged := NewStaged[float32](qsim.NewEngine[float32](), WithDeviceStorage(qsim.HalfSplit))

	require.NoError(t, staged.Apply(s, s, qsim.NewGate(0, qsim.MatrixOf[float32](hadamard))))
	require.NoError(t, staged.Apply(s, s, qsim.NewControlledExchange[float32](0, 1)))

	amps := s.Amplitudes()
	assert.InDelta(t, 1/math.Sqrt2, real(amps[0]), 1e-3)
	assert.InDelta(t, 1/math.Sqrt2, real(amps[3]), 1e-3)
	assert.Equal(t, int64(2*4*4), staged.Stats().BytesIn)
}

func TestStagedRejectsHalfSplitForDouble(t *testing.T) {
	s, err := qsim.NewStateVector[float64](2)
	require.NoError(t, err)
	staged := NewStaged[float64](qsim.NewEngine[float64](), WithDeviceStorage(qsim.HalfSplit))

	err = staged.Apply(s, s, qsim.NewGate(0, qsim.MatrixOf[float64](hadamard)))
	assert.True(t, errors.Is(err, qsim.ErrUnsupportedStorage))
}

func TestStagedLeavesDestinationOnFailure(t *testing.T) {
	src, err := qsim.NewStateVector[float64](2, qsim.WithBasis(1))
	require.NoError(t, err)
	dst, err := qsim.NewStateVector[float64](2, qsim.WithBasis(2))
	require.NoError(t, err)
	before := dst.Clone()

	staged := NewStaged[float64](qsim.NewEngine[float64]())
	err = staged.Apply(dst, src, qsim.NewGate(4, qsim.MatrixOf[float64](hadamard)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, qsim.ErrTargetRange))
	assert.True(t, dst.Equal(before))
	assert.Zero(t, staged.Stats().Launches)
	assert.Zero(t, staged.Stats().BytesOut)
}

func TestStagedPreconditions(t *testing.T) {
	a, err := qsim.NewStateVector[float64](2)
	require.NoError(t, err)
	b, err := qsim.NewStateVector[float64](3)
	require.NoError(t, err)
	staged := NewStaged[float64](qsim.NewEngine[float64]())
	g := qsim.NewGate(0, qsim.Identity[float64]())

	assert.True(t, errors.Is(staged.Apply(nil, a, g), qsim.ErrNilState))
	assert.True(t, errors.Is(staged.Apply(a, b, g), qsim.ErrQubitMismatch))
}

func TestAmplitudeBytes(t *testing.T) {
	assert.Equal(t, int64(16), AmplitudeBytes[float64](qsim.Interleaved))
	assert.Equal(t, int64(8), AmplitudeBytes[float32](qsim.SplitComplex))
	assert.Equal(t, int64(4), AmplitudeBytes[float32](qsim.HalfSplit))
}
