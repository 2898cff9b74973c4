package qsim

import (
	"fmt"
	"math"
	"math/bits"
)

// MaxQubits bounds in-memory state vectors (2^26 amplitudes).
const MaxQubits = 26

// StateVector is an ordered sequence of 2^n amplitudes, stored in one or
// more partitions according to its Layout.
type StateVector[T Scalar] struct {
	qubits int
	size   int
	layout Layout
	kind   StorageKind
	parts  []Storage[T]
}

// StateOption configures NewStateVector and FromAmplitudes.
type StateOption func(*stateOptions)

type stateOptions struct {
	layout Layout
	kind   StorageKind
	basis  int
}

// WithLayout selects how the vector is partitioned. Default Contiguous.
func WithLayout(l Layout) StateOption {
	return func(o *stateOptions) {
		if l != nil {
			o.layout = l
		}
	}
}

// WithStorage selects the in-memory amplitude format. Default Interleaved.
func WithStorage(k StorageKind) StateOption {
	return func(o *stateOptions) { o.kind = k }
}

// WithBasis sets the initial basis state for NewStateVector. Default 0.
func WithBasis(k int) StateOption {
	return func(o *stateOptions) { o.basis = k }
}

func gatherStateOptions(opts []StateOption) stateOptions {
	o := stateOptions{layout: Contiguous{}, kind: Interleaved}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func newEmpty[T Scalar](qubits int, o stateOptions) (*StateVector[T], error) {
	if qubits < 1 || qubits > MaxQubits {
		return nil, fmt.Errorf("%w: %d", ErrQubitCount, qubits)
	}
	size := 1 << qubits
	np := o.layout.Partitions()
	s := &StateVector[T]{
		qubits: qubits,
		size:   size,
		layout: o.layout,
		kind:   o.kind,
		parts:  make([]Storage[T], np),
	}
	for p := range s.parts {
		st, err := allocate[T](o.kind, size/np)
		if err != nil {
			return nil, err
		}
		s.parts[p] = st
	}
	return s, nil
}

// NewStateVector returns the basis state |k> over qubits qubits, k = 0
// unless WithBasis says otherwise.
func NewStateVector[T Scalar](qubits int, opts ...StateOption) (*StateVector[T], error) {
	o := gatherStateOptions(opts)
	s, err := newEmpty[T](qubits, o)
	if err != nil {
		return nil, err
	}
	if err := s.Reset(o.basis); err != nil {
		return nil, err
	}
	return s, nil
}

// FromAmplitudes builds a state from amplitudes given in logical order.
func FromAmplitudes[T Scalar](amps []complex128, opts ...StateOption) (*StateVector[T], error) {
	n := len(amps)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, n)
	}
	s, err := newEmpty[T](bits.TrailingZeros(uint(n)), gatherStateOptions(opts))
	if err != nil {
		return nil, err
	}
	for i, c := range amps {
		s.Set(i, AmplitudeOf[T](c))
	}
	return s, nil
}

// Qubits returns n.
func (s *StateVector[T]) Qubits() int { return s.qubits }

// Len returns 2^n.
func (s *StateVector[T]) Len() int { return s.size }

// Layout returns the partition scheme.
func (s *StateVector[T]) Layout() Layout { return s.layout }

// Storage returns the amplitude format.
func (s *StateVector[T]) Storage() StorageKind { return s.kind }

// Partition returns the raw storage of partition p.
func (s *StateVector[T]) Partition(p int) Storage[T] { return s.parts[p] }

// At returns amplitude i in logical order.
func (s *StateVector[T]) At(i int) Amplitude[T] {
	p, local := s.layout.PartitionOf(i, s.size)
	return s.parts[p].Load(local)
}

// Set writes amplitude i in logical order.
func (s *StateVector[T]) Set(i int, a Amplitude[T]) {
	p, local := s.layout.PartitionOf(i, s.size)
	s.parts[p].Store(local, a)
}

// Clone returns a deep copy with the same layout and storage.
func (s *StateVector[T]) Clone() *StateVector[T] {
	c, _ := newEmpty[T](s.qubits, stateOptions{layout: s.layout, kind: s.kind})
	c.CopyFrom(s)
	return c
}

// CopyFrom overwrites s with src in logical order. Layouts and storage
// kinds may differ.
func (s *StateVector[T]) CopyFrom(src *StateVector[T]) error {
	if src.qubits != s.qubits {
		return fmt.Errorf("%w: %d != %d", ErrQubitMismatch, src.qubits, s.qubits)
	}
	for i := 0; i < s.size; i++ {
		s.Set(i, src.At(i))
	}
	return nil
}

// Reset puts the vector into basis state |k>.
func (s *StateVector[T]) Reset(k int) error {
	if k < 0 || k >= s.size {
		return fmt.Errorf("%w: %d", ErrBasisRange, k)
	}
	for i := 0; i < s.size; i++ {
		s.Set(i, Amplitude[T]{})
	}
	s.Set(k, Amplitude[T]{Re: 1})
	return nil
}

// Amplitudes returns the vector in logical order as complex128.
func (s *StateVector[T]) Amplitudes() []complex128 {
	out := make([]complex128, s.size)
	for i := range out {
		out[i] = s.At(i).Complex128()
	}
	return out
}

// Equal reports whether both vectors hold bit-identical amplitudes in
// logical order, regardless of layout.
func (s *StateVector[T]) Equal(o *StateVector[T]) bool {
	if s.size != o.size {
		return false
	}
	for i := 0; i < s.size; i++ {
		a, b := s.At(i), o.At(i)
		if !sameBits(float64(a.Re), float64(b.Re)) || !sameBits(float64(a.Im), float64(b.Im)) {
			return false
		}
	}
	return true
}

func sameBits(a, b float64) bool {
	return math.Float64bits(a) == math.Float64bits(b)
}
