package qsim

import (
	"fmt"
	"strings"

	"github.com/x448/float16"
)

// Storage is one contiguous region of amplitudes. Implementations decide
// how a complex value is laid out in memory; the engine only loads and
// stores whole amplitudes.
type Storage[T Scalar] interface {
	Len() int
	Load(i int) Amplitude[T]
	Store(i int, a Amplitude[T])
}

// StorageKind selects a Storage implementation.
type StorageKind int

const (
	// Interleaved keeps (re, im) pairs next to each other.
	Interleaved StorageKind = iota
	// SplitComplex keeps real parts and imaginary parts in separate arrays.
	SplitComplex
	// HalfSplit is SplitComplex with binary16 elements. Loads widen to
	// float32 and stores round to the nearest binary16 value.
	HalfSplit
)

func (k StorageKind) String() string {
	switch k {
	case Interleaved:
		return "interleaved"
	case SplitComplex:
		return "split"
	case HalfSplit:
		return "half-split"
	default:
		return "unknown"
	}
}

// ParseStorageKind accepts "interleaved", "split" or "half-split".
func ParseStorageKind(s string) (StorageKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "interleaved", "":
		return Interleaved, nil
	case "split":
		return SplitComplex, nil
	case "half-split", "half":
		return HalfSplit, nil
	}
	return Interleaved, fmt.Errorf("qsim: unknown storage kind %q", s)
}

// InterleavedStorage is a slice of amplitudes.
type InterleavedStorage[T Scalar] []Amplitude[T]

func (s InterleavedStorage[T]) Len() int                    { return len(s) }
func (s InterleavedStorage[T]) Load(i int) Amplitude[T]     { return s[i] }
func (s InterleavedStorage[T]) Store(i int, a Amplitude[T]) { s[i] = a }

// SplitStorage keeps real and imaginary parts in two parallel slices.
type SplitStorage[T Scalar] struct {
	Re, Im []T
}

func (s SplitStorage[T]) Len() int { return len(s.Re) }

func (s SplitStorage[T]) Load(i int) Amplitude[T] {
	return Amplitude[T]{Re: s.Re[i], Im: s.Im[i]}
}

func (s SplitStorage[T]) Store(i int, a Amplitude[T]) {
	s.Re[i], s.Im[i] = a.Re, a.Im
}

// HalfStorage is split storage of binary16 values with float32 arithmetic.
type HalfStorage struct {
	Re, Im []float16.Float16
}

func (s HalfStorage) Len() int { return len(s.Re) }

func (s HalfStorage) Load(i int) Amplitude[float32] {
	return Amplitude[float32]{Re: s.Re[i].Float32(), Im: s.Im[i].Float32()}
}

func (s HalfStorage) Store(i int, a Amplitude[float32]) {
	s.Re[i], s.Im[i] = float16.Fromfloat32(a.Re), float16.Fromfloat32(a.Im)
}

func allocate[T Scalar](k StorageKind, n int) (Storage[T], error) {
	switch k {
	case Interleaved:
		return make(InterleavedStorage[T], n), nil
	case SplitComplex:
		return SplitStorage[T]{Re: make([]T, n), Im: make([]T, n)}, nil
	case HalfSplit:
		h := HalfStorage{Re: make([]float16.Float16, n), Im: make([]float16.Float16, n)}
		if st, ok := any(h).(Storage[T]); ok {
			return st, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedStorage, k)
}
