// Package device moves state vectors between host memory and an
// accelerator-style execution target, and retries launches that fail for
// transient reasons.
//
// The target here is emulated in process: Staged keeps its own input and
// output buffers, each split into two halves the way a dual-bank device
// would hold them, and runs a qsim executor between them. Every gate is a
// full round trip: upload, launch, download.
package device

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"qtermsv/qsim"
)

// Stats counts the traffic a Staged executor generated.
type Stats struct {
	Launches  int
	BytesIn   int64 // host to device
	BytesOut  int64 // device to host
	KernelDur time.Duration
}

// Staged is a qsim.Executor that stages every gate through device-side
// buffers laid out in two halves.
type Staged[T qsim.Scalar] struct {
	kernel  qsim.Executor[T]
	storage qsim.StorageKind
	logger  *log.Logger

	mu      sync.Mutex
	in, out *qsim.StateVector[T]
	stats   Stats
}

// StagedOption configures NewStaged.
type StagedOption func(*stagedOptions)

type stagedOptions struct {
	storage qsim.StorageKind
	logger  *log.Logger
}

// WithDeviceStorage selects the amplitude format of the device buffers.
// Default SplitComplex.
func WithDeviceStorage(k qsim.StorageKind) StagedOption {
	return func(o *stagedOptions) { o.storage = k }
}

// WithLogger sets the logger for transfer records.
func WithLogger(l *log.Logger) StagedOption {
	return func(o *stagedOptions) { o.logger = l }
}

// NewStaged returns a staged executor that launches kernel on the device
// buffers.
func NewStaged[T qsim.Scalar](kernel qsim.Executor[T], opts ...StagedOption) *Staged[T] {
	o := stagedOptions{storage: qsim.SplitComplex}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}
	return &Staged[T]{kernel: kernel, storage: o.storage, logger: o.logger}
}

// Apply uploads src, launches the kernel and downloads the result into dst.
// dst is written only after a successful launch.
func (s *Staged[T]) Apply(dst, src *qsim.StateVector[T], g qsim.Gate[T]) error {
	if dst == nil || src == nil {
		return qsim.ErrNilState
	}
	if dst.Qubits() != src.Qubits() {
		return fmt.Errorf("%w: %d != %d", qsim.ErrQubitMismatch, dst.Qubits(), src.Qubits())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensure(src.Qubits()); err != nil {
		return err
	}

	if err := s.in.CopyFrom(src); err != nil {
		return err
	}
	s.stats.BytesIn += s.bytes()

	start := time.Now()
	if err := s.kernel.Apply(s.out, s.in, g); err != nil {
		return err
	}
	s.stats.KernelDur += time.Since(start)
	s.stats.Launches++

	if err := dst.CopyFrom(s.out); err != nil {
		return err
	}
	s.stats.BytesOut += s.bytes()

	s.logger.Debug("launch", "gate", g.String(), "bytes", s.bytes())
	return nil
}

// Stats returns the traffic counters so far.
func (s *Staged[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ensure (re)allocates the device buffers for an n-qubit state.
func (s *Staged[T]) ensure(n int) error {
	if s.in != nil && s.in.Qubits() == n {
		return nil
	}
	in, err := qsim.NewStateVector[T](n, qsim.WithLayout(qsim.Halves{}), qsim.WithStorage(s.storage))
	if err != nil {
		return fmt.Errorf("device: allocate input buffers: %w", err)
	}
	out, err := qsim.NewStateVector[T](n, qsim.WithLayout(qsim.Halves{}), qsim.WithStorage(s.storage))
	if err != nil {
		return fmt.Errorf("device: allocate output buffers: %w", err)
	}
	s.in, s.out = in, out
	s.logger.Debug("allocated device buffers", "qubits", n, "storage", s.storage, "bytes", 2*s.bytes())
	return nil
}

// bytes is the size of one full buffer (both halves).
func (s *Staged[T]) bytes() int64 {
	return int64(s.in.Len()) * AmplitudeBytes[T](s.storage)
}

// AmplitudeBytes is the memory one amplitude occupies in storage k.
func AmplitudeBytes[T qsim.Scalar](k qsim.StorageKind) int64 {
	if k == qsim.HalfSplit {
		return 4
	}
	var zero T
	switch any(zero).(type) {
	case float32:
		return 8
	default:
		return 16
	}
}
