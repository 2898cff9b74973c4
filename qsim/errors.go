package qsim

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every message carries the "qsim:" prefix; callers match
// them with errors.Is.
var (
	// ErrNilState is returned when a nil *StateVector reaches the engine.
	ErrNilState = errors.New("qsim: nil state vector")

	// ErrQubitCount reports a qubit count outside 1..MaxQubits.
	ErrQubitCount = errors.New("qsim: qubit count out of range")

	// ErrNotPowerOfTwo reports an amplitude slice whose length is not 2^n.
	ErrNotPowerOfTwo = errors.New("qsim: vector length is not a power of two")

	// ErrQubitMismatch reports two states, or a state and a circuit,
	// that disagree on the number of qubits.
	ErrQubitMismatch = errors.New("qsim: qubit count mismatch")

	// ErrTargetRange reports a target qubit outside 0..n-1.
	ErrTargetRange = errors.New("qsim: target qubit out of range")

	// ErrControlRange reports a control qubit outside 0..n-1.
	ErrControlRange = errors.New("qsim: control qubit out of range")

	// ErrControlIsTarget reports a controlled gate whose control equals its target.
	ErrControlIsTarget = errors.New("qsim: control qubit equals target qubit")

	// ErrBasisRange reports an initial basis state outside 0..2^n-1.
	ErrBasisRange = errors.New("qsim: basis state out of range")

	// ErrUnsupportedStorage reports a storage kind that cannot hold the
	// requested scalar type (half precision needs float32 arithmetic).
	ErrUnsupportedStorage = errors.New("qsim: storage kind does not support this scalar type")

	// ErrSingular reports a gate matrix with a zero determinant.
	ErrSingular = errors.New("qsim: singular gate matrix")
)

// GateError wraps the failure of one circuit step.
type GateError struct {
	Step int
	Gate string
	Err  error
}

func (e *GateError) Error() string {
	return fmt.Sprintf("qsim: step %d (%s): %v", e.Step, e.Gate, e.Err)
}

func (e *GateError) Unwrap() error { return e.Err }

// IsPrecondition reports whether err is a gate precondition violation.
// Such failures are deterministic; repeating the call cannot succeed.
func IsPrecondition(err error) bool {
	for _, target := range []error{
		ErrNilState, ErrQubitMismatch, ErrTargetRange, ErrControlRange, ErrControlIsTarget,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
