// Package qsim evolves a quantum statevector by applying single-qubit and
// controlled gates in place.
//
// A StateVector holds 2^n amplitudes. Index i is basis state i, and bit k of
// i is the value of qubit k. The vector can live in one contiguous region or
// in two equal halves (see Layout); precision and storage shape are chosen
// per vector (see Precision and StorageKind). None of these choices change
// what a gate computes.
//
// The Engine applies one Gate at a time:
//
//	eng := qsim.NewEngine[float64](qsim.WithScan(qsim.Block))
//	state, _ := qsim.NewStateVector[float64](3, qsim.WithLayout(qsim.Halves{}))
//	h := qsim.NewGate(0, qsim.MatrixOf[float64]([4]complex128{s, s, s, -s}))
//	err := eng.Apply(state, state, h)
//
// A Runner feeds a Circuit through an Executor gate by gate.
//
// The engine does not check unitarity, does not renormalize and propagates
// NaN and Inf unchanged.
package qsim
