package qsim

import (
	"container/heap"
	"math"
	"math/bits"
	"math/cmplx"
	"slices"
)

// QubitProbability is the marginal probability of one qubit reading 0 or 1.
type QubitProbability struct {
	Prob0 float64
	Prob1 float64
}

// BasisState describes one basis state with non-negligible weight.
type BasisState struct {
	Index     int
	Amplitude complex128
	Prob      float64
	Phase     float64
	Hamming   int
}

// Probabilities returns |a_i|^2 for every basis state.
func (s *StateVector[T]) Probabilities() []float64 {
	probs := make([]float64, s.size)
	for i := range probs {
		a := s.At(i).Complex128()
		probs[i] = real(a * cmplx.Conj(a))
	}
	return probs
}

// Norm returns the sum of all probabilities. The engine never renormalizes,
// so this drifts with reduced precision.
func (s *StateVector[T]) Norm() float64 {
	total := 0.0
	for _, p := range s.Probabilities() {
		total += p
	}
	return total
}

// QubitProbabilities returns the marginal distribution of each qubit.
func (s *StateVector[T]) QubitProbabilities() []QubitProbability {
	probs := make([]QubitProbability, s.qubits)
	for i, prob := range s.Probabilities() {
		for q := 0; q < s.qubits; q++ {
			if i&(1<<q) != 0 {
				probs[q].Prob1 += prob
			} else {
				probs[q].Prob0 += prob
			}
		}
	}
	return probs
}

// Top returns the k most probable basis states whose probability exceeds
// eps, most probable first; ties keep index order and NaN probabilities
// rank first. k <= 0 returns every such state. Memory stays O(k).
func (s *StateVector[T]) Top(k int, eps float64) []BasisState {
	h := make(stateHeap, 0, max(k, 0))
	for i := 0; i < s.size; i++ {
		amp := s.At(i).Complex128()
		prob := real(amp * cmplx.Conj(amp))
		if !(prob > eps || math.IsNaN(prob)) {
			continue
		}
		st := BasisState{
			Index:     i,
			Amplitude: amp,
			Prob:      prob,
			Phase:     cmplx.Phase(amp),
			Hamming:   bits.OnesCount(uint(i)),
		}
		switch {
		case k <= 0:
			h = append(h, st)
		case len(h) < k:
			heap.Push(&h, st)
		case outranks(st, h[0]):
			h[0] = st
			heap.Fix(&h, 0)
		}
	}
	out := []BasisState(h)
	slices.SortFunc(out, func(a, b BasisState) int {
		if outranks(a, b) {
			return -1
		}
		if outranks(b, a) {
			return 1
		}
		return 0
	})
	return out
}

// outranks orders basis states by descending probability, then index.
func outranks(a, b BasisState) bool {
	an, bn := math.IsNaN(a.Prob), math.IsNaN(b.Prob)
	if an != bn {
		return an
	}
	if !an && a.Prob != b.Prob {
		return a.Prob > b.Prob
	}
	return a.Index < b.Index
}

// stateHeap is a min-heap under outranks: the root is the weakest state kept.
type stateHeap []BasisState

func (h stateHeap) Len() int           { return len(h) }
func (h stateHeap) Less(i, j int) bool { return outranks(h[j], h[i]) }
func (h stateHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *stateHeap) Push(x any)        { *h = append(*h, x.(BasisState)) }
func (h *stateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
