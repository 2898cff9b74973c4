package qsim

import (
	"fmt"
	"strings"
)

// Layout maps a global amplitude index to a (partition, local index) pair
// and back. n is the full vector length. Inputs are in range by
// construction; implementations do not check them.
type Layout interface {
	Partitions() int
	PartitionOf(i, n int) (p, local int)
	GlobalOf(p, local, n int) int
	String() string
}

// Contiguous stores the whole vector in one partition.
type Contiguous struct{}

func (Contiguous) Partitions() int                     { return 1 }
func (Contiguous) PartitionOf(i, _ int) (p, local int) { return 0, i }
func (Contiguous) GlobalOf(_, local, _ int) int        { return local }
func (Contiguous) String() string                      { return "contiguous" }

// Halves splits the vector into two equal partitions: indices below n/2
// live in partition 0, the rest in partition 1 at i - n/2.
type Halves struct{}

func (Halves) Partitions() int { return 2 }

func (Halves) PartitionOf(i, n int) (p, local int) {
	half := n >> 1
	if i < half {
		return 0, i
	}
	return 1, i - half
}

func (Halves) GlobalOf(p, local, n int) int {
	return p*(n>>1) + local
}

func (Halves) String() string { return "halves" }

// ParseLayout accepts "contiguous" or "halves".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "contiguous", "unsplit", "":
		return Contiguous{}, nil
	case "halves", "split", "half-split":
		return Halves{}, nil
	}
	return nil, fmt.Errorf("qsim: unknown layout %q", s)
}
