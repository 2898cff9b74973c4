package circuitio

import "slices"

// Node is one step of a Program in its dependency graph. A step depends on
// the previous step on each qubit it touches.
type Node struct {
	Step         int // index into Program.Steps
	Layer        int // earliest moment the step can run in
	Dependencies []int
}

// DAG arranges the steps of a Program into moments: sets of steps on
// disjoint qubits that could run side by side. Execution stays in program
// order; the layering is for display and depth reporting.
type DAG struct {
	Nodes  []Node
	Layers [][]int // step indices per moment, in program order
}

// NewDAG builds the dependency graph of p.
func NewDAG(p Program) *DAG {
	dag := &DAG{Nodes: make([]Node, len(p.Steps))}
	lastOnQubit := make(map[int]int)

	for i, s := range p.Steps {
		node := Node{Step: i}
		for _, q := range s.Qubits() {
			prev, ok := lastOnQubit[q]
			if !ok {
				continue
			}
			if !slices.Contains(node.Dependencies, prev) {
				node.Dependencies = append(node.Dependencies, prev)
			}
			node.Layer = max(node.Layer, dag.Nodes[prev].Layer+1)
		}
		for _, q := range s.Qubits() {
			lastOnQubit[q] = i
		}
		dag.Nodes[i] = node

		for len(dag.Layers) <= node.Layer {
			dag.Layers = append(dag.Layers, nil)
		}
		dag.Layers[node.Layer] = append(dag.Layers[node.Layer], i)
	}
	return dag
}

// Depth returns the number of moments.
func (dag *DAG) Depth() int { return len(dag.Layers) }

// LayerOf returns the moment holding step i.
func (dag *DAG) LayerOf(i int) int { return dag.Nodes[i].Layer }
