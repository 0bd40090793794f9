// Package algorithm compiles an operator modulation matrix into a bounded
// acyclic recursion structure and evaluates it buffer-by-buffer.
//
// The matrix entry matrix[i][j] = n (n >= 1) means operator j modulates
// operator i: n = 1 is a direct, non-recursive tap, while n > 1 asks for
// self or cyclic modulation approximated by unrolling the graph to depth
// n-1. Each unrolling level of an operator becomes a distinct virtual
// node, memoized by (operator, level), which bounds the structure to at
// most operators × (maxLevel+1) nodes and guarantees termination for
// arbitrary cycles in the source matrix.
package algorithm

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fm/synth/buffer"
	"github.com/cwbudde/algo-fm/synth/core"
	"github.com/cwbudde/algo-fm/synth/operator"
)

var (
	// ErrMatrixNotSquare reports an adjacency matrix whose rows disagree
	// with its height.
	ErrMatrixNotSquare = errors.New("modulation matrix must be square")
	// ErrCarrierRange reports a carrier index outside the operator range.
	ErrCarrierRange = errors.New("carrier index out of range")
	// ErrNegativeEntry reports a negative feedback-depth matrix entry.
	ErrNegativeEntry = errors.New("matrix entry must be >= 0")
	// ErrOperatorMismatch reports a live operator count that disagrees
	// with the matrix size at processing time.
	ErrOperatorMismatch = errors.New("operator count does not match matrix size")

	// errNodeRange flags an index invariant violation inside the
	// compiled graph. It always indicates a logic error, never bad input.
	errNodeRange = errors.New("graph node index out of range")
)

// Algorithm defines the operator connections for FM synthesis. It is
// immutable after construction; the unrolled graph is compiled once in New.
type Algorithm struct {
	matrix   [][]int
	carriers []int
	graph    *graph
	pool     *buffer.Pool
}

// New validates the matrix and carrier set and compiles the unrolled
// modulation graph. Matrix entries are feedback depths: 0 means no
// connection, 1 a direct tap, n > 1 a connection unrolled to depth n-1.
func New(matrix [][]int, carriers []int) (*Algorithm, error) {
	numOps := len(matrix)
	for i, row := range matrix {
		if len(row) != numOps {
			return nil, fmt.Errorf("row %d has %d entries for %d operators: %w",
				i, len(row), numOps, ErrMatrixNotSquare)
		}
		for j, n := range row {
			if n < 0 {
				return nil, fmt.Errorf("matrix[%d][%d] = %d: %w", i, j, n, ErrNegativeEntry)
			}
		}
	}
	for _, c := range carriers {
		if c < 0 || c >= numOps {
			return nil, fmt.Errorf("carrier %d with %d operators: %w", c, numOps, ErrCarrierRange)
		}
	}

	a := &Algorithm{
		matrix:   matrix,
		carriers: carriers,
		pool:     buffer.NewPool(),
	}
	a.graph = compile(matrix, carriers)
	return a, nil
}

// Simple returns the trivial algorithm: operator 0 as the only carrier,
// no modulation.
func Simple(numOperators int) (*Algorithm, error) {
	matrix := emptyMatrix(numOperators)
	var carriers []int
	if numOperators > 0 {
		carriers = []int{0}
	}
	return New(matrix, carriers)
}

// Stack2 returns a two-operator stack: operator 1 modulates operator 0,
// which carries.
func Stack2(numOperators int) (*Algorithm, error) {
	if numOperators < 2 {
		return Simple(numOperators)
	}
	matrix := emptyMatrix(numOperators)
	matrix[0][1] = 1
	return New(matrix, []int{0})
}

// Feedback1 returns a single carrier with one pass of self-feedback on
// operator 0.
func Feedback1(numOperators int) (*Algorithm, error) {
	if numOperators < 1 {
		return Simple(numOperators)
	}
	matrix := emptyMatrix(numOperators)
	matrix[0][0] = 2
	return New(matrix, []int{0})
}

func emptyMatrix(n int) [][]int {
	if n < 0 {
		n = 0
	}
	matrix := make([][]int, n)
	for i := range matrix {
		matrix[i] = make([]int, n)
	}
	return matrix
}

// NumOperators returns the matrix size.
func (a *Algorithm) NumOperators() int {
	return len(a.matrix)
}

// Carriers returns a copy of the carrier operator indices.
func (a *Algorithm) Carriers() []int {
	out := make([]int, len(a.carriers))
	copy(out, a.carriers)
	return out
}

// NodeCount returns the number of virtual nodes in the unrolled graph.
func (a *Algorithm) NodeCount() int {
	return len(a.graph.nodes)
}

// MaxLevel returns the unrolling depth derived from the matrix.
func (a *Algorithm) MaxLevel() int {
	return a.graph.maxLevel
}

// Process evaluates the compiled graph into output for a voice playing at
// baseFrequency, summing the carrier outputs. The buffer is always zeroed
// first, so any error leaves the caller with silence rather than garbage.
//
// A zero-length output, or an empty operator set, is a safe no-op. An
// operator set whose size disagrees with the matrix is a configuration
// error reported to the caller.
func (a *Algorithm) Process(ops []*operator.Operator, baseFrequency float64, output []float64, sampleRate float64, startSample uint64) error {
	core.Zero(output)
	if len(output) == 0 || len(ops) == 0 {
		return nil
	}
	if len(a.matrix) != len(ops) {
		return fmt.Errorf("matrix size %d, live operators %d: %w",
			len(a.matrix), len(ops), ErrOperatorMismatch)
	}

	for _, carrierIdx := range a.graph.carriers {
		out := a.pool.Get(len(output))
		err := a.eval(carrierIdx, ops, baseFrequency, out.Samples(), sampleRate, startSample)
		if err != nil {
			a.pool.Put(out)
			core.Zero(output)
			return err
		}
		vecmath.AddBlockInPlace(output, out.Samples())
		a.pool.Put(out)
	}
	return nil
}

// eval recursively renders one graph node into out. A node's modulation
// input is the sum of its input nodes' outputs, each scaled by the input
// operator's modulation index.
func (a *Algorithm) eval(nodeIdx int, ops []*operator.Operator, baseFrequency float64, out []float64, sampleRate float64, startSample uint64) error {
	if nodeIdx < 0 || nodeIdx >= len(a.graph.nodes) {
		return fmt.Errorf("node %d of %d: %w", nodeIdx, len(a.graph.nodes), errNodeRange)
	}
	node := a.graph.nodes[nodeIdx]
	if node.op < 0 || node.op >= len(ops) {
		return fmt.Errorf("node %d operator %d of %d: %w", nodeIdx, node.op, len(ops), errNodeRange)
	}

	mod := a.pool.Get(len(out))
	defer a.pool.Put(mod)

	for _, inputIdx := range node.inputs {
		if inputIdx < 0 || inputIdx >= len(a.graph.nodes) {
			return fmt.Errorf("input node %d of %d: %w", inputIdx, len(a.graph.nodes), errNodeRange)
		}
		modOp := a.graph.nodes[inputIdx].op
		if modOp < 0 || modOp >= len(ops) {
			return fmt.Errorf("input node %d operator %d of %d: %w", inputIdx, modOp, len(ops), errNodeRange)
		}

		tmp := a.pool.Get(len(out))
		err := a.eval(inputIdx, ops, baseFrequency, tmp.Samples(), sampleRate, startSample)
		if err != nil {
			a.pool.Put(tmp)
			return err
		}
		vecmath.ScaleBlockInPlace(tmp.Samples(), ops[modOp].ModulationIndex)
		vecmath.AddBlockInPlace(mod.Samples(), tmp.Samples())
		a.pool.Put(tmp)
	}

	ops[node.op].Process(baseFrequency, out, mod.Samples(), sampleRate, startSample)
	return nil
}
