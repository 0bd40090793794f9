package algorithm_test

import (
	"fmt"

	"github.com/cwbudde/algo-fm/synth/algorithm"
)

func ExampleNew() {
	// Operator 1 modulates operator 0 directly; operator 0 also
	// feeds back into itself, unrolled one level deep.
	matrix := [][]int{
		{2, 1},
		{0, 0},
	}
	alg, err := algorithm.New(matrix, []int{0})
	if err != nil {
		panic(err)
	}
	fmt.Printf("%d operators, %d graph nodes, feedback depth %d\n",
		alg.NumOperators(), alg.NodeCount(), alg.MaxLevel())

	// Output:
	// 2 operators, 3 graph nodes, feedback depth 1
}

func ExampleStack2() {
	alg, err := algorithm.Stack2(2)
	if err != nil {
		panic(err)
	}
	fmt.Println(alg.NumOperators(), alg.NodeCount())

	// Output:
	// 2 2
}
