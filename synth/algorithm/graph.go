package algorithm

// node is an operator at one unrolled feedback level. inputs holds the
// indices of the nodes whose outputs modulate this one.
type node struct {
	op     int
	inputs []int
}

// nodeKey memoizes nodes by (operator, unrolling level).
type nodeKey struct {
	op    int
	level int
}

// graph is the compiled, acyclic unrolled structure. nodes is an arena;
// carriers indexes the node backing each carrier operator.
type graph struct {
	nodes    []node
	carriers []int
	maxLevel int
}

// compile builds the unrolled graph for a validated matrix and carrier
// set. Every carrier is resolved at the maximum unrolling level; the
// (operator, level) memo bounds the arena and terminates arbitrary cycles.
func compile(matrix [][]int, carriers []int) *graph {
	maxLevel := 0
	for _, row := range matrix {
		for _, n := range row {
			if n-1 > maxLevel {
				maxLevel = n - 1
			}
		}
	}

	g := &graph{maxLevel: maxLevel}
	memo := make(map[nodeKey]int)
	for _, op := range carriers {
		g.carriers = append(g.carriers, g.resolve(op, maxLevel, matrix, memo))
	}
	return g
}

// resolve returns the arena index for (op, level), creating the node and
// its input edges on first use.
//
// A source connected with depth 1 is always taken at level 0 (a direct
// tap); a deeper connection is taken one level lower, and is dropped
// entirely once the recursion bottoms out at level 0.
func (g *graph) resolve(op, level int, matrix [][]int, memo map[nodeKey]int) int {
	key := nodeKey{op: op, level: level}
	if idx, ok := memo[key]; ok {
		return idx
	}

	idx := len(g.nodes)
	g.nodes = append(g.nodes, node{op: op})
	memo[key] = idx

	var inputs []int
	for src, n := range matrix[op] {
		if n <= 0 {
			continue
		}
		srcLevel := 0
		if n > 1 {
			if level == 0 {
				continue
			}
			srcLevel = level - 1
		}
		inputs = append(inputs, g.resolve(src, srcLevel, matrix, memo))
	}
	g.nodes[idx].inputs = inputs
	return idx
}
