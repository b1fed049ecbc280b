package domtree

import "github.com/pcc-lang/pcc/compiler/ir"

// PostOrder returns fn's blocks in DFS post-order over the forward CFG,
// matching original_source/ir_core/POTraversal.hpp as consumed by
// dce.cpp's reduce_control_flow(Function*) driver loop.
func PostOrder(fn *ir.Function) []*ir.Block {
	return postOrder[*ir.Block](forwardGraph{fn: fn})
}

// postOrder returns g's nodes reachable from entry in DFS post-order,
// mirroring POTraversal.hpp's dfs. reversePostOrder is just this order
// reversed, matching RPOTraversal.hpp building the same post-order array
// and exposing it through reverse iterators rather than recomputing.
func postOrder[N comparable](g graph[N]) []N {
	visited := make(map[N]bool)
	var order []N

	var dfs func(n N)
	dfs = func(n N) {
		visited[n] = true
		for _, s := range g.succ(n) {
			if !visited[s] {
				dfs(s)
			}
		}
		order = append(order, n)
	}

	dfs(g.entry())
	return order
}

// reversePostOrder returns g's nodes in RPO, the order Dominators.cpp's
// recalculate numbers nodes in.
func reversePostOrder[N comparable](g graph[N]) []N {
	po := postOrder(g)
	rpo := make([]N, len(po))
	for i, n := range po {
		rpo[len(po)-1-i] = n
	}
	return rpo
}
