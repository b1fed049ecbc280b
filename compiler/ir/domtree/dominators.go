package domtree

import "github.com/pcc-lang/pcc/compiler/ir"

// node is one entry of a computed dominator tree: mirrors DomTreeNode in
// original_source/ir_core/Dominators.hpp, generalized over the node type
// N so the same construction serves both DominatorTree and
// PostDominatorTree.
type node[N comparable] struct {
	num      int
	value    N
	idom     *node[N]
	children []*node[N]
}

// tree is the shared Cooper-Harvey-Kennedy construction, ported line for
// line from Dominators.cpp's recalculate/intersect: RPO-number every
// node as num = n - i - 1 (entry gets the *highest* number — see
// DESIGN.md resolution 3), then iterate predecessor-intersection to a
// fixed point.
type tree[N comparable] struct {
	nodes map[N]*node[N]
	root  *node[N]
}

func build[N comparable](g graph[N]) *tree[N] {
	order := reversePostOrder(g)
	n := len(order)

	t := &tree[N]{nodes: make(map[N]*node[N], n)}
	for i, v := range order {
		t.nodes[v] = &node[N]{num: n - i - 1, value: v}
	}

	t.root = t.nodes[g.entry()]
	t.root.idom = t.root

	changed := true
	for changed {
		changed = false
		for _, v := range order[1:] {
			bb := t.nodes[v]

			var newIdom *node[N]
			first := true
			for _, p := range g.pred(v) {
				pn, ok := t.nodes[p]
				if !ok || pn.idom == nil {
					continue
				}
				if first {
					newIdom = pn
					first = false
				} else {
					newIdom = intersect(newIdom, pn)
				}
			}

			if newIdom != bb.idom {
				bb.idom = newIdom
				changed = true
			}
		}
	}

	for _, nd := range t.nodes {
		if nd != t.root {
			nd.idom.children = append(nd.idom.children, nd)
		}
	}

	return t
}

// intersect walks the lower-numbered side up its idom chain until both
// sides meet, exactly as Dominators.cpp's intersect (the entry has the
// *highest* number in this numbering, so "lower" means "farther from the
// entry in RPO").
func intersect[N comparable](lhs, rhs *node[N]) *node[N] {
	for lhs != rhs {
		for lhs.num < rhs.num {
			lhs = lhs.idom
		}
		for rhs.num < lhs.num {
			rhs = rhs.idom
		}
	}
	return lhs
}

func (t *tree[N]) get(v N) *node[N] { return t.nodes[v] }

// dominates reports whether a dominates b (a == b counts as dominating).
func (t *tree[N]) dominates(a, b N) bool {
	an, bn := t.get(a), t.get(b)
	if an == nil || bn == nil {
		return false
	}
	for n := bn; ; n = n.idom {
		if n == an {
			return true
		}
		if n == t.root {
			return n == an
		}
	}
}

// --------------------------------------------------------------------
// Public API over *ir.Block, hiding the generic node/tree machinery
// from callers in compiler/passes/*.

// DominatorTree is the forward dominator tree of a Function, mirroring
// original_source/ir_core/Dominators.hpp's DominatorTree.
type DominatorTree struct {
	t *tree[*ir.Block]
}

// Build computes the dominator tree of fn, rooted at its entry block.
func Build(fn *ir.Function) *DominatorTree {
	return &DominatorTree{t: build[*ir.Block](forwardGraph{fn: fn})}
}

// Root returns the entry block.
func (d *DominatorTree) Root() *ir.Block { return d.t.root.value }

// IDom returns b's immediate dominator, or b itself for the entry block.
func (d *DominatorTree) IDom(b *ir.Block) *ir.Block {
	n := d.t.get(b)
	if n == nil || n.idom == nil {
		return nil
	}
	return n.idom.value
}

// Children returns the blocks b immediately dominates.
func (d *DominatorTree) Children(b *ir.Block) []*ir.Block {
	n := d.t.get(b)
	if n == nil {
		return nil
	}
	out := make([]*ir.Block, len(n.children))
	for i, c := range n.children {
		out[i] = c.value
	}
	return out
}

// Dominates reports whether a dominates b.
func (d *DominatorTree) Dominates(a, b *ir.Block) bool { return d.t.dominates(a, b) }

// PreOrder walks the dominator tree from the root, parents before
// children, the order GVN's dominator-tree-scoped recursion needs
// (original_source/passes/gvn.cpp's recursive global_value_numbering).
func (d *DominatorTree) PreOrder() []*ir.Block {
	var out []*ir.Block
	var walk func(n *node[*ir.Block])
	walk = func(n *node[*ir.Block]) {
		out = append(out, n.value)
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(d.t.root)
	return out
}

// PostDominatorTree is the dominator tree of the reverse CFG, rooted at
// the function's unique exit block (see graph.go's reverseGraph). Used
// by passes/dce for reverse dominance frontiers and post-dominator-based
// CFG simplification, mirroring original_source/passes/dce.cpp's
// PostDominatorTree usage.
type PostDominatorTree struct {
	t *tree[*ir.Block]
}

// BuildPost computes the post-dominator tree of fn.
func BuildPost(fn *ir.Function) *PostDominatorTree {
	return &PostDominatorTree{t: build[*ir.Block](newReverseGraph(fn))}
}

// Root returns the function's unique exit block.
func (d *PostDominatorTree) Root() *ir.Block { return d.t.root.value }

// IDom returns b's immediate post-dominator (b itself for the exit
// block).
func (d *PostDominatorTree) IDom(b *ir.Block) *ir.Block {
	n := d.t.get(b)
	if n == nil || n.idom == nil {
		return nil
	}
	return n.idom.value
}

// PostDominates reports whether a post-dominates b.
func (d *PostDominatorTree) PostDominates(a, b *ir.Block) bool {
	return d.t.dominates(a, b)
}
