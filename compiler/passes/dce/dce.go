// Package dce implements aggressive dead-code elimination: mark every
// value reachable from a critical instruction (through operand edges,
// BlockParam-to-predecessor-argument edges, and reverse dominance
// frontiers), sweep everything unmarked, then iteratively simplify the
// resulting CFG to a fixed point. Ported from
// original_source/passes/dce.cpp.
package dce

import (
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/pcc-lang/pcc/compiler/ir"
	"github.com/pcc-lang/pcc/compiler/ir/domtree"
)

// Run runs aggressive DCE over fn: mark, sweep, then reduce_control_flow
// to a fixed point, mirroring dead_code_elimination(Function*).
func Run(fn *ir.Function) {
	if fn.Entry() == nil {
		return
	}

	tree := domtree.BuildPost(fn)
	marked, useful := mark(fn, tree)
	sweep(fn, marked, useful, tree)
	reduceControlFlow(fn)

	tlog.Printw("dce finished", "function", fn.Name(), "marked_values", len(marked), "from", loc.Caller(1))
}

// calculateRDF computes the reverse dominance frontier of every block:
// for each block b with two or more successors, every block on the
// post-dominator-tree path from a successor up to (not including) b's
// immediate post-dominator gets b in its frontier. rdf[bb] is thus the
// set of blocks whose branch decides whether bb runs, i.e. the
// control-dependence sources of bb. Mirrors calculate_rdf.
func calculateRDF(fn *ir.Function, tree *domtree.PostDominatorTree) map[*ir.Block][]*ir.Block {
	rdf := make(map[*ir.Block][]*ir.Block, len(fn.Blocks()))
	for _, bb := range fn.Blocks() {
		rdf[bb] = nil
	}

	for _, bb := range fn.Blocks() {
		succs := bb.Successors()
		if len(succs) < 2 {
			continue
		}

		idomBB := tree.IDom(bb)
		for _, succ := range succs {
			runner := succ
			for runner != nil && runner != idomBB {
				rdf[runner] = append(rdf[runner], bb)
				runner = tree.IDom(runner)
			}
		}
	}

	return rdf
}

// isCritical reports whether inst must be kept regardless of whether any
// other value uses its result: returns, stores to global storage (an
// externally observable effect), and unconditional branches (needed to
// keep the CFG connected). Mirrors is_critical.
func isCritical(inst ir.Inst) bool {
	switch v := inst.(type) {
	case *ir.RetInst:
		return true
	case *ir.StoreInst:
		_, isGlobal := v.Pointer().(ir.GlobalObject)
		return isGlobal
	case *ir.BrInst:
		return !v.IsConditional()
	}
	return false
}

func addToWorkList(val ir.Value, marked map[ir.Value]bool, workList *[]ir.Value) {
	if val == nil || marked[val] {
		return
	}
	marked[val] = true
	*workList = append(*workList, val)
}

// markValue propagates liveness from an already-marked value to whatever
// it depends on: its own operands, the predecessor branch argument
// supplying a BlockParam, and the terminators of its reverse dominance
// frontier (whose branch outcome controls whether val's block executes
// at all). Mirrors the single-value mark overload.
func markValue(val ir.Value, marked map[ir.Value]bool, workList *[]ir.Value,
	rdf map[*ir.Block][]*ir.Block, useful map[*ir.Block]bool) {

	switch v := val.(type) {
	case *ir.BinaryInst:
		addToWorkList(v.LHS(), marked, workList)
		addToWorkList(v.RHS(), marked, workList)
	case *ir.UnaryInst:
		addToWorkList(v.Operand0(), marked, workList)
	case *ir.RetInst:
		addToWorkList(v.Value(), marked, workList)
	case *ir.BrInst:
		if v.IsConditional() {
			addToWorkList(v.Cond(), marked, workList)
		}
	case *ir.StoreInst:
		addToWorkList(v.Pointer(), marked, workList)
		addToWorkList(v.StoredValue(), marked, workList)
	case *ir.CallInst:
		for _, a := range v.Args() {
			addToWorkList(a, marked, workList)
		}
	case *ir.BlockParam:
		index := v.Index()
		for _, pred := range v.Block().Predecessors() {
			br := pred.Terminator().(*ir.BrInst)
			addToWorkList(br, marked, workList)
			if br.Then() == v.Block() {
				addToWorkList(br.ThenArgs()[index], marked, workList)
			} else {
				addToWorkList(br.ElseArgs()[index], marked, workList)
			}
		}
	}

	var bb *ir.Block
	if inst, ok := val.(ir.Inst); ok {
		bb = inst.Block()
	} else if p, ok := val.(*ir.BlockParam); ok {
		bb = p.Block()
	}

	if bb != nil {
		for _, frontier := range rdf[bb] {
			term := frontier.Terminator()
			addToWorkList(term, marked, workList)
		}
		useful[bb] = true
	}
}

// mark floods liveness from every critical instruction, returning the set
// of marked values and the set of blocks reached (useful_block). Mirrors
// the Function* mark overload.
func mark(fn *ir.Function, tree *domtree.PostDominatorTree) (map[ir.Value]bool, map[*ir.Block]bool) {
	marked := make(map[ir.Value]bool)
	useful := make(map[*ir.Block]bool)
	var workList []ir.Value

	for _, bb := range fn.Blocks() {
		for _, inst := range bb.Insts() {
			if isCritical(inst) {
				marked[inst] = true
				workList = append(workList, inst)
			}
		}
	}

	rdf := calculateRDF(fn, tree)
	for len(workList) > 0 {
		v := workList[0]
		workList = workList[1:]
		markValue(v, marked, &workList, rdf, useful)
	}

	return marked, useful
}

// findMarkedPostdominator walks up bb's post-dominator chain to the
// nearest block that survived sweep, the new target for an unmarked
// conditional branch's unconditional replacement. Mirrors
// find_marked_postdominator.
func findMarkedPostdominator(bb *ir.Block, useful map[*ir.Block]bool, tree *domtree.PostDominatorTree) *ir.Block {
	target := tree.IDom(bb)
	for !useful[target] {
		target = tree.IDom(target)
	}
	return target
}

func removeAt(s []ir.Value, i int) []ir.Value {
	out := make([]ir.Value, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out
}

// removeParamArg drops the argument at index from every predecessor
// branch's argument list for bb, ahead of erasing the BlockParam at that
// index.
func removeParamArg(bb *ir.Block, index int) {
	for _, pred := range bb.Predecessors() {
		br := pred.Terminator().(*ir.BrInst)
		if br.Then() == bb {
			br.SetThenArgs(removeAt(br.ThenArgs(), index))
		} else {
			br.SetElseArgs(removeAt(br.ElseArgs(), index))
		}
	}
}

// sweep erases every unmarked BlockParam and instruction. An unmarked
// conditional branch is special-cased: rather than erasing the block's
// only terminator (which would leave it dangling), it's replaced with an
// unconditional jump to the nearest surviving post-dominator. Mirrors
// sweep.
func sweep(fn *ir.Function, marked map[ir.Value]bool, useful map[*ir.Block]bool, tree *domtree.PostDominatorTree) {
	for _, bb := range fn.Blocks() {
		for i := 0; i < len(bb.Params()); {
			p := bb.Params()[i]
			if marked[p] {
				i++
				continue
			}
			removeParamArg(bb, p.Index())
			bb.EraseParam(p.Index())
		}

		insts := append([]ir.Inst(nil), bb.Insts()...)
		for _, inst := range insts {
			if marked[inst] {
				continue
			}

			if br, ok := inst.(*ir.BrInst); ok && br.IsConditional() {
				// The nearest surviving post-dominator never has block
				// params: a useful block with params is reachable from
				// more than one live predecessor, which would make it
				// its own immediate post-dominator's dominance frontier
				// entry, contradicting survival past sweep's param pass.
				target := findMarkedPostdominator(bb, useful, tree)
				builder := ir.NewBuilder(fn.Context())
				builder.SetInsertPoint(bb)
				builder.CreateBr(target, nil)
				br.Erase()
				break
			}

			inst.ReplaceAllUsesWith(nil)
			inst.Erase()
		}
	}
}

// isRedundantCondBr reports whether br's then and else targets (and their
// argument lists) are identical, making the condition irrelevant. Mirrors
// is_redundant_cond_br.
func isRedundantCondBr(br *ir.BrInst) bool {
	if br.Then() != br.Else() {
		return false
	}
	thenArgs, elseArgs := br.ThenArgs(), br.ElseArgs()
	if len(thenArgs) != len(elseArgs) {
		return false
	}
	for i := range thenArgs {
		if thenArgs[i] != elseArgs[i] {
			return false
		}
	}
	return true
}

// justForwarding reports whether bb's sole instruction is a branch that
// forwards each of bb's own params straight through as arguments, at
// matching index, to every live successor — i.e. bb does nothing but
// relay control and data. Mirrors just_forwarding.
func justForwarding(bb *ir.Block) bool {
	br := bb.Terminator().(*ir.BrInst)
	params := bb.Params()

	if !br.IsConditional() {
		args := br.ThenArgs()
		if len(params) != len(args) {
			return false
		}
		for i, p := range params {
			bp, ok := args[i].(*ir.BlockParam)
			if !ok || bp != p {
				return false
			}
		}
		return true
	}

	n := len(params)
	thenArgs, elseArgs := br.ThenArgs(), br.ElseArgs()
	if n != len(thenArgs) || n != len(elseArgs) {
		return false
	}
	for i, p := range params {
		bp1, ok1 := thenArgs[i].(*ir.BlockParam)
		bp2, ok2 := elseArgs[i].(*ir.BlockParam)
		if !ok1 || bp1 != p || !ok2 || bp2 != p {
			return false
		}
	}
	return true
}

// reduceControlFlowBlock applies one round of local CFG simplification at
// i, reporting whether it changed anything. Mirrors reduce_control_flow(BB*).
func reduceControlFlowBlock(i *ir.Block) bool {
	changed := false
	fn := i.Function()

	if br, ok := i.Terminator().(*ir.BrInst); ok && br.IsConditional() {
		if isRedundantCondBr(br) {
			builder := ir.NewBuilder(fn.Context())
			builder.SetInsertPoint(i)
			builder.CreateBr(br.Then(), br.ThenArgs())
			br.Erase()
			changed = true
		}
	}

	jmp, ok := i.Terminator().(*ir.BrInst)
	if !ok || jmp.IsConditional() {
		return changed
	}
	j := jmp.Then()

	live := true
	// A function's entry block is never erased, even when it is itself a
	// pure-forwarding block: nothing else identifies it as the entry
	// point, unlike a C++ ilist where block 0's slot is structural.
	if len(i.Insts()) == 1 && i != fn.Entry() {
		switch {
		case justForwarding(i):
			for _, pred := range i.Predecessors() {
				last := pred.Terminator().(*ir.BrInst)
				if last.IsConditional() && last.Else() == i {
					last.SetElse(j)
				} else {
					last.SetThen(j)
				}
			}
			for k, p := range i.Params() {
				p.ReplaceAllUsesWith(j.Params()[k])
			}
			fn.EraseBlock(i)
			changed, live = true, false

		case len(i.Params()) == 0 && len(j.Params()) > 0 && len(i.Predecessors()) > 0:
			jmpArgs := jmp.ThenArgs()
			for _, pred := range i.Predecessors() {
				last := pred.Terminator().(*ir.BrInst)
				if last.Then() == i {
					last.SetThen(j)
					last.SetThenArgs(append(append([]ir.Value{}, last.ThenArgs()...), jmpArgs...))
				} else {
					last.SetElse(j)
					last.SetElseArgs(append(append([]ir.Value{}, last.ElseArgs()...), jmpArgs...))
				}
			}
			fn.EraseBlock(i)
			changed, live = true, false
		}
	}

	if !live {
		return changed
	}

	switch {
	case len(j.Predecessors()) == 1:
		args := jmp.ThenArgs()
		for k, p := range j.Params() {
			p.ReplaceAllUsesWith(args[k])
		}
		jmp.Erase()
		j.MoveInstsTo(i)
		fn.EraseBlock(j)
		changed = true

	case len(j.Insts()) == 1:
		jbr, ok := j.Terminator().(*ir.BrInst)
		if !ok || !jbr.IsConditional() {
			break
		}

		if justForwarding(j) {
			cond := jbr.Cond()
			target1, target2 := jbr.Then(), jbr.Else()
			args := jmp.ThenArgs()

			idx := -1
			if p, ok := cond.(*ir.BlockParam); ok && p.Block() == j {
				idx = p.Index()
			}

			newCond := cond
			if idx != -1 {
				newCond = args[idx]
			}

			builder := ir.NewBuilder(fn.Context())
			builder.SetInsertPoint(i)
			builder.CreateCondBr(newCond, target1, append([]ir.Value{}, args...), target2, append([]ir.Value{}, args...))

			jmp.Erase()
			changed = true
		} else if len(j.Params()) == 0 && (len(jbr.ThenArgs()) > 0 || len(jbr.ElseArgs()) > 0) {
			builder := ir.NewBuilder(fn.Context())
			builder.SetInsertPoint(i)
			builder.CreateCondBr(jbr.Cond(), jbr.Then(), jbr.ThenArgs(), jbr.Else(), jbr.ElseArgs())
			jmp.Erase()
			changed = true
		}
	}

	return changed
}

// reduceControlFlow iterates reduceControlFlowBlock over fn's blocks in
// post-order until a full pass makes no further change. Mirrors
// reduce_control_flow(Function*).
func reduceControlFlow(fn *ir.Function) {
	changed := true
	for changed {
		changed = false
		for _, bb := range domtree.PostOrder(fn) {
			if _, ok := bb.Terminator().(*ir.BrInst); ok {
				if reduceControlFlowBlock(bb) {
					changed = true
				}
			}
		}
	}
}
