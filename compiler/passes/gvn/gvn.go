// Package gvn implements dominator-tree-scoped global value numbering:
// constant folding of arithmetic instructions with all-constant operands,
// plus hash-consing of repeated arithmetic expressions within a
// dominator subtree. Ported from original_source/passes/gvn.cpp.
package gvn

import (
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/pcc-lang/pcc/compiler/ir"
	"github.com/pcc-lang/pcc/compiler/ir/domtree"
)

// exprKey identifies a foldable expression by opcode and operand
// identity. Mirrors expr_record exactly, including its non-commutativity
// (kind, lhs, rhs) — `a+b` and `b+a` hash to different keys, which is
// intentional (see DESIGN.md open-question resolution 1), not missed
// canonicalization.
type exprKey struct {
	kind Kind
	lhs  ir.Value
	rhs  ir.Value // nil for unary expressions
}

// Kind is a local alias kept for readability in this file's key type.
type Kind = ir.Kind

// Run runs GVN over fn, recursing the dominator tree exactly as
// global_value_numbering(DomTreeNode*, ...) does, with a fresh copy of
// the expr->value map per child so that sibling subtrees never see each
// other's hash-consed expressions (only dominating blocks' expressions
// are visible).
func Run(fn *ir.Function) {
	if fn.Entry() == nil {
		return
	}

	tree := domtree.Build(fn)
	folded, consed := 0, 0

	var walk func(b *ir.Block, exprToValue map[exprKey]ir.Value)
	walk = func(b *ir.Block, exprToValue map[exprKey]ir.Value) {
		f, c := processBlock(b, exprToValue)
		folded += f
		consed += c

		for _, child := range tree.Children(b) {
			// Copy the map: expr_to_value is passed by value to each
			// recursive call in the original, so a child's additions
			// never leak back to its siblings via the parent's map.
			childMap := make(map[exprKey]ir.Value, len(exprToValue))
			for k, v := range exprToValue {
				childMap[k] = v
			}
			walk(child, childMap)
		}
	}

	walk(tree.Root(), make(map[exprKey]ir.Value))

	if folded > 0 || consed > 0 {
		tlog.Printw("gvn folded and hash-consed expressions",
			"function", fn.Name(), "folded", folded, "hash_consed", consed, "from", loc.Caller(1))
	}
}

func processBlock(b *ir.Block, exprToValue map[exprKey]ir.Value) (folded, consed int) {
	// Copy the instruction slice: Erase mutates b.Insts() in place, so a
	// live range here would skip instructions.
	insts := append([]ir.Inst(nil), b.Insts()...)

	for _, inst := range insts {
		if isConstExpr(inst) {
			val := constVal(inst, b.Function())
			inst.ReplaceAllUsesWith(val)
			inst.Erase()
			folded++
			continue
		}

		if !isArithmetic(inst.Kind()) {
			continue
		}

		key := exprKeyOf(inst)
		if existing, ok := exprToValue[key]; ok {
			inst.ReplaceAllUsesWith(existing)
			inst.Erase()
			consed++
			continue
		}

		exprToValue[key] = inst
	}

	return folded, consed
}

func isArithmetic(k ir.Kind) bool {
	return k == ir.KindNeg || k == ir.KindBitNot || ir.IsBinary(k)
}

func isConstant(v ir.Value) bool {
	_, ok := v.(*ir.ConstantInt)
	return ok
}

func isConstExpr(inst ir.Inst) bool {
	if !isArithmetic(inst.Kind()) {
		return false
	}
	switch v := inst.(type) {
	case *ir.UnaryInst:
		return isConstant(v.Operand0())
	case *ir.BinaryInst:
		if !isConstant(v.LHS()) || !isConstant(v.RHS()) {
			return false
		}
		// Division/modulo by a constant zero is never folded at compile
		// time (spec.md §4.8): treated as a plain non-constant arithmetic
		// expression instead, still eligible for hash-consing below but
		// never erased-and-replaced here.
		if v.Kind() == ir.KindDiv || v.Kind() == ir.KindMod {
			return v.RHS().(*ir.ConstantInt).Value() != 0
		}
		return true
	}
	return false
}

func exprKeyOf(inst ir.Inst) exprKey {
	switch v := inst.(type) {
	case *ir.UnaryInst:
		return exprKey{kind: v.Kind(), lhs: v.Operand0()}
	case *ir.BinaryInst:
		return exprKey{kind: v.Kind(), lhs: v.LHS(), rhs: v.RHS()}
	}
	panic("gvn: exprKeyOf called on non-arithmetic instruction")
}

// constVal evaluates a constant-operand arithmetic instruction, mirroring
// get_const_val. By the time it's called, isConstExpr has already ruled
// out zero divisors, so the division/modulo cases below never execute
// against a zero rhs.
func constVal(inst ir.Inst, fn *ir.Function) ir.Value {
	switch v := inst.(type) {
	case *ir.UnaryInst:
		val := v.Operand0().(*ir.ConstantInt).Value()
		switch v.Kind() {
		case ir.KindNeg:
			val = -val
		case ir.KindBitNot:
			val = ^val
		default:
			panic("gvn: unexpected unary kind in constVal")
		}
		return constCtx(fn).GetConstantInt(val)

	case *ir.BinaryInst:
		lhs := v.LHS().(*ir.ConstantInt).Value()
		rhs := v.RHS().(*ir.ConstantInt).Value()
		var val int64
		switch v.Kind() {
		case ir.KindAdd:
			val = lhs + rhs
		case ir.KindSub:
			val = lhs - rhs
		case ir.KindMul:
			val = lhs * rhs
		case ir.KindDiv:
			val = lhs / rhs
		case ir.KindMod:
			val = lhs % rhs
		case ir.KindEq:
			val = boolToInt(lhs == rhs)
		case ir.KindNe:
			val = boolToInt(lhs != rhs)
		case ir.KindLt:
			val = boolToInt(lhs < rhs)
		case ir.KindLe:
			val = boolToInt(lhs <= rhs)
		case ir.KindBitAnd:
			val = lhs & rhs
		case ir.KindBitOr:
			val = lhs | rhs
		case ir.KindBitXor:
			val = lhs ^ rhs
		default:
			panic("gvn: unexpected binary kind in constVal")
		}
		return constCtx(fn).GetConstantInt(val)
	}
	panic("gvn: constVal called on non-arithmetic instruction")
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// constCtx recovers the Context to intern the folded constant through,
// matching original_source/passes/gvn.cpp's `context = fn->get_context()`.
func constCtx(fn *ir.Function) *ir.Context {
	return fn.Context()
}
