package ir

import (
	"fmt"
	"strings"
)

// Print renders m as textual IR, diagnostic only (spec.md §6). Value
// numbers are assigned per-function on first print, matching
// original_source/ir_core/IRPrinter.cpp's numbering pass.
func Print(m *Module) string {
	var sb strings.Builder
	for i, f := range m.Functions() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		printFunction(&sb, f)
	}
	return sb.String()
}

func printFunction(sb *strings.Builder, f *Function) {
	nums := numberValues(f)

	fmt.Fprintf(sb, "func %s(", f.Name())
	for i, p := range f.Params() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s %%%d", p.Type(), nums[p])
	}
	fmt.Fprintf(sb, ") %s {\n", f.ReturnType())

	for _, b := range f.Blocks() {
		printBlock(sb, b, nums)
	}
	sb.WriteString("}\n")
}

func printBlock(sb *strings.Builder, b *Block, nums map[Value]int) {
	fmt.Fprintf(sb, "%s(", b.Name())
	for i, p := range b.Params() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(sb, "%s %%%d", p.Type(), nums[p])
	}
	sb.WriteString(")")

	if preds := b.Predecessors(); len(preds) > 0 {
		sb.WriteString("  ; preds =")
		for _, p := range preds {
			sb.WriteString(" " + p.Name())
		}
	}
	sb.WriteString(":\n")

	for _, inst := range b.Insts() {
		sb.WriteString("  ")
		printInst(sb, inst, nums)
		sb.WriteByte('\n')
	}
}

func printInst(sb *strings.Builder, inst Inst, nums map[Value]int) {
	hasResult := inst.Kind() != KindStore && inst.Kind() != KindRet && inst.Kind() != KindBr
	if hasResult {
		fmt.Fprintf(sb, "%%%d = ", nums[inst])
	}

	switch v := inst.(type) {
	case *UnaryInst:
		fmt.Fprintf(sb, "%s %s %s", v.Kind(), v.Type(), ref(v.Operand0(), nums))
	case *BinaryInst:
		fmt.Fprintf(sb, "%s %s %s, %s", v.Kind(), v.Type(), ref(v.LHS(), nums), ref(v.RHS(), nums))
	case *RetInst:
		if val := v.Value(); val != nil {
			fmt.Fprintf(sb, "ret %s", ref(val, nums))
		} else {
			sb.WriteString("ret void")
		}
	case *BrInst:
		if v.IsConditional() {
			fmt.Fprintf(sb, "br %s, %s(%s), %s(%s)",
				ref(v.Cond(), nums),
				v.Then().Name(), refList(v.ThenArgs(), nums),
				v.Else().Name(), refList(v.ElseArgs(), nums))
		} else {
			fmt.Fprintf(sb, "br %s(%s)", v.Then().Name(), refList(v.ThenArgs(), nums))
		}
	case *CallInst:
		fmt.Fprintf(sb, "call %s @%s(%s)", v.Type(), v.Callee().Name(), refList(v.Args(), nums))
	case *AllocaInst:
		fmt.Fprintf(sb, "alloca %s", v.AllocatedType())
	case *StoreInst:
		fmt.Fprintf(sb, "store %s, %s", ref(v.StoredValue(), nums), ref(v.Pointer(), nums))
	}
}

func ref(v Value, nums map[Value]int) string {
	if v == nil {
		return "<nil>"
	}
	if c, ok := v.(*ConstantInt); ok {
		return fmt.Sprintf("%d", c.Value())
	}
	if g, ok := v.(GlobalObject); ok {
		return "@" + g.Name()
	}
	return fmt.Sprintf("%%%d", nums[v])
}

func refList(vs []Value, nums map[Value]int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = ref(v, nums)
	}
	return strings.Join(parts, ", ")
}

// numberValues assigns a stable per-function value number to every
// FunctionParam, BlockParam, and result-producing instruction, in
// definition order — matching how IRPrinter.cpp numbers on first print
// rather than storing a name on every Value.
func numberValues(f *Function) map[Value]int {
	nums := make(map[Value]int)
	n := 0
	for _, p := range f.Params() {
		nums[p] = n
		n++
	}
	for _, b := range f.Blocks() {
		for _, p := range b.Params() {
			nums[p] = n
			n++
		}
		for _, inst := range b.Insts() {
			if inst.Kind() == KindStore || inst.Kind() == KindRet || inst.Kind() == KindBr {
				continue
			}
			nums[inst] = n
			n++
		}
	}
	return nums
}
