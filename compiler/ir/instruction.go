package ir

import "github.com/pcc-lang/pcc/compiler/types"

// Inst is the common interface of every instruction (everything that can
// sit in a Block's instruction list). Mirrors original_source/ir_core/
// Instruction.hpp's Inst base class.
type Inst interface {
	User
	Block() *Block
	setBlock(b *Block)

	// erase unlinks this instruction from its Block and drops all of its
	// operand edges. Equivalent to Inst::erase_from_parent.
	Erase()
}

type instBase struct {
	userBase
	block *Block
}

func (i *instBase) Block() *Block      { return i.block }
func (i *instBase) setBlock(b *Block)  { i.block = b }

// --------------------------------------------------------------------
// Unary instructions: Neg, BitNot, Load, Cast.

// UnaryInst covers the four single-operand instructions. Load's operand
// is the pointer being read; Cast's Type() is the target type and its
// operand is the value being converted; Neg/BitNot are arithmetic.
// Mirrors original_source/ir_core/Instruction.hpp's UnaryInst/LoadInst/
// CastInst.
type UnaryInst struct {
	instBase
}

func newUnaryInst(kind Kind, typ *types.Type, operand Value) *UnaryInst {
	i := &UnaryInst{}
	i.kind = kind
	i.typ = typ
	i.addOperand(i, operand)
	return i
}

// Operand0 returns the single operand (pointer for Load, value for Cast/
// Neg/BitNot).
func (i *UnaryInst) Operand0() Value { return i.Operand(0) }

func (i *UnaryInst) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(i, i.users, v)
}

func (i *UnaryInst) Erase() {
	if i.block != nil {
		i.block.removeInst(i)
	}
	i.dropAllReferences()
}

// --------------------------------------------------------------------
// Binary instructions: arithmetic (Add/Sub/Mul/Div/Mod/BitAnd/BitOr/
// BitXor) and compares (Eq/Ne/Lt/Le). Compares always produce TyBool;
// arithmetic produces the (already-unified, by the front end) operand
// type. Mirrors BinaryInst/CmpInst.
type BinaryInst struct {
	instBase
}

func newBinaryInst(kind Kind, typ *types.Type, lhs, rhs Value) *BinaryInst {
	i := &BinaryInst{}
	i.kind = kind
	i.typ = typ
	i.addOperand(i, lhs)
	i.addOperand(i, rhs)
	return i
}

func (i *BinaryInst) LHS() Value { return i.Operand(0) }
func (i *BinaryInst) RHS() Value { return i.Operand(1) }

func (i *BinaryInst) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(i, i.users, v)
}

func (i *BinaryInst) Erase() {
	if i.block != nil {
		i.block.removeInst(i)
	}
	i.dropAllReferences()
}

// --------------------------------------------------------------------
// RetInst: function return, with an optional value operand (absent for
// void-returning functions). Always the sole terminator of its Block
// when present — never followed by a Br. Mirrors RetInst.
type RetInst struct {
	instBase
	hasValue bool
}

func newRetInst(val Value) *RetInst {
	i := &RetInst{}
	i.kind = KindRet
	i.typ = types.TyVoid
	if val != nil {
		i.addOperand(i, val)
		i.hasValue = true
	}
	return i
}

// Value returns the returned Value, or nil for a void return.
func (i *RetInst) Value() Value {
	if !i.hasValue {
		return nil
	}
	return i.Operand(0)
}

func (i *RetInst) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(i, i.users, v)
}

func (i *RetInst) Erase() {
	if i.block != nil {
		i.block.removeInst(i)
	}
	i.dropAllReferences()
}

// --------------------------------------------------------------------
// BrInst: the sole branching terminator, unifying unconditional and
// conditional branches (the latter is what an if/else or loop back-edge
// lowers to). Each target block receives one argument Value per
// BlockParam it declares, at matching index — this IR's block-argument
// replacement for φ-nodes. Mirrors BrInst, including its
// else_args_offset split point for storing both arg lists in one slice.
type BrInst struct {
	instBase
	elseArgsOffset int // len(then-args); else-args start here within ops[3:]
}

// newUnconditionalBr creates `br %then(args...)`.
func newUnconditionalBr(then *Block, args []Value) *BrInst {
	i := &BrInst{}
	i.kind = KindBr
	i.typ = types.TyVoid
	i.addOperand(i, nil) // cond
	i.addOperand(i, then)
	i.addOperand(i, nil) // elseBlock
	for _, a := range args {
		i.addOperand(i, a)
	}
	i.elseArgsOffset = len(args)
	return i
}

// newConditionalBr creates `br cond, %then(thenArgs...), %else(elseArgs...)`.
func newConditionalBr(cond Value, then *Block, thenArgs []Value, els *Block, elseArgs []Value) *BrInst {
	i := &BrInst{}
	i.kind = KindBr
	i.typ = types.TyVoid
	i.addOperand(i, cond)
	i.addOperand(i, then)
	i.addOperand(i, els)
	for _, a := range thenArgs {
		i.addOperand(i, a)
	}
	i.elseArgsOffset = len(thenArgs)
	for _, a := range elseArgs {
		i.addOperand(i, a)
	}
	return i
}

// Cond returns the branch condition, or nil for an unconditional branch.
func (i *BrInst) Cond() Value { return i.Operand(0) }

// IsConditional reports whether this Br has a distinct else target.
func (i *BrInst) IsConditional() bool { return i.Operand(2) != nil }

// Then returns the then/only successor block.
func (i *BrInst) Then() *Block {
	v := i.Operand(1)
	if v == nil {
		return nil
	}
	return v.(*Block)
}

// Else returns the else successor block, or nil if unconditional.
func (i *BrInst) Else() *Block {
	v := i.Operand(2)
	if v == nil {
		return nil
	}
	return v.(*Block)
}

// Successors returns the live target blocks, in order.
func (i *BrInst) Successors() []*Block {
	if t := i.Then(); i.IsConditional() {
		return []*Block{t, i.Else()}
	} else {
		return []*Block{t}
	}
}

// ThenArgs returns the argument Values passed to the then target's
// BlockParams.
func (i *BrInst) ThenArgs() []Value {
	out := make([]Value, i.elseArgsOffset)
	for k := 0; k < i.elseArgsOffset; k++ {
		out[k] = i.Operand(3 + k)
	}
	return out
}

// ElseArgs returns the argument Values passed to the else target's
// BlockParams (empty for an unconditional branch).
func (i *BrInst) ElseArgs() []Value {
	n := i.NumOperands() - 3 - i.elseArgsOffset
	out := make([]Value, n)
	for k := 0; k < n; k++ {
		out[k] = i.Operand(3 + i.elseArgsOffset + k)
	}
	return out
}

// ArgsFor returns the argument list supplied to the given successor
// block from this Br, or nil if to is not a successor.
func (i *BrInst) ArgsFor(to *Block) []Value {
	switch to {
	case i.Then():
		return i.ThenArgs()
	case i.Else():
		if i.IsConditional() {
			return i.ElseArgs()
		}
	}
	return nil
}

// SetThenArgs replaces the then-target argument list, used by mem2reg
// while filling in BlockParam arguments incrementally.
func (i *BrInst) SetThenArgs(args []Value) {
	i.replaceArgRange(3, i.elseArgsOffset, args)
	i.elseArgsOffset = len(args)
}

// SetElseArgs replaces the else-target argument list.
func (i *BrInst) SetElseArgs(args []Value) {
	i.replaceArgRange(3+i.elseArgsOffset, i.NumOperands()-3-i.elseArgsOffset, args)
}

func (i *BrInst) replaceArgRange(start, oldLen int, args []Value) {
	for k := oldLen - 1; k >= 0; k-- {
		i.removeOperand(start + k)
	}
	for k, a := range args {
		i.insertOperand(i, start+k, a)
	}
}

// SetThen retargets the then successor, updating the Block user-set.
func (i *BrInst) SetThen(b *Block) { i.SetOperand(1, b) }

// SetElse retargets the else successor.
func (i *BrInst) SetElse(b *Block) { i.SetOperand(2, b) }

func (i *BrInst) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(i, i.users, v)
}

func (i *BrInst) Erase() {
	if i.block != nil {
		i.block.removeInst(i)
	}
	i.dropAllReferences()
}

// --------------------------------------------------------------------
// CallInst: direct call to a Function, with a fixed argument list.
// Indirect calls are out of scope (no function-pointer surface syntax
// in the supplemented front end). Mirrors CallInst.
type CallInst struct {
	instBase
}

func newCallInst(typ *types.Type, callee *Function, args []Value) *CallInst {
	i := &CallInst{}
	i.kind = KindCall
	i.typ = typ
	i.addOperand(i, callee)
	for _, a := range args {
		i.addOperand(i, a)
	}
	return i
}

// Callee returns the called Function.
func (i *CallInst) Callee() *Function {
	v := i.Operand(0)
	if v == nil {
		return nil
	}
	return v.(*Function)
}

// Args returns the call argument Values.
func (i *CallInst) Args() []Value {
	n := i.NumOperands() - 1
	out := make([]Value, n)
	for k := 0; k < n; k++ {
		out[k] = i.Operand(1 + k)
	}
	return out
}

func (i *CallInst) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(i, i.users, v)
}

func (i *CallInst) Erase() {
	if i.block != nil {
		i.block.removeInst(i)
	}
	i.dropAllReferences()
}

// --------------------------------------------------------------------
// AllocaInst: reserves stack storage for one value of AllocatedType,
// yielding a pointer to it. The sole promotion target of mem2reg (spec.md
// §4.7's can_promote). Mirrors AllocaInst.
type AllocaInst struct {
	instBase
	allocatedType *types.Type
	name          string // optional source-level variable name, diagnostics only
}

func newAllocaInst(allocatedType *types.Type, name string) *AllocaInst {
	i := &AllocaInst{allocatedType: allocatedType, name: name}
	i.kind = KindAlloca
	i.typ = types.PointerTo(allocatedType)
	return i
}

// AllocatedType returns the type of the storage this Alloca reserves.
func (i *AllocaInst) AllocatedType() *types.Type { return i.allocatedType }

// Name returns the optional source variable name (for diagnostics).
func (i *AllocaInst) Name() string { return i.name }

func (i *AllocaInst) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(i, i.users, v)
}

func (i *AllocaInst) Erase() {
	if i.block != nil {
		i.block.removeInst(i)
	}
	i.dropAllReferences()
}

// --------------------------------------------------------------------
// StoreInst: writes Value to the location addressed by Pointer. Produces
// no result (Type() is void) and therefore is never itself promoted or
// hash-consed — only ever a use of its pointer and value operands.
// Mirrors StoreInst.
type StoreInst struct {
	instBase
}

func newStoreInst(ptr, val Value) *StoreInst {
	i := &StoreInst{}
	i.kind = KindStore
	i.typ = types.TyVoid
	i.addOperand(i, ptr)
	i.addOperand(i, val)
	return i
}

// Pointer returns the store address operand.
func (i *StoreInst) Pointer() Value { return i.Operand(0) }

// StoredValue returns the value operand.
func (i *StoreInst) StoredValue() Value { return i.Operand(1) }

func (i *StoreInst) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(i, i.users, v)
}

func (i *StoreInst) Erase() {
	if i.block != nil {
		i.block.removeInst(i)
	}
	i.dropAllReferences()
}
