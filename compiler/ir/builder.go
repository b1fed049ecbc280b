package ir

import "github.com/pcc-lang/pcc/compiler/types"

// Builder tracks a current basic block and insertion point and provides
// one Create* factory per instruction kind, mirroring
// original_source/ir_core/IRBuilder.hpp one-to-one. Unlike the C++
// original's iterator-based insert_point (any position within a block),
// this Builder only ever appends at the end of the current block — the
// supplemented front end (§5 of SPEC_FULL.md) never needs mid-block
// insertion, and the passes that do (mem2reg's alloca/load/store
// removal) manipulate Block.insts directly instead of going through a
// Builder.
type Builder struct {
	ctx    *Context
	parent *Block
}

// NewBuilder creates a Builder with no current block; SetInsertPoint
// selects the block to append to.
func NewBuilder(ctx *Context) *Builder {
	return &Builder{ctx: ctx}
}

// SetInsertPoint moves the builder to append at the end of block.
func (b *Builder) SetInsertPoint(block *Block) { b.parent = block }

// InsertBlock returns the block instructions are currently appended to.
func (b *Builder) InsertBlock() *Block { return b.parent }

// GetInt returns the interned constant for val, Int- or Long-typed
// depending on whether val fits i32.
func (b *Builder) GetInt(val int64) *ConstantInt {
	return b.ctx.GetConstantInt(val)
}

// GetBool returns the interned Bool-typed constant for v.
func (b *Builder) GetBool(v bool) *ConstantInt {
	return b.ctx.GetBool(v)
}

func (b *Builder) insert(inst Inst) {
	b.parent.AppendInst(inst)
}

// CreateUnary appends a Neg/BitNot instruction.
func (b *Builder) CreateUnary(kind Kind, src Value) *UnaryInst {
	i := newUnaryInst(kind, src.Type(), src)
	b.insert(i)
	return i
}

// CreateLoad appends a Load of *ptr's pointee type.
func (b *Builder) CreateLoad(ptr Value) *UnaryInst {
	elemType := ptr.Type().Elem
	i := newUnaryInst(KindLoad, elemType, ptr)
	b.insert(i)
	return i
}

// CreateCast appends a Cast of src to ty.
func (b *Builder) CreateCast(ty *types.Type, src Value) *UnaryInst {
	i := newUnaryInst(KindCast, ty, src)
	b.insert(i)
	return i
}

// CreateBinary appends an arithmetic binary instruction. lhs's type is
// used as the result type, matching the front end's contract that
// operands are already unified before lowering to IR (spec.md §3
// invariant 6).
func (b *Builder) CreateBinary(kind Kind, lhs, rhs Value) *BinaryInst {
	i := newBinaryInst(kind, lhs.Type(), lhs, rhs)
	b.insert(i)
	return i
}

// CreateCmp appends a comparison instruction, always TyBool-typed.
func (b *Builder) CreateCmp(kind Kind, lhs, rhs Value) *BinaryInst {
	i := newBinaryInst(kind, types.TyBool, lhs, rhs)
	b.insert(i)
	return i
}

// CreateLoad's counterpart: CreateStore appends `store val -> ptr`.
func (b *Builder) CreateStore(val, ptr Value) *StoreInst {
	i := newStoreInst(ptr, val)
	b.insert(i)
	return i
}

// CreateRet appends a return instruction; ret may be nil for a void
// return.
func (b *Builder) CreateRet(ret Value) *RetInst {
	i := newRetInst(ret)
	b.insert(i)
	return i
}

// CreateAlloca appends an Alloca reserving storage for one value of ty.
func (b *Builder) CreateAlloca(ty *types.Type, name string) *AllocaInst {
	i := newAllocaInst(ty, name)
	b.insert(i)
	return i
}

// CreateBr appends an unconditional branch to dst with the given
// BlockParam arguments.
func (b *Builder) CreateBr(dst *Block, args []Value) *BrInst {
	i := newUnconditionalBr(dst, args)
	b.insert(i)
	return i
}

// CreateCondBr appends a conditional branch.
func (b *Builder) CreateCondBr(cond Value, then *Block, thenArgs []Value, els *Block, elseArgs []Value) *BrInst {
	i := newConditionalBr(cond, then, thenArgs, els, elseArgs)
	b.insert(i)
	return i
}

// CreateCall appends a direct call to callee.
func (b *Builder) CreateCall(callee *Function, args []Value) *CallInst {
	i := newCallInst(callee.ReturnType(), callee, args)
	b.insert(i)
	return i
}
