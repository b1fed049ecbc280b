package ir

import "github.com/pcc-lang/pcc/compiler/types"

// Function is a GlobalObject owning a list of basic blocks and formal
// parameters. A Function with no blocks is a declaration only (an
// external callee); this front end never produces those, but the IR
// itself allows it, matching original_source/ir_core/Function.hpp.
type Function struct {
	globalBase
	ctx     *Context
	retType *types.Type
	params  []*FunctionParam
	blocks  []*Block
}

func newFunction(ctx *Context, name string, retType *types.Type, paramTypes []*types.Type) *Function {
	f := &Function{ctx: ctx, retType: retType}
	f.kind = KindFunction
	f.name = name
	f.typ = types.FuncType(retType, paramTypes)
	f.params = make([]*FunctionParam, len(paramTypes))
	for i, pt := range paramTypes {
		f.params[i] = newFunctionParam(pt, f, i)
	}
	return f
}

// Context returns the interning Context shared by this function's
// owning Module, matching original_source/ir_core/Function.hpp's
// get_context(); passes (notably gvn) use it to intern newly folded
// constants.
func (f *Function) Context() *Context { return f.ctx }

// ReturnType returns the function's declared return type.
func (f *Function) ReturnType() *types.Type { return f.retType }

// Params returns the formal parameter list, in declaration order.
func (f *Function) Params() []*FunctionParam { return f.params }

// Blocks returns the function's basic blocks in layout order; Blocks()[0]
// is always the entry block.
func (f *Function) Blocks() []*Block { return f.blocks }

// Entry returns the entry block, or nil for a declaration-only Function.
func (f *Function) Entry() *Block {
	if len(f.blocks) == 0 {
		return nil
	}
	return f.blocks[0]
}

// AddBlock appends a new, empty basic block and returns it.
func (f *Function) AddBlock(name string) *Block {
	b := newBlock(f, name)
	f.blocks = append(f.blocks, b)
	return b
}

// EraseBlock unlinks b from the function's block list and drops every
// instruction's operand references, matching Function::drop_all_references
// applied transitively through one block. Callers (passes/dce) must have
// already removed every predecessor edge into b.
func (f *Function) EraseBlock(b *Block) {
	idx := -1
	for i, x := range f.blocks {
		if x == b {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for _, inst := range b.insts {
		inst.dropAllReferences()
	}
	for _, p := range b.params {
		p.ReplaceAllUsesWith(nil)
	}
	f.blocks = append(f.blocks[:idx], f.blocks[idx+1:]...)
}

func (f *Function) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(f, f.users, v)
}
