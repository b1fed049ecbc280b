package ir

import "github.com/pcc-lang/pcc/compiler/types"

// FunctionParam is one of a Function's formal parameters. It has no
// operands; its Value identity IS the parameter. Mirrors
// original_source/ir_core/FunctionParam.hpp.
type FunctionParam struct {
	valueBase
	fn    *Function
	index int
}

func newFunctionParam(typ *types.Type, fn *Function, index int) *FunctionParam {
	p := &FunctionParam{valueBase: newValueBase(KindFunctionParam, typ), fn: fn, index: index}
	return p
}

// Function returns the owning Function.
func (p *FunctionParam) Function() *Function { return p.fn }

// Index returns this parameter's position in Function.Params().
func (p *FunctionParam) Index() int { return p.index }

func (p *FunctionParam) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(p, p.users, v)
}

// BlockParam is a basic-block argument — this IR's replacement for a
// φ-node (spec.md §3). Each predecessor's terminating Br supplies one
// argument Value per BlockParam of the target block, at the same index;
// mirrors original_source/ir_core/BasicBlockParam.hpp.
type BlockParam struct {
	valueBase
	block *Block
	index int
}

func newBlockParam(typ *types.Type, block *Block, index int) *BlockParam {
	return &BlockParam{valueBase: newValueBase(KindBlockParam, typ), block: block, index: index}
}

// Block returns the owning Block.
func (p *BlockParam) Block() *Block { return p.block }

// Index returns this parameter's position in Block.Params().
func (p *BlockParam) Index() int { return p.index }

// setIndex is called by Block.EraseParam to keep Index() in sync after
// another param ahead of this one is removed.
func (p *BlockParam) setIndex(i int) { p.index = i }

func (p *BlockParam) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(p, p.users, v)
}
