package ir

import "github.com/pcc-lang/pcc/compiler/types"

// Block is a basic block: a straight-line list of instructions ending in
// exactly one terminator (Ret or Br), plus a list of BlockParams — this
// IR's block-argument replacement for φ-nodes (spec.md §3). Block is
// itself a Value (KindBasicBlock) so that a Br's successor edges are
// ordinary Use edges, making Block.predecessors() derivable from the
// Block's own user set exactly as original_source/ir_core/BasicBlock.hpp
// computes pred_iterator from user_begin()/user_end().
//
// Deviation from the original: BasicBlock.hpp's instruction list is an
// intrusive doubly-linked ilist for O(1) splice under manual memory
// management. Go's GC and a plain []Inst slice make that unnecessary;
// see DESIGN.md.
type Block struct {
	valueBase
	fn     *Function
	insts  []Inst
	params []*BlockParam
	name   string
}

func newBlock(fn *Function, name string) *Block {
	b := &Block{fn: fn, name: name}
	b.kind = KindBasicBlock
	b.typ = types.TyVoid
	return b
}

// Function returns the owning Function.
func (b *Block) Function() *Function { return b.fn }

// Name returns the block's diagnostic label.
func (b *Block) Name() string { return b.name }

// Insts returns the instruction list in order.
func (b *Block) Insts() []Inst { return b.insts }

// Params returns the block's parameter list (its φ-node replacement).
func (b *Block) Params() []*BlockParam { return b.params }

// Terminator returns the block's terminating instruction (Ret or Br), or
// nil if the block is not yet terminated.
func (b *Block) Terminator() Inst {
	if len(b.insts) == 0 {
		return nil
	}
	last := b.insts[len(b.insts)-1]
	if IsTerminator(last.Kind()) {
		return last
	}
	return nil
}

// Successors returns the blocks this block's terminator can transfer
// control to; empty for a Ret or an unterminated block.
func (b *Block) Successors() []*Block {
	switch t := b.Terminator().(type) {
	case *BrInst:
		return t.Successors()
	default:
		return nil
	}
}

// Predecessors returns every block whose terminating Br targets this
// block, computed from this Block's user set exactly as the original's
// pred_iterator does — not tracked incrementally, so it stays correct
// across mem2reg/DCE rewrites without separate bookkeeping.
func (b *Block) Predecessors() []*Block {
	var preds []*Block
	for _, u := range b.Users() {
		br, ok := u.(*BrInst)
		if !ok {
			continue
		}
		if br.Then() == b || (br.IsConditional() && br.Else() == b) {
			preds = append(preds, br.block)
		}
	}
	return preds
}

// AppendInst appends inst to the block's instruction list and links it
// back to this block.
func (b *Block) AppendInst(inst Inst) {
	inst.setBlock(b)
	b.insts = append(b.insts, inst)
}

// InsertInstBefore inserts inst immediately before `before` in the
// instruction list.
func (b *Block) InsertInstBefore(before, inst Inst) {
	idx := b.indexOf(before)
	if idx < 0 {
		b.AppendInst(inst)
		return
	}
	inst.setBlock(b)
	b.insts = append(b.insts, nil)
	copy(b.insts[idx+1:], b.insts[idx:])
	b.insts[idx] = inst
}

func (b *Block) indexOf(inst Inst) int {
	for i, x := range b.insts {
		if x == inst {
			return i
		}
	}
	return -1
}

// removeInst unlinks inst from the instruction list without dropping its
// operand references (the caller, Inst.erase, does that).
func (b *Block) removeInst(inst Inst) {
	idx := b.indexOf(inst)
	if idx < 0 {
		return
	}
	b.insts = append(b.insts[:idx], b.insts[idx+1:]...)
}

// AddParam appends a new BlockParam of the given type, returning it.
// Mirrors BasicBlock.hpp's insert_param at the end of the list.
func (b *Block) AddParam(typ *types.Type) *BlockParam {
	p := newBlockParam(typ, b, len(b.params))
	b.params = append(b.params, p)
	return p
}

// EraseParam removes the BlockParam at index i, re-indexing the params
// after it and dropping its operand-edge style bookkeeping (a BlockParam
// has no operands of its own, only users: each predecessor Br's argument
// at this index). Callers are responsible for first removing the
// corresponding argument from every predecessor's Br (see passes/dce).
func (b *Block) EraseParam(i int) {
	p := b.params[i]
	p.ReplaceAllUsesWith(nil)
	b.params = append(b.params[:i], b.params[i+1:]...)
	for k := i; k < len(b.params); k++ {
		b.params[k].setIndex(k)
	}
}

func (b *Block) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(b, b.users, v)
}

// MoveInstsTo appends all of b's instructions onto the end of dst's list,
// rebinding each one's owning Block, and empties b's own list. Used by
// passes/dce's block-coalescing CFG simplification when merging a block
// with a single predecessor into that predecessor.
func (b *Block) MoveInstsTo(dst *Block) {
	for _, inst := range b.insts {
		inst.setBlock(dst)
	}
	dst.insts = append(dst.insts, b.insts...)
	b.insts = nil
}
