package dce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcc-lang/pcc/compiler/ir"
	"github.com/pcc-lang/pcc/compiler/types"
)

// TestRunSweepsDeadArithmetic builds a block computing an unused value
// alongside the returned one, and checks only the dead computation is
// swept.
func TestRunSweepsDeadArithmetic(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyInt, []*types.Type{types.TyInt})

	entry := fn.AddBlock("entry")
	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)

	p := fn.Params()[0]
	dead := b.CreateBinary(ir.KindAdd, p, b.GetInt(1))
	_ = dead
	live := b.CreateBinary(ir.KindMul, p, b.GetInt(2))
	b.CreateRet(live)

	Run(fn)

	require.Len(t, entry.Insts(), 2, "only the dead add is swept; the live mul and the ret remain")
	assert.Equal(t, ir.Inst(live), entry.Insts()[0])
}

// TestRunKeepsGlobalStoreCritical checks that a store to a global is
// never swept even though nothing reads its result.
func TestRunKeepsGlobalStoreCritical(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	g := mod.GetOrInsertGlobal("g", types.TyInt)
	fn := mod.GetOrInsertFunction("f", types.TyVoid, nil)

	entry := fn.AddBlock("entry")
	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)
	b.CreateStore(b.GetInt(9), g)
	b.CreateRet(nil)

	Run(fn)

	require.Len(t, entry.Insts(), 2, "the store and the ret are both critical and must both survive")
	_, isStore := entry.Insts()[0].(*ir.StoreInst)
	assert.True(t, isStore, "a store to a global must survive as a critical instruction")
}

// TestRunFoldsRedundantConditionalBranch builds a conditional branch
// whose two targets are identical (same block, same args) and checks CFG
// simplification replaces it with an unconditional jump.
func TestRunFoldsRedundantConditionalBranch(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyVoid, nil)

	entry := fn.AddBlock("entry")
	join := fn.AddBlock("join")

	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)
	cond := b.GetBool(true)
	b.CreateCondBr(cond, join, nil, join, nil)

	b.SetInsertPoint(join)
	b.CreateRet(nil)

	Run(fn)

	// A redundant conditional branch to the same target first collapses
	// to an unconditional jump, then the resulting single-predecessor
	// join coalesces into the entry block, leaving one block overall.
	require.Len(t, fn.Blocks(), 1)
	_, isRet := fn.Blocks()[0].Terminator().(*ir.RetInst)
	assert.True(t, isRet)
}

// TestRunCoalescesSinglePredecessorBlock builds entry -> mid -> exit
// where mid has no other predecessors and checks mid's instructions end
// up merged into entry.
func TestRunCoalescesSinglePredecessorBlock(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyInt, []*types.Type{types.TyInt})

	entry := fn.AddBlock("entry")
	mid := fn.AddBlock("mid")

	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)
	b.CreateBr(mid, nil)

	b.SetInsertPoint(mid)
	p := fn.Params()[0]
	doubled := b.CreateBinary(ir.KindMul, p, b.GetInt(2))
	b.CreateRet(doubled)

	Run(fn)

	require.Len(t, fn.Blocks(), 1, "mid has a single predecessor and must coalesce into entry")
	assert.Equal(t, entry, fn.Blocks()[0])
}
