package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcc-lang/pcc/compiler/types"
)

func TestConstantIntInterning(t *testing.T) {
	ctx := NewContext()

	a := ctx.GetConstantInt(7)
	b := ctx.GetConstantInt(7)
	assert.Same(t, a, b, "equal values must intern to the same pointer")
	assert.Equal(t, types.TyInt, a.Type(), "an i32-representable value must be Int-typed")

	big := ctx.GetConstantInt(1 << 40)
	assert.NotSame(t, a, big, "differing values must not share an interned constant")
	assert.Equal(t, types.TyLong, big.Type(), "a value outside i32 range must be Long-typed")

	boolTrue := ctx.GetBool(true)
	assert.Equal(t, types.TyBool, boolTrue.Type())
	assert.NotSame(t, boolTrue, ctx.GetConstantInt(1), "a Bool constant must not collide with an Int constant of the same numeric value")
}

func TestUseTracksUsers(t *testing.T) {
	ctx := NewContext()
	mod := NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyInt, []*types.Type{types.TyInt})

	entry := fn.AddBlock("entry")
	b := NewBuilder(ctx)
	b.SetInsertPoint(entry)

	c1 := b.GetInt(1)
	add := b.CreateBinary(KindAdd, fn.Params()[0], c1)
	b.CreateRet(add)

	require.Len(t, c1.Users(), 1)
	assert.Equal(t, User(add), c1.Users()[0])

	add.ReplaceAllUsesWith(fn.Params()[0])
	assert.Empty(t, add.Users(), "RAUW must drop every incoming edge from the replaced value")
}

func TestBlockPredecessorsFromBranchUsers(t *testing.T) {
	ctx := NewContext()
	mod := NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyVoid, nil)

	entry := fn.AddBlock("entry")
	thenB := fn.AddBlock("then")
	elseB := fn.AddBlock("else")
	join := fn.AddBlock("join")

	b := NewBuilder(ctx)
	b.SetInsertPoint(entry)
	cond := b.GetBool(true)
	b.CreateCondBr(cond, thenB, nil, elseB, nil)

	b.SetInsertPoint(thenB)
	b.CreateBr(join, nil)

	b.SetInsertPoint(elseB)
	b.CreateBr(join, nil)

	b.SetInsertPoint(join)
	b.CreateRet(nil)

	preds := join.Predecessors()
	require.Len(t, preds, 2)
	assert.ElementsMatch(t, []*Block{thenB, elseB}, preds)
}

func TestEraseBlockDropsReferences(t *testing.T) {
	ctx := NewContext()
	mod := NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyVoid, nil)

	entry := fn.AddBlock("entry")
	dead := fn.AddBlock("dead")

	b := NewBuilder(ctx)
	b.SetInsertPoint(entry)
	b.CreateRet(nil)

	b.SetInsertPoint(dead)
	alloca := b.CreateAlloca(types.TyInt, "x")
	b.CreateStore(b.GetInt(1), alloca)
	b.CreateRet(nil)

	fn.EraseBlock(dead)

	require.Len(t, fn.Blocks(), 1)
	assert.Equal(t, entry, fn.Blocks()[0])
}

func TestMoveInstsTo(t *testing.T) {
	ctx := NewContext()
	mod := NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyVoid, nil)

	src := fn.AddBlock("src")
	dst := fn.AddBlock("dst")

	b := NewBuilder(ctx)
	b.SetInsertPoint(dst)
	existing := b.CreateAlloca(types.TyInt, "existing")

	b.SetInsertPoint(src)
	moved := b.CreateAlloca(types.TyInt, "moved")

	src.MoveInstsTo(dst)

	assert.Empty(t, src.Insts())
	require.Len(t, dst.Insts(), 2)
	assert.Equal(t, Inst(existing), dst.Insts()[0])
	assert.Equal(t, Inst(moved), dst.Insts()[1])
	assert.Equal(t, dst, moved.Block(), "MoveInstsTo must rebind the moved instruction's owning block")
}
