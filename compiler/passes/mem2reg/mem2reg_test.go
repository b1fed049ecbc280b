package mem2reg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcc-lang/pcc/compiler/ir"
	"github.com/pcc-lang/pcc/compiler/types"
)

// TestRunIfElseJoin builds:
//
//	entry: x = alloca int; store 1, x; br cond, then, else
//	then:  store 2, x; br join
//	else:  store 3, x; br join
//	join:  v = load x; ret v
//
// and checks that mem2reg replaces the load with a BlockParam fed 2 and
// 3 by the predecessors, and erases the alloca entirely.
func TestRunIfElseJoin(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyInt, nil)

	entry := fn.AddBlock("entry")
	thenB := fn.AddBlock("then")
	elseB := fn.AddBlock("else")
	join := fn.AddBlock("join")

	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)
	x := b.CreateAlloca(types.TyInt, "x")
	b.CreateStore(b.GetInt(1), x)
	cond := b.GetBool(true)
	b.CreateCondBr(cond, thenB, nil, elseB, nil)

	b.SetInsertPoint(thenB)
	b.CreateStore(b.GetInt(2), x)
	b.CreateBr(join, nil)

	b.SetInsertPoint(elseB)
	b.CreateStore(b.GetInt(3), x)
	b.CreateBr(join, nil)

	b.SetInsertPoint(join)
	loaded := b.CreateLoad(x)
	b.CreateRet(loaded)

	Run(fn)

	for _, inst := range entry.Insts() {
		_, isAlloca := inst.(*ir.AllocaInst)
		assert.False(t, isAlloca, "mem2reg must erase the promoted alloca")
	}

	require.Len(t, join.Params(), 1, "join needs exactly one BlockParam standing in for x")
	param := join.Params()[0]

	thenBr := thenB.Terminator().(*ir.BrInst)
	elseBr := elseB.Terminator().(*ir.BrInst)
	require.Len(t, thenBr.ThenArgs(), 1)
	require.Len(t, elseBr.ThenArgs(), 1)
	assert.Equal(t, int64(2), thenBr.ThenArgs()[0].(*ir.ConstantInt).Value())
	assert.Equal(t, int64(3), elseBr.ThenArgs()[0].(*ir.ConstantInt).Value())

	ret := join.Terminator().(*ir.RetInst)
	assert.Equal(t, ir.Value(param), ret.Value(), "the ret must return the join param, not a dangling load")
}

// TestRunForLoopHeaderParam builds a trivial counting loop and checks
// that the loop header ends up with a BlockParam (the classic two-
// predecessor join: the preheader and the latch).
func TestRunForLoopHeaderParam(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyInt, nil)

	entry := fn.AddBlock("entry")
	header := fn.AddBlock("header")
	body := fn.AddBlock("body")
	exit := fn.AddBlock("exit")

	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)
	i := b.CreateAlloca(types.TyInt, "i")
	b.CreateStore(b.GetInt(0), i)
	b.CreateBr(header, nil)

	b.SetInsertPoint(header)
	iv := b.CreateLoad(i)
	cond := b.CreateCmp(ir.KindLt, iv, b.GetInt(10))
	b.CreateCondBr(cond, body, nil, exit, nil)

	b.SetInsertPoint(body)
	iv2 := b.CreateLoad(i)
	next := b.CreateBinary(ir.KindAdd, iv2, b.GetInt(1))
	b.CreateStore(next, i)
	b.CreateBr(header, nil)

	b.SetInsertPoint(exit)
	iv3 := b.CreateLoad(i)
	b.CreateRet(iv3)

	Run(fn)

	require.Len(t, header.Params(), 1, "the loop counter must become the header's single BlockParam")
	for _, blk := range fn.Blocks() {
		for _, inst := range blk.Insts() {
			_, isAlloca := inst.(*ir.AllocaInst)
			assert.False(t, isAlloca)
		}
	}
}

func TestCanPromoteRejectsEscapedAddress(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyVoid, nil)

	entry := fn.AddBlock("entry")
	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)

	x := b.CreateAlloca(types.TyInt, "x")
	// Store x itself (the pointer) into another alloca: this is the
	// "address escapes" case canPromote must reject.
	ptrSlot := b.CreateAlloca(types.PointerTo(types.TyInt), "ptrSlot")
	b.CreateStore(x, ptrSlot)
	b.CreateRet(nil)

	assert.False(t, canPromote(x))
}
