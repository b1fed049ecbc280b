package domtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcc-lang/pcc/compiler/ir"
	"github.com/pcc-lang/pcc/compiler/types"
)

// buildDiamond builds entry -> {then, els} -> join -> ret, the minimal
// CFG shape mem2reg's join-param insertion and dominator computation
// both need to handle.
func buildDiamond(t *testing.T) (*ir.Function, map[string]*ir.Block) {
	t.Helper()

	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyVoid, nil)

	entry := fn.AddBlock("entry")
	thenB := fn.AddBlock("then")
	elseB := fn.AddBlock("else")
	join := fn.AddBlock("join")

	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)
	cond := b.GetBool(true)
	b.CreateCondBr(cond, thenB, nil, elseB, nil)

	b.SetInsertPoint(thenB)
	b.CreateBr(join, nil)

	b.SetInsertPoint(elseB)
	b.CreateBr(join, nil)

	b.SetInsertPoint(join)
	b.CreateRet(nil)

	return fn, map[string]*ir.Block{
		"entry": entry, "then": thenB, "else": elseB, "join": join,
	}
}

func TestDominatorTreeDiamond(t *testing.T) {
	fn, bb := buildDiamond(t)
	tree := Build(fn)

	assert.Equal(t, bb["entry"], tree.Root())
	assert.Equal(t, bb["entry"], tree.IDom(bb["then"]))
	assert.Equal(t, bb["entry"], tree.IDom(bb["else"]))
	assert.Equal(t, bb["entry"], tree.IDom(bb["join"]),
		"join's idom is entry: neither then nor else alone dominates it")

	assert.True(t, tree.Dominates(bb["entry"], bb["join"]))
	assert.False(t, tree.Dominates(bb["then"], bb["join"]))
	assert.False(t, tree.Dominates(bb["else"], bb["then"]))
}

func TestPostDominatorTreeDiamond(t *testing.T) {
	fn, bb := buildDiamond(t)
	tree := BuildPost(fn)

	assert.Equal(t, bb["join"], tree.Root(), "the unique Ret block is the post-dominator tree's root")
	assert.Equal(t, bb["join"], tree.IDom(bb["then"]))
	assert.Equal(t, bb["join"], tree.IDom(bb["else"]))
	assert.True(t, tree.PostDominates(bb["join"], bb["entry"]))
}

func TestDominatorTreeSelfLoop(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyVoid, nil)

	entry := fn.AddBlock("entry")
	loop := fn.AddBlock("loop")
	exit := fn.AddBlock("exit")

	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)
	b.CreateBr(loop, nil)

	b.SetInsertPoint(loop)
	cond := b.GetBool(true)
	b.CreateCondBr(cond, loop, nil, exit, nil)

	b.SetInsertPoint(exit)
	b.CreateRet(nil)

	tree := Build(fn)
	assert.Equal(t, entry, tree.IDom(loop))
	assert.Equal(t, loop, tree.IDom(exit))
	assert.True(t, tree.Dominates(loop, exit))
	assert.False(t, tree.Dominates(exit, loop))
}

func TestPostOrderVisitsSuccessorsBeforeSelf(t *testing.T) {
	fn, bb := buildDiamond(t)
	order := PostOrder(fn)

	require.Len(t, order, 4)
	assert.Equal(t, bb["join"], order[0], "join has no successors, so it must appear first in post-order")
	assert.Equal(t, bb["entry"], order[len(order)-1], "entry is only reachable last in post-order")
}
