package gvn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcc-lang/pcc/compiler/ir"
	"github.com/pcc-lang/pcc/compiler/types"
)

func TestRunFoldsConstantArithmetic(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyInt, nil)

	entry := fn.AddBlock("entry")
	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)

	sum := b.CreateBinary(ir.KindAdd, b.GetInt(2), b.GetInt(3))
	b.CreateRet(sum)

	Run(fn)

	ret := entry.Terminator().(*ir.RetInst)
	c, ok := ret.Value().(*ir.ConstantInt)
	require.True(t, ok, "2+3 must fold to a ConstantInt")
	assert.Equal(t, int64(5), c.Value())
}

func TestRunHashConsesRepeatedExpression(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyInt, []*types.Type{types.TyInt})

	entry := fn.AddBlock("entry")
	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)

	p := fn.Params()[0]
	one := b.GetInt(1)
	first := b.CreateBinary(ir.KindAdd, p, one)
	second := b.CreateBinary(ir.KindAdd, p, one)
	sum := b.CreateBinary(ir.KindAdd, first, second)
	b.CreateRet(sum)

	Run(fn)

	ret := entry.Terminator().(*ir.RetInst)
	result := ret.Value().(*ir.BinaryInst)
	assert.Equal(t, result.LHS(), result.RHS(), "the second p+1 must hash-cons to the same value as the first")
}

func TestRunNeverFoldsDivisionByConstantZero(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyInt, nil)

	entry := fn.AddBlock("entry")
	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)

	div := b.CreateBinary(ir.KindDiv, b.GetInt(10), b.GetInt(0))
	b.CreateRet(div)

	Run(fn)

	ret := entry.Terminator().(*ir.RetInst)
	_, stillInst := ret.Value().(*ir.BinaryInst)
	assert.True(t, stillInst, "division by a constant zero must never be folded at compile time")
}

func TestRunDoesNotHashConsAcrossSiblingBranches(t *testing.T) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)
	fn := mod.GetOrInsertFunction("f", types.TyInt, []*types.Type{types.TyInt})

	entry := fn.AddBlock("entry")
	thenB := fn.AddBlock("then")
	elseB := fn.AddBlock("else")

	b := ir.NewBuilder(ctx)
	b.SetInsertPoint(entry)
	p := fn.Params()[0]
	cond := b.GetBool(true)
	b.CreateCondBr(cond, thenB, nil, elseB, nil)

	b.SetInsertPoint(thenB)
	thenExpr := b.CreateBinary(ir.KindAdd, p, b.GetInt(1))
	b.CreateRet(thenExpr)

	b.SetInsertPoint(elseB)
	elseExpr := b.CreateBinary(ir.KindAdd, p, b.GetInt(1))
	b.CreateRet(elseExpr)

	Run(fn)

	thenRet := thenB.Terminator().(*ir.RetInst)
	elseRet := elseB.Terminator().(*ir.RetInst)
	assert.NotEqual(t, thenRet.Value(), elseRet.Value(),
		"sibling branches must not see each other's hash-consed expressions")
}
