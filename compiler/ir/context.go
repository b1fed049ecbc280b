package ir

import "github.com/pcc-lang/pcc/compiler/types"

// Context owns its own interning tables: one ConstantInt per
// distinct int64 value, so operand pointer-equality (used by GVN's
// hash-consing and by ReplaceAllUsesWith callers comparing operands)
// reflects value equality for constants. Mirrors
// original_source/ir_core/IRContext.hpp's int_constants map.
type Context struct {
	intConstants  map[int64]*ConstantInt
	boolConstants map[bool]*ConstantInt
}

// NewContext creates an empty interning context.
func NewContext() *Context {
	return &Context{
		intConstants:  make(map[int64]*ConstantInt),
		boolConstants: make(map[bool]*ConstantInt),
	}
}

// GetConstantInt returns the interned ConstantInt for val, creating it on
// first request. The type is derived from val, never caller-supplied:
// an i32-representable value is Int, otherwise Long. Mirrors
// IRContext::get_constant(int64_t val).
func (c *Context) GetConstantInt(val int64) *ConstantInt {
	if k, ok := c.intConstants[val]; ok {
		return k
	}
	ty := types.TyLong
	if int64(int32(val)) == val {
		ty = types.TyInt
	}
	k := newConstantInt(ty, val)
	c.intConstants[val] = k
	return k
}

// GetBool returns the interned ConstantInt{0/1} of type TyBool for v.
// Kept as an interning table of its own, separate from GetConstantInt's:
// the original IR never produces a Bool-typed ConstantInt (Bool only
// ever appears as an instruction's result type, e.g. on compares), so a
// Bool-typed 0/1 constant must never collide with an Int-typed 0/1
// constant that happens to share the same numeric value.
func (c *Context) GetBool(v bool) *ConstantInt {
	if k, ok := c.boolConstants[v]; ok {
		return k
	}
	var i int64
	if v {
		i = 1
	}
	k := newConstantInt(types.TyBool, i)
	c.boolConstants[v] = k
	return k
}
