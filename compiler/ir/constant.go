package ir

import "github.com/pcc-lang/pcc/compiler/types"

// ConstantInt is an interned integer constant, created via
// Context.GetConstantInt rather than directly — see original_source/
// ir_core/Constant.hpp's ConstantInt::get / IRContext.hpp's int_constants
// map. Interning means two requests for the same value return the
// identical *ConstantInt, so GVN's hash-consing and pointer
// equality checks on operands work for free.
type ConstantInt struct {
	valueBase
	val int64
}

func newConstantInt(typ *types.Type, val int64) *ConstantInt {
	c := &ConstantInt{valueBase: newValueBase(KindConstantInt, typ)}
	c.val = val
	return c
}

// Value returns the constant's integer value.
func (c *ConstantInt) Value() int64 { return c.val }

func (c *ConstantInt) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(c, c.users, v)
}

func (c *ConstantInt) TlogAppend(b []byte) []byte {
	return appendIntLiteral(b, c.val)
}
