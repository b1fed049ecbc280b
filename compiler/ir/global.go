package ir

import "github.com/pcc-lang/pcc/compiler/types"

// GlobalObject is the common base of GlobalVariable and Function: a named
// Value addressable from the Module's symbol table. Mirrors
// original_source/ir_core/GlobalObject.hpp.
type GlobalObject interface {
	Value
	Name() string
}

type globalBase struct {
	valueBase
	name string
}

func (g *globalBase) Name() string { return g.name }

// GlobalVariable is a named, module-scope storage location of pointer
// type; it has no operands of its own (initializers are out of scope —
// spec.md's data model has no constant-aggregate initializer concept).
// Mirrors original_source/ir_core/GlobalVariable.hpp.
type GlobalVariable struct {
	globalBase
	valueType *types.Type // the pointee type; GlobalVariable.Type() is Ptr-to-this
}

func newGlobalVariable(name string, valueType *types.Type) *GlobalVariable {
	g := &GlobalVariable{valueType: valueType}
	g.kind = KindGlobalVariable
	g.typ = types.PointerTo(valueType)
	g.name = name
	return g
}

// ValueType returns the pointee type (the type of the storage this
// global addresses, as opposed to Type() which is always a pointer).
func (g *GlobalVariable) ValueType() *types.Type { return g.valueType }

func (g *GlobalVariable) ReplaceAllUsesWith(v Value) {
	replaceAllUsesWith(g, g.users, v)
}
