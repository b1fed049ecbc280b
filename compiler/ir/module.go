package ir

import "github.com/pcc-lang/pcc/compiler/types"

// Module is the top-level container of global symbols: functions and
// global variables, each addressable by name. Ordered slices plus a name
// index replace the original's symbol_table_list, matching how the
// teacher's ir.Package holds an ordered []*Func rather than a hash table
// (see DESIGN.md). Mirrors original_source/ir_core/Module.hpp.
type Module struct {
	ctx *Context

	funcs    []*Function
	funcIdx  map[string]*Function
	globals  []*GlobalVariable
	globalIdx map[string]*GlobalVariable
}

// NewModule creates an empty Module bound to ctx for constant interning.
func NewModule(ctx *Context) *Module {
	return &Module{
		ctx:       ctx,
		funcIdx:   make(map[string]*Function),
		globalIdx: make(map[string]*GlobalVariable),
	}
}

// Context returns the Module's constant/interning context.
func (m *Module) Context() *Context { return m.ctx }

// Functions returns every function in declaration order.
func (m *Module) Functions() []*Function { return m.funcs }

// Globals returns every global variable in declaration order.
func (m *Module) Globals() []*GlobalVariable { return m.globals }

// GetFunction looks up a function by name without creating one.
func (m *Module) GetFunction(name string) *Function { return m.funcIdx[name] }

// GetOrInsertFunction returns the existing function named name, or
// creates and registers a new one with the given signature. Mirrors
// Module::get_or_insert_funtion; per DESIGN.md open-question resolution
// 2, a mismatched signature on an existing function is not checked —
// the front end is trusted.
func (m *Module) GetOrInsertFunction(name string, retType *types.Type, paramTypes []*types.Type) *Function {
	if f, ok := m.funcIdx[name]; ok {
		return f
	}
	f := newFunction(m.ctx, name, retType, paramTypes)
	m.funcIdx[name] = f
	m.funcs = append(m.funcs, f)
	return f
}

// GetGlobal looks up a global variable by name without creating one.
func (m *Module) GetGlobal(name string) *GlobalVariable { return m.globalIdx[name] }

// GetOrInsertGlobal returns the existing global named name, or creates
// and registers a new one of the given element type. Mirrors
// Module::get_or_insert_global.
func (m *Module) GetOrInsertGlobal(name string, valueType *types.Type) *GlobalVariable {
	if g, ok := m.globalIdx[name]; ok {
		return g
	}
	g := newGlobalVariable(name, valueType)
	m.globalIdx[name] = g
	m.globals = append(m.globals, g)
	return g
}
