package ir

// User is anything that holds operand edges (Uses) onto other Values.
// Mirrors original_source/ir_core/User.hpp.
type User interface {
	Value

	// Operands returns the live operand Uses, in operand order.
	Operands() []*Use
	Operand(i int) Value
	SetOperand(i int, v Value)
	NumOperands() int

	dropAllReferences()
}

// userBase is embedded by every concrete User (every Inst, plus BlockParam
// is NOT a User — only instructions hold operands).
type userBase struct {
	valueBase
	ops []*Use
}

// addOperand appends a new operand edge pointing at v (v may be nil).
func (u *userBase) addOperand(self User, v Value) *Use {
	use := newUse(self, v)
	u.ops = append(u.ops, use)
	return use
}

func (u *userBase) Operands() []*Use { return u.ops }

func (u *userBase) Operand(i int) Value {
	if i < 0 || i >= len(u.ops) {
		return nil
	}
	return u.ops[i].Get()
}

func (u *userBase) SetOperand(i int, v Value) {
	u.ops[i].Set(v)
}

func (u *userBase) NumOperands() int { return len(u.ops) }

// removeOperand erases the i'th operand edge entirely, shifting later
// operands down one slot. Used by Br/Call argument removal.
func (u *userBase) removeOperand(i int) {
	u.ops[i].drop()
	u.ops = append(u.ops[:i], u.ops[i+1:]...)
}

// insertOperand inserts a new operand edge to v at index i.
func (u *userBase) insertOperand(self User, i int, v Value) *Use {
	use := newUse(self, v)
	u.ops = append(u.ops, nil)
	copy(u.ops[i+1:], u.ops[i:])
	u.ops[i] = use
	return use
}

// dropAllReferences drops every operand edge, matching
// User::drop_all_references in the original — called before a User is
// unlinked from its containing Block/Function so its Uses stop counting
// as users of their operands.
func (u *userBase) dropAllReferences() {
	for _, use := range u.ops {
		use.drop()
	}
	u.ops = nil
}
