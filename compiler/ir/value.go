package ir

import "github.com/pcc-lang/pcc/compiler/types"

// Value is the base entity of the IR: anything with a Type that can be
// used as an operand. Mirrors original_source/ir_core/Value.hpp.
type Value interface {
	Kind() Kind
	Type() *types.Type

	// Users returns the set of Users currently holding an operand edge
	// to this Value, in the order they were first added. Matches the C++ original's
	// std::unordered_set<User*> semantics exactly: it is a *set* of
	// users, not a multiset of edges — a User with two operands both
	// pointing at this Value appears once.
	Users() []User

	addUser(u User)
	removeUser(u User)

	// ReplaceAllUsesWith rewrites every operand edge currently pointing
	// at this Value to point at v instead (RAUW). Safe to call with a
	// nil v to simply drop all incoming edges.
	ReplaceAllUsesWith(v Value)
}

// valueBase is embedded by every concrete Value implementation.
//
// users is an insertion-ordered set, not a plain map: the original's
// std::unordered_set<User*> iterates in a stable order across repeated
// traversals of the same unchanged set, which mem2reg.cpp's two-pass
// predecessor enumeration (get_pred_vals during propagation, then
// fill_args to append one branch argument per predecessor) silently
// relies on — corresponding calls to BB::predecessors() must yield
// blocks in the same order both times. Go deliberately randomizes plain
// map iteration, so a map[User]struct{} here would desync that
// correspondence; keeping insertion order sidesteps it while remaining
// exactly the set (no duplicate membership) the original models.
type valueBase struct {
	kind    Kind
	typ     *types.Type
	users   []User
	userIdx map[User]int
}

func newValueBase(kind Kind, typ *types.Type) valueBase {
	return valueBase{kind: kind, typ: typ}
}

func (v *valueBase) Kind() Kind            { return v.kind }
func (v *valueBase) Type() *types.Type     { return v.typ }
func (v *valueBase) setType(t *types.Type) { v.typ = t }

func (v *valueBase) Users() []User {
	out := make([]User, len(v.users))
	copy(out, v.users)
	return out
}

func (v *valueBase) addUser(u User) {
	if v.userIdx == nil {
		v.userIdx = make(map[User]int)
	}
	if _, ok := v.userIdx[u]; ok {
		return
	}
	v.userIdx[u] = len(v.users)
	v.users = append(v.users, u)
}

func (v *valueBase) removeUser(u User) {
	idx, ok := v.userIdx[u]
	if !ok {
		return
	}
	delete(v.userIdx, u)
	v.users = append(v.users[:idx], v.users[idx+1:]...)
	for i := idx; i < len(v.users); i++ {
		v.userIdx[v.users[i]] = i
	}
}

// replaceAllUsesWith is shared by every concrete Value (it needs `self`
// since valueBase itself isn't a Value — Go has no CRTP).
func replaceAllUsesWith(self Value, users []User, newVal Value) {
	// Iterate a snapshot: Use.Set below mutates `users` as a side effect
	// of removeUser/addUser, so ranging over the live slice is unsafe.
	snapshot := make([]User, len(users))
	copy(snapshot, users)
	for _, u := range snapshot {
		for _, op := range u.Operands() {
			if op.Get() == self {
				op.Set(newVal)
			}
		}
	}
}
