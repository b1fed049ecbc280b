package ir

// Use is one operand edge from a User to a Value. It mirrors
// original_source/ir_core/Use.hpp exactly: constructing a Use registers it
// with the pointed-to Value's user set, and Set re-points the edge,
// unregistering from the old Value and registering with the new one.
type Use struct {
	user  User
	value Value
}

// newUse creates an operand edge from user to value, registering user in
// value's user set. value may be nil (an as-yet-unset operand slot, e.g.
// while a Br's else branch is still being built).
func newUse(user User, value Value) *Use {
	u := &Use{user: user, value: value}
	if value != nil {
		value.addUser(user)
	}
	return u
}

// Get returns the Value this Use currently points at, or nil.
func (u *Use) Get() Value { return u.value }

// User returns the User this Use belongs to.
func (u *Use) User() User { return u.user }

// Set re-points the Use at v, updating both old and new Value's user sets.
// Matches Use::set in the original.
func (u *Use) Set(v Value) {
	if u.value == v {
		return
	}
	if u.value != nil {
		u.value.removeUser(u.user)
	}
	u.value = v
	if v != nil {
		v.addUser(u.user)
	}
}

// drop unregisters this Use from its Value without replacing it, used by
// drop_all_references when a User is being erased entirely.
func (u *Use) drop() {
	if u.value != nil {
		u.value.removeUser(u.user)
		u.value = nil
	}
}
