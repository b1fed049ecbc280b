package ir

import "tlog.app/go/tlog/tlwire"

// appendIntLiteral renders an integer constant compactly for tlog, the
// same way compiler/ir/ir2.go's Link.TlogAppend and ir5.go's
// PhiBranch.TlogAppend hand-roll an encoder instead of relying on
// reflection-based struct printing.
func appendIntLiteral(b []byte, val int64) []byte {
	var e tlwire.Encoder
	return e.AppendFormat(b, "%d", val)
}

// appendBranchArgs renders a Br's argument list for a target block as a
// compact tlwire array, matching ir2.go's Link.TlogAppend shape.
func appendBranchArgs(b []byte, args []Value) []byte {
	var e tlwire.LowEncoder

	b = e.AppendTag(b, tlwire.Array, -1)
	for _, a := range args {
		if a == nil {
			b = e.AppendNil(b)
			continue
		}
		b = e.AppendInt(b, int(a.Kind()))
	}
	b = e.AppendBreak(b)

	return b
}
