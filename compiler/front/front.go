// Package front implements the supplemented C-subset front end (int/bool
// locals and params, the full spec.md §4.2 operator set, if/else, for,
// return, direct calls, short-circuit &&/||; SPEC_FULL.md §5): a
// byte-offset lexer, a one-token-lookahead recursive-descent parser, and
// the AST-to-IR lowering pass that hands compiler.go an ir.Module ready
// for the optimizer pipeline.
package front

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/pcc-lang/pcc/compiler/ast"
)

// Parse tokenizes and parses text into a Program, matching the teacher's
// "at pos %d" error-wrapping idiom (_legacy/parse.go).
func Parse(name string, text []byte) (*ast.Program, error) {
	prog, err := parseProgram(text)
	if err != nil {
		return nil, errors.Wrap(err, "parse %s", name)
	}

	tlog.Printw("parsed", "name", name, "funcs", len(prog.Funcs))

	return prog, nil
}
