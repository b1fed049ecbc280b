package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/pcc-lang/pcc/compiler/front"
	"github.com/pcc-lang/pcc/compiler/ir"
	"github.com/pcc-lang/pcc/compiler/passes/dce"
	"github.com/pcc-lang/pcc/compiler/passes/gvn"
	"github.com/pcc-lang/pcc/compiler/passes/mem2reg"
)

// CompileFile reads name from disk and runs it through Compile.
func CompileFile(ctx context.Context, name string) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text)
}

// Compile runs the full pipeline: parse -> lower to IR -> mem2reg -> gvn
// -> dce -> print. The returned obj is the textual IR (spec.md §6 has no
// machine-code backend in scope), matching compiler/doc.go's pipeline
// description.
func Compile(ctx context.Context, name string, text []byte) (obj []byte, err error) {
	prog, err := front.Parse(name, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	mod, err := front.Lower(prog)
	if err != nil {
		return nil, errors.Wrap(err, "lower to ir")
	}

	for _, fn := range mod.Functions() {
		mem2reg.Run(fn)
		gvn.Run(fn)
		dce.Run(fn)
	}

	tlog.SpanFromContext(ctx).Printw("compiled", "name", name, "funcs", len(mod.Functions()))

	return []byte(ir.Print(mod)), nil
}
