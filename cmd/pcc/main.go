// Command pcc compiles a single C-subset source file to textual IR.
// Grounded on the teacher's cmd/slow/main.go (cli.Command/cli.RunAndExit
// shape), adjusted to spec.md §6's `pcc [-o <path>] <input.c>` surface.
package main

import (
	"context"
	"os"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/pcc-lang/pcc/compiler"
)

func main() {
	app := &cli.Command{
		Name:        "pcc",
		Description: "pcc compiles a C-subset source file to textual SSA IR",
		Action:      compileAct,
		Args:        cli.Args{},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

// compileAct parses its own `-o <path>` out of c.Args rather than
// declaring a cli.Flag, matching the teacher's cmd/slow/main.go, which
// never defines a flag either — both its subcommands take only
// positional Args.
func compileAct(c *cli.Command) (err error) {
	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	args := c.Args
	out := ""
	if len(args) >= 2 && args[0] == "-o" {
		out = args[1]
		args = args[2:]
	}
	if len(args) != 1 {
		return errors.New("usage: pcc [-o <path>] <input.c>")
	}

	obj, err := compiler.CompileFile(ctx, args[0])
	if err != nil {
		return errors.Wrap(err, "compile %v", args[0])
	}

	if out == "" {
		_, err = os.Stdout.Write(obj)
		return err
	}

	return os.WriteFile(out, obj, 0o644)
}
