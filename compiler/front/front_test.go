package front

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcc-lang/pcc/compiler/ast"
)

func TestLexerTokenizesOperatorsLongestMatchFirst(t *testing.T) {
	lex := newLexer([]byte("a == b && c"))

	var got []string
	for {
		tok, err := lex.next()
		require.NoError(t, err)
		if tok.kind == tokEOF {
			break
		}
		got = append(got, tok.text)
	}

	assert.Equal(t, []string{"a", "==", "b", "&&", "c"}, got)
}

func TestLexerRejectsUnknownCharacter(t *testing.T) {
	lex := newLexer([]byte("a $ b"))
	_, err := lex.next() // "a"
	require.NoError(t, err)
	_, err = lex.next() // "$"
	assert.Error(t, err)
}

func TestParseProgramSimpleFunction(t *testing.T) {
	prog, err := parseProgram([]byte(`
		int add(int a, int b) {
			return a + b;
		}
	`))
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)

	fn := prog.Funcs[0]
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, "int", fn.RetType.Name)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "b", fn.Params[1].Name)

	require.Len(t, fn.Body.Stmts, 1)
	ret, ok := fn.Body.Stmts[0].(ast.Return)
	require.True(t, ok)
	bin, ok := ret.Value.(ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
}

func TestParseIfElseAndFor(t *testing.T) {
	prog, err := parseProgram([]byte(`
		int f(int n) {
			int total;
			total = 0;
			for (int i = 0; i < n; i = i + 1) {
				if (i == 0) {
					total = total + 1;
				} else {
					total = total + 2;
				}
			}
			return total;
		}
	`))
	require.NoError(t, err)
	require.Len(t, prog.Funcs, 1)

	fn := prog.Funcs[0]
	require.Len(t, fn.Body.Stmts, 4)

	forStmt, ok := fn.Body.Stmts[2].(ast.For)
	require.True(t, ok)
	require.NotNil(t, forStmt.Init)
	require.NotNil(t, forStmt.Cond)
	require.NotNil(t, forStmt.Post)

	require.Len(t, forStmt.Body.Stmts, 1)
	ifStmt, ok := forStmt.Body.Stmts[0].(ast.If)
	require.True(t, ok)
	assert.NotNil(t, ifStmt.Else)
}

func TestParsePrecedenceClimbing(t *testing.T) {
	prog, err := parseProgram([]byte(`
		int f() {
			return 1 + 2 * 3;
		}
	`))
	require.NoError(t, err)

	ret := prog.Funcs[0].Body.Stmts[0].(ast.Return)
	top, ok := ret.Value.(ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "+", top.Op, "* binds tighter than +, so + must be the outermost node")

	_, leftIsLit := top.Left.(ast.IntLit)
	assert.True(t, leftIsLit)

	right, ok := top.Right.(ast.BinaryOp)
	require.True(t, ok)
	assert.Equal(t, "*", right.Op)
}

func TestParseShortCircuitOperatorsAreDistinctNodes(t *testing.T) {
	prog, err := parseProgram([]byte(`
		bool f(bool a, bool b) {
			return a && b;
		}
	`))
	require.NoError(t, err)

	ret := prog.Funcs[0].Body.Stmts[0].(ast.Return)
	_, ok := ret.Value.(ast.LogicalAnd)
	assert.True(t, ok, "&& must lower to a LogicalAnd node, not a BinaryOp")
}

func TestParseRejectsMissingSemicolon(t *testing.T) {
	_, err := parseProgram([]byte(`
		int f() {
			return 1
		}
	`))
	assert.Error(t, err)
}
