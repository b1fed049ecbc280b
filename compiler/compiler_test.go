package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileConstantFoldsAndDropsDeadLocal(t *testing.T) {
	src := `
		int f() {
			int unused;
			unused = 1 + 1;
			return 2 + 3;
		}
	`
	out, err := Compile(context.Background(), "t.c", []byte(src))
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "ret 5", "constant folding plus dead code elimination must reduce the body to a bare return")
	assert.NotContains(t, text, "alloca", "the unused local's alloca must be swept once mem2reg/dce run")
}

func TestCompileIfElseProducesBlockParamJoin(t *testing.T) {
	src := `
		int f(int a) {
			int r;
			if (a < 0) {
				r = 0;
			} else {
				r = a;
			}
			return r;
		}
	`
	out, err := Compile(context.Background(), "t.c", []byte(src))
	require.NoError(t, err)
	text := string(out)

	assert.NotContains(t, text, "alloca", "mem2reg must promote r out of memory")
	// the join block must carry a bb-param standing in for r
	joinLine := findBlockHeader(t, text, "if.cont")
	assert.Contains(t, joinLine, "(int %", "if.cont must take r's value as a block param")
}

func TestCompileIfElseBothArmsReturnNeedsNoJoin(t *testing.T) {
	src := `
		int f(int a) {
			if (a < 0) {
				return 1;
			} else {
				return 2;
			}
		}
	`
	out, err := Compile(context.Background(), "t.c", []byte(src))
	require.NoError(t, err)
	text := string(out)

	assert.NotContains(t, text, "if.cont", "a dangling, unreachable if.cont must not survive when both arms already return")
}

func TestCompileForLoopPromotesCounter(t *testing.T) {
	src := `
		int sum(int n) {
			int total;
			total = 0;
			for (int i = 0; i < n; i = i + 1) {
				total = total + i;
			}
			return total;
		}
	`
	out, err := Compile(context.Background(), "t.c", []byte(src))
	require.NoError(t, err)
	text := string(out)

	assert.NotContains(t, text, "alloca", "loop counter and accumulator must both promote to SSA values")
	headerLine := findBlockHeader(t, text, "for.header")
	assert.Contains(t, headerLine, "(int", "for.header needs at least one block param for the promoted loop state")
}

func TestCompileShortCircuitAndLowersToDiamond(t *testing.T) {
	src := `
		bool f(bool a, bool b) {
			return a && b;
		}
	`
	out, err := Compile(context.Background(), "t.c", []byte(src))
	require.NoError(t, err)
	text := string(out)

	// dce threads the single-branch and.rhs block into entry's conditional
	// branch, so the surviving control flow is the and.join block param.
	assert.Contains(t, findBlockHeader(t, text, "and.join"), "(bool %", "&& must lower to control flow joining at a bool block param, not a single bool instruction")
}

func TestCompileDivisionByConstantZeroSurvives(t *testing.T) {
	src := `
		int f() {
			return 10 / 0;
		}
	`
	out, err := Compile(context.Background(), "t.c", []byte(src))
	require.NoError(t, err)
	text := string(out)

	assert.Contains(t, text, "div", "division by a literal zero must remain a runtime instruction, never folded away")
}

func TestCompileCallToUndeclaredFunctionFails(t *testing.T) {
	src := `
		int f() {
			return g();
		}
	`
	_, err := Compile(context.Background(), "t.c", []byte(src))
	assert.Error(t, err)
}

func TestCompileMissingReturnFails(t *testing.T) {
	src := `
		int f() {
			int x;
			x = 1;
		}
	`
	_, err := Compile(context.Background(), "t.c", []byte(src))
	assert.Error(t, err)
}

func findBlockHeader(t *testing.T, text, name string) string {
	t.Helper()
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, name+"(") {
			return line
		}
	}
	t.Fatalf("no block named %q in output:\n%s", name, text)
	return ""
}
