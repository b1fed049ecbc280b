// Package ast defines the front end's abstract syntax tree: the node
// tree a recursive-descent parser produces and compiler/front's lowering
// pass consumes to build IR. Grounded on the teacher's own front-end AST
// shape (_legacy/ast_old.go's Base/Node pattern, _legacy/parse.go's
// Prog/Func/Block/Expr/Stmt interfaces), adapted from the teacher's
// assembly-oriented grammar to the C-subset surface syntax
// original_source/tokenize.c and parse.hpp describe.
package ast

import "github.com/pcc-lang/pcc/compiler/types"

// Base carries every node's source span, for diagnostics.
type Base struct {
	Pos int
	End int
}

// TypeName is a surface-syntax type reference ("int", "bool"), resolved
// to a *types.Type during lowering.
type TypeName struct {
	Base
	Name string
}

// Resolve maps a TypeName to the shared types.Type singleton it names.
func (t TypeName) Resolve() *types.Type {
	switch t.Name {
	case "int":
		return types.TyInt
	case "bool":
		return types.TyBool
	case "void":
		return types.TyVoid
	default:
		return nil
	}
}

// Program is the root node: every function declared in a translation
// unit, in source order.
type Program struct {
	Funcs []*Func
}

// Param is one formal parameter of a Func.
type Param struct {
	Base
	Name string
	Type TypeName
}

// Func is a function declaration with a body (this front end has no
// separate declaration-only prototypes).
type Func struct {
	Base
	Name    string
	Params  []Param
	RetType TypeName
	Body    *Block
}

// Block is a brace-delimited statement list, introducing no scope of its
// own beyond what VarDecl statements add (this front end's scoping is
// flat per function, matching spec.md's single-alloca-per-local model).
type Block struct {
	Base
	Stmts []Stmt
}

// Stmt is any statement node: VarDecl, Assign, If, For, Return, or
// ExprStmt.
type Stmt interface {
	stmtNode()
}

// VarDecl declares a local of the given type, with an optional
// initializer ("int x;" or "int x = 1;").
type VarDecl struct {
	Base
	Name string
	Type TypeName
	Init Expr // nil if uninitialized
}

// Assign is `Name = Value;`.
type Assign struct {
	Base
	Name  string
	Value Expr
}

// If is `if (Cond) Then [else Else]`; Else is nil when absent.
type If struct {
	Base
	Cond Expr
	Then *Block
	Else *Block
}

// For is `for (Init; Cond; Post) Body`; Init/Cond/Post may each be nil.
type For struct {
	Base
	Init Stmt
	Cond Expr
	Post Stmt
	Body *Block
}

// Return is `return [Value];`; Value is nil for a void return.
type Return struct {
	Base
	Value Expr
}

// ExprStmt is a bare expression used for its side effect, currently only
// ever a Call (e.g. `foo(x);`).
type ExprStmt struct {
	Base
	Value Expr
}

func (VarDecl) stmtNode()  {}
func (Assign) stmtNode()   {}
func (If) stmtNode()       {}
func (For) stmtNode()      {}
func (Return) stmtNode()   {}
func (ExprStmt) stmtNode() {}

// Expr is any expression node.
type Expr interface {
	exprNode()
}

// Ident references a local variable or parameter by name.
type Ident struct {
	Base
	Name string
}

// IntLit is an integer literal.
type IntLit struct {
	Base
	Value int64
}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Base
	Value bool
}

// UnaryOp is one of the unary operators spec.md §4.2 lists: `-` (Neg),
// `~` (BitNot), `!` (logical not, lowered to an Eq-zero compare).
type UnaryOp struct {
	Base
	Op string // "-", "~", "!"
	X  Expr
}

// BinaryOp is one of the binary arithmetic/compare/bitwise operators;
// `&&`/`||` are modeled separately (LogicalAnd/LogicalOr) since they
// short-circuit and lower to control flow, not a single IR instruction.
type BinaryOp struct {
	Base
	Op    string // "+","-","*","/","%","==","!=","<","<=",">",">=","&","|","^"
	Left  Expr
	Right Expr
}

// LogicalAnd is `Left && Right`, short-circuiting: Right is evaluated
// only if Left is true.
type LogicalAnd struct {
	Base
	Left  Expr
	Right Expr
}

// LogicalOr is `Left || Right`, short-circuiting: Right is evaluated
// only if Left is false.
type LogicalOr struct {
	Base
	Left  Expr
	Right Expr
}

// Call is a direct call to a named function.
type Call struct {
	Base
	Callee string
	Args   []Expr
}

func (Ident) exprNode()      {}
func (IntLit) exprNode()     {}
func (BoolLit) exprNode()    {}
func (UnaryOp) exprNode()    {}
func (BinaryOp) exprNode()   {}
func (LogicalAnd) exprNode() {}
func (LogicalOr) exprNode()  {}
func (Call) exprNode()       {}
