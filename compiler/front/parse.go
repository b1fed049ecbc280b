package front

import (
	"tlog.app/go/errors"

	"github.com/pcc-lang/pcc/compiler/ast"
)

// parser is a one-token-lookahead recursive-descent parser, grounded on
// the teacher's _legacy/parse.go shape (State.next/parseFunc/parseArgs/
// parseBlock, "at pos %d" error wrapping climbing back up the call
// stack) adapted to the C-subset grammar original_source/parse.hpp
// describes: functions, int/bool locals and params, if/else, for,
// return, direct calls, and the full spec.md §4.2 operator set with
// short-circuit &&/||.
type parser struct {
	lex  *lexer
	cur  token
	peek token
}

func newParser(src []byte) (*parser, error) {
	p := &parser{lex: newLexer(src)}

	var err error
	p.cur, err = p.lex.next()
	if err != nil {
		return nil, err
	}
	p.peek, err = p.lex.next()
	if err != nil {
		return nil, err
	}

	return p, nil
}

func (p *parser) advance() error {
	p.cur = p.peek
	var err error
	p.peek, err = p.lex.next()
	return err
}

func (p *parser) isKeyword(s string) bool { return p.cur.kind == tokKeyword && p.cur.text == s }
func (p *parser) isPunct(s string) bool   { return p.cur.kind == tokPunct && p.cur.text == s }

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return errors.New("expected %q, got %q at pos %d", s, p.cur.text, p.cur.pos)
	}
	return p.advance()
}

func (p *parser) isTypeKeyword() bool {
	return p.isKeyword("int") || p.isKeyword("bool") || p.isKeyword("void")
}

func (p *parser) parseType() (ast.TypeName, error) {
	if !p.isTypeKeyword() {
		return ast.TypeName{}, errors.New("expected type, got %q at pos %d", p.cur.text, p.cur.pos)
	}
	t := ast.TypeName{Base: ast.Base{Pos: p.cur.pos, End: p.cur.end}, Name: p.cur.text}
	return t, p.advance()
}

// parseProgram parses a full translation unit: zero or more function
// declarations, matching _legacy/parse.go's State.Parse top-level loop.
func parseProgram(src []byte) (*ast.Program, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}

	prog := &ast.Program{}
	for p.cur.kind != tokEOF {
		fn, err := p.parseFunc()
		if err != nil {
			return nil, errors.Wrap(err, "at pos %d", p.cur.pos)
		}
		prog.Funcs = append(prog.Funcs, fn)
	}

	return prog, nil
}

func (p *parser) parseFunc() (*ast.Func, error) {
	st := p.cur.pos

	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}

	if p.cur.kind != tokIdent {
		return nil, errors.New("expected function name, got %q at pos %d", p.cur.text, p.cur.pos)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}

	params, err := p.parseParams()
	if err != nil {
		return nil, errors.Wrap(err, "params of %s", name)
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, errors.Wrap(err, "body of %s", name)
	}

	return &ast.Func{
		Base:    ast.Base{Pos: st, End: p.cur.pos},
		Name:    name,
		Params:  params,
		RetType: retType,
		Body:    body,
	}, nil
}

func (p *parser) parseParams() ([]ast.Param, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var params []ast.Param
	for !p.isPunct(")") {
		if len(params) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}

		st := p.cur.pos
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.cur.kind != tokIdent {
			return nil, errors.New("expected param name, got %q at pos %d", p.cur.text, p.cur.pos)
		}
		name := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}

		params = append(params, ast.Param{
			Base: ast.Base{Pos: st, End: p.cur.pos},
			Name: name,
			Type: typ,
		})
	}

	return params, p.expectPunct(")")
}

func (p *parser) parseBlock() (*ast.Block, error) {
	st := p.cur.pos
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	var stmts []ast.Stmt
	for !p.isPunct("}") {
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}

	end := p.cur.end
	return &ast.Block{Base: ast.Base{Pos: st, End: end}, Stmts: stmts}, p.expectPunct("}")
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.isTypeKeyword():
		return p.parseVarDeclStmt()
	case p.isKeyword("if"):
		return p.parseIf()
	case p.isKeyword("for"):
		return p.parseFor()
	case p.isKeyword("return"):
		return p.parseReturn()
	case p.cur.kind == tokIdent:
		return p.parseIdentStmt()
	default:
		return nil, errors.New("unexpected token %q at pos %d", p.cur.text, p.cur.pos)
	}
}

// parseVarDecl parses `Type Ident [= Expr]` without the trailing
// semicolon, shared by both statement-level declarations and a for
// loop's init clause.
func (p *parser) parseVarDecl() (ast.VarDecl, error) {
	st := p.cur.pos
	typ, err := p.parseType()
	if err != nil {
		return ast.VarDecl{}, err
	}
	if p.cur.kind != tokIdent {
		return ast.VarDecl{}, errors.New("expected variable name, got %q at pos %d", p.cur.text, p.cur.pos)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return ast.VarDecl{}, err
	}

	var init ast.Expr
	if p.isPunct("=") {
		if err := p.advance(); err != nil {
			return ast.VarDecl{}, err
		}
		init, err = p.parseExpr()
		if err != nil {
			return ast.VarDecl{}, err
		}
	}

	return ast.VarDecl{Base: ast.Base{Pos: st, End: p.cur.pos}, Name: name, Type: typ, Init: init}, nil
}

func (p *parser) parseVarDeclStmt() (ast.Stmt, error) {
	v, err := p.parseVarDecl()
	if err != nil {
		return nil, err
	}
	return v, p.expectPunct(";")
}

// parseIdentStmt disambiguates `Ident = Expr;` (Assign) from
// `Ident(...);` (a call used for its side effect) by one token of
// lookahead past the identifier.
func (p *parser) parseIdentStmt() (ast.Stmt, error) {
	st := p.cur.pos
	name := p.cur.text

	if p.peek.kind == tokPunct && p.peek.text == "=" {
		if err := p.advance(); err != nil { // consume ident
			return nil, err
		}
		if err := p.advance(); err != nil { // consume '='
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		a := ast.Assign{Base: ast.Base{Pos: st, End: p.cur.pos}, Name: name, Value: val}
		return a, p.expectPunct(";")
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, ok := expr.(ast.Call); !ok {
		return nil, errors.New("expression statement must be a call, at pos %d", st)
	}
	s := ast.ExprStmt{Base: ast.Base{Pos: st, End: p.cur.pos}, Value: expr}
	return s, p.expectPunct(";")
}

func (p *parser) parseIf() (ast.Stmt, error) {
	st := p.cur.pos
	if err := p.advance(); err != nil { // consume "if"
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	thenBlk, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	var elseBlk *ast.Block
	if p.isKeyword("else") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseBlk, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}

	return ast.If{Base: ast.Base{Pos: st, End: p.cur.pos}, Cond: cond, Then: thenBlk, Else: elseBlk}, nil
}

func (p *parser) parseFor() (ast.Stmt, error) {
	st := p.cur.pos
	if err := p.advance(); err != nil { // consume "for"
		return nil, err
	}
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var init ast.Stmt
	if !p.isPunct(";") {
		if p.isTypeKeyword() {
			v, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			init = v
		} else {
			a, err := p.parseAssignExpr()
			if err != nil {
				return nil, err
			}
			init = a
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.isPunct(";") {
		var err error
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}

	var post ast.Stmt
	if !p.isPunct(")") {
		a, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		post = a
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return ast.For{Base: ast.Base{Pos: st, End: p.cur.pos}, Init: init, Cond: cond, Post: post, Body: body}, nil
}

// parseAssignExpr parses `Ident = Expr` without a trailing semicolon, the
// shape a for loop's init/post clause needs.
func (p *parser) parseAssignExpr() (ast.Stmt, error) {
	st := p.cur.pos
	if p.cur.kind != tokIdent {
		return nil, errors.New("expected assignment, got %q at pos %d", p.cur.text, p.cur.pos)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.Assign{Base: ast.Base{Pos: st, End: p.cur.pos}, Name: name, Value: val}, nil
}

func (p *parser) parseReturn() (ast.Stmt, error) {
	st := p.cur.pos
	if err := p.advance(); err != nil { // consume "return"
		return nil, err
	}

	var val ast.Expr
	if !p.isPunct(";") {
		var err error
		val, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	r := ast.Return{Base: ast.Base{Pos: st, End: p.cur.pos}, Value: val}
	return r, p.expectPunct(";")
}

// --------------------------------------------------------------------
// Expression parsing: standard C precedence climbing, one level of
// recursive-descent function per precedence tier, bottoming out at
// parsePrimary. Short-circuit && and || are their own AST nodes
// (LogicalAnd/LogicalOr) rather than BinaryOp, since lowering gives them
// control-flow semantics instead of a single IR instruction.

func (p *parser) parseExpr() (ast.Expr, error) { return p.parseLogicalOr() }

func (p *parser) parseLogicalOr() (ast.Expr, error) {
	left, err := p.parseLogicalAnd()
	if err != nil {
		return nil, err
	}
	for p.isPunct("||") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseLogicalAnd()
		if err != nil {
			return nil, err
		}
		left = ast.LogicalOr{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseLogicalAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.isPunct("&&") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = ast.LogicalAnd{Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseEquality() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseRelational, "==", "!=")
}

func (p *parser) parseRelational() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseBitOr, "<", "<=", ">", ">=")
}

func (p *parser) parseBitOr() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseBitXor, "|")
}

func (p *parser) parseBitXor() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseBitAnd, "^")
}

func (p *parser) parseBitAnd() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseAdditive, "&")
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseMultiplicative, "+", "-")
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	return p.parseBinaryLevel(p.parseUnary, "*", "/", "%")
}

func (p *parser) parseBinaryLevel(next func() (ast.Expr, error), ops ...string) (ast.Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		matched := ""
		if p.cur.kind == tokPunct {
			for _, op := range ops {
				if p.cur.text == op {
					matched = op
					break
				}
			}
		}
		if matched == "" {
			return left, nil
		}

		st := p.cur.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = ast.BinaryOp{Base: ast.Base{Pos: st}, Op: matched, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.cur.kind == tokPunct && (p.cur.text == "-" || p.cur.text == "~" || p.cur.text == "!") {
		st := p.cur.pos
		op := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryOp{Base: ast.Base{Pos: st}, Op: op, X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	switch {
	case p.cur.kind == tokNumber:
		lit := ast.IntLit{Base: ast.Base{Pos: p.cur.pos, End: p.cur.end}, Value: p.cur.val}
		return lit, p.advance()

	case p.isKeyword("true"), p.isKeyword("false"):
		lit := ast.BoolLit{Base: ast.Base{Pos: p.cur.pos, End: p.cur.end}, Value: p.cur.text == "true"}
		return lit, p.advance()

	case p.isPunct("("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return e, p.expectPunct(")")

	case p.cur.kind == tokIdent:
		name := p.cur.text
		st := p.cur.pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.isPunct("(") {
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			return ast.Call{Base: ast.Base{Pos: st, End: p.cur.pos}, Callee: name, Args: args}, nil
		}
		return ast.Ident{Base: ast.Base{Pos: st, End: p.cur.end}, Name: name}, nil

	default:
		return nil, errors.New("expected expression, got %q at pos %d", p.cur.text, p.cur.pos)
	}
}

func (p *parser) parseCallArgs() ([]ast.Expr, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}

	var args []ast.Expr
	for !p.isPunct(")") {
		if len(args) > 0 {
			if err := p.expectPunct(","); err != nil {
				return nil, err
			}
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}

	return args, p.expectPunct(")")
}
