package front

import (
	"tlog.app/go/errors"

	"github.com/pcc-lang/pcc/compiler/ast"
	"github.com/pcc-lang/pcc/compiler/ir"
	"github.com/pcc-lang/pcc/compiler/types"
)

// funcCtx holds the state threaded through one function's lowering: the
// IR builder (whose insert point tracks "the block we're currently
// emitting into"), and the alloca each local/parameter name resolves to.
// Every local is an Alloca plus Load/Store, never an SSA value directly —
// passes/mem2reg promotes them afterward, exactly as spec.md's mem2reg
// section assumes a front end that always emits this pattern.
type funcCtx struct {
	mod  *ir.Module
	fn   *ir.Function
	b    *ir.Builder
	vars map[string]*ir.AllocaInst
}

// Lower builds prog into a fresh Module of function bodies, running
// unifyReturns on each function immediately after its body lowers and
// before any optimization pass runs, per SPEC_FULL.md §5.
func Lower(prog *ast.Program) (*ir.Module, error) {
	ctx := ir.NewContext()
	mod := ir.NewModule(ctx)

	// Declare every function up front so forward calls (a function
	// calling one declared later in the file) resolve.
	for _, f := range prog.Funcs {
		paramTypes, err := resolveParamTypes(f.Params)
		if err != nil {
			return nil, errors.Wrap(err, "func %s", f.Name)
		}
		retType, err := resolveType(f.RetType)
		if err != nil {
			return nil, errors.Wrap(err, "func %s", f.Name)
		}
		mod.GetOrInsertFunction(f.Name, retType, paramTypes)
	}

	for _, f := range prog.Funcs {
		if err := lowerFunc(mod, f); err != nil {
			return nil, errors.Wrap(err, "func %s", f.Name)
		}
	}

	return mod, nil
}

func resolveType(t ast.TypeName) (*types.Type, error) {
	if t.Name == "" {
		return types.TyVoid, nil
	}
	resolved := t.Resolve()
	if resolved == nil {
		return nil, errors.New("unknown type %q at pos %d", t.Name, t.Pos)
	}
	return resolved, nil
}

func resolveParamTypes(params []ast.Param) ([]*types.Type, error) {
	out := make([]*types.Type, len(params))
	for i, p := range params {
		t, err := resolveType(p.Type)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func lowerFunc(mod *ir.Module, astFn *ast.Func) error {
	fn := mod.GetFunction(astFn.Name)
	if fn == nil {
		return errors.New("internal: function %s not pre-declared", astFn.Name)
	}

	entry := fn.AddBlock("entry")

	fc := &funcCtx{
		mod:  mod,
		fn:   fn,
		b:    ir.NewBuilder(mod.Context()),
		vars: make(map[string]*ir.AllocaInst),
	}
	fc.b.SetInsertPoint(entry)

	for i, p := range astFn.Params {
		alloca := fc.b.CreateAlloca(fn.Params()[i].Type(), p.Name)
		fc.b.CreateStore(fn.Params()[i], alloca)
		fc.vars[p.Name] = alloca
	}

	if err := fc.lowerBlock(astFn.Body); err != nil {
		return err
	}

	if fc.b.InsertBlock().Terminator() == nil {
		if fn.ReturnType() != types.TyVoid {
			return errors.New("missing return at pos %d", astFn.Body.End)
		}
		fc.b.CreateRet(nil)
	}

	unifyReturns(fn)
	return nil
}

// unifyReturns rewrites every RetInst-terminated block to instead branch
// to a single new join block that performs the one and only Ret, passing
// the returned value (if any) as that join block's sole BlockParam.
// Every downstream pass — most directly passes/dce's PostDominatorTree,
// whose reverse CFG is rooted at this single return per spec.md §4.6 —
// depends on this invariant holding before it runs.
func unifyReturns(fn *ir.Function) {
	var retBlocks []*ir.Block
	for _, bb := range fn.Blocks() {
		if _, ok := bb.Terminator().(*ir.RetInst); ok {
			retBlocks = append(retBlocks, bb)
		}
	}
	if len(retBlocks) <= 1 {
		return
	}

	isVoid := fn.ReturnType() == types.TyVoid

	join := fn.AddBlock("ret.join")
	var param *ir.BlockParam
	if !isVoid {
		param = join.AddParam(fn.ReturnType())
	}

	joinBuilder := ir.NewBuilder(fn.Context())
	joinBuilder.SetInsertPoint(join)
	if isVoid {
		joinBuilder.CreateRet(nil)
	} else {
		joinBuilder.CreateRet(param)
	}

	for _, bb := range retBlocks {
		ret := bb.Terminator().(*ir.RetInst)
		var args []ir.Value
		if !isVoid {
			args = []ir.Value{ret.Value()}
		}
		ret.Erase()

		b := ir.NewBuilder(fn.Context())
		b.SetInsertPoint(bb)
		b.CreateBr(join, args)
	}
}

func (fc *funcCtx) lowerBlock(blk *ast.Block) error {
	for _, st := range blk.Stmts {
		if err := fc.lowerStmt(st); err != nil {
			return err
		}
		if fc.b.InsertBlock().Terminator() != nil {
			// Anything after a terminating statement (return) is
			// unreachable; stop rather than append past a terminator.
			break
		}
	}
	return nil
}

func (fc *funcCtx) lowerStmt(st ast.Stmt) error {
	switch s := st.(type) {
	case ast.VarDecl:
		return fc.lowerVarDecl(s)
	case ast.Assign:
		return fc.lowerAssign(s)
	case ast.If:
		return fc.lowerIf(s)
	case ast.For:
		return fc.lowerFor(s)
	case ast.Return:
		return fc.lowerReturn(s)
	case ast.ExprStmt:
		_, err := fc.lowerExpr(s.Value)
		return err
	default:
		return errors.New("unhandled statement %T at pos %d", st, 0)
	}
}

func (fc *funcCtx) lowerVarDecl(s ast.VarDecl) error {
	t, err := resolveType(s.Type)
	if err != nil {
		return err
	}
	alloca := fc.b.CreateAlloca(t, s.Name)
	fc.vars[s.Name] = alloca

	if s.Init == nil {
		return nil
	}
	val, err := fc.lowerExpr(s.Init)
	if err != nil {
		return err
	}
	fc.b.CreateStore(val, alloca)
	return nil
}

func (fc *funcCtx) lowerAssign(s ast.Assign) error {
	alloca, ok := fc.vars[s.Name]
	if !ok {
		return errors.New("undeclared variable %q at pos %d", s.Name, s.Pos)
	}
	val, err := fc.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	fc.b.CreateStore(val, alloca)
	return nil
}

func (fc *funcCtx) lowerReturn(s ast.Return) error {
	if s.Value == nil {
		fc.b.CreateRet(nil)
		return nil
	}
	val, err := fc.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	fc.b.CreateRet(val)
	return nil
}

// lowerIf lowers `if (Cond) Then [else Else]`. When Else is absent, the
// CondBr's false edge targets contBlock directly, so contBlock always
// has at least one predecessor. When both arms are present and both
// terminate (e.g. both return), neither arm ever branches into
// contBlock — left in place it would be a dangling, predecessor-less
// block with no terminator, which lowerFunc's missing-return check
// would mistake for a fall-off-the-end path. contBlock is erased in
// that case, and the insert point left on one of the two terminated
// arms so this statement reads as terminating, same as a bare return.
func (fc *funcCtx) lowerIf(s ast.If) error {
	cond, err := fc.lowerExpr(s.Cond)
	if err != nil {
		return err
	}

	thenBlock := fc.fn.AddBlock("if.then")
	contBlock := fc.fn.AddBlock("if.cont")
	elseBlock := contBlock
	if s.Else != nil {
		elseBlock = fc.fn.AddBlock("if.else")
	}

	fc.b.CreateCondBr(cond, thenBlock, nil, elseBlock, nil)

	fc.b.SetInsertPoint(thenBlock)
	if err := fc.lowerBlock(s.Then); err != nil {
		return err
	}
	thenEnd := fc.b.InsertBlock()
	thenReachesCont := thenEnd.Terminator() == nil
	if thenReachesCont {
		fc.b.CreateBr(contBlock, nil)
	}

	elseEnd := elseBlock
	elseReachesCont := true
	if s.Else != nil {
		fc.b.SetInsertPoint(elseBlock)
		if err := fc.lowerBlock(s.Else); err != nil {
			return err
		}
		elseEnd = fc.b.InsertBlock()
		elseReachesCont = elseEnd.Terminator() == nil
		if elseReachesCont {
			fc.b.CreateBr(contBlock, nil)
		}
	}

	if !thenReachesCont && !elseReachesCont {
		fc.fn.EraseBlock(contBlock)
		fc.b.SetInsertPoint(elseEnd)
		return nil
	}

	fc.b.SetInsertPoint(contBlock)
	return nil
}

func (fc *funcCtx) lowerFor(s ast.For) error {
	if s.Init != nil {
		if err := fc.lowerStmt(s.Init); err != nil {
			return err
		}
	}

	header := fc.fn.AddBlock("for.header")
	body := fc.fn.AddBlock("for.body")
	cont := fc.fn.AddBlock("for.cont")

	fc.b.CreateBr(header, nil)

	fc.b.SetInsertPoint(header)
	if s.Cond != nil {
		condVal, err := fc.lowerExpr(s.Cond)
		if err != nil {
			return err
		}
		fc.b.CreateCondBr(condVal, body, nil, cont, nil)
	} else {
		fc.b.CreateBr(body, nil)
	}

	fc.b.SetInsertPoint(body)
	if err := fc.lowerBlock(s.Body); err != nil {
		return err
	}
	if fc.b.InsertBlock().Terminator() == nil {
		if s.Post != nil {
			if err := fc.lowerStmt(s.Post); err != nil {
				return err
			}
		}
		fc.b.CreateBr(header, nil)
	}

	fc.b.SetInsertPoint(cont)
	return nil
}

func (fc *funcCtx) lowerExpr(e ast.Expr) (ir.Value, error) {
	switch v := e.(type) {
	case ast.IntLit:
		return fc.b.GetInt(v.Value), nil

	case ast.BoolLit:
		return fc.b.GetBool(v.Value), nil

	case ast.Ident:
		alloca, ok := fc.vars[v.Name]
		if !ok {
			return nil, errors.New("undeclared variable %q at pos %d", v.Name, v.Pos)
		}
		return fc.b.CreateLoad(alloca), nil

	case ast.UnaryOp:
		return fc.lowerUnary(v)

	case ast.BinaryOp:
		return fc.lowerBinary(v)

	case ast.LogicalAnd:
		return fc.lowerLogicalAnd(v)

	case ast.LogicalOr:
		return fc.lowerLogicalOr(v)

	case ast.Call:
		return fc.lowerCall(v)

	default:
		return nil, errors.New("unhandled expression %T at pos %d", e, 0)
	}
}

func (fc *funcCtx) lowerUnary(v ast.UnaryOp) (ir.Value, error) {
	x, err := fc.lowerExpr(v.X)
	if err != nil {
		return nil, err
	}
	switch v.Op {
	case "-":
		return fc.b.CreateUnary(ir.KindNeg, x), nil
	case "~":
		return fc.b.CreateUnary(ir.KindBitNot, x), nil
	case "!":
		if x.Type() == types.TyBool {
			return fc.b.CreateCmp(ir.KindEq, x, fc.b.GetBool(false)), nil
		}
		return fc.b.CreateCmp(ir.KindEq, x, fc.b.GetInt(0)), nil
	default:
		return nil, errors.New("unhandled unary operator %q at pos %d", v.Op, v.Pos)
	}
}

var compareKinds = map[string]ir.Kind{
	"==": ir.KindEq,
	"!=": ir.KindNe,
	"<":  ir.KindLt,
	"<=": ir.KindLe,
}

var arithKinds = map[string]ir.Kind{
	"+": ir.KindAdd,
	"-": ir.KindSub,
	"*": ir.KindMul,
	"/": ir.KindDiv,
	"%": ir.KindMod,
	"&": ir.KindBitAnd,
	"|": ir.KindBitOr,
	"^": ir.KindBitXor,
}

func (fc *funcCtx) lowerBinary(v ast.BinaryOp) (ir.Value, error) {
	// `>` and `>=` have no dedicated IR kind (spec.md §4.2 only defines
	// Lt/Le); swap operands, matching original_source/gen_ir.cpp's
	// normalization of every comparison to < or <=.
	op, left, right := v.Op, v.Left, v.Right
	switch op {
	case ">":
		op, left, right = "<", right, left
	case ">=":
		op, left, right = "<=", right, left
	}

	lhs, err := fc.lowerExpr(left)
	if err != nil {
		return nil, err
	}
	rhs, err := fc.lowerExpr(right)
	if err != nil {
		return nil, err
	}

	if kind, ok := compareKinds[op]; ok {
		return fc.b.CreateCmp(kind, lhs, rhs), nil
	}
	if kind, ok := arithKinds[op]; ok {
		return fc.b.CreateBinary(kind, lhs, rhs), nil
	}
	return nil, errors.New("unhandled binary operator %q at pos %d", v.Op, v.Pos)
}

// lowerLogicalAnd lowers `Left && Right` to the three-way diamond
// SPEC_FULL.md §5 calls for: Left is always evaluated; Right only if
// Left is true; the result is a BlockParam of the join block, this IR's
// φ-node replacement (spec.md §3).
func (fc *funcCtx) lowerLogicalAnd(v ast.LogicalAnd) (ir.Value, error) {
	lhs, err := fc.lowerExpr(v.Left)
	if err != nil {
		return nil, err
	}

	rhsBlock := fc.fn.AddBlock("and.rhs")
	joinBlock := fc.fn.AddBlock("and.join")
	joinParam := joinBlock.AddParam(types.TyBool)

	fc.b.CreateCondBr(lhs, rhsBlock, nil, joinBlock, []ir.Value{lhs})

	fc.b.SetInsertPoint(rhsBlock)
	rhs, err := fc.lowerExpr(v.Right)
	if err != nil {
		return nil, err
	}
	fc.b.CreateBr(joinBlock, []ir.Value{rhs})

	fc.b.SetInsertPoint(joinBlock)
	return joinParam, nil
}

// lowerLogicalOr mirrors lowerLogicalAnd: Right is evaluated only if
// Left is false.
func (fc *funcCtx) lowerLogicalOr(v ast.LogicalOr) (ir.Value, error) {
	lhs, err := fc.lowerExpr(v.Left)
	if err != nil {
		return nil, err
	}

	rhsBlock := fc.fn.AddBlock("or.rhs")
	joinBlock := fc.fn.AddBlock("or.join")
	joinParam := joinBlock.AddParam(types.TyBool)

	fc.b.CreateCondBr(lhs, joinBlock, []ir.Value{lhs}, rhsBlock, nil)

	fc.b.SetInsertPoint(rhsBlock)
	rhs, err := fc.lowerExpr(v.Right)
	if err != nil {
		return nil, err
	}
	fc.b.CreateBr(joinBlock, []ir.Value{rhs})

	fc.b.SetInsertPoint(joinBlock)
	return joinParam, nil
}

func (fc *funcCtx) lowerCall(v ast.Call) (ir.Value, error) {
	callee := fc.mod.GetFunction(v.Callee)
	if callee == nil {
		return nil, errors.New("call to undeclared function %q at pos %d", v.Callee, v.Pos)
	}

	args := make([]ir.Value, len(v.Args))
	for i, a := range v.Args {
		val, err := fc.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args[i] = val
	}

	return fc.b.CreateCall(callee, args), nil
}
