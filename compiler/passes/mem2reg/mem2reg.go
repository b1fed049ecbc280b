// Package mem2reg promotes allocas that are only ever loaded and stored
// (never have their address taken otherwise) into SSA values threaded
// through BlockParams, this IR's replacement for φ-nodes. Ported from
// original_source/passes/mem2reg.cpp.
package mem2reg

import (
	"tlog.app/go/loc"
	"tlog.app/go/tlog"

	"github.com/pcc-lang/pcc/compiler/ir"
)

// state holds everything mem2reg.cpp keeps as file-scope `static` maps,
// scoped per Run call instead — spec.md §9 calls out this exact
// translation ("global mutable state in some passes, e.g. in mem2reg,
// must become pass-local state").
type state struct {
	// m2r[block][alloca] is the latest known value of *alloca in block;
	// once setMap has walked the block's stores, it is the value live at
	// the block's end, which is what successors read through findVal.
	m2r map[*ir.Block]map[*ir.AllocaInst]ir.Value
	// r2r chases a value to whatever it was ultimately resolved to,
	// after a BlockParam collapses to a single predecessor value.
	r2r map[ir.Value]ir.Value

	paramToVar  map[*ir.BlockParam]*ir.AllocaInst
	paramToArgs map[*ir.BlockParam][]ir.Value
	paramsErased []erasedParam
	visited      map[*ir.BlockParam]bool
}

type erasedParam struct {
	block *ir.Block
	param *ir.BlockParam
}

// Run promotes every promotable alloca in fn to SSA form. Mirrors
// mem2reg.cpp's per-function loop body in mem2reg(Module*).
func Run(fn *ir.Function) {
	if fn.Entry() == nil {
		return
	}

	st := &state{
		m2r:         make(map[*ir.Block]map[*ir.AllocaInst]ir.Value),
		r2r:         make(map[ir.Value]ir.Value),
		paramToVar:  make(map[*ir.BlockParam]*ir.AllocaInst),
		paramToArgs: make(map[*ir.BlockParam][]ir.Value),
		visited:     make(map[*ir.BlockParam]bool),
	}

	workList := st.buildAllocaWorkList(fn)
	if len(workList) == 0 {
		return
	}

	st.addBlockArgs(fn, workList)
	st.rewrite(fn, workList)

	tlog.Printw("mem2reg promoted allocas", "function", fn.Name(), "count", len(workList), "from", loc.Caller(1))
}

// canPromote reports whether every user of ai is a Load, or a Store
// that uses ai only as its address operand (a Store whose stored value
// is ai itself escapes the pointer, so ai is not promotable).
func canPromote(ai *ir.AllocaInst) bool {
	for _, u := range ai.Users() {
		if si, ok := u.(*ir.StoreInst); ok {
			if si.StoredValue() == ai {
				return false
			}
			continue
		}
		if ui, ok := u.(*ir.UnaryInst); ok && ui.Kind() == ir.KindLoad {
			continue
		}
		return false
	}
	return true
}

func (st *state) buildAllocaWorkList(fn *ir.Function) map[*ir.AllocaInst]bool {
	workList := make(map[*ir.AllocaInst]bool)
	for _, inst := range fn.Entry().Insts() {
		if ai, ok := inst.(*ir.AllocaInst); ok && canPromote(ai) {
			workList[ai] = true
		}
	}
	return workList
}

func inWorkList(v ir.Value, workList map[*ir.AllocaInst]bool) *ir.AllocaInst {
	ai, ok := v.(*ir.AllocaInst)
	if !ok || !workList[ai] {
		return nil
	}
	return ai
}

func (st *state) blockMap(b *ir.Block) map[*ir.AllocaInst]ir.Value {
	m, ok := st.m2r[b]
	if !ok {
		m = make(map[*ir.AllocaInst]ir.Value)
		st.m2r[b] = m
	}
	return m
}

// findValTrivial resolves the value standing in for *var at the start
// of block, inserting a BlockParam at a join point but — unlike
// findVal — without immediately driving set_arg on it, since this is
// only used from the bulk setMap pass that runs before set_args()
// processes every param in one sweep. Mirrors find_val_trivial.
func (st *state) findValTrivial(v *ir.AllocaInst, block *ir.Block) ir.Value {
	m := st.blockMap(block)
	if val, ok := m[v]; ok {
		return val
	}

	preds := block.Predecessors()
	if len(preds) == 1 {
		val := st.findValTrivial(v, preds[0])
		m[v] = val
		return val
	}

	param := block.AddParam(v.AllocatedType())
	m[v] = param
	st.paramToVar[param] = v
	return param
}

func (st *state) setMap(fn *ir.Function, workList map[*ir.AllocaInst]bool) {
	for _, bb := range fn.Blocks() {
		for _, inst := range bb.Insts() {
			switch in := inst.(type) {
			case *ir.StoreInst:
				if ai := inWorkList(in.Pointer(), workList); ai != nil {
					st.blockMap(bb)[ai] = in.StoredValue()
				}
			case *ir.UnaryInst:
				if in.Kind() != ir.KindLoad {
					continue
				}
				if ai := inWorkList(in.Operand0(), workList); ai != nil {
					val := st.findValTrivial(ai, bb)
					st.r2r[in] = val
				}
			}
		}
	}
}

// getPredVals resolves the value that flows into param from each of its
// block's predecessors, collapsing to a single value when all
// predecessors agree (possibly modulo the param's own back-reference —
// a loop header referring to itself is not a real second value).
// Mirrors get_pred_vals.
func (st *state) getPredVals(param *ir.BlockParam) []ir.Value {
	block := param.Block()
	preds := block.Predecessors()

	record := make([]ir.Value, len(preds))
	seen := make(map[ir.Value]bool)
	var distinct []ir.Value

	for i, pred := range preds {
		val := st.findVal(st.paramToVar[param], pred)
		record[i] = val
		if !seen[val] {
			seen[val] = true
			distinct = append(distinct, val)
		}
	}

	if len(distinct) == 1 {
		return []ir.Value{record[0]}
	}
	if len(distinct) == 2 && seen[ir.Value(param)] {
		for _, v := range distinct {
			if v != ir.Value(param) {
				return []ir.Value{v}
			}
		}
	}
	return record
}

// setArg resolves param to either a single collapsed value (and marks it
// for erasure) or a genuine multi-predecessor BlockParam whose per-
// predecessor arguments are recorded for fillArgs. Mirrors set_arg.
// Params that mem2reg did not insert itself (the front end's &&/|| and
// return-unification join params) are returned unchanged.
func (st *state) setArg(param *ir.BlockParam) ir.Value {
	if _, ok := st.paramToVar[param]; !ok {
		return param
	}
	if st.visited[param] {
		return param
	}
	st.visited[param] = true

	block := param.Block()
	predVals := st.getPredVals(param)
	if len(predVals) == 1 {
		val := predVals[0]
		st.r2r[param] = val
		st.blockMap(block)[st.paramToVar[param]] = val
		st.paramsErased = append(st.paramsErased, erasedParam{block: block, param: param})
		return val
	}

	st.paramToArgs[param] = predVals
	return param
}

// mapTo chases val through r2r until it reaches a fixed point, caching
// the shortcut. Mirrors map_to.
func (st *state) mapTo(val ir.Value) ir.Value {
	old := val
	for {
		next, ok := st.r2r[val]
		if !ok || next == nil {
			break
		}
		val = next
	}
	if val != old {
		st.r2r[old] = val
	}
	return val
}

// findVal is findValTrivial's counterpart used once propagation is under
// way: it drives set_arg immediately on any BlockParam it encounters or
// creates, since callers (getPredVals, itself) need a fully resolved
// value right away rather than a placeholder to be swept up later.
// Mirrors find_val.
func (st *state) findVal(v *ir.AllocaInst, block *ir.Block) ir.Value {
	m := st.blockMap(block)
	if val, ok := m[v]; ok {
		resolved := st.mapTo(val)
		if param, ok := resolved.(*ir.BlockParam); ok {
			st.setArg(param)
		}
		return st.mapTo(val)
	}

	preds := block.Predecessors()
	if len(preds) == 1 {
		val := st.findVal(v, preds[0])
		m[v] = val
		return val
	}

	param := block.AddParam(v.AllocatedType())
	m[v] = param
	st.paramToVar[param] = v
	return st.setArg(param)
}

func (st *state) setArgs(fn *ir.Function) {
	for _, bb := range fn.Blocks() {
		for _, p := range bb.Params() {
			st.setArg(p)
		}
	}
}

func (st *state) fillArgs(fn *ir.Function) {
	for _, bb := range fn.Blocks() {
		for _, param := range bb.Params() {
			args, ok := st.paramToArgs[param]
			if !ok {
				continue
			}
			for i, pred := range bb.Predecessors() {
				br := pred.Terminator().(*ir.BrInst)
				if !br.IsConditional() {
					br.SetThenArgs(append(br.ThenArgs(), args[i]))
				} else if br.Then() == bb {
					br.SetThenArgs(append(br.ThenArgs(), args[i]))
				} else {
					br.SetElseArgs(append(br.ElseArgs(), args[i]))
				}
			}
		}
	}
}

func (st *state) addBlockArgs(fn *ir.Function, workList map[*ir.AllocaInst]bool) {
	st.setMap(fn, workList)
	st.setArgs(fn)

	for _, p := range st.paramsErased {
		p.block.EraseParam(p.param.Index())
	}

	st.fillArgs(fn)
}

func (st *state) rewrite(fn *ir.Function, workList map[*ir.AllocaInst]bool) {
	for ai := range workList {
		for _, u := range ai.Users() {
			switch inst := u.(type) {
			case *ir.StoreInst:
				inst.Erase()
			case *ir.UnaryInst:
				inst.ReplaceAllUsesWith(st.mapTo(inst))
				inst.Erase()
			}
		}
		ai.Erase()
	}
}
