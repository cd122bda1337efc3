package codegen

import (
	"fmt"

	"capy/internal/hir"
	"capy/internal/infer"
	"capy/internal/source"
	"capy/internal/types"
)

// funcLowerer holds everything needed to lower one function body: the
// shared module-level state (types, layout, the lambda queue) plus this
// function's own compilation state — current block, symbol-to-local maps,
// and the loop stack break/continue resolve against.
type funcLowerer struct {
	lw     *Lowerer
	tys    *types.Interner
	lay    *LayoutEngine
	eng    *infer.Engine
	file   source.FileName
	bodies *hir.Bodies

	f   *Func
	cur BlockID

	localIDs map[hir.LocalDefIdx]LocalID
	paramIDs []LocalID

	breakables []breakCtx
	tempN      int
}

// breakCtx is one live break/continue target: a loop, or a labeled block
// that `break value` can exit. hasResult marks targets whose breaks carry a
// value into a shared result local read at the join/exit block.
type breakCtx struct {
	scope       hir.ScopeID
	isLoop      bool
	breakTarget BlockID
	contTarget  BlockID // loops only
	hasResult   bool
	result      Place
	resultTy    types.TypeID
}

// lowerFuncBody compiles lam's body into f, given fnTy as the already
// resolved function-type signature (params + result).
func (lw *Lowerer) lowerFuncBody(f *Func, file source.FileName, bodies *hir.Bodies, lam *hir.Lambda, fnTy types.TypeID) error {
	fi, ok := lw.Types.FnInfo(fnTy)
	if !ok {
		return fmt.Errorf("codegen: %s has no function type", f.Name)
	}
	f.Span = lam.Span
	f.Result = fi.Result
	f.ReturnsAggregate = lw.Lay.IsAggregate(fi.Result)

	l := &funcLowerer{
		lw: lw, tys: lw.Types, lay: lw.Lay, eng: lw.Eng,
		file: file, bodies: bodies, f: f,
		localIDs: make(map[hir.LocalDefIdx]LocalID),
	}

	for i, p := range lam.Params {
		var ty types.TypeID
		if i < len(fi.Params) {
			ty = fi.Params[i]
		}
		flags := LocalFlagParam
		if l.lay.IsAggregate(ty) {
			flags |= LocalFlagAggregateSlot
		}
		name := l.spellingOf(p.Name)
		id := f.NewLocal(name, ty, flags)
		l.paramIDs = append(l.paramIDs, id)
	}
	f.ParamCount = len(l.paramIDs)

	if f.ReturnsAggregate {
		f.SretParam = f.NewLocal("$sret", fi.Result, LocalFlagSretDst|LocalFlagAggregateSlot)
	} else {
		f.SretParam = NoLocalID
	}

	if lam.Extern {
		// An extern declaration has no body to lower (its body lowers to
		// Expr::Missing, not Void) — the Func stands for the symbol's
		// shape alone.
		f.Entry = NoBlockID
		return nil
	}

	entry := f.NewBlock()
	f.Entry = entry
	l.startBlock(entry)

	result, err := l.lowerValue(lam.Body)
	if err != nil {
		return err
	}
	l.finishReturn(fi.Result, result)
	return nil
}

// finishReturn emits the function's final terminator for a fallen-through
// tail expression, unless a nested control-flow construct already
// terminated the current block (e.g. every arm of a tail if/switch
// diverges).
func (l *funcLowerer) finishReturn(resultTy types.TypeID, result Operand) {
	if l.curBlock().Terminated() {
		return
	}
	if l.lay.IsAggregate(resultTy) {
		if l.f.ReturnsAggregate {
			l.emit(&Instr{Kind: InstrMemcpy, Memcpy: MemcpyInstr{
				Dst:  Place{Kind: PlaceLocal, Local: l.f.SretParam},
				Src:  l.materialize(result, resultTy),
				Size: l.lay.SizeOf(resultTy),
			}})
		}
		l.setTerm(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: false}})
		return
	}
	l.setTerm(Terminator{Kind: TermReturn, Return: ReturnTerm{HasValue: true, Value: result}})
}

// --- block/instruction plumbing --------------------------------------------

func (l *funcLowerer) curBlockPtr() *Block { return l.f.Block(l.cur) }
func (l *funcLowerer) curBlock() *Block    { return l.f.Block(l.cur) }

func (l *funcLowerer) newBlock() BlockID {
	return l.f.NewBlock()
}

func (l *funcLowerer) startBlock(id BlockID) {
	l.cur = id
}

func (l *funcLowerer) setTerm(t Terminator) {
	b := l.curBlockPtr()
	if b.Terminated() {
		return
	}
	b.Term = t
}

func (l *funcLowerer) emit(ins *Instr) {
	b := l.curBlockPtr()
	if b.Terminated() {
		return
	}
	b.Instrs = append(b.Instrs, *ins)
}

// gotoIfOpen sets an unconditional jump to target unless the current block
// already diverged (returned, trapped, or jumped away some other path).
func (l *funcLowerer) gotoIfOpen(target BlockID) {
	if !l.curBlock().Terminated() {
		l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: target}})
	}
}

// newLocal appends a fresh named Local, emitting the StackAlloc instruction
// aggregate-typed storage needs before first use.
func (l *funcLowerer) newLocal(name string, ty types.TypeID, flags LocalFlags) LocalID {
	if l.lay.IsAggregate(ty) {
		flags |= LocalFlagAggregateSlot
	}
	id := l.f.NewLocal(name, ty, flags)
	if flags.Has(LocalFlagAggregateSlot) {
		l.emit(&Instr{Kind: InstrStackAlloc, StackSlot: StackAllocInstr{Local: id}})
	}
	return id
}

func (l *funcLowerer) newTemp(ty types.TypeID, hint string) LocalID {
	l.tempN++
	return l.newLocal(fmt.Sprintf("$%s%d", hint, l.tempN), ty, 0)
}

func (l *funcLowerer) localFor(idx hir.LocalDefIdx) LocalID {
	if id, ok := l.localIDs[idx]; ok {
		return id
	}
	local := l.bodies.Locals.Get(idx)
	ty, _ := l.eng.LocalType(l.file, idx)
	id := l.newLocal(l.spellingOf(local.Name), ty, 0)
	l.localIDs[idx] = id
	return id
}

func (l *funcLowerer) spellingOf(name source.Name) string {
	if l.eng.Names == nil {
		return ""
	}
	s, _ := l.eng.Names.Lookup(name)
	return s
}

func (l *funcLowerer) exprType(idx hir.ExprIdx) types.TypeID {
	ty, _ := l.eng.ExprType(l.file, idx)
	return ty
}
