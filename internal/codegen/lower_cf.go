package codegen

import (
	"fmt"

	"capy/internal/hir"
	"capy/internal/source"
	"capy/internal/types"
)

// lowerIfExpr lowers an if/else, threading both arms into a shared result
// local and a join block: the result-local-plus-join-block shape used for
// every value-producing branch, since this IR has no phi nodes.
func (l *funcLowerer) lowerIfExpr(e *hir.Expr, ty types.TypeID) (Operand, error) {
	cond, err := l.lowerValue(*e.A)
	if err != nil {
		return Operand{}, err
	}

	b := l.tys.Builtins()
	hasResult := ty != b.Void && ty != b.NoEval
	var result Place
	if hasResult {
		result = Place{Kind: PlaceLocal, Local: l.newTemp(ty, "if")}
	}

	thenBB, elseBB, joinBB := l.newBlock(), l.newBlock(), l.newBlock()
	l.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: thenBB, Else: elseBB}})

	l.startBlock(thenBB)
	if err := l.lowerBranchArm(*e.Then, ty, hasResult, result); err != nil {
		return Operand{}, err
	}
	l.gotoIfOpen(joinBB)

	l.startBlock(elseBB)
	if e.Else != nil {
		if err := l.lowerBranchArm(*e.Else, ty, hasResult, result); err != nil {
			return Operand{}, err
		}
	}
	l.gotoIfOpen(joinBB)

	l.startBlock(joinBB)
	if !hasResult {
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstVoid, Type: ty}}, nil
	}
	return l.placeOperand(result, ty), nil
}

func (l *funcLowerer) lowerBranchArm(idx hir.ExprIdx, ty types.TypeID, hasResult bool, result Place) error {
	val, err := l.lowerValue(idx)
	if err != nil {
		return err
	}
	if hasResult {
		l.storeInto(result, ty, val)
	}
	return nil
}

// lowerWhileExpr lowers a while loop (a nil condition is an infinite loop,
// per hir.Expr's "A==nil" convention). A conditional while never yields a
// value; an infinite loop broken with `break value` yields the unified
// break type through a shared result local read at the exit block.
func (l *funcLowerer) lowerWhileExpr(e *hir.Expr, ty types.TypeID) (Operand, error) {
	headBB := l.newBlock()
	bodyBB := l.newBlock()
	exitBB := l.newBlock()

	b := l.tys.Builtins()
	hasResult := e.A == nil && ty != b.Void && ty != b.NoEval && ty != b.Unknown
	var result Place
	if hasResult {
		result = Place{Kind: PlaceLocal, Local: l.newTemp(ty, "loop")}
	}

	l.gotoIfOpen(headBB)
	l.startBlock(headBB)
	if e.A != nil {
		cond, err := l.lowerValue(*e.A)
		if err != nil {
			return Operand{}, err
		}
		l.setTerm(Terminator{Kind: TermIf, If: IfTerm{Cond: cond, Then: bodyBB, Else: exitBB}})
	} else {
		l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: bodyBB}})
	}

	l.startBlock(bodyBB)
	l.breakables = append(l.breakables, breakCtx{
		scope: e.Block.Scope, isLoop: true,
		breakTarget: exitBB, contTarget: headBB,
		hasResult: hasResult, result: result, resultTy: ty,
	})
	if err := l.lowerStmtBlock(e.Block); err != nil {
		return Operand{}, err
	}
	if e.Block.Tail != nil {
		if _, err := l.lowerValue(*e.Block.Tail); err != nil {
			return Operand{}, err
		}
	}
	l.breakables = l.breakables[:len(l.breakables)-1]
	l.gotoIfOpen(headBB)

	l.startBlock(exitBB)
	if hasResult {
		return l.placeOperand(result, ty), nil
	}
	void := l.tys.Builtins().Void
	return Operand{Kind: OperandConst, Type: void, Const: Const{Kind: ConstVoid, Type: void}}, nil
}

// lowerBlockExpr lowers a `{ stmts...; tail }` expression in value
// position. A block that no break targets (the common case) lowers straight
// through; a labeled block that `break value` exits gets the same
// result-local-plus-join-block shape as an if/switch.
func (l *funcLowerer) lowerBlockExpr(e *hir.Expr, ty types.TypeID) (Operand, error) {
	if len(l.eng.BreakValues(l.file, e.Block.Scope)) == 0 {
		if err := l.lowerStmtBlock(e.Block); err != nil {
			return Operand{}, err
		}
		if e.Block.Tail == nil {
			return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstVoid, Type: ty}}, nil
		}
		return l.lowerValue(*e.Block.Tail)
	}

	b := l.tys.Builtins()
	hasResult := ty != b.Void && ty != b.NoEval && ty != b.Unknown
	var result Place
	if hasResult {
		result = Place{Kind: PlaceLocal, Local: l.newTemp(ty, "blk")}
	}
	joinBB := l.newBlock()
	l.breakables = append(l.breakables, breakCtx{
		scope: e.Block.Scope, breakTarget: joinBB,
		hasResult: hasResult, result: result, resultTy: ty,
	})
	if err := l.lowerStmtBlock(e.Block); err != nil {
		return Operand{}, err
	}
	if e.Block.Tail != nil {
		val, err := l.lowerValue(*e.Block.Tail)
		if err != nil {
			return Operand{}, err
		}
		if hasResult {
			l.storeInto(result, ty, val)
		}
	}
	l.breakables = l.breakables[:len(l.breakables)-1]
	l.gotoIfOpen(joinBB)

	l.startBlock(joinBB)
	if !hasResult {
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstVoid, Type: ty}}, nil
	}
	return l.placeOperand(result, ty), nil
}

func (l *funcLowerer) lowerStmtBlock(blk hir.BlockData) error {
	for _, sidx := range blk.Stmts {
		if l.curBlock().Terminated() {
			break
		}
		if err := l.lowerStmt(sidx); err != nil {
			return err
		}
	}
	return nil
}

// findBreakable resolves a break/continue's lowering context. Lowering
// resolved the target scope already; a zero scope (possible only in
// hand-built HIR) falls back to the innermost loop.
func (l *funcLowerer) findBreakable(scope hir.ScopeID, loopOnly bool) *breakCtx {
	for i := len(l.breakables) - 1; i >= 0; i-- {
		ctx := &l.breakables[i]
		if loopOnly && !ctx.isLoop {
			continue
		}
		if scope == hir.NoScopeID || ctx.scope == scope {
			return ctx
		}
	}
	return nil
}

func (l *funcLowerer) lowerBreak(e *hir.Expr) (Operand, error) {
	// An unresolved scope means the unlabeled form, which targets the
	// innermost loop — labeled blocks need the label to be broken.
	ctx := l.findBreakable(e.Scope, e.Scope == hir.NoScopeID)
	if ctx == nil {
		return Operand{}, fmt.Errorf("codegen: break outside a loop or labeled block")
	}
	if e.A != nil {
		val, err := l.lowerValue(*e.A)
		if err != nil {
			return Operand{}, err
		}
		if ctx.hasResult {
			l.storeInto(ctx.result, ctx.resultTy, val)
		}
	}
	l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: ctx.breakTarget}})
	l.startDeadBlock()
	noeval := l.tys.Builtins().NoEval
	return Operand{Kind: OperandConst, Type: noeval, Const: Const{Kind: ConstVoid, Type: noeval}}, nil
}

func (l *funcLowerer) lowerContinue(e *hir.Expr) (Operand, error) {
	ctx := l.findBreakable(e.Scope, true)
	if ctx == nil {
		return Operand{}, fmt.Errorf("codegen: continue outside a loop")
	}
	l.setTerm(Terminator{Kind: TermGoto, Goto: GotoTerm{Target: ctx.contTarget}})
	l.startDeadBlock()
	noeval := l.tys.Builtins().NoEval
	return Operand{Kind: OperandConst, Type: noeval, Const: Const{Kind: ConstVoid, Type: noeval}}, nil
}

// startDeadBlock opens a fresh, unreachable block after a diverging
// construct (break/continue/trap) so later lowering calls always have an
// open current block to emit into, even though nothing will ever reach it.
func (l *funcLowerer) startDeadBlock() {
	l.startBlock(l.newBlock())
}

// lowerSwitchExpr dispatches on an enum's runtime discriminant, joining
// every arm into a shared result local exactly like lowerIfExpr.
func (l *funcLowerer) lowerSwitchExpr(e *hir.Expr, ty types.TypeID) (Operand, error) {
	scrutTy := l.exprType(*e.Scrut)
	info, isEnum := l.tys.EnumInfo(scrutTy)
	if !isEnum {
		return Operand{}, fmt.Errorf("codegen: switch scrutinee is not an enum")
	}
	scrut, err := l.lowerValue(*e.Scrut)
	if err != nil {
		return Operand{}, err
	}

	b := l.tys.Builtins()
	hasResult := ty != b.Void && ty != b.NoEval
	var result Place
	if hasResult {
		result = Place{Kind: PlaceLocal, Local: l.newTemp(ty, "switch")}
	}

	joinBB := l.newBlock()
	cases := make([]SwitchTagCase, 0, len(e.Arms))
	armBlocks := make([]BlockID, len(e.Arms))
	for i, arm := range e.Arms {
		variant, ok := findVariant(l.tys, info, arm.VariantName)
		if !ok {
			return Operand{}, fmt.Errorf("codegen: switch arm names a non-existent variant")
		}
		bb := l.newBlock()
		armBlocks[i] = bb
		cases = append(cases, SwitchTagCase{Variant: variant, Target: bb})
	}
	defaultBB := joinBB
	hasDefault := e.Default != nil
	if hasDefault {
		defaultBB = l.newBlock()
	}
	l.setTerm(Terminator{Kind: TermSwitchTag, SwitchTag: SwitchTagTerm{Value: scrut, Cases: cases, Default: defaultBB}})

	for i, arm := range e.Arms {
		l.startBlock(armBlocks[i])
		l.bindSwitchCapture(arm, scrut, cases[i].Variant)
		if err := l.lowerBranchArm(arm.Body, ty, hasResult, result); err != nil {
			return Operand{}, err
		}
		l.gotoIfOpen(joinBB)
	}
	if hasDefault {
		l.startBlock(defaultBB)
		if err := l.lowerBranchArm(*e.Default, ty, hasResult, result); err != nil {
			return Operand{}, err
		}
		l.gotoIfOpen(joinBB)
	}

	l.startBlock(joinBB)
	if !hasResult {
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstVoid, Type: ty}}, nil
	}
	return l.placeOperand(result, ty), nil
}

// bindSwitchCapture materializes an arm's `switch v in e` binding at the
// top of the arm's block: the variant's payload when it carries one, else
// the scrutinee value itself.
func (l *funcLowerer) bindSwitchCapture(arm hir.SwitchArmHIR, scrut Operand, variant types.TypeID) {
	if !arm.Capture.IsValid() {
		return
	}
	capTy, ok := l.eng.SwitchLocalType(l.file, arm.Capture)
	if !ok {
		return
	}
	id := l.localFor(arm.Capture)
	dst := Place{Kind: PlaceLocal, Local: id}
	if vt, found := l.tys.Lookup(variant); found && vt.Elem != types.NoTypeID {
		l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: dst,
			Src: RValue{Kind: RValueTagPayload, TagPayload: TagPayload{Value: scrut, Variant: variant}},
		}})
		return
	}
	l.storeInto(dst, capTy, scrut)
}

func findVariant(tys *types.Interner, info types.EnumInfo, name source.Name) (types.TypeID, bool) {
	for _, vID := range info.Variants {
		vi, _ := tys.VariantInfo(vID)
		if vi.Name == name {
			return vID, true
		}
	}
	return types.NoTypeID, false
}
