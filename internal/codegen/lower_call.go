package codegen

import (
	"fmt"

	"capy/internal/hir"
	"capy/internal/infer"
	"capy/internal/types"
)

// lowerCallExpr lowers e.A(e.Args...): a direct call when lowerCallee
// resolves the callee statically, an indirect call through a computed
// function value otherwise. Aggregate results go through the sret
// convention — the caller allocates the destination slot and the callee
// writes its result there directly, so HasDst stays false.
func (l *funcLowerer) lowerCallExpr(e *hir.Expr, resultTy types.TypeID) (Operand, error) {
	fi, ok := l.calleeFnInfo(*e.A)
	if !ok {
		return Operand{}, fmt.Errorf("codegen: call target has no function signature")
	}

	callee, err := l.lowerCallee(*e.A)
	if err != nil {
		return Operand{}, err
	}

	args := make([]Operand, 0, len(e.Args))
	for i, argIdx := range e.Args {
		want := types.NoTypeID
		switch {
		case i < len(fi.Params):
			want = fi.Params[i]
		case fi.Variadic && len(fi.Params) > 0:
			want = fi.Params[len(fi.Params)-1]
		}
		argTy := l.exprType(argIdx)
		val, err := l.lowerValue(argIdx)
		if err != nil {
			return Operand{}, err
		}
		if want != types.NoTypeID {
			val = l.widenOperand(val, argTy, want)
			argTy = want
		}
		if l.lay.IsAggregate(argTy) {
			// Callee-owned copy convention: pass the address of a
			// caller-materialized value; the callee's own parameter slot
			// is its copy.
			place := l.materialize(val, argTy)
			args = append(args, Operand{Kind: OperandAddrOf, Type: argTy, Place: place})
			continue
		}
		args = append(args, val)
	}

	instr := CallInstr{Callee: callee, Args: args}
	if l.lay.IsAggregate(resultTy) {
		sret := l.newTemp(resultTy, "sret")
		instr.HasSret = true
		instr.SretArg = Place{Kind: PlaceLocal, Local: sret}
		l.emit(&Instr{Kind: InstrCall, Call: instr})
		return l.placeOperand(Place{Kind: PlaceLocal, Local: sret}, resultTy), nil
	}

	dst := l.newTemp(resultTy, "call")
	instr.HasDst = true
	instr.Dst = Place{Kind: PlaceLocal, Local: dst}
	l.emit(&Instr{Kind: InstrCall, Call: instr})
	return l.placeOperand(Place{Kind: PlaceLocal, Local: dst}, resultTy), nil
}

// calleeFnInfo resolves a callee expression's function signature without
// emitting any code, so argument widening can be computed before the
// callee operand itself is lowered.
func (l *funcLowerer) calleeFnInfo(idx hir.ExprIdx) (types.FnInfo, bool) {
	ty := l.exprType(idx)
	return l.tys.FnInfo(ty)
}

// lowerCallee recognizes a global function, a lambda literal, or an
// immutable local bound to a lambda literal, and resolves it to
// CalleeDirect; anything else (a parameter holding
// a function value, a member access, an if-expression yielding a function)
// is called indirectly through its runtime value.
func (l *funcLowerer) lowerCallee(idx hir.ExprIdx) (Callee, error) {
	e := l.bodies.Exprs.Get(idx)
	if e.Kind == hir.EGlobal {
		fqn := types.Fqn{File: l.file, Name: e.Name}
		if sig, ok := l.eng.Signature(fqn); ok && sig.Kind == infer.SigFunction {
			f, err := l.lw.LowerGlobalFunction(fqn)
			if err != nil {
				return Callee{}, err
			}
			return Callee{Kind: CalleeDirect, Func: f.ID}, nil
		}
	}
	if e.Kind == hir.ELambda {
		fid := l.lw.declareLambda(l.file, e.LambdaValue)
		return Callee{Kind: CalleeDirect, Func: fid}, nil
	}
	if e.Kind == hir.ELocalRef {
		def := l.bodies.Locals.Get(e.Local)
		if !def.Mutable && def.Value.IsValid() {
			if v := l.bodies.Exprs.Get(def.Value); v.Kind == hir.ELambda {
				fid := l.lw.declareLambda(l.file, v.LambdaValue)
				return Callee{Kind: CalleeDirect, Func: fid}, nil
			}
		}
	}
	val, err := l.lowerValue(idx)
	if err != nil {
		return Callee{}, err
	}
	return Callee{Kind: CalleeIndirect, Value: val}, nil
}
