package infer

import (
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/index"
	"capy/internal/types"
)

// checkMutableTarget walks an assignment target (or a `ref mut` operand)
// down to the binding it ultimately mutates and reports MutabilityViolation
// if that binding isn't declared mutable. EIndex/EMember only require their
// base to be mutable, not the index/field itself, since mutability is a
// property of storage, not of a particular access path through it.
func (eng *Engine) checkMutableTarget(fr *frame, idx hir.ExprIdx) {
	e := fr.bodies.Exprs.Get(idx)
	switch e.Kind {
	case hir.ELocalRef:
		local := fr.bodies.Locals.Get(e.Local)
		if !local.Mutable {
			eng.Diags.Add(diag.New(diag.MutabilityViolation, e.Span, "cannot assign to an immutable local").
				WithReason(diag.ImmutableBinding))
		}
	case hir.EParamRef:
		eng.Diags.Add(diag.New(diag.MutabilityViolation, e.Span, "cannot assign to a parameter").
			WithReason(diag.ImmutableParam))
	case hir.EGlobal:
		fqn := types.Fqn{File: fr.file, Name: e.Name}
		def, status := eng.World.Status(fqn)
		if status == index.Defined && def.BindKind != hir.BindVarTyped && def.BindKind != hir.BindVarInferred {
			eng.Diags.Add(diag.New(diag.MutabilityViolation, e.Span, "cannot assign to a constant global").
				WithReason(diag.ImmutableGlobal))
		}
	case hir.EDeref:
		eng.checkMutableDerefTarget(fr, e)
	case hir.EIndex, hir.EMember:
		eng.checkMutableTarget(fr, *e.A)
	default:
		eng.Diags.Add(diag.New(diag.MutabilityViolation, e.Span, "expression is not a valid assignment target").
			WithReason(diag.CannotMutate))
	}
}

// checkMutableDerefTarget handles `ptr^ = value`: the pointer's own type
// must carry the mutable flag (`^mut T`), independent of whether the
// variable holding the pointer is itself mutable.
func (eng *Engine) checkMutableDerefTarget(fr *frame, e *hir.Expr) {
	ptrTy := eng.inferExpr(fr, *e.A)
	t, ok := eng.Types.Lookup(ptrTy)
	if !ok || (t.Kind != types.KindPointer && t.Kind != types.KindRawPtr) {
		eng.Diags.Add(diag.New(diag.MutabilityViolation, e.Span, "cannot assign through a non-pointer dereference").
			WithReason(diag.CannotMutate))
		return
	}
	if !t.Mutable {
		eng.Diags.Add(diag.New(diag.MutabilityViolation, e.Span, "cannot assign through an immutable reference").
			WithReason(diag.ImmutableRef))
	}
}

// checkRefMutOperand reports MutableRefToImmutableData when `ref mut expr`
// is taken against storage that isn't itself mutable: a mutable reference
// must not be mintable out of immutable data.
func (eng *Engine) checkRefMutOperand(fr *frame, idx hir.ExprIdx) {
	e := fr.bodies.Exprs.Get(idx)
	switch e.Kind {
	case hir.ELocalRef:
		local := fr.bodies.Locals.Get(e.Local)
		if !local.Mutable {
			eng.Diags.Add(diag.New(diag.MutableRefToImmutableData, e.Span, "cannot take a mutable reference to an immutable local"))
		}
	case hir.EParamRef:
		eng.Diags.Add(diag.New(diag.MutableRefToImmutableData, e.Span, "cannot take a mutable reference to a parameter"))
	case hir.EGlobal:
		fqn := types.Fqn{File: fr.file, Name: e.Name}
		def, status := eng.World.Status(fqn)
		if status == index.Defined && def.BindKind != hir.BindVarTyped && def.BindKind != hir.BindVarInferred {
			eng.Diags.Add(diag.New(diag.MutableRefToImmutableData, e.Span, "cannot take a mutable reference to a constant global"))
		}
	case hir.EDeref:
		ptrTy := eng.inferExpr(fr, *e.A)
		if t, ok := eng.Types.Lookup(ptrTy); ok && !t.Mutable {
			eng.Diags.Add(diag.New(diag.MutableRefToImmutableData, e.Span, "cannot take a mutable reference through an immutable reference"))
		}
	case hir.EIndex, hir.EMember:
		eng.checkRefMutOperand(fr, *e.A)
	}
}
