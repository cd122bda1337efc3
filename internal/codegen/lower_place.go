package codegen

import (
	"capy/internal/hir"
	"capy/internal/source"
	"capy/internal/types"
)

// placeOf resolves idx to an addressable Place, falling back to evaluating
// it as a value and materializing the result when the expression has no
// storage of its own (e.g. a call result or a binary expression) — a dual
// lowerExpr/lowerPlace split, collapsed into one fallback path since this
// IR has no linear-ownership bookkeeping to keep the two apart.
func (l *funcLowerer) placeOf(idx hir.ExprIdx) (Place, error) {
	if p, ok, err := l.tryPlace(idx); ok || err != nil {
		return p, err
	}
	ty := l.exprType(idx)
	op, err := l.lowerValue(idx)
	if err != nil {
		return Place{}, err
	}
	return l.materialize(op, ty), nil
}

// tryPlace recognizes the expression kinds that name storage directly,
// without needing to fall back to a value-then-materialize round trip.
func (l *funcLowerer) tryPlace(idx hir.ExprIdx) (Place, bool, error) {
	e := l.bodies.Exprs.Get(idx)
	switch e.Kind {
	case hir.ELocalRef:
		return Place{Kind: PlaceLocal, Local: l.localFor(e.Local)}, true, nil

	case hir.EParamRef:
		if e.Param < 0 || e.Param >= len(l.paramIDs) {
			return Place{}, false, nil
		}
		return Place{Kind: PlaceLocal, Local: l.paramIDs[e.Param]}, true, nil

	case hir.EDeref:
		base, err := l.placeOf(*e.A)
		if err != nil {
			return Place{}, false, err
		}
		return base.Deref(l.exprType(idx)), true, nil

	case hir.EMember:
		return l.memberPlace(e)

	case hir.EIndex:
		baseTy := l.exprType(*e.A)
		base, err := l.placeOf(*e.A)
		if err != nil {
			return Place{}, false, err
		}
		base, baseTy = l.peelPointers(base, baseTy)
		t, ok := l.tys.Lookup(baseTy)
		if !ok || (t.Kind != types.KindArray && t.Kind != types.KindSlice) {
			return Place{}, false, nil
		}
		idxOp, err := l.lowerValue(*e.B)
		if err != nil {
			return Place{}, false, err
		}
		idxTy := l.exprType(*e.B)
		idxLocal := l.materializeToLocal(idxOp, idxTy)
		elemSize := l.lay.SizeOf(t.Elem)
		return base.Index(idxLocal, t.Elem, elemSize), true, nil

	default:
		return Place{}, false, nil
	}
}

// memberPlace resolves previous.name to a projected Place: a struct field,
// or one of the two-word builtin members of a slice/rawslice/any value
// ({ptr, len} and {ty, ptr} respectively). The base dereferences through
// any number of pointers first, mirroring inference's member lookup. An
// array's `.len` never reaches here — it folds to a constant in lowerValue.
func (l *funcLowerer) memberPlace(e *hir.Expr) (Place, bool, error) {
	baseTy := l.exprType(*e.A)
	base, err := l.placeOf(*e.A)
	if err != nil {
		return Place{}, false, err
	}
	base, baseTy = l.peelPointers(base, baseTy)
	t, ok := l.tys.Lookup(baseTy)
	if !ok {
		return Place{}, false, nil
	}

	if t.Kind == types.KindStruct {
		info, _ := l.tys.StructInfo(baseTy)
		fieldIdx, fieldTy, found := findField(info, e.Name)
		if !found {
			return Place{}, false, nil
		}
		return base.Field(fieldIdx, fieldTy), true, nil
	}

	spelling := l.spellingOf(e.Name)
	usize := l.tys.Uint(types.WidthPtr)
	switch t.Kind {
	case types.KindSlice:
		switch spelling {
		case "ptr":
			return base.Field(0, l.tys.Pointer(false, t.Elem)), true, nil
		case "len":
			return base.Field(1, usize), true, nil
		}
	case types.KindRawSlice:
		switch spelling {
		case "ptr":
			return base.Field(0, l.tys.RawPtr(false)), true, nil
		case "len":
			return base.Field(1, usize), true, nil
		}
	case types.KindAny:
		switch spelling {
		case "ty":
			return base.Field(0, l.tys.Builtins().Type), true, nil
		case "ptr":
			return base.Field(1, l.tys.RawPtr(false)), true, nil
		}
	}
	return Place{}, false, nil
}

// peelPointers follows a pointer chain down to its pointee, stacking one
// Deref projection per hop.
func (l *funcLowerer) peelPointers(base Place, ty types.TypeID) (Place, types.TypeID) {
	for {
		t, ok := l.tys.Lookup(ty)
		if !ok || t.Kind != types.KindPointer {
			return base, ty
		}
		ty = t.Elem
		base = base.Deref(ty)
	}
}

func findField(info types.StructInfo, name source.Name) (int, types.TypeID, bool) {
	for i, m := range info.Members {
		if m.Name == name {
			return i, m.Type, true
		}
	}
	return 0, types.NoTypeID, false
}

// materialize returns a Place holding op's value, reusing op's own Place
// when it already is one (the common case: an operand produced by
// placeOperand) instead of spilling to a fresh temp every time.
func (l *funcLowerer) materialize(op Operand, ty types.TypeID) Place {
	if (op.Kind == OperandCopy || op.Kind == OperandMove) && op.Place.IsValid() {
		return op.Place
	}
	id := l.newTemp(ty, "tmp")
	dst := Place{Kind: PlaceLocal, Local: id}
	l.storeInto(dst, ty, op)
	return dst
}

// materializeToLocal is like materialize but always names a bare local
// (never a projected Place), as Place.Index's IndexSrc requires.
func (l *funcLowerer) materializeToLocal(op Operand, ty types.TypeID) LocalID {
	if (op.Kind == OperandCopy || op.Kind == OperandMove) &&
		op.Place.Kind == PlaceLocal && len(op.Place.Proj) == 0 {
		return op.Place.Local
	}
	id := l.newTemp(ty, "idx")
	l.storeInto(Place{Kind: PlaceLocal, Local: id}, ty, op)
	return id
}

// placeOperand builds a read (OperandCopy) of whatever currently lives at p.
func (l *funcLowerer) placeOperand(p Place, ty types.TypeID) Operand {
	return Operand{Kind: OperandCopy, Type: ty, Place: p}
}

// storeInto writes src into dst, using Memcpy for aggregate types and a
// plain Assign for everything else.
func (l *funcLowerer) storeInto(dst Place, ty types.TypeID, src Operand) {
	if l.lay.IsAggregate(ty) {
		l.emit(&Instr{Kind: InstrMemcpy, Memcpy: MemcpyInstr{
			Dst: dst, Src: l.materialize(src, ty), Size: l.lay.SizeOf(ty),
		}})
		return
	}
	l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{Dst: dst, Src: RValue{Kind: RValueUse, Use: src}}})
}
