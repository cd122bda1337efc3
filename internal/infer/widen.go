package infer

import (
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/types"
)

// recordLocalUsage notes that the statement currently being inferred
// mentions local idx, so a later widening of idx's type knows which
// statements to re-infer. A local mentioned only in a block's tail
// expression (not itself a statement) has nothing to add to the set.
func (eng *Engine) recordLocalUsage(fr *frame, idx hir.LocalDefIdx) {
	if !fr.curStmt.IsValid() {
		return
	}
	key := localKey{fr.file, idx}
	uses := eng.localUsages[key]
	if uses == nil {
		uses = make(map[hir.StmtIdx]bool)
		eng.localUsages[key] = uses
	}
	uses[fr.curStmt] = true
}

func (eng *Engine) isWeakNumeric(ty types.TypeID) bool {
	t, ok := eng.Types.Lookup(ty)
	if !ok {
		return false
	}
	return (t.Kind == types.KindUInt || t.Kind == types.KindIInt || t.Kind == types.KindFloat) && t.Width == types.WidthWeak
}

// replaceWeakTy rewrites idx's memoized type to newTy and recurses into the
// expression shapes whose own type is a direct function of their
// children's — binary/unary operands and if/block-tail branches — so a max
// type discovered at one level (e.g. BinaryResult's max_ty, or a local
// annotation) reaches every weak sub-expression underneath it. A local
// reference additionally routes through replaceLocalType so every other
// use of that binding widens too. Repeating the same replacement is a
// no-op: once old == newTy, nothing changes and recursion stops.
//
// Beyond weak numerics, two aggregate literal shapes are replaceable: an
// anonymous array adopts a same-size concrete array (or, via a slice
// target, keeps its array shape but loses anonymity — reported as false,
// "adjusted but not identical"), and an empty anonymous struct literal
// adopts any struct whose members all default.
func (eng *Engine) replaceWeakTy(fr *frame, idx hir.ExprIdx, newTy types.TypeID) bool {
	if !idx.IsValid() {
		return false
	}
	key := exprKey{fr.file, idx}
	old, ok := eng.exprTys[key]
	if !ok || old == newTy {
		return false
	}
	if !eng.isWeakNumeric(old) {
		return eng.replaceWeakAggregate(fr, idx, old, newTy)
	}
	eng.exprTys[key] = newTy

	e := fr.bodies.Exprs.Get(idx)
	switch e.Kind {
	case hir.EIntLit:
		if t, lok := eng.Types.Lookup(newTy); lok && (t.Kind == types.KindIInt || t.Kind == types.KindUInt) && t.Width != types.WidthWeak {
			if !types.CanRepresent(e.IntVal, t.Width, t.Kind == types.KindIInt) {
				eng.Diags.Add(diag.New(diag.IntTooBigForType, e.Span, "integer literal does not fit in its inferred type"))
			}
		}
	case hir.ELocalRef:
		eng.replaceLocalType(fr, e.Local, newTy)
	case hir.EBinary:
		eng.replaceWeakTy(fr, *e.A, newTy)
		eng.replaceWeakTy(fr, *e.B, newTy)
	case hir.EUnary:
		eng.replaceWeakTy(fr, *e.A, newTy)
	case hir.EIf:
		eng.replaceWeakTy(fr, *e.Then, newTy)
		if e.Else != nil {
			eng.replaceWeakTy(fr, *e.Else, newTy)
		}
	case hir.EBlock:
		if e.Block.Tail != nil {
			eng.replaceWeakTy(fr, *e.Block.Tail, newTy)
		}
		eng.replaceBreakValues(fr, e.Block.Scope, newTy)
	case hir.EWhile:
		// Only an infinite loop carries a value, fed by its breaks.
		if e.A == nil {
			eng.replaceBreakValues(fr, e.Block.Scope, newTy)
		}
	}
	return true
}

// replaceBreakValues widens every recorded `break value` feeding scope, so
// a block/loop whose own type was forced stronger pulls its breaks along.
func (eng *Engine) replaceBreakValues(fr *frame, scope hir.ScopeID, newTy types.TypeID) {
	for _, v := range eng.breakVals[scopeKey{fr.file, scope}] {
		eng.replaceWeakTy(fr, v, newTy)
	}
}

// replaceWeakAggregate handles the non-numeric side of the replacement
// lattice: anonymous array literals and empty anonymous struct literals.
func (eng *Engine) replaceWeakAggregate(fr *frame, idx hir.ExprIdx, old, newTy types.TypeID) bool {
	to, ok := eng.Types.Lookup(old)
	if !ok {
		return false
	}
	tn, ok := eng.Types.Lookup(newTy)
	if !ok {
		return false
	}
	key := exprKey{fr.file, idx}
	e := fr.bodies.Exprs.Get(idx)

	if to.Kind == types.KindArray && to.Anonymous {
		switch tn.Kind {
		case types.KindArray:
			if tn.ArraySize != to.ArraySize {
				return false
			}
			eng.exprTys[key] = newTy
			if e.Kind == hir.EArrayLit {
				for _, arg := range e.Args {
					eng.replaceWeakTy(fr, arg, tn.Elem)
				}
			}
			return true
		case types.KindSlice:
			// The literal stays an array (it has a size); it only sheds its
			// anonymity and adopts the slice's element type. The top-level
			// type did not become newTy, so this reports false.
			eng.exprTys[key] = eng.Types.Array(false, to.ArraySize, tn.Elem)
			if e.Kind == hir.EArrayLit {
				for _, arg := range e.Args {
					eng.replaceWeakTy(fr, arg, tn.Elem)
				}
			}
			return false
		}
		return false
	}

	if to.Kind == types.KindStruct && to.Anonymous && tn.Kind == types.KindStruct {
		vi, _ := eng.Types.StructInfo(old)
		if len(vi.Members) != 0 {
			return false
		}
		eng.exprTys[key] = newTy
		return true
	}
	return false
}

// replaceLocalType installs newTy for local idx once its current memoized
// type is weak and differs from newTy, then re-infers every statement that
// referenced it (local_usages), so an annotation, argument position, or
// sibling operand discovered downstream widens every earlier use of the
// same binding. Repeating a replacement that already landed is a no-op,
// which also bounds the mutual recursion with replaceWeakTy: the
// weak/strong lattice has no upward cycles, so every path eventually hits
// an already-applied replacement and stops.
func (eng *Engine) replaceLocalType(fr *frame, idx hir.LocalDefIdx, newTy types.TypeID) bool {
	key := localKey{fr.file, idx}
	old, ok := eng.localTys[key]
	if !ok || old == newTy || !eng.isWeakNumeric(old) {
		return false
	}
	eng.localTys[key] = newTy
	local := fr.bodies.Locals.Get(idx)
	eng.replaceWeakTy(fr, local.Value, newTy)
	for sidx := range eng.localUsages[key] {
		eng.reinferStmt(fr, sidx)
	}
	return true
}

// reinferStmt discards sidx's memoized expression (and, for a let without
// an annotation, local) types and re-runs ordinary statement inference, so
// a stale weak type left over from before a referenced local widened gets
// recomputed from scratch. A resulting change to the let's own local type
// is propagated to that local's usages in turn.
func (eng *Engine) reinferStmt(fr *frame, sidx hir.StmtIdx) {
	s := fr.bodies.Stmts.Get(sidx)

	var beforeLocal types.TypeID
	var hadBeforeLocal bool
	if s.Kind == hir.SLet {
		beforeLocal, hadBeforeLocal = eng.localTys[localKey{fr.file, s.Local}]
	}

	eng.invalidateStmt(fr, sidx)
	eng.inferStmt(fr.withStmt(sidx), sidx)

	if s.Kind == hir.SLet && hadBeforeLocal {
		key := localKey{fr.file, s.Local}
		if after, ok := eng.localTys[key]; ok && after != beforeLocal {
			for usage := range eng.localUsages[key] {
				eng.reinferStmt(fr, usage)
			}
		}
	}
}

// invalidateStmt clears the memoized types of a statement's expressions
// (and, for a let, the local's own memoized type) so the next inferStmt
// call recomputes them instead of serving a stale cache entry.
func (eng *Engine) invalidateStmt(fr *frame, sidx hir.StmtIdx) {
	s := fr.bodies.Stmts.Get(sidx)
	switch s.Kind {
	case hir.SLet:
		local := fr.bodies.Locals.Get(s.Local)
		eng.invalidateExpr(fr, local.Value)
		delete(eng.localTys, localKey{fr.file, s.Local})
	case hir.SExpr:
		eng.invalidateExpr(fr, s.Expr)
	case hir.SAssign:
		eng.invalidateExpr(fr, s.Target)
		eng.invalidateExpr(fr, s.Expr)
	}
}

// invalidateExpr recursively clears idx and every descendant expression's
// memoized type.
func (eng *Engine) invalidateExpr(fr *frame, idx hir.ExprIdx) {
	if !idx.IsValid() {
		return
	}
	key := exprKey{fr.file, idx}
	if _, ok := eng.exprTys[key]; !ok {
		return
	}
	delete(eng.exprTys, key)

	e := fr.bodies.Exprs.Get(idx)
	if e.A != nil {
		eng.invalidateExpr(fr, *e.A)
	}
	if e.B != nil {
		eng.invalidateExpr(fr, *e.B)
	}
	if e.Then != nil {
		eng.invalidateExpr(fr, *e.Then)
	}
	if e.Else != nil {
		eng.invalidateExpr(fr, *e.Else)
	}
	if e.Scrut != nil {
		eng.invalidateExpr(fr, *e.Scrut)
	}
	if e.Default != nil {
		eng.invalidateExpr(fr, *e.Default)
	}
	if e.Result != nil {
		eng.invalidateExpr(fr, *e.Result)
	}
	for _, a := range e.Args {
		eng.invalidateExpr(fr, a)
	}
	for _, pt := range e.ParamTypes {
		eng.invalidateExpr(fr, pt)
	}
	for _, v := range e.Variants {
		if v.Payload != nil {
			eng.invalidateExpr(fr, *v.Payload)
		}
		if v.Discriminant != nil {
			eng.invalidateExpr(fr, *v.Discriminant)
		}
	}
	for _, arm := range e.Arms {
		eng.invalidateExpr(fr, arm.Body)
	}
	for _, sidx := range e.Block.Stmts {
		eng.invalidateStmt(fr, sidx)
	}
	if e.Block.Tail != nil {
		eng.invalidateExpr(fr, *e.Block.Tail)
	}
}
