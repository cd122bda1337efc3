package infer

import (
	"capy/internal/cst"
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/index"
	"capy/internal/source"
	"capy/internal/types"
)

func mapBinOp(op cst.BinOp) (types.BinOp, bool) {
	switch op {
	case cst.OpAdd:
		return types.Add, true
	case cst.OpSub:
		return types.Sub, true
	case cst.OpMul:
		return types.Mul, true
	case cst.OpDiv:
		return types.Div, true
	case cst.OpMod:
		return types.Mod, true
	case cst.OpLt:
		return types.Lt, true
	case cst.OpLe:
		return types.Le, true
	case cst.OpGt:
		return types.Gt, true
	case cst.OpGe:
		return types.Ge, true
	case cst.OpEq:
		return types.Eq, true
	case cst.OpNe:
		return types.Ne, true
	case cst.OpAnd:
		return types.LogicalAnd, true
	case cst.OpOr:
		return types.LogicalOr, true
	default:
		return 0, false
	}
}

// inferExpr returns the type of the expression at idx within fr, computing
// and memoizing it if this is the first time inference has reached it.
func (eng *Engine) inferExpr(fr *frame, idx hir.ExprIdx) types.TypeID {
	key := exprKey{fr.file, idx}
	if ty, ok := eng.exprTys[key]; ok {
		return ty
	}
	ty := eng.inferExprUncached(fr, idx)
	eng.exprTys[key] = ty
	return ty
}

func (eng *Engine) inferExprUncached(fr *frame, idx hir.ExprIdx) types.TypeID {
	e := fr.bodies.Exprs.Get(idx)
	b := eng.Types.Builtins()

	switch e.Kind {
	case hir.EMissing:
		return b.Unknown
	case hir.EIntLit:
		if e.IntVal > maxU32 {
			// Past u32's range the literal can no longer stay weak: the
			// default 32-bit landing spot can't represent it, so it widens
			// straight to u64.
			return eng.Types.Uint(types.Width64)
		}
		return b.IntWeak
	case hir.EFloatLit:
		return b.FloatWeak
	case hir.EBoolLit:
		return b.Bool
	case hir.EStringLit:
		return b.String
	case hir.ECharLit:
		return b.Char

	case hir.ELocalRef:
		eng.recordLocalUsage(fr, e.Local)
		return eng.inferLocal(fr, e.Local)
	case hir.EParamRef:
		if e.Param < 0 || e.Param >= len(fr.paramTypes) {
			return b.Unknown
		}
		return fr.paramTypes[e.Param]
	case hir.EGlobal:
		return eng.inferGlobalRef(fr, e)

	case hir.EBinary:
		return eng.inferBinary(fr, e)
	case hir.EUnary:
		return eng.inferUnary(fr, e)
	case hir.ERef:
		sub := eng.inferExpr(fr, *e.A)
		if sub == b.Type {
			// ^T of a type value is itself a type expression (^T the type),
			// not a pointer to a runtime type descriptor.
			return b.Type
		}
		if e.Mut {
			eng.checkRefMutOperand(fr, *e.A)
		}
		return eng.Types.Pointer(e.Mut, sub)
	case hir.EDeref:
		return eng.inferDeref(fr, e)
	case hir.ECast:
		return eng.inferCast(fr, e)
	case hir.EIndex:
		return eng.inferIndex(fr, e)
	case hir.EMember:
		return eng.inferMember(fr, e)
	case hir.ECall:
		return eng.inferCall(fr, e)
	case hir.EDefer:
		eng.inferExpr(fr, *e.A)
		return b.Void

	case hir.EIf:
		return eng.inferIf(fr, e)
	case hir.EWhile:
		return eng.inferWhile(fr, e)
	case hir.EBlock:
		ty := eng.inferBlock(fr, e.Block)
		return eng.reconcileBreaks(fr, e.Block.Scope, e.Span, ty, e.Block.Tail)

	case hir.EBreak:
		if e.A != nil {
			eng.inferExpr(fr, *e.A)
			eng.recordBreakValue(fr, e.Scope, *e.A)
		}
		return b.NoEval
	case hir.EContinue:
		return b.NoEval

	case hir.EComptime:
		return eng.inferComptime(fr, e)

	case hir.ELambda:
		return eng.inferLambdaExpr(fr, e)

	case hir.EStructLit:
		return eng.inferStructLit(fr, e)
	case hir.EArrayLit:
		return eng.inferArrayLit(fr, e)

	case hir.EUnwrap:
		return eng.inferUnwrap(fr, e)

	case hir.EImport:
		return eng.inferImport(fr, e)

	case hir.ESwitch:
		return eng.inferSwitch(fr, e)

	case hir.EPrimitiveType, hir.EPointerType, hir.EArrayType, hir.ESliceType,
		hir.ERawPtrType, hir.ERawSliceType, hir.EDistinctType, hir.EStructType,
		hir.EEnumType, hir.EFnType, hir.EAnyType, hir.EVoidType, hir.ETypeType:
		return b.Type

	default:
		return b.Unknown
	}
}

func (eng *Engine) inferLocal(fr *frame, idx hir.LocalDefIdx) types.TypeID {
	key := localKey{fr.file, idx}
	if ty, ok := eng.localTys[key]; ok {
		return ty
	}
	local := fr.bodies.Locals.Get(idx)
	var ty types.TypeID
	if local.TypeAnnotation != nil {
		annTy := eng.constTy(fr, *local.TypeAnnotation)
		if fr.bodies.Exprs.Get(local.Value).Kind == hir.EMissing {
			// `x : T;` with no initializer: T must know how to default.
			if !eng.Types.HasDefault(annTy) {
				eng.Diags.Add(diag.New(diag.DeclTypeHasNoDefault, local.Span, "declared type has no default value"))
			}
			eng.localTys[key] = annTy
			return annTy
		}
		valTy := eng.inferExpr(fr, local.Value)
		if !eng.assignable(valTy, annTy) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, local.Span, "value does not match declared local type"))
		} else if valTy != annTy {
			eng.replaceWeakTy(fr, local.Value, annTy)
		}
		ty = annTy
	} else {
		ty = eng.inferExpr(fr, local.Value)
	}
	if ty == eng.Types.Builtins().Type && local.Mutable {
		// A type bound through `:=` could be reassigned, and a type that
		// changes out from under its uses is meaningless; types bind with `::`.
		eng.Diags.Add(diag.New(diag.LocalTypeIsMutable, local.Span, "a type must be bound immutably"))
	}
	eng.localTys[key] = ty
	return ty
}

func (eng *Engine) inferGlobalRef(fr *frame, e *hir.Expr) types.TypeID {
	fqn := types.Fqn{File: fr.file, Name: e.Name}
	if _, status := eng.World.Status(fqn); status != index.Defined {
		eng.Diags.Add(diag.New(diag.UnknownFqn, e.Span, "unknown global name"))
		return eng.Types.Builtins().Unknown
	}
	return eng.InferGlobal(fqn)
}

func (eng *Engine) inferBinary(fr *frame, e *hir.Expr) types.TypeID {
	lt := eng.inferExpr(fr, *e.A)
	rt := eng.inferExpr(fr, *e.B)
	op, ok := mapBinOp(e.Op)
	if !ok {
		return eng.Types.Builtins().Unknown
	}
	if eng.isSentinelTy(lt) || eng.isSentinelTy(rt) {
		return eng.Types.Builtins().Unknown
	}
	maxTy, result, ok := eng.Types.BinaryResult(op, lt, rt)
	if !ok {
		eng.Diags.Add(diag.New(diag.BinOpMismatch, e.Span, "operand types do not support this operator"))
		return eng.Types.Builtins().Unknown
	}
	eng.replaceWeakTy(fr, *e.A, maxTy)
	eng.replaceWeakTy(fr, *e.B, maxTy)
	return result
}

func (eng *Engine) inferUnary(fr *frame, e *hir.Expr) types.TypeID {
	operand := eng.inferExpr(fr, *e.A)
	t, ok := eng.Types.Lookup(operand)
	b := eng.Types.Builtins()
	if ok && isSentinel(t.Kind) {
		return b.Unknown
	}
	switch e.UnOp {
	case cst.OpNeg, cst.OpPos:
		if ok && (t.Kind == types.KindIInt || t.Kind == types.KindUInt || t.Kind == types.KindFloat) {
			return operand
		}
	case cst.OpNot:
		if operand == b.Bool {
			return b.Bool
		}
	}
	eng.Diags.Add(diag.New(diag.UnOpMismatch, e.Span, "operand type does not support this operator"))
	return b.Unknown
}

func (eng *Engine) inferDeref(fr *frame, e *hir.Expr) types.TypeID {
	sub := eng.inferExpr(fr, *e.A)
	t, ok := eng.Types.Lookup(sub)
	b := eng.Types.Builtins()
	if ok && t.Kind == types.KindPointer {
		return t.Elem
	}
	if ok && isSentinel(t.Kind) {
		return b.Unknown
	}
	if ok && t.Kind == types.KindRawPtr {
		// A rawptr has no pointee type to produce; it must be cast to a
		// concrete ^T first.
		eng.Diags.Add(diag.New(diag.DerefNonPointer, e.Span, "cannot dereference a raw pointer without casting it first"))
		return b.Unknown
	}
	eng.Diags.Add(diag.New(diag.DerefNonPointer, e.Span, "cannot dereference a non-pointer"))
	return b.Unknown
}

// inferCast types `e as T`: the target type expression resolves via
// constTy, the source must satisfy CanCast, and a weak source is also
// weakened toward the target so `5 as i64` carries i64 all the way down to
// the literal.
func (eng *Engine) inferCast(fr *frame, e *hir.Expr) types.TypeID {
	srcTy := eng.inferExpr(fr, *e.A)
	target := eng.constTy(fr, *e.B)
	if !eng.Types.CanCast(srcTy, target) {
		eng.Diags.Add(diag.New(diag.Uncastable, e.Span, "value cannot be cast to this type"))
		return target
	}
	if srcTy != target {
		eng.replaceWeakTy(fr, *e.A, target)
	}
	return target
}

// inferIndex types src[i], implicitly dereferencing src through any number
// of pointers first. Constant indices of fixed-size arrays are
// bounds-checked right here, at inference time.
func (eng *Engine) inferIndex(fr *frame, e *hir.Expr) types.TypeID {
	srcTy := eng.inferExpr(fr, *e.A)
	idxTy := eng.inferExpr(fr, *e.B)
	b := eng.Types.Builtins()
	if t, ok := eng.Types.Lookup(idxTy); ok && t.Kind != types.KindIInt && t.Kind != types.KindUInt && !isSentinel(t.Kind) {
		eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "index must be an integer"))
	}
	for {
		t, ok := eng.Types.Lookup(srcTy)
		if !ok || t.Kind != types.KindPointer {
			break
		}
		srcTy = t.Elem
	}
	t, ok := eng.Types.Lookup(srcTy)
	if ok {
		switch t.Kind {
		case types.KindArray:
			if idx := fr.bodies.Exprs.Get(*e.B); idx.Kind == hir.EIntLit && idx.IntVal >= uint64(t.ArraySize) {
				eng.Diags.Add(diag.New(diag.IndexOutOfBounds, e.Span, "constant index is out of bounds"))
			}
			return t.Elem
		case types.KindSlice:
			return t.Elem
		case types.KindRawSlice:
			return b.Unknown
		}
		if isSentinel(t.Kind) {
			return b.Unknown
		}
	}
	eng.Diags.Add(diag.New(diag.IndexIntoNonArray, e.Span, "cannot index a non-array/slice value"))
	return b.Unknown
}

func isSentinel(k types.Kind) bool {
	return k == types.KindUnknown || k == types.KindNotYetResolved || k == types.KindNoEval
}

// isSentinelTy is isSentinel through a TypeID lookup.
func (eng *Engine) isSentinelTy(id types.TypeID) bool {
	t, ok := eng.Types.Lookup(id)
	return ok && isSentinel(t.Kind)
}

const maxU32 = 1<<32 - 1

// recordBreakValue notes a `break value` targeting scope, so the owning
// block/loop can reconcile every break's type with its own once its walk
// completes. Re-inference may visit the same break twice; the entry is
// deduplicated so reconciliation never double-counts it.
func (eng *Engine) recordBreakValue(fr *frame, scope hir.ScopeID, value hir.ExprIdx) {
	if scope == hir.NoScopeID {
		return
	}
	key := scopeKey{fr.file, scope}
	for _, v := range eng.breakVals[key] {
		if v == value {
			return
		}
	}
	eng.breakVals[key] = append(eng.breakVals[key], value)
}

// reconcileBreaks folds every `break value` targeting scope into the
// block's own type: the tail expression (if any) and all break values must
// unify pairwise, and every weak participant widens to the unified type.
func (eng *Engine) reconcileBreaks(fr *frame, scope hir.ScopeID, span source.Span, ty types.TypeID, tail *hir.ExprIdx) types.TypeID {
	if scope == hir.NoScopeID {
		return ty
	}
	bvs := eng.breakVals[scopeKey{fr.file, scope}]
	if len(bvs) == 0 {
		return ty
	}
	b := eng.Types.Builtins()
	result := types.NoTypeID
	if tail != nil && ty != b.NoEval {
		result = ty
	}
	for _, v := range bvs {
		vt, ok := eng.exprTys[exprKey{fr.file, v}]
		if !ok || vt == b.NoEval {
			continue
		}
		if result == types.NoTypeID {
			result = vt
			continue
		}
		m, unified := eng.Types.UnifyNumeric(result, vt)
		if !unified {
			eng.Diags.Add(diag.New(diag.TypeMismatch, span, "break values have mismatched types"))
			return b.Unknown
		}
		result = m
	}
	if result == types.NoTypeID {
		return ty
	}
	for _, v := range bvs {
		eng.replaceWeakTy(fr, v, result)
	}
	if tail != nil {
		eng.replaceWeakTy(fr, *tail, result)
	}
	return result
}

// inferWhile types a while/loop. The body must not produce a value; the
// loop itself yields one only when it is infinite (no condition) and broken
// out of with `break value`.
func (eng *Engine) inferWhile(fr *frame, e *hir.Expr) types.TypeID {
	b := eng.Types.Builtins()
	if e.A != nil {
		condTy := eng.inferExpr(fr, *e.A)
		if condTy != b.Bool && !eng.assignable(condTy, b.Bool) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "while condition must be bool"))
		}
	}
	bodyTy := eng.inferBlock(fr, e.Block)
	if bodyTy != b.Void && bodyTy != b.NoEval && bodyTy != b.Unknown {
		eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "loop body must not produce a value"))
	}
	if e.A == nil {
		return eng.reconcileBreaks(fr, e.Block.Scope, e.Span, b.Void, nil)
	}
	return b.Void
}

// inferComptime types a `comptime { ... }` block. The folded result must be
// representable as compile-time data: a pointer would dangle into the
// compiler's own memory, and a function value only exists at runtime.
func (eng *Engine) inferComptime(fr *frame, e *hir.Expr) types.TypeID {
	inner := fr.bodies.Comptimes.Get(e.Comptime)
	ty := eng.inferExpr(fr, inner.Body)
	if t, ok := eng.Types.Lookup(ty); ok {
		switch t.Kind {
		case types.KindPointer, types.KindRawPtr, types.KindRawSlice:
			eng.Diags.Add(diag.New(diag.ComptimeCannotReturnPointer, e.Span, "comptime block cannot return a pointer"))
		case types.KindFunction:
			eng.Diags.Add(diag.New(diag.ComptimeCannotReturnRuntimeType, e.Span, "comptime block cannot return a runtime-only value"))
		}
	}
	return ty
}

// inferMember resolves `previous.name`. previous can be a struct (field
// lookup), an array/slice/rawslice (the builtin `.len`/`.ptr`/`.ty`
// members), any expression at all (`.ty`, handled below for every kind,
// and `any`'s extra `.ptr`), a File(f) pseudo-type from import(...) (a
// top-level symbol lookup against the world index), or a chain of any
// number of pointer dereferences in front of any of those.
func (eng *Engine) inferMember(fr *frame, e *hir.Expr) types.TypeID {
	srcTy := eng.inferExpr(fr, *e.A)
	b := eng.Types.Builtins()

	if t, ok := eng.Types.Lookup(srcTy); ok && t.Kind == types.KindFile {
		fqn := types.Fqn{File: t.File, Name: e.Name}
		switch _, status := eng.World.Status(fqn); status {
		case index.Defined:
			return eng.InferGlobal(fqn)
		case index.UnknownFile:
			eng.Diags.Add(diag.New(diag.UnknownModule, e.Span, "imported file was never indexed"))
		default:
			eng.Diags.Add(diag.New(diag.UnknownFqn, e.Span, "imported file has no such binding"))
		}
		return b.Unknown
	}

	// Deref through any number of pointers before field/builtin lookup.
	for {
		t, ok := eng.Types.Lookup(srcTy)
		if !ok || t.Kind != types.KindPointer {
			break
		}
		srcTy = t.Elem
	}
	t, ok := eng.Types.Lookup(srcTy)

	if ok && t.Kind == types.KindStruct {
		info, _ := eng.Types.StructInfo(srcTy)
		for _, m := range info.Members {
			if m.Name == e.Name {
				return m.Type
			}
		}
	}
	if ok && (t.Kind == types.KindArray || t.Kind == types.KindSlice || t.Kind == types.KindRawSlice) {
		if spelling, isBuiltin := eng.builtinMemberName(e.Name); isBuiltin {
			switch spelling {
			case "len":
				return eng.Types.Uint(types.WidthPtr)
			case "ptr":
				return eng.Types.Pointer(false, t.Elem)
			case "ty":
				return b.Type
			}
		}
	}
	if ok && t.Kind == types.KindAny {
		if spelling, isBuiltin := eng.builtinMemberName(e.Name); isBuiltin {
			switch spelling {
			case "ty":
				return b.Type
			case "ptr":
				return eng.Types.RawPtr(false)
			}
		}
	}
	if spelling, isBuiltin := eng.builtinMemberName(e.Name); isBuiltin && spelling == "ty" {
		return b.Type
	}
	if ok && isSentinel(t.Kind) {
		return b.Unknown
	}
	eng.Diags.Add(diag.New(diag.UnknownMember, e.Span, "no such member"))
	return b.Unknown
}

// inferImport resolves an import("path.capy") expression to a File(f)
// pseudo-type, interning the path against the same FileName space the
// world index's files are keyed by. Files is nil in tests that don't wire
// up cross-file lookups; import then stays Unknown rather than panicking.
func (eng *Engine) inferImport(fr *frame, e *hir.Expr) types.TypeID {
	b := eng.Types.Builtins()
	if eng.Files == nil {
		return b.Unknown
	}
	target := eng.Files.Intern(e.Path)
	if eng.World.Bodies(target) == nil {
		eng.Diags.Add(diag.New(diag.ImportNotFound, e.Span, "no such source file"))
		return b.Unknown
	}
	return eng.Types.File(target)
}

func (eng *Engine) inferCall(fr *frame, e *hir.Expr) types.TypeID {
	calleeTy := eng.inferExpr(fr, *e.A)
	b := eng.Types.Builtins()
	t, ok := eng.Types.Lookup(calleeTy)
	if !ok || t.Kind != types.KindFunction {
		if ok && !isSentinel(t.Kind) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "callee is not a function"))
		}
		for _, arg := range e.Args {
			eng.inferExpr(fr, arg)
		}
		return b.Unknown
	}
	fi, _ := eng.Types.FnInfo(calleeTy)
	minArgs := len(fi.Params)
	if fi.Variadic && minArgs > 0 {
		minArgs--
	}
	if len(e.Args) < minArgs {
		eng.Diags.Add(diag.New(diag.MissingArg, e.Span, "not enough arguments"))
	} else if !fi.Variadic && len(e.Args) > len(fi.Params) {
		eng.Diags.Add(diag.New(diag.ExtraArg, e.Span, "too many arguments"))
	}
	for i, arg := range e.Args {
		argTy := eng.inferExpr(fr, arg)
		var want types.TypeID
		switch {
		case i < len(fi.Params):
			want = fi.Params[i]
		case fi.Variadic && len(fi.Params) > 0:
			want = fi.Params[len(fi.Params)-1]
		default:
			continue
		}
		if !eng.assignable(argTy, want) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "argument type does not match parameter type"))
		} else if argTy != want {
			eng.replaceWeakTy(fr, arg, want)
		}
	}
	return fi.Result
}

func (eng *Engine) inferIf(fr *frame, e *hir.Expr) types.TypeID {
	b := eng.Types.Builtins()
	condTy := eng.inferExpr(fr, *e.A)
	if condTy != b.Bool && !eng.isSentinelTy(condTy) {
		eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "if condition must be bool"))
	}
	thenTy := eng.inferExpr(fr, *e.Then)
	if e.Else == nil {
		if thenTy != b.Void && thenTy != b.NoEval {
			eng.Diags.Add(diag.New(diag.MissingElse, e.Span, "if used as a value needs an else branch"))
		}
		return b.Void
	}
	elseTy := eng.inferExpr(fr, *e.Else)
	if thenTy == elseTy {
		return thenTy
	}
	if m, ok := eng.Types.UnifyNumeric(thenTy, elseTy); ok {
		eng.replaceWeakTy(fr, *e.Then, m)
		eng.replaceWeakTy(fr, *e.Else, m)
		return m
	}
	eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "if/else branches have different types"))
	return b.Unknown
}

func (eng *Engine) inferBlock(fr *frame, blk hir.BlockData) types.TypeID {
	b := eng.Types.Builtins()
	diverged := false
	for _, sidx := range blk.Stmts {
		eng.inferStmt(fr.withStmt(sidx), sidx)
		s := fr.bodies.Stmts.Get(sidx)
		if s.Kind == hir.SExpr {
			if ty, ok := eng.exprTys[exprKey{fr.file, s.Expr}]; ok && ty == b.NoEval {
				diverged = true
			}
		}
	}
	if blk.Tail == nil {
		if diverged {
			// Every path breaks/continues out before the block's end: the
			// block itself never produces a value.
			return b.NoEval
		}
		return b.Void
	}
	return eng.inferExpr(fr, *blk.Tail)
}

func (eng *Engine) inferStmt(fr *frame, sidx hir.StmtIdx) {
	s := fr.bodies.Stmts.Get(sidx)
	switch s.Kind {
	case hir.SLet:
		eng.inferLocal(fr, s.Local)
	case hir.SExpr:
		eng.inferExpr(fr, s.Expr)
	case hir.SAssign:
		targetTy := eng.inferExpr(fr, s.Target)
		valueTy := eng.inferExpr(fr, s.Expr)
		if !eng.assignable(valueTy, targetTy) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, s.Span, "assigned value does not match target type"))
		} else if valueTy != targetTy {
			eng.replaceWeakTy(fr, s.Expr, targetTy)
		}
		eng.checkMutableTarget(fr, s.Target)
	}
}

func (eng *Engine) inferLambdaExpr(fr *frame, e *hir.Expr) types.TypeID {
	lam := fr.bodies.Lambdas.Get(e.LambdaValue)
	paramTys := make([]types.TypeID, len(lam.Params))
	for i, p := range lam.Params {
		paramTys[i] = eng.constTy(fr, p.Type)
	}
	resultTy := eng.constTy(fr, lam.Result)
	variadic := false
	for _, p := range lam.Params {
		if p.Variadic {
			variadic = true
		}
	}
	inner := &frame{file: fr.file, bodies: fr.bodies, paramTypes: paramTys}
	if !lam.Extern {
		bodyTy := eng.inferExpr(inner, lam.Body)
		if !eng.assignable(bodyTy, resultTy) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, lam.Span, "function body type does not match declared result type"))
		} else if bodyTy != resultTy {
			eng.replaceWeakTy(inner, lam.Body, resultTy)
		}
	}
	return eng.Types.InternFunction(paramTys, resultTy, variadic)
}

// inferStructLit types `Ty.{a = x, b = y}` against its named struct type,
// or mints a fresh anonymous struct for a bare `.{...}` literal (left weak,
// for replacement against a later annotation).
func (eng *Engine) inferStructLit(fr *frame, e *hir.Expr) types.TypeID {
	b := eng.Types.Builtins()
	if e.A == nil {
		members := make([]types.StructField, len(e.Args))
		for i, arg := range e.Args {
			ty := eng.inferExpr(fr, arg)
			fieldName := source.NoName
			if i < len(e.FieldNames) {
				fieldName = e.FieldNames[i]
			}
			members[i] = types.StructField{Name: fieldName, Type: ty, HasDefault: false}
		}
		return eng.Types.NewStruct(true, members)
	}

	target := eng.constTy(fr, *e.A)
	t, ok := eng.Types.Lookup(target)
	if !ok || t.Kind != types.KindStruct {
		for _, arg := range e.Args {
			eng.inferExpr(fr, arg)
		}
		if ok && !isSentinel(t.Kind) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "struct literal type is not a struct"))
		}
		return b.Unknown
	}
	info, _ := eng.Types.StructInfo(target)
	given := make(map[source.Name]bool, len(e.Args))
	for i, arg := range e.Args {
		argTy := eng.inferExpr(fr, arg)
		fieldName := source.NoName
		if i < len(e.FieldNames) {
			fieldName = e.FieldNames[i]
		}
		member, found := structMember(info, fieldName)
		if !found {
			eng.Diags.Add(diag.New(diag.UnknownMember, e.Span, "struct has no such member"))
			continue
		}
		given[fieldName] = true
		if !eng.assignable(argTy, member.Type) {
			eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "member value does not match its declared type"))
		} else if argTy != member.Type {
			eng.replaceWeakTy(fr, arg, member.Type)
		}
	}
	for _, m := range info.Members {
		// Only a member whose declaration carries its own default may be
		// omitted; a defaultable *type* is not enough for a named literal.
		if !given[m.Name] && !m.HasDefault {
			eng.Diags.Add(diag.New(diag.StructLiteralMissingMember, e.Span, "struct literal is missing a member"))
		}
	}
	return target
}

func structMember(info types.StructInfo, name source.Name) (types.StructField, bool) {
	for _, m := range info.Members {
		if m.Name == name {
			return m, true
		}
	}
	return types.StructField{}, false
}

func (eng *Engine) inferArrayLit(fr *frame, e *hir.Expr) types.TypeID {
	b := eng.Types.Builtins()
	elemTy := b.Unknown
	for i, arg := range e.Args {
		ty := eng.inferExpr(fr, arg)
		if i == 0 {
			elemTy = ty
			continue
		}
		if m, ok := eng.Types.UnifyNumeric(elemTy, ty); ok {
			elemTy = m
		} else if elemTy != ty {
			eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "array elements have inconsistent types"))
		}
	}
	return eng.Types.Array(true, uint32(len(e.Args)), elemTy)
}

func (eng *Engine) inferUnwrap(fr *frame, e *hir.Expr) types.TypeID {
	srcTy := eng.inferExpr(fr, *e.A)
	b := eng.Types.Builtins()
	t, ok := eng.Types.Lookup(srcTy)
	if !ok || t.Kind != types.KindEnum {
		eng.Diags.Add(diag.New(diag.UnwrapNotAnEnum, e.Span, "#unwrap target is not an enum"))
		return b.Unknown
	}
	info, _ := eng.Types.EnumInfo(srcTy)
	for _, vID := range info.Variants {
		vi, _ := eng.Types.VariantInfo(vID)
		if vi.Name == e.Name {
			vt, _ := eng.Types.Lookup(vID)
			return vt.Elem
		}
	}
	eng.Diags.Add(diag.New(diag.UnwrapVariantMismatch, e.Span, "enum has no such variant"))
	return b.Unknown
}

func (eng *Engine) inferSwitch(fr *frame, e *hir.Expr) types.TypeID {
	b := eng.Types.Builtins()
	scrutTy := eng.inferExpr(fr, *e.Scrut)
	enumInfo, isEnum := eng.Types.EnumInfo(scrutTy)
	if !isEnum && !eng.isSentinelTy(scrutTy) {
		eng.Diags.Add(diag.New(diag.TypeMismatch, e.Span, "switch scrutinee must be an enum"))
	}

	seen := make(map[uint32]bool, len(e.Arms))
	resultTy := types.NoTypeID
	for _, arm := range e.Arms {
		var variantID types.TypeID
		if isEnum {
			vID, ok := findVariantByName(eng.Types, enumInfo, arm.VariantName)
			if ok {
				if seen[uint32(vID)] {
					eng.Diags.Add(diag.New(diag.SwitchAlreadyCoversVariant, e.Span, "variant already covered"))
				}
				seen[uint32(vID)] = true
				variantID = vID
			} else {
				eng.Diags.Add(diag.New(diag.NonExistentEnumVariant, e.Span, "no such variant"))
			}
		}
		eng.bindSwitchCapture(fr, arm, scrutTy, variantID)
		armTy := eng.inferExpr(fr, arm.Body)
		resultTy = unifyArm(eng, resultTy, armTy)
	}
	if e.Default != nil {
		armTy := eng.inferExpr(fr, *e.Default)
		resultTy = unifyArm(eng, resultTy, armTy)
	} else if isEnum && len(seen) < len(enumInfo.Variants) {
		eng.Diags.Add(diag.New(diag.SwitchDoesNotCoverVariant, e.Span, "switch does not cover every variant"))
	}
	if resultTy == types.NoTypeID {
		return b.Void
	}
	return resultTy
}

// bindSwitchCapture installs the per-arm type of a `switch v in e` binding:
// the arm's variant payload when it has one, else the scrutinee's own enum
// type. The entry lands in both the ordinary local table (so ELocalRef in
// the arm body resolves normally) and the dedicated switch-local table.
func (eng *Engine) bindSwitchCapture(fr *frame, arm hir.SwitchArmHIR, scrutTy, variantID types.TypeID) {
	if !arm.Capture.IsValid() {
		return
	}
	capTy := scrutTy
	if vt, ok := eng.Types.Lookup(variantID); ok && vt.Kind == types.KindVariant && vt.Elem != types.NoTypeID {
		capTy = vt.Elem
	}
	key := localKey{fr.file, arm.Capture}
	eng.localTys[key] = capTy
	eng.switchTys[key] = capTy
}

func findVariantByName(tys *types.Interner, info types.EnumInfo, name source.Name) (types.TypeID, bool) {
	for _, vID := range info.Variants {
		vi, _ := tys.VariantInfo(vID)
		if vi.Name == name {
			return vID, true
		}
	}
	return types.NoTypeID, false
}

func unifyArm(eng *Engine, acc, next types.TypeID) types.TypeID {
	if acc == types.NoTypeID {
		return next
	}
	if acc == next {
		return acc
	}
	if m, ok := eng.Types.UnifyNumeric(acc, next); ok {
		return m
	}
	return eng.Types.Builtins().Unknown
}
