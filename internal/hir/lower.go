package hir

import (
	"strings"

	"capy/internal/cst"
	"capy/internal/diag"
	"capy/internal/source"
)

// Lower runs the CST-to-HIR pass for one file: every local
// name is resolved to a LocalDef/parameter slot right here, every
// unresolved identifier is left as an EGlobal carrying its bare Name for
// the inference engine to settle against a WorldIndex, and malformed
// syntax is replaced with EMissing rather than aborting the pass — only
// the (out-of-scope) syntax phase gets to fail outright.
func Lower(file *cst.File, diags *diag.Bag) *Bodies {
	lw := &lowerer{b: NewBodies(file.Name), diags: diags}
	for _, item := range file.Items {
		lw.lowerItem(item)
	}
	return lw.b
}

type target struct {
	isParam bool
	local   LocalDefIdx
	param   int
}

// breakable is one entry of the break/continue target stack: a loop, or a
// labeled block. Unlabeled blocks are not breakable.
type breakable struct {
	label  source.Name
	scope  ScopeID
	isLoop bool
}

type lowerer struct {
	b      *Bodies
	diags  *diag.Bag
	scopes []map[source.Name]target
	breaks []breakable
}

func (lw *lowerer) push()      { lw.scopes = append(lw.scopes, map[source.Name]target{}) }
func (lw *lowerer) pop()       { lw.scopes = lw.scopes[:len(lw.scopes)-1] }
func (lw *lowerer) defineLocal(name source.Name, idx LocalDefIdx) {
	lw.scopes[len(lw.scopes)-1][name] = target{local: idx}
}
func (lw *lowerer) defineParam(name source.Name, i int) {
	lw.scopes[len(lw.scopes)-1][name] = target{isParam: true, param: i}
}
func (lw *lowerer) resolve(name source.Name) (target, bool) {
	for i := len(lw.scopes) - 1; i >= 0; i-- {
		if t, ok := lw.scopes[i][name]; ok {
			return t, true
		}
	}
	return target{}, false
}

func (lw *lowerer) missing(span source.Span) ExprIdx {
	return lw.b.Exprs.Alloc(Expr{Kind: EMissing, Span: span})
}

// breakTarget resolves a break's scope: the innermost breakable with a
// matching label, or the innermost loop when the break is unlabeled.
func (lw *lowerer) breakTarget(label source.Name) ScopeID {
	for i := len(lw.breaks) - 1; i >= 0; i-- {
		br := lw.breaks[i]
		if label != source.NoName {
			if br.label == label {
				return br.scope
			}
			continue
		}
		if br.isLoop {
			return br.scope
		}
	}
	return NoScopeID
}

// continueTarget resolves a continue's scope: labeled blocks are never
// continue targets, only loops.
func (lw *lowerer) continueTarget(label source.Name) ScopeID {
	for i := len(lw.breaks) - 1; i >= 0; i-- {
		br := lw.breaks[i]
		if !br.isLoop {
			continue
		}
		if label == source.NoName || br.label == label {
			return br.scope
		}
	}
	return NoScopeID
}

func (lw *lowerer) lowerItem(item *cst.Item) {
	def := GlobalDef{
		Name:     item.Name,
		Span:     item.Span,
		NameSpan: item.NameSpan,
		BindKind: lowerBindKind(item.BindKind),
		Extern:   item.Extern,
	}
	if item.TypeAnnotation != nil {
		idx := lw.lowerExpr(item.TypeAnnotation, true)
		def.TypeAnnotation = &idx
	}
	if item.Value != nil {
		def.Value = lw.lowerExpr(item.Value, true)
	} else {
		def.Value = lw.missing(item.Span)
	}
	lw.b.Items = append(lw.b.Items, def)
}

func lowerBindKind(k cst.BindKind) BindKindHIR {
	switch k {
	case cst.BindVarTyped:
		return BindVarTyped
	case cst.BindVarInferred:
		return BindVarInferred
	default:
		return BindConst
	}
}

// lowerExpr lowers e. atGlobal is true only while lowering a top-level
// item's direct value/annotation; it gates the NonGlobalExtern check on
// nested `extern fn` literals.
func (lw *lowerer) lowerExpr(e *cst.Expr, atGlobal bool) ExprIdx {
	if e == nil {
		return lw.missing(source.NoSpan)
	}
	switch e.Kind {
	case cst.EMissing:
		return lw.missing(e.Span)

	case cst.EIntLit:
		if !lw.litOK(e) {
			return lw.missing(e.Span)
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EIntLit, Span: e.Span, IntVal: e.IntVal})
	case cst.EFloatLit:
		if !lw.litOK(e) {
			return lw.missing(e.Span)
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EFloatLit, Span: e.Span, FloatVal: e.FloatVal})
	case cst.EBoolLit:
		return lw.b.Exprs.Alloc(Expr{Kind: EBoolLit, Span: e.Span, BoolVal: e.BoolVal})
	case cst.EStringLit:
		if !lw.litOK(e) {
			return lw.missing(e.Span)
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EStringLit, Span: e.Span, StringVal: e.StringVal})
	case cst.ECharLit:
		if !lw.litOK(e) {
			return lw.missing(e.Span)
		}
		return lw.b.Exprs.Alloc(Expr{Kind: ECharLit, Span: e.Span, CharVal: e.CharVal})

	case cst.EIdent:
		if t, ok := lw.resolve(e.Name); ok {
			if t.isParam {
				return lw.b.Exprs.Alloc(Expr{Kind: EParamRef, Span: e.Span, Param: t.param})
			}
			return lw.b.Exprs.Alloc(Expr{Kind: ELocalRef, Span: e.Span, Local: t.local})
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EGlobal, Span: e.Span, Name: e.Name})

	case cst.EBinary:
		a, b := lw.child(e.A, false), lw.child(e.B, false)
		return lw.b.Exprs.Alloc(Expr{Kind: EBinary, Span: e.Span, Op: e.Op, A: a, B: b})
	case cst.EUnary:
		a := lw.child(e.A, false)
		return lw.b.Exprs.Alloc(Expr{Kind: EUnary, Span: e.Span, UnOp: e.UnOp, A: a})
	case cst.ERef:
		a := lw.child(e.A, false)
		return lw.b.Exprs.Alloc(Expr{Kind: ERef, Span: e.Span, Mut: e.Mut, A: a})
	case cst.EDeref:
		a := lw.child(e.A, false)
		return lw.b.Exprs.Alloc(Expr{Kind: EDeref, Span: e.Span, A: a})
	case cst.ECast:
		a, b := lw.child(e.A, false), lw.child(e.B, true)
		return lw.b.Exprs.Alloc(Expr{Kind: ECast, Span: e.Span, A: a, B: b})
	case cst.EIndex:
		a, b := lw.child(e.A, false), lw.child(e.B, false)
		return lw.b.Exprs.Alloc(Expr{Kind: EIndex, Span: e.Span, A: a, B: b})
	case cst.EMember:
		a := lw.child(e.A, false)
		return lw.b.Exprs.Alloc(Expr{Kind: EMember, Span: e.Span, Name: e.Name, A: a})
	case cst.ECall:
		callee := lw.child(e.A, false)
		args := make([]ExprIdx, len(e.Args))
		for i, arg := range e.Args {
			args[i] = lw.lowerExpr(arg, false)
		}
		return lw.b.Exprs.Alloc(Expr{Kind: ECall, Span: e.Span, A: callee, Args: args})
	case cst.EDefer:
		a := lw.child(e.A, false)
		return lw.b.Exprs.Alloc(Expr{Kind: EDefer, Span: e.Span, A: a})

	case cst.EIf:
		cond := lw.child(e.A, false)
		then := lw.lowerExpr(e.Then, false)
		var els *ExprIdx
		if e.Else != nil {
			idx := lw.lowerExpr(e.Else, false)
			els = &idx
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EIf, Span: e.Span, A: cond, Then: &then, Else: els})

	case cst.EWhile, cst.ELoop:
		scope := lw.b.NewScope()
		var cond *ExprIdx
		if e.A != nil {
			cond = lw.child(e.A, false)
		}
		lw.breaks = append(lw.breaks, breakable{label: e.Label, scope: scope, isLoop: true})
		body := lw.lowerBlockBody(e.B, scope)
		lw.breaks = lw.breaks[:len(lw.breaks)-1]
		return lw.b.Exprs.Alloc(Expr{Kind: EWhile, Span: e.Span, A: cond, Block: body})

	case cst.EBlock:
		scope := lw.b.NewScope()
		labeled := e.Label != source.NoName
		if labeled {
			lw.breaks = append(lw.breaks, breakable{label: e.Label, scope: scope})
		}
		blk := lw.lowerBlockExprBody(e, scope)
		if labeled {
			lw.breaks = lw.breaks[:len(lw.breaks)-1]
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EBlock, Span: e.Span, Block: blk})

	case cst.EBreak:
		a := lw.child(e.A, false)
		return lw.b.Exprs.Alloc(Expr{Kind: EBreak, Span: e.Span, A: a, Scope: lw.breakTarget(e.Label)})
	case cst.EContinue:
		return lw.b.Exprs.Alloc(Expr{Kind: EContinue, Span: e.Span, Scope: lw.continueTarget(e.Label)})

	case cst.EComptime:
		body := lw.lowerExpr(e.A, false)
		ci := lw.b.Comptimes.Alloc(Comptime{Span: e.Span, Body: body})
		return lw.b.Exprs.Alloc(Expr{Kind: EComptime, Span: e.Span, Comptime: ci})

	case cst.EFnLit:
		if e.Extern && !atGlobal {
			lw.diags.Add(diag.New(diag.NonGlobalExtern, e.Span, "extern functions must be top-level declarations"))
		}
		li := lw.lowerLambda(e)
		return lw.b.Exprs.Alloc(Expr{Kind: ELambda, Span: e.Span, LambdaValue: li})

	case cst.EStructLit:
		ty := lw.child(e.A, true) // nil for an anonymous `.{...}` literal
		args := make([]ExprIdx, len(e.Args))
		for i, arg := range e.Args {
			args[i] = lw.lowerExpr(arg, false)
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EStructLit, Span: e.Span, A: ty, Args: args, FieldNames: e.FieldNames})
	case cst.EArrayLit:
		args := make([]ExprIdx, len(e.Args))
		for i, arg := range e.Args {
			args[i] = lw.lowerExpr(arg, false)
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EArrayLit, Span: e.Span, Args: args})

	case cst.EUnwrap:
		a := lw.child(e.A, false)
		return lw.b.Exprs.Alloc(Expr{Kind: EUnwrap, Span: e.Span, Name: e.Name, A: a})

	case cst.EImport:
		if !strings.HasSuffix(e.Path, ".capy") {
			lw.diags.Add(diag.New(diag.ImportPathMalformed, e.Span, "import path must end in .capy"))
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EImport, Span: e.Span, Path: e.Path})

	case cst.ESwitch:
		scrut := lw.lowerExpr(e.Scrut, false)
		arms := make([]SwitchArmHIR, len(e.Arms))
		for i, arm := range e.Arms {
			arms[i] = lw.lowerSwitchArm(arm, e.Binding, scrut)
		}
		var def *ExprIdx
		if e.Default != nil {
			idx := lw.lowerExpr(e.Default, false)
			def = &idx
		}
		return lw.b.Exprs.Alloc(Expr{Kind: ESwitch, Span: e.Span, Scrut: &scrut, Arms: arms, Default: def})

	// Type syntax.
	case cst.EPrimitiveType:
		return lw.b.Exprs.Alloc(Expr{Kind: EPrimitiveType, Span: e.Span, Name: e.Name})
	case cst.EAnyType:
		return lw.b.Exprs.Alloc(Expr{Kind: EAnyType, Span: e.Span})
	case cst.EVoidType:
		return lw.b.Exprs.Alloc(Expr{Kind: EVoidType, Span: e.Span})
	case cst.ETypeType:
		return lw.b.Exprs.Alloc(Expr{Kind: ETypeType, Span: e.Span})
	case cst.EPointerType:
		a := lw.child(e.A, true)
		return lw.b.Exprs.Alloc(Expr{Kind: EPointerType, Span: e.Span, Mut: e.Mut, A: a})
	case cst.ERawPtrType:
		return lw.b.Exprs.Alloc(Expr{Kind: ERawPtrType, Span: e.Span, Mut: e.Mut})
	case cst.ERawSliceType:
		return lw.b.Exprs.Alloc(Expr{Kind: ERawSliceType, Span: e.Span, Mut: e.Mut})
	case cst.ESliceType:
		a := lw.child(e.A, true)
		return lw.b.Exprs.Alloc(Expr{Kind: ESliceType, Span: e.Span, Mut: e.Mut, A: a})
	case cst.EArrayType:
		if !lw.isConstSyntax(e.A) {
			lw.diags.Add(diag.New(diag.ArraySizeNotConst, e.A.Span, "array size must be a constant expression"))
		}
		size := lw.child(e.A, false)
		sub := lw.child(e.B, true)
		return lw.b.Exprs.Alloc(Expr{Kind: EArrayType, Span: e.Span, A: size, B: sub})
	case cst.EDistinctType:
		a := lw.child(e.A, true)
		return lw.b.Exprs.Alloc(Expr{Kind: EDistinctType, Span: e.Span, A: a})
	case cst.EStructType:
		names := make([]source.Name, len(e.Fields))
		types := make([]ExprIdx, len(e.Fields))
		for i, f := range e.Fields {
			names[i] = f.Name
			types[i] = lw.lowerExpr(f.Type, true)
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EStructType, Span: e.Span, FieldNames: names, ParamTypes: types})
	case cst.EEnumType:
		variants := make([]EnumVariantHIR, len(e.Variants))
		for i, v := range e.Variants {
			var payload *ExprIdx
			if v.Payload != nil {
				idx := lw.lowerExpr(v.Payload, true)
				payload = &idx
			}
			var disc *ExprIdx
			if v.Discriminant != nil {
				idx := lw.lowerExpr(v.Discriminant, false)
				disc = &idx
			}
			variants[i] = EnumVariantHIR{Name: v.Name, Payload: payload, Discriminant: disc}
		}
		return lw.b.Exprs.Alloc(Expr{Kind: EEnumType, Span: e.Span, Variants: variants})
	case cst.EFnType:
		names := make([]source.Name, len(e.Params))
		types := make([]ExprIdx, len(e.Params))
		variadic := false
		for i, p := range e.Params {
			names[i] = p.Name
			types[i] = lw.lowerExpr(p.Type, true)
			if p.Variadic {
				variadic = true
			}
		}
		result := lw.lowerExpr(e.Result, true)
		return lw.b.Exprs.Alloc(Expr{
			Kind: EFnType, Span: e.Span, ParamNames: names, ParamTypes: types,
			Variadic: variadic, Result: &result,
		})

	default:
		return lw.missing(e.Span)
	}
}

// litOK turns a lexer-flagged literal error into its diagnostic. The caller
// lowers the node to EMissing when it returns false, so inference sees a
// hole rather than a half-decoded value.
func (lw *lowerer) litOK(e *cst.Expr) bool {
	switch e.LitErr {
	case cst.LitOK:
		return true
	case cst.LitIntOutOfRange:
		lw.diags.Add(diag.New(diag.OutOfRangeIntLiteral, e.Span, "integer literal does not fit in 64 bits"))
	case cst.LitBadEscape:
		lw.diags.Add(diag.New(diag.InvalidEscape, e.Span, "unknown escape sequence"))
	case cst.LitBadChar:
		lw.diags.Add(diag.New(diag.BadCharLiteral, e.Span, "char literal must hold exactly one character"))
	default:
		lw.diags.Add(diag.New(diag.MalformedLiteral, e.Span, "literal could not be decoded"))
	}
	return false
}

// lowerSwitchArm lowers one arm. When the switch carries a `switch v in e`
// binding, each arm gets its own LocalDef for v — the binding's type
// differs per variant, so one shared local could not hold them all.
func (lw *lowerer) lowerSwitchArm(arm *cst.SwitchArm, binding source.Name, scrut ExprIdx) SwitchArmHIR {
	if binding == source.NoName {
		return SwitchArmHIR{VariantName: arm.VariantName, Body: lw.lowerExpr(arm.Body, false)}
	}
	lw.push()
	defer lw.pop()
	capture := lw.b.Locals.Alloc(LocalDef{Name: binding, Value: scrut})
	lw.defineLocal(binding, capture)
	return SwitchArmHIR{VariantName: arm.VariantName, Body: lw.lowerExpr(arm.Body, false), Capture: capture}
}

func (lw *lowerer) child(e *cst.Expr, atGlobal bool) *ExprIdx {
	if e == nil {
		return nil
	}
	idx := lw.lowerExpr(e, atGlobal)
	return &idx
}

// isConstSyntax conservatively rejects array-size expressions that could
// only be evaluated at runtime (calls, control flow, indexing), without
// running full inference — real const-ness is confirmed later by
// is_safe_to_compile.
func (lw *lowerer) isConstSyntax(e *cst.Expr) bool {
	if e == nil {
		return false
	}
	switch e.Kind {
	case cst.EIntLit, cst.EIdent, cst.EComptime:
		return true
	case cst.EBinary:
		return lw.isConstSyntax(e.A) && lw.isConstSyntax(e.B)
	case cst.EUnary:
		return lw.isConstSyntax(e.A)
	default:
		return false
	}
}

func (lw *lowerer) lowerLambda(e *cst.Expr) LambdaIdx {
	lw.push()
	defer lw.pop()

	before := lw.b.Locals.Len()
	params := make([]LambdaParam, len(e.Params))
	for i, p := range e.Params {
		ty := lw.lowerExpr(p.Type, true)
		params[i] = LambdaParam{Name: p.Name, Type: ty, Variadic: p.Variadic}
		lw.defineParam(p.Name, i)
	}
	result := lw.lowerExpr(e.Result, true)

	var body ExprIdx
	if e.Extern {
		body = lw.missing(e.Span)
	} else {
		body = lw.lowerExpr(e.Body, false)
	}

	li := lw.b.Lambdas.Alloc(Lambda{
		Span: e.Span, Params: params, Result: result, Extern: e.Extern, Body: body,
	})
	lw.b.Lambdas.Get(li).ScopeLen = lw.b.Locals.Len() - before
	return li
}

func (lw *lowerer) lowerBlockBody(e *cst.Expr, scope ScopeID) BlockData {
	if e == nil || e.Kind != cst.EBlock {
		// `while cond body` where body isn't a literal block: wrap it as a
		// single-statement block so codegen always sees BlockData.
		idx := lw.lowerExpr(e, false)
		return BlockData{Tail: &idx, Scope: scope}
	}
	return lw.lowerBlockExprBody(e, scope)
}

func (lw *lowerer) lowerBlockExprBody(e *cst.Expr, scope ScopeID) BlockData {
	lw.push()
	defer lw.pop()

	stmts := make([]StmtIdx, 0, len(e.Stmts))
	for _, s := range e.Stmts {
		stmts = append(stmts, lw.lowerStmt(s))
	}
	var tail *ExprIdx
	if e.Tail != nil {
		idx := lw.lowerExpr(e.Tail, false)
		tail = &idx
	}
	return BlockData{Stmts: stmts, Tail: tail, Scope: scope}
}

func (lw *lowerer) lowerStmt(s *cst.Stmt) StmtIdx {
	switch s.Kind {
	case cst.StmtLet:
		var typeAnn *ExprIdx
		if s.TypeAnnotation != nil {
			idx := lw.lowerExpr(s.TypeAnnotation, true)
			typeAnn = &idx
		}
		value := lw.lowerExpr(s.Value, false)
		localIdx := lw.b.Locals.Alloc(LocalDef{
			Name: s.Name, Span: s.Span, BindKind: lowerBindKind(s.BindKind),
			TypeAnnotation: typeAnn, Value: value,
			Mutable: s.BindKind != cst.BindConst,
		})
		lw.defineLocal(s.Name, localIdx)
		return lw.b.Stmts.Alloc(Stmt{Kind: SLet, Span: s.Span, Local: localIdx})
	case cst.StmtAssign:
		target := lw.lowerExpr(s.AssignTarget, false)
		value := lw.lowerExpr(s.AssignValue, false)
		return lw.b.Stmts.Alloc(Stmt{Kind: SAssign, Span: s.Span, Target: target, Expr: value})
	default: // StmtExpr
		value := lw.lowerExpr(s.Expr, false)
		return lw.b.Stmts.Alloc(Stmt{Kind: SExpr, Span: s.Span, Expr: value})
	}
}
