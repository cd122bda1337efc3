package hir

import (
	"testing"

	"capy/internal/cst"
	"capy/internal/diag"
	"capy/internal/source"
)

func span(a, b uint32) source.Span { return source.Span{Start: a, End: b} }

func TestLowerResolvesParamsAndLocalsLexically(t *testing.T) {
	paramX := source.Name(1)
	localY := source.Name(2)

	// fn(x: i32) i32 { y := x; y }
	body := &cst.Expr{
		Kind: cst.EBlock,
		Stmts: []*cst.Stmt{
			{
				Kind:     cst.StmtLet,
				Name:     localY,
				BindKind: cst.BindVarInferred,
				Value:    &cst.Expr{Kind: cst.EIdent, Name: paramX},
			},
		},
		Tail: &cst.Expr{Kind: cst.EIdent, Name: localY},
	}
	fn := &cst.Expr{
		Kind: cst.EFnLit,
		Params: []*cst.FnParam{
			{Name: paramX, Type: &cst.Expr{Kind: cst.EPrimitiveType, Name: source.Name(99)}},
		},
		Result: &cst.Expr{Kind: cst.EPrimitiveType, Name: source.Name(99)},
		Body:   body,
	}
	file := &cst.File{
		Name: source.FileName(1),
		Items: []*cst.Item{
			{Name: source.Name(3), BindKind: cst.BindConst, Value: fn},
		},
	}

	diags := diag.NewBag()
	bodies := Lower(file, diags)

	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}
	if len(bodies.Items) != 1 {
		t.Fatalf("expected 1 global item, got %d", len(bodies.Items))
	}
	global := bodies.Items[0]
	lam := bodies.Exprs.Get(global.Value)
	if lam.Kind != ELambda {
		t.Fatalf("expected ELambda, got %v", lam.Kind)
	}
	lambda := bodies.Lambdas.Get(lam.LambdaValue)
	blockExpr := bodies.Exprs.Get(lambda.Body)
	if blockExpr.Kind != EBlock {
		t.Fatalf("expected EBlock body, got %v", blockExpr.Kind)
	}
	if len(blockExpr.Block.Stmts) != 1 {
		t.Fatalf("expected 1 stmt, got %d", len(blockExpr.Block.Stmts))
	}
	letStmt := bodies.Stmts.Get(blockExpr.Block.Stmts[0])
	if letStmt.Kind != SLet {
		t.Fatalf("expected SLet, got %v", letStmt.Kind)
	}
	valueExpr := bodies.Exprs.Get(bodies.Locals.Get(letStmt.Local).Value)
	if valueExpr.Kind != EParamRef || valueExpr.Param != 0 {
		t.Fatalf("expected x to resolve to ParamRef(0), got %+v", valueExpr)
	}

	tail := bodies.Exprs.Get(*blockExpr.Block.Tail)
	if tail.Kind != ELocalRef || tail.Local != letStmt.Local {
		t.Fatalf("expected tail to resolve to the `y` local, got %+v", tail)
	}
}

func TestLowerLeavesUnresolvedIdentAsGlobal(t *testing.T) {
	unknown := source.Name(42)
	file := &cst.File{
		Name: source.FileName(1),
		Items: []*cst.Item{
			{Name: source.Name(1), BindKind: cst.BindConst, Value: &cst.Expr{Kind: cst.EIdent, Name: unknown}},
		},
	}
	diags := diag.NewBag()
	bodies := Lower(file, diags)

	e := bodies.Exprs.Get(bodies.Items[0].Value)
	if e.Kind != EGlobal || e.Name != unknown {
		t.Fatalf("expected unresolved ident to lower to EGlobal(%v), got %+v", unknown, e)
	}
}

func TestLowerNonGlobalExternReportsDiagnostic(t *testing.T) {
	externFn := &cst.Expr{
		Kind:   cst.EFnLit,
		Extern: true,
		Result: &cst.Expr{Kind: cst.EVoidType},
		Body:   &cst.Expr{Kind: cst.EMissing},
	}
	// `x := extern fn() void` as a nested local value, not a top-level item.
	file := &cst.File{
		Name: source.FileName(1),
		Items: []*cst.Item{
			{
				Name:     source.Name(1),
				BindKind: cst.BindVarInferred,
				Value: &cst.Expr{
					Kind: cst.EBlock,
					Stmts: []*cst.Stmt{
						{Kind: cst.StmtLet, Name: source.Name(2), BindKind: cst.BindVarInferred, Value: externFn},
					},
					Tail: &cst.Expr{Kind: cst.EIdent, Name: source.Name(2)},
				},
			},
		},
	}
	diags := diag.NewBag()
	Lower(file, diags)

	if got := diags.ByKind(diag.NonGlobalExtern); len(got) != 1 {
		t.Fatalf("expected exactly one NonGlobalExtern diagnostic, got %d", len(got))
	}
}

func TestLowerArraySizeNotConstFlagsCallExpression(t *testing.T) {
	sizeCall := &cst.Expr{Kind: cst.ECall, A: &cst.Expr{Kind: cst.EIdent, Name: source.Name(7)}}
	arrTy := &cst.Expr{
		Kind: cst.EArrayType,
		A:    sizeCall,
		B:    &cst.Expr{Kind: cst.EPrimitiveType, Name: source.Name(99)},
	}
	file := &cst.File{
		Name: source.FileName(1),
		Items: []*cst.Item{
			{Name: source.Name(1), BindKind: cst.BindConst, TypeAnnotation: arrTy, Value: &cst.Expr{Kind: cst.EMissing}},
		},
	}
	diags := diag.NewBag()
	Lower(file, diags)

	if got := diags.ByKind(diag.ArraySizeNotConst); len(got) != 1 {
		t.Fatalf("expected exactly one ArraySizeNotConst diagnostic, got %d", len(got))
	}
}

func TestLowerMissingValueBecomesEMissing(t *testing.T) {
	file := &cst.File{
		Name: source.FileName(1),
		Items: []*cst.Item{
			{Name: source.Name(1), BindKind: cst.BindConst, Span: span(0, 1)},
		},
	}
	diags := diag.NewBag()
	bodies := Lower(file, diags)

	e := bodies.Exprs.Get(bodies.Items[0].Value)
	if e.Kind != EMissing {
		t.Fatalf("expected EMissing for absent item value, got %v", e.Kind)
	}
}

func TestLowerBreakResolvesLoopAndLabeledBlock(t *testing.T) {
	label := source.Name(7)

	// outer: { loop { break; break outer } }
	innerLoop := &cst.Expr{
		Kind: cst.ELoop,
		B: &cst.Expr{
			Kind: cst.EBlock,
			Stmts: []*cst.Stmt{
				{Kind: cst.StmtExpr, Expr: &cst.Expr{Kind: cst.EBreak}},
				{Kind: cst.StmtExpr, Expr: &cst.Expr{Kind: cst.EBreak, Label: label}},
			},
		},
	}
	outer := &cst.Expr{
		Kind:  cst.EBlock,
		Label: label,
		Stmts: []*cst.Stmt{{Kind: cst.StmtExpr, Expr: innerLoop}},
	}
	file := &cst.File{
		Name:  source.FileName(1),
		Items: []*cst.Item{{Name: source.Name(1), BindKind: cst.BindConst, Value: outer}},
	}
	diags := diag.NewBag()
	bodies := Lower(file, diags)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}

	var outerScope, loopScope ScopeID
	bodies.Exprs.All(func(_ ExprIdx, e Expr) bool {
		switch e.Kind {
		case EBlock:
			outerScope = e.Block.Scope
		case EWhile:
			loopScope = e.Block.Scope
		}
		return true
	})
	if outerScope == NoScopeID || loopScope == NoScopeID || outerScope == loopScope {
		t.Fatalf("expected two distinct scopes, got outer=%d loop=%d", outerScope, loopScope)
	}

	var scopes []ScopeID
	bodies.Exprs.All(func(_ ExprIdx, e Expr) bool {
		if e.Kind == EBreak {
			scopes = append(scopes, e.Scope)
		}
		return true
	})
	if len(scopes) != 2 {
		t.Fatalf("expected 2 lowered breaks, got %d", len(scopes))
	}
	if scopes[0] != loopScope {
		t.Fatalf("unlabeled break should target the innermost loop (%d), got %d", loopScope, scopes[0])
	}
	if scopes[1] != outerScope {
		t.Fatalf("labeled break should target the labeled block (%d), got %d", outerScope, scopes[1])
	}
}

func TestLowerFlaggedLiteralsBecomeDiagnostics(t *testing.T) {
	cases := []struct {
		err  cst.LitError
		kind cst.ExprKind
		want diag.Kind
	}{
		{cst.LitIntOutOfRange, cst.EIntLit, diag.OutOfRangeIntLiteral},
		{cst.LitBadEscape, cst.EStringLit, diag.InvalidEscape},
		{cst.LitBadChar, cst.ECharLit, diag.BadCharLiteral},
		{cst.LitMalformed, cst.EFloatLit, diag.MalformedLiteral},
	}
	for _, tc := range cases {
		file := &cst.File{
			Name: source.FileName(1),
			Items: []*cst.Item{{
				Name: source.Name(1), BindKind: cst.BindConst,
				Value: &cst.Expr{Kind: tc.kind, LitErr: tc.err},
			}},
		}
		diags := diag.NewBag()
		bodies := Lower(file, diags)
		if got := diags.ByKind(tc.want); len(got) != 1 {
			t.Fatalf("LitErr %d: expected 1 %v diagnostic, got %d", tc.err, tc.want, len(got))
		}
		if bodies.Exprs.Get(bodies.Items[0].Value).Kind != EMissing {
			t.Fatalf("LitErr %d: flagged literal should lower to EMissing", tc.err)
		}
	}
}

func TestLowerSwitchBindingAllocatesPerArmCapture(t *testing.T) {
	binding := source.Name(5)
	sw := &cst.Expr{
		Kind:    cst.ESwitch,
		Scrut:   &cst.Expr{Kind: cst.EIdent, Name: source.Name(9)},
		Binding: binding,
		Arms: []*cst.SwitchArm{
			{VariantName: source.Name(10), Body: &cst.Expr{Kind: cst.EIdent, Name: binding}},
			{VariantName: source.Name(11), Body: &cst.Expr{Kind: cst.EIntLit, IntVal: 1}},
		},
	}
	file := &cst.File{
		Name:  source.FileName(1),
		Items: []*cst.Item{{Name: source.Name(1), BindKind: cst.BindConst, Value: sw}},
	}
	diags := diag.NewBag()
	bodies := Lower(file, diags)
	if diags.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags.Items())
	}

	var swExpr *Expr
	bodies.Exprs.All(func(_ ExprIdx, e Expr) bool {
		if e.Kind == ESwitch {
			cp := e
			swExpr = &cp
		}
		return true
	})
	if swExpr == nil {
		t.Fatalf("no lowered switch found")
	}
	if !swExpr.Arms[0].Capture.IsValid() || !swExpr.Arms[1].Capture.IsValid() {
		t.Fatalf("every arm should carry its own capture local")
	}
	if swExpr.Arms[0].Capture == swExpr.Arms[1].Capture {
		t.Fatalf("captures must be distinct per arm")
	}

	// The first arm's body resolves the binding to that arm's own capture.
	body := bodies.Exprs.Get(swExpr.Arms[0].Body)
	if body.Kind != ELocalRef || body.Local != swExpr.Arms[0].Capture {
		t.Fatalf("arm body should reference the arm's capture local, got kind=%d local=%d", body.Kind, body.Local)
	}
}
