package comptime

import (
	"testing"

	"capy/internal/bignum"
	"capy/internal/cst"
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/source"
)

func lower(t *testing.T, top *cst.Expr) *hir.Bodies {
	t.Helper()
	file := &cst.File{
		Name: source.FileName(1),
		Items: []*cst.Item{
			{Name: source.Name(1), BindKind: cst.BindConst, Value: top},
		},
	}
	diags := diag.NewBag()
	b := hir.Lower(file, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected lowering errors: %v", diags.Items())
	}
	return b
}

func TestEvalFoldsIntegerArithmetic(t *testing.T) {
	// (2 + 3) * 4
	add := &cst.Expr{Kind: cst.EBinary, Op: cst.OpAdd,
		A: &cst.Expr{Kind: cst.EIntLit, IntVal: 2}, B: &cst.Expr{Kind: cst.EIntLit, IntVal: 3}}
	mul := &cst.Expr{Kind: cst.EBinary, Op: cst.OpMul, A: add, B: &cst.Expr{Kind: cst.EIntLit, IntVal: 4}}
	b := lower(t, mul)

	res, err := Eval(b, b.Items[0].Value, Env{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Kind != RInt {
		t.Fatalf("expected RInt, got %v", res.Kind)
	}
	want := bignum.IntFromUint64(20)
	if res.Int.Cmp(want) != 0 {
		t.Fatalf("got %s, want 20", bignum.FormatInt(res.Int))
	}
}

func TestEvalFoldsComparisonToBool(t *testing.T) {
	cmp := &cst.Expr{Kind: cst.EBinary, Op: cst.OpLt,
		A: &cst.Expr{Kind: cst.EIntLit, IntVal: 2}, B: &cst.Expr{Kind: cst.EIntLit, IntVal: 3}}
	b := lower(t, cmp)

	res, err := Eval(b, b.Items[0].Value, Env{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Kind != RBool || !res.Bool {
		t.Fatalf("expected RBool(true), got %+v", res)
	}
}

func TestEvalFoldsBlockWithLets(t *testing.T) {
	// { x := 10; y := x * 2; y + 1 }
	block := &cst.Expr{
		Kind: cst.EBlock,
		Stmts: []*cst.Stmt{
			{Kind: cst.StmtLet, Name: source.Name(10), BindKind: cst.BindVarInferred, Value: &cst.Expr{Kind: cst.EIntLit, IntVal: 10}},
			{Kind: cst.StmtLet, Name: source.Name(11), BindKind: cst.BindVarInferred, Value: &cst.Expr{
				Kind: cst.EBinary, Op: cst.OpMul,
				A: &cst.Expr{Kind: cst.EIdent, Name: source.Name(10)},
				B: &cst.Expr{Kind: cst.EIntLit, IntVal: 2},
			}},
		},
		Tail: &cst.Expr{Kind: cst.EBinary, Op: cst.OpAdd,
			A: &cst.Expr{Kind: cst.EIdent, Name: source.Name(11)}, B: &cst.Expr{Kind: cst.EIntLit, IntVal: 1}},
	}
	b := lower(t, block)

	res, err := Eval(b, b.Items[0].Value, Env{})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	want := bignum.IntFromUint64(21)
	if res.Kind != RInt || res.Int.Cmp(want) != 0 {
		t.Fatalf("got %+v, want RInt(21)", res)
	}
}

func TestEvalResolvesGlobalViaEnv(t *testing.T) {
	ref := &cst.Expr{Kind: cst.EIdent, Name: source.Name(77)}
	b := lower(t, ref)

	env := Env{ResolveGlobal: func(name source.Name) (Result, error) {
		if name == source.Name(77) {
			return IntResult(bignum.IntFromUint64(5)), nil
		}
		t.Fatalf("unexpected global lookup for %v", name)
		return Result{}, nil
	}}
	res, err := Eval(b, b.Items[0].Value, env)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if res.Kind != RInt || res.Int.Cmp(bignum.IntFromUint64(5)) != 0 {
		t.Fatalf("got %+v, want RInt(5)", res)
	}
}

func TestEvalRejectsNonConstantCall(t *testing.T) {
	call := &cst.Expr{Kind: cst.ECall, A: &cst.Expr{Kind: cst.EIdent, Name: source.Name(1)}}
	b := lower(t, call)

	if _, err := Eval(b, b.Items[0].Value, Env{}); err == nil {
		t.Fatalf("expected an error folding a call expression")
	}
}
