package types

import "testing"

func TestBinaryResultWeakLiteralWidensToConcrete(t *testing.T) {
	in := NewInterner()
	weak := in.Builtins().IntWeak
	i64 := in.Int(Width64)
	maxTy, resultTy, ok := in.BinaryResult(Add, weak, i64)
	if !ok || maxTy != i64 || resultTy != i64 {
		t.Fatalf("Add(weak, i64) = %d, %d, %v; want %d, %d, true", maxTy, resultTy, ok, i64, i64)
	}
}

func TestBinaryResultConcreteMismatchFails(t *testing.T) {
	in := NewInterner()
	i32 := in.Int(Width32)
	u32 := in.Uint(Width32)
	_, _, ok := in.BinaryResult(Add, i32, u32)
	if ok {
		t.Fatalf("i32 + u32 should require an explicit cast, not unify implicitly")
	}
}

func TestBinaryResultComparisonYieldsBool(t *testing.T) {
	in := NewInterner()
	i32 := in.Int(Width32)
	maxTy, resultTy, ok := in.BinaryResult(Lt, i32, i32)
	if !ok || maxTy != i32 || resultTy != in.Builtins().Bool {
		t.Fatalf("Lt(i32,i32) = %d,%d,%v", maxTy, resultTy, ok)
	}
}

func TestBinaryResultLogicalRequiresBool(t *testing.T) {
	in := NewInterner()
	i32 := in.Int(Width32)
	_, _, ok := in.BinaryResult(LogicalAnd, i32, i32)
	if ok {
		t.Fatalf("&& should require bool operands")
	}
	b := in.Builtins().Bool
	maxTy, resultTy, ok := in.BinaryResult(LogicalOr, b, b)
	if !ok || maxTy != b || resultTy != b {
		t.Fatalf("bool || bool should unify to bool")
	}
}
