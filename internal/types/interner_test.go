package types

import "testing"

func TestBuiltinsDistinct(t *testing.T) {
	in := NewInterner()
	b := in.Builtins()
	if b.Bool == b.Void || b.Void == NoTypeID {
		t.Fatalf("builtins not distinct/initialized")
	}
}

func TestPrimitiveInterningIsStable(t *testing.T) {
	in := NewInterner()
	a := in.Uint(Width32)
	b := in.Uint(Width32)
	if a != b {
		t.Fatalf("expected u32 to intern to the same TypeID twice, got %d and %d", a, b)
	}
	c := in.Uint(Width64)
	if a == c {
		t.Fatalf("expected u32 != u64")
	}
}

func TestPointerInterning(t *testing.T) {
	in := NewInterner()
	u32 := in.Uint(Width32)
	p1 := in.Pointer(false, u32)
	p2 := in.Pointer(false, u32)
	pMut := in.Pointer(true, u32)
	if p1 != p2 {
		t.Fatalf("^u32 should intern identically")
	}
	if p1 == pMut {
		t.Fatalf("^u32 and ^mut u32 must differ")
	}
}

func TestNominalStructsAreNeverEqual(t *testing.T) {
	in := NewInterner()
	u32 := in.Uint(Width32)
	members := []StructField{{Name: 1, Type: u32, HasDefault: false}}
	s1 := in.NewStruct(false, members)
	s2 := in.NewStruct(false, members)
	if s1 == s2 {
		t.Fatalf("two separately declared structs with identical members must not be equal")
	}
}

func TestArrayAnonymousSizeAndElemTracked(t *testing.T) {
	in := NewInterner()
	i32 := in.Int(Width32)
	arr := in.Array(true, 7, i32)
	tt := in.MustLookup(arr)
	if tt.ArraySize != 7 || tt.Elem != i32 || !tt.Anonymous {
		t.Fatalf("array fields not preserved: %+v", tt)
	}
}

func TestInternFunctionDedupesBySignature(t *testing.T) {
	in := NewInterner()
	i32 := in.Int(Width32)
	f1 := in.InternFunction([]TypeID{i32}, i32, false)
	f2 := in.InternFunction([]TypeID{i32}, i32, false)
	if f1 != f2 {
		t.Fatalf("identical function signatures should intern to the same TypeID")
	}
	f3 := in.InternFunction([]TypeID{i32}, in.Builtins().Void, false)
	if f1 == f3 {
		t.Fatalf("different return types must produce different function types")
	}
}

func TestEnumVariantsCarryEnumUID(t *testing.T) {
	in := NewInterner()
	enumID := in.NewEnum([]VariantSpec{
		{Name: 1, Payload: NoTypeID, Discriminant: 0},
		{Name: 2, Payload: NoTypeID, Discriminant: 5},
	})
	info, ok := in.EnumInfo(enumID)
	if !ok || len(info.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %+v", info)
	}
	enumTy := in.MustLookup(enumID)
	for _, v := range info.Variants {
		vi, ok := in.VariantInfo(v)
		if !ok || vi.EnumUID != enumTy.UID {
			t.Fatalf("variant does not carry its enum's UID")
		}
	}
}

func TestSetEnumFqnRegistersCanonicalID(t *testing.T) {
	in := NewInterner()
	enumID := in.NewEnum([]VariantSpec{{Name: 1, Discriminant: 0}})
	in.SetEnumFqn(enumID, Fqn{File: 10, Name: 20})
	enumTy := in.MustLookup(enumID)
	got, ok := in.EnumByUID(enumTy.UID)
	if !ok || got != enumID {
		t.Fatalf("EnumByUID(%d) = %d, %v; want %d, true", enumTy.UID, got, ok, enumID)
	}
}
