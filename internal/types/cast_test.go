package types

import "testing"

func TestCanCastNumericAndDistinct(t *testing.T) {
	in := NewInterner()
	i32 := in.Int(Width32)
	f64 := in.Float(Width64)
	d := in.Distinct(i32)

	if !in.CanCast(i32, f64) {
		t.Fatalf("i32 should cast to f64")
	}
	if !in.CanCast(d, i32) || !in.CanCast(i32, d) {
		t.Fatalf("a distinct type should cast to and from its subtype")
	}
	if in.CanCast(in.Builtins().Bool, in.Builtins().String) {
		t.Fatalf("bool must not cast to string")
	}
}

func TestCanCastPointerFamilies(t *testing.T) {
	in := NewInterner()
	i32 := in.Int(Width32)
	p := in.Pointer(false, i32)
	raw := in.RawPtr(false)
	usize := in.Uint(WidthPtr)

	if !in.CanCast(p, raw) || !in.CanCast(raw, p) {
		t.Fatalf("^T and rawptr should cast both ways")
	}
	if !in.CanCast(p, usize) || !in.CanCast(usize, raw) {
		t.Fatalf("pointers and usize should pun through casts")
	}
	arr := in.Array(false, 3, i32)
	if !in.CanCast(arr, in.Slice(i32)) {
		t.Fatalf("[3]i32 should cast to []i32")
	}
	if in.CanCast(arr, in.Slice(in.Float(Width32))) {
		t.Fatalf("[3]i32 must not cast to a slice of a different element type")
	}
}
