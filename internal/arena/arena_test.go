package arena

import "testing"

func TestAllocGetStable(t *testing.T) {
	a := New[string](0)
	x := a.Alloc("x")
	y := a.Alloc("y")
	if x == y {
		t.Fatalf("expected distinct handles")
	}
	if got := a.Get(x); *got != "x" {
		t.Fatalf("Get(x) = %q, want x", *got)
	}
	if got := a.Get(y); *got != "y" {
		t.Fatalf("Get(y) = %q, want y", *got)
	}
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
}

func TestNoIdxInvalid(t *testing.T) {
	var idx Idx[int]
	if idx.IsValid() {
		t.Fatalf("zero Idx should be invalid")
	}
	if idx != NoIdx {
		t.Fatalf("zero Idx should equal NoIdx")
	}
}

func TestGetPanicsOnInvalid(t *testing.T) {
	a := New[int](0)
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	a.Get(NoIdx)
}

func TestAllVisitsInOrder(t *testing.T) {
	a := New[int](0)
	a.Alloc(10)
	a.Alloc(20)
	a.Alloc(30)
	var got []int
	a.All(func(_ Idx[int], v int) bool {
		got = append(got, v)
		return true
	})
	if len(got) != 3 || got[0] != 10 || got[2] != 30 {
		t.Fatalf("All produced %v", got)
	}
}
