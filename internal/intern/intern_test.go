package intern

import "testing"

func TestInternStability(t *testing.T) {
	in := New()
	a := in.Intern("foo")
	b := in.Intern("bar")
	c := in.Intern("foo")
	if a != c {
		t.Fatalf("expected foo to reuse its ID, got %d and %d", a, c)
	}
	if a == b {
		t.Fatalf("expected distinct IDs for distinct strings")
	}
	s, ok := in.Lookup(a)
	if !ok || s != "foo" {
		t.Fatalf("Lookup(%d) = %q, %v; want foo, true", a, s, ok)
	}
}

func TestNoIDIsEmptyString(t *testing.T) {
	in := New()
	s, ok := in.Lookup(NoID)
	if !ok || s != "" {
		t.Fatalf("NoID should resolve to the empty string, got %q, %v", s, ok)
	}
}

func TestMustLookupPanicsOnUnknown(t *testing.T) {
	in := New()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on invalid ID")
		}
	}()
	in.MustLookup(ID(999))
}
