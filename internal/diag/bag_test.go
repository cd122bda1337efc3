package diag

import (
	"testing"

	"capy/internal/source"
)

func TestBagHasErrorsOnlyCountsErrorSeverity(t *testing.T) {
	b := NewBag()
	b.Add(New(OutOfRangeIntLiteral, source.Span{}, "too big").WithSeverity(Warning))
	if b.HasErrors() {
		t.Fatalf("a warning-only bag should not report errors")
	}
	b.Add(New(TypeMismatch, source.Span{}, "mismatch"))
	if !b.HasErrors() {
		t.Fatalf("expected HasErrors true once an Error diagnostic is added")
	}
}

func TestBagByKindFilters(t *testing.T) {
	b := NewBag()
	b.Add(New(MissingArg, source.Span{}, "a"))
	b.Add(New(ExtraArg, source.Span{}, "b"))
	b.Add(New(MissingArg, source.Span{}, "c"))
	if got := len(b.ByKind(MissingArg)); got != 2 {
		t.Fatalf("ByKind(MissingArg) returned %d items, want 2", got)
	}
}
