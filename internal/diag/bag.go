package diag

// Bag collects diagnostics for one phase run. Every phase produces a
// (possibly empty) Bag rather than failing outright; only the syntax phase
// can abort outright, everything downstream always produces a result.
type Bag struct {
	items []*Diagnostic
}

// NewBag returns an empty Bag.
func NewBag() *Bag { return &Bag{} }

// Add appends d, ignoring nil.
func (b *Bag) Add(d *Diagnostic) {
	if d != nil {
		b.items = append(b.items, d)
	}
}

// Items returns the collected diagnostics in emission order.
func (b *Bag) Items() []*Diagnostic { return b.items }

// Len reports how many diagnostics are collected.
func (b *Bag) Len() int { return len(b.items) }

// HasErrors reports whether any diagnostic is at Error severity.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// ByKind filters diagnostics to a single Kind, for test assertions.
func (b *Bag) ByKind(k Kind) []*Diagnostic {
	var out []*Diagnostic
	for _, d := range b.items {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// Merge appends another Bag's items onto b.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}
