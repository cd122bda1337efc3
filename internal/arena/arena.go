// Package arena provides typed, append-only arenas addressed by opaque
// indices. Handles are stable for the life of the arena that produced them
// and are never reused across arenas — exactly the contract Bodies needs:
// handles stable for the life of the file, never reused across files.
package arena

// Idx is an opaque handle into an Arena[T]. The zero value, NoIdx, never
// names a real entry: arenas are 1-indexed so a zeroed struct field
// unambiguously means "absent".
type Idx[T any] uint32

// NoIdx is the sentinel "absent" handle, shared by every Idx[T] instantiation.
const NoIdx = 0

// IsValid reports whether idx was actually produced by an Alloc call.
func (idx Idx[T]) IsValid() bool { return idx != NoIdx }

// Arena is a typed append-only store. Entries are boxed individually (one
// *T per slot) so a Get result stays a
// stable pointer into the same backing value even as the index slice
// itself grows and reallocates.
type Arena[T any] struct {
	items []*T // items[0] is an unused sentinel; real entries start at 1
}

// New returns an empty Arena with an optional capacity hint.
func New[T any](capHint int) *Arena[T] {
	items := make([]*T, 1, capHint+1) // reserve slot 0
	return &Arena[T]{items: items}
}

// Alloc appends value and returns its stable handle.
func (a *Arena[T]) Alloc(value T) Idx[T] {
	idx := Idx[T](len(a.items))
	v := value
	a.items = append(a.items, &v)
	return idx
}

// Get dereferences idx. It panics on an invalid or out-of-range handle,
// since a handle that didn't come from this arena's Alloc is a caller bug.
func (a *Arena[T]) Get(idx Idx[T]) *T {
	if int(idx) <= 0 || int(idx) >= len(a.items) {
		panic("arena: invalid index")
	}
	return a.items[idx]
}

// Set overwrites the value at idx in place.
func (a *Arena[T]) Set(idx Idx[T], value T) {
	if int(idx) <= 0 || int(idx) >= len(a.items) {
		panic("arena: invalid index")
	}
	*a.items[idx] = value
}

// Len reports how many entries have been allocated.
func (a *Arena[T]) Len() int { return len(a.items) - 1 }

// All iterates every allocated (idx, value) pair in allocation order.
func (a *Arena[T]) All(yield func(Idx[T], T) bool) {
	for i := 1; i < len(a.items); i++ {
		if !yield(Idx[T](i), *a.items[i]) {
			return
		}
	}
}
