package types

// CanCast reports whether an explicit `value as T` cast from one type to
// the other is meaningful. Casting is the only way across a Distinct
// boundary: both sides are unwrapped to their subtypes first, so
// `distinct i32` casts to and from i32 (and anything i32 casts to), while
// plain assignment between the two stays rejected.
func (in *Interner) CanCast(from, to TypeID) bool {
	from = in.stripDistinct(from)
	to = in.stripDistinct(to)
	if from == to {
		return true
	}
	tf, okf := in.Lookup(from)
	tt, okt := in.Lookup(to)
	if !okf || !okt {
		return false
	}
	// Error-recovery sentinels cast freely so one bad expression doesn't
	// cascade a second diagnostic out of every cast above it.
	if isSentinelKind(tf.Kind) || isSentinelKind(tt.Kind) {
		return true
	}

	switch tf.Kind {
	case KindIInt, KindUInt, KindFloat, KindChar, KindBool:
		switch tt.Kind {
		case KindIInt, KindUInt, KindFloat, KindChar, KindBool:
			return true
		case KindRawPtr:
			// usize-to-pointer punning, ints only.
			return tf.Kind == KindIInt || tf.Kind == KindUInt
		}
		return false

	case KindPointer:
		switch tt.Kind {
		case KindPointer, KindRawPtr:
			return true
		case KindIInt, KindUInt:
			return true
		}
		return false

	case KindRawPtr:
		switch tt.Kind {
		case KindPointer, KindRawPtr, KindIInt, KindUInt:
			return true
		}
		return false

	case KindArray:
		// A fixed array casts to a slice of the same element type.
		return tt.Kind == KindSlice && tt.Elem == tf.Elem

	case KindSlice:
		return tt.Kind == KindRawSlice
	case KindRawSlice:
		return tt.Kind == KindSlice

	case KindEnum:
		// An enum value casts to its discriminant.
		return tt.Kind == KindIInt || tt.Kind == KindUInt

	default:
		return false
	}
}

func (in *Interner) stripDistinct(id TypeID) TypeID {
	for {
		t, ok := in.Lookup(id)
		if !ok || t.Kind != KindDistinct {
			return id
		}
		id = t.Elem
	}
}

func isSentinelKind(k Kind) bool {
	return k == KindUnknown || k == KindNotYetResolved || k == KindNoEval
}
