package types

// HasDefault reports whether type id has a default value, so that a
// declaration with no initializer (`x : T;`) or an empty `.{}` literal can
// stand for it. A named struct literal does not consult this: it may omit
// only members whose StructField.HasDefault is set. Primitives
// default to their zero value; structs default iff every member either
// carries its own default or has an explicit per-field initializer, tracked
// by the caller via StructField.HasDefault; arrays default iff their
// element type does.
func (in *Interner) HasDefault(id TypeID) bool {
	t, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch t.Kind {
	case KindBool, KindChar, KindString, KindIInt, KindUInt, KindFloat,
		KindPointer, KindRawPtr, KindRawSlice, KindSlice, KindEnum, KindVoid:
		return true
	case KindArray:
		return in.HasDefault(t.Elem)
	case KindStruct:
		info, _ := in.StructInfo(id)
		for _, m := range info.Members {
			if !m.HasDefault && !in.HasDefault(m.Type) {
				return false
			}
		}
		return true
	case KindDistinct:
		return in.HasDefault(t.Elem)
	default:
		return false
	}
}
