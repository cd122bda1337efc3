package types

import (
	"fmt"
	"strconv"

	"capy/internal/intern"
)

// Label renders a human-readable name for id, resolving interned names
// through names. Used only for diagnostic messages and debug dumps — never
// consulted for type identity.
func Label(in *Interner, names *intern.Interner, id TypeID) string {
	return label(in, names, id, 0)
}

func label(in *Interner, names *intern.Interner, id TypeID, depth int) string {
	if depth > 32 {
		return "..." // guards against accidental cycles while printing
	}
	t, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch t.Kind {
	case KindUnknown:
		return "<unknown>"
	case KindNotYetResolved:
		return "<not yet resolved>"
	case KindNoEval:
		return "!"
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindAny:
		return "any"
	case KindType:
		return "type"
	case KindIInt:
		return intLabel("i", t.Width)
	case KindUInt:
		return intLabel("u", t.Width)
	case KindFloat:
		return intLabel("f", t.Width)
	case KindPointer:
		if t.Mutable {
			return "^mut " + label(in, names, t.Elem, depth+1)
		}
		return "^" + label(in, names, t.Elem, depth+1)
	case KindRawPtr:
		if t.Mutable {
			return "rawptr mut"
		}
		return "rawptr"
	case KindRawSlice:
		return "rawslice"
	case KindArray:
		return "[" + strconv.FormatUint(uint64(t.ArraySize), 10) + "]" + label(in, names, t.Elem, depth+1)
	case KindSlice:
		return "[]" + label(in, names, t.Elem, depth+1)
	case KindDistinct:
		return "distinct " + label(in, names, t.Elem, depth+1)
	case KindFile:
		path, _ := names.Lookup(t.File)
		return "file(" + path + ")"
	case KindFunction:
		fi := in.fns[t.Payload]
		s := "("
		for i, p := range fi.Params {
			if i > 0 {
				s += ", "
			}
			s += label(in, names, p, depth+1)
		}
		return s + ") -> " + label(in, names, fi.Result, depth+1)
	case KindStruct:
		info := in.structs[t.Payload]
		if info.HasFqn {
			n, _ := names.Lookup(info.Fqn.Name)
			return n
		}
		return "struct{...}"
	case KindEnum:
		info := in.enums[t.Payload]
		if info.HasFqn {
			n, _ := names.Lookup(info.Fqn.Name)
			return n
		}
		return "enum{...}"
	case KindVariant:
		vi := in.variants[t.Payload]
		n, _ := names.Lookup(vi.Name)
		return n
	default:
		return fmt.Sprintf("<kind %d>", t.Kind)
	}
}

func intLabel(prefix string, w Width) string {
	switch w {
	case WidthWeak:
		return prefix + "{untyped}"
	case WidthPtr:
		if prefix == "f" {
			return "f64"
		}
		return prefix + "size"
	default:
		return prefix + strconv.Itoa(int(w))
	}
}
