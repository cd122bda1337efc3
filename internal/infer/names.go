package infer

import (
	"capy/internal/source"
	"capy/internal/types"
)

// primitiveFromName resolves a keyword spelling (e.g. "i32", "usize") to a
// builtin or constructed primitive TypeID. It needs the Engine's name
// interner to turn a source.Name back into text, since lowering leaves
// EPrimitiveType carrying only the bare interned name.
func (eng *Engine) primitiveFromName(name source.Name) (types.TypeID, bool) {
	if eng.Names == nil {
		return types.NoTypeID, false
	}
	spelling, ok := eng.Names.Lookup(name)
	if !ok {
		return types.NoTypeID, false
	}
	b := eng.Types.Builtins()
	switch spelling {
	case "void":
		return b.Void, true
	case "bool":
		return b.Bool, true
	case "char":
		return b.Char, true
	case "string":
		return b.String, true
	case "any":
		return b.Any, true
	case "type":
		return b.Type, true

	case "i8":
		return eng.Types.Int(types.Width8), true
	case "i16":
		return eng.Types.Int(types.Width16), true
	case "i32":
		return eng.Types.Int(types.Width32), true
	case "i64":
		return eng.Types.Int(types.Width64), true
	case "i128":
		return eng.Types.Int(types.Width128), true
	case "isize":
		return eng.Types.Int(types.WidthPtr), true

	case "u8":
		return eng.Types.Uint(types.Width8), true
	case "u16":
		return eng.Types.Uint(types.Width16), true
	case "u32":
		return eng.Types.Uint(types.Width32), true
	case "u64":
		return eng.Types.Uint(types.Width64), true
	case "u128":
		return eng.Types.Uint(types.Width128), true
	case "usize":
		return eng.Types.Uint(types.WidthPtr), true

	case "f32":
		return eng.Types.Float(types.Width32), true
	case "f64":
		return eng.Types.Float(types.Width64), true

	default:
		return types.NoTypeID, false
	}
}

// builtinMemberName reports whether name spells one of the built-in
// aggregate members `.len`, `.ptr`, `.ty` that every Array/Slice/RawSlice
// (and, for `.ty`, any expression at all) exposes without a struct
// declaration backing it.
func (eng *Engine) builtinMemberName(name source.Name) (string, bool) {
	if eng.Names == nil {
		return "", false
	}
	spelling, ok := eng.Names.Lookup(name)
	if !ok {
		return "", false
	}
	switch spelling {
	case "len", "ptr", "ty":
		return spelling, true
	default:
		return "", false
	}
}
