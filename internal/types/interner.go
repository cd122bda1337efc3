package types

import (
	"fmt"

	"fortio.org/safecast"

	"capy/internal/source"
)

// Builtins are the TypeIDs of the fixed primitive set, computed once.
type Builtins struct {
	Unknown        TypeID
	NotYetResolved TypeID
	NoEval         TypeID
	Void           TypeID
	Bool           TypeID
	Char           TypeID
	String         TypeID
	Any            TypeID
	Type           TypeID
	IntWeak        TypeID // UInt(0) — the literal integer type before widening
	FloatWeak      TypeID // Float(0)
	RawSlice       TypeID
}

// Interner canonicalizes Type descriptors into stable TypeIDs.
//
// Structural kinds (primitives, Pointer, Array, Slice, RawPtr, Function)
// are deduplicated by content. Nominal kinds (Struct, Enum, Variant,
// Distinct) are deduplicated by UID alone, since two declarations that
// happen to look alike are still different types.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins

	structs  []StructInfo
	enums    []EnumInfo
	variants []VariantInfo
	fns      []FnInfo

	nextUID uint32

	// enumUIDs maps an enum's UID (as stored on each of its Variants) to
	// the enum's canonical TypeID. NewEnum registers the entry and
	// SetEnumFqn registers it again; Variants themselves are not rewritten.
	enumUIDs map[uint32]TypeID
}

type typeKey struct {
	Kind      Kind
	Elem      TypeID
	Width     Width
	Mutable   bool
	ArraySize uint32
	Anonymous bool
	UID       uint32
	File      TypeID // reused field slot; holds source.FileName cast to TypeID-width
}

// NewInterner returns an Interner pre-seeded with the builtin primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:    make(map[typeKey]TypeID, 64),
		enumUIDs: make(map[uint32]TypeID),
	}
	in.structs = append(in.structs, StructInfo{})
	in.enums = append(in.enums, EnumInfo{})
	in.variants = append(in.variants, VariantInfo{})
	in.fns = append(in.fns, FnInfo{})

	in.builtins.Unknown = in.intern(Type{Kind: KindUnknown})
	in.builtins.NotYetResolved = in.intern(Type{Kind: KindNotYetResolved})
	in.builtins.NoEval = in.intern(Type{Kind: KindNoEval})
	in.builtins.Void = in.intern(Type{Kind: KindVoid})
	in.builtins.Bool = in.intern(Type{Kind: KindBool})
	in.builtins.Char = in.intern(Type{Kind: KindChar})
	in.builtins.String = in.intern(Type{Kind: KindString})
	in.builtins.Any = in.intern(Type{Kind: KindAny})
	in.builtins.Type = in.intern(Type{Kind: KindType})
	in.builtins.IntWeak = in.intern(Type{Kind: KindUInt, Width: WidthWeak})
	in.builtins.FloatWeak = in.intern(Type{Kind: KindFloat, Width: WidthWeak})
	in.builtins.RawSlice = in.intern(Type{Kind: KindRawSlice})
	return in
}

// Builtins returns the primitive TypeIDs.
func (in *Interner) Builtins() Builtins { return in.builtins }

func (in *Interner) key(t Type) typeKey {
	return typeKey{
		Kind: t.Kind, Elem: t.Elem, Width: t.Width, Mutable: t.Mutable,
		ArraySize: t.ArraySize, Anonymous: t.Anonymous, UID: t.UID,
		File: TypeID(t.File),
	}
}

// intern is the structural path: same Kind + fields -> same TypeID.
// Function types never take this path (see InternFunction).
func (in *Interner) intern(t Type) TypeID {
	k := in.key(t)
	if id, ok := in.index[k]; ok {
		return id
	}
	return in.internRaw(t)
}

func (in *Interner) internRaw(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("types: arena overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	in.index[in.key(t)] = id
	return id
}

// Lookup returns the descriptor behind id.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics on an invalid TypeID.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// freshUID mints a new nominal identity for a struct/enum/distinct/variant
// declaration.
func (in *Interner) freshUID() uint32 {
	in.nextUID++
	return in.nextUID
}

// --- Primitive / compound constructors -------------------------------------

func (in *Interner) Int(w Width) TypeID   { return in.intern(Type{Kind: KindIInt, Width: w}) }
func (in *Interner) Uint(w Width) TypeID  { return in.intern(Type{Kind: KindUInt, Width: w}) }
func (in *Interner) Float(w Width) TypeID { return in.intern(Type{Kind: KindFloat, Width: w}) }

func (in *Interner) Pointer(mut bool, sub TypeID) TypeID {
	return in.intern(Type{Kind: KindPointer, Mutable: mut, Elem: sub})
}

func (in *Interner) RawPtr(mut bool) TypeID {
	return in.intern(Type{Kind: KindRawPtr, Mutable: mut})
}

func (in *Interner) Array(anonymous bool, size uint32, sub TypeID) TypeID {
	return in.intern(Type{Kind: KindArray, Anonymous: anonymous, ArraySize: size, Elem: sub})
}

func (in *Interner) Slice(sub TypeID) TypeID {
	return in.intern(Type{Kind: KindSlice, Elem: sub})
}

func (in *Interner) Distinct(sub TypeID) TypeID {
	return in.internRaw(Type{Kind: KindDistinct, UID: in.freshUID(), Elem: sub})
}

func (in *Interner) File(name source.FileName) TypeID {
	return in.intern(Type{Kind: KindFile, File: name})
}

// --- Function (structural, but variable arity: linear-scan dedupe) --------

// InternFunction finds or creates a Function type with the given signature.
func (in *Interner) InternFunction(params []TypeID, result TypeID, variadic bool) TypeID {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		t := in.types[id]
		if t.Kind != KindFunction {
			continue
		}
		fi := in.fns[t.Payload]
		if fi.Result == result && fi.Variadic == variadic && sameIDs(fi.Params, params) {
			return id
		}
	}
	payload := uint32(len(in.fns))
	in.fns = append(in.fns, FnInfo{Params: append([]TypeID(nil), params...), Result: result, Variadic: variadic})
	return in.internRaw(Type{Kind: KindFunction, Payload: payload})
}

func sameIDs(a, b []TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (in *Interner) FnInfo(id TypeID) (FnInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindFunction {
		return FnInfo{}, false
	}
	return in.fns[t.Payload], true
}

// --- Struct / Enum / Variant (nominal) -------------------------------------

// NewStruct mints a fresh nominal struct type. Two calls always produce
// distinct TypeIDs, even with identical members — nominal identity is the
// point.
func (in *Interner) NewStruct(anonymous bool, members []StructField) TypeID {
	uid := in.freshUID()
	payload := uint32(len(in.structs))
	in.structs = append(in.structs, StructInfo{Members: append([]StructField(nil), members...)})
	return in.internRaw(Type{Kind: KindStruct, UID: uid, Anonymous: anonymous, Payload: payload})
}

// StructInfo returns the member table for a Struct TypeID.
func (in *Interner) StructInfo(id TypeID) (StructInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindStruct {
		return StructInfo{}, false
	}
	return in.structs[t.Payload], true
}

// SetStructFqn attaches a fully qualified name to a struct after its
// top-level binding is indexed.
func (in *Interner) SetStructFqn(id TypeID, fqn Fqn) {
	t := in.MustLookup(id)
	if t.Kind != KindStruct {
		return
	}
	in.structs[t.Payload].Fqn = fqn
	in.structs[t.Payload].HasFqn = true
}

// NewEnum mints a fresh nominal enum type together with its variants. Each
// entry in variantSpecs becomes one KindVariant TypeID whose EnumUID points
// back at the enum.
type VariantSpec struct {
	Name         source.Name
	Payload      TypeID // NoTypeID if the variant carries no payload
	Discriminant int64
}

func (in *Interner) NewEnum(specs []VariantSpec) TypeID {
	uid := in.freshUID()
	variantIDs := make([]TypeID, len(specs))
	for i, spec := range specs {
		vPayload := uint32(len(in.variants))
		in.variants = append(in.variants, VariantInfo{EnumUID: uid, Name: spec.Name, Discriminant: spec.Discriminant})
		variantIDs[i] = in.internRaw(Type{Kind: KindVariant, UID: in.freshUID(), Elem: spec.Payload, Payload: vPayload})
	}
	payload := uint32(len(in.enums))
	in.enums = append(in.enums, EnumInfo{Variants: variantIDs})
	enumID := in.internRaw(Type{Kind: KindEnum, UID: uid, Payload: payload})
	in.enumUIDs[uid] = enumID
	return enumID
}

// EnumInfo returns the variant list for an Enum TypeID.
func (in *Interner) EnumInfo(id TypeID) (EnumInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindEnum {
		return EnumInfo{}, false
	}
	return in.enums[t.Payload], true
}

// VariantInfo returns the metadata for a Variant TypeID.
func (in *Interner) VariantInfo(id TypeID) (VariantInfo, bool) {
	t, ok := in.Lookup(id)
	if !ok || t.Kind != KindVariant {
		return VariantInfo{}, false
	}
	return in.variants[t.Payload], true
}

// SetEnumFqn attaches a fully qualified name to an enum after its top-level
// binding is indexed. Once the enum's Fqn is known, every already-interned
// Variant belonging to it is reachable through enumUIDs for callers that
// need the canonical enum TypeID from a UID alone.
func (in *Interner) SetEnumFqn(id TypeID, fqn Fqn) {
	t := in.MustLookup(id)
	if t.Kind != KindEnum {
		return
	}
	in.enums[t.Payload].Fqn = fqn
	in.enums[t.Payload].HasFqn = true
	in.enumUIDs[t.UID] = id
}

// EnumByUID resolves an enum UID (as stored on a Variant) back to its
// canonical TypeID.
func (in *Interner) EnumByUID(uid uint32) (TypeID, bool) {
	id, ok := in.enumUIDs[uid]
	return id, ok
}
