// Package types is the interned type universe. Two Types
// are pointer-equal (same TypeID) iff they are structurally equal, with
// nominal identity (a fresh UID minted at declaration time) substituting for
// structural comparison on Struct, Enum, Variant, and Distinct.
package types

import "capy/internal/source"

// TypeID names an interned Type. Equality is integer equality.
type TypeID uint32

// NoTypeID is the reserved "no type" sentinel; slot 0 in every Interner.
const NoTypeID TypeID = 0

// Kind enumerates the shapes a Type can take.
type Kind uint8

const (
	// KindInvalid is the reserved zero kind backing NoTypeID.
	KindInvalid Kind = iota

	// Sentinels.
	KindUnknown        // error recovery
	KindNotYetResolved // cycle-breaker anchor
	KindNoEval         // expression diverges, never produces a value

	// Primitives.
	KindVoid
	KindBool
	KindChar
	KindString
	KindIInt  // signed integer, width in Type.Width (0 = weak)
	KindUInt  // unsigned integer, width in Type.Width (0 = weak)
	KindFloat // float, width in Type.Width (0 = weak)

	// Compound.
	KindPointer  // ^T or ^mut T
	KindArray    // [N]T, possibly anonymous
	KindSlice    // []T
	KindRawPtr   // rawptr / rawptr mut
	KindRawSlice // rawslice
	KindStruct   // struct { ... }
	KindEnum     // enum { ... }
	KindVariant  // one member of an Enum
	KindFunction // (params) -> return
	KindDistinct // distinct T

	KindFile // the File(FileName) pseudo-type yielded by import(...)
	KindType // the type of a type-expression itself
	KindAny  // any
)

// Width is an integer/float bit width. 0 means "weak, inferable"; 255 means
// "platform pointer width" (usize/isize). Valid widths are
// {0, 8, 16, 32, 64, 128, 255}.
type Width uint16

const (
	WidthWeak Width = 0
	Width8    Width = 8
	Width16   Width = 16
	Width32   Width = 32
	Width64   Width = 64
	Width128  Width = 128
	WidthPtr  Width = 255
)

// Type is the structural descriptor behind one TypeID.
//
// Which fields are meaningful depends on Kind; see the Kind constants above.
type Type struct {
	Kind Kind

	// IInt / UInt / Float.
	Width Width

	// Pointer / RawPtr.
	Mutable bool

	// Pointer.sub, Array.sub, Slice.sub, Distinct.sub, Variant.sub (payload
	// type, NoTypeID if the variant carries no payload).
	Elem TypeID

	// Array.
	ArraySize uint32
	Anonymous bool // Array.anonymous / Struct.anonymous (for {} literals)

	// Nominal identity for Struct / Enum / Variant / Distinct. Zero for
	// everything else. Two nominal types are equal iff their UIDs match.
	UID uint32

	// Index into the Interner's side table for this Kind (StructInfo,
	// EnumInfo, VariantInfo, or FnInfo). Unused (0) otherwise.
	Payload uint32

	// KindFile.
	File source.FileName
}

// StructField describes one member of a struct type.
type StructField struct {
	Name source.Name
	Type TypeID
	// HasDefault reports whether a value can be omitted for this field in a
	// struct literal.
	HasDefault bool
}

// StructInfo is the side table entry for KindStruct.
type StructInfo struct {
	Fqn     Fqn // zero Fqn for anonymous/local struct literals
	HasFqn  bool
	Members []StructField
}

// EnumInfo is the side table entry for KindEnum.
type EnumInfo struct {
	Fqn      Fqn
	HasFqn   bool
	Variants []TypeID // each a KindVariant TypeID
}

// VariantInfo is the side table entry for KindVariant.
type VariantInfo struct {
	EnumUID      uint32
	Name         source.Name
	Discriminant int64
}

// FnInfo is the side table entry for KindFunction.
type FnInfo struct {
	Params   []TypeID
	Result   TypeID
	Variadic bool // last param's declared type is the element type of a varargs tail
}

// Fqn is a fully qualified global symbol: (file, name).
type Fqn struct {
	File source.FileName
	Name source.Name
}
