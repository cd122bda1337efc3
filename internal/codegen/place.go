package codegen

import "capy/internal/types"

// TypeID is re-exported from package types so codegen call sites don't need
// a second import alongside this package's own ID types.
type TypeID = types.TypeID

// LocalFlags records storage properties of a Local needed by the backend
// without re-deriving them from its Type every time (sret destination,
// owned-by-copy aggregate parameter, plain value).
type LocalFlags uint8

const (
	LocalFlagParam LocalFlags = 1 << iota
	LocalFlagAggregateSlot
	LocalFlagSretDst
)

// Local is one stack slot belonging to a Func.
type Local struct {
	Name  string
	Type  TypeID
	Flags LocalFlags
}

func (f LocalFlags) Has(x LocalFlags) bool { return f&x != 0 }

// PlaceProjKind distinguishes the ways a Place can be projected to reach a
// sub-object: through a pointer, into a struct field, or into an array/slice
// element.
type PlaceProjKind uint8

const (
	ProjDeref PlaceProjKind = iota
	ProjField
	ProjIndex
)

// PlaceProj is one projection step.
type PlaceProj struct {
	Kind PlaceProjKind

	FieldIdx  int     // ProjField: index into the struct's member list
	IndexSrc  LocalID // ProjIndex: the local holding the (already-evaluated) index value
	ElemType  TypeID  // ProjIndex/ProjField: the type of the projected sub-object
	ElemSize  uint32  // ProjIndex: byte size of one element, for address arithmetic
}

// PlaceKind distinguishes where a Place's root storage lives.
type PlaceKind uint8

const (
	PlaceLocal PlaceKind = iota
	PlaceGlobal
)

// Place is an addressable location: a root (local slot or global) plus zero
// or more projections reaching into it.
type Place struct {
	Kind   PlaceKind
	Local  LocalID
	Global GlobalID
	Proj   []PlaceProj
}

// IsValid reports whether p names real storage.
func (p Place) IsValid() bool {
	if p.Kind == PlaceGlobal {
		return p.Global != NoGlobalID
	}
	return p.Local != NoLocalID
}

// Field returns the place projected one struct field deeper.
func (p Place) Field(idx int, elemTy TypeID) Place {
	out := p
	out.Proj = append(append([]PlaceProj(nil), p.Proj...), PlaceProj{Kind: ProjField, FieldIdx: idx, ElemType: elemTy})
	return out
}

// Index returns the place projected one array/slice element deeper, where
// the index value has already been materialized into indexLocal.
func (p Place) Index(indexLocal LocalID, elemTy TypeID, elemSize uint32) Place {
	out := p
	out.Proj = append(append([]PlaceProj(nil), p.Proj...), PlaceProj{
		Kind: ProjIndex, IndexSrc: indexLocal, ElemType: elemTy, ElemSize: elemSize,
	})
	return out
}

// Deref returns the place reached by following a pointer stored at p.
func (p Place) Deref(elemTy TypeID) Place {
	out := p
	out.Proj = append(append([]PlaceProj(nil), p.Proj...), PlaceProj{Kind: ProjDeref, ElemType: elemTy})
	return out
}
