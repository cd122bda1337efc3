package codegen

import (
	"capy/internal/types"

	"fortio.org/safecast"
)

// Layout is the ABI layout of a type on the target this Module compiles
// for: its size and alignment, plus per-field offsets for aggregates.
type Layout struct {
	Size  uint32
	Align uint32

	FieldOffsets []uint32 // KindStruct, parallel to StructInfo.Members
}

// LayoutEngine computes and caches Layout for every TypeID it's asked
// about. Struct/array layouts are recursive, so results are memoized to
// keep repeated lookups (every aggregate Place projection asks again) cheap.
type LayoutEngine struct {
	Types   *types.Interner
	PtrSize uint32

	cache map[types.TypeID]Layout
}

// NewLayoutEngine returns a LayoutEngine targeting a 64-bit pointer width,
// the only target this backend emits for.
func NewLayoutEngine(tys *types.Interner) *LayoutEngine {
	return &LayoutEngine{Types: tys, PtrSize: 8, cache: make(map[types.TypeID]Layout)}
}

func (e *LayoutEngine) LayoutOf(id types.TypeID) Layout {
	if l, ok := e.cache[id]; ok {
		return l
	}
	l := e.compute(id)
	e.cache[id] = l
	return l
}

func (e *LayoutEngine) SizeOf(id types.TypeID) uint32  { return e.LayoutOf(id).Size }
func (e *LayoutEngine) AlignOf(id types.TypeID) uint32 { return e.LayoutOf(id).Align }

// IntWidthBits resolves an integer type's concrete bit count (weak widens to
// 64, WidthPtr resolves against this engine's target pointer size) and
// whether it's signed, for folding a comptime constant into a machine-sized
// operand. ok is false for anything other than KindIInt/KindUInt.
func (e *LayoutEngine) IntWidthBits(id types.TypeID) (bitsCount int, signed bool, ok bool) {
	t, found := e.Types.Lookup(id)
	if !found || (t.Kind != types.KindIInt && t.Kind != types.KindUInt) {
		return 0, false, false
	}
	w := t.Width
	if w == types.WidthWeak {
		w = types.Width64
	}
	if w == types.WidthPtr {
		return int(e.PtrSize) * 8, t.Kind == types.KindIInt, true
	}
	return int(w), t.Kind == types.KindIInt, true
}

// FieldOffset returns the byte offset of member fieldIdx within structTy.
func (e *LayoutEngine) FieldOffset(structTy types.TypeID, fieldIdx int) uint32 {
	l := e.LayoutOf(structTy)
	if fieldIdx < 0 || fieldIdx >= len(l.FieldOffsets) {
		return 0
	}
	return l.FieldOffsets[fieldIdx]
}

// IsAggregate reports whether a value of id's type is passed/returned by
// address (struct, fixed-size array, or enum — a tag plus the widest
// variant payload rarely fits a single register-sized operand) rather than
// in a single operand.
func (e *LayoutEngine) IsAggregate(id types.TypeID) bool {
	t, ok := e.Types.Lookup(id)
	if !ok {
		return false
	}
	return t.Kind == types.KindStruct || t.Kind == types.KindArray || t.Kind == types.KindEnum
}

func scalar(size uint32) Layout {
	return Layout{Size: size, Align: size}
}

func roundUp(n, align uint32) uint32 {
	if align <= 1 {
		return n
	}
	if r := n % align; r != 0 {
		return n + (align - r)
	}
	return n
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func (e *LayoutEngine) compute(id types.TypeID) Layout {
	t, ok := e.Types.Lookup(id)
	if !ok {
		return Layout{Size: 0, Align: 1}
	}

	switch t.Kind {
	case types.KindVoid, types.KindNoEval:
		return Layout{Size: 0, Align: 1}

	case types.KindBool, types.KindChar:
		return scalar(1)

	case types.KindIInt, types.KindUInt, types.KindFloat:
		w := t.Width
		if w == types.WidthWeak {
			w = types.Width64
		}
		if w == types.WidthPtr {
			return scalar(e.PtrSize)
		}
		return scalar(uint32(w) / 8)

	case types.KindString, types.KindPointer, types.KindRawPtr,
		types.KindRawSlice, types.KindFunction, types.KindFile, types.KindType:
		return scalar(e.PtrSize)

	case types.KindSlice:
		// {ptr, len}: two pointer-sized words.
		return Layout{Size: e.PtrSize * 2, Align: e.PtrSize}

	case types.KindArray:
		elem := e.LayoutOf(t.Elem)
		stride := roundUp(elem.Size, maxU32(elem.Align, 1))
		n, err := safecast.Conv[uint32](t.ArraySize)
		if err != nil {
			n = t.ArraySize
		}
		return Layout{Size: stride * n, Align: maxU32(elem.Align, 1)}

	case types.KindStruct:
		return e.structLayout(id)

	case types.KindEnum:
		// v1 ABI: a 4-byte discriminant plus the widest variant payload,
		// payload aligned up to its own requirement.
		return e.enumLayout(id)

	case types.KindDistinct:
		return e.LayoutOf(t.Elem)

	default:
		return Layout{Size: 0, Align: 1}
	}
}

func (e *LayoutEngine) structLayout(id types.TypeID) Layout {
	info, ok := e.Types.StructInfo(id)
	if !ok || len(info.Members) == 0 {
		return Layout{Size: 0, Align: 1}
	}
	offsets := make([]uint32, len(info.Members))
	size := uint32(0)
	align := uint32(1)
	for i, f := range info.Members {
		fl := e.LayoutOf(f.Type)
		fAlign := maxU32(fl.Align, 1)
		size = roundUp(size, fAlign)
		offsets[i] = size
		size += fl.Size
		align = maxU32(align, fAlign)
	}
	size = roundUp(size, align)
	return Layout{Size: size, Align: align, FieldOffsets: offsets}
}

func (e *LayoutEngine) enumLayout(id types.TypeID) Layout {
	info, ok := e.Types.EnumInfo(id)
	if !ok {
		return scalar(4)
	}
	maxPayload := uint32(0)
	payloadAlign := uint32(1)
	for _, v := range info.Variants {
		vt, ok := e.Types.Lookup(v)
		if !ok || vt.Elem == types.NoTypeID {
			continue
		}
		pl := e.LayoutOf(vt.Elem)
		maxPayload = maxU32(maxPayload, pl.Size)
		payloadAlign = maxU32(payloadAlign, maxU32(pl.Align, 1))
	}
	const tagSize, tagAlign = 4, 4
	payloadOffset := roundUp(tagSize, payloadAlign)
	align := maxU32(tagAlign, payloadAlign)
	return Layout{Size: roundUp(payloadOffset+maxPayload, align), Align: align}
}
