package infer

import (
	"fmt"

	"fortio.org/safecast"

	"capy/internal/comptime"
	"capy/internal/diag"
	"capy/internal/hir"
	"capy/internal/index"
	"capy/internal/source"
	"capy/internal/types"
)

// constTy interprets a type-syntax expression into the TypeID it denotes,
// memoizing the result in the meta-type table (what the expression
// *denotes*, kept apart from exprTys — which for any type expression would
// only ever say Type). Every EPrimitiveType/EPointerType/... node
// produced by lowering is legal input; anything else (an ordinary runtime
// expression used where a type was expected) is rejected with
// ParamNotAType.
func (eng *Engine) constTy(fr *frame, idx hir.ExprIdx) types.TypeID {
	key := exprKey{fr.file, idx}
	if ty, ok := eng.metaTys[key]; ok {
		return ty
	}
	ty := eng.constTyUncached(fr, idx)
	eng.metaTys[key] = ty
	return ty
}

func (eng *Engine) constTyUncached(fr *frame, idx hir.ExprIdx) types.TypeID {
	e := fr.bodies.Exprs.Get(idx)
	b := eng.Types.Builtins()

	switch e.Kind {
	case hir.EPrimitiveType:
		if ty, ok := eng.primitiveFromName(e.Name); ok {
			return ty
		}
		eng.Diags.Add(diag.New(diag.ParamNotAType, e.Span, "unknown primitive type name"))
		return b.Unknown
	case hir.EAnyType:
		return b.Any
	case hir.EVoidType:
		return b.Void
	case hir.ETypeType:
		return b.Type

	case hir.EPointerType:
		sub := eng.constTy(fr, *e.A)
		return eng.Types.Pointer(e.Mut, sub)
	case hir.ERawPtrType:
		return eng.Types.RawPtr(e.Mut)
	case hir.ERawSliceType:
		return b.RawSlice
	case hir.ESliceType:
		sub := eng.constTy(fr, *e.A)
		return eng.Types.Slice(sub)

	case hir.EArrayType:
		size, ok := eng.constArraySize(fr, *e.A)
		if !ok {
			eng.Diags.Add(diag.New(diag.ArraySizeNotConst, e.Span, "array size did not fold to a constant integer"))
			size = 0
		}
		sub := eng.constTy(fr, *e.B)
		return eng.Types.Array(false, size, sub)

	case hir.EDistinctType:
		sub := eng.constTy(fr, *e.A)
		return eng.Types.Distinct(sub)

	case hir.EStructType:
		members := make([]types.StructField, len(e.FieldNames))
		for i, name := range e.FieldNames {
			members[i] = types.StructField{Name: name, Type: eng.constTy(fr, e.ParamTypes[i]), HasDefault: false}
		}
		return eng.Types.NewStruct(true, members)

	case hir.EEnumType:
		specs := make([]types.VariantSpec, len(e.Variants))
		for i, v := range e.Variants {
			payload := types.NoTypeID
			if v.Payload != nil {
				payload = eng.constTy(fr, *v.Payload)
			}
			discriminant := int64(i)
			if v.Discriminant != nil {
				if n, ok := eng.constInt(fr, *v.Discriminant); ok {
					discriminant = n
				}
			}
			specs[i] = types.VariantSpec{Name: v.Name, Payload: payload, Discriminant: discriminant}
		}
		return eng.Types.NewEnum(specs)

	case hir.EFnType:
		params := make([]types.TypeID, len(e.ParamTypes))
		for i, p := range e.ParamTypes {
			params[i] = eng.constTy(fr, p)
		}
		result := eng.constTy(fr, *e.Result)
		return eng.Types.InternFunction(params, result, e.Variadic)

	case hir.EGlobal:
		fqn := types.Fqn{File: fr.file, Name: e.Name}
		if _, status := eng.World.Status(fqn); status != index.Defined {
			eng.Diags.Add(diag.New(diag.UnknownFqn, e.Span, "unknown type name"))
			return b.Unknown
		}
		return eng.constTyGlobal(fqn)

	default:
		eng.Diags.Add(diag.New(diag.ParamNotAType, e.Span, "expression is not a type"))
		return b.Unknown
	}
}

// constTyGlobal resolves a `Name :: <type expr>` global to the type it
// denotes, memoized separately from InferGlobal's ordinary value/function
// signature table since a type alias's "type" (KindType) and its "denoted
// type" are different questions about the same binding.
func (eng *Engine) constTyGlobal(fqn types.Fqn) types.TypeID {
	if ty, ok := eng.typeGlobals[fqn]; ok {
		return ty
	}
	def, status := eng.World.Status(fqn)
	if status != index.Defined {
		return eng.Types.Builtins().Unknown
	}
	fr2 := &frame{file: fqn.File, bodies: eng.World.Bodies(fqn.File)}
	ty := eng.constTy(fr2, def.Value)
	eng.typeGlobals[fqn] = ty
	return ty
}

// constArraySize folds an array-size expression to a concrete uint32 via
// the comptime evaluator.
func (eng *Engine) constArraySize(fr *frame, idx hir.ExprIdx) (uint32, bool) {
	n, ok := eng.constInt(fr, idx)
	if !ok || n < 0 {
		return 0, false
	}
	size, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, false
	}
	return size, true
}

func (eng *Engine) constInt(fr *frame, idx hir.ExprIdx) (int64, bool) {
	if !eng.isSafeToCompile(fr, idx) {
		return 0, false
	}
	res, err := comptime.Eval(fr.bodies, idx, comptime.Env{
		ResolveGlobal: func(name source.Name) (comptime.Result, error) {
			return eng.evalGlobalConst(fr.file, name)
		},
	})
	if err != nil || res.Kind != comptime.RInt {
		return 0, false
	}
	v, ok := res.Int.Int64()
	return v, ok
}

// evalGlobalConst folds another file-local global's value expression,
// letting array sizes and enum discriminants reference a previously
// declared `::` constant.
func (eng *Engine) evalGlobalConst(file source.FileName, name source.Name) (comptime.Result, error) {
	fqn := types.Fqn{File: file, Name: name}
	def, status := eng.World.Status(fqn)
	if status != index.Defined {
		return comptime.Result{}, fmt.Errorf("comptime: %v is not defined in this file", name)
	}
	bodies := eng.World.Bodies(file)
	return comptime.Eval(bodies, def.Value, comptime.Env{
		ResolveGlobal: func(n source.Name) (comptime.Result, error) {
			return eng.evalGlobalConst(file, n)
		},
	})
}
