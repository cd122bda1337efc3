package codegen

import (
	"fmt"
	"math"

	"capy/internal/bignum"
	"capy/internal/comptime"
	"capy/internal/cst"
	"capy/internal/hir"
	"capy/internal/index"
	"capy/internal/infer"
	"capy/internal/source"
	"capy/internal/types"
)

// lowerValue evaluates idx in value position, returning an Operand usable
// directly as an instruction/terminator operand. Aggregate-typed results
// are always Place-backed (OperandCopy over the storage holding them), so
// callers needing their address can always fall through placeOf/materialize
// without a separate aggregate code path.
func (l *funcLowerer) lowerValue(idx hir.ExprIdx) (Operand, error) {
	e := l.bodies.Exprs.Get(idx)
	ty := l.exprType(idx)

	switch e.Kind {
	case hir.EMissing:
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstVoid}}, nil

	case hir.EIntLit:
		return l.lowerIntLit(e, ty), nil
	case hir.EFloatLit:
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstFloat, Type: ty, FloatValue: e.FloatVal}}, nil
	case hir.EBoolLit:
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstBool, Type: ty, BoolValue: e.BoolVal}}, nil
	case hir.EStringLit:
		// Emitted once into the module's data section, referenced by
		// address; two uses of the same literal share the emission.
		gid := l.lw.stringGlobal(e.StringVal, ty)
		return Operand{Kind: OperandAddrOf, Type: ty, Place: Place{Kind: PlaceGlobal, Global: gid}}, nil
	case hir.ECharLit:
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstUint, Type: ty, UintValue: uint64(e.CharVal)}}, nil

	case hir.ELocalRef, hir.EParamRef, hir.EDeref:
		p, err := l.placeOf(idx)
		if err != nil {
			return Operand{}, err
		}
		return l.placeOperand(p, ty), nil

	case hir.EMember:
		if t, found := l.tys.Lookup(l.exprType(*e.A)); found && t.Kind == types.KindFile {
			// `file.member`: another file's global, resolved by inference.
			return l.lowerFqnRef(types.Fqn{File: t.File, Name: e.Name}, ty)
		}
		if op, handled := l.arrayLenConst(e, ty); handled {
			return op, nil
		}
		p, ok, err := l.tryPlace(idx)
		if err != nil {
			return Operand{}, err
		}
		if !ok {
			return Operand{}, fmt.Errorf("codegen: member access has no lowering")
		}
		return l.placeOperand(p, ty), nil

	case hir.EIndex:
		p, ok, err := l.tryPlace(idx)
		if err != nil {
			return Operand{}, err
		}
		if !ok {
			return Operand{}, fmt.Errorf("codegen: index expression has no lowering")
		}
		return l.placeOperand(p, ty), nil

	case hir.EGlobal:
		return l.lowerGlobalRef(e, ty)

	case hir.EBinary:
		return l.lowerBinary(e, ty)
	case hir.EUnary:
		return l.lowerUnary(e, ty)

	case hir.ERef:
		base, err := l.placeOf(*e.A)
		if err != nil {
			return Operand{}, err
		}
		kind := OperandAddrOf
		if e.Mut {
			kind = OperandAddrOfMut
		}
		return Operand{Kind: kind, Type: ty, Place: base}, nil

	case hir.ECast:
		return l.lowerCast(e, ty)

	case hir.ECall:
		return l.lowerCallExpr(e, ty)

	case hir.EDefer:
		// Deferred-call scheduling belongs to a runtime this backend IR
		// doesn't model; the inner call is still lowered for its side
		// effects and diagnostics, matching inference's own treatment.
		if _, err := l.lowerValue(*e.A); err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstVoid}}, nil

	case hir.EIf:
		return l.lowerIfExpr(e, ty)
	case hir.EWhile:
		return l.lowerWhileExpr(e, ty)
	case hir.EBlock:
		return l.lowerBlockExpr(e, ty)
	case hir.ESwitch:
		return l.lowerSwitchExpr(e, ty)

	case hir.EBreak:
		return l.lowerBreak(e)
	case hir.EContinue:
		return l.lowerContinue(e)

	case hir.EComptime:
		inner := l.bodies.Comptimes.Get(e.Comptime)
		return l.lowerFoldedExpr(inner.Body, ty)

	case hir.ELambda:
		fid := l.lw.declareLambda(l.file, e.LambdaValue)
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstFunc, Type: ty, Func: fid}}, nil

	case hir.EStructLit:
		return l.lowerStructLit(e, ty)
	case hir.EArrayLit:
		return l.lowerArrayLit(e, ty)

	case hir.EUnwrap:
		return l.lowerUnwrap(e, ty)

	case hir.EImport:
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstVoid}}, nil

	default:
		// Type-syntax expressions (EPrimitiveType, EStructType, ...) never
		// appear in value position in a well-typed body.
		return Operand{}, fmt.Errorf("codegen: expression kind %d has no value-mode lowering", e.Kind)
	}
}

// arrayLenConst folds `.len` of a fixed-size array (possibly behind
// pointers) to its compile-time constant; every other member is a real
// projection handled by memberPlace.
func (l *funcLowerer) arrayLenConst(e *hir.Expr, ty types.TypeID) (Operand, bool) {
	if l.spellingOf(e.Name) != "len" {
		return Operand{}, false
	}
	baseTy := l.exprType(*e.A)
	for {
		t, ok := l.tys.Lookup(baseTy)
		if !ok {
			return Operand{}, false
		}
		if t.Kind == types.KindPointer {
			baseTy = t.Elem
			continue
		}
		if t.Kind != types.KindArray {
			return Operand{}, false
		}
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstUint, Type: ty, UintValue: uint64(t.ArraySize)}}, true
	}
}

func (l *funcLowerer) lowerIntLit(e *hir.Expr, ty types.TypeID) Operand {
	t, _ := l.tys.Lookup(ty)
	c := Const{Type: ty}
	switch t.Kind {
	case types.KindFloat:
		c.Kind = ConstFloat
		c.FloatValue = float64(e.IntVal)
	case types.KindIInt:
		c.Kind = ConstInt
		c.IntValue = int64(e.IntVal) //nolint:gosec // literal already range-checked at lowering time
	default:
		c.Kind = ConstUint
		c.UintValue = e.IntVal
	}
	return Operand{Kind: OperandConst, Type: ty, Const: c}
}

// lowerGlobalRef turns a reference to another file-level binding into an
// Operand: a direct function reference, or — for a value global — its
// comptime-folded constant, falling back to a zero-initialized module
// global for the rare runtime-only `:=` initializer a folding pass can't
// reduce.
func (l *funcLowerer) lowerGlobalRef(e *hir.Expr, ty types.TypeID) (Operand, error) {
	return l.lowerFqnRef(types.Fqn{File: l.file, Name: e.Name}, ty)
}

func (l *funcLowerer) lowerFqnRef(fqn types.Fqn, ty types.TypeID) (Operand, error) {
	sig, ok := l.eng.Signature(fqn)
	if !ok {
		return Operand{}, fmt.Errorf("codegen: %v has no resolved signature", fqn)
	}
	if sig.Kind == infer.SigFunction {
		// Demand-driven, same as the inference engine's own InferGlobal:
		// the callee's Func is declared (and queued for lowering if not
		// already in flight) the first time anything references it.
		f, err := l.lw.LowerGlobalFunction(fqn)
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstFunc, Type: ty, Func: f.ID}}, nil
	}
	return l.lowerFoldedGlobal(fqn, ty)
}

func (l *funcLowerer) lowerFoldedGlobal(fqn types.Fqn, ty types.TypeID) (Operand, error) {
	def, status := l.lw.World.Status(fqn)
	if status != index.Defined {
		return Operand{}, fmt.Errorf("codegen: %v is not defined", fqn)
	}
	bodies := l.lw.World.Bodies(fqn.File)
	env := l.comptimeEnv(fqn.File, bodies)
	res, err := comptime.Eval(bodies, def.Value, env)
	if err != nil {
		gid := l.lw.globalSlot(fqn, ty)
		return Operand{Kind: OperandCopy, Type: ty, Place: Place{Kind: PlaceGlobal, Global: gid}}, nil
	}
	return l.constOperand(res, ty)
}

// comptimeEnv builds the Env comptime.Eval needs to resolve EGlobal
// references it hits while folding, recursing through other files' globals
// via the same WorldIndex this Lowerer was built from.
func (l *funcLowerer) comptimeEnv(file source.FileName, bodies *hir.Bodies) comptime.Env {
	_ = bodies
	return comptime.Env{
		ResolveGlobal: func(name source.Name) (comptime.Result, error) {
			fqn := types.Fqn{File: file, Name: name}
			def, status := l.lw.World.Status(fqn)
			if status != index.Defined {
				return comptime.Result{}, fmt.Errorf("codegen: %v is not defined", fqn)
			}
			return comptime.Eval(l.lw.World.Bodies(fqn.File), def.Value, l.comptimeEnv(fqn.File, l.lw.World.Bodies(fqn.File)))
		},
	}
}

func (l *funcLowerer) constOperand(res comptime.Result, ty types.TypeID) (Operand, error) {
	switch res.Kind {
	case comptime.RInt:
		t, _ := l.tys.Lookup(ty)
		if t.Kind == types.KindFloat {
			f, _ := bignum.FloatFromInt(res.Int)
			return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstFloat, Type: ty, FloatValue: bigFloatToFloat64(f)}}, nil
		}
		if bitsCount, signed, ok := l.lw.Lay.IntWidthBits(ty); ok && !bignum.IntFitsBits(res.Int, bitsCount, signed) {
			return Operand{}, fmt.Errorf("codegen: constant %s does not fit in its %d-bit target type", bignum.FormatInt(res.Int), bitsCount)
		}
		if v, ok := res.Int.Int64(); ok {
			return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstInt, Type: ty, IntValue: v}}, nil
		}
		u, _ := res.Int.Abs().Uint64()
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstUint, Type: ty, UintValue: u}}, nil
	case comptime.RFloat:
		t, _ := l.tys.Lookup(ty)
		if t.Kind == types.KindIInt || t.Kind == types.KindUInt {
			// A folded cast from a float literal to an integer type (e.g. a
			// comptime block computing 3.0 as i32): truncate toward zero the
			// same way the runtime `as` instruction would, instead of
			// smuggling a float constant under an integer TypeID.
			var (
				iv  bignum.BigInt
				err error
			)
			if t.Kind == types.KindUInt {
				var uv bignum.BigUint
				uv, err = bignum.FloatToUintTrunc(res.Float)
				iv = bignum.IntFromMag(uv)
			} else {
				iv, err = bignum.FloatToIntTrunc(res.Float)
			}
			if err != nil {
				return Operand{}, fmt.Errorf("codegen: constant %s does not truncate to its target type: %w", bignum.FormatInt(iv), err)
			}
			if bitsCount, signed, ok := l.lw.Lay.IntWidthBits(ty); ok && !bignum.IntFitsBits(iv, bitsCount, signed) {
				return Operand{}, fmt.Errorf("codegen: constant %s does not fit in its %d-bit target type", bignum.FormatInt(iv), bitsCount)
			}
			if v, ok := iv.Int64(); ok {
				return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstInt, Type: ty, IntValue: v}}, nil
			}
			u, _ := iv.Abs().Uint64()
			return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstUint, Type: ty, UintValue: u}}, nil
		}
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstFloat, Type: ty, FloatValue: bigFloatToFloat64(res.Float)}}, nil
	case comptime.RBool:
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstBool, Type: ty, BoolValue: res.Bool}}, nil
	case comptime.RData:
		gid := l.lw.Mod.AddGlobal(GlobalBytes, ty, res.Data)
		return Operand{Kind: OperandCopy, Type: ty, Place: Place{Kind: PlaceGlobal, Global: gid}}, nil
	default:
		return Operand{Kind: OperandConst, Type: ty, Const: Const{Kind: ConstVoid, Type: ty}}, nil
	}
}

// lowerFoldedExpr folds a `comptime { ... }` body directly, without going
// through a global's Fqn.
func (l *funcLowerer) lowerFoldedExpr(idx hir.ExprIdx, ty types.TypeID) (Operand, error) {
	env := l.comptimeEnv(l.file, l.bodies)
	res, err := comptime.Eval(l.bodies, idx, env)
	if err != nil {
		return Operand{}, fmt.Errorf("codegen: comptime block did not fold: %w", err)
	}
	return l.constOperand(res, ty)
}

// bigFloatToFloat64 narrows a folded BigFloat to a machine double. The
// normalized mantissa is wider than 64 bits, so it is first truncated to
// its top 64 with the exponent adjusted to compensate; float64's own
// 53-bit rounding happens in the final conversion.
func bigFloatToFloat64(f bignum.BigFloat) float64 {
	if f.Mant.IsZero() {
		return 0
	}
	mant := f.Mant
	exp := int(f.Exp)
	if bl := mant.BitLen(); bl > 64 {
		shifted, err := bignum.UintShr(mant, bl-64)
		if err != nil {
			return math.NaN()
		}
		mant = shifted
		exp += bl - 64
	}
	m, ok := mant.Uint64()
	if !ok {
		return math.NaN()
	}
	v := math.Ldexp(float64(m), exp)
	if f.Neg {
		v = -v
	}
	return v
}

func mapBinOp(op cst.BinOp) (types.BinOp, bool) {
	switch op {
	case cst.OpAdd:
		return types.Add, true
	case cst.OpSub:
		return types.Sub, true
	case cst.OpMul:
		return types.Mul, true
	case cst.OpDiv:
		return types.Div, true
	case cst.OpMod:
		return types.Mod, true
	case cst.OpLt:
		return types.Lt, true
	case cst.OpLe:
		return types.Le, true
	case cst.OpGt:
		return types.Gt, true
	case cst.OpGe:
		return types.Ge, true
	case cst.OpEq:
		return types.Eq, true
	case cst.OpNe:
		return types.Ne, true
	case cst.OpAnd:
		return types.LogicalAnd, true
	case cst.OpOr:
		return types.LogicalOr, true
	default:
		return 0, false
	}
}

func (l *funcLowerer) lowerBinary(e *hir.Expr, resultTy types.TypeID) (Operand, error) {
	lt := l.exprType(*e.A)
	rt := l.exprType(*e.B)
	lhs, err := l.lowerValue(*e.A)
	if err != nil {
		return Operand{}, err
	}
	rhs, err := l.lowerValue(*e.B)
	if err != nil {
		return Operand{}, err
	}
	op, ok := mapBinOp(e.Op)
	if !ok {
		return Operand{}, fmt.Errorf("codegen: unsupported binary operator")
	}
	maxTy, _, ok := l.tys.BinaryResult(op, lt, rt)
	if !ok {
		return Operand{}, fmt.Errorf("codegen: binary operator has no result type")
	}
	lhs = l.widenOperand(lhs, lt, maxTy)
	rhs = l.widenOperand(rhs, rt, maxTy)

	dst := l.newTemp(resultTy, "bin")
	l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: dst},
		Src: RValue{Kind: RValueBinaryOp, Binary: BinaryOp{Op: op, Left: lhs, Right: rhs}},
	}})
	return l.placeOperand(Place{Kind: PlaceLocal, Local: dst}, resultTy), nil
}

// widenOperand inserts the explicit cast a weak-typed operand needs before
// it can participate in an op alongside a concrete-typed sibling — weak
// replacement realized here as an actual bit-level conversion rather than
// inference's purely abstract unification.
func (l *funcLowerer) widenOperand(op Operand, from, to types.TypeID) Operand {
	if from == to {
		return op
	}
	dst := l.newTemp(to, "widen")
	l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: dst},
		Src: RValue{Kind: RValueCast, Cast: CastOp{Value: op, TargetTy: to}},
	}})
	return l.placeOperand(Place{Kind: PlaceLocal, Local: dst}, to)
}

func mapUnOp(op cst.UnOp) UnOp {
	switch op {
	case cst.OpNeg:
		return OpNeg
	case cst.OpPos:
		return OpPos
	default:
		return OpNot
	}
}

func (l *funcLowerer) lowerUnary(e *hir.Expr, resultTy types.TypeID) (Operand, error) {
	operand, err := l.lowerValue(*e.A)
	if err != nil {
		return Operand{}, err
	}
	dst := l.newTemp(resultTy, "un")
	l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: dst},
		Src: RValue{Kind: RValueUnaryOp, Unary: UnaryOp{Op: mapUnOp(e.UnOp), Operand: operand}},
	}})
	return l.placeOperand(Place{Kind: PlaceLocal, Local: dst}, resultTy), nil
}

func (l *funcLowerer) lowerCast(e *hir.Expr, targetTy types.TypeID) (Operand, error) {
	src, err := l.lowerValue(*e.A)
	if err != nil {
		return Operand{}, err
	}
	dst := l.newTemp(targetTy, "cast")
	l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: dst},
		Src: RValue{Kind: RValueCast, Cast: CastOp{Value: src, TargetTy: targetTy}},
	}})
	return l.placeOperand(Place{Kind: PlaceLocal, Local: dst}, targetTy), nil
}

func (l *funcLowerer) lowerStructLit(e *hir.Expr, ty types.TypeID) (Operand, error) {
	info, _ := l.tys.StructInfo(ty)
	tmp := l.newTemp(ty, "struct")
	root := Place{Kind: PlaceLocal, Local: tmp}
	for i, argIdx := range e.Args {
		fieldTy := types.NoTypeID
		if i < len(info.Members) {
			fieldTy = info.Members[i].Type
		}
		val, err := l.lowerValue(argIdx)
		if err != nil {
			return Operand{}, err
		}
		l.storeInto(root.Field(i, fieldTy), fieldTy, val)
	}
	return l.placeOperand(root, ty), nil
}

func (l *funcLowerer) lowerArrayLit(e *hir.Expr, ty types.TypeID) (Operand, error) {
	t, _ := l.tys.Lookup(ty)
	elemTy := t.Elem
	elemSize := l.lay.SizeOf(elemTy)
	tmp := l.newTemp(ty, "array")
	root := Place{Kind: PlaceLocal, Local: tmp}
	uintTy := l.tys.Builtins().IntWeak
	for i, argIdx := range e.Args {
		val, err := l.lowerValue(argIdx)
		if err != nil {
			return Operand{}, err
		}
		idxLocal := l.newTemp(uintTy, "lit_idx")
		l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{
			Dst: Place{Kind: PlaceLocal, Local: idxLocal},
			Src: RValue{Kind: RValueUse, Use: Operand{Kind: OperandConst, Type: uintTy, Const: Const{Kind: ConstUint, Type: uintTy, UintValue: uint64(i)}}},
		}})
		l.storeInto(root.Index(idxLocal, elemTy, elemSize), elemTy, val)
	}
	return l.placeOperand(root, ty), nil
}

// lowerUnwrap projects #name's payload off an enum value, trapping via
// TermUnreachable when the runtime discriminant doesn't match — the dynamic
// half of the UnwrapVariantMismatch/UnwrapNotAnEnum diagnostics inference
// already checked statically where it could.
func (l *funcLowerer) lowerUnwrap(e *hir.Expr, payloadTy types.TypeID) (Operand, error) {
	srcTy := l.exprType(*e.A)
	src, err := l.lowerValue(*e.A)
	if err != nil {
		return Operand{}, err
	}
	info, _ := l.tys.EnumInfo(srcTy)
	variant := types.NoTypeID
	for _, vID := range info.Variants {
		vi, _ := l.tys.VariantInfo(vID)
		if vi.Name == e.Name {
			variant = vID
			break
		}
	}

	testDst := l.newTemp(l.tys.Builtins().Bool, "tag")
	l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: testDst},
		Src: RValue{Kind: RValueTagTest, TagTest: TagTest{Value: src, Variant: variant}},
	}})

	okBB := l.newBlock()
	trapBB := l.newBlock()
	l.setTerm(Terminator{Kind: TermIf, If: IfTerm{
		Cond: l.placeOperand(Place{Kind: PlaceLocal, Local: testDst}, l.tys.Builtins().Bool),
		Then: okBB, Else: trapBB,
	}})

	l.startBlock(trapBB)
	l.setTerm(Terminator{Kind: TermUnreachable})

	l.startBlock(okBB)
	dst := l.newTemp(payloadTy, "payload")
	l.emit(&Instr{Kind: InstrAssign, Assign: AssignInstr{
		Dst: Place{Kind: PlaceLocal, Local: dst},
		Src: RValue{Kind: RValueTagPayload, TagPayload: TagPayload{Value: src, Variant: variant}},
	}})
	return l.placeOperand(Place{Kind: PlaceLocal, Local: dst}, payloadTy), nil
}
