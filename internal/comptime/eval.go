package comptime

import (
	"fmt"
	"strconv"

	"capy/internal/bignum"
	"capy/internal/cst"
	"capy/internal/hir"
	"capy/internal/source"
)

// Env supplies everything Eval needs beyond the expression tree itself: the
// values of locals already bound in the enclosing scope, and a way to
// resolve and recursively evaluate a referenced global constant. The
// inference engine (package infer) constructs one per comptime block it
// drives, since only it knows the current WorldIndex and has already begun
// evaluating the global's dependencies.
type Env struct {
	Locals map[hir.LocalDefIdx]Result
	// ResolveGlobal turns an EGlobal's bare name into another Comptime's
	// folded Result, or an error if the name has no compile-time value
	// (e.g. it names a runtime function).
	ResolveGlobal func(name source.Name) (Result, error)
}

func (e Env) withLocal(idx hir.LocalDefIdx, v Result) Env {
	next := Env{Locals: make(map[hir.LocalDefIdx]Result, len(e.Locals)+1), ResolveGlobal: e.ResolveGlobal}
	for k, v := range e.Locals {
		next.Locals[k] = v
	}
	next.Locals[idx] = v
	return next
}

// Eval folds the expression at idx within b down to a Result, or returns an
// error describing the first non-constant construct it hit.
func Eval(b *hir.Bodies, idx hir.ExprIdx, env Env) (Result, error) {
	e := b.Exprs.Get(idx)
	switch e.Kind {
	case hir.EIntLit:
		return IntResult(bignum.IntFromUint64(e.IntVal)), nil
	case hir.EFloatLit:
		// The CST layer already parsed the literal into a float64; round-trip
		// it through bignum's own decimal parser (parse.go) rather than
		// reaching for math/big, so every folded float shares one notion of
		// precision regardless of whether it started as a literal or as the
		// result of FloatAdd/FloatMul.
		f, err := bignum.ParseFloat(strconv.FormatFloat(e.FloatVal, 'g', -1, 64))
		if err != nil {
			return Result{}, err
		}
		return FloatResult(f), nil
	case hir.EBoolLit:
		return BoolResult(e.BoolVal), nil
	case hir.EStringLit:
		return DataResult([]byte(e.StringVal)), nil

	case hir.ELocalRef:
		if v, ok := env.Locals[e.Local]; ok {
			return v, nil
		}
		return Result{}, fmt.Errorf("comptime: local is not bound to a constant value")

	case hir.EGlobal:
		if env.ResolveGlobal == nil {
			return Result{}, fmt.Errorf("comptime: %q is not a compile-time constant", e.Name)
		}
		return env.ResolveGlobal(e.Name)

	case hir.EUnary:
		return evalUnary(b, e, env)
	case hir.EBinary:
		return evalBinary(b, e, env)

	case hir.ECast:
		return evalCast(b, e, env)

	case hir.EIf:
		cond, err := Eval(b, *e.A, env)
		if err != nil {
			return Result{}, err
		}
		if cond.Kind != RBool {
			return Result{}, fmt.Errorf("comptime: if condition did not fold to a bool")
		}
		if cond.Bool {
			return Eval(b, *e.Then, env)
		}
		if e.Else == nil {
			return Result{Kind: RVoid}, nil
		}
		return Eval(b, *e.Else, env)

	case hir.EBlock:
		cur := env
		for _, sidx := range e.Block.Stmts {
			s := b.Stmts.Get(sidx)
			if s.Kind != hir.SLet {
				return Result{}, fmt.Errorf("comptime: only `let`/`::` statements are foldable inside a comptime block")
			}
			local := b.Locals.Get(s.Local)
			v, err := Eval(b, local.Value, cur)
			if err != nil {
				return Result{}, err
			}
			cur = cur.withLocal(s.Local, v)
		}
		if e.Block.Tail == nil {
			return Result{Kind: RVoid}, nil
		}
		return Eval(b, *e.Block.Tail, cur)

	case hir.EComptime:
		inner := b.Comptimes.Get(e.Comptime)
		return Eval(b, inner.Body, env)

	case hir.EPrimitiveType, hir.EAnyType, hir.EVoidType, hir.ETypeType,
		hir.EPointerType, hir.ERawPtrType, hir.ERawSliceType, hir.ESliceType,
		hir.EArrayType, hir.EDistinctType, hir.EStructType, hir.EEnumType, hir.EFnType:
		// Type expressions fold to themselves as a value; the caller (the
		// type-expr evaluator in package infer) is responsible for turning
		// this node into a concrete types.TypeID and wrapping it via
		// TypeResult — Eval alone cannot intern a type without a types.Interner.
		return Result{}, fmt.Errorf("comptime: type expressions must be folded by const_ty, not Eval")

	default:
		return Result{}, fmt.Errorf("comptime: %v is not a constant expression", e.Kind)
	}
}

func evalUnary(b *hir.Bodies, e *hir.Expr, env Env) (Result, error) {
	a, err := Eval(b, *e.A, env)
	if err != nil {
		return Result{}, err
	}
	switch e.UnOp {
	case cst.OpNeg:
		switch a.Kind {
		case RInt:
			return IntResult(a.Int.Negated()), nil
		case RFloat:
			return FloatResult(bignum.FloatNeg(a.Float)), nil
		}
	case cst.OpPos:
		return a, nil
	case cst.OpNot:
		if a.Kind == RBool {
			return BoolResult(!a.Bool), nil
		}
	}
	return Result{}, fmt.Errorf("comptime: unary operator not applicable to folded operand")
}

func evalBinary(b *hir.Bodies, e *hir.Expr, env Env) (Result, error) {
	l, err := Eval(b, *e.A, env)
	if err != nil {
		return Result{}, err
	}
	r, err := Eval(b, *e.B, env)
	if err != nil {
		return Result{}, err
	}

	if l.Kind == RInt && r.Kind == RInt {
		return evalIntBinary(e.Op, l.Int, r.Int)
	}
	if l.Kind == RFloat && r.Kind == RFloat {
		return evalFloatBinary(e.Op, l.Float, r.Float)
	}
	if l.Kind == RBool && r.Kind == RBool {
		return evalBoolBinary(e.Op, l.Bool, r.Bool)
	}
	return Result{}, fmt.Errorf("comptime: binary operator operands did not fold to the same kind")
}

func evalIntBinary(op cst.BinOp, a, c bignum.BigInt) (Result, error) {
	switch op {
	case cst.OpAdd:
		v, err := bignum.IntAdd(a, c)
		return IntResult(v), err
	case cst.OpSub:
		v, err := bignum.IntSub(a, c)
		return IntResult(v), err
	case cst.OpMul:
		v, err := bignum.IntMul(a, c)
		return IntResult(v), err
	case cst.OpDiv:
		q, _, err := bignum.IntDivMod(a, c)
		return IntResult(q), err
	case cst.OpMod:
		_, r, err := bignum.IntDivMod(a, c)
		return IntResult(r), err
	case cst.OpLt:
		return BoolResult(a.Cmp(c) < 0), nil
	case cst.OpLe:
		return BoolResult(a.Cmp(c) <= 0), nil
	case cst.OpGt:
		return BoolResult(a.Cmp(c) > 0), nil
	case cst.OpGe:
		return BoolResult(a.Cmp(c) >= 0), nil
	case cst.OpEq:
		return BoolResult(a.Cmp(c) == 0), nil
	case cst.OpNe:
		return BoolResult(a.Cmp(c) != 0), nil
	default:
		return Result{}, fmt.Errorf("comptime: operator not valid for integers")
	}
}

func evalFloatBinary(op cst.BinOp, a, c bignum.BigFloat) (Result, error) {
	switch op {
	case cst.OpAdd:
		v, err := bignum.FloatAdd(a, c)
		return FloatResult(v), err
	case cst.OpSub:
		v, err := bignum.FloatSub(a, c)
		return FloatResult(v), err
	case cst.OpMul:
		v, err := bignum.FloatMul(a, c)
		return FloatResult(v), err
	case cst.OpDiv:
		v, err := bignum.FloatDiv(a, c)
		return FloatResult(v), err
	case cst.OpLt:
		return BoolResult(a.Cmp(c) < 0), nil
	case cst.OpLe:
		return BoolResult(a.Cmp(c) <= 0), nil
	case cst.OpGt:
		return BoolResult(a.Cmp(c) > 0), nil
	case cst.OpGe:
		return BoolResult(a.Cmp(c) >= 0), nil
	case cst.OpEq:
		return BoolResult(a.Cmp(c) == 0), nil
	case cst.OpNe:
		return BoolResult(a.Cmp(c) != 0), nil
	default:
		return Result{}, fmt.Errorf("comptime: operator not valid for floats")
	}
}

func evalBoolBinary(op cst.BinOp, a, c bool) (Result, error) {
	switch op {
	case cst.OpAnd:
		return BoolResult(a && c), nil
	case cst.OpOr:
		return BoolResult(a || c), nil
	case cst.OpEq:
		return BoolResult(a == c), nil
	case cst.OpNe:
		return BoolResult(a != c), nil
	default:
		return Result{}, fmt.Errorf("comptime: operator not valid for bools")
	}
}

func evalCast(b *hir.Bodies, e *hir.Expr, env Env) (Result, error) {
	v, err := Eval(b, *e.A, env)
	if err != nil {
		return Result{}, err
	}
	// The target type expression (e.B) names a TypeID only after const_ty
	// resolves it; Eval folds the value side and leaves width/truncation
	// enforcement to the caller, which already has the resolved target Ty
	// from inference and can re-check CanRepresent itself.
	switch v.Kind {
	case RInt, RFloat, RBool, RData, RType:
		return v, nil
	default:
		return Result{}, fmt.Errorf("comptime: cannot fold cast of a void value")
	}
}
