package types

// BinOp enumerates the binary operators the per-operator table (backing
// Binary{op,l,r} inference) dispatches on.
type BinOp uint8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	LogicalAnd
	LogicalOr
)

func isNumericKind(k Kind) bool {
	return k == KindIInt || k == KindUInt || k == KindFloat
}

// UnifyNumeric finds the common type two numeric operands widen to, per the
// weak-replacement lattice: a weak UInt(0) unifies with any concrete
// IInt/UInt/Float; a weak Float(0) unifies only with a concrete Float. Two
// concrete numeric types unify only if identical — capy requires an
// explicit Cast between distinct concrete widths.
func (in *Interner) UnifyNumeric(a, b TypeID) (TypeID, bool) {
	ta, oka := in.Lookup(a)
	tb, okb := in.Lookup(b)
	if !oka || !okb {
		return NoTypeID, false
	}
	if !isNumericKind(ta.Kind) || !isNumericKind(tb.Kind) {
		if a == b {
			return a, true
		}
		return NoTypeID, false
	}
	if a == b {
		return a, true
	}
	aWeak := ta.Width == WidthWeak
	bWeak := tb.Width == WidthWeak
	switch {
	case aWeak && bWeak:
		if ta.Kind == tb.Kind {
			return a, true
		}
		// A weak UInt literal may still unify with a weak Float literal's
		// family (e.g. `5 + 2.0`); adopt the float side.
		if ta.Kind == KindUInt && tb.Kind == KindFloat {
			return b, true
		}
		if ta.Kind == KindFloat && tb.Kind == KindUInt {
			return a, true
		}
		return NoTypeID, false
	case aWeak && !bWeak:
		if ta.Kind == KindUInt && (tb.Kind == KindIInt || tb.Kind == KindUInt || tb.Kind == KindFloat) {
			return b, true
		}
		if ta.Kind == KindFloat && tb.Kind == KindFloat {
			return b, true
		}
		return NoTypeID, false
	case !aWeak && bWeak:
		return in.UnifyNumeric(b, a)
	default:
		if ta.Kind != tb.Kind || ta.Width != tb.Width {
			return NoTypeID, false
		}
		return a, true
	}
}

// BinaryResult implements the operator table: given an operator and its two
// operand types, returns (max_ty, output_ty, ok). Both operands are then
// weak-replaced by max_ty by the caller (the inference engine).
func (in *Interner) BinaryResult(op BinOp, a, b TypeID) (maxTy, resultTy TypeID, ok bool) {
	switch op {
	case Add, Sub, Mul, Div, Mod:
		m, ok := in.UnifyNumeric(a, b)
		if !ok {
			return NoTypeID, NoTypeID, false
		}
		return m, m, true
	case Lt, Le, Gt, Ge:
		m, ok := in.UnifyNumeric(a, b)
		if !ok {
			return NoTypeID, NoTypeID, false
		}
		return m, in.builtins.Bool, true
	case Eq, Ne:
		if m, ok := in.UnifyNumeric(a, b); ok {
			return m, in.builtins.Bool, true
		}
		if a == b {
			return a, in.builtins.Bool, true
		}
		return NoTypeID, NoTypeID, false
	case LogicalAnd, LogicalOr:
		if a == in.builtins.Bool && b == in.builtins.Bool {
			return in.builtins.Bool, in.builtins.Bool, true
		}
		return NoTypeID, NoTypeID, false
	default:
		return NoTypeID, NoTypeID, false
	}
}
