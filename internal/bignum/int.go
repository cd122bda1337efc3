package bignum

// BigInt is an arbitrary-width signed integer in sign-magnitude form. A
// zero magnitude is always non-negative, so every value has one canonical
// representation and Cmp can trust the sign bit alone.
type BigInt struct {
	Neg bool
	Mag BigUint
}

// makeInt normalizes a sign + magnitude pair, collapsing -0 to the
// canonical zero.
func makeInt(neg bool, mag BigUint) BigInt {
	if mag.IsZero() {
		return BigInt{}
	}
	return BigInt{Neg: neg, Mag: mag}
}

// IntFromUint64 creates a BigInt from a uint64 — the shape every capy
// integer literal arrives in from lowering.
func IntFromUint64(v uint64) BigInt {
	return makeInt(false, UintFromUint64(v))
}

// IntFromMag creates a non-negative BigInt from an unsigned magnitude.
func IntFromMag(mag BigUint) BigInt {
	return makeInt(false, mag)
}

// IsZero reports whether the integer is zero.
func (i BigInt) IsZero() bool { return i.Mag.IsZero() }

// Abs returns the magnitude.
func (i BigInt) Abs() BigUint { return i.Mag }

// Negated returns the negated value.
func (i BigInt) Negated() BigInt {
	return makeInt(!i.Neg, i.Mag)
}

// Cmp compares two BigInt values and returns -1, 0, or 1.
func (i BigInt) Cmp(j BigInt) int {
	if i.IsZero() && j.IsZero() {
		return 0
	}
	if i.Neg != j.Neg {
		if i.Neg {
			return -1
		}
		return 1
	}
	c := i.Mag.Cmp(j.Mag)
	if i.Neg {
		return -c
	}
	return c
}

// Int64 converts to int64 if the value fits, including the asymmetric most
// negative value.
func (i BigInt) Int64() (int64, bool) {
	mag, ok := i.Mag.Uint64()
	if !ok {
		return 0, false
	}
	const maxPos = uint64(1)<<63 - 1
	if !i.Neg {
		if mag > maxPos {
			return 0, false
		}
		return int64(mag), true
	}
	switch {
	case mag > maxPos+1:
		return 0, false
	case mag == maxPos+1:
		return -1 << 63, true
	default:
		return -int64(mag), true
	}
}

// IntAdd adds two BigInt values: same signs add magnitudes, opposite signs
// subtract the smaller magnitude from the larger and keep its sign.
func IntAdd(a, b BigInt) (BigInt, error) {
	if a.Neg == b.Neg {
		sum, err := UintAdd(a.Mag, b.Mag)
		if err != nil {
			return BigInt{}, err
		}
		return makeInt(a.Neg, sum), nil
	}
	big, small := a, b
	if a.Mag.Cmp(b.Mag) < 0 {
		big, small = b, a
	}
	diff, err := UintSub(big.Mag, small.Mag)
	if err != nil {
		return BigInt{}, err
	}
	return makeInt(big.Neg, diff), nil
}

// IntSub subtracts b from a.
func IntSub(a, b BigInt) (BigInt, error) {
	return IntAdd(a, b.Negated())
}

// IntMul multiplies two BigInt values.
func IntMul(a, b BigInt) (BigInt, error) {
	prod, err := UintMul(a.Mag, b.Mag)
	if err != nil {
		return BigInt{}, err
	}
	return makeInt(a.Neg != b.Neg, prod), nil
}

// IntDivMod divides a by b with truncation toward zero: the quotient's
// sign is the XOR of the operands', the remainder keeps the dividend's.
func IntDivMod(a, b BigInt) (q, r BigInt, err error) {
	if b.IsZero() {
		return BigInt{}, BigInt{}, ErrDivByZero
	}
	qMag, rMag, err := UintDivMod(a.Mag, b.Mag)
	if err != nil {
		return BigInt{}, BigInt{}, err
	}
	return makeInt(a.Neg != b.Neg, qMag), makeInt(a.Neg, rMag), nil
}
