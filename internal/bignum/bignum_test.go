package bignum

import "testing"

func uintOf(limbs ...uint64) BigUint { return BigUint{Limbs: limbs} }

func TestUintAddCarriesAcrossLimbs(t *testing.T) {
	a := uintOf(^uint64(0))
	sum, err := UintAdd(a, UintFromUint64(1))
	if err != nil {
		t.Fatalf("UintAdd: %v", err)
	}
	want := uintOf(0, 1)
	if sum.Cmp(want) != 0 {
		t.Fatalf("2^64-1 + 1 = %v, want 2^64", sum.Limbs)
	}
	if sum.BitLen() != 65 {
		t.Fatalf("BitLen(2^64) = %d, want 65", sum.BitLen())
	}
}

func TestUintMulDivRoundTrip(t *testing.T) {
	// A two-limb (128-bit) operand, the widest value capy's types produce.
	a := uintOf(0xDEADBEEF, 0x1234)
	b := UintFromUint64(1_000_003)
	prod, err := UintMul(a, b)
	if err != nil {
		t.Fatalf("UintMul: %v", err)
	}
	q, r, err := UintDivMod(prod, b)
	if err != nil {
		t.Fatalf("UintDivMod: %v", err)
	}
	if q.Cmp(a) != 0 || !r.IsZero() {
		t.Fatalf("(a*b)/b: q=%v r=%v, want a with zero remainder", q.Limbs, r.Limbs)
	}
}

func TestUintShiftsInverse(t *testing.T) {
	a := uintOf(0x8000000000000001, 0xF0F0)
	up, err := UintShl(a, 67)
	if err != nil {
		t.Fatalf("UintShl: %v", err)
	}
	down, err := UintShr(up, 67)
	if err != nil {
		t.Fatalf("UintShr: %v", err)
	}
	if down.Cmp(a) != 0 {
		t.Fatalf("shr(shl(a)) = %v, want a = %v", down.Limbs, a.Limbs)
	}
}

func TestIntDivModTruncatesTowardZero(t *testing.T) {
	a := IntFromUint64(7).Negated()
	b := IntFromUint64(2)
	q, r, err := IntDivMod(a, b)
	if err != nil {
		t.Fatalf("IntDivMod: %v", err)
	}
	if got, _ := q.Int64(); got != -3 {
		t.Fatalf("-7 / 2 = %d, want -3", got)
	}
	if got, _ := r.Int64(); got != -1 {
		t.Fatalf("-7 %% 2 = %d, want -1", got)
	}
}

func TestIntAddOppositeSignsCancels(t *testing.T) {
	a := IntFromUint64(5)
	sum, err := IntAdd(a, a.Negated())
	if err != nil {
		t.Fatalf("IntAdd: %v", err)
	}
	if !sum.IsZero() || sum.Neg {
		t.Fatalf("5 + -5 should be canonical zero, got %+v", sum)
	}
}

func TestInt64MostNegative(t *testing.T) {
	i := BigInt{Neg: true, Mag: uintOf(1 << 63)}
	v, ok := i.Int64()
	if !ok || v != -1<<63 {
		t.Fatalf("got (%d, %v), want math.MinInt64", v, ok)
	}
	if _, ok := (BigInt{Mag: uintOf(1 << 63)}).Int64(); ok {
		t.Fatalf("+2^63 must not fit int64")
	}
}

func TestFormatCrossesChunkBoundary(t *testing.T) {
	// 10^19 + 7 needs two decimal chunks, exercising the padded path.
	v, err := UintAdd(uintOf(decChunk), UintFromUint64(7))
	if err != nil {
		t.Fatalf("UintAdd: %v", err)
	}
	if got := FormatUint(v); got != "10000000000000000007" {
		t.Fatalf("FormatUint = %q", got)
	}
	if got := FormatInt(makeInt(true, v)); got != "-10000000000000000007" {
		t.Fatalf("FormatInt = %q", got)
	}
}

func TestIntFitsBitsSignedEdges(t *testing.T) {
	if !IntFitsBits(BigInt{Neg: true, Mag: UintFromUint64(128)}, 8, true) {
		t.Fatalf("-128 should fit i8")
	}
	if IntFitsBits(IntFromUint64(128), 8, true) {
		t.Fatalf("+128 must not fit i8")
	}
	if !IntFitsBits(IntFromUint64(255), 8, false) {
		t.Fatalf("255 should fit u8")
	}
	if IntFitsBits(BigInt{Neg: true, Mag: UintFromUint64(1)}, 8, false) {
		t.Fatalf("-1 must not fit u8")
	}
}

func TestParseFloatRoundTripsSmallDecimal(t *testing.T) {
	f, err := ParseFloat("2.5")
	if err != nil {
		t.Fatalf("ParseFloat: %v", err)
	}
	twice, err := FloatAdd(f, f)
	if err != nil {
		t.Fatalf("FloatAdd: %v", err)
	}
	i, err := FloatToIntTrunc(twice)
	if err != nil {
		t.Fatalf("FloatToIntTrunc: %v", err)
	}
	if got, _ := i.Int64(); got != 5 {
		t.Fatalf("trunc(2.5 + 2.5) = %d, want 5", got)
	}
}
