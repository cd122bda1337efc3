package bignum

import (
	"errors"
	"math/bits"
)

// Limbs are base-2^64: capy's widest machine integers (i128/u128) fold into
// exactly two limbs, so almost every constant the evaluator touches stays a
// one- or two-element slice. Wider values only arise from runaway comptime
// arithmetic, which MaxLimbs bounds.
const MaxLimbs = 1 << 17

var (
	// ErrMaxLimbs indicates the numeric size limit was exceeded.
	ErrMaxLimbs = errors.New("numeric size limit exceeded")
	// ErrDivByZero indicates an attempt to divide by zero.
	ErrDivByZero = errors.New("division by zero")
	ErrUnderflow = errors.New("unsigned underflow")
)

// BigUint is an arbitrary-width unsigned integer: little-endian base-2^64
// limbs (Limbs[0] least significant), canonical zero as nil/empty Limbs.
type BigUint struct {
	Limbs []uint64
}

// UintFromUint64 creates a BigUint from a uint64. Every machine-width
// unsigned value is a single limb.
func UintFromUint64(v uint64) BigUint {
	if v == 0 {
		return BigUint{}
	}
	return BigUint{Limbs: []uint64{v}}
}

// IsZero reports whether the unsigned integer is zero.
func (u BigUint) IsZero() bool {
	return len(trim(u.Limbs)) == 0
}

// IsOdd reports whether the unsigned integer is odd.
func (u BigUint) IsOdd() bool {
	limbs := trim(u.Limbs)
	return len(limbs) > 0 && limbs[0]&1 == 1
}

// BitLen returns the minimal number of bits needed to represent u.
func (u BigUint) BitLen() int {
	limbs := trim(u.Limbs)
	if len(limbs) == 0 {
		return 0
	}
	return (len(limbs)-1)*64 + bits.Len64(limbs[len(limbs)-1])
}

// TrailingZeros returns the number of trailing zero bits.
func (u BigUint) TrailingZeros() int {
	limbs := trim(u.Limbs)
	for i, limb := range limbs {
		if limb != 0 {
			return i*64 + bits.TrailingZeros64(limb)
		}
	}
	return 0
}

// Cmp compares two BigUint values and returns -1, 0, or 1.
func (u BigUint) Cmp(v BigUint) int {
	return cmpLimbs(u.Limbs, v.Limbs)
}

// Uint64 converts BigUint to uint64 if it fits.
func (u BigUint) Uint64() (uint64, bool) {
	limbs := trim(u.Limbs)
	switch len(limbs) {
	case 0:
		return 0, true
	case 1:
		return limbs[0], true
	default:
		return 0, false
	}
}

// UintAdd adds two BigUint values.
func UintAdd(a, b BigUint) (BigUint, error) {
	al, bl := trim(a.Limbs), trim(b.Limbs)
	if len(al) < len(bl) {
		al, bl = bl, al
	}
	if len(al) == 0 {
		return BigUint{}, nil
	}
	out := make([]uint64, len(al)+1)
	var carry uint64
	for i, av := range al {
		bv := uint64(0)
		if i < len(bl) {
			bv = bl[i]
		}
		out[i], carry = bits.Add64(av, bv, carry)
	}
	out[len(al)] = carry
	return checkedUint(out)
}

// UintAddSmall adds a single-limb value to a BigUint.
func UintAddSmall(u BigUint, v uint64) (BigUint, error) {
	return UintAdd(u, UintFromUint64(v))
}

// UintSub subtracts b from a, which must not be smaller.
func UintSub(a, b BigUint) (BigUint, error) {
	al, bl := trim(a.Limbs), trim(b.Limbs)
	if cmpLimbs(al, bl) < 0 {
		return BigUint{}, ErrUnderflow
	}
	if len(bl) == 0 {
		return BigUint{Limbs: al}, nil
	}
	out := make([]uint64, len(al))
	copy(out, al)
	subInPlace(out, bl)
	return BigUint{Limbs: trim(out)}, nil
}

// UintMul multiplies two BigUint values via schoolbook limb products.
func UintMul(a, b BigUint) (BigUint, error) {
	al, bl := trim(a.Limbs), trim(b.Limbs)
	if len(al) == 0 || len(bl) == 0 {
		return BigUint{}, nil
	}
	if len(al)+len(bl) > MaxLimbs {
		return BigUint{}, ErrMaxLimbs
	}
	out := make([]uint64, len(al)+len(bl))
	for i, av := range al {
		var carry uint64
		for j, bv := range bl {
			hi, lo := bits.Mul64(av, bv)
			var c uint64
			lo, c = bits.Add64(lo, out[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			out[i+j] = lo
			carry = hi
		}
		out[i+len(bl)] += carry
	}
	return checkedUint(out)
}

// UintMulSmall multiplies a BigUint by a single limb.
func UintMulSmall(u BigUint, m uint64) (BigUint, error) {
	return UintMul(u, UintFromUint64(m))
}

// UintDivModSmall divides a BigUint by a single limb, returning the limb
// remainder directly.
func UintDivModSmall(u BigUint, d uint64) (q BigUint, r uint64, err error) {
	if d == 0 {
		return BigUint{}, 0, ErrDivByZero
	}
	limbs := trim(u.Limbs)
	if len(limbs) == 0 {
		return BigUint{}, 0, nil
	}
	out := make([]uint64, len(limbs))
	var rem uint64
	for i := len(limbs) - 1; i >= 0; i-- {
		// rem < d always holds, which bits.Div64 requires of its high word.
		out[i], rem = bits.Div64(rem, limbs[i], d)
	}
	return BigUint{Limbs: trim(out)}, rem, nil
}

// UintShl shifts left by the given bit count.
func UintShl(u BigUint, n int) (BigUint, error) {
	if n < 0 {
		return BigUint{}, errors.New("negative shift")
	}
	limbs := trim(u.Limbs)
	if len(limbs) == 0 || n == 0 {
		return BigUint{Limbs: limbs}, nil
	}
	words, rem := n/64, n%64
	out := make([]uint64, len(limbs)+words+1)
	for i, v := range limbs {
		if rem == 0 {
			out[i+words] = v
			continue
		}
		out[i+words] |= v << rem
		out[i+words+1] = v >> (64 - rem)
	}
	return checkedUint(out)
}

// UintShr shifts right by the given bit count, discarding shifted-out bits.
func UintShr(u BigUint, n int) (BigUint, error) {
	if n < 0 {
		return BigUint{}, errors.New("negative shift")
	}
	limbs := trim(u.Limbs)
	if len(limbs) == 0 || n == 0 {
		return BigUint{Limbs: limbs}, nil
	}
	words, rem := n/64, n%64
	if words >= len(limbs) {
		return BigUint{}, nil
	}
	out := make([]uint64, len(limbs)-words)
	for i := range out {
		out[i] = limbs[i+words] >> rem
		if rem != 0 && i+words+1 < len(limbs) {
			out[i] |= limbs[i+words+1] << (64 - rem)
		}
	}
	return BigUint{Limbs: trim(out)}, nil
}

// UintDivMod divides a by b with remainder, by binary long division: the
// divisor is aligned under the dividend's top bit, then subtracted out one
// quotient bit per step.
func UintDivMod(a, b BigUint) (q, r BigUint, err error) {
	al, bl := trim(a.Limbs), trim(b.Limbs)
	if len(bl) == 0 {
		return BigUint{}, BigUint{}, ErrDivByZero
	}
	if cmpLimbs(al, bl) < 0 {
		return BigUint{}, BigUint{Limbs: al}, nil
	}
	if len(bl) == 1 {
		qq, rem, err := UintDivModSmall(BigUint{Limbs: al}, bl[0])
		if err != nil {
			return BigUint{}, BigUint{}, err
		}
		return qq, UintFromUint64(rem), nil
	}

	shift := BigUint{Limbs: al}.BitLen() - BigUint{Limbs: bl}.BitLen()
	aligned, err := UintShl(BigUint{Limbs: bl}, shift)
	if err != nil {
		return BigUint{}, BigUint{}, err
	}
	denom := append([]uint64(nil), aligned.Limbs...)
	rem := append([]uint64(nil), al...)
	quot := make([]uint64, shift/64+1)
	for bit := shift; ; bit-- {
		if cmpLimbs(rem, denom) >= 0 {
			subInPlace(rem, denom)
			quot[bit/64] |= uint64(1) << (bit % 64)
		}
		if bit == 0 {
			break
		}
		shr1InPlace(denom)
	}
	return BigUint{Limbs: trim(quot)}, BigUint{Limbs: trim(rem)}, nil
}

func checkedUint(limbs []uint64) (BigUint, error) {
	limbs = trim(limbs)
	if len(limbs) > MaxLimbs {
		return BigUint{}, ErrMaxLimbs
	}
	return BigUint{Limbs: limbs}, nil
}

func trim(limbs []uint64) []uint64 {
	for len(limbs) > 0 && limbs[len(limbs)-1] == 0 {
		limbs = limbs[:len(limbs)-1]
	}
	if len(limbs) == 0 {
		return nil
	}
	return limbs
}

func cmpLimbs(a, b []uint64) int {
	a, b = trim(a), trim(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	for i := len(a) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// subInPlace subtracts sub from dst limb-wise; the caller guarantees
// dst >= sub.
func subInPlace(dst, sub []uint64) {
	var borrow uint64
	for i := range dst {
		sv := uint64(0)
		if i < len(sub) {
			sv = sub[i]
		}
		dst[i], borrow = bits.Sub64(dst[i], sv, borrow)
	}
}

// shr1InPlace halves the value in place, feeding each limb's low bit into
// the next limb down.
func shr1InPlace(limbs []uint64) {
	var carry uint64
	for i := len(limbs) - 1; i >= 0; i-- {
		v := limbs[i]
		limbs[i] = v>>1 | carry<<63
		carry = v & 1
	}
}
