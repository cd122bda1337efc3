package bignum

import (
	"fmt"
	"strings"
)

// decChunk is the largest power of ten below 2^64; peeling one chunk per
// UintDivModSmall step yields 19 decimal digits at a time.
const (
	decChunk       = uint64(10_000_000_000_000_000_000)
	decChunkDigits = 19
)

// FormatUint renders u in decimal.
func FormatUint(u BigUint) string {
	if u.IsZero() {
		return "0"
	}
	var chunks []uint64
	cur := u
	for !cur.IsZero() {
		q, r, err := UintDivModSmall(cur, decChunk)
		if err != nil {
			return "<format-error>"
		}
		chunks = append(chunks, r)
		cur = q
	}
	var sb strings.Builder
	sb.Grow(len(chunks) * decChunkDigits)
	fmt.Fprintf(&sb, "%d", chunks[len(chunks)-1])
	for i := len(chunks) - 2; i >= 0; i-- {
		fmt.Fprintf(&sb, "%0*d", decChunkDigits, chunks[i])
	}
	return sb.String()
}

// FormatInt renders i in decimal with a leading minus for negatives.
func FormatInt(i BigInt) string {
	if i.Neg && !i.IsZero() {
		return "-" + FormatUint(i.Mag)
	}
	return FormatUint(i.Mag)
}
