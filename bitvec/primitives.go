package bitvec

import (
	"log"
	"math/bits"
)

// Concat joins parts into one vector. parts[0] occupies the least significant
// bits of the result.
func Concat(parts ...Vec) Vec {
	if len(parts) == 0 {
		log.Panic("bitvec: nothing to concatenate")
	}

	width := 0
	for _, p := range parts {
		width += p.width
	}

	out := New(width)
	pos := 0
	for _, p := range parts {
		for i := 0; i < p.width; i++ {
			if p.Bit(i) {
				out.words[pos/wordBits] |= 1 << (uint(pos) % wordBits)
			}
			pos++
		}
	}

	return out
}

// IsolateLowest keeps only the least significant set bit: v & -v.
// A zero vector maps to zero.
func IsolateLowest(v Vec) Vec {
	return v.And(v.Neg())
}

// Thermometer turns a one-hot vector into a mask covering the set bit and
// every less significant position. A zero vector maps to zero.
//
//	00100 -> 00111
//	00000 -> 00000
func Thermometer(v Vec) Vec {
	if v.IsZero() {
		return New(v.width)
	}

	return v.Dec().Or(v)
}

// IsOneHot reports whether exactly one bit is set.
func IsOneHot(v Vec) bool {
	return v.OnesCount() == 1
}

// Log2 returns the index of the set bit of a power of two. The second result
// is false if v is not a power of two.
func Log2(v Vec) (int, bool) {
	if !IsOneHot(v) {
		return 0, false
	}

	return LowestIndex(v), true
}

// LowestIndex returns the position of the least significant set bit, or -1 if
// no bit is set.
func LowestIndex(v Vec) int {
	for i, w := range v.words {
		if w != 0 {
			return i*wordBits + bits.TrailingZeros64(w)
		}
	}

	return -1
}
