// Package bitvec provides fixed-width bit vectors and the bit-manipulation
// primitives used by the handshake and arbitration models.
//
// A Vec is an immutable value. Bit 0 is the least significant bit and, for
// request and grant masks, the highest-priority position.
package bitvec

import (
	"log"
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

const wordBits = 64

// Vec is a fixed-width vector of bits.
type Vec struct {
	width int
	words []uint64
}

// New creates an all-zero vector of the given width.
func New(width int) Vec {
	if width <= 0 {
		log.Panicf("bitvec: width must be positive, got %d", width)
	}

	return Vec{
		width: width,
		words: make([]uint64, numWords(width)),
	}
}

// FromUint64 creates a vector holding the low width bits of value.
func FromUint64(width int, value uint64) Vec {
	v := New(width)
	v.words[0] = value
	v.normalize()

	return v
}

// Ones creates a vector with every bit set.
func Ones(width int) Vec {
	v := New(width)
	for i := range v.words {
		v.words[i] = ^uint64(0)
	}
	v.normalize()

	return v
}

// OneHot creates a vector with only bit index set.
func OneHot(width, index int) Vec {
	v := New(width)
	v.mustContain(index)
	v.words[index/wordBits] = 1 << (uint(index) % wordBits)

	return v
}

// Parse reads a binary string written most significant bit first. Underscores
// are ignored so that long masks can be grouped, e.g. "0101_1000".
func Parse(s string) (Vec, error) {
	digits := strings.ReplaceAll(s, "_", "")
	if digits == "" {
		return Vec{}, errors.Errorf("bitvec: empty literal %q", s)
	}

	v := New(len(digits))
	for i, c := range digits {
		pos := len(digits) - 1 - i
		switch c {
		case '0':
		case '1':
			v.words[pos/wordBits] |= 1 << (uint(pos) % wordBits)
		default:
			return Vec{}, errors.Errorf(
				"bitvec: invalid digit %q in literal %q", c, s)
		}
	}

	return v, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Vec {
	v, err := Parse(s)
	if err != nil {
		log.Panic(err)
	}

	return v
}

func numWords(width int) int {
	return (width + wordBits - 1) / wordBits
}

func (v *Vec) normalize() {
	rem := v.width % wordBits
	if rem != 0 {
		v.words[len(v.words)-1] &= (uint64(1) << uint(rem)) - 1
	}
}

func (v Vec) clone() Vec {
	c := Vec{width: v.width, words: make([]uint64, len(v.words))}
	copy(c.words, v.words)

	return c
}

func (v Vec) mustContain(index int) {
	if index < 0 || index >= v.width {
		log.Panicf("bitvec: bit %d out of range for width %d", index, v.width)
	}
}

func (v Vec) mustMatch(o Vec) {
	if v.width != o.width {
		log.Panicf("bitvec: width mismatch %d vs %d", v.width, o.width)
	}
}

// Width returns the number of bits in the vector.
func (v Vec) Width() int {
	return v.width
}

// Bit reports whether bit index is set.
func (v Vec) Bit(index int) bool {
	v.mustContain(index)
	return v.words[index/wordBits]&(1<<(uint(index)%wordBits)) != 0
}

// WithBit returns a copy of v with bit index set to b.
func (v Vec) WithBit(index int, b bool) Vec {
	v.mustContain(index)

	c := v.clone()
	mask := uint64(1) << (uint(index) % wordBits)
	if b {
		c.words[index/wordBits] |= mask
	} else {
		c.words[index/wordBits] &^= mask
	}

	return c
}

// Uint64 returns the low 64 bits of the vector.
func (v Vec) Uint64() uint64 {
	if len(v.words) == 0 {
		return 0
	}

	return v.words[0]
}

// IsZero reports whether no bit is set.
func (v Vec) IsZero() bool {
	for _, w := range v.words {
		if w != 0 {
			return false
		}
	}

	return true
}

// Equal reports whether both vectors have the same width and bits.
func (v Vec) Equal(o Vec) bool {
	if v.width != o.width {
		return false
	}

	for i := range v.words {
		if v.words[i] != o.words[i] {
			return false
		}
	}

	return true
}

// OnesCount returns the population count.
func (v Vec) OnesCount() int {
	n := 0
	for _, w := range v.words {
		n += bits.OnesCount64(w)
	}

	return n
}

// And returns the bitwise AND of v and o.
func (v Vec) And(o Vec) Vec {
	v.mustMatch(o)

	c := v.clone()
	for i := range c.words {
		c.words[i] &= o.words[i]
	}

	return c
}

// Or returns the bitwise OR of v and o.
func (v Vec) Or(o Vec) Vec {
	v.mustMatch(o)

	c := v.clone()
	for i := range c.words {
		c.words[i] |= o.words[i]
	}

	return c
}

// Xor returns the bitwise XOR of v and o.
func (v Vec) Xor(o Vec) Vec {
	v.mustMatch(o)

	c := v.clone()
	for i := range c.words {
		c.words[i] ^= o.words[i]
	}

	return c
}

// Not returns the bitwise complement of v.
func (v Vec) Not() Vec {
	c := v.clone()
	for i := range c.words {
		c.words[i] = ^c.words[i]
	}
	c.normalize()

	return c
}

// Neg returns the two's complement negation of v, modulo 2^width.
func (v Vec) Neg() Vec {
	c := v.Not()

	carry := uint64(1)
	for i := range c.words {
		c.words[i], carry = bits.Add64(c.words[i], 0, carry)
	}
	c.normalize()

	return c
}

// Dec returns v minus one, modulo 2^width.
func (v Vec) Dec() Vec {
	c := v.clone()

	borrow := uint64(1)
	for i := range c.words {
		c.words[i], borrow = bits.Sub64(c.words[i], 0, borrow)
	}
	c.normalize()

	return c
}

// Slice extracts width bits starting at bit lo.
func (v Vec) Slice(lo, width int) Vec {
	if lo < 0 || lo+width > v.width {
		log.Panicf("bitvec: slice [%d+:%d] out of range for width %d",
			lo, width, v.width)
	}

	s := New(width)
	for i := 0; i < width; i++ {
		if v.Bit(lo + i) {
			s.words[i/wordBits] |= 1 << (uint(i) % wordBits)
		}
	}

	return s
}

// String renders the vector most significant bit first.
func (v Vec) String() string {
	var sb strings.Builder

	sb.Grow(v.width)
	for i := v.width - 1; i >= 0; i-- {
		if v.Bit(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}

	return sb.String()
}

// MarshalText encodes the vector as its binary string.
func (v Vec) MarshalText() ([]byte, error) {
	if v.width == 0 {
		return []byte{}, nil
	}

	return []byte(v.String()), nil
}

// UnmarshalText decodes a binary string produced by MarshalText.
func (v *Vec) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}
