package handshake

import (
	"log"
	"math/rand"
)

// A Throttle decides, one cycle at a time, whether a traffic driver is
// willing to act in the next cycle.
type Throttle interface {
	Allow() bool
}

type always struct{}

func (always) Allow() bool {
	return true
}

// Always returns a throttle that never holds back.
func Always() Throttle {
	return always{}
}

type probability struct {
	p   float64
	rng *rand.Rand
}

func (t *probability) Allow() bool {
	return t.rng.Float64() < t.p
}

// Probability returns a throttle that allows with probability p. The same
// seed always produces the same sequence of decisions.
func Probability(p float64, seed int64) Throttle {
	if p < 0 || p > 1 {
		log.Panicf("handshake: probability %f is outside [0, 1]", p)
	}

	return &probability{
		p:   p,
		rng: rand.New(rand.NewSource(seed)),
	}
}

type pattern struct {
	bits []bool
	next int
}

func (t *pattern) Allow() bool {
	b := t.bits[t.next]
	t.next = (t.next + 1) % len(t.bits)

	return b
}

// Pattern returns a throttle that repeats the given decisions forever.
func Pattern(bits ...bool) Throttle {
	if len(bits) == 0 {
		log.Panic("handshake: empty throttle pattern")
	}

	return &pattern{bits: bits}
}

// PatternString is Pattern written as a string of '1' and '0', read left to
// right. "10" allows every other cycle.
func PatternString(s string) Throttle {
	bits := make([]bool, 0, len(s))

	for _, c := range s {
		switch c {
		case '1':
			bits = append(bits, true)
		case '0':
			bits = append(bits, false)
		default:
			log.Panicf("handshake: bad throttle pattern %q", s)
		}
	}

	return Pattern(bits...)
}
