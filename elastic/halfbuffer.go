package elastic

import (
	"github.com/sarchlab/elastic/bitvec"
)

// HalfBuffer is a one-slot buffer with registered ready and valid. It accepts
// a word only while empty and offers it only while full, so it moves at most
// one word every two cycles.
type HalfBuffer struct {
	stageBase

	full bool
	word bitvec.Vec
}

// Occupancy returns 1 if the slot is full.
func (b *HalfBuffer) Occupancy() int {
	if b.full {
		return 1
	}

	return 0
}

// Capacity returns 1.
func (b *HalfBuffer) Capacity() int {
	return 1
}

// Settle drives the registered outputs.
func (b *HalfBuffer) Settle() {
	b.in.Ready().SetBit(!b.full)
	b.out.Valid().SetBit(b.full)
	b.out.Data().Set(b.word)
}

// Tick updates the slot.
func (b *HalfBuffer) Tick() bool {
	if b.ClearAsserted() {
		wasFull := b.full
		b.full = false
		b.word = bitvec.New(b.word.Width())

		return wasFull
	}

	inFire := b.in.Fire()
	outFire := b.out.Fire()

	switch {
	case inFire:
		b.word = b.in.Data().Get()
		b.full = true
	case outFire:
		b.full = false
	}

	return b.full || inFire || outFire
}
