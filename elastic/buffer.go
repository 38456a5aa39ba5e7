package elastic

import (
	"github.com/sarchlab/elastic/bitvec"
)

// Buffer is the one-slot elastic buffer.
//
// The slot is either EMPTY or FULL. Output valid is FULL. Input ready is high
// when the slot is EMPTY or the word in the slot leaves in the same cycle, so
// a word can enter and another leave in every cycle.
type Buffer struct {
	stageBase

	full bool
	word bitvec.Vec
}

// Occupancy returns 1 if the slot is FULL.
func (b *Buffer) Occupancy() int {
	if b.full {
		return 1
	}

	return 0
}

// Capacity returns 1.
func (b *Buffer) Capacity() int {
	return 1
}

// Settle drives output valid and data from the slot, and input ready from the
// slot and the output ready.
func (b *Buffer) Settle() {
	b.out.Valid().SetBit(b.full)
	b.out.Data().Set(b.word)
	b.in.Ready().SetBit(!b.full || b.out.Ready().Bit())
}

// Tick updates the slot.
func (b *Buffer) Tick() bool {
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
