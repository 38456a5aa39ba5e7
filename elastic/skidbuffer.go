package elastic

import (
	"github.com/sarchlab/elastic/bitvec"
)

// SkidState is the state of a skid buffer.
type SkidState int

// The skid buffer states.
const (
	SkidEmpty SkidState = iota
	SkidBusy
	SkidFull
)

func (s SkidState) String() string {
	switch s {
	case SkidEmpty:
		return "EMPTY"
	case SkidBusy:
		return "BUSY"
	default:
		return "FULL"
	}
}

// SkidBuffer is a two-slot buffer whose ready and valid outputs come straight
// from registers. The main slot feeds the output. The skid slot catches the
// word that arrives in the cycle in which the output stalls, because input
// ready only drops in the following cycle.
type SkidBuffer struct {
	stageBase

	state SkidState
	main  bitvec.Vec
	skid  bitvec.Vec
}

// State returns the current state.
func (b *SkidBuffer) State() SkidState {
	return b.state
}

// Occupancy returns the number of words held.
func (b *SkidBuffer) Occupancy() int {
	return int(b.state)
}

// Capacity returns 2.
func (b *SkidBuffer) Capacity() int {
	return 2
}

// Settle drives the registered outputs.
func (b *SkidBuffer) Settle() {
	b.in.Ready().SetBit(b.state != SkidFull)
	b.out.Valid().SetBit(b.state != SkidEmpty)
	b.out.Data().Set(b.main)
}

// Tick moves words between the slots.
func (b *SkidBuffer) Tick() bool {
	if b.ClearAsserted() {
		wasEmpty := b.state == SkidEmpty
		b.state = SkidEmpty
		b.main = bitvec.New(b.main.Width())
		b.skid = bitvec.New(b.skid.Width())

		return !wasEmpty
	}

	inFire := b.in.Fire()
	outFire := b.out.Fire()

	switch b.state {
	case SkidEmpty:
		if inFire {
			b.main = b.in.Data().Get()
			b.state = SkidBusy
		}
	case SkidBusy:
		switch {
		case inFire && outFire:
			b.main = b.in.Data().Get()
		case inFire:
			b.skid = b.in.Data().Get()
			b.state = SkidFull
		case outFire:
			b.state = SkidEmpty
		}
	case SkidFull:
		if outFire {
			b.main = b.skid
			b.state = SkidBusy
		}
	}

	return b.state != SkidEmpty || inFire || outFire
}
