package gate

import (
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// A CreditGate is a gate that is enabled while its credit count is not zero.
// Every word that passes costs one credit; every cycle with add high returns
// one credit.
//
// At most one adjustment happens per cycle. A transfer and an add in the same
// cycle cancel out. An add at the maximum count fails, and the failure is
// remembered until clear.
type CreditGate struct {
	*sim.ComponentBase

	in  *handshake.Channel
	out *handshake.Channel
	add *sim.Wire

	countWire  *sim.Wire
	atMaxWire  *sim.Wire
	atZeroWire *sim.Wire
	failedWire *sim.Wire

	max     uint64
	initial uint64

	count           uint64
	addFailed       bool
	adjustmentValid bool

	zeroWhenDisabled bool
}

// Input returns the gated input channel.
func (g *CreditGate) Input() *handshake.Channel {
	return g.in
}

// Output returns the output channel.
func (g *CreditGate) Output() *handshake.Channel {
	return g.out
}

// Count returns the credit count.
func (g *CreditGate) Count() uint64 {
	return g.count
}

// Max returns the largest credit count.
func (g *CreditGate) Max() uint64 {
	return g.max
}

// AtMax reports whether the count is at its maximum.
func (g *CreditGate) AtMax() bool {
	return g.count == g.max
}

// AtZero reports whether the count is zero, which blocks the gate.
func (g *CreditGate) AtZero() bool {
	return g.count == 0
}

// AddFailed reports whether an add was dropped at the maximum count since
// the last clear.
func (g *CreditGate) AddFailed() bool {
	return g.addFailed
}

// AdjustmentValid reports whether the last cycle saw an add, a transfer, or
// both.
func (g *CreditGate) AdjustmentValid() bool {
	return g.adjustmentValid
}

// Settle gates the channel on the count and drives the status wires.
func (g *CreditGate) Settle() {
	drive(g.in, g.out, g.count != 0, g.zeroWhenDisabled)

	if g.countWire != nil {
		g.countWire.SetUint64(g.count)
		g.atMaxWire.SetBit(g.AtMax())
		g.atZeroWire.SetBit(g.AtZero())
		g.failedWire.SetBit(g.addFailed)
	}
}

// Tick applies the adjustment of the cycle.
func (g *CreditGate) Tick() bool {
	if g.ClearAsserted() {
		changed := g.count != g.initial || g.addFailed
		g.count = g.initial
		g.addFailed = false
		g.adjustmentValid = false

		return changed
	}

	add := sim.BitOf(g.add, false)
	transfer := g.out.Fire()

	g.adjustmentValid = add || transfer

	switch {
	case add && transfer:
	case transfer:
		g.count--
	case add:
		if g.count == g.max {
			g.addFailed = true
		} else {
			g.count++
		}
	}

	return g.adjustmentValid
}
