// Package handshake provides the valid/ready channel that every elastic
// component consumes and produces, plus traffic drivers for testing.
package handshake

import (
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/sim"
)

// HookPosTransfer marks a cycle in which both valid and ready were high. The
// hook item is a Transfer.
var HookPosTransfer = &sim.HookPos{Name: "Transfer"}

// HookPosStall marks a cycle in which valid was high but ready was low. The
// hook item is a Transfer holding the word that waited.
var HookPosStall = &sim.HookPos{Name: "Stall"}

// A Transfer is one word observed on a channel.
type Transfer struct {
	Channel string
	Cycle   sim.VTimeInCycle
	Data    bitvec.Vec
}

// A Channel bundles the valid, ready and data wires between one producer and
// one consumer. The producer drives valid and data; the consumer drives
// ready. A word moves in every cycle in which valid and ready are both high.
//
// A Channel is registered with the engine so that it can report transfers
// and stalls once the wires of a cycle have settled.
type Channel struct {
	*sim.ComponentBase

	valid *sim.Wire
	ready *sim.Wire
	data  *sim.Wire

	timeTeller sim.TimeTeller

	numTransfers uint64
	numStalls    uint64
}

// Valid returns the wire driven by the producer.
func (c *Channel) Valid() *sim.Wire {
	return c.valid
}

// Ready returns the wire driven by the consumer.
func (c *Channel) Ready() *sim.Wire {
	return c.ready
}

// Data returns the data wire.
func (c *Channel) Data() *sim.Wire {
	return c.data
}

// Width returns the width of the data word.
func (c *Channel) Width() int {
	return c.data.Width()
}

// Fire reports whether a word moves in the current cycle.
func (c *Channel) Fire() bool {
	return c.valid.Bit() && c.ready.Bit()
}

// Stalled reports whether the producer offers a word that the consumer does
// not take in the current cycle.
func (c *Channel) Stalled() bool {
	return c.valid.Bit() && !c.ready.Bit()
}

// NumTransfers returns the number of words moved so far.
func (c *Channel) NumTransfers() uint64 {
	return c.numTransfers
}

// NumStalls returns the number of stalled cycles so far.
func (c *Channel) NumStalls() uint64 {
	return c.numStalls
}

// Settle does nothing. A channel has no logic of its own.
func (c *Channel) Settle() {
}

// Tick counts and reports the transfer or stall of the cycle. Channels never
// report progress; the components on either end do.
func (c *Channel) Tick() bool {
	var pos *sim.HookPos

	switch {
	case c.Fire():
		c.numTransfers++
		pos = HookPosTransfer
	case c.Stalled():
		c.numStalls++
		pos = HookPosStall
	default:
		return false
	}

	if c.NumHooks() == 0 {
		return false
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item: Transfer{
			Channel: c.Name(),
			Cycle:   c.timeTeller.CurrentTime(),
			Data:    c.data.Get(),
		},
	})

	return false
}
