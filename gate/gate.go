// Package gate provides handshake gates: a gate controlled by an enable
// wire, and a gate controlled by a credit counter.
package gate

import (
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// A Gate passes a channel through while enabled and blocks it otherwise.
// Valid and ready are always gated together, so a blocked word is neither
// taken nor lost.
type Gate struct {
	*sim.ComponentBase

	in     *handshake.Channel
	out    *handshake.Channel
	enable *sim.Wire

	zeroWhenDisabled bool
}

// Input returns the gated input channel.
func (g *Gate) Input() *handshake.Channel {
	return g.in
}

// Output returns the output channel.
func (g *Gate) Output() *handshake.Channel {
	return g.out
}

// Enabled reports whether the gate passes words in the current cycle. A gate
// without an enable wire is always enabled.
func (g *Gate) Enabled() bool {
	return sim.BitOf(g.enable, true)
}

// Settle drives the gated signals.
func (g *Gate) Settle() {
	drive(g.in, g.out, g.Enabled(), g.zeroWhenDisabled)
}

// Tick does nothing. A gate holds no state.
func (g *Gate) Tick() bool {
	return false
}

func drive(in, out *handshake.Channel, enabled, zeroWhenDisabled bool) {
	out.Valid().SetBit(enabled && in.Valid().Bit())
	in.Ready().SetBit(enabled && out.Ready().Bit())

	if enabled || !zeroWhenDisabled {
		out.Data().Set(in.Data().Get())
		return
	}

	out.Data().Set(bitvec.New(out.Width()))
}
