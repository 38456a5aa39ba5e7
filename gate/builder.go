package gate

import (
	"log"
	"math/bits"

	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// A Builder can build gates and credit gates.
type Builder struct {
	engine           sim.Engine
	in               *handshake.Channel
	out              *handshake.Channel
	clear            *sim.Wire
	zeroWhenDisabled bool

	enable *sim.Wire

	add           *sim.Wire
	maxCredit     uint64
	initialCredit uint64
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		maxCredit: 1,
	}
}

// WithEngine sets the engine that evaluates the gate.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithInput sets the gated channel.
func (b Builder) WithInput(c *handshake.Channel) Builder {
	b.in = c
	return b
}

// WithOutput sets the output channel. If not set, Build creates a channel
// named Out under the gate.
func (b Builder) WithOutput(c *handshake.Channel) Builder {
	b.out = c
	return b
}

// WithClear connects the synchronous clear input of a credit gate.
func (b Builder) WithClear(w *sim.Wire) Builder {
	b.clear = w
	return b
}

// WithZeroWhenDisabled forces the output data to zero while the gate is
// blocked. By default the data passes through unchanged.
func (b Builder) WithZeroWhenDisabled(zero bool) Builder {
	b.zeroWhenDisabled = zero
	return b
}

// WithEnable connects the enable wire of a gate.
func (b Builder) WithEnable(w *sim.Wire) Builder {
	b.enable = w
	return b
}

// WithAdd connects the credit return wire of a credit gate.
func (b Builder) WithAdd(w *sim.Wire) Builder {
	b.add = w
	return b
}

// WithMaxCredit sets the largest credit count of a credit gate.
func (b Builder) WithMaxCredit(n uint64) Builder {
	b.maxCredit = n
	return b
}

// WithInitialCredit sets the credit count after build and after clear.
func (b Builder) WithInitialCredit(n uint64) Builder {
	b.initialCredit = n
	return b
}

func (b Builder) channels(name string) (in, out *handshake.Channel) {
	if b.in == nil {
		log.Panicf("gate %s: input channel is not set", name)
	}

	out = b.out
	if out == nil {
		if b.engine == nil {
			log.Panicf("gate %s: engine is needed to create the output", name)
		}

		out = handshake.MakeBuilder().
			WithEngine(b.engine).
			WithWidth(b.in.Width()).
			Build(sim.BuildName(name, "Out"))
	}

	handshake.MustMatchWidth(out, b.in.Width())

	return b.in, out
}

// Build creates a gate.
func (b Builder) Build(name string) *Gate {
	in, out := b.channels(name)

	g := &Gate{
		ComponentBase:    sim.NewComponentBase(name),
		in:               in,
		out:              out,
		enable:           b.enable,
		zeroWhenDisabled: b.zeroWhenDisabled,
	}

	if b.engine != nil {
		b.engine.RegisterComponent(g)
	}

	return g
}

// BuildCreditGate creates a credit gate. When an engine is set, the count
// and the AtMax, AtZero and AddFailed flags are also driven onto wires named
// after the gate.
func (b Builder) BuildCreditGate(name string) *CreditGate {
	if b.maxCredit == 0 {
		log.Panicf("credit gate %s: max credit must be positive", name)
	}

	if b.initialCredit > b.maxCredit {
		log.Panicf("credit gate %s: initial credit %d exceeds max %d",
			name, b.initialCredit, b.maxCredit)
	}

	in, out := b.channels(name)

	g := &CreditGate{
		ComponentBase:    sim.NewComponentBase(name),
		in:               in,
		out:              out,
		add:              b.add,
		max:              b.maxCredit,
		initial:          b.initialCredit,
		count:            b.initialCredit,
		zeroWhenDisabled: b.zeroWhenDisabled,
	}
	g.SetClear(b.clear)

	if b.engine != nil {
		net := b.engine.Net()
		g.countWire = net.NewWire(sim.BuildName(name, "Count"),
			bits.Len64(b.maxCredit))
		g.atMaxWire = net.NewBit(sim.BuildName(name, "AtMax"))
		g.atZeroWire = net.NewBit(sim.BuildName(name, "AtZero"))
		g.failedWire = net.NewBit(sim.BuildName(name, "AddFailed"))

		b.engine.RegisterComponent(g)
	}

	return g
}
