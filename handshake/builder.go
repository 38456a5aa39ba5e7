package handshake

import (
	"log"

	"github.com/sarchlab/elastic/sim"
)

// A Builder can build channels.
type Builder struct {
	engine sim.Engine
	width  int
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		width: 32,
	}
}

// WithEngine sets the engine that owns the wires and observes the channel.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithWidth sets the width of the data word.
func (b Builder) WithWidth(width int) Builder {
	b.width = width
	return b
}

// Build creates a channel. The wires are named after the channel with the
// suffixes Valid, Ready and Data.
func (b Builder) Build(name string) *Channel {
	if b.engine == nil {
		log.Panic("handshake: engine is not set")
	}

	if b.width <= 0 {
		log.Panicf("handshake: channel %s must be at least 1 bit wide", name)
	}

	net := b.engine.Net()

	c := &Channel{
		ComponentBase: sim.NewComponentBase(name),
		valid:         net.NewBit(sim.BuildName(name, "Valid")),
		ready:         net.NewBit(sim.BuildName(name, "Ready")),
		data:          net.NewWire(sim.BuildName(name, "Data"), b.width),
		timeTeller:    b.engine,
	}

	b.engine.RegisterComponent(c)

	return c
}

// BuildSeries creates n channels named Parent.Elem[i].
func (b Builder) BuildSeries(parent, elem string, n int) []*Channel {
	if n <= 0 {
		log.Panicf("handshake: cannot build %d channels", n)
	}

	channels := make([]*Channel, n)
	for i := range channels {
		channels[i] = b.Build(sim.BuildNameWithIndex(parent, elem, i))
	}

	return channels
}

// MustMatchWidth panics if the channel does not carry width bits.
func MustMatchWidth(c *Channel, width int) {
	if c.Width() != width {
		log.Panicf("channel %s is %d bits wide, need %d",
			c.Name(), c.Width(), width)
	}
}
