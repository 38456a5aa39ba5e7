package elastic

import (
	"log"

	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// A Builder can build stages.
type Builder struct {
	engine sim.Engine
	kind   Kind
	in     *handshake.Channel
	out    *handshake.Channel
	clear  *sim.Wire
}

// MakeBuilder creates a builder that builds elastic buffers.
func MakeBuilder() Builder {
	return Builder{
		kind: KindElastic,
	}
}

// WithEngine sets the engine that ticks the stage. The engine also owns the
// output channel if the builder has to create it.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithKind sets the kind of stage to build.
func (b Builder) WithKind(kind Kind) Builder {
	b.kind = kind
	return b
}

// WithInput sets the channel the stage consumes.
func (b Builder) WithInput(c *handshake.Channel) Builder {
	b.in = c
	return b
}

// WithOutput sets the channel the stage produces. If not set, Build creates
// a channel named Out under the stage.
func (b Builder) WithOutput(c *handshake.Channel) Builder {
	b.out = c
	return b
}

// WithClear connects the synchronous clear input.
func (b Builder) WithClear(w *sim.Wire) Builder {
	b.clear = w
	return b
}

// Build creates a stage.
func (b Builder) Build(name string) Stage {
	if b.in == nil {
		log.Panicf("stage %s: input channel is not set", name)
	}

	out := b.out
	if out == nil {
		if b.engine == nil {
			log.Panicf("stage %s: engine is needed to create the output", name)
		}

		out = handshake.MakeBuilder().
			WithEngine(b.engine).
			WithWidth(b.in.Width()).
			Build(sim.BuildName(name, "Out"))
	}

	handshake.MustMatchWidth(out, b.in.Width())

	base := stageBase{
		ComponentBase: sim.NewComponentBase(name),
		in:            b.in,
		out:           out,
	}
	base.SetClear(b.clear)

	zero := bitvec.New(b.in.Width())

	var s Stage

	switch b.kind {
	case KindElastic:
		s = &Buffer{stageBase: base, word: zero}
	case KindSkid:
		s = &SkidBuffer{stageBase: base, main: zero, skid: zero}
	case KindHalf:
		s = &HalfBuffer{stageBase: base, word: zero}
	default:
		log.Panicf("stage %s: unknown kind %s", name, b.kind)
	}

	if b.engine != nil {
		b.engine.RegisterComponent(s)
	}

	return s
}
