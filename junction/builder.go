package junction

import (
	"log"

	"github.com/sarchlab/elastic/elastic"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// A SynchronizerBuilder can build synchronizers.
type SynchronizerBuilder struct {
	engine sim.Engine
	dir    Direction
	many   []*handshake.Channel
	one    *handshake.Channel
}

// MakeSynchronizerBuilder creates a builder for a fan-in synchronizer.
func MakeSynchronizerBuilder() SynchronizerBuilder {
	return SynchronizerBuilder{
		dir: FanIn,
	}
}

// WithEngine sets the engine that evaluates the synchronizer.
func (b SynchronizerBuilder) WithEngine(e sim.Engine) SynchronizerBuilder {
	b.engine = e
	return b
}

// WithDirection sets the direction.
func (b SynchronizerBuilder) WithDirection(d Direction) SynchronizerBuilder {
	b.dir = d
	return b
}

// WithMany sets the channels on the many side.
func (b SynchronizerBuilder) WithMany(
	channels ...*handshake.Channel,
) SynchronizerBuilder {
	b.many = channels
	return b
}

// WithOne sets the channel on the one side.
func (b SynchronizerBuilder) WithOne(c *handshake.Channel) SynchronizerBuilder {
	b.one = c
	return b
}

// Build creates a synchronizer.
func (b SynchronizerBuilder) Build(name string) *Synchronizer {
	if len(b.many) == 0 {
		log.Panicf("synchronizer %s: needs at least one branch", name)
	}

	if b.one == nil {
		log.Panicf("synchronizer %s: one-side channel is not set", name)
	}

	switch b.dir {
	case FanIn:
		width := 0
		for _, c := range b.many {
			width += c.Width()
		}

		handshake.MustMatchWidth(b.one, width)
	case FanOut:
		for _, c := range b.many {
			handshake.MustMatchWidth(c, b.one.Width())
		}
	}

	s := &Synchronizer{
		ComponentBase: sim.NewComponentBase(name),
		dir:           b.dir,
		many:          b.many,
		one:           b.one,
	}

	if b.engine != nil {
		b.engine.RegisterComponent(s)
	}

	return s
}

// A JoinBuilder can build joins.
type JoinBuilder struct {
	engine sim.Engine
	inputs []*handshake.Channel
	out    *handshake.Channel
	kind   elastic.Kind
	clear  *sim.Wire
}

// MakeJoinBuilder creates a builder with default parameters.
func MakeJoinBuilder() JoinBuilder {
	return JoinBuilder{
		kind: elastic.KindElastic,
	}
}

// WithEngine sets the engine.
func (b JoinBuilder) WithEngine(e sim.Engine) JoinBuilder {
	b.engine = e
	return b
}

// WithInputs sets the input channels. Input 0 lands in the least significant
// bits of the output word.
func (b JoinBuilder) WithInputs(channels ...*handshake.Channel) JoinBuilder {
	b.inputs = channels
	return b
}

// WithOutput sets the output channel. If not set, Build creates a channel
// named Out under the join, as wide as all inputs together.
func (b JoinBuilder) WithOutput(c *handshake.Channel) JoinBuilder {
	b.out = c
	return b
}

// WithBufferKind sets the kind of the input buffers.
func (b JoinBuilder) WithBufferKind(kind elastic.Kind) JoinBuilder {
	b.kind = kind
	return b
}

// WithClear connects the synchronous clear input of the buffers.
func (b JoinBuilder) WithClear(w *sim.Wire) JoinBuilder {
	b.clear = w
	return b
}

// Build creates a join.
func (b JoinBuilder) Build(name string) *Join {
	sim.NameMustBeValid(name)

	if b.engine == nil {
		log.Panicf("join %s: engine is not set", name)
	}

	if len(b.inputs) == 0 {
		log.Panicf("join %s: needs at least one input", name)
	}

	j := &Join{
		name:   name,
		inputs: b.inputs,
	}

	stageBuilder := elastic.MakeBuilder().
		WithEngine(b.engine).
		WithKind(b.kind).
		WithClear(b.clear)

	buffered := make([]*handshake.Channel, len(b.inputs))
	width := 0

	for i, in := range b.inputs {
		s := stageBuilder.WithInput(in).
			Build(sim.BuildNameWithIndex(name, "InBuf", i))
		j.buffers = append(j.buffers, s)
		buffered[i] = s.Output()
		width += in.Width()
	}

	out := b.out
	if out == nil {
		out = handshake.MakeBuilder().
			WithEngine(b.engine).
			WithWidth(width).
			Build(sim.BuildName(name, "Out"))
	}

	j.sync = MakeSynchronizerBuilder().
		WithEngine(b.engine).
		WithDirection(FanIn).
		WithMany(buffered...).
		WithOne(out).
		Build(sim.BuildName(name, "Sync"))

	return j
}

// A ForkBuilder can build forks.
type ForkBuilder struct {
	engine     sim.Engine
	in         *handshake.Channel
	outputs    []*handshake.Channel
	numOutputs int
	eager      bool
	kind       elastic.Kind
	clear      *sim.Wire
}

// MakeForkBuilder creates a builder for an eager fork with two outputs.
func MakeForkBuilder() ForkBuilder {
	return ForkBuilder{
		numOutputs: 2,
		eager:      true,
		kind:       elastic.KindElastic,
	}
}

// WithEngine sets the engine.
func (b ForkBuilder) WithEngine(e sim.Engine) ForkBuilder {
	b.engine = e
	return b
}

// WithInput sets the input channel.
func (b ForkBuilder) WithInput(c *handshake.Channel) ForkBuilder {
	b.in = c
	return b
}

// WithOutputs sets the output channels. This overrides WithNumOutputs.
func (b ForkBuilder) WithOutputs(channels ...*handshake.Channel) ForkBuilder {
	b.outputs = channels
	return b
}

// WithNumOutputs sets the number of output channels that Build creates,
// named Out[i] under the fork.
func (b ForkBuilder) WithNumOutputs(n int) ForkBuilder {
	b.numOutputs = n
	return b
}

// WithEager selects between an eager (buffered) and a lazy fork.
func (b ForkBuilder) WithEager(eager bool) ForkBuilder {
	b.eager = eager
	return b
}

// WithBufferKind sets the kind of the branch buffers of an eager fork.
func (b ForkBuilder) WithBufferKind(kind elastic.Kind) ForkBuilder {
	b.kind = kind
	return b
}

// WithClear connects the synchronous clear input of the branch buffers.
func (b ForkBuilder) WithClear(w *sim.Wire) ForkBuilder {
	b.clear = w
	return b
}

// Build creates a fork.
func (b ForkBuilder) Build(name string) *Fork {
	sim.NameMustBeValid(name)

	if b.engine == nil {
		log.Panicf("fork %s: engine is not set", name)
	}

	if b.in == nil {
		log.Panicf("fork %s: input channel is not set", name)
	}

	outputs := b.outputs
	if outputs == nil {
		if b.numOutputs <= 0 {
			log.Panicf("fork %s: needs at least one output", name)
		}

		outputs = handshake.MakeBuilder().
			WithEngine(b.engine).
			WithWidth(b.in.Width()).
			BuildSeries(name, "Out", b.numOutputs)
	}

	f := &Fork{
		name:    name,
		eager:   b.eager,
		outputs: outputs,
	}

	branches := outputs
	if b.eager {
		branches = b.buildBranches(name, f)
	}

	f.sync = MakeSynchronizerBuilder().
		WithEngine(b.engine).
		WithDirection(FanOut).
		WithMany(branches...).
		WithOne(b.in).
		Build(sim.BuildName(name, "Sync"))

	return f
}

func (b ForkBuilder) buildBranches(name string, f *Fork) []*handshake.Channel {
	branches := handshake.MakeBuilder().
		WithEngine(b.engine).
		WithWidth(b.in.Width()).
		BuildSeries(name, "Branch", len(f.outputs))

	stageBuilder := elastic.MakeBuilder().
		WithEngine(b.engine).
		WithKind(b.kind).
		WithClear(b.clear)

	for i, branch := range branches {
		s := stageBuilder.
			WithInput(branch).
			WithOutput(f.outputs[i]).
			Build(sim.BuildNameWithIndex(name, "OutBuf", i))
		f.buffers = append(f.buffers, s)
	}

	return branches
}
