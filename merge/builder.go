package merge

import (
	"log"

	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/elastic"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// A Builder can build priority merges and one-hot merges.
type Builder struct {
	engine   sim.Engine
	inputs   []*handshake.Channel
	out      *handshake.Channel
	kind     elastic.Kind
	clear    *sim.Wire
	policy   arbitration.Policy
	selector *sim.Wire
	op       BoolOp
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		kind: elastic.KindElastic,
		op:   OpOr,
	}
}

// WithEngine sets the engine. The engine is required.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithInputs sets the input channels. Input 0 has the highest priority under
// a priority policy.
func (b Builder) WithInputs(channels ...*handshake.Channel) Builder {
	b.inputs = channels
	return b
}

// WithOutput sets the output channel. If not set, Build creates a channel
// named Out under the merge.
func (b Builder) WithOutput(c *handshake.Channel) Builder {
	b.out = c
	return b
}

// WithBufferKind sets the kind of the buffers inside the merge.
func (b Builder) WithBufferKind(kind elastic.Kind) Builder {
	b.kind = kind
	return b
}

// WithClear connects the synchronous clear input.
func (b Builder) WithClear(w *sim.Wire) Builder {
	b.clear = w
	return b
}

// WithPolicy sets the policy of a priority merge. The default grants the
// lowest-indexed input; a round-robin policy makes the merge fair.
func (b Builder) WithPolicy(p arbitration.Policy) Builder {
	b.policy = p
	return b
}

// WithSelector connects the selector wire of a one-hot merge. If not set,
// BuildOneHot creates a wire named Select under the merge.
func (b Builder) WithSelector(w *sim.Wire) Builder {
	b.selector = w
	return b
}

// WithOp sets the operator that combines multiple selected inputs of a
// one-hot merge.
func (b Builder) WithOp(op BoolOp) Builder {
	b.op = op
	return b
}

func (b Builder) mustBeValid(name string) int {
	sim.NameMustBeValid(name)

	if b.engine == nil {
		log.Panicf("merge %s: engine is not set", name)
	}

	if len(b.inputs) == 0 {
		log.Panicf("merge %s: needs at least one input", name)
	}

	width := b.inputs[0].Width()
	for _, in := range b.inputs {
		handshake.MustMatchWidth(in, width)
	}

	return width
}

func (b Builder) stageBuilder() elastic.Builder {
	return elastic.MakeBuilder().
		WithEngine(b.engine).
		WithKind(b.kind).
		WithClear(b.clear)
}

func (b Builder) buildOutputBuffer(name string, width int) elastic.Stage {
	internal := handshake.MakeBuilder().
		WithEngine(b.engine).
		WithWidth(width).
		Build(sim.BuildName(name, "Merged"))

	sb := b.stageBuilder().WithInput(internal)
	if b.out != nil {
		sb = sb.WithOutput(b.out)
	} else {
		sb = sb.WithOutput(handshake.MakeBuilder().
			WithEngine(b.engine).
			WithWidth(width).
			Build(sim.BuildName(name, "Out")))
	}

	return sb.Build(sim.BuildName(name, "OutBuf"))
}

// Build creates a priority merge.
func (b Builder) Build(name string) *PriorityMerge {
	width := b.mustBeValid(name)

	m := &PriorityMerge{
		name:   name,
		inputs: b.inputs,
	}

	buffered := make([]*handshake.Channel, len(b.inputs))
	for i, in := range b.inputs {
		s := b.stageBuilder().WithInput(in).
			Build(sim.BuildNameWithIndex(name, "InBuf", i))
		m.inBuffers = append(m.inBuffers, s)
		buffered[i] = s.Output()
	}

	m.outBuffer = b.buildOutputBuffer(name, width)

	policy := b.policy
	if policy == nil {
		policy = arbitration.NewPriorityPolicy()
	}

	m.steering = &Steering{
		ComponentBase: sim.NewComponentBase(sim.BuildName(name, "Steer")),
		inputs:        buffered,
		out:           m.outBuffer.Input(),
		policy:        policy,
		timeTeller:    b.engine,
	}
	m.steering.SetClear(b.clear)
	b.engine.RegisterComponent(m.steering)

	return m
}

// BuildOneHot creates a one-hot merge.
func (b Builder) BuildOneHot(name string) *OneHotMerge {
	width := b.mustBeValid(name)

	selector := b.selector
	if selector == nil {
		selector = b.engine.Net().NewWire(
			sim.BuildName(name, "Select"), len(b.inputs))
	}

	if selector.Width() != len(b.inputs) {
		log.Panicf("merge %s: selector must be %d bits wide",
			name, len(b.inputs))
	}

	m := &OneHotMerge{
		name:   name,
		inputs: b.inputs,
	}

	m.outBuffer = b.buildOutputBuffer(name, width)

	m.selection = &Selection{
		ComponentBase: sim.NewComponentBase(sim.BuildName(name, "Selection")),
		inputs:        b.inputs,
		out:           m.outBuffer.Input(),
		selector:      selector,
		op:            b.op,
	}
	b.engine.RegisterComponent(m.selection)

	return m
}
