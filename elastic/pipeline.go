package elastic

import (
	"log"

	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// A Pipeline is a chain of stages of one kind. Words leave in the order they
// entered, and a pipeline of n stages delays a word by n cycles when nothing
// stalls.
type Pipeline struct {
	name   string
	stages []Stage
}

// Name returns the name of the pipeline.
func (p *Pipeline) Name() string {
	return p.name
}

// Stages returns the stages from input to output.
func (p *Pipeline) Stages() []Stage {
	return p.stages
}

// Input returns the channel the first stage consumes.
func (p *Pipeline) Input() *handshake.Channel {
	return p.stages[0].Input()
}

// Output returns the channel the last stage produces.
func (p *Pipeline) Output() *handshake.Channel {
	return p.stages[len(p.stages)-1].Output()
}

// Occupancy returns the number of words held in all stages.
func (p *Pipeline) Occupancy() int {
	n := 0
	for _, s := range p.stages {
		n += s.Occupancy()
	}

	return n
}

// Capacity returns the number of words all stages can hold.
func (p *Pipeline) Capacity() int {
	n := 0
	for _, s := range p.stages {
		n += s.Capacity()
	}

	return n
}

// A PipelineBuilder can build pipelines.
type PipelineBuilder struct {
	engine   sim.Engine
	numStage int
	kind     Kind
	in       *handshake.Channel
	out      *handshake.Channel
	clear    *sim.Wire
}

// MakePipelineBuilder creates a builder with default parameters.
func MakePipelineBuilder() PipelineBuilder {
	return PipelineBuilder{
		numStage: 5,
		kind:     KindElastic,
	}
}

// WithEngine sets the engine.
func (b PipelineBuilder) WithEngine(engine sim.Engine) PipelineBuilder {
	b.engine = engine
	return b
}

// WithNumStage sets the number of stages.
func (b PipelineBuilder) WithNumStage(n int) PipelineBuilder {
	b.numStage = n
	return b
}

// WithBufferKind sets the kind of every stage.
func (b PipelineBuilder) WithBufferKind(kind Kind) PipelineBuilder {
	b.kind = kind
	return b
}

// WithInput sets the channel the pipeline consumes.
func (b PipelineBuilder) WithInput(c *handshake.Channel) PipelineBuilder {
	b.in = c
	return b
}

// WithOutput sets the channel the pipeline produces. If not set, the last
// stage creates one.
func (b PipelineBuilder) WithOutput(c *handshake.Channel) PipelineBuilder {
	b.out = c
	return b
}

// WithClear connects the synchronous clear input of every stage.
func (b PipelineBuilder) WithClear(w *sim.Wire) PipelineBuilder {
	b.clear = w
	return b
}

// Build builds a pipeline.
func (b PipelineBuilder) Build(name string) *Pipeline {
	sim.NameMustBeValid(name)

	if b.numStage <= 0 {
		log.Panicf("pipeline %s: number of stages must be positive", name)
	}

	if b.engine == nil {
		log.Panicf("pipeline %s: engine is not set", name)
	}

	p := &Pipeline{name: name}

	stageBuilder := MakeBuilder().
		WithEngine(b.engine).
		WithKind(b.kind).
		WithClear(b.clear)

	in := b.in
	for i := 0; i < b.numStage; i++ {
		sb := stageBuilder.WithInput(in)
		if i == b.numStage-1 && b.out != nil {
			sb = sb.WithOutput(b.out)
		}

		s := sb.Build(sim.BuildNameWithIndex(name, "Stage", i))
		p.stages = append(p.stages, s)
		in = s.Output()
	}

	return p
}
