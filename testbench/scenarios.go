package testbench

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/config"
	"github.com/sarchlab/elastic/elastic"
	"github.com/sarchlab/elastic/gate"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/junction"
	"github.com/sarchlab/elastic/merge"
	"github.com/sarchlab/elastic/sim"
)

var scenarioBuilders = map[string]func(b *Bench) error{
	config.ScenarioPipeline:        buildPipeline,
	config.ScenarioJoin:            buildJoin,
	config.ScenarioForkEager:       func(b *Bench) error { return buildFork(b, true) },
	config.ScenarioForkLazy:        func(b *Bench) error { return buildFork(b, false) },
	config.ScenarioMergePriority:   func(b *Bench) error { return buildMerge(b, "priority") },
	config.ScenarioMergeRoundRobin: func(b *Bench) error { return buildMerge(b, b.cfg.Policy) },
	config.ScenarioMergeOneHot:     buildOneHotMerge,
	config.ScenarioCredit:          buildCredit,
}

// Source -> Pipeline -> Sink
func buildPipeline(b *Bench) error {
	words := b.randomWords(b.cfg.Words)
	src := b.addSource(0, words)

	p := elastic.MakePipelineBuilder().
		WithEngine(b.engine).
		WithNumStage(b.cfg.NumStage).
		WithBufferKind(b.cfg.Kind()).
		WithInput(src.Output()).
		Build(b.childName("Pipe"))

	b.addSink(0, p.Output(), true, words)

	return nil
}

// Sources[N] -> Join -> Sink, each output word the concatenation of the
// inputs' words of the same index.
func buildJoin(b *Bench) error {
	streams := make([][]bitvec.Vec, b.cfg.NumPorts)
	inputs := make([]*handshake.Channel, b.cfg.NumPorts)

	for i := range streams {
		streams[i] = b.randomWords(b.cfg.Words)
		inputs[i] = b.addSource(i, streams[i]).Output()
	}

	expected := make([]bitvec.Vec, b.cfg.Words)
	for k := range expected {
		parts := make([]bitvec.Vec, b.cfg.NumPorts)
		for i := range parts {
			parts[i] = streams[i][k]
		}

		expected[k] = bitvec.Concat(parts...)
	}

	j := junction.MakeJoinBuilder().
		WithEngine(b.engine).
		WithInputs(inputs...).
		WithBufferKind(b.cfg.Kind()).
		Build(b.childName("Join"))

	b.addSink(0, j.Output(), true, expected)

	return nil
}

// Source -> Fork -> Sinks[N], every sink expecting every word.
func buildFork(b *Bench, eager bool) error {
	words := b.randomWords(b.cfg.Words)
	src := b.addSource(0, words)

	name := "LazyFork"
	if eager {
		name = "EagerFork"
	}

	f := junction.MakeForkBuilder().
		WithEngine(b.engine).
		WithInput(src.Output()).
		WithNumOutputs(b.cfg.NumPorts).
		WithEager(eager).
		WithBufferKind(b.cfg.Kind()).
		Build(b.childName(name))

	// A lazy fork withdraws valid when another output stops being ready.
	for i, out := range f.Outputs() {
		b.addSink(i, out, eager, words)
	}

	return nil
}

// Sources[N] -> PriorityMerge -> Sink, per-source order preserved.
func buildMerge(b *Bench, policyName string) error {
	if err := b.mustFitTags(); err != nil {
		return err
	}

	policyCfg := b.cfg
	policyCfg.Policy = policyName

	streams, inputs := b.taggedSources()

	m := merge.MakeBuilder().
		WithEngine(b.engine).
		WithInputs(inputs...).
		WithBufferKind(b.cfg.Kind()).
		WithPolicy(policyCfg.NewPolicy()).
		Build(b.childName("Merge"))

	b.addSink(0, m.Output(), true, streams...)

	return nil
}

func (b *Bench) taggedSources() ([][]bitvec.Vec, []*handshake.Channel) {
	streams := make([][]bitvec.Vec, b.cfg.NumPorts)
	inputs := make([]*handshake.Channel, b.cfg.NumPorts)

	for i := range streams {
		streams[i] = b.taggedWords(i)
		inputs[i] = b.addSource(i, streams[i]).Output()
	}

	return streams, inputs
}

// Sources[N] -> OneHotMerge -> Sink, with a selector that picks one random
// input, or none, every cycle.
func buildOneHotMerge(b *Bench) error {
	if err := b.mustFitTags(); err != nil {
		return err
	}

	streams, inputs := b.taggedSources()

	m := merge.MakeBuilder().
		WithEngine(b.engine).
		WithInputs(inputs...).
		WithBufferKind(b.cfg.Kind()).
		WithOp(b.cfg.BoolOp()).
		BuildOneHot(b.childName("OneHotMerge"))

	n := b.cfg.NumPorts
	selected := b.rng.Intn(n + 1)
	selector := m.Selector()

	b.engine.RegisterComponent(newDriver(b.childName("SelectDriver"),
		func() {
			if selected == n {
				selector.Set(bitvec.New(n))
				return
			}

			selector.Set(bitvec.OneHot(n, selected))
		},
		func() bool {
			selected = b.rng.Intn(n + 1)
			return false
		}))

	b.addSink(0, m.Output(), true, streams...)

	return nil
}

// Source -> CreditGate -> Pipeline -> Sink, with a credit returned for every
// word that leaves the pipeline. No more words than credits may be inside
// the pipeline.
func buildCredit(b *Bench) error {
	words := b.randomWords(b.cfg.Words)
	src := b.addSource(0, words)

	add := b.engine.Net().NewBit(b.childName("CreditReturn"))

	g := gate.MakeBuilder().
		WithEngine(b.engine).
		WithInput(src.Output()).
		WithAdd(add).
		WithMaxCredit(b.cfg.MaxCredit).
		WithInitialCredit(b.cfg.MaxCredit).
		BuildCreditGate(b.childName("Credit"))

	p := elastic.MakePipelineBuilder().
		WithEngine(b.engine).
		WithNumStage(b.cfg.NumStage).
		WithBufferKind(b.cfg.Kind()).
		WithInput(g.Output()).
		Build(b.childName("Pipe"))

	out := p.Output()

	b.engine.RegisterComponent(newDriver(b.childName("CreditDriver"),
		func() { add.SetBit(out.Fire()) },
		nil))

	b.engine.AcceptHook(&creditMonitor{
		bench:    b,
		gate:     g,
		pipeline: p,
	})

	b.addSink(0, out, true, words)

	return nil
}

// creditMonitor checks after every cycle that the words inside the pipeline
// never outnumber the credits.
type creditMonitor struct {
	bench         *Bench
	gate          *gate.CreditGate
	pipeline      *elastic.Pipeline
	addFailedSeen bool
}

func (m *creditMonitor) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterTick {
		return
	}

	cycle := ctx.Item.(sim.VTimeInCycle)

	if occ := m.pipeline.Occupancy(); uint64(occ) > m.gate.Max() {
		m.bench.invariantErrors = append(m.bench.invariantErrors,
			errors.Errorf("cycle %d: %d words in flight with %d credits",
				cycle, occ, m.gate.Max()))
	}

	if m.gate.AddFailed() && !m.addFailedSeen {
		m.addFailedSeen = true
		m.bench.invariantErrors = append(m.bench.invariantErrors,
			errors.Errorf("cycle %d: credit returned to a full credit gate",
				cycle))
	}
}
