// Package testbench builds scoreboarded circuits around the elastic
// components and drives them with randomised traffic.
package testbench

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/config"
	"github.com/sarchlab/elastic/datarecording"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
	"github.com/sarchlab/elastic/sim/bottleneckanalysis"
	"github.com/sarchlab/elastic/tracing"
)

// A Bench is a circuit under test together with its traffic sources, sinks
// and checkers.
type Bench struct {
	name   string
	cfg    config.Config
	logger zerolog.Logger
	rng    *rand.Rand

	engine     *sim.SerialEngine
	simulation *sim.Simulation

	sources     []*handshake.Source
	sinks       []*handshake.Sink
	scoreboards []*Scoreboard
	checker     *handshake.ProtocolChecker
	counter     *tracing.CountingTracer
	stalls      *tracing.StallTracer
	dbTracer    *tracing.DBTracer
	occupancy   *bottleneckanalysis.OccupancyAnalyzer

	invariantErrors []error
}

// A Builder can build benches.
type Builder struct {
	cfg      config.Config
	logger   zerolog.Logger
	recorder datarecording.DataRecorder
}

// MakeBuilder creates a builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg:    config.Default(),
		logger: zerolog.Nop(),
	}
}

// WithConfig sets the configuration of the run.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithLogger sets the logger. Transfers and grants are logged when the
// logger is at debug level or below.
func (b Builder) WithLogger(logger zerolog.Logger) Builder {
	b.logger = logger
	return b
}

// WithRecorder records transfers and grants into the given recorder. If not
// set, a recorder is created when the configuration names a record path.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// Build validates the configuration and builds the circuit of its scenario.
func (b Builder) Build(name string) (*Bench, error) {
	sim.NameMustBeValid(name)

	err := b.cfg.Validate()
	if err != nil {
		return nil, err
	}

	engine := sim.NewSerialEngine()

	bench := &Bench{
		name:       name,
		cfg:        b.cfg,
		logger:     b.logger,
		rng:        rand.New(rand.NewSource(b.cfg.Seed)),
		engine:     engine,
		simulation: sim.NewSimulation(engine),
		checker:    handshake.NewProtocolChecker(),
		counter:    tracing.NewCountingTracer(nil),
		stalls:     tracing.NewStallTracer(nil),
	}

	build, ok := scenarioBuilders[b.cfg.Scenario]
	if !ok {
		return nil, errors.Errorf("scenario %q has no circuit", b.cfg.Scenario)
	}

	err = build(bench)
	if err != nil {
		return nil, errors.Wrapf(err, "build scenario %s", b.cfg.Scenario)
	}

	bench.simulation.IndexEngineComponents()
	bench.attachTracers(b.recorder)
	bench.attachOccupancyAnalyzer()

	return bench, nil
}

func (b *Bench) attachTracers(recorder datarecording.DataRecorder) {
	tracing.CollectTraceFromEngine(b.engine, b.counter)
	tracing.CollectTraceFromEngine(b.engine, b.stalls)

	if b.logger.GetLevel() <= zerolog.DebugLevel {
		tracing.CollectTraceFromEngine(b.engine,
			tracing.NewLogTracer(b.logger, nil, b.cfg.TraceStalls))
	}

	if recorder == nil && b.cfg.RecordPath != "" {
		recorder = datarecording.New(b.cfg.RecordPath)
	}

	if recorder != nil {
		b.dbTracer = tracing.NewDBTracer(recorder, nil, b.cfg.TraceStalls)
		tracing.CollectTraceFromEngine(b.engine, b.dbTracer)
	}
}

func (b *Bench) attachOccupancyAnalyzer() {
	b.occupancy = bottleneckanalysis.MakeOccupancyAnalyzerBuilder().
		WithLogger(b.logger).
		Build()
	b.occupancy.WatchComponents(b.engine.Components())
	b.engine.AcceptHook(b.occupancy)

	if b.logger.GetLevel() <= zerolog.TraceLevel {
		b.engine.AcceptHook(sim.NewCycleLogger(b.logger, b.engine.Net()))
	}
}

// Name returns the name of the bench.
func (b *Bench) Name() string {
	return b.name
}

// Engine returns the engine that runs the bench.
func (b *Bench) Engine() *sim.SerialEngine {
	return b.engine
}

// Simulation returns the simulation that indexes the bench's components.
func (b *Bench) Simulation() *sim.Simulation {
	return b.simulation
}

// Sources returns the traffic sources.
func (b *Bench) Sources() []*handshake.Source {
	return b.sources
}

// Sinks returns the traffic sinks.
func (b *Bench) Sinks() []*handshake.Sink {
	return b.sinks
}

// Scoreboards returns the scoreboards, one per sink.
func (b *Bench) Scoreboards() []*Scoreboard {
	return b.scoreboards
}

// Done reports whether every scoreboard saw all the words it expects.
func (b *Bench) Done() bool {
	for _, s := range b.scoreboards {
		if !s.Done() {
			return false
		}
	}

	return true
}

// Run steps the circuit until every expected word arrived or the cycle limit
// is reached. The returned error is about the run itself; whether the
// circuit behaved is in the report.
func (b *Bench) Run(ctx context.Context) (Report, error) {
	for !b.Done() && b.engine.CurrentTime() < sim.VTimeInCycle(b.cfg.MaxCycles) {
		err := b.engine.Run(ctx, 1)
		if err != nil {
			return b.Report(), err
		}
	}

	if b.dbTracer != nil {
		b.dbTracer.Terminate()
	}

	return b.Report(), nil
}

// Report summarizes the run so far.
func (b *Bench) Report() Report {
	r := Report{
		Scenario:  b.cfg.Scenario,
		Cycles:    uint64(b.engine.CurrentTime()),
		Completed: b.Done(),
		Grants:    make(map[string][]uint64),
	}

	for _, s := range b.sources {
		r.Sent += s.NumSent()
	}

	for _, s := range b.scoreboards {
		r.Received += s.Received()

		for _, err := range s.Mismatches() {
			r.Mismatches = append(r.Mismatches, err.Error())
		}
	}

	if r.Cycles > 0 {
		r.Throughput = float64(r.Received) / float64(r.Cycles)
	}

	freq := b.cfg.Freq()
	r.Seconds = float64(freq.Seconds(b.engine.CurrentTime()))
	r.WordsPerSec = freq.Rate(r.Throughput)

	for _, err := range b.checker.Violations() {
		r.Violations = append(r.Violations, err.Error())
	}

	for _, err := range b.invariantErrors {
		r.Violations = append(r.Violations, err.Error())
	}

	for _, sink := range b.sinks {
		name := sink.Input().Name()
		stats := b.counter.Stats(name)

		r.Outputs = append(r.Outputs, ChannelReport{
			Name:         name,
			Transfers:    stats.Transfers,
			Stalls:       stats.Stalls,
			Throughput:   stats.Throughput(),
			LongestStall: b.stalls.LongestStall(name),
		})
	}

	if e, ok := b.occupancy.Bottleneck(); ok {
		r.Bottleneck = &e
	}

	for _, c := range b.simulation.Components() {
		if grants := b.counter.Grants(c.Name()); len(grants) > 0 {
			r.Grants[c.Name()] = grants
		}
	}

	return r
}

func (b *Bench) childName(elem string) string {
	return sim.BuildName(b.name, elem)
}

func (b *Bench) childNameWithIndex(elem string, i int) string {
	return sim.BuildNameWithIndex(b.name, elem, i)
}

func (b *Bench) newChannel(name string, width int) *handshake.Channel {
	return handshake.MakeBuilder().
		WithEngine(b.engine).
		WithWidth(width).
		Build(name)
}

// addSource builds a throttled source on a new channel and queues words.
func (b *Bench) addSource(i int, words []bitvec.Vec) *handshake.Source {
	out := b.newChannel(b.childNameWithIndex("In", i), b.cfg.Width)

	src := handshake.MakeSourceBuilder().
		WithEngine(b.engine).
		WithOutput(out).
		WithCapacity(len(words)).
		WithThrottle(handshake.Probability(
			b.cfg.SourceProbability, b.cfg.Seed+int64(i)+1)).
		Build(b.childNameWithIndex("Src", i))

	for _, w := range words {
		src.Send(w)
	}

	b.sources = append(b.sources, src)
	b.checker.Watch(out)

	return src
}

// addSink builds a throttled sink and a scoreboard on the given channel.
func (b *Bench) addSink(
	i int,
	in *handshake.Channel,
	watch bool,
	expected ...[]bitvec.Vec,
) *handshake.Sink {
	sink := handshake.MakeSinkBuilder().
		WithEngine(b.engine).
		WithInput(in).
		WithThrottle(handshake.Probability(
			b.cfg.SinkProbability, b.cfg.Seed-int64(i)-1)).
		Build(b.childNameWithIndex("Sink", i))

	sb := NewScoreboard(b.childNameWithIndex("Scoreboard", i), expected...)
	in.AcceptHook(sb)

	if watch {
		b.checker.Watch(in)
	}

	b.sinks = append(b.sinks, sink)
	b.scoreboards = append(b.scoreboards, sb)

	return sink
}

func (b *Bench) randomWords(n int) []bitvec.Vec {
	words := make([]bitvec.Vec, n)
	for i := range words {
		words[i] = bitvec.FromUint64(b.cfg.Width, b.rng.Uint64())
	}

	return words
}

// taggedWords returns words that are unique across all ports, so that a
// scoreboard can tell which port a merged word came from.
func (b *Bench) taggedWords(port int) []bitvec.Vec {
	words := make([]bitvec.Vec, b.cfg.Words)
	for k := range words {
		words[k] = bitvec.FromUint64(b.cfg.Width,
			uint64(k*b.cfg.NumPorts+port))
	}

	return words
}

func (b *Bench) mustFitTags() error {
	if b.cfg.Width >= 63 {
		return nil
	}

	if uint64(b.cfg.Words*b.cfg.NumPorts) > uint64(1)<<uint(b.cfg.Width) {
		return errors.Errorf(
			"%d words on %d ports do not fit into %d-bit words",
			b.cfg.Words, b.cfg.NumPorts, b.cfg.Width)
	}

	return nil
}
