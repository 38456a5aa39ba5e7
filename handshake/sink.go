package handshake

import (
	"log"

	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/sim"
)

// A Sink consumes words from a channel and keeps them in arrival order. The
// throttle decides, cycle by cycle, whether ready is raised.
type Sink struct {
	*sim.ComponentBase

	in       *Channel
	throttle Throttle

	ready    bool
	received []bitvec.Vec
}

// Input returns the channel that the sink consumes.
func (s *Sink) Input() *Channel {
	return s.in
}

// Received returns the words taken so far.
func (s *Sink) Received() []bitvec.Vec {
	return s.received
}

// ReceivedUint64 returns the low 64 bits of the words taken so far.
func (s *Sink) ReceivedUint64() []uint64 {
	values := make([]uint64, len(s.received))
	for i, v := range s.received {
		values[i] = v.Uint64()
	}

	return values
}

// NumReceived returns the number of words taken so far.
func (s *Sink) NumReceived() int {
	return len(s.received)
}

// Reset forgets the received words.
func (s *Sink) Reset() {
	s.received = nil
}

// Settle drives ready.
func (s *Sink) Settle() {
	s.in.Ready().SetBit(s.ready)
}

// Tick takes the word of the cycle, if any.
func (s *Sink) Tick() bool {
	fired := s.in.Fire()
	if fired {
		s.received = append(s.received, s.in.Data().Get())
	}

	s.ready = s.throttle.Allow()

	return fired
}

// A SinkBuilder can build sinks.
type SinkBuilder struct {
	engine   sim.Engine
	in       *Channel
	throttle Throttle
}

// MakeSinkBuilder creates a builder with default parameters.
func MakeSinkBuilder() SinkBuilder {
	return SinkBuilder{}
}

// WithEngine sets the engine that ticks the sink.
func (b SinkBuilder) WithEngine(engine sim.Engine) SinkBuilder {
	b.engine = engine
	return b
}

// WithInput sets the channel to consume.
func (b SinkBuilder) WithInput(c *Channel) SinkBuilder {
	b.in = c
	return b
}

// WithThrottle sets when ready is raised. The default is always ready.
func (b SinkBuilder) WithThrottle(t Throttle) SinkBuilder {
	b.throttle = t
	return b
}

// Build creates a sink.
func (b SinkBuilder) Build(name string) *Sink {
	if b.in == nil {
		log.Panicf("sink %s: input channel is not set", name)
	}

	throttle := b.throttle
	if throttle == nil {
		throttle = Always()
	}

	s := &Sink{
		ComponentBase: sim.NewComponentBase(name),
		in:            b.in,
		throttle:      throttle,
	}
	s.ready = throttle.Allow()

	if b.engine != nil {
		b.engine.RegisterComponent(s)
	}

	return s
}
