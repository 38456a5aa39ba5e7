package handshake

import (
	"log"

	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/sim"
)

// A Source produces words on a channel. It follows the producer rules of the
// protocol: once valid is raised, valid and data hold until the word is
// taken. The throttle decides when the next word is offered.
type Source struct {
	*sim.ComponentBase

	out      *Channel
	queue    sim.Buffer
	throttle Throttle

	presenting bool
	numSent    uint64
}

// Output returns the channel that the source drives.
func (s *Source) Output() *Channel {
	return s.out
}

// CanSend checks if another word can be queued.
func (s *Source) CanSend() bool {
	return s.queue.CanPush()
}

// Send queues a word. It panics if the queue is full or the word does not
// match the channel width.
func (s *Source) Send(v bitvec.Vec) {
	if v.Width() != s.out.Width() {
		log.Panicf("source %s: cannot send %d bits on a %d-bit channel",
			s.Name(), v.Width(), s.out.Width())
	}

	s.queue.Push(v)
}

// SendUint64 queues the low bits of value.
func (s *Source) SendUint64(value uint64) {
	s.Send(bitvec.FromUint64(s.out.Width(), value))
}

// NumPending returns the number of words not yet taken.
func (s *Source) NumPending() int {
	return s.queue.Size()
}

// NumSent returns the number of words taken by the consumer.
func (s *Source) NumSent() uint64 {
	return s.numSent
}

// Settle offers the head of the queue.
func (s *Source) Settle() {
	if s.presenting && s.queue.Size() > 0 {
		s.out.Valid().SetBit(true)
		s.out.Data().Set(s.queue.Peek().(bitvec.Vec))

		return
	}

	s.out.Valid().SetBit(false)
	s.out.Data().Set(bitvec.New(s.out.Width()))
}

// Tick retires a taken word and decides whether to offer the next one.
func (s *Source) Tick() bool {
	fired := s.out.Fire()

	if fired {
		s.queue.Pop()
		s.numSent++
	}

	if fired || !s.presenting {
		s.presenting = s.throttle.Allow()
	}

	return fired || s.queue.Size() > 0
}

// A SourceBuilder can build sources.
type SourceBuilder struct {
	engine   sim.Engine
	out      *Channel
	throttle Throttle
	capacity int
}

// MakeSourceBuilder creates a builder with default parameters.
func MakeSourceBuilder() SourceBuilder {
	return SourceBuilder{
		capacity: 4096,
	}
}

// WithEngine sets the engine that ticks the source.
func (b SourceBuilder) WithEngine(engine sim.Engine) SourceBuilder {
	b.engine = engine
	return b
}

// WithOutput sets the channel to drive.
func (b SourceBuilder) WithOutput(c *Channel) SourceBuilder {
	b.out = c
	return b
}

// WithThrottle sets when words are offered. The default offers every cycle.
func (b SourceBuilder) WithThrottle(t Throttle) SourceBuilder {
	b.throttle = t
	return b
}

// WithCapacity sets the number of words that can wait in the queue.
func (b SourceBuilder) WithCapacity(n int) SourceBuilder {
	b.capacity = n
	return b
}

// Build creates a source.
func (b SourceBuilder) Build(name string) *Source {
	if b.out == nil {
		log.Panicf("source %s: output channel is not set", name)
	}

	throttle := b.throttle
	if throttle == nil {
		throttle = Always()
	}

	s := &Source{
		ComponentBase: sim.NewComponentBase(name),
		out:           b.out,
		queue:         sim.NewBuffer(sim.BuildName(name, "Queue"), b.capacity),
		throttle:      throttle,
	}
	s.presenting = throttle.Allow()

	if b.engine != nil {
		b.engine.RegisterComponent(s)
	}

	return s
}
