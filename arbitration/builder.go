package arbitration

import (
	"log"

	"github.com/sarchlab/elastic/sim"
)

// A Builder can build arbiters.
type Builder struct {
	engine   sim.Engine
	num      int
	policy   Policy
	requests *sim.Wire
	mask     *sim.Wire
	grant    *sim.Wire
	clear    *sim.Wire
}

// MakeBuilder creates a builder for a round-robin arbiter.
func MakeBuilder() Builder {
	return Builder{}
}

// WithEngine sets the engine. The engine is required.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithNumRequesters sets the number of requesters when Build has to create
// the wires.
func (b Builder) WithNumRequesters(n int) Builder {
	b.num = n
	return b
}

// WithPolicy sets the policy. The default is a round-robin policy that holds
// the grant until released.
func (b Builder) WithPolicy(p Policy) Builder {
	b.policy = p
	return b
}

// WithRequests connects an existing requests wire.
func (b Builder) WithRequests(w *sim.Wire) Builder {
	b.requests = w
	return b
}

// WithMask connects a requests-mask wire. Without it, all requests are
// eligible.
func (b Builder) WithMask(w *sim.Wire) Builder {
	b.mask = w
	return b
}

// WithGrant connects an existing grant wire.
func (b Builder) WithGrant(w *sim.Wire) Builder {
	b.grant = w
	return b
}

// WithClear connects the synchronous clear input.
func (b Builder) WithClear(w *sim.Wire) Builder {
	b.clear = w
	return b
}

// Build creates an arbiter. Missing requests and grant wires are created as
// Requests and Grant under the arbiter.
func (b Builder) Build(name string) *Arbiter {
	if b.engine == nil {
		log.Panicf("arbiter %s: engine is not set", name)
	}

	num := b.num
	if b.requests != nil {
		num = b.requests.Width()
	}

	if num <= 0 {
		log.Panicf("arbiter %s: needs at least one requester", name)
	}

	requests := b.requests
	if requests == nil {
		requests = b.engine.Net().NewWire(sim.BuildName(name, "Requests"), num)
	}

	grant := b.grant
	if grant == nil {
		grant = b.engine.Net().NewWire(sim.BuildName(name, "Grant"), num)
	}

	if grant.Width() != num || (b.mask != nil && b.mask.Width() != num) {
		log.Panicf("arbiter %s: all wires must be %d bits wide", name, num)
	}

	policy := b.policy
	if policy == nil {
		policy = NewRoundRobinPolicy(HoldUntilRelease)
	}

	a := &Arbiter{
		ComponentBase: sim.NewComponentBase(name),
		policy:        policy,
		timeTeller:    b.engine,
		requests:      requests,
		mask:          b.mask,
		grant:         grant,
	}
	a.SetClear(b.clear)

	b.engine.RegisterComponent(a)

	return a
}
