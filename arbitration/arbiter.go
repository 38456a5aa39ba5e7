package arbitration

import (
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/sim"
)

// HookPosGrant marks a cycle in which an arbiter granted a requester. The
// hook item is a Decision.
var HookPosGrant = &sim.HookPos{Name: "Grant"}

// A Decision is the outcome of one arbitration cycle.
type Decision struct {
	Arbiter  string
	Cycle    sim.VTimeInCycle
	Requests bitvec.Vec
	Grant    bitvec.Vec
}

// An Arbiter drives a grant wire from a requests wire and an optional
// requests-mask wire, using a policy.
type Arbiter struct {
	*sim.ComponentBase

	policy     Policy
	timeTeller sim.TimeTeller

	requests *sim.Wire
	mask     *sim.Wire
	grant    *sim.Wire
}

// Policy returns the policy of the arbiter.
func (a *Arbiter) Policy() Policy {
	return a.policy
}

// Requests returns the requests wire.
func (a *Arbiter) Requests() *sim.Wire {
	return a.requests
}

// Mask returns the requests-mask wire, or nil if all requests are eligible.
func (a *Arbiter) Mask() *sim.Wire {
	return a.mask
}

// Grant returns the grant wire.
func (a *Arbiter) Grant() *sim.Wire {
	return a.grant
}

func (a *Arbiter) currentMask() bitvec.Vec {
	if a.mask == nil {
		return bitvec.Ones(a.requests.Width())
	}

	return a.mask.Get()
}

// Settle drives the grant.
func (a *Arbiter) Settle() {
	a.grant.Set(a.policy.Grant(a.requests.Get(), a.currentMask()))
}

// Tick lets the policy record the cycle.
func (a *Arbiter) Tick() bool {
	if a.ClearAsserted() {
		a.policy.Reset()
		return false
	}

	requests := a.requests.Get()
	grant := a.grant.Get()

	a.policy.Update(requests, a.currentMask(), grant)

	if grant.IsZero() {
		return false
	}

	if a.NumHooks() > 0 {
		a.InvokeHook(sim.HookCtx{
			Domain: a,
			Pos:    HookPosGrant,
			Item: Decision{
				Arbiter:  a.Name(),
				Cycle:    a.timeTeller.CurrentTime(),
				Requests: requests,
				Grant:    grant,
			},
		})
	}

	return true
}
