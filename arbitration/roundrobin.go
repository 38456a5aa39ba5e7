package arbitration

import (
	"github.com/sarchlab/elastic/bitvec"
)

// RotationMode sets what a round-robin policy does with the requester it
// granted last.
type RotationMode int

// The rotation modes.
const (
	// HoldUntilRelease keeps granting the last winner for as long as it
	// keeps requesting. The next requester in turn is served once it lets
	// go.
	HoldUntilRelease RotationMode = iota

	// RotateOnGrant moves on after every grant, so four requesters that
	// never let go are served 0, 1, 2, 3, 0, ...
	RotateOnGrant
)

// RoundRobinState is the state of a round-robin policy.
type RoundRobinState int

// The round-robin states.
const (
	// Idle means no request arrived in the previous cycle.
	Idle RoundRobinState = iota

	// Active means a request arrived in the previous cycle.
	Active
)

func (s RoundRobinState) String() string {
	if s == Active {
		return "ACTIVE"
	}

	return "IDLE"
}

// A RoundRobinPolicy serves requesters in turn. It remembers the last grant
// and masks out that requester and every lower one, falling back to plain
// priority when nobody above the last winner requests.
//
// The last grant survives idle cycles, but in the first cycle after an idle
// one it is not held: the search starts above it.
type RoundRobinPolicy struct {
	mode      RotationMode
	state     RoundRobinState
	lastGrant bitvec.Vec
}

// NewRoundRobinPolicy creates a round-robin policy.
func NewRoundRobinPolicy(mode RotationMode) *RoundRobinPolicy {
	return &RoundRobinPolicy{
		mode: mode,
	}
}

// State returns the state of the policy.
func (p *RoundRobinPolicy) State() RoundRobinState {
	return p.state
}

// LastGrant returns the last non-zero grant, or a zero-width vector if there
// was none.
func (p *RoundRobinPolicy) LastGrant() bitvec.Vec {
	return p.lastGrant
}

// Grant computes the grant of the cycle.
func (p *RoundRobinPolicy) Grant(requests, mask bitvec.Vec) bitvec.Vec {
	eligible := requests.And(mask)
	priorityGrant := bitvec.IsolateLowest(eligible)

	last := p.lastGrant
	if last.Width() != requests.Width() {
		last = bitvec.New(requests.Width())
	}

	roundRobinMask := bitvec.Thermometer(last).Not()

	lastGated := bitvec.New(requests.Width())
	if p.state == Active && p.mode == HoldUntilRelease {
		lastGated = last
	}

	maskedGrant := bitvec.IsolateLowest(
		eligible.And(roundRobinMask.Or(lastGated)))

	if !maskedGrant.IsZero() {
		return maskedGrant
	}

	return priorityGrant
}

// Update records the outcome of a cycle. A cycle without requests makes the
// policy idle. The last grant only moves on a non-zero grant, so requests
// that are all masked out leave the rotation where it was.
func (p *RoundRobinPolicy) Update(requests, _, grant bitvec.Vec) {
	if requests.IsZero() {
		p.state = Idle
		return
	}

	p.state = Active

	if !grant.IsZero() {
		p.lastGrant = grant
	}
}

// Reset forgets the last grant, so the next grant goes to the
// lowest-indexed requester.
func (p *RoundRobinPolicy) Reset() {
	p.state = Idle
	p.lastGrant = bitvec.Vec{}
}
