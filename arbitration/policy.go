// Package arbitration decides which of several requesters is served in a
// cycle. Grants are one-hot, or zero when nobody eligible requests.
package arbitration

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/sarchlab/elastic/bitvec"
)

// A Policy computes grants. Bit i of requests, mask and grant belongs to
// requester i.
type Policy interface {
	// Grant returns the grant for the current cycle. It does not change the
	// state of the policy and may be called many times in a cycle.
	Grant(requests, mask bitvec.Vec) bitvec.Vec

	// Update records the outcome of a cycle.
	Update(requests, mask, grant bitvec.Vec)

	// Reset returns the policy to its initial state.
	Reset()
}

// PriorityPolicy grants the lowest-indexed eligible requester. It has no
// state.
type PriorityPolicy struct{}

// NewPriorityPolicy creates a PriorityPolicy.
func NewPriorityPolicy() *PriorityPolicy {
	return &PriorityPolicy{}
}

// Grant returns requests & mask & -(requests & mask).
func (p *PriorityPolicy) Grant(requests, mask bitvec.Vec) bitvec.Vec {
	return bitvec.IsolateLowest(requests.And(mask))
}

// Update does nothing.
func (p *PriorityPolicy) Update(_, _, _ bitvec.Vec) {}

// Reset does nothing.
func (p *PriorityPolicy) Reset() {}

// ParsePolicy creates a policy by name: "priority", "round-robin" or
// "round-robin-rotate".
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "priority":
		return NewPriorityPolicy(), nil
	case "round-robin", "roundrobin":
		return NewRoundRobinPolicy(HoldUntilRelease), nil
	case "round-robin-rotate":
		return NewRoundRobinPolicy(RotateOnGrant), nil
	}

	return nil, errors.Errorf("unknown arbitration policy %q", name)
}
