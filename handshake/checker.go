package handshake

import (
	"github.com/pkg/errors"
	"github.com/sarchlab/elastic/sim"
)

// A ProtocolChecker watches channels and records producers that break the
// handshake rules: once valid is raised, valid and data must hold until the
// word is taken.
//
// A violation is found on the next transfer or stall of the same channel, so
// a producer that drops valid and never raises it again goes unnoticed.
type ProtocolChecker struct {
	pending    map[string]Transfer
	violations []error
}

// NewProtocolChecker creates a checker with no violations.
func NewProtocolChecker() *ProtocolChecker {
	return &ProtocolChecker{
		pending: make(map[string]Transfer),
	}
}

// Watch attaches the checker to the channels.
func (c *ProtocolChecker) Watch(channels ...*Channel) {
	for _, ch := range channels {
		ch.AcceptHook(c)
	}
}

// Violations returns the violations found so far.
func (c *ProtocolChecker) Violations() []error {
	return c.violations
}

// Func checks one transfer or stall.
func (c *ProtocolChecker) Func(ctx sim.HookCtx) {
	if ctx.Pos != HookPosTransfer && ctx.Pos != HookPosStall {
		return
	}

	t := ctx.Item.(Transfer)

	if p, found := c.pending[t.Channel]; found {
		delete(c.pending, t.Channel)

		switch {
		case t.Cycle != p.Cycle+1:
			c.violations = append(c.violations, errors.Errorf(
				"%s: valid dropped after stall in cycle %d",
				t.Channel, p.Cycle))
		case !t.Data.Equal(p.Data):
			c.violations = append(c.violations, errors.Errorf(
				"%s: data changed from %s to %s while stalled in cycle %d",
				t.Channel, p.Data, t.Data, p.Cycle))
		}
	}

	if ctx.Pos == HookPosStall {
		c.pending[t.Channel] = t
	}
}
