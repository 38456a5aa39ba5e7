package testbench

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// A Scoreboard checks the words leaving a circuit against what is expected.
// The expectation is one or more streams. Each stream must be seen in order,
// but words of different streams may interleave.
type Scoreboard struct {
	name       string
	streams    [][]bitvec.Vec
	received   uint64
	mismatches []error
}

// NewScoreboard creates a scoreboard that expects the given streams.
func NewScoreboard(name string, streams ...[]bitvec.Vec) *Scoreboard {
	s := &Scoreboard{name: name}

	for _, st := range streams {
		cp := make([]bitvec.Vec, len(st))
		copy(cp, st)
		s.streams = append(s.streams, cp)
	}

	return s
}

// Name returns the name of the scoreboard.
func (s *Scoreboard) Name() string {
	return s.name
}

// Func observes the transfers of the channel the scoreboard is attached to.
func (s *Scoreboard) Func(ctx sim.HookCtx) {
	if ctx.Pos != handshake.HookPosTransfer {
		return
	}

	t := ctx.Item.(handshake.Transfer)
	s.Observe(t.Cycle, t.Data)
}

// Observe matches one received word against the heads of the streams.
func (s *Scoreboard) Observe(cycle sim.VTimeInCycle, v bitvec.Vec) {
	s.received++

	for i, st := range s.streams {
		if len(st) > 0 && st[0].Equal(v) {
			s.streams[i] = st[1:]
			return
		}
	}

	s.mismatches = append(s.mismatches, errors.Errorf(
		"%s: unexpected word %s in cycle %d", s.name, v, cycle))
}

// Received returns the number of words observed.
func (s *Scoreboard) Received() uint64 {
	return s.received
}

// Pending returns the number of expected words not seen yet.
func (s *Scoreboard) Pending() int {
	n := 0
	for _, st := range s.streams {
		n += len(st)
	}

	return n
}

// Done reports whether every expected word was seen.
func (s *Scoreboard) Done() bool {
	return s.Pending() == 0
}

// Mismatches returns the words that matched no stream.
func (s *Scoreboard) Mismatches() []error {
	return s.mismatches
}
