package merge

import (
	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/elastic"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// Steering connects the input granted by a policy to a single output. The
// buffered input valids are the requests. The policy is told about a grant
// only in cycles in which the granted word actually moves.
type Steering struct {
	*sim.ComponentBase

	inputs     []*handshake.Channel
	out        *handshake.Channel
	policy     arbitration.Policy
	timeTeller sim.TimeTeller
}

// Policy returns the arbitration policy.
func (s *Steering) Policy() arbitration.Policy {
	return s.policy
}

func (s *Steering) requests() bitvec.Vec {
	req := bitvec.New(len(s.inputs))
	for i, in := range s.inputs {
		req = req.WithBit(i, in.Valid().Bit())
	}

	return req
}

func (s *Steering) grant() (req, grant bitvec.Vec) {
	req = s.requests()
	grant = s.policy.Grant(req, bitvec.Ones(req.Width()))

	return req, grant
}

// Settle steers the granted input.
func (s *Steering) Settle() {
	_, grant := s.grant()
	index := bitvec.LowestIndex(grant)

	s.out.Valid().SetBit(index >= 0)

	if index >= 0 {
		s.out.Data().Set(s.inputs[index].Data().Get())
	} else {
		s.out.Data().Set(bitvec.New(s.out.Width()))
	}

	outReady := s.out.Ready().Bit()
	for i, in := range s.inputs {
		in.Ready().SetBit(i == index && outReady)
	}
}

// Tick updates the policy.
func (s *Steering) Tick() bool {
	if s.ClearAsserted() {
		s.policy.Reset()
		return false
	}

	req, grant := s.grant()
	fired := s.out.Fire()

	if !fired {
		s.policy.Update(req, bitvec.Ones(req.Width()), bitvec.New(req.Width()))
		return false
	}

	s.policy.Update(req, bitvec.Ones(req.Width()), grant)

	if s.NumHooks() > 0 {
		s.InvokeHook(sim.HookCtx{
			Domain: s,
			Pos:    arbitration.HookPosGrant,
			Item: arbitration.Decision{
				Arbiter:  s.Name(),
				Cycle:    s.timeTeller.CurrentTime(),
				Requests: req,
				Grant:    grant,
			},
		})
	}

	return true
}

// A PriorityMerge buffers every input, lets a policy choose among the
// buffered words, and passes the chosen word through an output buffer.
//
// Words of one input leave in order. Words of different inputs may
// interleave one word at a time, since the grant can move to another input
// in any cycle.
type PriorityMerge struct {
	name      string
	inputs    []*handshake.Channel
	inBuffers []elastic.Stage
	steering  *Steering
	outBuffer elastic.Stage
}

// Name returns the name of the merge.
func (m *PriorityMerge) Name() string {
	return m.name
}

// Inputs returns the input channels.
func (m *PriorityMerge) Inputs() []*handshake.Channel {
	return m.inputs
}

// Output returns the output channel.
func (m *PriorityMerge) Output() *handshake.Channel {
	return m.outBuffer.Output()
}

// InputBuffers returns the input buffers.
func (m *PriorityMerge) InputBuffers() []elastic.Stage {
	return m.inBuffers
}

// OutputBuffer returns the output buffer.
func (m *PriorityMerge) OutputBuffer() elastic.Stage {
	return m.outBuffer
}

// Steering returns the steering component, which reports grants.
func (m *PriorityMerge) Steering() *Steering {
	return m.steering
}

// Occupancy returns the number of words held in the merge.
func (m *PriorityMerge) Occupancy() int {
	n := m.outBuffer.Occupancy()
	for _, b := range m.inBuffers {
		n += b.Occupancy()
	}

	return n
}
