package merge

import (
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/elastic"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// Selection connects the inputs chosen by an external selector to a single
// output. The output is valid while any selected input is valid, and the
// words of the valid selected inputs are combined with an operator. The
// selected inputs are released together when the combined word moves. With
// nothing selected, nothing moves.
type Selection struct {
	*sim.ComponentBase

	inputs   []*handshake.Channel
	out      *handshake.Channel
	selector *sim.Wire
	op       BoolOp
}

// Selector returns the selector wire.
func (s *Selection) Selector() *sim.Wire {
	return s.selector
}

// Op returns the operator that combines the selected words.
func (s *Selection) Op() BoolOp {
	return s.op
}

// Settle combines the selected inputs.
func (s *Selection) Settle() {
	sel := s.selector.Get()

	words := []bitvec.Vec{}

	for i, in := range s.inputs {
		if !sel.Bit(i) || !in.Valid().Bit() {
			continue
		}

		words = append(words, in.Data().Get())
	}

	valid := len(words) > 0
	s.out.Valid().SetBit(valid)
	s.out.Data().Set(s.op.Fold(s.out.Width(), words))

	fire := valid && s.out.Ready().Bit()
	for i, in := range s.inputs {
		in.Ready().SetBit(fire && sel.Bit(i))
	}
}

// Tick does nothing. The selection holds no state.
func (s *Selection) Tick() bool {
	return false
}

// A OneHotMerge passes the inputs picked by an external selector through an
// output buffer. An all-zero selector blocks every input while the output
// buffer drains.
type OneHotMerge struct {
	name      string
	inputs    []*handshake.Channel
	selection *Selection
	outBuffer elastic.Stage
}

// Name returns the name of the merge.
func (m *OneHotMerge) Name() string {
	return m.name
}

// Inputs returns the input channels.
func (m *OneHotMerge) Inputs() []*handshake.Channel {
	return m.inputs
}

// Output returns the output channel.
func (m *OneHotMerge) Output() *handshake.Channel {
	return m.outBuffer.Output()
}

// Selector returns the selector wire.
func (m *OneHotMerge) Selector() *sim.Wire {
	return m.selection.Selector()
}

// Selection returns the selection component.
func (m *OneHotMerge) Selection() *Selection {
	return m.selection
}

// OutputBuffer returns the output buffer.
func (m *OneHotMerge) OutputBuffer() elastic.Stage {
	return m.outBuffer
}

// Occupancy returns the number of words held in the merge.
func (m *OneHotMerge) Occupancy() int {
	return m.outBuffer.Occupancy()
}
