package junction

import (
	"github.com/sarchlab/elastic/elastic"
	"github.com/sarchlab/elastic/handshake"
)

// A Fork copies every input word to all of its outputs. An input word is
// taken only in a cycle in which every branch accepts it.
//
// An eager fork puts a buffer on each branch, so the outputs drain
// independently once the word is taken. A lazy fork has no buffers; the
// input and every output move in the same cycle.
type Fork struct {
	name    string
	eager   bool
	outputs []*handshake.Channel
	buffers []elastic.Stage
	sync    *Synchronizer
}

// Name returns the name of the fork.
func (f *Fork) Name() string {
	return f.name
}

// Eager reports whether the branches are buffered.
func (f *Fork) Eager() bool {
	return f.eager
}

// Input returns the input channel.
func (f *Fork) Input() *handshake.Channel {
	return f.sync.One()
}

// Outputs returns the output channels.
func (f *Fork) Outputs() []*handshake.Channel {
	return f.outputs
}

// Buffers returns the branch buffers of an eager fork.
func (f *Fork) Buffers() []elastic.Stage {
	return f.buffers
}

// Synchronizer returns the fan-out synchronizer.
func (f *Fork) Synchronizer() *Synchronizer {
	return f.sync
}

// Occupancy returns the number of words held in the branch buffers.
func (f *Fork) Occupancy() int {
	n := 0
	for _, b := range f.buffers {
		n += b.Occupancy()
	}

	return n
}
