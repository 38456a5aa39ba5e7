package junction

import (
	"github.com/sarchlab/elastic/elastic"
	"github.com/sarchlab/elastic/handshake"
)

// A Join waits for a word on every input and then emits their concatenation
// as one word. Each input is buffered, so the inputs may arrive in different
// cycles; the buffered words leave together.
type Join struct {
	name    string
	inputs  []*handshake.Channel
	buffers []elastic.Stage
	sync    *Synchronizer
}

// Name returns the name of the join.
func (j *Join) Name() string {
	return j.name
}

// Inputs returns the input channels.
func (j *Join) Inputs() []*handshake.Channel {
	return j.inputs
}

// Output returns the output channel.
func (j *Join) Output() *handshake.Channel {
	return j.sync.One()
}

// Buffers returns the input buffers.
func (j *Join) Buffers() []elastic.Stage {
	return j.buffers
}

// Synchronizer returns the fan-in synchronizer.
func (j *Join) Synchronizer() *Synchronizer {
	return j.sync
}

// Occupancy returns the number of words held in the input buffers.
func (j *Join) Occupancy() int {
	n := 0
	for _, b := range j.buffers {
		n += b.Occupancy()
	}

	return n
}
