// Package junction provides Join and Fork. Both are built on one N-way
// synchronizer that makes a word move on every branch in the same cycle or
// on none.
package junction

import (
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// Direction selects which side of a synchronizer has many channels.
type Direction int

// The synchronizer directions.
const (
	// FanIn synchronizes many producers with one consumer.
	FanIn Direction = iota

	// FanOut synchronizes one producer with many consumers.
	FanOut
)

func (d Direction) String() string {
	if d == FanIn {
		return "FanIn"
	}

	return "FanOut"
}

// A Synchronizer joins many handshakes into one.
//
// On the many side, call the signal each channel drives toward the
// synchronizer its driver, and the signal the synchronizer drives back its
// receiver. For FanIn the drivers are the input valids; for FanOut they are
// the output readies. The synchronizer computes
//
//	all  = AND of the many drivers
//	fire = all AND the driver on the one side
//
// drives all to the one side and fire to every many-side receiver.
type Synchronizer struct {
	*sim.ComponentBase

	dir  Direction
	many []*handshake.Channel
	one  *handshake.Channel
}

// Direction returns the direction.
func (s *Synchronizer) Direction() Direction {
	return s.dir
}

// Many returns the channels on the many side.
func (s *Synchronizer) Many() []*handshake.Channel {
	return s.many
}

// One returns the channel on the one side.
func (s *Synchronizer) One() *handshake.Channel {
	return s.one
}

// Fire reports whether every branch moves a word in the current cycle.
func (s *Synchronizer) Fire() bool {
	return s.all() && s.oneDriver().Bit()
}

func (s *Synchronizer) all() bool {
	for _, c := range s.many {
		if !s.manyDriver(c).Bit() {
			return false
		}
	}

	return true
}

func (s *Synchronizer) manyDriver(c *handshake.Channel) *sim.Wire {
	if s.dir == FanIn {
		return c.Valid()
	}

	return c.Ready()
}

func (s *Synchronizer) manyReceiver(c *handshake.Channel) *sim.Wire {
	if s.dir == FanIn {
		return c.Ready()
	}

	return c.Valid()
}

func (s *Synchronizer) oneDriver() *sim.Wire {
	if s.dir == FanIn {
		return s.one.Ready()
	}

	return s.one.Valid()
}

func (s *Synchronizer) oneReceiver() *sim.Wire {
	if s.dir == FanIn {
		return s.one.Valid()
	}

	return s.one.Ready()
}

// Settle drives the handshake signals and moves the data. Fan-in
// concatenates the many words with the first channel in the least
// significant bits; fan-out copies the one word to every branch.
func (s *Synchronizer) Settle() {
	all := s.all()
	fire := all && s.oneDriver().Bit()

	s.oneReceiver().SetBit(all)

	for _, c := range s.many {
		s.manyReceiver(c).SetBit(fire)
	}

	if s.dir == FanIn {
		parts := make([]bitvec.Vec, len(s.many))
		for i, c := range s.many {
			parts[i] = c.Data().Get()
		}

		s.one.Data().Set(bitvec.Concat(parts...))

		return
	}

	for _, c := range s.many {
		c.Data().Set(s.one.Data().Get())
	}
}

// Tick does nothing. A synchronizer holds no state.
func (s *Synchronizer) Tick() bool {
	return false
}
