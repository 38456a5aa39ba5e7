package tracing

import (
	"sync"

	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

type stallStreak struct {
	start, last sim.VTimeInCycle
	open        bool
}

// StallTracer measures how long words wait on a channel. Consecutive stall
// cycles of a channel form one episode, which ends with the transfer of the
// waiting word.
type StallTracer struct {
	filter TransferFilter
	lock   sync.Mutex

	streaks  map[string]*stallStreak
	episodes map[string]uint64
	total    map[string]uint64
	longest  map[string]uint64
}

// NewStallTracer creates a new StallTracer.
func NewStallTracer(filter TransferFilter) *StallTracer {
	return &StallTracer{
		filter:   filter,
		streaks:  make(map[string]*stallStreak),
		episodes: make(map[string]uint64),
		total:    make(map[string]uint64),
		longest:  make(map[string]uint64),
	}
}

// Stall extends or opens the stall episode of the channel.
func (t *StallTracer) Stall(tr handshake.Transfer) {
	if !accepts(t.filter, tr.Channel) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	s, ok := t.streaks[tr.Channel]
	if !ok {
		s = &stallStreak{}
		t.streaks[tr.Channel] = s
	}

	if s.open && tr.Cycle != s.last+1 {
		t.close(tr.Channel, s)
	}

	if !s.open {
		s.open = true
		s.start = tr.Cycle
	}

	s.last = tr.Cycle
}

// Transfer closes the stall episode of the channel, if any.
func (t *StallTracer) Transfer(tr handshake.Transfer) {
	if !accepts(t.filter, tr.Channel) {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	s, ok := t.streaks[tr.Channel]
	if ok && s.open {
		t.close(tr.Channel, s)
	}
}

// Grant does nothing.
func (t *StallTracer) Grant(_ arbitration.Decision) {
	// Do nothing
}

func (t *StallTracer) close(channel string, s *stallStreak) {
	length := uint64(s.last-s.start) + 1

	t.episodes[channel]++
	t.total[channel] += length

	if length > t.longest[channel] {
		t.longest[channel] = length
	}

	s.open = false
}

// NumEpisodes returns the number of completed stall episodes of a channel.
func (t *StallTracer) NumEpisodes(channel string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.episodes[channel]
}

// LongestStall returns the longest completed stall episode, in cycles.
func (t *StallTracer) LongestStall(channel string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.longest[channel]
}

// AverageStall returns the average length of the completed stall episodes.
func (t *StallTracer) AverageStall(channel string) float64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.episodes[channel] == 0 {
		return 0
	}

	return float64(t.total[channel]) / float64(t.episodes[channel])
}
