package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

// ChannelStats summarizes the traffic of one channel.
type ChannelStats struct {
	Transfers  uint64
	Stalls     uint64
	FirstCycle sim.VTimeInCycle
	LastCycle  sim.VTimeInCycle
}

// Throughput returns the transfers per cycle between the first and the last
// observed activity.
func (s ChannelStats) Throughput() float64 {
	if s.Transfers == 0 {
		return 0
	}

	return float64(s.Transfers) / float64(s.LastCycle-s.FirstCycle+1)
}

// CountingTracer counts transfers and stalls per channel and grants per
// requester of each arbiter.
type CountingTracer struct {
	filter   TransferFilter
	lock     sync.Mutex
	channels map[string]*ChannelStats
	grants   map[string][]uint64
}

// NewCountingTracer creates a new CountingTracer. A nil filter traces every
// channel.
func NewCountingTracer(filter TransferFilter) *CountingTracer {
	return &CountingTracer{
		filter:   filter,
		channels: make(map[string]*ChannelStats),
		grants:   make(map[string][]uint64),
	}
}

func (t *CountingTracer) stats(
	channel string,
	cycle sim.VTimeInCycle,
) *ChannelStats {
	s, ok := t.channels[channel]
	if !ok {
		s = &ChannelStats{FirstCycle: cycle}
		t.channels[channel] = s
	}

	s.LastCycle = cycle

	return s
}

// Transfer counts a transfer.
func (t *CountingTracer) Transfer(tr handshake.Transfer) {
	if !accepts(t.filter, tr.Channel) {
		return
	}

	t.lock.Lock()
	t.stats(tr.Channel, tr.Cycle).Transfers++
	t.lock.Unlock()
}

// Stall counts a stall.
func (t *CountingTracer) Stall(tr handshake.Transfer) {
	if !accepts(t.filter, tr.Channel) {
		return
	}

	t.lock.Lock()
	t.stats(tr.Channel, tr.Cycle).Stalls++
	t.lock.Unlock()
}

// Grant counts the granted requester.
func (t *CountingTracer) Grant(d arbitration.Decision) {
	index, ok := bitvec.Log2(d.Grant)
	if !ok {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	counts := t.grants[d.Arbiter]
	if counts == nil {
		counts = make([]uint64, d.Grant.Width())
		t.grants[d.Arbiter] = counts
	}

	counts[index]++
}

// Channels returns the names of the channels seen so far, sorted.
func (t *CountingTracer) Channels() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	names := make([]string, 0, len(t.channels))
	for name := range t.channels {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Stats returns the statistics of a channel.
func (t *CountingTracer) Stats(channel string) ChannelStats {
	t.lock.Lock()
	defer t.lock.Unlock()

	s, ok := t.channels[channel]
	if !ok {
		return ChannelStats{}
	}

	return *s
}

// Grants returns how often each requester of an arbiter was granted.
func (t *CountingTracer) Grants(arbiter string) []uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	counts := make([]uint64, len(t.grants[arbiter]))
	copy(counts, t.grants[arbiter])

	return counts
}
