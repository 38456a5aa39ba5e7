package tracing

import (
	"sync"

	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/datarecording"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
	"github.com/tebeka/atexit"
)

// Table names used by the DBTracer.
const (
	TransferTable = "elastic_transfers"
	StallTable    = "elastic_stalls"
	GrantTable    = "elastic_grants"
)

// TransferEntry is one row of the transfer and stall tables.
type TransferEntry struct {
	Channel string
	Cycle   uint64
	Data    string
}

// GrantEntry is one row of the grant table.
type GrantEntry struct {
	Arbiter   string
	Cycle     uint64
	Requests  string
	Grant     string
	Requester int
}

// DBTracer stores events into a data recorder. Events outside the tracing
// window are dropped.
type DBTracer struct {
	mu         sync.Mutex
	backend    datarecording.DataRecorder
	filter     TransferFilter
	withStalls bool

	startCycle, endCycle sim.VTimeInCycle
	hasEnd               bool
}

// NewDBTracer creates a DBTracer and the tables it writes.
func NewDBTracer(
	backend datarecording.DataRecorder,
	filter TransferFilter,
	withStalls bool,
) *DBTracer {
	t := &DBTracer{
		backend:    backend,
		filter:     filter,
		withStalls: withStalls,
	}

	backend.CreateTable(TransferTable, TransferEntry{})
	backend.CreateTable(GrantTable, GrantEntry{})

	if withStalls {
		backend.CreateTable(StallTable, TransferEntry{})
	}

	atexit.Register(func() { t.Terminate() })

	return t
}

// SetWindow limits tracing to the cycles in [start, end].
func (t *DBTracer) SetWindow(start, end sim.VTimeInCycle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startCycle = start
	t.endCycle = end
	t.hasEnd = true
}

func (t *DBTracer) inWindow(cycle sim.VTimeInCycle) bool {
	if cycle < t.startCycle {
		return false
	}

	return !t.hasEnd || cycle <= t.endCycle
}

// Transfer records a transfer.
func (t *DBTracer) Transfer(tr handshake.Transfer) {
	t.record(TransferTable, tr)
}

// Stall records a stall.
func (t *DBTracer) Stall(tr handshake.Transfer) {
	if !t.withStalls {
		return
	}

	t.record(StallTable, tr)
}

func (t *DBTracer) record(table string, tr handshake.Transfer) {
	if !accepts(t.filter, tr.Channel) {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inWindow(tr.Cycle) {
		return
	}

	t.backend.InsertData(table, TransferEntry{
		Channel: tr.Channel,
		Cycle:   uint64(tr.Cycle),
		Data:    tr.Data.String(),
	})
}

// Grant records an arbitration decision.
func (t *DBTracer) Grant(d arbitration.Decision) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.inWindow(d.Cycle) {
		return
	}

	t.backend.InsertData(GrantTable, GrantEntry{
		Arbiter:   d.Arbiter,
		Cycle:     uint64(d.Cycle),
		Requests:  d.Requests.String(),
		Grant:     d.Grant.String(),
		Requester: bitvec.LowestIndex(d.Grant),
	})
}

// Terminate flushes everything recorded so far.
func (t *DBTracer) Terminate() {
	t.backend.Flush()
}
