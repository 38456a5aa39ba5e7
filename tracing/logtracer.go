package tracing

import (
	"github.com/rs/zerolog"

	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/handshake"
)

// LogTracer writes every event as a structured log line.
type LogTracer struct {
	logger     zerolog.Logger
	filter     TransferFilter
	withStalls bool
}

// NewLogTracer creates a LogTracer that logs transfers and grants at debug
// level. Stalls are logged at trace level when withStalls is set.
func NewLogTracer(
	logger zerolog.Logger,
	filter TransferFilter,
	withStalls bool,
) *LogTracer {
	return &LogTracer{
		logger:     logger,
		filter:     filter,
		withStalls: withStalls,
	}
}

// Transfer logs a transfer.
func (t *LogTracer) Transfer(tr handshake.Transfer) {
	if !accepts(t.filter, tr.Channel) {
		return
	}

	t.logger.Debug().
		Str("channel", tr.Channel).
		Uint64("cycle", uint64(tr.Cycle)).
		Stringer("data", tr.Data).
		Msg("transfer")
}

// Stall logs a stall.
func (t *LogTracer) Stall(tr handshake.Transfer) {
	if !t.withStalls || !accepts(t.filter, tr.Channel) {
		return
	}

	t.logger.Trace().
		Str("channel", tr.Channel).
		Uint64("cycle", uint64(tr.Cycle)).
		Msg("stall")
}

// Grant logs an arbitration decision.
func (t *LogTracer) Grant(d arbitration.Decision) {
	t.logger.Debug().
		Str("arbiter", d.Arbiter).
		Uint64("cycle", uint64(d.Cycle)).
		Stringer("requests", d.Requests).
		Stringer("grant", d.Grant).
		Msg("grant")
}
