package sim

import (
	"github.com/rs/zerolog"
)

// CycleLogger is a hook that writes one log line per completed cycle. Attach
// it to an engine.
type CycleLogger struct {
	logger zerolog.Logger
	net    *Net
}

// NewCycleLogger returns a new CycleLogger that writes into the logger.
func NewCycleLogger(logger zerolog.Logger, net *Net) *CycleLogger {
	return &CycleLogger{
		logger: logger,
		net:    net,
	}
}

// Func writes the cycle information into the logger.
func (h *CycleLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosAfterTick {
		return
	}

	cycle, ok := ctx.Item.(VTimeInCycle)
	if !ok {
		return
	}

	event := h.logger.Debug().Uint64("cycle", uint64(cycle))
	if h.net != nil {
		event = event.Uint64("generation", h.net.Generation())
	}

	event.Msg("tick")
}
