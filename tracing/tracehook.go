package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/merge"
	"github.com/sarchlab/elastic/sim"
)

// CollectTrace lets the tracer collect trace from a domain.
func CollectTrace(domain sim.NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

// CollectTraceFromEngine attaches the tracer to every channel, arbiter and
// merge steering unit the engine knows about. It returns the number of domains traced.
func CollectTraceFromEngine(engine sim.Engine, tracer Tracer) int {
	n := 0

	for _, c := range engine.Components() {
		switch c.(type) {
		case *handshake.Channel, *arbitration.Arbiter, *merge.Steering:
			CollectTrace(c, tracer)
			n++
		}
	}

	return n
}

type traceHook struct {
	t Tracer
}

// Func dispatches the hook to the tracer.
func (h *traceHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case handshake.HookPosTransfer:
		h.t.Transfer(ctx.Item.(handshake.Transfer))
	case handshake.HookPosStall:
		h.t.Stall(ctx.Item.(handshake.Transfer))
	case arbitration.HookPosGrant:
		h.t.Grant(ctx.Item.(arbitration.Decision))
	}
}
