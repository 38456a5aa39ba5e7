// Package tracing observes the traffic of a running circuit. Tracers attach to
// channels and arbiters as hooks and see every transfer, stall and grant.
package tracing

import (
	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/handshake"
)

// A Tracer is notified about what happens on the channels and arbiters it is
// attached to.
type Tracer interface {
	// Transfer is called for every cycle in which a word moved.
	Transfer(t handshake.Transfer)

	// Stall is called for every cycle in which a word waited.
	Stall(t handshake.Transfer)

	// Grant is called for every cycle in which an arbiter granted a request.
	Grant(d arbitration.Decision)
}

// A TransferFilter selects the channels a tracer cares about.
type TransferFilter func(channel string) bool

func accepts(f TransferFilter, channel string) bool {
	return f == nil || f(channel)
}
