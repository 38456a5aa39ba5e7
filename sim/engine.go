package sim

import (
	"context"

	"github.com/pkg/errors"
)

// VTimeInCycle counts the clock cycles that have completed since the engine
// started.
type VTimeInCycle uint64

// TimeTeller can be used to get the current cycle.
type TimeTeller interface {
	CurrentTime() VTimeInCycle
}

// ErrCombinationalLoop is returned when the wires of a circuit do not reach a
// fixed point within a cycle.
var ErrCombinationalLoop = errors.New("combinational loop: wires did not settle")

// ErrNotIdle is returned when a circuit is still busy after the cycle budget
// given to RunUntilIdle.
var ErrNotIdle = errors.New("circuit did not become idle")

// HookPosBeforeTick triggers after the wires settled and before the
// registered state updates. The hook item is the current cycle.
var HookPosBeforeTick = &HookPos{Name: "BeforeTick"}

// HookPosAfterTick triggers after the registered state updated. The hook item
// is the cycle that just completed.
var HookPosAfterTick = &HookPos{Name: "AfterTick"}

// An Engine advances a synchronous circuit one clock cycle at a time.
type Engine interface {
	Hookable
	TimeTeller

	// Net returns the net that owns the circuit's wires.
	Net() *Net

	// RegisterComponent adds a component to the circuit.
	RegisterComponent(c Component)

	// Components returns the registered components in registration order.
	Components() []Component

	// Settle evaluates the combinational logic of the current cycle until all
	// wires are stable.
	Settle() error

	// Step settles the wires and then ticks every component once, also
	// while the engine is paused.
	Step() (madeProgress bool, err error)

	// Run steps the engine for the given number of cycles.
	Run(ctx context.Context, cycles uint64) error

	// RunUntilIdle steps until a cycle in which no component makes progress,
	// and returns the number of cycles stepped.
	RunUntilIdle(ctx context.Context, maxCycles uint64) (uint64, error)

	// Inspect calls f between two cycles.
	Inspect(f func())

	// Pause blocks further cycles of Run and RunUntilIdle until Continue is
	// called.
	Pause()

	// Continue resumes a paused engine.
	Continue()
}
