package sim

import (
	"context"
	"log"
	"sync"

	"github.com/pkg/errors"
)

// A SerialEngine is an Engine that evaluates every component on the calling
// goroutine, one cycle after another.
type SerialEngine struct {
	*HookableBase

	net        *Net
	components []Component
	byName     map[string]Component

	timeLock sync.RWMutex
	now      VTimeInCycle

	maxSettlePasses int

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex
	cycleLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewSerialEngine creates a SerialEngine with an empty net.
func NewSerialEngine() *SerialEngine {
	return &SerialEngine{
		HookableBase: NewHookableBase(),
		net:          NewNet(),
		byName:       make(map[string]Component),
	}
}

// WithMaxSettlePasses limits the number of settle passes per cycle. Zero
// selects a limit derived from the number of components.
func (e *SerialEngine) WithMaxSettlePasses(n int) *SerialEngine {
	e.maxSettlePasses = n
	return e
}

// Net returns the net that owns the circuit's wires.
func (e *SerialEngine) Net() *Net {
	return e.net
}

// RegisterComponent adds a component to the circuit.
func (e *SerialEngine) RegisterComponent(c Component) {
	if _, found := e.byName[c.Name()]; found {
		log.Panicf("component %s already registered", c.Name())
	}

	e.components = append(e.components, c)
	e.byName[c.Name()] = c
}

// Components returns the registered components in registration order.
func (e *SerialEngine) Components() []Component {
	comps := make([]Component, len(e.components))
	copy(comps, e.components)

	return comps
}

// ComponentByName returns a registered component, or nil.
func (e *SerialEngine) ComponentByName(name string) Component {
	return e.byName[name]
}

func (e *SerialEngine) readNow() VTimeInCycle {
	e.timeLock.RLock()
	t := e.now
	e.timeLock.RUnlock()

	return t
}

func (e *SerialEngine) writeNow(t VTimeInCycle) {
	e.timeLock.Lock()
	e.now = t
	e.timeLock.Unlock()
}

// CurrentTime returns the cycle that is being evaluated.
func (e *SerialEngine) CurrentTime() VTimeInCycle {
	return e.readNow()
}

func (e *SerialEngine) settlePassLimit() int {
	if e.maxSettlePasses > 0 {
		return e.maxSettlePasses
	}

	return 2*len(e.components) + 2
}

// Settle evaluates the combinational logic until no wire changes. An acyclic
// circuit of n components settles in at most n+1 passes; a circuit that keeps
// changing past the limit has a combinational loop.
func (e *SerialEngine) Settle() error {
	limit := e.settlePassLimit()

	for pass := 0; pass < limit; pass++ {
		before := e.net.Generation()

		for _, c := range e.components {
			c.Settle()
		}

		if e.net.Generation() == before {
			return nil
		}
	}

	return errors.Wrapf(ErrCombinationalLoop,
		"cycle %d, %d passes", e.readNow(), limit)
}

// Step settles the wires and then ticks every component once. Step ignores
// Pause, so a paused circuit can still be single-stepped.
func (e *SerialEngine) Step() (madeProgress bool, err error) {
	e.cycleLock.Lock()
	defer e.cycleLock.Unlock()

	err = e.Settle()
	if err != nil {
		return false, err
	}

	now := e.readNow()

	hookCtx := HookCtx{
		Domain: e,
		Pos:    HookPosBeforeTick,
		Item:   now,
	}
	e.InvokeHook(hookCtx)

	for _, c := range e.components {
		if c.Tick() {
			madeProgress = true
		}
	}

	e.writeNow(now + 1)

	hookCtx.Pos = HookPosAfterTick
	e.InvokeHook(hookCtx)

	return madeProgress, nil
}

// Inspect calls f between two cycles, so that f sees settled wires and
// registered state that no Step is changing. f must not step the engine.
func (e *SerialEngine) Inspect(f func()) {
	e.cycleLock.Lock()
	defer e.cycleLock.Unlock()

	f()
}

// waitWhilePaused blocks until the engine is not paused.
func (e *SerialEngine) waitWhilePaused() {
	e.pauseLock.Lock()
	e.pauseLock.Unlock()
}

// Run steps the engine for the given number of cycles.
func (e *SerialEngine) Run(ctx context.Context, cycles uint64) error {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for i := uint64(0); i < cycles; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "stopped at cycle %d", e.readNow())
		}

		e.waitWhilePaused()

		if _, err := e.Step(); err != nil {
			return err
		}
	}

	return nil
}

// RunUntilIdle steps until a cycle in which no component makes progress.
func (e *SerialEngine) RunUntilIdle(
	ctx context.Context,
	maxCycles uint64,
) (uint64, error) {
	e.singleRunLock.Lock()
	defer e.singleRunLock.Unlock()

	for i := uint64(0); i < maxCycles; i++ {
		if err := ctx.Err(); err != nil {
			return i, errors.Wrapf(err, "stopped at cycle %d", e.readNow())
		}

		e.waitWhilePaused()

		progress, err := e.Step()
		if err != nil {
			return i + 1, err
		}

		if !progress {
			return i + 1, nil
		}
	}

	return maxCycles, errors.Wrapf(ErrNotIdle,
		"still busy after %d cycles", maxCycles)
}

// Pause stops Run and RunUntilIdle before their next cycle. Step still works.
func (e *SerialEngine) Pause() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if e.isPaused {
		return
	}

	e.pauseLock.Lock()
	e.isPaused = true
}

// Continue allows the SerialEngine to run cycles again.
func (e *SerialEngine) Continue() {
	e.isPausedLock.Lock()
	defer e.isPausedLock.Unlock()

	if !e.isPaused {
		return
	}

	e.pauseLock.Unlock()
	e.isPaused = false
}

var _ Engine = (*SerialEngine)(nil)
