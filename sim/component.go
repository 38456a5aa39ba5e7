package sim

// A Component is an element of a synchronous circuit.
//
// Within a cycle, Settle computes the component's combinational outputs from
// its registered state and the current values of its input wires. Settle may
// be called several times per cycle and must not change registered state.
// At the cycle boundary, Tick computes the next registered state from the
// settled wires. Tick must not drive wires, so the order in which components
// tick does not matter.
type Component interface {
	NamedHookable

	// Settle drives the combinational outputs.
	Settle()

	// Tick updates the registered state. It returns true if the state
	// changed or a transfer took place.
	Tick() (madeProgress bool)
}

// ComponentBase provides the name, hooks and synchronous clear input that most
// components share.
type ComponentBase struct {
	*HookableBase

	name  string
	clear *Wire
}

// NewComponentBase creates a new ComponentBase.
func NewComponentBase(name string) *ComponentBase {
	NameMustBeValid(name)

	c := new(ComponentBase)
	c.HookableBase = NewHookableBase()
	c.name = name

	return c
}

// Name returns the name of the component.
func (c *ComponentBase) Name() string {
	return c.name
}

// SetClear connects the synchronous clear input. A nil wire leaves the
// component without clear.
func (c *ComponentBase) SetClear(w *Wire) {
	c.clear = w
}

// ClearAsserted reports whether the clear input is high in this cycle.
func (c *ComponentBase) ClearAsserted() bool {
	return BitOf(c.clear, false)
}
