package testbench

import "github.com/sarchlab/elastic/sim"

// A driver is a small stimulus component. settle drives wires from the
// driver's own state; tick advances that state.
type driver struct {
	*sim.ComponentBase

	settle func()
	tick   func() bool
}

func newDriver(name string, settle func(), tick func() bool) *driver {
	return &driver{
		ComponentBase: sim.NewComponentBase(name),
		settle:        settle,
		tick:          tick,
	}
}

func (d *driver) Settle() {
	if d.settle != nil {
		d.settle()
	}
}

func (d *driver) Tick() bool {
	if d.tick == nil {
		return false
	}

	return d.tick()
}
