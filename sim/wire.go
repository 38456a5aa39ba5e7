package sim

import (
	"log"
	"sync"

	"github.com/sarchlab/elastic/bitvec"
)

// A Net owns the wires of a circuit and counts how often any of them changes
// value. The engine compares the count before and after a settle pass to find
// out whether the combinational logic has reached a fixed point.
type Net struct {
	lock       sync.Mutex
	wires      []*Wire
	byName     map[string]*Wire
	generation uint64
}

// NewNet creates an empty Net.
func NewNet() *Net {
	return &Net{
		byName: make(map[string]*Wire),
	}
}

// NewWire creates a zero-valued wire of the given width.
func (n *Net) NewWire(name string, width int) *Wire {
	NameMustBeValid(name)

	n.lock.Lock()
	defer n.lock.Unlock()

	if _, found := n.byName[name]; found {
		log.Panicf("wire %s already exists", name)
	}

	w := &Wire{
		name:  name,
		value: bitvec.New(width),
		net:   n,
	}

	n.wires = append(n.wires, w)
	n.byName[name] = w

	return w
}

// NewBit creates a single-bit wire.
func (n *Net) NewBit(name string) *Wire {
	return n.NewWire(name, 1)
}

// Wire returns the wire with the given name, or nil.
func (n *Net) Wire(name string) *Wire {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.byName[name]
}

// Wires returns all the wires in creation order.
func (n *Net) Wires() []*Wire {
	n.lock.Lock()
	defer n.lock.Unlock()

	wires := make([]*Wire, len(n.wires))
	copy(wires, n.wires)

	return wires
}

// Generation returns the number of value changes seen so far.
func (n *Net) Generation() uint64 {
	n.lock.Lock()
	defer n.lock.Unlock()

	return n.generation
}

func (n *Net) bump() {
	n.lock.Lock()
	n.generation++
	n.lock.Unlock()
}

// A Wire carries one fixed-width value. Exactly one component is expected to
// drive a wire; any number of components may read it.
type Wire struct {
	name  string
	value bitvec.Vec
	net   *Net
}

// Name returns the name of the wire.
func (w *Wire) Name() string {
	return w.name
}

// Width returns the number of bits the wire carries.
func (w *Wire) Width() int {
	return w.value.Width()
}

// Get returns the current value.
func (w *Wire) Get() bitvec.Vec {
	return w.value
}

// Set drives a new value. Setting the value the wire already holds is not a
// change.
func (w *Wire) Set(v bitvec.Vec) {
	if v.Width() != w.value.Width() {
		log.Panicf("wire %s: cannot drive %d bits onto a %d-bit wire",
			w.name, v.Width(), w.value.Width())
	}

	if v.Equal(w.value) {
		return
	}

	w.value = v
	if w.net != nil {
		w.net.bump()
	}
}

// Bit returns bit 0 of the wire.
func (w *Wire) Bit() bool {
	return w.value.Bit(0)
}

// SetBit drives a single-bit wire.
func (w *Wire) SetBit(b bool) {
	v := bitvec.New(w.value.Width())
	if b {
		v = v.WithBit(0, true)
	}

	w.Set(v)
}

// Uint64 returns the low 64 bits of the wire.
func (w *Wire) Uint64() uint64 {
	return w.value.Uint64()
}

// SetUint64 drives the wire with the low bits of value.
func (w *Wire) SetUint64(value uint64) {
	w.Set(bitvec.FromUint64(w.value.Width(), value))
}

// BitOf reads an optional single-bit control wire. A nil wire reads as def.
func BitOf(w *Wire, def bool) bool {
	if w == nil {
		return def
	}

	return w.Bit()
}
