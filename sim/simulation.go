package sim

import "log"

// A Simulation ties an engine to the named elements of one circuit, so that
// tools such as the monitor can find them by name.
type Simulation struct {
	engine        Engine
	components    []Component
	compNameIndex map[string]int
	elements      []NamedHookable
	elementIndex  map[string]int
}

// NewSimulation creates a new simulation driven by the given engine.
func NewSimulation(engine Engine) *Simulation {
	return &Simulation{
		engine:        engine,
		compNameIndex: make(map[string]int),
		elementIndex:  make(map[string]int),
	}
}

// Engine returns the engine that runs the simulation.
func (s *Simulation) Engine() Engine {
	return s.engine
}

// RegisterComponent registers a component with the simulation and with its
// engine.
func (s *Simulation) RegisterComponent(c Component) {
	compName := c.Name()
	if _, found := s.compNameIndex[compName]; found {
		log.Panicf("component %s already registered", compName)
	}

	s.components = append(s.components, c)
	s.compNameIndex[compName] = len(s.components) - 1

	s.engine.RegisterComponent(c)
}

// IndexEngineComponents indexes the components that builders registered with
// the engine directly. Components the simulation already knows are skipped.
func (s *Simulation) IndexEngineComponents() {
	for _, c := range s.engine.Components() {
		if _, found := s.compNameIndex[c.Name()]; found {
			continue
		}

		s.components = append(s.components, c)
		s.compNameIndex[c.Name()] = len(s.components) - 1
	}
}

// RegisterElement registers a hookable element that is not ticked by the
// engine on its own, such as a buffer inside a component.
func (s *Simulation) RegisterElement(p NamedHookable) {
	name := p.Name()
	if _, found := s.elementIndex[name]; found {
		log.Panicf("element %s already registered", name)
	}

	s.elements = append(s.elements, p)
	s.elementIndex[name] = len(s.elements) - 1
}

// Components returns the registered components.
func (s *Simulation) Components() []Component {
	return s.components
}

// Elements returns the registered elements.
func (s *Simulation) Elements() []NamedHookable {
	return s.elements
}

// GetComponentByName returns the component with the given name, or nil.
func (s *Simulation) GetComponentByName(name string) Component {
	i, found := s.compNameIndex[name]
	if !found {
		return nil
	}

	return s.components[i]
}

// GetElementByName returns the element with the given name, or nil.
func (s *Simulation) GetElementByName(name string) NamedHookable {
	i, found := s.elementIndex[name]
	if !found {
		return nil
	}

	return s.elements[i]
}

// GetWireByName returns the wire with the given name, or nil.
func (s *Simulation) GetWireByName(name string) *Wire {
	return s.engine.Net().Wire(name)
}
