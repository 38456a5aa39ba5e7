package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Simulation", func() {
	var (
		mockCtrl   *gomock.Controller
		engine     *SerialEngine
		simulation *Simulation
		comp       *MockComponent
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
		simulation = NewSimulation(engine)

		comp = NewMockComponent(mockCtrl)
		comp.EXPECT().Name().Return("Comp").AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should register a component with the engine", func() {
		simulation.RegisterComponent(comp)

		Expect(simulation.GetComponentByName("Comp")).To(BeIdenticalTo(comp))
		Expect(simulation.GetComponentByName("Other")).To(BeNil())
		Expect(engine.Components()).To(HaveLen(1))
		Expect(func() { simulation.RegisterComponent(comp) }).To(Panic())
	})

	It("should index components registered with the engine", func() {
		engine.RegisterComponent(comp)

		simulation.IndexEngineComponents()
		simulation.IndexEngineComponents()

		Expect(simulation.Components()).To(HaveLen(1))
		Expect(simulation.GetComponentByName("Comp")).To(BeIdenticalTo(comp))
	})

	It("should register elements", func() {
		buf := NewBuffer("Comp.Buf", 2)

		simulation.RegisterElement(buf)

		Expect(simulation.GetElementByName("Comp.Buf")).To(BeIdenticalTo(buf))
		Expect(simulation.Elements()).To(HaveLen(1))
	})

	It("should find wires", func() {
		w := engine.Net().NewBit("Comp.Valid")

		Expect(simulation.GetWireByName("Comp.Valid")).To(BeIdenticalTo(w))
	})
})
