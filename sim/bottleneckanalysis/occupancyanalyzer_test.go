package bottleneckanalysis

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/elastic/sim"
)

type fakeStorage struct {
	*sim.ComponentBase

	level    int
	capacity int
}

func newFakeStorage(name string, capacity int) *fakeStorage {
	return &fakeStorage{
		ComponentBase: sim.NewComponentBase(name),
		capacity:      capacity,
	}
}

func (s *fakeStorage) Settle() {}
func (s *fakeStorage) Tick() bool { return false }
func (s *fakeStorage) Occupancy() int { return s.level }
func (s *fakeStorage) Capacity() int { return s.capacity }

type plainComponent struct {
	*sim.ComponentBase
}

func (c *plainComponent) Settle() {}
func (c *plainComponent) Tick() bool { return false }

func afterTick(a *OccupancyAnalyzer, cycle uint64) {
	a.Func(sim.HookCtx{
		Pos:  sim.HookPosAfterTick,
		Item: sim.VTimeInCycle(cycle),
	})
}

var _ = Describe("OccupancyAnalyzer", func() {
	var (
		analyzer *OccupancyAnalyzer
		a, b     *fakeStorage
	)

	BeforeEach(func() {
		analyzer = MakeOccupancyAnalyzerBuilder().Build()
		a = newFakeStorage("A", 2)
		b = newFakeStorage("B", 4)
	})

	It("should average the level over the sampled cycles", func() {
		analyzer.Watch(a)

		for i, level := range []int{0, 1, 2, 1} {
			a.level = level
			afterTick(analyzer, uint64(i+1))
		}

		e, found := analyzer.Stats("A")

		Expect(found).To(BeTrue())
		Expect(e.Average).To(Equal(1.0))
		Expect(e.FullFraction).To(Equal(0.25))
		Expect(e.Current).To(Equal(1))
		Expect(e.Utilization()).To(Equal(0.5))
	})

	It("should only sample after ticks", func() {
		analyzer.Watch(a)
		a.level = 2

		analyzer.Func(sim.HookCtx{Pos: sim.HookPosBeforeTick})

		e, _ := analyzer.Stats("A")
		Expect(e.Average).To(Equal(0.0))
	})

	It("should put the most utilized storage first", func() {
		analyzer.Watch(a)
		analyzer.Watch(b)
		analyzer.Watch(b)

		a.level = 1
		b.level = 3
		afterTick(analyzer, 1)

		entries := analyzer.Entries()
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Name).To(Equal("B"))
		Expect(entries[1].Name).To(Equal("A"))

		bottleneck, ok := analyzer.Bottleneck()
		Expect(ok).To(BeTrue())
		Expect(bottleneck.Name).To(Equal("B"))
	})

	It("should report no bottleneck when nothing is watched", func() {
		_, ok := analyzer.Bottleneck()
		Expect(ok).To(BeFalse())

		_, found := analyzer.Stats("A")
		Expect(found).To(BeFalse())
	})

	It("should watch only components that hold words", func() {
		plain := &plainComponent{ComponentBase: sim.NewComponentBase("P")}

		n := analyzer.WatchComponents([]sim.Component{a, plain, b})

		Expect(n).To(Equal(2))
		Expect(analyzer.Entries()).To(HaveLen(2))
	})

	It("should restart the period average every period", func() {
		analyzer = MakeOccupancyAnalyzerBuilder().WithPeriod(2).Build()
		analyzer.Watch(a)

		a.level = 2
		afterTick(analyzer, 1)
		afterTick(analyzer, 2)

		info := analyzer.byName["A"]
		Expect(info.periodCycles).To(Equal(uint64(0)))

		a.level = 0
		afterTick(analyzer, 3)
		Expect(info.periodAverage()).To(Equal(0.0))

		e, _ := analyzer.Stats("A")
		Expect(e.Average).To(BeNumerically("~", 4.0/3.0, 1e-9))
	})
})
