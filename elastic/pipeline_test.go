package elastic

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

type firstTransfer struct {
	cycle sim.VTimeInCycle
	seen  bool
}

func (h *firstTransfer) Func(ctx sim.HookCtx) {
	if ctx.Pos != handshake.HookPosTransfer || h.seen {
		return
	}

	h.cycle = ctx.Item.(handshake.Transfer).Cycle
	h.seen = true
}

var _ = Describe("Pipeline", func() {
	var b *bench

	BeforeEach(func() {
		b = newBench(handshake.Always(), handshake.Always())
	})

	It("should delay words by the number of stages", func() {
		p := MakePipelineBuilder().
			WithEngine(b.engine).
			WithNumStage(3).
			WithInput(b.in).
			Build("Pipe")
		b.attachSink(p.Output(), handshake.Always())

		first := &firstTransfer{}
		p.Output().AcceptHook(first)
		b.send(10)

		_, err := b.engine.RunUntilIdle(context.Background(), 100)

		Expect(err).NotTo(HaveOccurred())
		Expect(first.cycle).To(Equal(sim.VTimeInCycle(3)))
		expectInOrder(b.sink.ReceivedUint64(), 10)
		Expect(p.Occupancy()).To(Equal(0))
		Expect(p.Capacity()).To(Equal(3))
		Expect(p.Stages()).To(HaveLen(3))
		Expect(p.Input()).To(BeIdenticalTo(b.in))
		Expect(p.Stages()[1].Name()).To(Equal("Pipe.Stage[1]"))
	})

	It("should use a given output channel", func() {
		out := handshake.MakeBuilder().WithEngine(b.engine).WithWidth(16).
			Build("Out")

		p := MakePipelineBuilder().
			WithEngine(b.engine).
			WithNumStage(2).
			WithBufferKind(KindSkid).
			WithInput(b.in).
			WithOutput(out).
			Build("Pipe")

		Expect(p.Output()).To(BeIdenticalTo(out))
		Expect(p.Capacity()).To(Equal(4))
	})

	It("should hold words without loss under backpressure", func() {
		p := MakePipelineBuilder().
			WithEngine(b.engine).
			WithNumStage(4).
			WithBufferKind(KindSkid).
			WithInput(b.in).
			Build("Pipe")
		b.attachSink(p.Output(), handshake.Probability(0.3, 11))
		b.send(100)

		_, err := b.engine.RunUntilIdle(context.Background(), 5000)

		Expect(err).NotTo(HaveOccurred())
		expectInOrder(b.sink.ReceivedUint64(), 100)
		Expect(b.checker.Violations()).To(BeEmpty())
	})

	It("should clear every stage", func() {
		clear := b.engine.Net().NewBit("Clear")
		p := MakePipelineBuilder().
			WithEngine(b.engine).
			WithNumStage(3).
			WithInput(b.in).
			WithClear(clear).
			Build("Pipe")
		b.attachSink(p.Output(), handshake.PatternString("0"))
		b.send(3)

		Expect(b.engine.Run(context.Background(), 5)).To(Succeed())
		Expect(p.Occupancy()).To(Equal(3))

		clear.SetBit(true)
		Expect(b.engine.Run(context.Background(), 1)).To(Succeed())

		Expect(p.Occupancy()).To(Equal(0))
	})

	It("should refuse zero stages", func() {
		Expect(func() {
			MakePipelineBuilder().WithEngine(b.engine).WithNumStage(0).
				WithInput(b.in).Build("Pipe")
		}).To(Panic())
	})
})
