package merge

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/elastic/arbitration"
	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/handshake"
	"github.com/sarchlab/elastic/sim"
)

type grantCounter struct {
	n int
}

func (c *grantCounter) Func(ctx sim.HookCtx) {
	if ctx.Pos == arbitration.HookPosGrant {
		c.n++
	}
}

func tag(source, seq int) uint64 {
	return uint64(source<<6 | seq)
}

var _ = Describe("PriorityMerge", func() {
	var (
		engine *sim.SerialEngine
		ins    []*handshake.Channel
		srcs   []*handshake.Source
	)

	buildSources := func(n int, throttle func(k int) handshake.Throttle) {
		ins = handshake.MakeBuilder().WithEngine(engine).WithWidth(8).
			BuildSeries("", "In", n)
		srcs = make([]*handshake.Source, n)
		for k := range ins {
			srcs[k] = handshake.MakeSourceBuilder().
				WithEngine(engine).
				WithOutput(ins[k]).
				WithThrottle(throttle(k)).
				Build(sim.BuildNameWithIndex("", "Src", k))
		}
	}

	send := func(perSource int) {
		for k, src := range srcs {
			for i := 0; i < perSource; i++ {
				src.SendUint64(tag(k, i))
			}
		}
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	It("should keep the order of every source under backpressure", func() {
		buildSources(3, func(k int) handshake.Throttle {
			return handshake.Probability(0.5, int64(k+1))
		})
		m := MakeBuilder().WithEngine(engine).WithInputs(ins...).Build("Merge")
		sink := handshake.MakeSinkBuilder().WithEngine(engine).
			WithInput(m.Output()).
			WithThrottle(handshake.Probability(0.6, 42)).
			Build("Sink")
		checker := handshake.NewProtocolChecker()
		checker.Watch(append(ins, m.Output())...)
		send(30)

		_, err := engine.RunUntilIdle(context.Background(), 5000)
		Expect(err).NotTo(HaveOccurred())

		Expect(sink.NumReceived()).To(Equal(90))
		next := make([]uint64, 3)
		for _, v := range sink.ReceivedUint64() {
			k := v >> 6
			Expect(v & 0x3f).To(Equal(next[k]))
			next[k]++
		}
		Expect(checker.Violations()).To(BeEmpty())
		Expect(m.Occupancy()).To(Equal(0))
	})

	It("should serve the lowest input first", func() {
		buildSources(2, func(int) handshake.Throttle {
			return handshake.Always()
		})
		m := MakeBuilder().WithEngine(engine).WithInputs(ins...).Build("Merge")
		sink := handshake.MakeSinkBuilder().WithEngine(engine).
			WithInput(m.Output()).Build("Sink")
		send(5)

		_, err := engine.RunUntilIdle(context.Background(), 100)
		Expect(err).NotTo(HaveOccurred())

		got := sink.ReceivedUint64()
		Expect(got).To(HaveLen(10))
		for i := 0; i < 5; i++ {
			Expect(got[i]).To(Equal(tag(0, i)))
			Expect(got[i+5]).To(Equal(tag(1, i)))
		}
	})

	It("should take turns with a round-robin policy", func() {
		buildSources(2, func(int) handshake.Throttle {
			return handshake.Always()
		})
		m := MakeBuilder().WithEngine(engine).WithInputs(ins...).
			WithPolicy(arbitration.NewRoundRobinPolicy(arbitration.RotateOnGrant)).
			Build("Merge")
		sink := handshake.MakeSinkBuilder().WithEngine(engine).
			WithInput(m.Output()).Build("Sink")
		grants := &grantCounter{}
		m.Steering().AcceptHook(grants)
		send(4)

		_, err := engine.RunUntilIdle(context.Background(), 100)
		Expect(err).NotTo(HaveOccurred())

		Expect(sink.ReceivedUint64()).To(Equal([]uint64{
			tag(0, 0), tag(1, 0), tag(0, 1), tag(1, 1),
			tag(0, 2), tag(1, 2), tag(0, 3), tag(1, 3),
		}))
		Expect(grants.n).To(Equal(8))
	})

	It("should refuse inputs of different widths", func() {
		a := handshake.MakeBuilder().WithEngine(engine).WithWidth(8).Build("A")
		b := handshake.MakeBuilder().WithEngine(engine).WithWidth(4).Build("B")

		Expect(func() {
			MakeBuilder().WithEngine(engine).WithInputs(a, b).Build("Merge")
		}).To(Panic())
		Expect(func() {
			MakeBuilder().WithEngine(engine).Build("Merge")
		}).To(Panic())
	})
})

var _ = Describe("OneHotMerge", func() {
	var (
		engine *sim.SerialEngine
		ins    []*handshake.Channel
	)

	step := func() {
		_, err := engine.Step()
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		ins = handshake.MakeBuilder().WithEngine(engine).WithWidth(8).
			BuildSeries("", "In", 2)
	})

	It("should follow the selector and drain while nothing is selected",
		func() {
			srcs := make([]*handshake.Source, 2)
			for k := range ins {
				srcs[k] = handshake.MakeSourceBuilder().WithEngine(engine).
					WithOutput(ins[k]).
					Build(sim.BuildNameWithIndex("", "Src", k))
				srcs[k].SendUint64(uint64(10 + k))
				srcs[k].SendUint64(uint64(20 + k))
			}

			m := MakeBuilder().WithEngine(engine).WithInputs(ins...).
				BuildOneHot("Merge")
			out := m.Output()

			m.Selector().Set(bitvec.MustParse("01"))
			step()
			step()

			Expect(srcs[0].NumSent()).To(Equal(uint64(1)))
			Expect(m.Occupancy()).To(Equal(1))

			m.Selector().Set(bitvec.New(2))
			out.Ready().SetBit(true)
			Expect(engine.Settle()).To(Succeed())
			Expect(out.Data().Uint64()).To(Equal(uint64(10)))
			step()
			step()

			Expect(m.Occupancy()).To(Equal(0))
			Expect(srcs[0].NumSent()).To(Equal(uint64(1)))
			Expect(srcs[1].NumSent()).To(Equal(uint64(0)))

			m.Selector().Set(bitvec.MustParse("10"))
			step()

			Expect(srcs[1].NumSent()).To(Equal(uint64(1)))
			Expect(m.Occupancy()).To(Equal(1))
		})

	It("should combine selected inputs with OR", func() {
		m := MakeBuilder().WithEngine(engine).WithInputs(ins...).
			BuildOneHot("Merge")
		m.Selector().Set(bitvec.MustParse("11"))

		ins[0].Valid().SetBit(true)
		ins[0].Data().SetUint64(0x0f)
		ins[1].Valid().SetBit(true)
		ins[1].Data().SetUint64(0xf0)
		Expect(engine.Settle()).To(Succeed())

		Expect(ins[0].Ready().Bit()).To(BeTrue())
		Expect(ins[1].Ready().Bit()).To(BeTrue())

		step()
		m.OutputBuffer().Output().Ready().SetBit(false)
		Expect(engine.Settle()).To(Succeed())

		Expect(m.Output().Valid().Bit()).To(BeTrue())
		Expect(m.Output().Data().Uint64()).To(Equal(uint64(0xff)))
	})

	It("should pass the valid word alone when AND sees an invalid input",
		func() {
			m := MakeBuilder().WithEngine(engine).WithInputs(ins...).
				WithOp(OpAnd).BuildOneHot("Merge")
			m.Selector().Set(bitvec.MustParse("11"))

			ins[0].Valid().SetBit(true)
			ins[0].Data().SetUint64(0x3c)
			Expect(engine.Settle()).To(Succeed())

			Expect(ins[0].Ready().Bit()).To(BeTrue())
			Expect(m.Selection().Op()).To(Equal(OpAnd))

			step()
			m.OutputBuffer().Output().Ready().SetBit(false)
			Expect(engine.Settle()).To(Succeed())

			Expect(m.Output().Valid().Bit()).To(BeTrue())
			Expect(m.Output().Data().Uint64()).To(Equal(uint64(0x3c)))
		})

	It("should move XOR-combined words from a multi-hot selector", func() {
		srcs := make([]*handshake.Source, 2)
		for k := range ins {
			srcs[k] = handshake.MakeSourceBuilder().WithEngine(engine).
				WithOutput(ins[k]).
				Build(sim.BuildNameWithIndex("", "Src", k))
		}
		srcs[0].SendUint64(0x0c)
		srcs[1].SendUint64(0x0a)

		m := MakeBuilder().WithEngine(engine).WithInputs(ins...).
			WithOp(OpXor).BuildOneHot("Merge")
		m.Selector().Set(bitvec.MustParse("11"))
		sink := handshake.MakeSinkBuilder().WithEngine(engine).
			WithInput(m.Output()).
			Build("Sink")

		for i := 0; i < 50; i++ {
			step()
		}

		Expect(srcs[0].NumSent()).To(Equal(uint64(1)))
		Expect(srcs[1].NumSent()).To(Equal(uint64(1)))
		Expect(sink.ReceivedUint64()).To(Equal([]uint64{0x06}))
	})

	It("should refuse a selector of the wrong width", func() {
		sel := engine.Net().NewWire("Sel", 3)

		Expect(func() {
			MakeBuilder().WithEngine(engine).WithInputs(ins...).
				WithSelector(sel).BuildOneHot("Merge")
		}).To(Panic())
	})
})

var _ = Describe("BoolOp", func() {
	It("should fold values", func() {
		values := []bitvec.Vec{
			bitvec.MustParse("1100"),
			bitvec.MustParse("1010"),
		}

		Expect(OpOr.Fold(4, values).String()).To(Equal("1110"))
		Expect(OpAnd.Fold(4, values).String()).To(Equal("1000"))
		Expect(OpXor.Fold(4, values).String()).To(Equal("0110"))
		Expect(OpOr.Fold(4, nil).IsZero()).To(BeTrue())
	})

	It("should parse names", func() {
		op, err := ParseBoolOp("XOR")
		Expect(err).NotTo(HaveOccurred())
		Expect(op).To(Equal(OpXor))
		Expect(op.String()).To(Equal("xor"))

		_, err = ParseBoolOp("nand")
		Expect(err).To(HaveOccurred())
	})
})
