package arbitration

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/elastic/bitvec"
	"github.com/sarchlab/elastic/sim"
)

type decisionRecorder struct {
	decisions []Decision
}

func (r *decisionRecorder) Func(ctx sim.HookCtx) {
	if ctx.Pos == HookPosGrant {
		r.decisions = append(r.decisions, ctx.Item.(Decision))
	}
}

var _ = Describe("Arbiter", func() {
	var engine *sim.SerialEngine

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
	})

	step := func() {
		_, err := engine.Step()
		Expect(err).NotTo(HaveOccurred())
	}

	It("should drive the grant wire", func() {
		a := MakeBuilder().WithEngine(engine).WithNumRequesters(4).
			WithPolicy(NewRoundRobinPolicy(RotateOnGrant)).Build("Arb")
		rec := &decisionRecorder{}
		a.AcceptHook(rec)

		a.Requests().Set(bitvec.MustParse("1111"))

		grants := []string{}
		for i := 0; i < 4; i++ {
			Expect(engine.Settle()).To(Succeed())
			grants = append(grants, a.Grant().Get().String())
			step()
		}

		Expect(grants).To(Equal([]string{"0001", "0010", "0100", "1000"}))
		Expect(rec.decisions).To(HaveLen(4))
		Expect(rec.decisions[2].Cycle).To(Equal(sim.VTimeInCycle(2)))
		Expect(rec.decisions[2].Grant.String()).To(Equal("0100"))
		Expect(engine.Net().Wire("Arb.Grant")).To(BeIdenticalTo(a.Grant()))
	})

	It("should apply the requests mask", func() {
		mask := engine.Net().NewWire("Mask", 4)
		mask.Set(bitvec.MustParse("1100"))
		a := MakeBuilder().WithEngine(engine).WithNumRequesters(4).
			WithMask(mask).Build("Arb")

		a.Requests().Set(bitvec.MustParse("0110"))
		Expect(engine.Settle()).To(Succeed())

		Expect(a.Grant().Get().String()).To(Equal("0100"))
	})

	It("should reset on clear", func() {
		clear := engine.Net().NewBit("Clear")
		a := MakeBuilder().WithEngine(engine).WithNumRequesters(4).
			WithPolicy(NewRoundRobinPolicy(RotateOnGrant)).
			WithClear(clear).Build("Arb")
		a.Requests().Set(bitvec.MustParse("1111"))

		step()
		step()
		clear.SetBit(true)
		step()
		clear.SetBit(false)
		Expect(engine.Settle()).To(Succeed())

		Expect(a.Grant().Get().String()).To(Equal("0001"))
	})

	It("should report no progress without requests", func() {
		a := MakeBuilder().WithEngine(engine).WithNumRequesters(2).Build("Arb")

		Expect(engine.Settle()).To(Succeed())
		Expect(a.Tick()).To(BeFalse())
	})

	It("should refuse bad wiring", func() {
		Expect(func() {
			MakeBuilder().WithEngine(engine).Build("Arb")
		}).To(Panic())

		mask := engine.Net().NewWire("Mask", 3)
		Expect(func() {
			MakeBuilder().WithEngine(engine).WithNumRequesters(4).
				WithMask(mask).Build("Arb")
		}).To(Panic())
	})
})
