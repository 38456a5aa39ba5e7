package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		var f = 1 * GHz
		Expect(f.Period()).To(BeNumerically("==", 1e-9))
	})

	It("should panic on zero frequency", func() {
		var f Freq
		Expect(func() { f.Period() }).To(Panic())
	})

	It("should convert cycles to seconds", func() {
		var f = 500 * MHz
		Expect(f.Seconds(10)).To(BeNumerically("~", 2e-8, 1e-15))
	})

	It("should convert seconds to whole cycles", func() {
		var f = 1 * GHz
		Expect(f.Cycles(3e-9)).To(Equal(VTimeInCycle(3)))
		Expect(f.Cycles(3.5e-9)).To(Equal(VTimeInCycle(3)))
	})

	It("should scale per-cycle rates", func() {
		var f = 2 * GHz
		Expect(f.Rate(0.5)).To(BeNumerically("~", 1e9, 1))
	})
})
