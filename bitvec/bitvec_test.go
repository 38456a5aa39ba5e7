package bitvec

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Vec", func() {
	It("should parse and print most significant bit first", func() {
		v := MustParse("0101_1000")

		Expect(v.Width()).To(Equal(8))
		Expect(v.Uint64()).To(Equal(uint64(0x58)))
		Expect(v.String()).To(Equal("01011000"))
	})

	It("should reject bad literals", func() {
		_, err := Parse("01x1")
		Expect(err).To(HaveOccurred())

		_, err = Parse("__")
		Expect(err).To(HaveOccurred())
	})

	It("should truncate to width", func() {
		v := FromUint64(4, 0xff)

		Expect(v.Uint64()).To(Equal(uint64(0xf)))
		Expect(v.Equal(Ones(4))).To(BeTrue())
	})

	It("should panic on zero width", func() {
		Expect(func() { New(0) }).To(Panic())
	})

	It("should panic when widths differ", func() {
		Expect(func() { New(3).And(New(4)) }).To(Panic())
	})

	It("should negate in two's complement", func() {
		Expect(FromUint64(8, 1).Neg().Uint64()).To(Equal(uint64(0xff)))
		Expect(FromUint64(8, 0).Neg().IsZero()).To(BeTrue())
		Expect(FromUint64(8, 0x58).Neg().Uint64()).To(Equal(uint64(0xa8)))
	})

	It("should borrow across words", func() {
		v := OneHot(130, 64)

		d := v.Dec()

		Expect(d.OnesCount()).To(Equal(64))
		Expect(d.Bit(63)).To(BeTrue())
		Expect(d.Bit(64)).To(BeFalse())
	})

	It("should set and clear bits without touching the original", func() {
		v := New(5)

		w := v.WithBit(3, true)

		Expect(v.IsZero()).To(BeTrue())
		Expect(w.String()).To(Equal("01000"))
		Expect(w.WithBit(3, false).IsZero()).To(BeTrue())
	})

	It("should slice", func() {
		v := MustParse("1100_1010")

		Expect(v.Slice(4, 4).String()).To(Equal("1100"))
		Expect(v.Slice(0, 4).String()).To(Equal("1010"))
		Expect(func() { v.Slice(6, 4) }).To(Panic())
	})

	It("should round trip through text", func() {
		v := MustParse("10011")

		text, err := v.MarshalText()
		Expect(err).NotTo(HaveOccurred())

		var back Vec
		Expect(back.UnmarshalText(text)).To(Succeed())
		Expect(back.Equal(v)).To(BeTrue())
	})
})

var _ = Describe("Primitives", func() {
	It("should isolate the lowest set bit", func() {
		Expect(IsolateLowest(MustParse("01011000")).String()).
			To(Equal("00001000"))
		Expect(IsolateLowest(MustParse("00000000")).IsZero()).To(BeTrue())
		Expect(IsolateLowest(MustParse("10000000")).String()).
			To(Equal("10000000"))
	})

	It("should isolate the lowest bit of wide vectors", func() {
		v := OneHot(100, 70).Or(OneHot(100, 99))

		Expect(IsolateLowest(v).Equal(OneHot(100, 70))).To(BeTrue())
	})

	It("should build thermometer masks", func() {
		Expect(Thermometer(MustParse("00100")).String()).To(Equal("00111"))
		Expect(Thermometer(MustParse("00001")).String()).To(Equal("00001"))
		Expect(Thermometer(MustParse("10000")).String()).To(Equal("11111"))
		Expect(Thermometer(MustParse("00000")).String()).To(Equal("00000"))
	})

	It("should compute log2 of powers of two", func() {
		idx, ok := Log2(MustParse("0100"))
		Expect(ok).To(BeTrue())
		Expect(idx).To(Equal(2))

		_, ok = Log2(MustParse("0110"))
		Expect(ok).To(BeFalse())

		_, ok = Log2(MustParse("0000"))
		Expect(ok).To(BeFalse())
	})

	It("should concatenate with the first part lowest", func() {
		v := Concat(MustParse("01"), MustParse("110"), MustParse("1"))

		Expect(v.Width()).To(Equal(6))
		Expect(v.String()).To(Equal("111001"))
	})

	It("should find the lowest index", func() {
		Expect(LowestIndex(MustParse("0110"))).To(Equal(1))
		Expect(LowestIndex(New(9))).To(Equal(-1))
	})
})
