package arbitration

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/elastic/bitvec"
)

func cycle(p Policy, requests string) string {
	req := bitvec.MustParse(requests)
	mask := bitvec.Ones(req.Width())
	grant := p.Grant(req, mask)
	p.Update(req, mask, grant)

	return grant.String()
}

var _ = Describe("PriorityPolicy", func() {
	var p *PriorityPolicy

	BeforeEach(func() {
		p = NewPriorityPolicy()
	})

	It("should grant the lowest requester", func() {
		Expect(cycle(p, "01011000")).To(Equal("00001000"))
		Expect(cycle(p, "10000000")).To(Equal("10000000"))
	})

	It("should grant nothing without requests", func() {
		Expect(cycle(p, "00000000")).To(Equal("00000000"))
	})

	It("should respect the mask", func() {
		grant := p.Grant(bitvec.MustParse("0111"), bitvec.MustParse("0110"))

		Expect(grant.String()).To(Equal("0010"))
	})
})

var _ = Describe("RoundRobinPolicy", func() {
	It("should rotate on every grant", func() {
		p := NewRoundRobinPolicy(RotateOnGrant)

		grants := []string{}
		for i := 0; i < 5; i++ {
			grants = append(grants, cycle(p, "1111"))
		}

		Expect(grants).To(Equal([]string{
			"0001", "0010", "0100", "1000", "0001",
		}))
	})

	It("should hold the grant while the winner keeps requesting", func() {
		p := NewRoundRobinPolicy(HoldUntilRelease)

		Expect(cycle(p, "1111")).To(Equal("0001"))
		Expect(cycle(p, "1111")).To(Equal("0001"))
		Expect(p.State()).To(Equal(Active))
	})

	It("should rotate when winners release", func() {
		p := NewRoundRobinPolicy(HoldUntilRelease)

		Expect(cycle(p, "1111")).To(Equal("0001"))
		Expect(cycle(p, "1110")).To(Equal("0010"))
		Expect(cycle(p, "1101")).To(Equal("0100"))
		Expect(cycle(p, "1011")).To(Equal("1000"))
		Expect(cycle(p, "0111")).To(Equal("0001"))
	})

	It("should not hold across an idle cycle", func() {
		p := NewRoundRobinPolicy(HoldUntilRelease)

		Expect(cycle(p, "0010")).To(Equal("0010"))
		Expect(cycle(p, "0000")).To(Equal("0000"))
		Expect(p.State()).To(Equal(Idle))
		Expect(p.State().String()).To(Equal("IDLE"))
		Expect(cycle(p, "0011")).To(Equal("0001"))
	})

	It("should hold without an idle cycle", func() {
		p := NewRoundRobinPolicy(HoldUntilRelease)

		Expect(cycle(p, "0010")).To(Equal("0010"))
		Expect(cycle(p, "0011")).To(Equal("0010"))
	})

	It("should keep the last grant across idle cycles", func() {
		p := NewRoundRobinPolicy(HoldUntilRelease)

		Expect(cycle(p, "0001")).To(Equal("0001"))
		Expect(cycle(p, "0000")).To(Equal("0000"))
		Expect(cycle(p, "0000")).To(Equal("0000"))
		Expect(p.LastGrant().String()).To(Equal("0001"))
		Expect(cycle(p, "0011")).To(Equal("0010"))
	})

	It("should stay active while every request is masked out", func() {
		p := NewRoundRobinPolicy(RotateOnGrant)
		req := bitvec.MustParse("0011")
		mask := bitvec.MustParse("0010")

		grant := p.Grant(req, mask)
		p.Update(req, mask, grant)

		Expect(grant.String()).To(Equal("0010"))

		p.Update(req, bitvec.New(4), bitvec.New(4))
		Expect(p.State()).To(Equal(Active))
		Expect(p.LastGrant().String()).To(Equal("0010"))
	})

	It("should return to the highest priority on reset", func() {
		p := NewRoundRobinPolicy(RotateOnGrant)

		Expect(cycle(p, "1111")).To(Equal("0001"))
		Expect(cycle(p, "1111")).To(Equal("0010"))

		p.Reset()

		Expect(cycle(p, "1111")).To(Equal("0001"))
	})

	It("should always grant at most one eligible requester", func() {
		p := NewRoundRobinPolicy(HoldUntilRelease)
		seq := []string{"1011", "0110", "0000", "1111", "1000", "0101", "0011"}

		for _, s := range seq {
			req := bitvec.MustParse(s)
			grant := bitvec.MustParse(cycle(p, s))

			Expect(grant.OnesCount()).To(BeNumerically("<=", 1))
			Expect(grant.And(req).Equal(grant)).To(BeTrue())
			Expect(grant.IsZero()).To(Equal(req.IsZero()))
		}
	})
})

var _ = Describe("ParsePolicy", func() {
	It("should create policies by name", func() {
		p, err := ParsePolicy("priority")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&PriorityPolicy{}))

		p, err = ParsePolicy("Round-Robin-Rotate")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.(*RoundRobinPolicy).mode).To(Equal(RotateOnGrant))

		_, err = ParsePolicy("lottery")
		Expect(err).To(HaveOccurred())
	})
})
