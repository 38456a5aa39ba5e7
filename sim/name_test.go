package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse hierarchical names", func() {
		tokens := ParseName("Merge.In[2].Valid")

		Expect(tokens).To(HaveLen(3))
		Expect(tokens[0].ElemName).To(Equal("Merge"))
		Expect(tokens[1].ElemName).To(Equal("In"))
		Expect(tokens[1].Index).To(Equal([]int{2}))
		Expect(tokens[2].Index).To(BeEmpty())
	})

	It("should parse multi-dimensional indices", func() {
		tokens := ParseName("Mesh[1][3]")

		Expect(tokens[0].Index).To(Equal([]int{1, 3}))
	})

	DescribeTable("invalid names",
		func(name string) {
			Expect(func() { NameMustBeValid(name) }).To(Panic())
		},
		Entry("lower case", "join"),
		Entry("empty element", "Join..In"),
		Entry("underscore", "Join_In"),
		Entry("dash", "Join-In"),
		Entry("unmatched bracket", "In[1"),
		Entry("non integer index", "In[x]"),
	)

	It("should accept valid names", func() {
		Expect(func() { NameMustBeValid("Fork.Out[0].Buf") }).NotTo(Panic())
	})

	It("should build names", func() {
		Expect(BuildName("", "Join")).To(Equal("Join"))
		Expect(BuildName("Join", "Out")).To(Equal("Join.Out"))
		Expect(BuildNameWithIndex("Join", "In", 0)).To(Equal("Join.In[0]"))
	})
})
