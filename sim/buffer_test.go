package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("BufferImpl", func() {

	var (
		mockCtrl *gomock.Controller
		buf      Buffer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		buf = NewBuffer("Buf", 2)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should allow push and pop", func() {
		Expect(buf.Capacity()).To(Equal(2))
		Expect(buf.CanPush()).To(BeTrue())

		buf.Push(1)
		Expect(buf.CanPush()).To(BeTrue())
		Expect(buf.Size()).To(Equal(1))

		buf.Push(2)
		Expect(buf.CanPush()).To(BeFalse())
		Expect(buf.Size()).To(Equal(2))
		Expect(func() {
			buf.Push(3)
		}).To(Panic())

		Expect(buf.Peek()).To(Equal(1))
		Expect(buf.Pop()).To(Equal(1))
		Expect(buf.Size()).To(Equal(1))
		Expect(buf.Peek()).To(Equal(2))
		Expect(buf.Pop()).To(Equal(2))
		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
		Expect(buf.Pop()).To(BeNil())
	})

	It("should clear", func() {
		buf.Push(2)
		Expect(buf.Size()).To(Equal(1))

		buf.Clear()

		Expect(buf.Size()).To(Equal(0))
		Expect(buf.Peek()).To(BeNil())
	})

	It("should report pushes and pops to hooks", func() {
		hook := NewMockHook(mockCtrl)
		buf.AcceptHook(hook)

		gomock.InOrder(
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosBufPush))
				Expect(ctx.Item).To(Equal(7))
			}),
			hook.EXPECT().Func(gomock.Any()).Do(func(ctx HookCtx) {
				Expect(ctx.Pos).To(BeIdenticalTo(HookPosBufPop))
				Expect(ctx.Item).To(Equal(7))
			}),
		)

		buf.Push(7)
		buf.Pop()
	})

	It("should reject non-positive capacity", func() {
		Expect(func() { NewBuffer("Bad", 0) }).To(Panic())
	})
})
