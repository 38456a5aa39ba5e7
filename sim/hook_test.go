package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		base     *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		base = NewHookableBase()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke hooks in the order they were attached", func() {
		first := NewMockHook(mockCtrl)
		second := NewMockHook(mockCtrl)
		ctx := HookCtx{Domain: base, Pos: HookPosAfterTick, Item: VTimeInCycle(3)}

		gomock.InOrder(
			first.EXPECT().Func(ctx),
			second.EXPECT().Func(ctx),
		)

		base.AcceptHook(first)
		base.AcceptHook(second)
		base.InvokeHook(ctx)

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(Equal([]Hook{first, second}))
	})

	It("should panic when a hook is attached twice", func() {
		hook := NewMockHook(mockCtrl)
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should accept hook functions", func() {
		calls := 0
		f := HookFunc(func(HookCtx) { calls++ })

		base.AcceptHook(f)
		base.AcceptHook(f)
		base.InvokeHook(HookCtx{Pos: HookPosBeforeTick})

		Expect(calls).To(Equal(2))
	})
})
