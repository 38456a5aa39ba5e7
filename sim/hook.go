package sim

import "log"

// A HookPos names a place in the simulation where hooks fire.
type HookPos struct {
	Name string
}

// HookCtx describes one firing of a hook.
type HookCtx struct {
	// Domain is the object that fires the hook.
	Domain Hookable

	// Pos tells where the hook fires.
	Pos *HookPos

	// Item is what the hook is about, such as a transfer, a grant or the
	// current cycle. Each HookPos documents its item type.
	Item any

	// Detail is optional extra data.
	Detail any
}

// A Hook observes a Hookable.
type Hook interface {
	Func(ctx HookCtx)
}

// HookFunc turns a function into a Hook. HookFuncs cannot be compared, so
// the same function can be attached more than once.
type HookFunc func(ctx HookCtx)

// Func calls f.
func (f HookFunc) Func(ctx HookCtx) {
	f(ctx)
}

// Hookable is an object that hooks can observe.
//
// Hooks are attached while the circuit is elaborated. Attaching a hook while
// the engine runs is not supported.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
	InvokeHook(ctx HookCtx)
}

// NamedHookable is a Hookable with a name.
type NamedHookable interface {
	Named
	Hookable
}

// HookableBase keeps a list of hooks. Embed it to implement Hookable. Hook
// sites that build an expensive HookCtx should check NumHooks first.
type HookableBase struct {
	hooks []Hook
}

// NewHookableBase creates a HookableBase without hooks.
func NewHookableBase() *HookableBase {
	return &HookableBase{}
}

// AcceptHook attaches a hook. Attaching the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	if _, isFunc := hook.(HookFunc); !isFunc {
		for _, existing := range h.hooks {
			if existing == hook {
				log.Panicf("hook %T attached twice", hook)
			}
		}
	}

	h.hooks = append(h.hooks, hook)
}

// NumHooks returns the number of attached hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns the attached hooks in the order they were attached.
func (h *HookableBase) Hooks() []Hook {
	return h.hooks
}

// InvokeHook calls every attached hook in order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
