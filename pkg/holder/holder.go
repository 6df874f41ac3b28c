// Package holder provides Holder, the lifetime wrapper that lets a foreign
// runtime own a share of a call invoker.
//
// A Holder takes its own shared reference at construction and keeps it until
// Destroy; the caller's reference stays the caller's to release. Destroy is
// normally driven by the foreign runtime's finalizer, at a time this package
// does not control. References handed out by GetCallInvoker stay valid after
// that until their owners release them.
package holder

import (
	"sync/atomic"

	"github.com/jdziat/callinvoker/pkg/core"
	"github.com/jdziat/callinvoker/pkg/refcount"
)

// State is the lifecycle state of a Holder.
type State int32

const (
	StateLive State = iota
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Holder owns one shared reference to a call invoker.
type Holder struct {
	ref atomic.Pointer[refcount.Ref[core.CallInvoker]]
}

// New creates a Holder sharing ownership of ref's invoker. The Holder
// clones ref, so the caller still owns ref and must Release it. It fails
// with core.ErrInvalidConstructionArgument if ref is nil, already released,
// or wraps a nil invoker.
func New(ref *refcount.Ref[core.CallInvoker]) (*Holder, error) {
	if ref == nil || ref.Get() == nil {
		return nil, core.ErrInvalidConstructionArgument
	}
	own, err := ref.Clone()
	if err != nil {
		return nil, core.ErrInvalidConstructionArgument
	}
	h := &Holder{}
	h.ref.Store(own)
	return h, nil
}

// GetCallInvoker returns a new shared reference to the held invoker. The
// caller owns it and must Release it. Safe for concurrent use, including
// against a concurrent Destroy: the caller either gets a usable reference
// or core.ErrHolderDestroyed.
func (h *Holder) GetCallInvoker() (*refcount.Ref[core.CallInvoker], error) {
	ref := h.ref.Load()
	if ref == nil {
		return nil, core.ErrHolderDestroyed
	}
	borrowed, err := ref.Clone()
	if err != nil {
		return nil, core.ErrHolderDestroyed
	}
	return borrowed, nil
}

// Destroy moves the Holder to StateDestroyed and releases its share.
// It returns false if the Holder was already destroyed.
func (h *Holder) Destroy() bool {
	ref := h.ref.Swap(nil)
	if ref == nil {
		return false
	}
	ref.Release()
	return true
}

// State reports the current lifecycle state.
func (h *Holder) State() State {
	if h.ref.Load() == nil {
		return StateDestroyed
	}
	return StateLive
}
