package bridge

import (
	"runtime"
	"sync/atomic"

	"github.com/jdziat/callinvoker/pkg/core"
	"github.com/jdziat/callinvoker/pkg/refcount"
)

// Object is the host-side face of a Holder. When an Object becomes
// unreachable the garbage collector finalizes its Holder at a time of its
// choosing; Close does the same deterministically.
type Object struct {
	handle  Handle
	table   *Table
	closed  atomic.Bool
	cleanup runtime.Cleanup
}

// NewObject creates a Holder for ref in t and ties its finalization to the
// returned Object. The caller keeps ownership of ref.
func NewObject(t *Table, ref *refcount.Ref[core.CallInvoker]) (*Object, error) {
	h, err := t.MakeHolder(ref)
	if err != nil {
		return nil, err
	}

	o := &Object{handle: h, table: t}
	o.cleanup = runtime.AddCleanup(o, func(h Handle) {
		t.Finalize(h)
	}, h)
	return o, nil
}

// Handle returns the handle the foreign side would hold.
func (o *Object) Handle() Handle {
	return o.handle
}

// CallInvoker borrows a new shared reference to the held invoker.
func (o *Object) CallInvoker() (*refcount.Ref[core.CallInvoker], error) {
	if o.closed.Load() {
		return nil, core.ErrHolderDestroyed
	}
	ref, err := o.table.GetCallInvoker(o.handle)
	runtime.KeepAlive(o)
	return ref, err
}

// Close finalizes the Holder now instead of waiting for the collector.
func (o *Object) Close() {
	if !o.closed.CompareAndSwap(false, true) {
		return
	}
	o.cleanup.Stop()
	o.table.Finalize(o.handle)
}
