package bridge

import (
	"log/slog"
	"sync"

	"github.com/jdziat/callinvoker/pkg/core"
	"github.com/jdziat/callinvoker/pkg/holder"
	"github.com/jdziat/callinvoker/pkg/refcount"
)

// Handle is the opaque identifier handed to the foreign runtime in place of
// a native pointer. Zero is never a valid handle.
type Handle uint64

// Table maps foreign-visible handles to native Holders.
type Table struct {
	mu      sync.RWMutex
	holders map[Handle]*holder.Holder
	nextID  Handle
	logger  *slog.Logger
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithTableLogger sets the logger. Defaults to slog.Default().
func WithTableLogger(l *slog.Logger) TableOption {
	return func(t *Table) {
		t.logger = l
	}
}

// NewTable creates an empty handle table.
func NewTable(opts ...TableOption) *Table {
	t := &Table{
		holders: make(map[Handle]*holder.Holder),
		nextID:  1,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// MakeHolder builds a Holder sharing ref's invoker and returns its handle.
// Called once per foreign object; every call yields a fresh handle. The
// Holder takes its own share, so the caller still releases ref.
func (t *Table) MakeHolder(ref *refcount.Ref[core.CallInvoker]) (Handle, error) {
	h, err := holder.New(ref)
	if err != nil {
		return 0, err
	}

	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.holders[id] = h
	t.mu.Unlock()

	t.logger.Debug("holder created", "handle", uint64(id))
	return id, nil
}

// GetCallInvoker borrows a new shared reference from the holder behind h.
// The caller must Release it.
func (t *Table) GetCallInvoker(h Handle) (*refcount.Ref[core.CallInvoker], error) {
	t.mu.RLock()
	hd, ok := t.holders[h]
	t.mu.RUnlock()

	if !ok {
		return nil, core.ErrUnknownHandle
	}
	return hd.GetCallInvoker()
}

// Finalize destroys the holder behind h and forgets the handle. It is the
// callback the foreign runtime's finalizer invokes. Repeated or unknown
// handles are a no-op and return false.
func (t *Table) Finalize(h Handle) bool {
	t.mu.Lock()
	hd, ok := t.holders[h]
	delete(t.holders, h)
	t.mu.Unlock()

	if !ok {
		return false
	}
	hd.Destroy()
	t.logger.Debug("holder finalized", "handle", uint64(h))
	return true
}

// Len returns the number of live holders.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.holders)
}
