package holder

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdziat/callinvoker/pkg/core"
	"github.com/jdziat/callinvoker/pkg/refcount"
)

// recordingInvoker runs work inline and counts calls.
type recordingInvoker struct {
	calls atomic.Int32
}

func (r *recordingInvoker) InvokeAsync(ctx context.Context, work core.Work) error {
	r.calls.Add(1)
	return work(ctx)
}

func newRef(reclaims *atomic.Int32) (*refcount.Ref[core.CallInvoker], *recordingInvoker) {
	inv := &recordingInvoker{}
	return refcount.New[core.CallInvoker](inv, func(core.CallInvoker) {
		if reclaims != nil {
			reclaims.Add(1)
		}
	}), inv
}

func TestNew_RejectsInvalidArgument(t *testing.T) {
	t.Run("nil ref", func(t *testing.T) {
		h, err := New(nil)
		assert.ErrorIs(t, err, core.ErrInvalidConstructionArgument)
		assert.Nil(t, h)
	})

	t.Run("released ref", func(t *testing.T) {
		ref, _ := newRef(nil)
		ref.Release()

		h, err := New(ref)
		assert.ErrorIs(t, err, core.ErrInvalidConstructionArgument)
		assert.Nil(t, h)
	})

	t.Run("nil invoker", func(t *testing.T) {
		ref := refcount.New[core.CallInvoker](nil, nil)

		h, err := New(ref)
		assert.ErrorIs(t, err, core.ErrInvalidConstructionArgument)
		assert.Nil(t, h)
		assert.False(t, ref.Released(), "a refused ref stays with the caller")
		assert.Equal(t, int64(1), ref.Counted().Count())
	})
}

// newHolder builds a Holder and drops the caller's reference, leaving the
// Holder as the only owner.
func newHolder(t *testing.T, reclaims *atomic.Int32) (*Holder, *refcount.Counted[core.CallInvoker], *recordingInvoker) {
	t.Helper()
	ref, inv := newRef(reclaims)
	h, err := New(ref)
	require.NoError(t, err)
	ref.Release()
	return h, ref.Counted(), inv
}

func TestNew_SharesOwnership(t *testing.T) {
	ref, _ := newRef(nil)

	h, err := New(ref)
	require.NoError(t, err)

	assert.Equal(t, StateLive, h.State())
	assert.Equal(t, int64(2), ref.Counted().Count())
	assert.False(t, ref.Released())
}

func TestNew_CallerReleaseKeepsHolderUsable(t *testing.T) {
	var reclaims atomic.Int32
	ref, inv := newRef(&reclaims)
	h, err := New(ref)
	require.NoError(t, err)

	assert.False(t, ref.Release())
	assert.Equal(t, int32(0), reclaims.Load())
	assert.Equal(t, StateLive, h.State())

	borrowed, err := h.GetCallInvoker()
	require.NoError(t, err)
	assert.NoError(t, borrowed.Get().InvokeAsync(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, int32(1), inv.calls.Load())
	borrowed.Release()

	assert.Equal(t, int32(0), reclaims.Load())
	assert.True(t, h.Destroy())
	assert.Equal(t, int32(1), reclaims.Load())
}

func TestNew_HolderReleaseKeepsCallerRef(t *testing.T) {
	var reclaims atomic.Int32
	ref, inv := newRef(&reclaims)
	h, err := New(ref)
	require.NoError(t, err)

	assert.True(t, h.Destroy())
	assert.Equal(t, int32(0), reclaims.Load())
	assert.NoError(t, ref.Get().InvokeAsync(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, int32(1), inv.calls.Load())

	assert.True(t, ref.Release())
	assert.Equal(t, int32(1), reclaims.Load())
}

func TestGetCallInvoker_ReturnsIndependentRefs(t *testing.T) {
	h, counted, inv := newHolder(t, nil)

	a, err := h.GetCallInvoker()
	require.NoError(t, err)
	b, err := h.GetCallInvoker()
	require.NoError(t, err)

	assert.Equal(t, int64(3), counted.Count())
	assert.Same(t, inv, a.Get())
	assert.Same(t, inv, b.Get())

	a.Release()
	assert.NoError(t, b.Get().InvokeAsync(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, int32(1), inv.calls.Load())
	b.Release()
	assert.Equal(t, int64(1), counted.Count())
}

func TestGetCallInvoker_ConcurrentBorrowers(t *testing.T) {
	var reclaims atomic.Int32
	h, counted, _ := newHolder(t, &reclaims)

	const n = 64
	borrowed := make([]*refcount.Ref[core.CallInvoker], n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := h.GetCallInvoker()
			if assert.NoError(t, err) {
				borrowed[i] = r
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int64(n+1), counted.Count())

	// Releasing any subset leaves the rest usable.
	for i := 0; i < n/2; i++ {
		borrowed[i].Release()
	}
	for i := n / 2; i < n; i++ {
		assert.NoError(t, borrowed[i].Get().InvokeAsync(context.Background(), func(context.Context) error { return nil }))
	}

	h.Destroy()
	assert.Equal(t, int32(0), reclaims.Load())
	for i := n / 2; i < n; i++ {
		borrowed[i].Release()
	}
	assert.Equal(t, int32(1), reclaims.Load())
}

func TestDestroy_BorrowedRefsOutliveHolder(t *testing.T) {
	var reclaims atomic.Int32
	h, _, inv := newHolder(t, &reclaims)

	refs := make(chan *refcount.Ref[core.CallInvoker], 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := h.GetCallInvoker()
			if assert.NoError(t, err) {
				refs <- r
			}
		}()
	}
	wg.Wait()
	close(refs)

	assert.True(t, h.Destroy())
	assert.Equal(t, StateDestroyed, h.State())

	for r := range refs {
		assert.NotNil(t, r.Get())
		assert.NoError(t, r.Get().InvokeAsync(context.Background(), func(context.Context) error { return nil }))
		assert.Equal(t, int32(0), reclaims.Load())
		r.Release()
	}
	assert.Equal(t, int32(2), inv.calls.Load())
	assert.Equal(t, int32(1), reclaims.Load())
}

func TestDestroy_Idempotent(t *testing.T) {
	var reclaims atomic.Int32
	h, _, _ := newHolder(t, &reclaims)

	assert.True(t, h.Destroy())
	assert.False(t, h.Destroy())
	assert.Equal(t, int32(1), reclaims.Load())

	r, err := h.GetCallInvoker()
	assert.ErrorIs(t, err, core.ErrHolderDestroyed)
	assert.Nil(t, r)
}

func TestGetCallInvoker_RacingDestroy(t *testing.T) {
	for round := 0; round < 50; round++ {
		var reclaims atomic.Int32
		h, _, _ := newHolder(t, &reclaims)

		var wg sync.WaitGroup
		var got atomic.Int32
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r, err := h.GetCallInvoker()
				if err != nil {
					assert.ErrorIs(t, err, core.ErrHolderDestroyed)
					return
				}
				got.Add(1)
				assert.NotNil(t, r.Get())
				r.Release()
			}()
		}
		h.Destroy()
		wg.Wait()

		assert.Equal(t, int32(1), reclaims.Load(), "round %d borrowed %d", round, got.Load())
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "live", StateLive.String())
	assert.Equal(t, "destroyed", StateDestroyed.String())
	assert.Equal(t, "unknown", State(9).String())
}
