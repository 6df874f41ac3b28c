// Package refcount provides shared ownership of a value with an exactly-once
// reclaim callback when the last owner lets go.
package refcount

import (
	"sync"
	"sync/atomic"

	"github.com/jdziat/callinvoker/pkg/core"
)

// Counted is a value shared by any number of Refs.
// Once the count reaches zero it never comes back.
type Counted[T any] struct {
	value     T
	refs      atomic.Int64
	reclaim   func(T)
	reclaimed sync.Once
}

// New wraps value and returns the first owning Ref.
// reclaim may be nil; when set it runs exactly once, on the goroutine that
// releases the last Ref.
func New[T any](value T, reclaim func(T)) *Ref[T] {
	c := &Counted[T]{value: value, reclaim: reclaim}
	c.refs.Store(1)
	return &Ref[T]{c: c}
}

// Acquire adds an owner. It fails with core.ErrReleased once the count has
// dropped to zero.
func (c *Counted[T]) Acquire() (*Ref[T], error) {
	for {
		n := c.refs.Load()
		if n <= 0 {
			return nil, core.ErrReleased
		}
		if c.refs.CompareAndSwap(n, n+1) {
			return &Ref[T]{c: c}, nil
		}
	}
}

// Count reports the current number of owners.
func (c *Counted[T]) Count() int64 {
	return c.refs.Load()
}

// Reclaimed reports whether the last owner has released.
func (c *Counted[T]) Reclaimed() bool {
	return c.refs.Load() <= 0
}

func (c *Counted[T]) release() bool {
	if c.refs.Add(-1) != 0 {
		return false
	}
	c.reclaimed.Do(func() {
		if c.reclaim != nil {
			c.reclaim(c.value)
		}
	})
	return true
}

// Ref is one owner's share of a Counted value. A Ref is released at most
// once; further Release calls are no-ops.
type Ref[T any] struct {
	c        *Counted[T]
	released atomic.Bool
}

// Get returns the shared value. The value stays usable for as long as this
// Ref has not been released.
func (r *Ref[T]) Get() T {
	return r.c.value
}

// Clone returns a new independent owner of the same value.
func (r *Ref[T]) Clone() (*Ref[T], error) {
	if r == nil || r.released.Load() {
		return nil, core.ErrReleased
	}
	return r.c.Acquire()
}

// Release gives up this owner's share. It returns true when this call
// released the last owner and triggered reclaim.
func (r *Ref[T]) Release() bool {
	if r == nil || !r.released.CompareAndSwap(false, true) {
		return false
	}
	return r.c.release()
}

// Released reports whether this Ref has been released.
func (r *Ref[T]) Released() bool {
	return r.released.Load()
}

// Counted returns the shared counter behind this Ref.
func (r *Ref[T]) Counted() *Counted[T] {
	return r.c
}
