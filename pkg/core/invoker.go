package core

import "context"

// Work is a unit of deferred work run on an executor goroutine.
// The context passed in identifies the executor; it is not cancelled when
// the submitter's context ends.
type Work func(ctx context.Context) error

// CallInvoker schedules work onto a single designated executor from any
// goroutine. Implementations must be safe for concurrent use.
type CallInvoker interface {
	// InvokeAsync enqueues work and returns without waiting for it to run.
	// Work submitted from one goroutine runs in submission order.
	InvokeAsync(ctx context.Context, work Work) error
}

// SyncCallInvoker is a CallInvoker that can also block the caller until the
// work has run on the executor.
type SyncCallInvoker interface {
	CallInvoker

	// InvokeSync runs work on the executor and returns its error.
	// It fails with ErrSyncNotSupported when the invoker forbids synchronous
	// dispatch. Work running on the executor that passes its own ctx gets
	// ErrDeadlock; a ctx not derived from the work's ctx cannot be
	// recognized and blocks forever when used from the executor.
	InvokeSync(ctx context.Context, work Work) error
}
