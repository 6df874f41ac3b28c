package invoker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jdziat/callinvoker/pkg/core"
	"github.com/jdziat/callinvoker/pkg/executor"
	intctx "github.com/jdziat/callinvoker/pkg/internal/context"
	"github.com/jdziat/callinvoker/pkg/refcount"
)

// Shared is a reference-counted handle to a call invoker. Every holder of a
// Shared must Release it exactly once.
type Shared = refcount.Ref[core.CallInvoker]

// Invoker dispatches work onto one executor.
// It implements core.SyncCallInvoker; InvokeSync only works when the
// invoker was created with AllowSync.
type Invoker struct {
	id     string
	exec   *executor.Executor
	config Config
	logger *slog.Logger
	self   *refcount.Counted[core.CallInvoker]
}

// New creates an invoker bound to exec and returns the first shared
// reference to it. The invoker is reclaimed when every reference, including
// the keep-alive each queued work item holds, has been released.
func New(exec *executor.Executor, opts ...Option) (*Shared, error) {
	if exec == nil {
		return nil, core.ErrNilExecutor
	}

	var config Config
	for _, opt := range opts {
		opt.ApplyInvoker(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	inv := &Invoker{
		id:     uuid.New().String(),
		exec:   exec,
		config: config,
	}
	inv.logger = config.Logger.With("invoker", inv.id, "executor", exec.Name())

	ref := refcount.New[core.CallInvoker](inv, func(core.CallInvoker) { inv.reclaim() })
	inv.self = ref.Counted()
	return ref, nil
}

// ID returns the unique invoker ID.
func (i *Invoker) ID() string {
	return i.id
}

// Executor returns the executor this invoker dispatches onto.
func (i *Invoker) Executor() *executor.Executor {
	return i.exec
}

// SupportsSync reports whether InvokeSync is enabled.
func (i *Invoker) SupportsSync() bool {
	return i.config.AllowSync
}

// Reclaimed reports whether the last shared reference has been released.
func (i *Invoker) Reclaimed() bool {
	return i.self.Reclaimed()
}

// InvokeAsync enqueues work on the executor and returns immediately.
// It may be called from any goroutine, including the executor's own.
// Returns core.ErrExecutorUnavailable once the executor has shut down.
func (i *Invoker) InvokeAsync(ctx context.Context, work core.Work) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return i.submit(ctx, work, nil)
}

// InvokeSync runs work on the executor and blocks until it has run,
// returning the work's error. A panic inside work is returned as
// *core.WorkPanicError. If ctx ends first, ctx.Err() is returned and the
// work still runs later.
//
// Work already running on this executor must pass its own ctx; it then
// gets core.ErrDeadlock instead of blocking forever. A nil ctx is treated
// as context.Background().
func (i *Invoker) InvokeSync(ctx context.Context, work core.Work) error {
	if !i.config.AllowSync {
		return core.ErrSyncNotSupported
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if intctx.OnExecutor(ctx, i.exec.ID()) {
		return core.ErrDeadlock
	}

	done := make(chan error, 1)
	if err := i.submit(ctx, work, func(err error) { done <- err }); err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Invoker) submit(ctx context.Context, work core.Work, onDone func(error)) error {
	if work == nil {
		return core.ErrNilWork
	}

	keepAlive, err := i.self.Acquire()
	if err != nil {
		return core.ErrInvokerReleased
	}

	t := &executor.Task{
		InvokerID: i.id,
		Submitter: intctx.Submitter(ctx),
		Work:      work,
		Done:      onDone,
		Release:   func() { keepAlive.Release() },
	}
	if err := i.exec.Submit(t); err != nil {
		keepAlive.Release()
		return err
	}
	return nil
}

func (i *Invoker) reclaim() {
	i.logger.Debug("call invoker reclaimed")
	i.exec.Emit(&core.InvokerReclaimed{
		ExecutorID: i.exec.ID(),
		InvokerID:  i.id,
		Timestamp:  time.Now(),
	})
	for _, fn := range i.config.OnReclaim {
		fn(i.id)
	}
}

// Call runs fn synchronously on inv's executor and returns its result.
// inv must implement core.SyncCallInvoker with synchronous dispatch enabled.
func Call[T any](ctx context.Context, inv core.CallInvoker, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	s, ok := inv.(core.SyncCallInvoker)
	if !ok {
		return zero, core.ErrSyncNotSupported
	}

	var result T
	err := s.InvokeSync(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		return zero, err
	}
	return result, nil
}

// WithSubmitter labels work submitted with the returned context. The label
// shows up in executor events and the dispatch journal.
func WithSubmitter(ctx context.Context, name string) context.Context {
	return intctx.WithSubmitter(ctx, name)
}
