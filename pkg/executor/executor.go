package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jdziat/callinvoker/pkg/core"
	intctx "github.com/jdziat/callinvoker/pkg/internal/context"
	"github.com/jdziat/callinvoker/pkg/metrics"
	"github.com/jdziat/callinvoker/pkg/security"
)

// Task is one queued unit of work.
type Task struct {
	InvokerID string
	Submitter string
	Work      core.Work

	// Done, when set, receives the outcome: nil, the work's error, or
	// core.ErrExecutorUnavailable if the task was discarded.
	Done func(error)

	// Release, when set, runs once after the task ran or was discarded.
	Release func()

	seq        uint64
	enqueuedAt time.Time
}

// Seq returns the position assigned at submission. Zero until submitted.
func (t *Task) Seq() uint64 {
	return t.seq
}

func (t *Task) finish(err error) {
	if t.Done != nil {
		t.Done(err)
	}
	if t.Release != nil {
		t.Release()
	}
}

// Executor runs submitted tasks one at a time, in submission order, on the
// goroutine that called Start.
type Executor struct {
	id     string
	config Config
	logger *slog.Logger

	mu       sync.Mutex
	queue    []*Task
	seq      uint64
	started  bool
	closed   bool
	signal   chan struct{}
	stopping chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	subsMu    sync.RWMutex
	eventSubs []chan core.Event
}

// New creates an executor. It does not run anything until Start is called;
// tasks submitted before then wait in the queue.
func New(opts ...Option) *Executor {
	config := Config{
		Name:        "js",
		EventBuffer: 100,
	}

	for _, opt := range opts {
		opt.ApplyExecutor(&config)
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	id := uuid.New().String()
	return &Executor{
		id:       id,
		config:   config,
		logger:   config.Logger.With("executor", config.Name),
		signal:   make(chan struct{}, 1),
		stopping: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// ID returns the unique executor ID.
func (e *Executor) ID() string {
	return e.id
}

// Name returns the configured executor name.
func (e *Executor) Name() string {
	return e.config.Name
}

// Done is closed once the executor has stopped for good.
func (e *Executor) Done() <-chan struct{} {
	return e.done
}

// Pending returns the number of queued tasks not yet started.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Accepting reports whether Submit would currently accept a task.
func (e *Executor) Accepting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.closed
}

// Submit appends a task to the queue. It never blocks on task execution.
// After Shutdown, or after the Start context ended, it returns
// core.ErrExecutorUnavailable and leaves the queue untouched.
func (e *Executor) Submit(t *Task) error {
	if t == nil || t.Work == nil {
		return core.ErrNilWork
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.config.Metrics.IncRejected(e.config.Name)
		return core.ErrExecutorUnavailable
	}
	e.seq++
	t.seq = e.seq
	t.enqueuedAt = time.Now()
	e.queue = append(e.queue, t)
	e.config.Metrics.SetQueueDepth(e.config.Name, len(e.queue))
	e.mu.Unlock()

	select {
	case e.signal <- struct{}{}:
	default:
	}
	return nil
}

// Start runs the executor loop on the calling goroutine. Blocks until
// Shutdown has drained the queue (returns nil) or ctx is cancelled (returns
// ctx.Err() after discarding whatever was still queued).
func (e *Executor) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		select {
		case <-e.done:
			return core.ErrExecutorUnavailable
		default:
			return core.ErrExecutorStarted
		}
	}
	e.started = true
	e.mu.Unlock()

	e.logger.Debug("executor started", "executor_id", e.id)

	for {
		if ctx.Err() != nil {
			e.teardown()
			return ctx.Err()
		}

		if t := e.next(); t != nil {
			e.run(ctx, t)
			continue
		}

		select {
		case <-ctx.Done():
			e.teardown()
			return ctx.Err()
		case <-e.stopping:
			if e.Pending() > 0 {
				continue
			}
			e.stop(true)
			return nil
		case <-e.signal:
		}
	}
}

// Shutdown stops accepting tasks and waits until every task already queued
// has run. Called before Start, it waits for Start to drain the queue.
// Called from work running on this executor it does not wait.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.stopping)
	}
	e.mu.Unlock()

	if intctx.OnExecutor(ctx, e.id) {
		return nil
	}

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Executor) next() *Task {
	e.mu.Lock()
	if len(e.queue) == 0 {
		e.mu.Unlock()
		return nil
	}
	t := e.queue[0]
	e.queue[0] = nil
	e.queue = e.queue[1:]
	e.config.Metrics.SetQueueDepth(e.config.Name, len(e.queue))
	e.mu.Unlock()

	return t
}

func (e *Executor) run(ctx context.Context, t *Task) {
	startTime := time.Now()

	e.Emit(&core.WorkStarted{
		ExecutorID: e.id,
		InvokerID:  t.InvokerID,
		Seq:        t.seq,
		Submitter:  t.Submitter,
		Timestamp:  startTime,
	})

	workCtx := intctx.WithExecutorContext(ctx, &intctx.ExecutorContext{
		ExecutorID: e.id,
		InvokerID:  t.InvokerID,
		Seq:        t.seq,
	})

	err := e.execute(workCtx, t)
	duration := time.Since(startTime)

	if err != nil {
		e.logger.Warn("work failed",
			"seq", t.seq,
			"invoker", t.InvokerID,
			"submitter", security.SanitizeSubmitter(t.Submitter),
			"error", security.SanitizeErrorMessage(err.Error()),
		)
		e.config.Metrics.ObserveDispatch(e.config.Name, metrics.StatusFailed, duration)
		e.Emit(&core.WorkFailed{
			ExecutorID: e.id,
			InvokerID:  t.InvokerID,
			Seq:        t.seq,
			Submitter:  t.Submitter,
			EnqueuedAt: t.enqueuedAt,
			Duration:   duration,
			Error:      err,
			Timestamp:  time.Now(),
		})
	} else {
		e.config.Metrics.ObserveDispatch(e.config.Name, metrics.StatusCompleted, duration)
		e.Emit(&core.WorkCompleted{
			ExecutorID: e.id,
			InvokerID:  t.InvokerID,
			Seq:        t.seq,
			Submitter:  t.Submitter,
			EnqueuedAt: t.enqueuedAt,
			Duration:   duration,
			Timestamp:  time.Now(),
		})
	}

	t.finish(err)
}

func (e *Executor) execute(ctx context.Context, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("work panicked", "seq", t.seq, "panic", fmt.Sprint(r))
			err = &core.WorkPanicError{Value: r}
		}
	}()

	return t.Work(ctx)
}

// teardown closes the queue after the Start context ended and discards
// whatever had not run yet.
func (e *Executor) teardown() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.stopping)
	}
	orphaned := e.queue
	e.queue = nil
	e.config.Metrics.SetQueueDepth(e.config.Name, 0)
	e.mu.Unlock()

	e.discard(orphaned)
	e.stop(false)
}

func (e *Executor) discard(tasks []*Task) {
	if len(tasks) == 0 {
		return
	}
	e.logger.Warn("discarding queued work", "count", len(tasks))

	for _, t := range tasks {
		e.config.Metrics.ObserveDispatch(e.config.Name, metrics.StatusDiscarded, 0)
		e.Emit(&core.WorkDiscarded{
			ExecutorID: e.id,
			InvokerID:  t.InvokerID,
			Seq:        t.seq,
			Submitter:  t.Submitter,
			EnqueuedAt: t.enqueuedAt,
			Timestamp:  time.Now(),
		})
		t.finish(core.ErrExecutorUnavailable)
	}
}

func (e *Executor) stop(drained bool) {
	e.stopOnce.Do(func() {
		e.logger.Info("executor stopped", "drained", drained)
		e.Emit(&core.ExecutorStopped{ExecutorID: e.id, Drained: drained, Timestamp: time.Now()})
		close(e.done)
	})
}

// Events subscribes to lifecycle events of queued work. The channel has
// WithEventBuffer capacity; Emit never waits on it, so a subscriber that
// falls behind loses events rather than stalling the run loop. Pair every
// call with Unsubscribe.
func (e *Executor) Events() <-chan core.Event {
	ch := make(chan core.Event, e.config.EventBuffer)
	e.subsMu.Lock()
	e.eventSubs = append(e.eventSubs, ch)
	e.subsMu.Unlock()
	return ch
}

// Unsubscribe detaches ch. It is never closed by the executor, and no
// event is delivered to it once Unsubscribe returns.
func (e *Executor) Unsubscribe(ch <-chan core.Event) {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	for i, sub := range e.eventSubs {
		if sub == ch {
			e.eventSubs = append(e.eventSubs[:i], e.eventSubs[i+1:]...)
			return
		}
	}
}

// Emit delivers ev to every subscriber whose buffer has room and drops it
// for the rest. A journal Recorder fed from a full channel therefore misses
// those events; size WithEventBuffer for the expected burst.
func (e *Executor) Emit(ev core.Event) {
	e.subsMu.RLock()
	// Snapshot so sends happen without holding subsMu.
	subs := make([]chan core.Event, len(e.eventSubs))
	copy(subs, e.eventSubs)
	e.subsMu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			e.logger.Debug("event dropped", "event", fmt.Sprintf("%T", ev), "executor_id", e.id)
		}
	}
}

// IDFromContext returns the ID of the executor running the work that owns
// ctx, or "" when ctx does not belong to executor-run work.
func IDFromContext(ctx context.Context) string {
	if ec := intctx.GetExecutorContext(ctx); ec != nil {
		return ec.ExecutorID
	}
	return ""
}
