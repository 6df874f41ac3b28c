// Package callinvoker dispatches work from any goroutine onto a single
// executor goroutine and manages the shared lifetime of the invokers that
// do the dispatching.
//
// This is the main package users should import. It re-exports the public
// types from the pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	// Create an executor and run it on its own goroutine
//	exec := callinvoker.NewExecutor(callinvoker.WithName("js"))
//	go exec.Start(ctx)
//
//	// Create an invoker bound to it
//	ref, _ := callinvoker.NewInvoker(exec)
//	defer ref.Release()
//
//	// Post work from anywhere
//	ref.Get().InvokeAsync(ctx, func(ctx context.Context) error {
//	    return render()
//	})
//
//	// Hand the invoker to a foreign object through a holder
//	table := callinvoker.NewTable()
//	handle, _ := table.MakeHolder(ref)
package callinvoker

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/jdziat/callinvoker/pkg/bridge"
	"github.com/jdziat/callinvoker/pkg/core"
	"github.com/jdziat/callinvoker/pkg/executor"
	"github.com/jdziat/callinvoker/pkg/holder"
	"github.com/jdziat/callinvoker/pkg/invoker"
	"github.com/jdziat/callinvoker/pkg/journal"
	"github.com/jdziat/callinvoker/pkg/metrics"
	"github.com/jdziat/callinvoker/pkg/schedule"
	"github.com/jdziat/callinvoker/pkg/security"
	"github.com/jdziat/callinvoker/pkg/timer"
)

type (
	// Work is a unit of work run on an executor.
	Work = core.Work

	// CallInvoker posts work onto an executor without waiting for it.
	CallInvoker = core.CallInvoker

	// SyncCallInvoker can also run work and wait for the outcome.
	SyncCallInvoker = core.SyncCallInvoker

	// Shared is a reference-counted handle to a CallInvoker.
	Shared = invoker.Shared

	// Invoker is the CallInvoker implementation bound to one Executor.
	Invoker = invoker.Invoker

	// InvokerOption configures an Invoker.
	InvokerOption = invoker.Option

	// Executor runs submitted work one item at a time on one goroutine.
	Executor = executor.Executor

	// ExecutorOption configures an Executor.
	ExecutorOption = executor.Option

	// Holder keeps one shared reference to a CallInvoker on behalf of a
	// foreign object.
	Holder = holder.Holder

	// HolderState is the lifecycle state of a Holder.
	HolderState = holder.State

	// Handle identifies a Holder to the foreign runtime.
	Handle = bridge.Handle

	// Table maps handles to holders.
	Table = bridge.Table

	// Registry holds native methods per foreign class descriptor.
	Registry = bridge.Registry

	// NativeMethod describes one native entry point.
	NativeMethod = bridge.NativeMethod

	// Object finalizes its holder when garbage collected.
	Object = bridge.Object

	// Timer posts recurring work onto a CallInvoker.
	Timer = timer.Timer

	// TimerOption configures a Timer.
	TimerOption = timer.Option

	// Schedule computes when recurring work runs next.
	Schedule = schedule.Schedule

	// Metrics holds the Prometheus collectors for executor dispatch.
	Metrics = metrics.Executor

	// JournalEntry is one journaled work outcome.
	JournalEntry = journal.Entry

	// JournalStore is where journal entries are kept.
	JournalStore = journal.Store

	// GormJournalStore implements JournalStore using GORM.
	GormJournalStore = journal.GormStore

	// Recorder journals executor events.
	Recorder = journal.Recorder

	// Event is the interface for all executor and lifetime events.
	Event = core.Event

	// WorkStarted is emitted when the executor begins running a work item.
	WorkStarted = core.WorkStarted

	// WorkCompleted is emitted when a work item returns without error.
	WorkCompleted = core.WorkCompleted

	// WorkFailed is emitted when a work item returns an error or panics.
	WorkFailed = core.WorkFailed

	// WorkDiscarded is emitted for queued work dropped at teardown.
	WorkDiscarded = core.WorkDiscarded

	// ExecutorStopped is emitted once when the executor loop exits.
	ExecutorStopped = core.ExecutorStopped

	// InvokerReclaimed is emitted when a CallInvoker's last reference is released.
	InvokerReclaimed = core.InvokerReclaimed

	// WorkPanicError reports a panic recovered while running work.
	WorkPanicError = core.WorkPanicError
)

// Holder states
const (
	HolderLive      = holder.StateLive
	HolderDestroyed = holder.StateDestroyed
)

// Journal statuses
const (
	JournalCompleted = journal.StatusCompleted
	JournalFailed    = journal.StatusFailed
	JournalDiscarded = journal.StatusDiscarded
)

// HolderDescriptor is the foreign class the holder natives are bound to.
const HolderDescriptor = bridge.HolderDescriptor

// Security limits
const (
	MaxDescriptorLength   = security.MaxDescriptorLength
	MaxMethodNameLength   = security.MaxMethodNameLength
	MaxErrorMessageLength = security.MaxErrorMessageLength
	MaxEventBuffer        = security.MaxEventBuffer
)

// Error variables
var (
	ErrInvalidConstructionArgument = core.ErrInvalidConstructionArgument
	ErrHolderDestroyed             = core.ErrHolderDestroyed
	ErrReleased                    = core.ErrReleased
	ErrInvokerReleased             = core.ErrInvokerReleased
	ErrExecutorUnavailable         = core.ErrExecutorUnavailable
	ErrSyncNotSupported            = core.ErrSyncNotSupported
	ErrDeadlock                    = core.ErrDeadlock
	ErrNilWork                     = core.ErrNilWork
	ErrNilExecutor                 = core.ErrNilExecutor
	ErrExecutorStarted             = core.ErrExecutorStarted
	ErrUnknownHandle               = core.ErrUnknownHandle
	ErrAlreadyRegistered           = core.ErrAlreadyRegistered
)

// NewExecutor creates an executor. Run it with Start on the goroutine that
// should execute work.
func NewExecutor(opts ...ExecutorOption) *Executor {
	return executor.New(opts...)
}

// NewInvoker creates an invoker bound to exec and returns its first shared
// reference.
func NewInvoker(exec *Executor, opts ...InvokerOption) (*Shared, error) {
	return invoker.New(exec, opts...)
}

// NewHolder creates a holder owning ref.
func NewHolder(ref *Shared) (*Holder, error) {
	return holder.New(ref)
}

// NewTable creates an empty handle table.
func NewTable(opts ...bridge.TableOption) *Table {
	return bridge.NewTable(opts...)
}

// NewRegistry creates an empty native method registry.
func NewRegistry() *Registry {
	return bridge.NewRegistry()
}

// DefaultRegistry returns the process-wide native method registry.
func DefaultRegistry() *Registry {
	return bridge.DefaultRegistry()
}

// RegisterHolderNatives installs the holder natives into r, backed by t.
func RegisterHolderNatives(r *Registry, t *Table) error {
	return bridge.RegisterHolderNatives(r, t)
}

// NewObject creates a holder for ref whose finalization follows the
// returned Object's collection.
func NewObject(t *Table, ref *Shared) (*Object, error) {
	return bridge.NewObject(t, ref)
}

// NewTimer creates a timer holding its own share of ref.
func NewTimer(ref *Shared, opts ...TimerOption) (*Timer, error) {
	return timer.New(ref, opts...)
}

// NewMetrics creates dispatch collectors under namespace.
func NewMetrics(namespace string) *Metrics {
	return metrics.New(namespace)
}

// NewJournalStore creates a GORM-backed journal store.
func NewJournalStore(db *gorm.DB) *GormJournalStore {
	return journal.NewGormStore(db)
}

// NewRecorder creates a recorder writing executor events to store.
func NewRecorder(store JournalStore, opts ...journal.RecorderOption) *Recorder {
	return journal.NewRecorder(store, opts...)
}

// Call runs fn synchronously on inv's executor and returns its result.
func Call[T any](ctx context.Context, inv CallInvoker, fn func(ctx context.Context) (T, error)) (T, error) {
	return invoker.Call[T](ctx, inv, fn)
}

// WithSubmitter labels work submitted with the returned context.
func WithSubmitter(ctx context.Context, name string) context.Context {
	return invoker.WithSubmitter(ctx, name)
}

// ExecutorIDFromContext returns the ID of the executor running the current
// work, or "" outside executor-run work.
func ExecutorIDFromContext(ctx context.Context) string {
	return executor.IDFromContext(ctx)
}

// Executor option functions

// WithName sets the executor name used in logs and metrics.
func WithName(name string) ExecutorOption {
	return executor.WithName(name)
}

// WithLogger sets the executor logger.
func WithLogger(l *slog.Logger) ExecutorOption {
	return executor.WithLogger(l)
}

// WithMetrics records executor dispatch metrics into m.
func WithMetrics(m *Metrics) ExecutorOption {
	return executor.WithMetrics(m)
}

// WithEventBuffer sets the per-subscriber event buffer size.
func WithEventBuffer(n int) ExecutorOption {
	return executor.WithEventBuffer(n)
}

// Invoker option functions

// AllowSync enables InvokeSync on the invoker.
func AllowSync() InvokerOption {
	return invoker.AllowSync()
}

// OnReclaim registers a callback run once the invoker is reclaimed.
func OnReclaim(fn func(id string)) InvokerOption {
	return invoker.OnReclaim(fn)
}

// Timer option functions

// WithTimerTick sets how often a timer checks for due work.
func WithTimerTick(d time.Duration) TimerOption {
	return timer.WithTick(d)
}

// Schedule functions

// Every creates a schedule that runs at fixed intervals.
func Every(d time.Duration) Schedule {
	return schedule.Every(d)
}

// Daily creates a schedule that runs at a specific UTC time each day.
func Daily(hour, minute int) Schedule {
	return schedule.Daily(hour, minute)
}

// Weekly creates a schedule that runs at a specific UTC day and time each week.
func Weekly(day time.Weekday, hour, minute int) Schedule {
	return schedule.Weekly(day, hour, minute)
}

// Cron creates a schedule from a cron expression.
func Cron(expr string) (Schedule, error) {
	return schedule.Cron(expr)
}

// MustCron is like Cron but panics on an invalid expression.
func MustCron(expr string) Schedule {
	return schedule.MustCron(expr)
}
