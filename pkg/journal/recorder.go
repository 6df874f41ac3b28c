package journal

import (
	"context"
	"log/slog"

	"github.com/jdziat/callinvoker/pkg/core"
	"github.com/jdziat/callinvoker/pkg/security"
)

// Recorder writes terminal work events to a Store.
type Recorder struct {
	store  Store
	retry  RetryConfig
	logger *slog.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRetry overrides the retry policy for store writes.
func WithRetry(cfg RetryConfig) RecorderOption {
	return func(r *Recorder) {
		r.retry = cfg
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = l
	}
}

// NewRecorder creates a recorder writing to store.
func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		retry:  DefaultRetryConfig(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run records events from ch until the executor reports it stopped, ch is
// closed, or ctx ends. ch is usually a channel from Executor.Events and the
// caller owns the subscription. Events dropped by a full subscriber buffer
// are not journaled.
func (r *Recorder) Run(ctx context.Context, ch <-chan core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, open := <-ch:
			if !open {
				return nil
			}
			if _, ok := ev.(*core.ExecutorStopped); ok {
				return nil
			}
			if err := r.Record(ctx, ev); err != nil {
				r.logger.Error("failed to journal work outcome", "error", err)
			}
		}
	}
}

// Record journals a single event. Events that are not a work outcome are
// ignored.
func (r *Recorder) Record(ctx context.Context, ev core.Event) error {
	e := EntryFromEvent(ev)
	if e == nil {
		return nil
	}
	return retryWithBackoff(ctx, r.retry, func(ctx context.Context) error {
		return r.store.Append(ctx, e)
	})
}

// EntryFromEvent converts a work outcome event into an entry.
// It returns nil for any other event.
func EntryFromEvent(ev core.Event) *Entry {
	switch ev := ev.(type) {
	case *core.WorkCompleted:
		return &Entry{
			ExecutorID: ev.ExecutorID,
			InvokerID:  ev.InvokerID,
			Seq:        ev.Seq,
			Submitter:  security.SanitizeSubmitter(ev.Submitter),
			Status:     StatusCompleted,
			EnqueuedAt: ev.EnqueuedAt,
			DurationMs: ev.Duration.Milliseconds(),
		}
	case *core.WorkFailed:
		e := &Entry{
			ExecutorID: ev.ExecutorID,
			InvokerID:  ev.InvokerID,
			Seq:        ev.Seq,
			Submitter:  security.SanitizeSubmitter(ev.Submitter),
			Status:     StatusFailed,
			EnqueuedAt: ev.EnqueuedAt,
			DurationMs: ev.Duration.Milliseconds(),
		}
		if ev.Error != nil {
			e.Error = security.SanitizeErrorMessage(ev.Error.Error())
		}
		return e
	case *core.WorkDiscarded:
		return &Entry{
			ExecutorID: ev.ExecutorID,
			InvokerID:  ev.InvokerID,
			Seq:        ev.Seq,
			Submitter:  security.SanitizeSubmitter(ev.Submitter),
			Status:     StatusDiscarded,
			Error:      core.ErrExecutorUnavailable.Error(),
			EnqueuedAt: ev.EnqueuedAt,
		}
	}
	return nil
}
