package timer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdziat/callinvoker/pkg/core"
	"github.com/jdziat/callinvoker/pkg/executor"
	intctx "github.com/jdziat/callinvoker/pkg/internal/context"
	"github.com/jdziat/callinvoker/pkg/invoker"
	"github.com/jdziat/callinvoker/pkg/refcount"
	"github.com/jdziat/callinvoker/pkg/schedule"
)

var quiet = slog.New(slog.DiscardHandler)

// postRecorder records the submitter label of every posted work item.
type postRecorder struct {
	mu    sync.Mutex
	posts []string
	err   error
}

func (p *postRecorder) InvokeAsync(ctx context.Context, work core.Work) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.posts = append(p.posts, intctx.Submitter(ctx))
	return nil
}

func (p *postRecorder) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.posts...)
}

func nop(context.Context) error { return nil }

func TestNew_ClonesReference(t *testing.T) {
	ref := refcount.New[core.CallInvoker](&postRecorder{}, nil)

	tm, err := New(ref, WithLogger(quiet))
	require.NoError(t, err)
	assert.Equal(t, int64(2), ref.Counted().Count())

	tm.Stop()
	tm.Stop()
	assert.Equal(t, int64(1), ref.Counted().Count())
}

func TestNew_InvalidReference(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, core.ErrInvalidConstructionArgument)

	ref := refcount.New[core.CallInvoker](&postRecorder{}, nil)
	ref.Release()
	_, err = New(ref)
	assert.ErrorIs(t, err, core.ErrReleased)
}

func TestSchedule_RejectsNil(t *testing.T) {
	ref := refcount.New[core.CallInvoker](&postRecorder{}, nil)
	tm, err := New(ref, WithLogger(quiet))
	require.NoError(t, err)
	defer tm.Stop()

	assert.ErrorIs(t, tm.Schedule("a", schedule.Every(time.Second), nil), core.ErrNilWork)
	assert.ErrorIs(t, tm.Schedule("a", nil, nop), core.ErrNilWork)
	assert.Empty(t, tm.Names())
}

func TestFire_PostsDueEntriesOnly(t *testing.T) {
	rec := &postRecorder{}
	ref := refcount.New[core.CallInvoker](rec, nil)
	tm, err := New(ref, WithLogger(quiet))
	require.NoError(t, err)
	defer tm.Stop()

	require.NoError(t, tm.Schedule("fast", schedule.Every(time.Minute), nop))
	require.NoError(t, tm.Schedule("slow", schedule.Every(time.Hour), nop))
	assert.Equal(t, []string{"fast", "slow"}, tm.Names())

	now := time.Now()
	tm.fire(context.Background(), now)
	assert.Empty(t, rec.snapshot())

	tm.fire(context.Background(), now.Add(2*time.Minute))
	assert.Equal(t, []string{"timer:fast"}, rec.snapshot())

	// Missed runs collapse into a single post.
	tm.fire(context.Background(), now.Add(2*time.Hour))
	assert.Equal(t, []string{"timer:fast", "timer:fast", "timer:slow"}, rec.snapshot())
}

func TestFire_PostFailureKeepsSchedule(t *testing.T) {
	rec := &postRecorder{err: core.ErrExecutorUnavailable}
	ref := refcount.New[core.CallInvoker](rec, nil)
	tm, err := New(ref, WithLogger(quiet))
	require.NoError(t, err)
	defer tm.Stop()

	require.NoError(t, tm.Schedule("a", schedule.Every(time.Minute), nop))
	now := time.Now()
	tm.fire(context.Background(), now.Add(2*time.Minute))

	rec.mu.Lock()
	rec.err = nil
	rec.mu.Unlock()

	tm.fire(context.Background(), now.Add(4*time.Minute))
	assert.Equal(t, []string{"timer:a"}, rec.snapshot())
}

func TestFire_AfterStopPostsNothing(t *testing.T) {
	rec := &postRecorder{}
	ref := refcount.New[core.CallInvoker](rec, nil)
	tm, err := New(ref, WithLogger(quiet))
	require.NoError(t, err)

	require.NoError(t, tm.Schedule("a", schedule.Every(time.Minute), nop))
	tm.Stop()
	tm.fire(context.Background(), time.Now().Add(time.Hour))

	assert.Empty(t, rec.snapshot())
	assert.ErrorIs(t, tm.Start(context.Background()), core.ErrReleased)
}

func TestTimer_RunsWorkOnExecutor(t *testing.T) {
	exec := executor.New(executor.WithLogger(quiet))
	execCtx, cancelExec := context.WithCancel(context.Background())
	defer cancelExec()
	go func() { _ = exec.Start(execCtx) }()

	var reclaimed atomic.Bool
	ref, err := invoker.New(exec, invoker.WithLogger(quiet), invoker.OnReclaim(func(string) {
		reclaimed.Store(true)
	}))
	require.NoError(t, err)

	tm, err := New(ref, WithTick(5*time.Millisecond), WithLogger(quiet))
	require.NoError(t, err)

	var runs atomic.Int32
	var onExecutor atomic.Bool
	require.NoError(t, tm.Schedule("tick", schedule.Every(10*time.Millisecond), func(ctx context.Context) error {
		onExecutor.Store(intctx.OnExecutor(ctx, exec.ID()))
		runs.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	startErr := make(chan error, 1)
	go func() { startErr <- tm.Start(ctx) }()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 5*time.Second, 5*time.Millisecond)
	assert.True(t, onExecutor.Load())

	tm.Stop()
	require.NoError(t, <-startErr)

	ref.Release()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	require.NoError(t, exec.Shutdown(shutdownCtx))
	assert.True(t, reclaimed.Load())
}

func TestStart_ContextCancel(t *testing.T) {
	ref := refcount.New[core.CallInvoker](&postRecorder{}, nil)
	tm, err := New(ref, WithTick(time.Millisecond), WithLogger(quiet))
	require.NoError(t, err)
	defer tm.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tm.Start(ctx), context.DeadlineExceeded)
}
