package timer

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/jdziat/callinvoker/pkg/core"
	intctx "github.com/jdziat/callinvoker/pkg/internal/context"
	"github.com/jdziat/callinvoker/pkg/refcount"
	"github.com/jdziat/callinvoker/pkg/schedule"
)

// Timer posts work onto a call invoker whenever its schedule comes due.
// It co-owns the invoker until Stop.
type Timer struct {
	ref    *refcount.Ref[core.CallInvoker]
	config Config
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry

	stopping chan struct{}
	stopOnce sync.Once
}

type entry struct {
	name     string
	schedule schedule.Schedule
	work     core.Work
	next     time.Time
}

// New creates a timer holding its own share of ref. The caller keeps its
// reference and must still release it.
func New(ref *refcount.Ref[core.CallInvoker], opts ...Option) (*Timer, error) {
	if ref == nil {
		return nil, core.ErrInvalidConstructionArgument
	}
	own, err := ref.Clone()
	if err != nil {
		return nil, err
	}

	config := Config{Tick: 100 * time.Millisecond}
	for _, opt := range opts {
		opt.ApplyTimer(&config)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Timer{
		ref:      own,
		config:   config,
		logger:   config.Logger,
		entries:  make(map[string]*entry),
		stopping: make(chan struct{}),
	}, nil
}

// Schedule registers work under name, replacing any entry with that name.
// The first run is the schedule's next time after now.
func (t *Timer) Schedule(name string, sched schedule.Schedule, work core.Work) error {
	if work == nil || sched == nil {
		return core.ErrNilWork
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[name] = &entry{
		name:     name,
		schedule: sched,
		work:     work,
		next:     sched.Next(time.Now()),
	}
	return nil
}

// Names returns the registered entry names in sorted order.
func (t *Timer) Names() []string {
	t.mu.Lock()
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	t.mu.Unlock()

	sort.Strings(names)
	return names
}

// Start checks for due work until ctx is cancelled or Stop is called.
// Due work is posted with InvokeAsync and labelled with the entry name.
func (t *Timer) Start(ctx context.Context) error {
	select {
	case <-t.stopping:
		return core.ErrReleased
	default:
	}

	ticker := time.NewTicker(t.config.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.stopping:
			return nil
		case now := <-ticker.C:
			t.fire(ctx, now)
		}
	}
}

// Stop ends Start and releases the timer's share of the invoker.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopping)
		t.ref.Release()
	})
}

func (t *Timer) fire(ctx context.Context, now time.Time) {
	if t.ref.Released() {
		return
	}
	inv := t.ref.Get()

	for _, e := range t.due(now) {
		err := inv.InvokeAsync(intctx.WithSubmitter(ctx, "timer:"+e.name), e.work)
		if err != nil {
			t.logger.Error("failed to post scheduled work", "name", e.name, "error", err)
		}
	}
}

// due returns the entries whose run time has passed and advances them.
// Missed runs collapse into one.
func (t *Timer) due(now time.Time) []*entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*entry
	for _, e := range t.entries {
		if now.Before(e.next) {
			continue
		}
		out = append(out, e)
		e.next = e.schedule.Next(now)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
