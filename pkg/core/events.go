package core

import "time"

// Event is the interface for all executor and lifetime events.
type Event interface {
	eventMarker()
}

// WorkStarted is emitted when the executor begins running a work item.
type WorkStarted struct {
	ExecutorID string
	InvokerID  string
	Seq        uint64
	Submitter  string
	Timestamp  time.Time
}

func (*WorkStarted) eventMarker() {}

// WorkCompleted is emitted when a work item returns without error.
type WorkCompleted struct {
	ExecutorID string
	InvokerID  string
	Seq        uint64
	Submitter  string
	EnqueuedAt time.Time
	Duration   time.Duration
	Timestamp  time.Time
}

func (*WorkCompleted) eventMarker() {}

// WorkFailed is emitted when a work item returns an error or panics.
// Processing of later items continues.
type WorkFailed struct {
	ExecutorID string
	InvokerID  string
	Seq        uint64
	Submitter  string
	EnqueuedAt time.Time
	Duration   time.Duration
	Error      error
	Timestamp  time.Time
}

func (*WorkFailed) eventMarker() {}

// WorkDiscarded is emitted for every queued item dropped because the
// executor was torn down before it could run.
type WorkDiscarded struct {
	ExecutorID string
	InvokerID  string
	Seq        uint64
	Submitter  string
	EnqueuedAt time.Time
	Timestamp  time.Time
}

func (*WorkDiscarded) eventMarker() {}

// ExecutorStopped is emitted once when the executor loop exits.
type ExecutorStopped struct {
	ExecutorID string
	Drained    bool
	Timestamp  time.Time
}

func (*ExecutorStopped) eventMarker() {}

// InvokerReclaimed is emitted when the last shared reference to a call
// invoker has been released.
type InvokerReclaimed struct {
	ExecutorID string
	InvokerID  string
	Timestamp  time.Time
}

func (*InvokerReclaimed) eventMarker() {}
