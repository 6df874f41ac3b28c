// Package executor provides the Executor type, the designated goroutine that
// runs all dispatched work.
//
// This package includes:
//   - Executor: a single consumer draining a FIFO queue of Tasks
//   - Option: configuration for name, logger, metrics and event buffering
//   - Shutdown with drain, and discard of queued work on context teardown
//   - Panic isolation so one failing Task never halts the ones behind it
//
// Most users should import the root package github.com/jdziat/callinvoker
// and create call invokers on top of an Executor.
package executor
