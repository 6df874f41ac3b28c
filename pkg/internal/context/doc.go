// Package context provides internal context helpers for work dispatch.
//
// This package is internal and should not be imported directly.
// It provides context value types for:
//   - Executor context: the executor a work item is running on, used to
//     detect synchronous self-dispatch
//   - Submitter label: an optional name for the submitting goroutine,
//     carried into events and the dispatch journal
package context
