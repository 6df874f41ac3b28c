// Package invoker provides Invoker, the CallInvoker bound to an executor.
//
// An Invoker is only ever reachable through a Shared reference. Each queued
// work item holds its own keep-alive reference, so the invoker is never
// reclaimed while work it submitted is still waiting to run.
//
// Most users should import the root package github.com/jdziat/callinvoker
// instead of this package directly.
package invoker
