// Package core provides the fundamental types and interfaces for the callinvoker package.
//
// This package contains:
//   - Work, the unit of deferred work dispatched onto an executor
//   - CallInvoker and SyncCallInvoker, the dispatch contracts
//   - Event types for executor and lifetime monitoring
//   - Error types for dispatch and lifetime failures
//
// Most users should import the root package github.com/jdziat/callinvoker
// instead of this package directly.
package core
