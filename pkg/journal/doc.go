// Package journal persists the outcome of every dispatched work item.
//
// This package includes:
//   - Entry: the GORM model for one journaled outcome
//   - Store interface and GormStore implementation
//   - Pool configuration for the underlying *sql.DB
//   - Recorder: turns executor events into journal entries, retrying
//     transient store failures with exponential backoff
//
// Most users should import the root package github.com/jdziat/callinvoker
// instead of this package directly.
package journal
