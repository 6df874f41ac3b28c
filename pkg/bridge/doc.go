// Package bridge connects call invoker holders to a foreign runtime.
//
// This package includes:
//   - Table: maps opaque Handles, the only thing the foreign side sees, to
//     native Holders (construction, accessor and finalization entry points)
//   - Registry: the process-wide table of native method descriptors the
//     foreign runtime binds to
//   - Object: a host-side handle whose collection by the Go garbage
//     collector finalizes the Holder behind it
//
// Most users should import the root package github.com/jdziat/callinvoker
// instead of this package directly.
package bridge
