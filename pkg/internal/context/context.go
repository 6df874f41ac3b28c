// Package context provides context helpers for the callinvoker package.
package context

import (
	"context"
)

// ExecutorContextKey is the key for storing executor context in context.Context.
type ExecutorContextKey struct{}

// ExecutorContext describes the work item currently running on an executor.
type ExecutorContext struct {
	ExecutorID string
	InvokerID  string
	Seq        uint64
}

// GetExecutorContext retrieves the executor context from a context.Context.
func GetExecutorContext(ctx context.Context) *ExecutorContext {
	if ctx == nil {
		return nil
	}
	if ec, ok := ctx.Value(ExecutorContextKey{}).(*ExecutorContext); ok {
		return ec
	}
	return nil
}

// WithExecutorContext adds executor context to a context.Context.
func WithExecutorContext(ctx context.Context, ec *ExecutorContext) context.Context {
	return context.WithValue(ctx, ExecutorContextKey{}, ec)
}

// OnExecutor reports whether ctx belongs to work running on the given executor.
func OnExecutor(ctx context.Context, executorID string) bool {
	ec := GetExecutorContext(ctx)
	return ec != nil && ec.ExecutorID == executorID
}

// SubmitterKey is the key for storing the submitter label in context.Context.
type SubmitterKey struct{}

// WithSubmitter labels work submitted with ctx.
func WithSubmitter(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, SubmitterKey{}, name)
}

// Submitter returns the submitter label, or "" when none was set.
func Submitter(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(SubmitterKey{}).(string); ok {
		return s
	}
	return ""
}
