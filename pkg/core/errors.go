package core

import (
	"errors"
	"fmt"
)

// Lifetime errors
var (
	ErrInvalidConstructionArgument = errors.New("callinvoker: holder requires a live call invoker")
	ErrHolderDestroyed             = errors.New("callinvoker: holder destroyed")
	ErrReleased                    = errors.New("callinvoker: reference already released")
	ErrInvokerReleased             = errors.New("callinvoker: call invoker reclaimed")
)

// Dispatch errors
var (
	ErrExecutorUnavailable = errors.New("callinvoker: executor unavailable")
	ErrSyncNotSupported    = errors.New("callinvoker: synchronous invocation not supported")
	ErrDeadlock            = errors.New("callinvoker: synchronous invocation from the executor goroutine")
	ErrNilWork             = errors.New("callinvoker: nil work")
	ErrNilExecutor         = errors.New("callinvoker: nil executor")
	ErrExecutorStarted     = errors.New("callinvoker: executor already started")
)

// Bridge errors
var (
	ErrUnknownHandle     = errors.New("callinvoker: unknown holder handle")
	ErrAlreadyRegistered = errors.New("callinvoker: natives already registered")
	ErrInvalidDescriptor = errors.New("callinvoker: invalid class descriptor")
	ErrDescriptorTooLong = errors.New("callinvoker: class descriptor too long")
	ErrInvalidMethodName = errors.New("callinvoker: invalid native method name")
	ErrNilNativeFunction = errors.New("callinvoker: native method has no function")
	ErrNoNativeMethods   = errors.New("callinvoker: no native methods given")
	ErrDuplicateNative   = errors.New("callinvoker: duplicate native method")
)

// WorkPanicError reports a panic recovered while running a work item.
type WorkPanicError struct {
	Value any
}

func (e *WorkPanicError) Error() string {
	return fmt.Sprintf("callinvoker: work panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *WorkPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
