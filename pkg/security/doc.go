// Package security provides validation, sanitization, and limits for the callinvoker package.
//
// This package includes:
//   - Input validation for foreign class descriptors and native method names
//   - Error message sanitization before errors reach logs or the journal
//   - Clamping functions to enforce safe limits on event buffers
//   - Security-related constants defining maximum sizes
//
// Most users should import the root package github.com/jdziat/callinvoker
// which re-exports these functions.
package security
