// Package security provides validation, sanitization, and limits for the callinvoker package.
package security

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jdziat/callinvoker/pkg/core"
)

// Security limits and configuration
const (
	// MaxDescriptorLength is the maximum length for foreign class descriptors
	MaxDescriptorLength = 512

	// MaxMethodNameLength is the maximum length for native method names
	MaxMethodNameLength = 255

	// MaxErrorMessageLength is the maximum length for logged and journaled error messages
	MaxErrorMessageLength = 4096

	// MaxSubmitterLength is the maximum length for submitter labels
	MaxSubmitterLength = 128

	// MaxEventBuffer is the hard limit for per-subscriber event buffers
	MaxEventBuffer = 1 << 16
)

// validDescriptor matches class descriptors such as "Lcom/example/Holder;"
var validDescriptor = regexp.MustCompile(`^L[a-zA-Z_$][a-zA-Z0-9_$]*(/[a-zA-Z_$][a-zA-Z0-9_$]*)*;$`)

// validMethodName matches identifiers
var validMethodName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateDescriptor validates a foreign class descriptor
func ValidateDescriptor(descriptor string) error {
	if descriptor == "" {
		return core.ErrInvalidDescriptor
	}
	if len(descriptor) > MaxDescriptorLength {
		return core.ErrDescriptorTooLong
	}
	if !validDescriptor.MatchString(descriptor) {
		return core.ErrInvalidDescriptor
	}
	return nil
}

// ValidateMethodName validates a native method name
func ValidateMethodName(name string) error {
	if name == "" || len(name) > MaxMethodNameLength {
		return core.ErrInvalidMethodName
	}
	if !validMethodName.MatchString(name) {
		return core.ErrInvalidMethodName
	}
	return nil
}

// SanitizeErrorMessage truncates and sanitizes error messages for logs and the journal
func SanitizeErrorMessage(msg string) string {
	return sanitize(msg, MaxErrorMessageLength)
}

// SanitizeSubmitter strips control characters and bounds the length of a submitter label
func SanitizeSubmitter(name string) string {
	return sanitize(name, MaxSubmitterLength)
}

func sanitize(msg string, limit int) string {
	if msg == "" {
		return ""
	}

	// Remove any null bytes or control characters (except newlines)
	var sanitized strings.Builder
	sanitized.Grow(len(msg))

	for _, r := range msg {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			sanitized.WriteRune(r)
		}
	}

	result := sanitized.String()

	// Truncate if too long
	if utf8.RuneCountInString(result) > limit {
		runes := []rune(result)
		result = string(runes[:limit-3]) + "..."
	}

	return result
}

// ClampEventBuffer ensures an event buffer size is within limits
func ClampEventBuffer(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxEventBuffer {
		return MaxEventBuffer
	}
	return n
}
