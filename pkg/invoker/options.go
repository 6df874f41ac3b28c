package invoker

import (
	"log/slog"
)

// Option configures an Invoker.
type Option interface {
	ApplyInvoker(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) ApplyInvoker(c *Config) { f(c) }

// Config holds invoker configuration.
type Config struct {
	AllowSync bool
	Logger    *slog.Logger
	OnReclaim []func(id string)
}

// AllowSync enables InvokeSync. Without it InvokeSync returns
// core.ErrSyncNotSupported.
func AllowSync() Option {
	return optionFunc(func(c *Config) {
		c.AllowSync = true
	})
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *Config) {
		c.Logger = l
	})
}

// OnReclaim registers a callback run once, after the last shared reference
// to the invoker has been released.
func OnReclaim(fn func(id string)) Option {
	return optionFunc(func(c *Config) {
		c.OnReclaim = append(c.OnReclaim, fn)
	})
}
