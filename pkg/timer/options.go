// Package timer posts recurring work onto a call invoker.
package timer

import (
	"log/slog"
	"time"
)

// Option configures a Timer.
type Option interface {
	ApplyTimer(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) ApplyTimer(c *Config) { f(c) }

// Config holds timer configuration.
type Config struct {
	Tick   time.Duration // how often due entries are checked
	Logger *slog.Logger
}

// WithTick sets how often the timer checks for due work. Defaults to 100ms.
func WithTick(d time.Duration) Option {
	return optionFunc(func(c *Config) {
		if d > 0 {
			c.Tick = d
		}
	})
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *Config) {
		c.Logger = l
	})
}
