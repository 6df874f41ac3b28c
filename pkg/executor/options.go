package executor

import (
	"log/slog"

	"github.com/jdziat/callinvoker/pkg/metrics"
	"github.com/jdziat/callinvoker/pkg/security"
)

// Option configures an Executor.
type Option interface {
	ApplyExecutor(*Config)
}

type optionFunc func(*Config)

func (f optionFunc) ApplyExecutor(c *Config) { f(c) }

// Config holds executor configuration.
type Config struct {
	Name        string
	EventBuffer int // per-subscriber buffer for Events()
	Logger      *slog.Logger
	Metrics     *metrics.Executor
}

// WithName sets the executor name used in logs and metrics.
func WithName(name string) Option {
	return optionFunc(func(c *Config) {
		c.Name = name
	})
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *Config) {
		c.Logger = l
	})
}

// WithMetrics records dispatch metrics into m.
func WithMetrics(m *metrics.Executor) Option {
	return optionFunc(func(c *Config) {
		c.Metrics = m
	})
}

// WithEventBuffer sets the buffer size of channels returned by Events().
// Values are clamped to [1, MaxEventBuffer].
func WithEventBuffer(n int) Option {
	return optionFunc(func(c *Config) {
		c.EventBuffer = security.ClampEventBuffer(n)
	})
}
