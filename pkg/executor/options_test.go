package executor

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdziat/callinvoker/pkg/metrics"
	"github.com/jdziat/callinvoker/pkg/security"
)

func TestNew_Defaults(t *testing.T) {
	e := New()

	assert.Equal(t, "js", e.Name())
	assert.Equal(t, 100, e.config.EventBuffer)
	assert.NotNil(t, e.config.Logger)
	assert.Nil(t, e.config.Metrics)
	assert.NotEmpty(t, e.ID())
}

func TestNew_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, New().ID(), New().ID())
}

func TestWithName(t *testing.T) {
	config := Config{}

	WithName("native").ApplyExecutor(&config)

	assert.Equal(t, "native", config.Name)
}

func TestWithLogger(t *testing.T) {
	config := Config{}
	l := slog.New(slog.DiscardHandler)

	WithLogger(l).ApplyExecutor(&config)

	assert.Same(t, l, config.Logger)
}

func TestWithMetrics(t *testing.T) {
	config := Config{}
	m := metrics.New("test")

	WithMetrics(m).ApplyExecutor(&config)

	assert.Same(t, m, config.Metrics)
}

func TestWithEventBuffer_Clamped(t *testing.T) {
	config := Config{}

	WithEventBuffer(0).ApplyExecutor(&config)
	assert.Equal(t, 1, config.EventBuffer)

	WithEventBuffer(security.MaxEventBuffer * 2).ApplyExecutor(&config)
	assert.Equal(t, security.MaxEventBuffer, config.EventBuffer)

	WithEventBuffer(64).ApplyExecutor(&config)
	assert.Equal(t, 64, config.EventBuffer)
}
