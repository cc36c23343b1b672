package pipeline

import (
	"time"

	"github.com/Iron-Ham/teamforge/internal/event"
	"github.com/Iron-Ham/teamforge/internal/logging"
)

// Option configures a Pipeline.
type Option func(*pipelineConfig)

// pipelineConfig holds optional settings for the Pipeline.
type pipelineConfig struct {
	bus    *event.Bus
	logger *logging.Logger
	now    func() time.Time
	newID  func() string
}

// WithBus sets the bus that receives run and stage events.
func WithBus(b *event.Bus) Option {
	return func(c *pipelineConfig) {
		c.bus = b
	}
}

// WithLogger sets the logger. Stage summaries are logged at INFO and every
// engine move at DEBUG.
func WithLogger(l *logging.Logger) Option {
	return func(c *pipelineConfig) {
		c.logger = l
	}
}

// WithClock replaces time.Now for timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(c *pipelineConfig) {
		c.now = now
	}
}

// WithRunIDs replaces the run ID generator.
func WithRunIDs(newID func() string) Option {
	return func(c *pipelineConfig) {
		c.newID = newID
	}
}
