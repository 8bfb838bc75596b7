package dispatch

import "time"

// Config groups the executor tunables. Zero values fall back to the
// defaults applied in New, so Config{} is usable out of the box.
type Config struct {
	Shards         int
	QueueSize      int
	EnqueueTimeout time.Duration

	// ErrorHandler is called synchronously after a job fails for good:
	// either its error was irrecoverable or the retry budget ran out.
	// Leave nil if you do not care.
	ErrorHandler func(error)

	MaxAttempts int
	BaseBackoff time.Duration
	MaxInterval time.Duration
}

func (c *Config) applyDefaults() {
	if c.Shards <= 0 {
		c.Shards = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 128
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = 100 * time.Millisecond
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 8
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 20 * time.Second
	}
}
