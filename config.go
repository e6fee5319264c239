package ratefn

import (
	"time"

	"github.com/rs/zerolog"
)

type config struct {
	scheduler Scheduler
	logger    zerolog.Logger
	maxWait   time.Duration
}

func newConfig(wait time.Duration, opts []Option) config {
	c := config{
		scheduler: System,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&c)
	}

	// If maxWait is not greater than wait, disable maxWait.
	if c.maxWait <= wait {
		c.maxWait = 0
	}

	return c
}
