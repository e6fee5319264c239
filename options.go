package ratefn

import (
	"time"

	"github.com/rs/zerolog"
)

// Option configures a debounced or throttled function.
type Option func(*config)

// WithScheduler returns an option that sets the timer primitive used to defer
// invocations and reopen gates. The default is System.
//
// Passing an *eventloop.Loop gives single-threaded semantics: all deferred
// work runs on the loop goroutine, one callback at a time.
func WithScheduler(s Scheduler) Option {
	return func(c *config) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithLogger returns an option that traces arming, cancelling, firing and
// dropping of calls at debug level. By default nothing is logged.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMaxWait returns an option that will cause a debounced function to be
// invoked at most maxWait after the first call of a burst, even if calls keep
// arriving within the wait duration.
//
// Without a max wait, the debounced function might never be invoked if it is
// called repeatedly within the wait duration. A maxWait that is not greater
// than wait is ignored.
//
// Throttled functions ignore this option.
func WithMaxWait(maxWait time.Duration) Option {
	return func(c *config) {
		c.maxWait = maxWait
	}
}
