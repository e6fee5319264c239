package ratefn

import (
	"sync"
	"time"
)

// Debouncer delays invocations of a function until wait has elapsed since the
// last call, forwarding only the arguments of that last call.
//
// A Debouncer holds at most one pending invocation at any time. All methods
// are safe for concurrent use, and the wrapped function is never called while
// internal locks are held, so it may call back into the Debouncer.
type Debouncer[T any] struct {
	// Configuration
	wait time.Duration
	fn   func(T)
	conf config

	// State
	mux      sync.Mutex
	pending  bool
	args     T
	seq      uint64
	burst    uint64
	timer    Timer
	maxTimer Timer
}

// NewDebouncer creates a new Debouncer for fn with the given wait duration and
// options.
//
// The wait duration is not validated. Zero still defers fn to a later
// scheduling turn, and negative values are handed to the Scheduler as is.
func NewDebouncer[T any](
	wait time.Duration,
	fn func(T),
	opts ...Option,
) *Debouncer[T] {
	return &Debouncer[T]{
		wait: wait,
		fn:   fn,
		conf: newConfig(wait, opts),
	}
}

// Call cancels any pending invocation and schedules a new one with args,
// to run once wait has elapsed without further calls.
func (d *Debouncer[T]) Call(args T) {
	d.mux.Lock()
	defer d.mux.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.seq++
	seq := d.seq
	d.args = args
	d.timer = d.conf.scheduler.AfterFunc(d.wait, func() {
		d.expire(seq, false)
	})

	// Start maxTimer if this call begins a new burst.
	if !d.pending && d.conf.maxWait > 0 {
		d.burst++
		burst := d.burst
		d.maxTimer = d.conf.scheduler.AfterFunc(d.conf.maxWait, func() {
			d.expire(burst, true)
		})
	}

	if d.pending {
		d.conf.logger.Debug().Dur("wait", d.wait).Msg("debounce re-armed")
	} else {
		d.conf.logger.Debug().Dur("wait", d.wait).Msg("debounce armed")
	}
	d.pending = true
}

// Cancel discards any pending invocation. Once Cancel returns, the discarded
// invocation is guaranteed never to run.
func (d *Debouncer[T]) Cancel() {
	d.mux.Lock()
	defer d.mux.Unlock()

	if d.pending {
		d.conf.logger.Debug().Msg("debounce cancelled")
	}
	d.take()
}

// Flush immediately runs the pending invocation, if any, on the calling
// goroutine, and reports whether there was one.
func (d *Debouncer[T]) Flush() bool {
	d.mux.Lock()
	if !d.pending {
		d.mux.Unlock()
		return false
	}
	args := d.take()
	d.mux.Unlock()

	d.conf.logger.Debug().Msg("debounce flushed")
	d.invoke(args)

	return true
}

// Pending reports whether an invocation is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mux.Lock()
	defer d.mux.Unlock()

	return d.pending
}

// expire is called when timer or maxTimer fires. Callbacks belonging to a
// superseded or cancelled schedule are ignored.
func (d *Debouncer[T]) expire(seq uint64, forced bool) {
	d.mux.Lock()
	stale := !d.pending ||
		(forced && seq != d.burst) ||
		(!forced && seq != d.seq)
	if stale {
		d.mux.Unlock()
		return
	}
	args := d.take()
	d.mux.Unlock()

	if forced {
		d.conf.logger.Debug().Dur("max_wait", d.conf.maxWait).Msg("debounce fired")
	} else {
		d.conf.logger.Debug().Dur("wait", d.wait).Msg("debounce fired")
	}
	d.invoke(args)
}

// take stops both timers, clears the pending state and returns the arguments
// of the last call. It should only be called while the mutex is already
// locked.
func (d *Debouncer[T]) take() T {
	args := d.args

	var zero T
	d.args = zero
	d.pending = false
	d.seq++
	d.burst++

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.maxTimer != nil {
		d.maxTimer.Stop()
		d.maxTimer = nil
	}

	return args
}

func (d *Debouncer[T]) invoke(args T) {
	if d.fn != nil {
		d.fn(args)
	}
}
