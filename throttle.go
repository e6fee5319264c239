package ratefn

import (
	"sync"
	"time"
)

// Throttler limits invocations of a function to at most one per wait
// interval.
//
// The first call of a burst runs the function immediately, on the calling
// goroutine, and closes the gate. While the gate is closed calls are dropped;
// they are neither queued nor replayed when the gate reopens after wait.
//
// All methods are safe for concurrent use.
type Throttler[T any] struct {
	// Configuration
	wait time.Duration
	fn   func(T)
	conf config

	// State
	mux    sync.Mutex
	closed bool
	seq    uint64
	timer  Timer
}

// NewThrottler creates a new Throttler for fn with the given wait interval
// and options. WithMaxWait has no effect on a Throttler.
func NewThrottler[T any](
	wait time.Duration,
	fn func(T),
	opts ...Option,
) *Throttler[T] {
	return &Throttler[T]{
		wait: wait,
		fn:   fn,
		conf: newConfig(wait, opts),
	}
}

// Call invokes fn with args if the gate is open and reports whether it did.
// When fn runs, it has returned before Call does.
//
// If fn panics, the panic is not recovered, and the gate is left open as if
// the call never happened.
func (t *Throttler[T]) Call(args T) bool {
	t.mux.Lock()
	if t.closed {
		t.mux.Unlock()
		t.conf.logger.Debug().Msg("throttle dropped")

		return false
	}

	t.closed = true
	t.seq++
	seq := t.seq
	t.timer = t.conf.scheduler.AfterFunc(t.wait, func() {
		t.reopen(seq)
	})
	t.mux.Unlock()

	t.conf.logger.Debug().Dur("wait", t.wait).Msg("throttle fired")

	done := false
	defer func() {
		if !done {
			t.reopen(seq)
		}
	}()

	if t.fn != nil {
		t.fn(args)
	}
	done = true

	return true
}

// Reset reopens the gate immediately and cancels the pending reopen.
func (t *Throttler[T]) Reset() {
	t.mux.Lock()
	defer t.mux.Unlock()

	t.open()
}

// Open reports whether the next call would invoke fn.
func (t *Throttler[T]) Open() bool {
	t.mux.Lock()
	defer t.mux.Unlock()

	return !t.closed
}

// reopen is called when the gate timer fires, or when fn panics. It is a
// no-op if the gate has been reset or closed again since seq was issued.
func (t *Throttler[T]) reopen(seq uint64) {
	t.mux.Lock()
	defer t.mux.Unlock()

	if seq != t.seq || !t.closed {
		return
	}

	t.conf.logger.Debug().Msg("throttle reopened")
	t.open()
}

// open stops the gate timer and opens the gate. It should only be called
// while the mutex is already locked.
func (t *Throttler[T]) open() {
	t.closed = false
	t.seq++

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Throttle returns a function that invokes fn at most once per wait
// interval. The first call of a burst invokes fn synchronously; calls made
// while the interval is running are dropped.
//
// The returned function is safe for concurrent use. Use NewThrottler to find
// out whether a call went through, or to reset the interval.
func Throttle[T any](
	wait time.Duration,
	fn func(T),
	opts ...Option,
) func(T) {
	t := NewThrottler(wait, fn, opts...)

	return func(args T) { t.Call(args) }
}

// ThrottleFunc is like Throttle for functions that take no arguments.
//
// The returned reset function reopens the gate, so that the next call to
// throttled invokes f immediately. It is not required to be called.
func ThrottleFunc(
	wait time.Duration,
	f func(),
	opts ...Option,
) (throttled func(), reset func()) {
	t := NewThrottler(wait, dropArgs(f), opts...)

	return func() { t.Call(struct{}{}) }, t.Reset
}
