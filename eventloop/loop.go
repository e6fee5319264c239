// Package eventloop implements a single-threaded, cooperative event loop that
// can be used as a ratefn.Scheduler.
//
// Posted tasks and timer callbacks all run on the goroutine that called
// Run, one at a time and to completion. Code that only touches its state from
// within loop callbacks needs no locking.
package eventloop

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/romdo/go-ratefn"
)

// ErrRunning is returned by Run when the loop is already running.
var ErrRunning = errors.New("eventloop: already running")

// Loop is a single-threaded event loop. Create one with New and start it
// with Run.
type Loop struct {
	now    func() time.Time
	logger zerolog.Logger

	mux     sync.Mutex
	queue   []func()
	timers  timerHeap
	seq     uint64
	wake    chan struct{}
	running atomic.Bool
}

var _ ratefn.Scheduler = (*Loop)(nil)

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used to trace the loop at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(loop *Loop) {
		loop.logger = l
	}
}

// New returns a Loop that is ready to accept tasks. Nothing runs until Run is
// called.
func New(opts ...Option) *Loop {
	l := &Loop{
		now:    time.Now,
		logger: zerolog.Nop(),
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Run executes tasks and due timers until ctx is done. Due timers run before
// posted tasks. A panic in a task or timer callback is not recovered and
// unwinds Run.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer l.running.Store(false)

	l.logger.Debug().Msg("event loop started")

	idle := time.NewTimer(time.Hour)
	idle.Stop()
	defer idle.Stop()

	for {
		if err := ctx.Err(); err != nil {
			l.logger.Debug().Msg("context ended, exiting event loop")
			return nil
		}

		task, wait := l.next()
		if task != nil {
			task()
			continue
		}

		var timeout <-chan time.Time
		if wait >= 0 {
			idle.Reset(wait)
			timeout = idle.C
		}

		select {
		case <-ctx.Done():
		case <-l.wake:
		case <-timeout:
		}
		if !idle.Stop() && timeout != nil {
			// Drain a value left by a timer that fired while we were woken
			// by something else.
			select {
			case <-idle.C:
			default:
			}
		}
	}
}

// Post queues f to run on the loop. It is safe to call from any goroutine,
// including from within the loop, and never blocks.
func (l *Loop) Post(f func()) {
	l.mux.Lock()
	l.queue = append(l.queue, f)
	l.mux.Unlock()

	l.signal()
}

// Do runs f on the loop and waits for it to return, or for ctx to be done.
// It must not be called from within the loop.
func (l *Loop) Do(ctx context.Context, f func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		f()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "eventloop: waiting for task")
	}
}

// AfterFunc schedules f to run on the loop once d has elapsed. Timers fire in
// non-decreasing order of their deadlines, and in scheduling order when
// deadlines are equal. A zero or negative d runs f on a later turn, never
// inline.
func (l *Loop) AfterFunc(d time.Duration, f func()) ratefn.Timer {
	l.mux.Lock()
	l.seq++
	t := &timer{
		loop:     l,
		deadline: l.now().Add(d),
		seq:      l.seq,
		f:        f,
	}
	heap.Push(&l.timers, t)
	l.mux.Unlock()

	l.signal()

	return t
}

// Pending returns the number of queued tasks and timers that have not yet
// run or been stopped.
func (l *Loop) Pending() int {
	l.mux.Lock()
	defer l.mux.Unlock()

	return len(l.queue) + l.timers.Len()
}

// next returns the next callback to run, or the time until the earliest
// timer is due. wait is negative if no timer is pending.
func (l *Loop) next() (task func(), wait time.Duration) {
	l.mux.Lock()
	defer l.mux.Unlock()

	wait = -1
	if l.timers.Len() > 0 {
		t := l.timers[0]
		d := t.deadline.Sub(l.now())
		if d <= 0 {
			heap.Pop(&l.timers)
			return t.f, 0
		}
		wait = d
	}

	if len(l.queue) > 0 {
		task = l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]

		return task, 0
	}

	return nil, wait
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

type timer struct {
	loop     *Loop
	deadline time.Time
	seq      uint64
	f        func()
	index    int
}

// Stop removes the timer from the loop. Once Stop returns true the callback
// is guaranteed never to run. It returns false if the callback has already
// been taken off the queue to run, or the timer was already stopped.
func (t *timer) Stop() bool {
	t.loop.mux.Lock()
	defer t.loop.mux.Unlock()

	if t.index < 0 {
		return false
	}
	heap.Remove(&t.loop.timers, t.index)

	return true
}
