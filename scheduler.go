package ratefn

import (
	"time"
)

// Timer is a handle to a single callback scheduled with a Scheduler.
type Timer interface {
	// Stop prevents the callback from running. It returns true if the call
	// stopped the timer, and false if the callback already ran or was already
	// stopped.
	Stop() bool
}

// Scheduler is the timer primitive used by debounced and throttled functions
// to defer work.
//
// AfterFunc must never run f synchronously, even when d is zero or negative.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// System is the default Scheduler. It runs callbacks on their own goroutine
// via time.AfterFunc.
var System Scheduler = systemScheduler{}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SchedulerFunc adapts a plain function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, f func()) Timer

func (fn SchedulerFunc) AfterFunc(d time.Duration, f func()) Timer {
	return fn(d, f)
}
