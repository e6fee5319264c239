// Package ratefn provides wrappers that rate-limit calls to a function.
//
// Debounce delays invoking a function until a quiet period has passed since
// the last call, so a burst of calls results in a single invocation with the
// arguments of the final call. Throttle invokes a function immediately on the
// first call of a burst and drops every further call until a fixed interval
// has passed.
//
// Both are useful when calls may be triggered rapidly, such as in response to
// user input or pointer movement, but the underlying operation is expensive
// and only needs to be performed once per batch of calls.
//
// Deferred work is scheduled through a Scheduler. The default, System, uses
// time.AfterFunc. The eventloop package provides a single-threaded Scheduler,
// and ratefntest provides a manually advanced one for tests.
package ratefn

import (
	"time"
)

// Debounce returns a function that delays invoking fn until after wait time
// has elapsed since the last time it was called. Only the arguments of the
// last call reach fn.
//
// The returned function is safe for concurrent use. It does not wait for fn
// to complete. Use NewDebouncer to get access to Cancel and Flush.
func Debounce[T any](
	wait time.Duration,
	fn func(T),
	opts ...Option,
) func(T) {
	return NewDebouncer(wait, fn, opts...).Call
}

// DebounceFunc is like Debounce for functions that take no arguments.
//
// The returned cancel function can be used to cancel any pending invocation of
// f, but is not required to be called, so can be ignored if not needed.
//
// Both debounced and cancel functions are safe for concurrent use in
// goroutines, and can both be called multiple times.
func DebounceFunc(
	wait time.Duration,
	f func(),
	opts ...Option,
) (debounced func(), cancel func()) {
	d := NewDebouncer(wait, dropArgs(f), opts...)

	return func() { d.Call(struct{}{}) }, d.Cancel
}

func dropArgs(f func()) func(struct{}) {
	if f == nil {
		return nil
	}

	return func(struct{}) { f() }
}
