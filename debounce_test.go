package ratefn

import (
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var maxRetries = flag.Int("max-retries", 0, "Maximum number of retries")

// Due to the timing-based nature of the test suite, we want to support
// automatically retrying the tests a few times to avoid flakiness.
func TestMain(m *testing.M) {
	flag.Parse()

	code := m.Run()

	for i := 0; code != 0 && i < *maxRetries; i++ {
		fmt.Fprintf(os.Stderr,
			"===\n=== WARN  Tests failed, retrying (%d/%d)...\n===\n",
			i+1, *maxRetries,
		)
		code = m.Run()
	}

	os.Exit(code)
}

type testCase struct {
	name    string
	wait    time.Duration
	options []Option
	actions map[int64]testAction
}

// testAction is performed at a millisecond offset from the start of a test
// case. It either calls the wrapped function with arg, cancels or resets it,
// or asserts the number and last arguments of invocations so far.
type testAction struct {
	call       bool
	arg        int
	reset      bool
	wantInvocs int64
	wantLast   int
}

type timedFunc struct {
	call  func(int)
	reset func()
}

func runTestCases(
	t *testing.T,
	tests []testCase,
	wrap func(tc testCase, f func(int)) timedFunc,
) {
	t.Helper()

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var n int64
			var last int64
			f := func(arg int) {
				atomic.StoreInt64(&last, int64(arg))
				atomic.AddInt64(&n, 1)
			}
			fn := wrap(tt, f)

			var lastWantInvocs int64
			wg := sync.WaitGroup{}

			for ms, action := range tt.actions {
				wg.Add(1)
				dur := time.Duration(ms) * time.Millisecond

				go func(offset time.Duration, act testAction) {
					defer wg.Done()
					time.Sleep(offset)
					switch {
					case act.call:
						fn.call(act.arg)
					case act.reset:
						fn.reset()
					default:
						atomic.StoreInt64(&lastWantInvocs, act.wantInvocs)
						got := atomic.LoadInt64(&n)
						assert.Equal(t, act.wantInvocs, got, "at %s", offset)
						if act.wantLast != 0 {
							assert.Equal(t,
								int64(act.wantLast), atomic.LoadInt64(&last),
								"last args at %s", offset,
							)
						}
					}
				}(dur, action)
			}

			wg.Wait()

			// Wait a bit of extra time just to try and make sure there's
			// no lingering invocation left.
			time.Sleep(tt.wait * 2)
			assert.Equal(t,
				atomic.LoadInt64(&lastWantInvocs), atomic.LoadInt64(&n),
				"last want invocations",
			)
		})
	}
}

func TestDebounce_realTime(t *testing.T) {
	t.Parallel()

	tests := []testCase{
		{
			name: "one call, one trigger",
			wait: 200 * time.Millisecond,
			actions: map[int64]testAction{
				100: {call: true, arg: 1},
				250: {wantInvocs: 0},
				350: {wantInvocs: 1, wantLast: 1}, // trailing trigger at 300ms
			},
		},
		{
			name: "two calls, two triggers",
			wait: 200 * time.Millisecond,
			actions: map[int64]testAction{
				100: {call: true, arg: 1},
				250: {wantInvocs: 0},
				350: {wantInvocs: 1, wantLast: 1}, // trailing trigger at 300ms

				400: {call: true, arg: 2},
				550: {wantInvocs: 1},
				650: {wantInvocs: 2, wantLast: 2}, // trailing trigger at 600ms
			},
		},
		{
			name: "one burst of calls, one trigger with last args",
			wait: 200 * time.Millisecond,
			actions: map[int64]testAction{
				100: {call: true, arg: 1},
				150: {call: true, arg: 2},
				200: {call: true, arg: 3},
				250: {call: true, arg: 4},
				300: {call: true, arg: 5},
				450: {wantInvocs: 0},
				550: {wantInvocs: 1, wantLast: 5}, // trailing trigger at 500ms
			},
		},
		{
			name: "one burst of calls with a cancel, one trigger",
			wait: 200 * time.Millisecond,
			actions: map[int64]testAction{
				100: {call: true, arg: 1},
				150: {call: true, arg: 2},
				200: {call: true, arg: 3},
				250: {reset: true},

				300: {call: true, arg: 4},
				350: {call: true, arg: 5},
				500: {wantInvocs: 0},
				600: {wantInvocs: 1, wantLast: 5}, // trailing trigger at 550ms
			},
		},
		{
			name: "burst with max wait, two triggers",
			wait: 100 * time.Millisecond,
			options: []Option{
				WithMaxWait(250 * time.Millisecond),
			},
			actions: map[int64]testAction{
				0:   {call: true, arg: 1},
				50:  {call: true, arg: 2},
				100: {call: true, arg: 3},
				150: {call: true, arg: 4},
				200: {call: true, arg: 5},
				225: {wantInvocs: 0},
				275: {wantInvocs: 1, wantLast: 5}, // max wait trigger at 250ms
				// trailing trigger for the call at 300ms fires at 400ms
				300: {call: true, arg: 6},
				350: {wantInvocs: 1},
				450: {wantInvocs: 2, wantLast: 6},
			},
		},
	}

	runTestCases(t, tests, func(tc testCase, f func(int)) timedFunc {
		d := NewDebouncer(tc.wait, f, tc.options...)

		return timedFunc{call: d.Call, reset: d.Cancel}
	})
}

func TestThrottle_realTime(t *testing.T) {
	t.Parallel()

	tests := []testCase{
		{
			name: "leading call fires immediately",
			wait: 200 * time.Millisecond,
			actions: map[int64]testAction{
				100: {call: true, arg: 1},
				150: {wantInvocs: 1, wantLast: 1},
				350: {wantInvocs: 1},
			},
		},
		{
			name: "calls within the window are dropped",
			wait: 200 * time.Millisecond,
			actions: map[int64]testAction{
				0:   {call: true, arg: 1},
				50:  {call: true, arg: 2},
				100: {call: true, arg: 3},
				150: {wantInvocs: 1, wantLast: 1},
				// no trailing invocation once the gate reopens
				300: {wantInvocs: 1, wantLast: 1},
			},
		},
		{
			name: "call after the window fires again",
			wait: 200 * time.Millisecond,
			actions: map[int64]testAction{
				0:   {call: true, arg: 1},
				60:  {call: true, arg: 2},
				300: {call: true, arg: 3},
				350: {wantInvocs: 2, wantLast: 3},
			},
		},
		{
			name: "reset reopens the gate",
			wait: 500 * time.Millisecond,
			actions: map[int64]testAction{
				0:   {call: true, arg: 1},
				50:  {reset: true},
				100: {call: true, arg: 2},
				150: {wantInvocs: 2, wantLast: 2},
				200: {call: true, arg: 3},
				250: {wantInvocs: 2, wantLast: 2},
			},
		},
	}

	runTestCases(t, tests, func(tc testCase, f func(int)) timedFunc {
		th := NewThrottler(tc.wait, f, tc.options...)

		return timedFunc{
			call:  func(arg int) { th.Call(arg) },
			reset: th.Reset,
		}
	})
}

func TestNewDebouncer_config(t *testing.T) {
	tests := []struct {
		name        string
		wait        time.Duration
		opts        []Option
		wantMaxWait time.Duration
		wantSched   Scheduler
	}{
		{
			name:        "defaults",
			wait:        100 * time.Millisecond,
			wantMaxWait: 0,
			wantSched:   System,
		},
		{
			name:        "maxWait option",
			wait:        100 * time.Millisecond,
			opts:        []Option{WithMaxWait(500 * time.Millisecond)},
			wantMaxWait: 500 * time.Millisecond,
			wantSched:   System,
		},
		{
			name:        "maxWait less than wait (should be disabled)",
			wait:        100 * time.Millisecond,
			opts:        []Option{WithMaxWait(50 * time.Millisecond)},
			wantMaxWait: 0,
			wantSched:   System,
		},
		{
			name:        "nil scheduler keeps default",
			wait:        100 * time.Millisecond,
			opts:        []Option{WithScheduler(nil)},
			wantMaxWait: 0,
			wantSched:   System,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDebouncer(tt.wait, func(int) {}, tt.opts...)

			assert.Equal(t, tt.wait, d.wait)
			assert.Equal(t, tt.wantMaxWait, d.conf.maxWait)
			assert.Equal(t, tt.wantSched, d.conf.scheduler)
			assert.False(t, d.pending)
		})
	}
}
