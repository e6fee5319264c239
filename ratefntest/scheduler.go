// Package ratefntest provides a virtual-time Scheduler for testing code built
// on ratefn without sleeping.
package ratefntest

import (
	"container/heap"
	"sync"
	"time"

	"github.com/romdo/go-ratefn"
)

// Scheduler is a ratefn.Scheduler driven by a virtual clock. Time only moves
// when Advance or Next is called, and callbacks run on the goroutine calling
// them, in non-decreasing deadline order. Timers with equal deadlines fire in
// the order they were scheduled.
//
// The zero value is not usable; create one with New.
type Scheduler struct {
	mux    sync.Mutex
	now    time.Duration
	seq    uint64
	timers timerHeap
}

var _ ratefn.Scheduler = (*Scheduler)(nil)

// New returns a Scheduler with its virtual clock at zero.
func New() *Scheduler {
	return &Scheduler{}
}

// AfterFunc schedules f to run once the virtual clock has advanced by d. A
// zero or negative d fires on the next call to Advance, never inline.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) ratefn.Timer {
	s.mux.Lock()
	defer s.mux.Unlock()

	if d < 0 {
		d = 0
	}

	s.seq++
	t := &timer{
		s:        s,
		deadline: s.now + d,
		seq:      s.seq,
		f:        f,
	}
	heap.Push(&s.timers, t)

	return t
}

// Now returns the virtual time elapsed since the Scheduler was created.
func (s *Scheduler) Now() time.Duration {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.now
}

// Len returns the number of timers that have not fired or been stopped.
func (s *Scheduler) Len() int {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.timers.Len()
}

// Advance moves the virtual clock forward by d, firing every timer whose
// deadline is reached along the way, including timers scheduled by callbacks
// fired during the advance. It returns the number of callbacks run.
func (s *Scheduler) Advance(d time.Duration) int {
	s.mux.Lock()
	target := s.now + d
	s.mux.Unlock()

	fired := 0
	for s.fireNext(target) {
		fired++
	}

	s.mux.Lock()
	if s.now < target {
		s.now = target
	}
	s.mux.Unlock()

	return fired
}

// AdvanceTo moves the virtual clock to the absolute time at, like Advance. It
// is a no-op if at is in the past.
func (s *Scheduler) AdvanceTo(at time.Duration) int {
	return s.Advance(at - s.Now())
}

// Next advances the virtual clock to the earliest pending deadline and fires
// that single timer. It returns false if no timer is pending.
func (s *Scheduler) Next() bool {
	s.mux.Lock()
	if s.timers.Len() == 0 {
		s.mux.Unlock()
		return false
	}
	target := s.timers[0].deadline
	s.mux.Unlock()

	return s.fireNext(target)
}

// fireNext pops and runs the earliest timer due at or before target.
func (s *Scheduler) fireNext(target time.Duration) bool {
	s.mux.Lock()
	if s.timers.Len() == 0 || s.timers[0].deadline > target {
		s.mux.Unlock()
		return false
	}

	t := heap.Pop(&s.timers).(*timer)
	if t.deadline > s.now {
		s.now = t.deadline
	}
	s.mux.Unlock()

	t.f()

	return true
}

type timer struct {
	s        *Scheduler
	deadline time.Duration
	seq      uint64
	f        func()
	index    int
}

// Stop removes the timer from the queue. It returns false if the timer
// already fired or was stopped.
func (t *timer) Stop() bool {
	t.s.mux.Lock()
	defer t.s.mux.Unlock()

	if t.index < 0 {
		return false
	}
	heap.Remove(&t.s.timers, t.index)

	return true
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].deadline == h[j].deadline {
		return h[i].seq < h[j].seq
	}

	return h[i].deadline < h[j].deadline
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]

	return t
}
