package api

import (
	"slices"
	"sync"
	"time"

	"github.com/romdo/go-ratefn"
)

// Bindings are the rate-limited entry points event sources feed into:
// text changes are debounced, pointer movement is throttled, and file
// changes are collected and synced together once they settle.
type Bindings struct {
	Search *ratefn.Debouncer[Query]
	Track  *ratefn.Throttler[Point]
	Sync   *ratefn.Debouncer[Changes]

	mux     sync.Mutex
	gen     uint64
	changed map[string]uint64
}

// Changes is the sorted set of files changed since the last sync.
type Changes struct {
	Paths []string
	gen   uint64
}

// Bind wraps the calls of c with the given delays. opts are passed to every
// wrapper, typically a shared scheduler and logger.
func Bind(
	c *Client,
	debounce, throttle time.Duration,
	opts ...ratefn.Option,
) *Bindings {
	b := &Bindings{
		Search:  ratefn.NewDebouncer(debounce, c.Search, opts...),
		Track:   ratefn.NewThrottler(throttle, c.Track, opts...),
		changed: map[string]uint64{},
	}
	b.Sync = ratefn.NewDebouncer(debounce, func(ch Changes) {
		b.synced(ch)
		c.Sync(ch.Paths)
	}, opts...)

	return b
}

// Changed adds path to the set of changed files. The set is synced in one
// call once no file has changed for the debounce delay.
func (b *Bindings) Changed(path string) {
	b.mux.Lock()
	defer b.mux.Unlock()

	b.gen++
	b.changed[path] = b.gen
	paths := make([]string, 0, len(b.changed))
	for p := range b.changed {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	b.Sync.Call(Changes{Paths: paths, gen: b.gen})
}

// synced removes the synced paths from the changed set. Paths that changed
// again after ch was taken stay in the set.
func (b *Bindings) synced(ch Changes) {
	b.mux.Lock()
	defer b.mux.Unlock()

	for _, p := range ch.Paths {
		if b.changed[p] <= ch.gen {
			delete(b.changed, p)
		}
	}
}

// Stop discards pending debounced calls.
func (b *Bindings) Stop() {
	b.Search.Cancel()
	b.Sync.Cancel()

	b.mux.Lock()
	clear(b.changed)
	b.mux.Unlock()
}
