// Package api simulates the backend the demo front-ends talk to. No request
// leaves the process; every call is logged and counted.
package api

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kind names the simulated endpoint a Call went to.
type Kind string

const (
	KindSearch Kind = "search"
	KindTrack  Kind = "track"
	KindSync   Kind = "sync"
)

// Query is the content of the search input after a text change.
type Query struct {
	Text string
}

// Point is a pointer position.
type Point struct {
	X int
	Y int
}

// Call describes one simulated API call.
type Call struct {
	Kind   Kind      `json:"kind"`
	Detail string    `json:"detail"`
	At     time.Time `json:"at"`
}

// Stats counts the calls made per Kind.
type Stats struct {
	Searches int
	Tracks   int
	Syncs    int
	Last     *Call
}

// Client is the simulated API. It is safe for concurrent use.
type Client struct {
	logger   zerolog.Logger
	now      func() time.Time
	observer func(Call)

	mux   sync.Mutex
	stats Stats
}

// Option configures a Client.
type Option func(*Client)

// WithObserver registers a function that receives every call after it has
// been logged. It is called on the goroutine making the call.
func WithObserver(f func(Call)) Option {
	return func(c *Client) {
		c.observer = f
	}
}

// NewClient returns a Client that logs every call to logger.
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Search simulates a search request for the current input text.
func (c *Client) Search(q Query) {
	c.logger.Info().Str("query", q.Text).Msg("api call...")
	c.record(KindSearch, q.Text)
}

// Track simulates reporting the pointer position.
func (c *Client) Track(p Point) {
	c.logger.Info().
		Int("x", p.X).
		Int("y", p.Y).
		Msg("api call to do some operations...")
	c.record(KindTrack, strconv.Itoa(p.X)+","+strconv.Itoa(p.Y))
}

// Sync simulates pushing a batch of changed files.
func (c *Client) Sync(paths []string) {
	c.logger.Info().Strs("paths", paths).Msg("api call to sync changes...")
	c.record(KindSync, strings.Join(paths, ", "))
}

// Stats returns a snapshot of the calls made so far.
func (c *Client) Stats() Stats {
	c.mux.Lock()
	defer c.mux.Unlock()

	s := c.stats
	if s.Last != nil {
		last := *s.Last
		s.Last = &last
	}

	return s
}

func (c *Client) record(kind Kind, detail string) {
	call := Call{Kind: kind, Detail: detail, At: c.now()}

	c.mux.Lock()
	switch kind {
	case KindSearch:
		c.stats.Searches++
	case KindTrack:
		c.stats.Tracks++
	case KindSync:
		c.stats.Syncs++
	}
	c.stats.Last = &call
	c.mux.Unlock()

	if c.observer != nil {
		c.observer(call)
	}
}
