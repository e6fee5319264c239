package tui

import (
	"fmt"

	"github.com/romdo/go-ratefn/internal/api"
)

const maxRecentCalls = 10

// model is the state of the search page. It is only touched from the event
// loop, so it needs no locking.
type model struct {
	bind *api.Bindings

	input   []rune
	pointer api.Point
	moves   int
	dropped int
	calls   []api.Call
}

func newModel(bind *api.Bindings) *model {
	return &model{bind: bind}
}

// apply feeds e to the rate-limited bindings and reports whether the page
// needs to be redrawn.
func (m *model) apply(e Event) bool {
	switch e.Type {
	case EventInput:
		m.input = append(m.input, []rune(e.Text)...)
		m.bind.Search.Call(api.Query{Text: string(m.input)})
	case EventBackspace:
		if len(m.input) == 0 {
			return false
		}
		m.input = m.input[:len(m.input)-1]
		m.bind.Search.Call(api.Query{Text: string(m.input)})
	case EventMove:
		m.pointer = api.Point{X: e.X, Y: e.Y}
		m.moves++
		if !m.bind.Track.Call(m.pointer) {
			m.dropped++
		}
	case EventResize:
	default:
		return false
	}

	return true
}

// record keeps the most recent API calls for display.
func (m *model) record(c api.Call) {
	m.calls = append(m.calls, c)
	if len(m.calls) > maxRecentCalls {
		m.calls = m.calls[len(m.calls)-maxRecentCalls:]
	}
}

func (m *model) searchLine() string {
	return "Search: " + string(m.input)
}

func (m *model) pointerLine() string {
	return fmt.Sprintf("Pointer: %d,%d  moves: %d  dropped: %d",
		m.pointer.X, m.pointer.Y, m.moves, m.dropped)
}

func (m *model) callLines() []string {
	lines := make([]string, 0, len(m.calls))
	for i := len(m.calls) - 1; i >= 0; i-- {
		c := m.calls[i]
		lines = append(lines, fmt.Sprintf("%s  %-6s %s",
			c.At.Format("15:04:05.000"), c.Kind, c.Detail))
	}

	return lines
}
