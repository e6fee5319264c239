package tui

import (
	"reflect"

	"github.com/gdamore/tcell/v3"
	"github.com/rs/zerolog"
)

// EventType is what the search page does with an Event.
type EventType int

const (
	EventNone EventType = iota
	EventExit
	EventInput
	EventBackspace
	EventMove
	EventResize
)

// Event is a terminal event reduced to what the search page reacts to.
type Event struct {
	Type EventType
	Text string
	X    int
	Y    int
}

// convertEvent maps a tcell event onto the search page. Esc and Ctrl-C exit,
// typed runes become input and any mouse event becomes a move.
func convertEvent(evt tcell.Event, logger zerolog.Logger) Event {
	switch ev := evt.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			logger.Debug().Msg("exit key")
			return Event{Type: EventExit}
		case tcell.KeyBackspace:
			return Event{Type: EventBackspace}
		case tcell.KeyRune:
			return Event{Type: EventInput, Text: ev.Str()}
		}
		return Event{Type: EventNone}
	case *tcell.EventMouse:
		x, y := ev.Position()
		return Event{Type: EventMove, X: x, Y: y}
	case *tcell.EventResize:
		return Event{Type: EventResize}
	case nil:
		return Event{Type: EventNone}
	default:
		logger.Debug().Str("type", reflect.TypeOf(evt).String()).Msg("ignored event")
		return Event{Type: EventNone}
	}
}
