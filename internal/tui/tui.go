// Package tui is a terminal search page: typing feeds a debounced search
// and moving the mouse feeds a throttled position tracker.
package tui

import (
	"context"

	"github.com/gdamore/tcell/v3"
	"github.com/gdamore/tcell/v3/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/romdo/go-ratefn/eventloop"
	"github.com/romdo/go-ratefn/internal/api"
)

// UI draws the search page and forwards terminal events to the event loop.
type UI struct {
	screen tcell.Screen
	loop   *eventloop.Loop
	model  *model
}

// New initialises the terminal. Events are handled on loop, which must be
// the scheduler the bindings were created with.
func New(loop *eventloop.Loop, bind *api.Bindings) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create screen")
	}
	if err := screen.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to init screen")
	}

	defStyle := tcell.StyleDefault.Background(color.Reset).Foreground(color.Reset)
	screen.SetStyle(defStyle)
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.Clear()

	return &UI{
		screen: screen,
		loop:   loop,
		model:  newModel(bind),
	}, nil
}

// Close restores the terminal.
func (u *UI) Close() {
	u.screen.Fini()
}

// Record adds an API call to the page. It must be called on the event loop,
// which is where the bound API client runs.
func (u *UI) Record(c api.Call) {
	u.model.record(c)
	u.redraw()
}

// Run forwards terminal events to the event loop until ctx is done or the
// user presses Esc or Ctrl-C.
func (u *UI) Run(ctx context.Context) error {
	logger := zerolog.Ctx(ctx).With().Str("component", "tui").Logger()
	logger.Info().Msg("started ui loop")

	u.loop.Post(u.redraw)
	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("context ended, exiting UI")
			return nil
		case evt := <-u.screen.EventQ():
			e := convertEvent(evt, logger)
			switch e.Type {
			case EventNone:
				continue
			case EventExit:
				logger.Info().Msg("exit requested")
				return nil
			case EventResize:
				u.loop.Post(func() {
					u.screen.Sync()
					u.redraw()
				})
			default:
				u.loop.Post(func() {
					if u.model.apply(e) {
						u.redraw()
					}
				})
			}
		}
	}
}

func (u *UI) redraw() {
	u.screen.Clear()

	u.drawText(0, 0, tcell.StyleDefault.Foreground(color.Yellow).Bold(true),
		"ratedemo - type to search, move the mouse to track")
	u.drawText(0, 1, tcell.StyleDefault.Foreground(color.White),
		"Press ESC or Ctrl+C to exit")

	u.drawText(0, 3, tcell.StyleDefault.Foreground(color.Green).Bold(true),
		u.model.searchLine())
	u.drawText(0, 4, tcell.StyleDefault.Foreground(color.Blue),
		u.model.pointerLine())

	u.drawText(0, 6, tcell.StyleDefault.Bold(true), "API calls:")
	for i, line := range u.model.callLines() {
		u.drawText(2, 7+i, tcell.StyleDefault, line)
	}

	u.screen.Show()
}

func (u *UI) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		u.screen.SetContent(x+i, y, r, nil, style)
	}
}
