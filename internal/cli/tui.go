package cli

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/romdo/go-ratefn/internal/api"
	"github.com/romdo/go-ratefn/internal/tui"
)

const defaultTUILogFile = "ratedemo.log"

func TUICmd() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Terminal search page: typing is debounced, mouse movement is throttled",
		Action: tuiAction,
	}
}

// tuiAction logs to a file by default, since the screen owns the terminal.
func tuiAction(c *cli.Context) error {
	e, err := newEnv(c, defaultTUILogFile)
	if err != nil {
		return err
	}

	var ui *tui.UI
	client := api.NewClient(e.log, api.WithObserver(func(call api.Call) {
		ui.Record(call)
	}))
	bind := e.bind(client)

	ui, err = tui.New(e.loop, bind)
	if err != nil {
		e.closeLog()
		return cli.Exit("error: "+err.Error(), 1)
	}
	defer ui.Close()

	return e.run(c.Context, func(ctx context.Context) error {
		defer bind.Stop()

		return ui.Run(ctx)
	})
}
