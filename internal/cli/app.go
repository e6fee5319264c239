package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/romdo/go-ratefn/internal/config"
)

func NewApp() *cli.App {
	return &cli.App{
		Name:  "ratedemo",
		Usage: "Feed text input and pointer movement through debounced and throttled API calls",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Write logs to this file instead of stderr",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Value: config.DefaultDebounce,
				Usage: "Quiet period before a text change triggers a search",
			},
			&cli.DurationFlag{
				Name:  "throttle",
				Value: config.DefaultThrottle,
				Usage: "Minimum interval between pointer tracking calls",
			},
		},
		Action: tuiAction,
		Commands: []*cli.Command{
			TUICmd(),
			WatchCmd(),
			ServeCmd(),
		},
	}
}
