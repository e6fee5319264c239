package cli

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/romdo/go-ratefn/internal/api"
	"github.com/romdo/go-ratefn/internal/watch"
)

func WatchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Sync changed files, collecting a burst of writes into one sync",
		ArgsUsage: "[paths...]",
		Action: func(c *cli.Context) error {
			e, err := newEnv(c, "")
			if err != nil {
				return err
			}

			paths := e.cfg.Watch
			if c.Args().Len() > 0 {
				paths = c.Args().Slice()
			}

			bind := e.bind(api.NewClient(e.log))
			onChange := func(path string) {
				e.loop.Post(func() { bind.Changed(path) })
			}

			w, err := watch.New(paths, e.cfg.Ignore, onChange)
			if err != nil {
				e.closeLog()
				return cli.Exit("error: "+err.Error(), 1)
			}

			return e.run(c.Context, func(ctx context.Context) error {
				defer bind.Stop()

				return w.Run(ctx)
			})
		},
	}
}
