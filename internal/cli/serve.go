package cli

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/romdo/go-ratefn/internal/api"
	"github.com/romdo/go-ratefn/internal/config"
	"github.com/romdo/go-ratefn/internal/server"
)

func ServeCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Accept search and pointer events over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "bind",
				Value: config.DefaultBind,
				Usage: "Address to listen on",
			},
		},
		Action: func(c *cli.Context) error {
			e, err := newEnv(c, "")
			if err != nil {
				return err
			}

			client := api.NewClient(e.log)
			bind := e.bind(client)
			srv := server.New(e.loop, bind, client,
				e.log.With().Str("component", "http").Logger(),
			)

			return e.run(c.Context, func(ctx context.Context) error {
				defer bind.Stop()

				return srv.ListenAndServe(ctx, e.cfg.Bind)
			})
		},
	}
}
