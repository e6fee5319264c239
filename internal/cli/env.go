package cli

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/romdo/go-ratefn"
	"github.com/romdo/go-ratefn/eventloop"
	"github.com/romdo/go-ratefn/internal/api"
	"github.com/romdo/go-ratefn/internal/config"
	"github.com/romdo/go-ratefn/internal/logger"
)

// env is what every subcommand runs with: configuration, a logger, and the
// event loop all rate-limited calls are scheduled on.
type env struct {
	cfg      config.Config
	log      zerolog.Logger
	closeLog func() error
	loop     *eventloop.Loop
}

// loadConfig reads the config file and applies flags that were set
// explicitly on the command line.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, err
	}

	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	if c.IsSet("debounce") {
		cfg.Debounce = c.Duration("debounce")
	}
	if c.IsSet("throttle") {
		cfg.Throttle = c.Duration("throttle")
	}
	if c.IsSet("bind") {
		cfg.Bind = c.String("bind")
	}

	return cfg, nil
}

func newEnv(c *cli.Context, defaultLogFile string) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, cli.Exit("error: "+err.Error(), 1)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = defaultLogFile
	}

	log, closeLog, err := logger.New(logger.Options{
		Debug: cfg.Debug,
		File:  cfg.LogFile,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up logging")
	}

	log.Debug().
		Dur("debounce", cfg.Debounce).
		Dur("throttle", cfg.Throttle).
		Msg("configuration loaded")

	return &env{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		loop: eventloop.New(
			eventloop.WithLogger(log.With().Str("component", "loop").Logger()),
		),
	}, nil
}

// bind wires a client to the configured delays on the event loop.
func (e *env) bind(client *api.Client) *api.Bindings {
	return api.Bind(client, e.cfg.Debounce, e.cfg.Throttle,
		ratefn.WithScheduler(e.loop),
		ratefn.WithLogger(e.log.With().Str("component", "ratefn").Logger()),
	)
}

// run starts the event loop, runs fn until it returns or ctx is done, and
// then stops the loop.
func (e *env) run(
	ctx context.Context,
	fn func(ctx context.Context) error,
) error {
	defer e.closeLog()

	ctx, cancel := context.WithCancel(e.log.WithContext(ctx))
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- e.loop.Run(ctx) }()

	err := fn(ctx)
	cancel()

	if lerr := <-loopErr; err == nil {
		err = lerr
	}

	return err
}
