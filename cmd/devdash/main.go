package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	api "devdash/internal/adapter/http"
	"devdash/pkg/config"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "devdash",
		Usage:   "to-do list and weather dashboard",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to a TOML config file",
				EnvVars: []string{config.ConfigPathEnv},
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("config"); path != "" {
				return os.Setenv(config.ConfigPathEnv, path)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			tasksCommand(),
			weatherCommand(),
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP dashboard and API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "listen port (overrides PORT)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()

			if err != nil {
				return err
			}

			if port := c.String("port"); port != "" {
				cfg.Port = port
			}

			logger, err := config.NewLokiLogger(cfg.AppName, cfg.LokiURL)

			if err != nil {
				return err
			}

			defer logger.Sync()

			return api.Run(c.Context, cfg, logger, version)
		},
	}
}

// open builds the services for one command invocation.
func open(c *cli.Context) (*api.Container, *config.AppConfig, error) {
	cfg, err := config.Load()

	if err != nil {
		return nil, nil, err
	}

	container, err := api.NewContainer(c.Context, cfg, nil, config.NewNopLogger())

	if err != nil {
		return nil, nil, err
	}

	return container, cfg, nil
}
