package command

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/chauey/ngrev/internal/config"
)

type Deps struct {
	LoadConfig   func() (config.Config, error)
	RunServe     func(context.Context, config.Config) error
	ListRecents  func(context.Context, config.Config, io.Writer) error
	ClearRecents func(context.Context, config.Config) error
	ShowConfig   func(config.Config, io.Writer) error
	Out          io.Writer
}

func BuildApp(deps Deps) *cli.App {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}
	return &cli.App{
		Name:  "ngrev",
		Usage: "angular project analysis host",
		Action: func(ctx *cli.Context) error {
			return runServe(ctx.Context, deps)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "spawn the analysis worker and serve the ui channel",
				Action: func(ctx *cli.Context) error {
					return runServe(ctx.Context, deps)
				},
			},
			{
				Name:  "recents",
				Usage: "manage the recently opened projects list",
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "print recently opened projects, newest first",
						Action: func(ctx *cli.Context) error {
							if deps.ListRecents == nil {
								return errors.New("recents lister is not configured")
							}
							cfg, err := loadConfig(deps)
							if err != nil {
								return err
							}
							return deps.ListRecents(ctx.Context, cfg, out)
						},
					},
					{
						Name:  "clear",
						Usage: "forget every recently opened project",
						Action: func(ctx *cli.Context) error {
							if deps.ClearRecents == nil {
								return errors.New("recents clearer is not configured")
							}
							cfg, err := loadConfig(deps)
							if err != nil {
								return err
							}
							return deps.ClearRecents(ctx.Context, cfg)
						},
					},
				},
			},
			{
				Name:  "config",
				Usage: "inspect host configuration",
				Subcommands: []*cli.Command{
					{
						Name:  "show",
						Usage: "print the effective configuration",
						Action: func(*cli.Context) error {
							if deps.ShowConfig == nil {
								return errors.New("config printer is not configured")
							}
							cfg, err := loadConfig(deps)
							if err != nil {
								return err
							}
							return deps.ShowConfig(cfg, out)
						},
					},
				},
			},
		},
	}
}

func loadConfig(deps Deps) (config.Config, error) {
	if deps.LoadConfig == nil {
		return config.Config{}, errors.New("config loader is not configured")
	}
	return deps.LoadConfig()
}

func runServe(ctx context.Context, deps Deps) error {
	if deps.RunServe == nil {
		return errors.New("serve runner is not configured")
	}
	cfg, err := loadConfig(deps)
	if err != nil {
		return err
	}
	return deps.RunServe(ctx, cfg)
}
