// Command ytdopt shrinks the textures in GTA V / FiveM texture dictionaries
// and inspects RSC7 containers.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/JGCdev/gta-fivem-texture-optimizer/internal/logger"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "ytdopt",
		Usage: "Optimize RSC7 texture dictionaries (.ytd)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to config.yaml (default: user config dir)"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Value: "text", Usage: "text or json"},
		},
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			optimizeCmd(),
			rebuildCmd(),
			verifyCmd(),
			inspectCmd(),
			extractCmd(),
			packCmd(),
		},
	}
}

// setup loads the config file and stores it and the logger in ctx.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(cmd.String("config"))
	if err != nil {
		return ctx, err
	}

	level, format := cmd.String("log-level"), cmd.String("log-format")
	if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		level = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !cmd.IsSet("log-format") {
		format = cfg.LogFormat
	}
	log := logger.ForFormat(os.Stderr, format, logger.ParseLevel(level))

	ctx = logger.WithContext(ctx, log)
	return withConfig(ctx, cfg), nil
}
