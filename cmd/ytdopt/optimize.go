package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/JGCdev/gta-fivem-texture-optimizer/internal/logger"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/optimizer"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/resize"
)

func optimizeCmd() *cli.Command {
	opts := optimizeOptions{}

	return &cli.Command{
		Name:      "optimize",
		Usage:     "Shrink every texture dictionary below a directory",
		ArgsUsage: "<input-dir> <output-dir>",
		Flags:     optimizeFlags(&opts),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 2 {
				return errors.New("optimize needs <input-dir> and <output-dir>")
			}
			applyOptimizeConfig(c, configFrom(ctx), &opts)
			if err := opts.validate(); err != nil {
				return err
			}
			return runOptimize(ctx, c.Args().Get(0), c.Args().Get(1), opts)
		},
	}
}

func optimizeFlags(opts *optimizeOptions) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "size", Aliases: []string{"s"}, Value: optimizer.DefaultTargetSize, Usage: "maximum texture edge", Destination: &opts.size},
		&cli.StringFlag{Name: "texconv", Aliases: []string{"t"}, Usage: "path to texconv (default: PATH, then tools/texconv.exe)", Destination: &opts.texconv},
		&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Value: optimizer.DefaultParallel, Usage: "containers processed at once", Destination: &opts.parallel},
		&cli.DurationFlag{Name: "timeout", Value: optimizer.DefaultTimeout, Usage: "resampler timeout per texture", Destination: &opts.timeout},
		&cli.StringSliceFlag{Name: "ext", Value: optimizer.DefaultExtensions, Usage: "container extensions to process", Destination: &opts.extensions},
		&cli.StringFlag{Name: "report", Usage: "write a JSON report to this file", Destination: &opts.report},
	}
}

func runOptimize(ctx context.Context, inputDir, outputDir string, opts optimizeOptions) error {
	log := logger.FromContext(ctx)

	texconv, err := resize.FindTexconv(opts.texconv)
	if err != nil {
		return err
	}
	log.Debug("using texconv", "path", texconv)

	batch := &optimizer.Batch{
		Optimizer: optimizer.New(optimizer.Config{
			TargetSize: uint32(opts.size),
			Timeout:    opts.timeout,
			Resizer:    resize.NewTexconv(texconv),
			Logger:     log,
		}),
		Parallel:   opts.parallel,
		Extensions: opts.extensions,
		Logger:     log,
	}

	summary, err := batch.Run(ctx, inputDir, outputDir)
	if summary != nil {
		summary.Print(os.Stdout)
		if opts.report != "" {
			if werr := summary.WriteReportFile(opts.report); werr != nil {
				return werr
			}
			log.Info("report written", "path", opts.report)
		}
	}
	return err
}
