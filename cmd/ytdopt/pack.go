package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/JGCdev/gta-fivem-texture-optimizer/internal/logger"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/archive"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/optimizer"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/rsc7"
)

func packCmd() *cli.Command {
	var output string

	return &cli.Command{
		Name:      "pack",
		Usage:     "Build a container from a dump archive",
		ArgsUsage: "<dump>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "output container path", Destination: &output},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return errors.New("pack needs <dump>")
			}
			return runPack(ctx, c.Args().First(), output)
		},
	}
}

func runPack(ctx context.Context, path, output string) error {
	d, err := archive.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read dump %s", path)
	}

	segs, err := rsc7.Split(d.Body, int(d.VirtualSize))
	if err != nil {
		return errors.Wrap(err, "split body")
	}

	data, err := rsc7.Encode(d.Version, segs)
	if err != nil {
		return errors.Wrap(err, "encode container")
	}
	if err := optimizer.WriteFileAtomic(output, data); err != nil {
		return err
	}

	logger.FromContext(ctx).Info("container packed", "dump", path, "output", output, "size", len(data))
	fmt.Printf("Saved: %s (%d bytes)\n", output, len(data))
	return nil
}
