package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/JGCdev/gta-fivem-texture-optimizer/internal/logger"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/optimizer"
)

func rebuildCmd() *cli.Command {
	var (
		output string
		verify bool
	)

	return &cli.Command{
		Name:      "rebuild",
		Usage:     "Replace the texture of one container with a DDS file",
		ArgsUsage: "<original> <new.dds>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "output container path", Destination: &output},
			&cli.BoolFlag{Name: "verify", Aliases: []string{"v"}, Usage: "decode the written container again", Destination: &verify},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 2 {
				return errors.New("rebuild needs <original> and <new.dds>")
			}
			return runRebuild(ctx, c.Args().Get(0), c.Args().Get(1), output, verify)
		},
	}
}

func runRebuild(ctx context.Context, originalPath, ddsPath, output string, verify bool) error {
	log := logger.FromContext(ctx)

	original, err := os.ReadFile(originalPath)
	if err != nil {
		return errors.Wrap(err, "read original")
	}
	dds, err := os.ReadFile(ddsPath)
	if err != nil {
		return errors.Wrap(err, "read dds")
	}

	o := optimizer.New(optimizer.Config{Logger: log})
	out, res, err := o.Rebuild(original, dds)
	if err != nil {
		return errors.Wrapf(err, "rebuild %s", originalPath)
	}
	res.Name = originalPath
	for _, w := range res.Warnings {
		log.Warn("size ambiguity", "detail", w)
	}

	if err := optimizer.WriteFileAtomic(output, out); err != nil {
		return err
	}

	fmt.Printf("Original texture: %s\n", res.OldDims)
	fmt.Printf("New texture: %s, %d mips\n", res.NewDims, res.NewDims.Mips)
	fmt.Printf("Saved: %s\n", output)
	fmt.Printf("Size reduction: %d -> %d bytes (%.1f%%)\n", res.OriginalSize, res.OptimizedSize, res.Reduction())

	if verify {
		return runVerify(ctx, output)
	}
	return nil
}
