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

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check that a container decodes and holds its texture payload",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return errors.New("verify needs <file>")
			}
			return runVerify(ctx, c.Args().First())
		},
	}
}

func runVerify(ctx context.Context, path string) error {
	log := logger.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read container")
	}

	r, warnings, err := optimizer.New(optimizer.Config{Logger: log}).Verify(data)
	if err != nil {
		return errors.Wrapf(err, "verify %s", path)
	}
	for _, w := range warnings {
		log.Warn("size class", "file", path, "detail", w)
	}

	d := r.Texture
	fmt.Printf("OK: %s decompressed to %d bytes\n", path, len(r.Body))
	fmt.Printf("Texture: %dx%d %s, %d mips\n", d.Width, d.Height, d.Format, d.Mips())
	return nil
}
