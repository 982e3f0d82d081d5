package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/JGCdev/gta-fivem-texture-optimizer/internal/logger"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/archive"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/optimizer"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/rsc7"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/texture"
)

func extractCmd() *cli.Command {
	var (
		outputDir string
		dump      bool
	)

	return &cli.Command{
		Name:      "extract",
		Usage:     "Write the textures of a container as DDS files",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Required: true, Usage: "output directory", Destination: &outputDir},
			&cli.BoolFlag{Name: "dump", Usage: "also write the decompressed body as a dump archive", Destination: &dump},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return errors.New("extract needs <file>")
			}
			return runExtract(ctx, c.Args().First(), outputDir, dump)
		},
	}
}

func runExtract(ctx context.Context, path, outputDir string, dump bool) error {
	log := logger.FromContext(ctx).With("file", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read container")
	}

	r, err := rsc7.Decode(data, texture.ScanLocator{})
	if err != nil {
		return errors.Wrapf(err, "extract %s", path)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, d := range r.Textures() {
		pixels, complete := r.PixelDataOf(d)
		if !complete {
			log.Warn("texture payload truncated", "texture", i, "want", d.DataSize(), "have", len(pixels))
		}

		dds := texture.ExportDDS(&texture.Image{
			Width:    uint32(d.Width),
			Height:   uint32(d.Height),
			MipCount: uint32(d.Mips()),
			Format:   d.Format,
			Pixels:   pixels,
		})

		out := filepath.Join(outputDir, fmt.Sprintf("%s_tex%d.dds", base, i))
		if err := optimizer.WriteFileAtomic(out, dds); err != nil {
			return err
		}
		log.Info("texture extracted", "texture", i, "dims", fmt.Sprintf("%dx%d", d.Width, d.Height),
			"format", d.Format.String(), "mips", d.Mips(), "output", out)
	}

	if dump {
		out := filepath.Join(outputDir, base+".rdmp")
		err := archive.WriteFile(out, &archive.Dump{
			Version:     r.Header.Version,
			VirtualSize: rsc7.VirtualSize,
			Body:        r.Body,
		})
		if err != nil {
			return errors.Wrap(err, "write dump")
		}
		log.Info("body dumped", "output", out, "size", len(r.Body))
	}
	return nil
}
