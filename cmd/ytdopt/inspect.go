package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/rsc7"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/texture"
)

type inspectReport struct {
	File          string             `json:"file"`
	Size          int                `json:"size"`
	Version       uint32             `json:"version"`
	VirtualFlags  uint32             `json:"virtual_flags"`
	PhysicalFlags uint32             `json:"physical_flags"`
	VirtualBound  uint64             `json:"virtual_bound"`
	PhysicalBound uint64             `json:"physical_bound"`
	HasPhysical   bool               `json:"has_physical_data"`
	BodySize      int                `json:"body_size"`
	PhysicalSize  int                `json:"physical_size"`
	Textures      []inspectedTexture `json:"textures"`
}

type inspectedTexture struct {
	Offset         int     `json:"offset"`
	Width          uint16  `json:"width"`
	Height         uint16  `json:"height"`
	Format         string  `json:"format"`
	Mips           int     `json:"mips"`
	DataSize       uint64  `json:"data_size"`
	PhysicalOffset *uint32 `json:"physical_offset,omitempty"`
}

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show the header, size classes and texture descriptors of a container",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return errors.New("inspect needs <file>")
			}
			report, err := inspectFile(c.Args().First())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(os.Stdout, report)
			}
			report.print(os.Stdout)
			return nil
		},
	}
}

func inspectFile(path string) (*inspectReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read container")
	}

	h, body, err := rsc7.Unpack(data)
	if err != nil {
		return nil, errors.Wrapf(err, "inspect %s", path)
	}
	segs, err := rsc7.Split(body, rsc7.VirtualSize)
	if err != nil {
		return nil, errors.Wrapf(err, "inspect %s", path)
	}

	report := &inspectReport{
		File:          path,
		Size:          len(data),
		Version:       h.Version,
		VirtualFlags:  h.VirtualFlags,
		PhysicalFlags: h.PhysicalFlags,
		VirtualBound:  rsc7.SizeClassUpperBound(h.VirtualFlags),
		PhysicalBound: rsc7.SizeClassUpperBound(h.PhysicalFlags &^ rsc7.PhysicalDataFlag),
		HasPhysical:   h.PhysicalFlags&rsc7.PhysicalDataFlag != 0,
		BodySize:      len(body),
		PhysicalSize:  len(segs.Physical),
		Textures:      []inspectedTexture{},
	}

	for _, d := range texture.ScanAll(segs.Virtual) {
		t := inspectedTexture{
			Offset:   d.Offset,
			Width:    d.Width,
			Height:   d.Height,
			Format:   d.Format.String(),
			Mips:     d.Mips(),
			DataSize: d.DataSize(),
		}
		if d.HasDataPointer {
			off := d.PhysicalOffset()
			t.PhysicalOffset = &off
		}
		report.Textures = append(report.Textures, t)
	}
	return report, nil
}

func (r *inspectReport) print(w io.Writer) {
	fmt.Fprintf(w, "File: %s (%d bytes)\n", r.File, r.Size)
	fmt.Fprintf(w, "Version: %d\n", r.Version)
	fmt.Fprintf(w, "Virtual flags:  0x%08X (<= %d bytes)\n", r.VirtualFlags, r.VirtualBound)
	fmt.Fprintf(w, "Physical flags: 0x%08X (<= %d bytes, data present: %t)\n", r.PhysicalFlags, r.PhysicalBound, r.HasPhysical)
	fmt.Fprintf(w, "Body: %d bytes (virtual %d, physical %d)\n", r.BodySize, r.BodySize-r.PhysicalSize, r.PhysicalSize)
	fmt.Fprintf(w, "Textures: %d\n", len(r.Textures))
	for i, t := range r.Textures {
		fmt.Fprintf(w, "  [%d] 0x%04X %dx%d %s, %d mips, %d bytes", i, t.Offset, t.Width, t.Height, t.Format, t.Mips, t.DataSize)
		if t.PhysicalOffset != nil {
			fmt.Fprintf(w, " at physical 0x%X", *t.PhysicalOffset)
		}
		fmt.Fprintln(w)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode json")
	}
	return nil
}
