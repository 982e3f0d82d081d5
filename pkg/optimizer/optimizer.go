// Package optimizer shrinks the texture inside RSC7 texture dictionaries.
//
// Process walks one container through decode, threshold check, export,
// resampling, import and rebuild. Any container it cannot or need not rebuild
// comes back byte-identical. Rebuild and Verify are the strict variants used
// when a caller asks for one specific file and wants errors instead of
// pass-through.
package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/JGCdev/gta-fivem-texture-optimizer/internal/logger"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/resize"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/rsc7"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/texture"
)

const (
	DefaultTargetSize = 512
	DefaultTimeout    = 60 * time.Second
)

// Config configures an Optimizer. Zero fields take defaults.
type Config struct {
	TargetSize uint32
	Timeout    time.Duration
	Locator    texture.Locator
	Resizer    resize.Resizer
	Logger     logger.Logger
}

// Optimizer rebuilds containers with resampled textures. It holds only
// read-only configuration and is safe for concurrent use.
type Optimizer struct {
	target  uint32
	timeout time.Duration
	locator texture.Locator
	resizer resize.Resizer
	log     logger.Logger
}

// New returns an Optimizer for cfg.
func New(cfg Config) *Optimizer {
	o := &Optimizer{
		target:  cfg.TargetSize,
		timeout: cfg.Timeout,
		locator: cfg.Locator,
		resizer: cfg.Resizer,
		log:     cfg.Logger,
	}
	if o.target == 0 {
		o.target = DefaultTargetSize
	}
	if o.timeout <= 0 {
		o.timeout = DefaultTimeout
	}
	if o.locator == nil {
		o.locator = texture.ScanLocator{}
	}
	if o.log == nil {
		o.log = logger.Discard()
	}
	return o
}

// TargetSize returns the edge length textures are shrunk to.
func (o *Optimizer) TargetSize() uint32 {
	return o.target
}

// Process optimizes one container. It never fails: containers that are not
// rebuilt are returned unchanged in Result.Output with the reason recorded.
func (o *Optimizer) Process(ctx context.Context, name string, data []byte) Result {
	start := time.Now()
	res := newResult(name, data)
	o.process(ctx, data, &res)
	res.Elapsed = time.Since(start)
	return res
}

func (o *Optimizer) process(ctx context.Context, data []byte, res *Result) {
	if !rsc7.IsContainer(data) {
		res.passThrough(StatusSkipped, ReasonNotContainer, data, nil)
		return
	}

	r, err := rsc7.Decode(data, o.locator)
	if err != nil {
		reason := ReasonNoTexture
		if errors.Is(err, rsc7.ErrFormat) {
			reason = ReasonUnreadable
		}
		res.passThrough(StatusSkipped, reason, data, err)
		return
	}

	d := r.Texture
	res.OldDims = &Dims{Width: uint32(d.Width), Height: uint32(d.Height), Mips: uint32(d.Mips())}
	if uint32(d.Width) <= o.target && uint32(d.Height) <= o.target {
		res.passThrough(StatusSkipped, ReasonAlreadyOptimal, data, nil)
		return
	}

	target := PlanTarget(uint32(d.Width), uint32(d.Height), o.target)
	target.Name = res.Name
	o.log.Debug("planned resize", "file", res.Name, "from", res.OldDims.String(), "to", target.String(), "format", d.Format)

	pixels, complete := Payload(r)
	if !complete {
		res.warn(fmt.Sprintf("pixel payload truncated: descriptor implies %d bytes, physical segment has %d", d.DataSize(), len(pixels)))
	}

	dds := texture.ExportDDS(&texture.Image{
		Width:    uint32(d.Width),
		Height:   uint32(d.Height),
		MipCount: uint32(d.Mips()),
		Format:   d.Format,
		Pixels:   pixels,
	})

	out, err := o.resize(ctx, dds, target)
	if err != nil {
		res.passThrough(StatusFailed, ReasonResampler, data, err)
		return
	}

	img, err := importImage(out)
	if err != nil {
		res.passThrough(StatusFailed, ReasonImport, data, err)
		return
	}

	rebuilt, err := rebuild(r, img, res)
	if err != nil {
		res.passThrough(StatusFailed, ReasonRebuild, data, err)
		return
	}
	res.optimized(rebuilt)
}

func (o *Optimizer) resize(ctx context.Context, dds []byte, target resize.Target) ([]byte, error) {
	if o.resizer == nil {
		return nil, errors.Wrap(rsc7.ErrExternalTool, "no resampler configured")
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	out, err := o.resizer.Resize(ctx, dds, target)
	if err != nil {
		if !errors.Is(err, rsc7.ErrExternalTool) {
			err = errors.Wrapf(rsc7.ErrExternalTool, "resize %s: %v", target, err)
		}
		return nil, err
	}
	return out, nil
}

// Rebuild replaces the texture of original with the DDS image dds. Every
// error is returned; nothing is passed through.
func (o *Optimizer) Rebuild(original, dds []byte) ([]byte, Result, error) {
	res := newResult("", original)

	r, err := rsc7.Decode(original, o.locator)
	if err != nil {
		res.passThrough(StatusFailed, ReasonUnreadable, original, err)
		return nil, res, err
	}
	d := r.Texture
	res.OldDims = &Dims{Width: uint32(d.Width), Height: uint32(d.Height), Mips: uint32(d.Mips())}

	img, err := importImage(dds)
	if err != nil {
		res.passThrough(StatusFailed, ReasonImport, original, err)
		return nil, res, err
	}

	out, err := rebuild(r, img, &res)
	if err != nil {
		res.passThrough(StatusFailed, ReasonRebuild, original, err)
		return nil, res, err
	}

	res.optimized(out)
	return out, res, nil
}

// Verify decodes data strictly and checks that the header size classes cover
// the segments and that the physical segment holds the full payload. Size
// classes that under-report are returned as warnings since older tools wrote
// them.
func (o *Optimizer) Verify(data []byte) (*rsc7.Resource, []string, error) {
	r, err := rsc7.Decode(data, o.locator)
	if err != nil {
		return nil, nil, err
	}

	var warnings []string
	virtual := uint64(len(r.Segments.Virtual))
	physical := uint64(len(r.Segments.Physical))

	if ub := rsc7.SizeClassUpperBound(r.Header.VirtualFlags); ub < virtual {
		warnings = append(warnings, fmt.Sprintf("virtual size class covers %d bytes, segment has %d", ub, virtual))
	}
	if physical > 0 && r.Header.PhysicalFlags&rsc7.PhysicalDataFlag == 0 {
		warnings = append(warnings, "physical data flag not set")
	}
	if ub := rsc7.SizeClassUpperBound(r.Header.PhysicalFlags); ub < physical {
		warnings = append(warnings, fmt.Sprintf("physical size class covers %d bytes, segment has %d", ub, physical))
	}

	if pixels, complete := Payload(r); !complete {
		return r, warnings, errors.Wrapf(rsc7.ErrFormat, "pixel payload truncated: descriptor implies %d bytes, physical segment has %d",
			r.Texture.DataSize(), len(pixels))
	}
	return r, warnings, nil
}

// Payload returns the texture bytes at the start of the physical segment,
// sized by the descriptor and clipped to the segment. complete reports
// whether nothing was clipped.
func Payload(r *rsc7.Resource) (pixels []byte, complete bool) {
	phys := r.Segments.Physical
	size := r.Texture.DataSize()
	if size > uint64(len(phys)) {
		return phys, false
	}
	return phys[:size], true
}

func importImage(dds []byte) (*texture.Image, error) {
	img, err := texture.ImportDDS(dds)
	if err != nil {
		return nil, errors.Wrapf(rsc7.ErrFormat, "import resampled image: %v", err)
	}
	return img, nil
}

// rebuild patches the descriptor of r for img and encodes a new container
// with img's pixels as the physical segment.
func rebuild(r *rsc7.Resource, img *texture.Image, res *Result) ([]byte, error) {
	if img.Format == texture.FormatUnknown {
		res.warn(fmt.Sprintf("resampled image has unsupported fourcc 0x%08x, format tag kept", img.FourCC))
	}

	substituted, err := rsc7.PatchDescriptor(r.Segments.Virtual, r.Texture, rsc7.Patch{
		Width:    img.Width,
		Height:   img.Height,
		MipCount: img.MipCount,
		Format:   img.Format,
	})
	if err != nil {
		return nil, err
	}

	format := img.Format
	if format == texture.FormatUnknown {
		format = r.Texture.Format
	}
	if need := texture.MipmapSize(img.Width, img.Height, format, int(max(1, img.MipCount))); uint64(len(img.Pixels)) < need {
		return nil, errors.Wrapf(rsc7.ErrFormat, "resampled image holds %d pixel bytes, %dx%d %s with %d mips needs %d",
			len(img.Pixels), img.Width, img.Height, format, max(1, img.MipCount), need)
	}

	mips := img.MipCount
	if substituted {
		mips = rsc7.FallbackMipCount
		res.warn(fmt.Sprintf("resampled image reports no mip count, stored %d", rsc7.FallbackMipCount))
	}
	res.NewDims = &Dims{Width: img.Width, Height: img.Height, Mips: mips}

	return rsc7.Encode(r.Header.Version, &rsc7.Segments{
		Virtual:  r.Segments.Virtual,
		Physical: img.Pixels,
	})
}
