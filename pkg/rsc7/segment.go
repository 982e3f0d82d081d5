package rsc7

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/texture"
)

// VirtualSize is the size of the virtual segment of a single-texture
// dictionary.
const VirtualSize = 0x2000

// FallbackMipCount is written instead of a reported mip count of 0, which the
// descriptor reserves for "maximum".
const FallbackMipCount = 9

// Segments is a decompressed body split at the virtual segment boundary.
type Segments struct {
	Virtual  []byte // owned copy, safe to patch
	Physical []byte
}

// Split copies the first virtualSize bytes of body into the virtual segment.
// The physical segment aliases the remainder of body.
func Split(body []byte, virtualSize int) (*Segments, error) {
	if virtualSize < 0 || len(body) < virtualSize {
		return nil, errors.Wrapf(ErrFormat, "body of %d bytes is shorter than the virtual segment (%d)", len(body), virtualSize)
	}

	virtual := make([]byte, virtualSize)
	copy(virtual, body)

	return &Segments{
		Virtual:  virtual,
		Physical: body[virtualSize:],
	}, nil
}

// Patch holds the descriptor fields rewritten after a resize.
type Patch struct {
	Width    uint32
	Height   uint32
	MipCount uint32
	Format   texture.Format // FormatUnknown keeps the stored tag
}

// PatchDescriptor rewrites the dimensions, mip count, and format tag of d in
// the virtual segment. It reports whether a zero mip count was replaced with
// FallbackMipCount.
func PatchDescriptor(virtual []byte, d *texture.Descriptor, p Patch) (bool, error) {
	if d.Offset < 0 || d.Offset+texture.DescriptorSize > len(virtual) {
		return false, errors.Wrapf(ErrUnsupported, "descriptor at 0x%x lies outside the virtual segment", d.Offset)
	}
	if p.Width == 0 || p.Width > math.MaxUint16 || p.Height == 0 || p.Height > math.MaxUint16 {
		return false, errors.Wrapf(ErrUnsupported, "dimensions %dx%d do not fit the descriptor", p.Width, p.Height)
	}
	if p.MipCount > math.MaxUint8 {
		return false, errors.Wrapf(ErrUnsupported, "mip count %d does not fit the descriptor", p.MipCount)
	}

	mips := uint8(p.MipCount)
	substituted := mips == 0
	if substituted {
		mips = FallbackMipCount
	}

	binary.LittleEndian.PutUint16(virtual[d.Offset+texture.FieldWidth:], uint16(p.Width))
	binary.LittleEndian.PutUint16(virtual[d.Offset+texture.FieldHeight:], uint16(p.Height))
	if p.Format != texture.FormatUnknown {
		tag := p.Format.Tag()
		copy(virtual[d.Offset+texture.FieldFormat:], tag[:])
	}
	virtual[d.Offset+texture.FieldMipCount] = mips

	return substituted, nil
}

// Recombine pads physical with zeros to a page boundary and appends it to
// virtual.
func Recombine(virtual, physical []byte) []byte {
	padded := AlignPage(uint64(len(physical)))
	body := make([]byte, len(virtual)+int(padded))
	copy(body, virtual)
	copy(body[len(virtual):], physical)
	return body
}
