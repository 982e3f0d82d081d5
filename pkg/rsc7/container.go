package rsc7

import (
	"github.com/pkg/errors"

	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/texture"
)

// Resource is a decoded single-texture container.
type Resource struct {
	Header   Header
	Body     []byte // decompressed body
	Segments *Segments
	Texture  *texture.Descriptor
}

// Unpack validates the header and inflates the body.
func Unpack(data []byte) (*Header, []byte, error) {
	h := &Header{}
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, nil, err
	}

	body, err := Decompress(data[HeaderSize:])
	if err != nil {
		return nil, nil, err
	}
	return h, body, nil
}

// Decode unpacks a container, splits its body, and locates the texture
// descriptor inside the virtual segment.
func Decode(data []byte, loc texture.Locator) (*Resource, error) {
	h, body, err := Unpack(data)
	if err != nil {
		return nil, err
	}

	segs, err := Split(body, VirtualSize)
	if err != nil {
		return nil, err
	}

	desc, err := loc.Locate(segs.Virtual)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupported, "locate texture: %v", err)
	}

	return &Resource{
		Header:   *h,
		Body:     body,
		Segments: segs,
		Texture:  desc,
	}, nil
}

// PixelData returns the payload of the located texture, see PixelDataOf.
func (r *Resource) PixelData() (data []byte, complete bool) {
	return r.PixelDataOf(r.Texture)
}

// PixelDataOf returns the payload of d from the physical segment, starting at
// its data pointer offset. The slice is clipped to the segment; complete
// reports whether the full payload the descriptor implies was present.
func (r *Resource) PixelDataOf(d *texture.Descriptor) (data []byte, complete bool) {
	phys := r.Segments.Physical
	start := uint64(d.PhysicalOffset())
	end := start + d.DataSize()

	if start > uint64(len(phys)) {
		return nil, false
	}
	if end > uint64(len(phys)) {
		return phys[start:], false
	}
	return phys[start:end], true
}

// Textures returns every supported descriptor in the virtual segment. The
// first one is the texture Decode located.
func (r *Resource) Textures() []*texture.Descriptor {
	return texture.ScanAll(r.Segments.Virtual)
}

// Encode builds a container from segments. The physical segment is padded to
// a page boundary, the size classes are derived from the padded lengths, and
// the physical-data flag is set when pixel data is present.
func Encode(version uint32, segs *Segments) ([]byte, error) {
	body := Recombine(segs.Virtual, segs.Physical)
	physicalSize := uint64(len(body) - len(segs.Virtual))
	if uint64(len(segs.Virtual)) > MaxSegmentSize || physicalSize > MaxSegmentSize {
		return nil, errors.Wrapf(ErrUnsupported, "segment too large for a size class (%d virtual, %d physical bytes)", len(segs.Virtual), physicalSize)
	}

	virtualFlags := EncodeSizeClass(uint64(len(segs.Virtual)))
	physicalFlags := EncodeSizeClass(physicalSize)
	if physicalSize > 0 {
		physicalFlags |= PhysicalDataFlag
	}

	compressed, err := Compress(body)
	if err != nil {
		return nil, err
	}

	out := make([]byte, HeaderSize+len(compressed))
	NewHeader(version, virtualFlags, physicalFlags).EncodeTo(out)
	copy(out[HeaderSize:], compressed)
	return out, nil
}
