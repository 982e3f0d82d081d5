package texture

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Descriptor field offsets, relative to the descriptor start.
const (
	FieldWidth    = 0x00
	FieldHeight   = 0x02
	FieldFormat   = 0x08
	FieldMipCount = 0x0D

	// DescriptorSize covers every field up to and including the mip count.
	DescriptorSize = FieldMipCount + 1
)

const (
	// dataPointerWindow is how far past the format tag the data pointer may sit.
	dataPointerWindow = 64
	dataPointerMask   = 0xF0000000
	dataPointerMarker = 0x60000000
)

// ErrNoTexture is returned when no usable texture descriptor exists.
var ErrNoTexture = errors.New("no texture descriptor")

var tagPrefix = []byte("DXT")

// Descriptor is a texture descriptor found inside a resource body.
type Descriptor struct {
	Offset   int // start of the descriptor
	Width    uint16
	Height   uint16
	Format   Format
	MipCount uint8 // as stored; 0 means MaxMipLevels

	// DataPointer is the first word after the tag tagged with the physical
	// segment marker. Only set when HasDataPointer is true.
	DataPointer    uint32
	HasDataPointer bool
}

// TagOffset returns the offset of the format tag.
func (d *Descriptor) TagOffset() int {
	return d.Offset + FieldFormat
}

// Mips returns the effective mip count.
func (d *Descriptor) Mips() int {
	if d.MipCount == 0 {
		return MaxMipLevels
	}
	return int(d.MipCount)
}

// DataSize returns the byte size of the pixel payload the descriptor implies.
func (d *Descriptor) DataSize() uint64 {
	return MipmapSize(uint32(d.Width), uint32(d.Height), d.Format, d.Mips())
}

// PhysicalOffset returns the pixel data offset within the physical segment,
// or 0 when no data pointer was found.
func (d *Descriptor) PhysicalOffset() uint32 {
	if !d.HasDataPointer {
		return 0
	}
	return d.DataPointer &^ dataPointerMask
}

// Locator finds the texture descriptor in a resource body.
type Locator interface {
	Locate(body []byte) (*Descriptor, error)
}

// ScanLocator finds descriptors by scanning for their format tag.
// Only the first supported tag is considered, so dictionaries holding more
// than one texture are reduced to their first entry.
type ScanLocator struct{}

// Locate returns the first descriptor in body.
func (ScanLocator) Locate(body []byte) (*Descriptor, error) {
	tag, ok := nextTag(body, 0)
	if !ok {
		return nil, ErrNoTexture
	}
	d, ok := parseAt(body, tag)
	if !ok {
		return nil, errors.Wrapf(ErrNoTexture, "tag at 0x%x has no room for a descriptor", tag)
	}
	return d, nil
}

// ScanAll returns every parseable descriptor in body, in offset order.
func ScanAll(body []byte) []*Descriptor {
	var found []*Descriptor
	for pos := 0; ; {
		tag, ok := nextTag(body, pos)
		if !ok {
			return found
		}
		if d, ok := parseAt(body, tag); ok {
			found = append(found, d)
		}
		pos = tag + 1
	}
}

// nextTag returns the offset of the next supported format tag at or after pos.
func nextTag(body []byte, pos int) (int, bool) {
	for pos < len(body) {
		i := bytes.Index(body[pos:], tagPrefix)
		if i < 0 {
			return 0, false
		}
		tag := pos + i
		if ParseFormat(body[tag:]) != FormatUnknown {
			return tag, true
		}
		pos = tag + 1
	}
	return 0, false
}

func parseAt(body []byte, tag int) (*Descriptor, bool) {
	start := tag - FieldFormat
	if start < 0 || start+DescriptorSize > len(body) {
		return nil, false
	}

	d := &Descriptor{
		Offset:   start,
		Width:    binary.LittleEndian.Uint16(body[start+FieldWidth:]),
		Height:   binary.LittleEndian.Uint16(body[start+FieldHeight:]),
		Format:   ParseFormat(body[tag:]),
		MipCount: body[start+FieldMipCount],
	}

	end := min(tag+dataPointerWindow, len(body))
	for i := tag; i+4 <= end; i += 4 {
		word := binary.LittleEndian.Uint32(body[i:])
		if word&dataPointerMask == dataPointerMarker {
			d.DataPointer = word
			d.HasDataPointer = true
			break
		}
	}

	return d, true
}
