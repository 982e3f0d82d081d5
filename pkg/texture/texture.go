// Package texture provides the texture-side pieces of the RSC7 optimizer.
//
// Texture dictionaries embed a fixed-layout descriptor for each bitmap:
//
//	+0x00 width     uint16
//	+0x02 height    uint16
//	+0x08 format    [4]byte ("DXT1", "DXT3", "DXT5")
//	+0x0D mip count uint8 (0 means the maximum)
//
// The package locates that descriptor, computes block-compressed payload
// sizes, and converts pixel payloads to and from DDS files so they can be
// handed to an external resampler.
package texture

import (
	"encoding/binary"
	"fmt"
)

// Format identifies a block-compressed pixel format.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatDXT1
	FormatDXT3
	FormatDXT5
)

// FourCC codes as stored in DDS pixel formats and texture descriptors.
const (
	FourCCDXT1 = 0x31545844 // "DXT1"
	FourCCDXT3 = 0x33545844 // "DXT3"
	FourCCDXT5 = 0x35545844 // "DXT5"
)

// MaxMipLevels is the mip count assumed when a descriptor stores 0.
const MaxMipLevels = 12

// blockDim is the texel edge of a compression block.
const blockDim = 4

// ParseFormat maps a 4-byte tag to a Format.
func ParseFormat(tag []byte) Format {
	if len(tag) < 4 {
		return FormatUnknown
	}
	return FormatFromFourCC(binary.LittleEndian.Uint32(tag[:4]))
}

// FormatFromFourCC maps a DDS FourCC to a Format.
func FormatFromFourCC(fourCC uint32) Format {
	switch fourCC {
	case FourCCDXT1:
		return FormatDXT1
	case FourCCDXT3:
		return FormatDXT3
	case FourCCDXT5:
		return FormatDXT5
	default:
		return FormatUnknown
	}
}

// FourCC returns the DDS FourCC for f. Unknown formats map to DXT5, which is
// what the resampler is asked to produce.
func (f Format) FourCC() uint32 {
	switch f {
	case FormatDXT1:
		return FourCCDXT1
	case FormatDXT3:
		return FourCCDXT3
	default:
		return FourCCDXT5
	}
}

// Tag returns the 4-byte tag written into texture descriptors.
func (f Format) Tag() [4]byte {
	var tag [4]byte
	binary.LittleEndian.PutUint32(tag[:], f.FourCC())
	return tag
}

// BlockSize returns the byte size of one 4x4 block.
func (f Format) BlockSize() uint64 {
	if f == FormatDXT1 {
		return 8
	}
	return 16
}

// String returns a human-readable name.
func (f Format) String() string {
	switch f {
	case FormatDXT1:
		return "DXT1"
	case FormatDXT3:
		return "DXT3"
	case FormatDXT5:
		return "DXT5"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(f))
	}
}

// MipmapSize returns the byte size of a mip chain of the given format.
// Each level holds max(1, dim/4) blocks per axis; dimensions halve per level
// with a floor of 1.
func MipmapSize(width, height uint32, format Format, mips int) uint64 {
	blockSize := format.BlockSize()
	w, h := uint64(width), uint64(height)

	var total uint64
	for i := 0; i < mips; i++ {
		total += max(1, w/blockDim) * max(1, h/blockDim) * blockSize
		w = max(1, w/2)
		h = max(1, h/2)
	}
	return total
}

// LinearSize returns the byte size of the top mip level.
func LinearSize(width, height uint32, format Format) uint32 {
	return uint32(MipmapSize(width, height, format, 1))
}
