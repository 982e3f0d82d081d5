package texture

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// DDS header constants
const (
	DDSMagic      = 0x20534444 // "DDS "
	DDSHeaderSize = 124
	DDSFileHeader = 4 + DDSHeaderSize

	DDSFlagCaps        = 0x00000001
	DDSFlagHeight      = 0x00000002
	DDSFlagWidth       = 0x00000004
	DDSFlagPixelFormat = 0x00001000
	DDSFlagMipMapCount = 0x00020000
	DDSFlagLinearSize  = 0x00080000

	DDPFFourCC = 0x00000004

	DDSCapsComplex = 0x00000008
	DDSCapsTexture = 0x00001000
	DDSCapsMipMap  = 0x00400000

	ddsPixelFormatSize = 32
)

// ErrNotDDS is returned when interchange data lacks the DDS magic.
var ErrNotDDS = errors.New("not a DDS file")

// DDSHeader is the DDS magic plus the 124-byte header.
type DDSHeader struct {
	Magic             uint32
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       DDSPixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// DDSPixelFormat is the 32-byte pixel format block.
type DDSPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// Image is a block-compressed pixel payload with its dimensions.
type Image struct {
	Width    uint32
	Height   uint32
	MipCount uint32
	Format   Format
	FourCC   uint32
	Pixels   []byte
}

// ExportDDS wraps img in a DDS file. Pixels are written unmodified.
func ExportDDS(img *Image) []byte {
	flags := uint32(DDSFlagCaps | DDSFlagHeight | DDSFlagWidth | DDSFlagPixelFormat | DDSFlagLinearSize)
	caps := uint32(DDSCapsTexture)
	if img.MipCount > 1 {
		flags |= DDSFlagMipMapCount
		caps |= DDSCapsComplex | DDSCapsMipMap
	}

	header := DDSHeader{
		Magic:             DDSMagic,
		Size:              DDSHeaderSize,
		Flags:             flags,
		Height:            img.Height,
		Width:             img.Width,
		PitchOrLinearSize: LinearSize(img.Width, img.Height, img.Format),
		MipMapCount:       img.MipCount,
		PixelFormat: DDSPixelFormat{
			Size:   ddsPixelFormatSize,
			Flags:  DDPFFourCC,
			FourCC: img.Format.FourCC(),
		},
		Caps: caps,
	}

	buf := bytes.NewBuffer(make([]byte, 0, DDSFileHeader+len(img.Pixels)))
	// Writes into a bytes.Buffer of a fixed-size struct cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, &header)
	buf.Write(img.Pixels)
	return buf.Bytes()
}

// ImportDDS reads the header fields the optimizer needs and returns the
// pixel bytes that follow the fixed header.
func ImportDDS(data []byte) (*Image, error) {
	if len(data) < DDSFileHeader {
		return nil, errors.Wrapf(ErrNotDDS, "need %d header bytes, got %d", DDSFileHeader, len(data))
	}

	var header DDSHeader
	if err := binary.Read(bytes.NewReader(data[:DDSFileHeader]), binary.LittleEndian, &header); err != nil {
		return nil, errors.Wrap(err, "read DDS header")
	}
	if header.Magic != DDSMagic {
		return nil, errors.Wrapf(ErrNotDDS, "bad magic 0x%08x", header.Magic)
	}

	return &Image{
		Width:    header.Width,
		Height:   header.Height,
		MipCount: header.MipMapCount,
		Format:   FormatFromFourCC(header.PixelFormat.FourCC),
		FourCC:   header.PixelFormat.FourCC,
		Pixels:   data[DDSFileHeader:],
	}, nil
}
