// Package archive reads and writes dump archives: zstd-compressed copies of
// decompressed RSC7 bodies that keep enough header state to rebuild the
// container.
package archive

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/rsc7"
)

// Magic bytes identifying a dump archive header.
var Magic = [4]byte{'R', 'D', 'M', 'P'}

// HeaderSize is the fixed binary size of an archive header.
const HeaderSize = 32 // 4 + 4 + 4 + 4 + 8 + 8 bytes

// MaxLength is the largest body a container can hold: a virtual and a
// physical segment of rsc7.MaxSegmentSize each.
const MaxLength = 2 * rsc7.MaxSegmentSize

// headerLength is the number of header bytes after the magic and length word.
const headerLength = HeaderSize - 8

// Header is the header of a dump archive.
type Header struct {
	Magic            [4]byte
	HeaderLength     uint32
	Version          uint32 // container version
	VirtualSize      uint32 // virtual segment size within the body
	Length           uint64 // decompressed body size
	CompressedLength uint64
}

// NewHeader creates a header for a body of the given size.
func NewHeader(version, virtualSize uint32, length, compressedLength uint64) *Header {
	return &Header{
		Magic:            Magic,
		HeaderLength:     headerLength,
		Version:          version,
		VirtualSize:      virtualSize,
		Length:           length,
		CompressedLength: compressedLength,
	}
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return errors.Errorf("invalid magic: expected %x, got %x", Magic, h.Magic)
	}
	if h.HeaderLength != headerLength {
		return errors.Errorf("invalid header length: expected %d, got %d", headerLength, h.HeaderLength)
	}
	if h.Length == 0 {
		return errors.New("body size is zero")
	}
	if h.Length > MaxLength {
		return errors.Errorf("body size %d exceeds the container limit %d", h.Length, MaxLength)
	}
	if uint64(h.VirtualSize) > h.Length {
		return errors.Errorf("virtual size %d exceeds body size %d", h.VirtualSize, h.Length)
	}
	if h.CompressedLength == 0 {
		return errors.New("compressed size is zero")
	}
	return nil
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to buf, which must hold HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.HeaderLength)
	binary.LittleEndian.PutUint32(buf[8:12], h.Version)
	binary.LittleEndian.PutUint32(buf[12:16], h.VirtualSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.Length)
	binary.LittleEndian.PutUint64(buf[24:32], h.CompressedLength)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return errors.Errorf("header data too short: need %d, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0:4])
	h.HeaderLength = binary.LittleEndian.Uint32(buf[4:8])
	h.Version = binary.LittleEndian.Uint32(buf[8:12])
	h.VirtualSize = binary.LittleEndian.Uint32(buf[12:16])
	h.Length = binary.LittleEndian.Uint64(buf[16:24])
	h.CompressedLength = binary.LittleEndian.Uint64(buf[24:32])
}
