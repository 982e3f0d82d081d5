// Package rsc7 implements the RSC7 resource container codec.
//
// A container is a 16-byte header followed by a raw-deflate body:
//
//	+0x00 magic          "RSC7"
//	+0x04 version        uint32
//	+0x08 virtual flags  uint32 (size class of the virtual segment)
//	+0x0C physical flags uint32 (size class of the physical segment)
//	+0x10 body           raw deflate
//
// The decompressed body is the virtual segment (structures) followed by the
// physical segment (pixel data), padded to a page boundary.
package rsc7

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Magic bytes identifying an RSC7 container.
var Magic = [4]byte{'R', 'S', 'C', '7'}

// HeaderSize is the fixed binary size of a container header.
const HeaderSize = 16

// Header is the container header.
type Header struct {
	Magic         [4]byte
	Version       uint32
	VirtualFlags  uint32
	PhysicalFlags uint32
}

// NewHeader creates a header for the given version and size classes.
func NewHeader(version, virtualFlags, physicalFlags uint32) *Header {
	return &Header{
		Magic:         Magic,
		Version:       version,
		VirtualFlags:  virtualFlags,
		PhysicalFlags: physicalFlags,
	}
}

// IsContainer reports whether data starts with the container magic.
func IsContainer(data []byte) bool {
	return len(data) >= len(Magic) && [4]byte(data[:4]) == Magic
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return errors.Wrapf(ErrFormat, "invalid magic: expected %q, got %q", Magic[:], h.Magic[:])
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
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.VirtualFlags)
	binary.LittleEndian.PutUint32(buf[12:16], h.PhysicalFlags)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return errors.Wrapf(ErrFormat, "header too short: need %d, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	h.VirtualFlags = binary.LittleEndian.Uint32(buf[8:12])
	h.PhysicalFlags = binary.LittleEndian.Uint32(buf[12:16])
}
