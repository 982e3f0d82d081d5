package rsc7

import "math/bits"

// PageSize is the allocation unit size classes count in.
const PageSize = 0x1000

// MaxSegmentSize is the largest segment length a size class can describe.
const MaxSegmentSize = (1<<16 - 1) * PageSize

// PhysicalDataFlag is ORed into the physical size class of a container that
// carries pixel data. It shares bit 7 with the top bit of the base shift.
const PhysicalDataFlag = 0x80

// Size-class descriptor layout.
const (
	baseShiftPos  = 4
	baseShiftMask = 0xF
	multPos       = 17
	multMask      = 0x7F
	shiftPos      = 24
	shiftMask     = 0xF
)

// EncodeSizeClass encodes a byte length as a size-class descriptor.
//
// The length is rounded up to pages and split into a power-of-two base and
// the remaining extra pages. Extra pages are stored as a 7-bit multiplier
// scaled by 1<<shift; when the multiplier would overflow, shift grows until
// it fits. The decoded length never falls below n, see SizeClassUpperBound.
// Lengths of 1<<16 pages or more do not fit the 4-bit base shift.
func EncodeSizeClass(n uint64) uint32 {
	if n == 0 {
		return 0
	}

	pages := pageCount(n)
	baseShift := uint(bits.Len64(pages) - 1)
	extra := pages - 1<<baseShift

	var shift uint
	for extra>>shift > multMask {
		shift++
	}
	mult := extra >> shift

	return uint32(baseShift<<baseShiftPos) | uint32(mult<<multPos) | uint32(shift<<shiftPos)
}

// EncodeSizeClassSaturating is the batch tool's variant: the multiplier is
// clamped at 127 and shift stays 0. It under-reports lengths whose extra
// pages exceed 127 and is kept for comparison only.
func EncodeSizeClassSaturating(n uint64) uint32 {
	if n == 0 {
		return 0
	}

	pages := pageCount(n)
	baseShift := uint(bits.Len64(pages) - 1)
	mult := min(pages-1<<baseShift, multMask)

	return uint32(baseShift<<baseShiftPos) | uint32(mult<<multPos)
}

// SizeClassUpperBound returns the largest byte length desc can stand for.
// desc must not carry PhysicalDataFlag. A zero descriptor is shared by empty
// and single-page segments and decodes to one page.
func SizeClassUpperBound(desc uint32) uint64 {
	baseShift := uint64(desc>>baseShiftPos) & baseShiftMask
	mult := uint64(desc>>multPos) & multMask
	shift := uint64(desc>>shiftPos) & shiftMask

	pages := uint64(1)<<baseShift + (mult+1)<<shift - 1
	return pages * PageSize
}

// AlignPage rounds n up to a multiple of PageSize.
func AlignPage(n uint64) uint64 {
	return pageCount(n) * PageSize
}

func pageCount(n uint64) uint64 {
	return (n + PageSize - 1) / PageSize
}
