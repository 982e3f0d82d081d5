package optimizer

import (
	"math/bits"

	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/resize"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/texture"
)

// MinDimension is the smallest edge a planned texture may have.
const MinDimension = 4

// PlanTarget scales width and height so the longer edge fits target, keeping
// the aspect ratio, then rounds each edge up to a power of two. The mip count
// covers the shorter edge down to one pixel, capped at texture.MaxMipLevels.
func PlanTarget(width, height, target uint32) resize.Target {
	ratio := min(float64(target)/float64(width), float64(target)/float64(height))

	w := nextPow2(max(MinDimension, uint32(float64(width)*ratio)))
	h := nextPow2(max(MinDimension, uint32(float64(height)*ratio)))
	mips := min(texture.MaxMipLevels, bits.Len32(min(w, h)))

	return resize.Target{Width: w, Height: h, Mips: uint32(mips)}
}

// IsPow2 reports whether n is a power of two.
func IsPow2(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

func nextPow2(n uint32) uint32 {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len32(n-1)
}
