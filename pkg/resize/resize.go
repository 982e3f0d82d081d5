// Package resize runs the external resampler that turns one DDS image into a
// smaller one.
package resize

import (
	"context"
	"fmt"
)

// DefaultFormat is the block-compressed format requested from the resampler.
const DefaultFormat = "BC3_UNORM"

// Target describes the image a Resizer should produce.
type Target struct {
	Name   string // base name for any intermediate files
	Width  uint32
	Height uint32
	Mips   uint32
}

func (t Target) String() string {
	return fmt.Sprintf("%dx%d/%d", t.Width, t.Height, t.Mips)
}

// Resizer resamples a DDS image to the target dimensions and returns the new
// DDS image.
type Resizer interface {
	Resize(ctx context.Context, input []byte, t Target) ([]byte, error)
}

// Func adapts a function to the Resizer interface.
type Func func(ctx context.Context, input []byte, t Target) ([]byte, error)

func (f Func) Resize(ctx context.Context, input []byte, t Target) ([]byte, error) {
	return f(ctx, input, t)
}
