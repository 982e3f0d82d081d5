package optimizer

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/resize"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/rsc7"
	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/texture"
)

const descriptorOffset = 0x120

// buildContainer returns a single-texture container with a descriptor at
// descriptorOffset and a full pixel payload.
func buildContainer(t testing.TB, width, height uint16, format texture.Format, mips uint8) []byte {
	t.Helper()

	virtual := make([]byte, rsc7.VirtualSize)
	binary.LittleEndian.PutUint16(virtual[descriptorOffset+texture.FieldWidth:], width)
	binary.LittleEndian.PutUint16(virtual[descriptorOffset+texture.FieldHeight:], height)
	tag := format.Tag()
	copy(virtual[descriptorOffset+texture.FieldFormat:], tag[:])
	virtual[descriptorOffset+texture.FieldMipCount] = mips

	d := texture.Descriptor{Width: width, Height: height, Format: format, MipCount: mips}
	pixels := make([]byte, d.DataSize())
	for i := range pixels {
		pixels[i] = byte(i*7 + 3)
	}

	data, err := rsc7.Encode(13, &rsc7.Segments{Virtual: virtual, Physical: pixels})
	require.NoError(t, err)
	return data
}

// pattern returns n non-zero bytes.
func pattern(n uint64) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i%251 + 1)
	}
	return p
}

// scalingResizer produces a DXT5 image of exactly the requested target.
func scalingResizer() resize.Func {
	return func(_ context.Context, input []byte, tg resize.Target) ([]byte, error) {
		if _, err := texture.ImportDDS(input); err != nil {
			return nil, err
		}
		return texture.ExportDDS(&texture.Image{
			Width:    tg.Width,
			Height:   tg.Height,
			MipCount: tg.Mips,
			Format:   texture.FormatDXT5,
			Pixels:   pattern(texture.MipmapSize(tg.Width, tg.Height, texture.FormatDXT5, int(tg.Mips))),
		}), nil
	}
}

// forbiddenResizer fails the test when called.
func forbiddenResizer(t *testing.T) resize.Func {
	return func(context.Context, []byte, resize.Target) ([]byte, error) {
		t.Error("resizer must not be called")
		return nil, nil
	}
}
