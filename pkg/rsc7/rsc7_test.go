package rsc7

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/texture"
)

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := NewHeader(13, 0x10, 0x80)

		data, err := original.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, HeaderSize)
		assert.Equal(t, []byte("RSC7"), data[:4])

		decoded := &Header{}
		require.NoError(t, decoded.UnmarshalBinary(data))
		assert.Equal(t, *original, *decoded)
	})

	t.Run("InvalidMagic", func(t *testing.T) {
		h := &Header{Magic: [4]byte{'R', 'S', 'C', '8'}}
		assert.True(t, errors.Is(h.Validate(), ErrFormat))
	})

	t.Run("Short", func(t *testing.T) {
		err := (&Header{}).UnmarshalBinary([]byte("RSC7"))
		assert.True(t, errors.Is(err, ErrFormat))
	})

	t.Run("IsContainer", func(t *testing.T) {
		assert.True(t, IsContainer([]byte("RSC7....")))
		assert.False(t, IsContainer([]byte("RSC")))
		assert.False(t, IsContainer([]byte("DDS ....")))
	})
}

func TestDeflate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	random := make([]byte, 100_000)
	rng.Read(random)

	inputs := map[string][]byte{
		"Empty":      {},
		"Short":      []byte("Hello, World! This is test data for compression."),
		"Zeros":      make([]byte, 64*1024),
		"Random":     random,
		"Repetitive": bytes.Repeat([]byte("DXT5"), 50_000),
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			compressed, err := Compress(in)
			require.NoError(t, err)

			out, err := Decompress(compressed)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(in, out))
		})
	}

	t.Run("Truncated", func(t *testing.T) {
		compressed, err := Compress(random)
		require.NoError(t, err)

		_, err = Decompress(compressed[:len(compressed)/2])
		assert.True(t, errors.Is(err, ErrFormat))
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := Decompress([]byte{0xff, 0xff, 0xff, 0xff})
		assert.True(t, errors.Is(err, ErrFormat))
	})
}

func TestEncodeSizeClass(t *testing.T) {
	tests := []struct {
		size     uint64
		expected uint32
	}{
		{0, 0},
		{1, 0},
		{PageSize, 0},
		{VirtualSize, 0x10},
		{3 * PageSize, 0x10 | 1<<17},
		{256 * PageSize, 0x80},
		{456 * PageSize, 0x80 | 100<<17 | 1<<24},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, EncodeSizeClass(tt.size), "size %d", tt.size)
	}
}

func TestSizeClassUpperBound(t *testing.T) {
	t.Run("NeverUnderEstimates", func(t *testing.T) {
		for pages := uint64(0); pages <= 1<<14; pages++ {
			for _, n := range []uint64{pages * PageSize, pages*PageSize + 1, pages*PageSize + PageSize - 1} {
				assert.GreaterOrEqual(t, SizeClassUpperBound(EncodeSizeClass(n)), n, "size %d", n)
			}
		}

		rng := rand.New(rand.NewSource(1))
		for i := 0; i < 10_000; i++ {
			n := uint64(rng.Int63n(1 << 27))
			require.GreaterOrEqual(t, SizeClassUpperBound(EncodeSizeClass(n)), n, "size %d", n)
		}
	})

	t.Run("Monotonic", func(t *testing.T) {
		prev := SizeClassUpperBound(EncodeSizeClass(0))
		for n := uint64(PageSize / 2); n <= 1<<27; n += PageSize / 2 {
			cur := SizeClassUpperBound(EncodeSizeClass(n))
			require.GreaterOrEqual(t, cur, prev, "size %d", n)
			prev = cur
		}
	})

	t.Run("ExactForSmallExtras", func(t *testing.T) {
		for pages := uint64(1); pages < 256; pages++ {
			assert.Equal(t, pages*PageSize, SizeClassUpperBound(EncodeSizeClass(pages*PageSize)))
		}
	})

	t.Run("SaturatingVariantUnderReports", func(t *testing.T) {
		n := uint64(456 * PageSize)
		assert.Less(t, SizeClassUpperBound(EncodeSizeClassSaturating(n)), n)
		assert.Equal(t, EncodeSizeClass(3*PageSize), EncodeSizeClassSaturating(3*PageSize))
	})
}

func TestSegments(t *testing.T) {
	t.Run("SplitCopiesVirtual", func(t *testing.T) {
		body := bytes.Repeat([]byte{0xAB}, VirtualSize+100)
		segs, err := Split(body, VirtualSize)
		require.NoError(t, err)
		require.Len(t, segs.Virtual, VirtualSize)
		require.Len(t, segs.Physical, 100)

		segs.Virtual[0] = 0
		assert.Equal(t, byte(0xAB), body[0])
	})

	t.Run("SplitShortBody", func(t *testing.T) {
		_, err := Split(make([]byte, 100), VirtualSize)
		assert.True(t, errors.Is(err, ErrFormat))
	})

	t.Run("Recombine", func(t *testing.T) {
		virtual := bytes.Repeat([]byte{1}, VirtualSize)
		physical := bytes.Repeat([]byte{2}, PageSize+10)

		body := Recombine(virtual, physical)
		require.Len(t, body, VirtualSize+2*PageSize)
		assert.Equal(t, virtual, body[:VirtualSize])
		assert.Equal(t, physical, body[VirtualSize:VirtualSize+len(physical)])
		assert.Equal(t, make([]byte, PageSize-10), body[VirtualSize+len(physical):])
	})

	t.Run("RecombineAligned", func(t *testing.T) {
		body := Recombine(make([]byte, VirtualSize), make([]byte, 2*PageSize))
		assert.Len(t, body, VirtualSize+2*PageSize)
	})
}

func TestPatchDescriptor(t *testing.T) {
	newVirtual := func() ([]byte, *texture.Descriptor) {
		virtual := make([]byte, VirtualSize)
		binary.LittleEndian.PutUint16(virtual[0x200:], 2048)
		binary.LittleEndian.PutUint16(virtual[0x202:], 1024)
		copy(virtual[0x208:], "DXT1")
		virtual[0x20D] = 12
		d, err := texture.ScanLocator{}.Locate(virtual)
		require.NoError(t, err)
		return virtual, d
	}

	t.Run("WritesFields", func(t *testing.T) {
		virtual, d := newVirtual()
		substituted, err := PatchDescriptor(virtual, d, Patch{Width: 512, Height: 256, MipCount: 10, Format: texture.FormatDXT5})
		require.NoError(t, err)
		assert.False(t, substituted)

		got, err := texture.ScanLocator{}.Locate(virtual)
		require.NoError(t, err)
		assert.Equal(t, uint16(512), got.Width)
		assert.Equal(t, uint16(256), got.Height)
		assert.Equal(t, uint8(10), got.MipCount)
		assert.Equal(t, texture.FormatDXT5, got.Format)
	})

	t.Run("KeepsTagForUnknownFormat", func(t *testing.T) {
		virtual, d := newVirtual()
		_, err := PatchDescriptor(virtual, d, Patch{Width: 512, Height: 256, MipCount: 10})
		require.NoError(t, err)
		assert.Equal(t, []byte("DXT1"), virtual[0x208:0x20C])
	})

	t.Run("ZeroMipCountSubstituted", func(t *testing.T) {
		virtual, d := newVirtual()
		substituted, err := PatchDescriptor(virtual, d, Patch{Width: 512, Height: 512})
		require.NoError(t, err)
		assert.True(t, substituted)
		assert.Equal(t, byte(FallbackMipCount), virtual[0x20D])
	})

	t.Run("Rejects", func(t *testing.T) {
		virtual, d := newVirtual()
		before := bytes.Clone(virtual)

		_, err := PatchDescriptor(virtual, d, Patch{Width: 1 << 16, Height: 512, MipCount: 1})
		assert.True(t, errors.Is(err, ErrUnsupported))
		_, err = PatchDescriptor(virtual, d, Patch{Width: 512, Height: 512, MipCount: 300})
		assert.True(t, errors.Is(err, ErrUnsupported))
		_, err = PatchDescriptor(virtual[:0x100], d, Patch{Width: 512, Height: 512, MipCount: 1})
		assert.True(t, errors.Is(err, ErrUnsupported))

		assert.Equal(t, before, virtual)
	})
}

func TestContainer(t *testing.T) {
	virtual := make([]byte, VirtualSize)
	binary.LittleEndian.PutUint16(virtual[0x80:], 64)
	binary.LittleEndian.PutUint16(virtual[0x82:], 64)
	copy(virtual[0x88:], "DXT5")
	virtual[0x8D] = 1
	binary.LittleEndian.PutUint32(virtual[0x98:], 0x60000000)

	pixels := make([]byte, texture.MipmapSize(64, 64, texture.FormatDXT5, 1))
	for i := range pixels {
		pixels[i] = byte(i%250 + 1)
	}

	t.Run("EncodeDecode", func(t *testing.T) {
		data, err := Encode(21, &Segments{Virtual: virtual, Physical: pixels})
		require.NoError(t, err)

		h := &Header{}
		require.NoError(t, h.UnmarshalBinary(data))
		assert.Equal(t, uint32(21), h.Version)
		assert.Equal(t, EncodeSizeClass(VirtualSize), h.VirtualFlags)
		assert.Equal(t, EncodeSizeClass(PageSize)|PhysicalDataFlag, h.PhysicalFlags)

		res, err := Decode(data, texture.ScanLocator{})
		require.NoError(t, err)
		assert.Equal(t, virtual, res.Segments.Virtual)
		assert.Len(t, res.Segments.Physical, PageSize)
		assert.Equal(t, 0x80, res.Texture.Offset)

		got, complete := res.PixelData()
		assert.True(t, complete)
		assert.Equal(t, pixels, got)

		textures := res.Textures()
		require.Len(t, textures, 1)
		assert.Equal(t, res.Texture, textures[0])
	})

	t.Run("NoPhysicalData", func(t *testing.T) {
		data, err := Encode(21, &Segments{Virtual: virtual})
		require.NoError(t, err)
		assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[12:]))
	})

	t.Run("NoTexture", func(t *testing.T) {
		data, err := Encode(21, &Segments{Virtual: make([]byte, VirtualSize), Physical: pixels})
		require.NoError(t, err)

		_, err = Decode(data, texture.ScanLocator{})
		assert.True(t, errors.Is(err, ErrUnsupported))
	})

	t.Run("BadMagic", func(t *testing.T) {
		_, err := Decode([]byte("RSC8 not a container at all"), texture.ScanLocator{})
		assert.True(t, errors.Is(err, ErrFormat))
	})

	t.Run("CorruptBody", func(t *testing.T) {
		data := make([]byte, HeaderSize+8)
		NewHeader(21, 0, 0).EncodeTo(data)
		copy(data[HeaderSize:], []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})

		_, err := Decode(data, texture.ScanLocator{})
		assert.True(t, errors.Is(err, ErrFormat))
	})

	t.Run("TruncatedPixels", func(t *testing.T) {
		res := &Resource{
			Segments: &Segments{Virtual: virtual, Physical: pixels[:100]},
			Texture:  &texture.Descriptor{Width: 64, Height: 64, Format: texture.FormatDXT5, MipCount: 1},
		}
		got, complete := res.PixelData()
		assert.False(t, complete)
		assert.Len(t, got, 100)
	})
}
