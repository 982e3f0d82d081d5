package archive

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := NewHeader(13, 0x2000, 0x5000, 512)

		data, err := original.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, HeaderSize)

		decoded := &Header{}
		require.NoError(t, decoded.UnmarshalBinary(data))
		assert.Equal(t, *original, *decoded)
	})

	t.Run("InvalidMagic", func(t *testing.T) {
		h := NewHeader(13, 0x2000, 0x5000, 512)
		h.Magic = [4]byte{}
		assert.Error(t, h.Validate())
	})

	t.Run("ZeroLength", func(t *testing.T) {
		h := NewHeader(13, 0, 0, 512)
		assert.Error(t, h.Validate())
	})

	t.Run("LengthTooLarge", func(t *testing.T) {
		assert.Error(t, NewHeader(13, 0, MaxLength+1, 512).Validate())
		assert.NoError(t, NewHeader(13, 0, MaxLength, 512).Validate())
	})

	t.Run("VirtualExceedsBody", func(t *testing.T) {
		h := NewHeader(13, 0x3000, 0x2000, 512)
		assert.Error(t, h.Validate())
	})

	t.Run("Short", func(t *testing.T) {
		assert.Error(t, (&Header{}).UnmarshalBinary(make([]byte, HeaderSize-1)))
	})
}

func TestReadWrite(t *testing.T) {
	body := bytes.Repeat([]byte("virtual+physical"), 1024)
	dump := &Dump{Version: 13, VirtualSize: 0x2000, Body: body}

	t.Run("EncodeDecodeRoundTrip", func(t *testing.T) {
		var buf bytes.Buffer
		ws := &seekableBuffer{Buffer: &buf}

		require.NoError(t, Encode(ws, dump))

		h := &Header{}
		require.NoError(t, h.UnmarshalBinary(buf.Bytes()))
		assert.Equal(t, uint64(len(body)), h.Length)
		assert.Equal(t, uint64(buf.Len()-HeaderSize), h.CompressedLength)

		decoded, err := ReadAll(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, dump, decoded)
	})

	t.Run("CompressionLevel", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&seekableBuffer{Buffer: &buf}, dump, WithCompressionLevel(1)))

		decoded, err := ReadAll(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, body, decoded.Body)
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "texture.rdmp")
		require.NoError(t, WriteFile(path, dump))

		decoded, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, dump, decoded)
	})

	t.Run("TruncatedBody", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&seekableBuffer{Buffer: &buf}, dump))

		_, err := ReadAll(bytes.NewReader(buf.Bytes()[:HeaderSize+4]))
		assert.Error(t, err)
	})

	t.Run("OversizedLength", func(t *testing.T) {
		data, err := NewHeader(1, 0, 1<<62, 10).MarshalBinary()
		require.NoError(t, err)
		data = append(data, make([]byte, 10)...)

		_, err = ReadAll(bytes.NewReader(data))
		assert.Error(t, err)
	})

	t.Run("NotAnArchive", func(t *testing.T) {
		_, err := ReadAll(bytes.NewReader([]byte("RSC7 is a container, not a dump archive")))
		assert.Error(t, err)
	})
}

type seekableBuffer struct {
	*bytes.Buffer
	pos int64
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var newPos int64
	switch whence {
	case 0:
		newPos = offset
	case 1:
		newPos = s.pos + offset
	case 2:
		newPos = int64(s.Buffer.Len()) + offset
	}
	s.pos = newPos
	return newPos, nil
}

func (s *seekableBuffer) Write(p []byte) (n int, err error) {
	for int64(s.Buffer.Len()) < s.pos {
		s.Buffer.WriteByte(0)
	}
	if s.pos < int64(s.Buffer.Len()) {
		data := s.Buffer.Bytes()
		n = copy(data[s.pos:], p)
		if n < len(p) {
			m, err := s.Buffer.Write(p[n:])
			n += m
			if err != nil {
				return n, err
			}
		}
	} else {
		n, err = s.Buffer.Write(p)
	}
	s.pos += int64(n)
	return n, err
}
