package archive

import (
	"bytes"
	"testing"

	"github.com/DataDog/zstd"
)

func BenchmarkCompression(b *testing.B) {
	data := make([]byte, 256*1024)
	for i := range data {
		data[i] = byte(i % 256)
	}

	for name, level := range map[string]int{
		"BestSpeed": zstd.BestSpeed,
		"Default":   zstd.DefaultCompression,
	} {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := zstd.CompressLevel(nil, data, level); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkHeader(b *testing.B) {
	header := NewHeader(13, 0x2000, 1024*1024, 512*1024)
	buf := make([]byte, HeaderSize)

	b.Run("EncodeTo", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			header.EncodeTo(buf)
		}
	})

	b.Run("Unmarshal", func(b *testing.B) {
		h := &Header{}
		for i := 0; i < b.N; i++ {
			if err := h.UnmarshalBinary(buf); err != nil {
				b.Fatal(err)
			}
		}
	})
}

func BenchmarkEncodeDecode(b *testing.B) {
	dump := &Dump{Version: 13, VirtualSize: 0x2000, Body: make([]byte, 1024*1024)}
	for i := range dump.Body {
		dump.Body[i] = byte(i % 251)
	}

	b.Run("Encode", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			if err := Encode(&seekableBuffer{Buffer: &buf}, dump); err != nil {
				b.Fatal(err)
			}
		}
	})

	var buf bytes.Buffer
	_ = Encode(&seekableBuffer{Buffer: &buf}, dump)
	encoded := buf.Bytes()

	b.Run("Decode", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := ReadAll(bytes.NewReader(encoded)); err != nil {
				b.Fatal(err)
			}
		}
	})
}
