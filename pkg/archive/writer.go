package archive

import (
	"io"
	"os"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

// DefaultCompressionLevel is the default compression level for encoding.
const DefaultCompressionLevel = zstd.DefaultCompression

// Writer wraps an io.WriteSeeker to provide compression of archive data.
type Writer struct {
	dst     io.WriteSeeker
	zWriter *zstd.Writer
	header  *Header
	level   int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompressionLevel sets the compression level for the writer.
func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

// NewWriter writes a placeholder header to dst and returns a writer for the
// body. The compressed length is filled in by Close.
func NewWriter(dst io.WriteSeeker, version, virtualSize uint32, length uint64, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dst:    dst,
		level:  DefaultCompressionLevel,
		header: NewHeader(version, virtualSize, length, 0),
	}

	for _, opt := range opts {
		opt(w)
	}

	headerBytes, err := w.header.MarshalBinary()
	if err != nil {
		return nil, errors.Wrap(err, "marshal header")
	}
	if _, err := dst.Write(headerBytes); err != nil {
		return nil, errors.Wrap(err, "write header")
	}

	w.zWriter = zstd.NewWriterLevel(dst, w.level)
	return w, nil
}

// Write writes compressed data.
func (w *Writer) Write(p []byte) (n int, err error) {
	return w.zWriter.Write(p)
}

// Close flushes the compressor and rewrites the header with the compressed
// size.
func (w *Writer) Close() error {
	if err := w.zWriter.Close(); err != nil {
		return errors.Wrap(err, "close compressor")
	}

	pos, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "get position")
	}

	w.header.CompressedLength = uint64(pos) - HeaderSize

	if _, err := w.dst.Seek(0, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek to start")
	}

	headerBytes, err := w.header.MarshalBinary()
	if err != nil {
		return errors.Wrap(err, "marshal header")
	}
	if _, err := w.dst.Write(headerBytes); err != nil {
		return errors.Wrap(err, "write header")
	}

	if _, err := w.dst.Seek(pos, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek to end")
	}

	return nil
}

// Encode compresses d and writes it as an archive to dst.
func Encode(dst io.WriteSeeker, d *Dump, opts ...WriterOption) error {
	w, err := NewWriter(dst, d.Version, d.VirtualSize, uint64(len(d.Body)), opts...)
	if err != nil {
		return err
	}

	if _, err := w.Write(d.Body); err != nil {
		return errors.Wrap(err, "write body")
	}

	return w.Close()
}

// WriteFile writes d to path.
func WriteFile(path string, d *Dump, opts ...WriterOption) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create dump")
	}
	defer f.Close()

	if err := Encode(f, d, opts...); err != nil {
		return errors.Wrap(err, "encode dump")
	}

	return f.Close()
}
