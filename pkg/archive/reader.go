package archive

import (
	"io"
	"os"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

// Dump is a decompressed container body with the state needed to rebuild it.
type Dump struct {
	Version     uint32
	VirtualSize uint32
	Body        []byte
}

// Reader wraps an io.Reader to provide decompression of archive data.
type Reader struct {
	header    *Header
	zReader   io.ReadCloser
	headerBuf [HeaderSize]byte
}

// NewReader reads and validates the header, then returns a reader for the
// decompressed body.
func NewReader(r io.Reader) (*Reader, error) {
	reader := &Reader{
		header: &Header{},
	}

	if _, err := io.ReadFull(r, reader.headerBuf[:]); err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	if err := reader.header.UnmarshalBinary(reader.headerBuf[:]); err != nil {
		return nil, errors.Wrap(err, "parse header")
	}

	reader.zReader = zstd.NewReader(r)
	return reader, nil
}

// Header returns the archive header.
func (r *Reader) Header() *Header {
	return r.header
}

// Read reads decompressed data into p.
func (r *Reader) Read(p []byte) (n int, err error) {
	return r.zReader.Read(p)
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.zReader.Close()
}

// ReadAll reads a whole dump from r.
func ReadAll(r io.Reader) (*Dump, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	body := make([]byte, reader.header.Length)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	return &Dump{
		Version:     reader.header.Version,
		VirtualSize: reader.header.VirtualSize,
		Body:        body,
	}, nil
}

// ReadFile reads a dump from path.
func ReadFile(path string) (*Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dump")
	}
	defer f.Close()

	return ReadAll(f)
}
