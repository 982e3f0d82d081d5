package rsc7

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

// Decompress inflates a raw deflate body.
func Decompress(body []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(body))
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(ErrFormat, "inflate body: %v", err)
	}
	return data, nil
}

// Compress deflates data at maximum compression with no framing.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, errors.Wrap(err, "create compressor")
	}
	if _, err := w.Write(data); err != nil {
		return nil, errors.Wrap(err, "deflate body")
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrap(err, "close compressor")
	}
	return buf.Bytes(), nil
}
