package rsc7

import "github.com/pkg/errors"

// Error kinds. Callers classify failures with errors.Is.
var (
	// ErrFormat marks input that is not a decodable container or DDS file.
	ErrFormat = errors.New("format error")

	// ErrUnsupported marks a valid container whose structure is not handled,
	// such as one without a recognised texture descriptor.
	ErrUnsupported = errors.New("unsupported structure")

	// ErrExternalTool marks a resampler failure: non-zero exit, timeout, or
	// missing output.
	ErrExternalTool = errors.New("external tool error")
)
