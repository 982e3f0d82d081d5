package optimizer

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Status is the terminal state of one container.
type Status string

const (
	StatusOptimized Status = "optimized"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Skip and failure reasons.
const (
	ReasonNotContainer   = "not RSC7"
	ReasonUnreadable     = "decompress failed"
	ReasonNoTexture      = "no texture found"
	ReasonAlreadyOptimal = "already optimized"
	ReasonResampler      = "resampler failed"
	ReasonImport         = "import failed"
	ReasonRebuild        = "rebuild failed"
	ReasonRead           = "read failed"
	ReasonWrite          = "write failed"
)

// Dims is a texture size.
type Dims struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	Mips   uint32 `json:"mips,omitempty"`
}

func (d Dims) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Result describes what happened to one container. Output always holds a
// loadable container: the rebuilt one when Status is StatusOptimized and the
// unmodified input otherwise.
type Result struct {
	Name          string        `json:"name"`
	Status        Status        `json:"status"`
	Reason        string        `json:"reason,omitempty"`
	Error         string        `json:"error,omitempty"`
	Warnings      []string      `json:"warnings,omitempty"`
	OriginalSize  uint64        `json:"original_size"`
	OptimizedSize uint64        `json:"optimized_size"`
	OldDims       *Dims         `json:"old_dims,omitempty"`
	NewDims       *Dims         `json:"new_dims,omitempty"`
	InputDigest   string        `json:"input_xxhash"`
	OutputDigest  string        `json:"output_xxhash,omitempty"`
	Elapsed       time.Duration `json:"elapsed_ns"`

	Output []byte `json:"-"`
	Err    error  `json:"-"`
}

func newResult(name string, input []byte) Result {
	return Result{
		Name:          name,
		OriginalSize:  uint64(len(input)),
		OptimizedSize: uint64(len(input)),
		InputDigest:   digest(input),
		Output:        input,
	}
}

// passThrough marks r as not rebuilt and restores the input as its output.
func (r *Result) passThrough(status Status, reason string, input []byte, err error) {
	r.Status = status
	r.Reason = reason
	r.Output = input
	r.OptimizedSize = uint64(len(input))
	r.OutputDigest = r.InputDigest
	r.Err = err
	if err != nil {
		r.Error = err.Error()
	}
}

func (r *Result) optimized(output []byte) {
	r.Status = StatusOptimized
	r.Output = output
	r.OptimizedSize = uint64(len(output))
	r.OutputDigest = digest(output)
}

// writeFailed marks r as failed after its output could not be stored. The
// sizes stay as computed; no output exists, so there is no output digest.
func (r *Result) writeFailed(err error) {
	r.Status = StatusFailed
	r.Reason = ReasonWrite
	r.Output = nil
	r.OutputDigest = ""
	r.Err = err
	r.Error = err.Error()
}

func (r *Result) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Reduction returns the saved share of the input size in percent.
func (r *Result) Reduction() float64 {
	return reduction(r.OriginalSize, r.OptimizedSize)
}

func reduction(original, optimized uint64) float64 {
	if original == 0 {
		return 0
	}
	return (float64(original) - float64(optimized)) / float64(original) * 100
}

func digest(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}
