package optimizer

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/JGCdev/gta-fivem-texture-optimizer/internal/logger"
)

// Summary folds the results of a batch.
type Summary struct {
	Processed      int           `json:"processed"`
	Skipped        int           `json:"skipped"`
	Errors         int           `json:"errors"`
	OriginalBytes  uint64        `json:"original_bytes"`
	OptimizedBytes uint64        `json:"optimized_bytes"`
	Elapsed        time.Duration `json:"elapsed_ns"`
	Results        []Result      `json:"results"`
}

// Summarize counts results by status and totals their sizes.
func Summarize(results []Result, elapsed time.Duration) *Summary {
	sizes := lo.Reduce(results, func(acc [2]uint64, r Result, _ int) [2]uint64 {
		return [2]uint64{acc[0] + r.OriginalSize, acc[1] + r.OptimizedSize}
	}, [2]uint64{})

	return &Summary{
		Processed:      lo.CountBy(results, func(r Result) bool { return r.Status == StatusOptimized }),
		Skipped:        lo.CountBy(results, func(r Result) bool { return r.Status == StatusSkipped }),
		Errors:         lo.CountBy(results, func(r Result) bool { return r.Status == StatusFailed }),
		OriginalBytes:  sizes[0],
		OptimizedBytes: sizes[1],
		Elapsed:        elapsed,
		Results:        results,
	}
}

// Reduction returns the saved share of the total input size in percent.
func (s *Summary) Reduction() float64 {
	return reduction(s.OriginalBytes, s.OptimizedBytes)
}

// Failures returns the failed results.
func (s *Summary) Failures() []Result {
	return lo.Filter(s.Results, func(r Result, _ int) bool { return r.Status == StatusFailed })
}

// Print writes a human readable summary to w.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Processed: %d\n", s.Processed)
	fmt.Fprintf(w, "Skipped:   %d\n", s.Skipped)
	fmt.Fprintf(w, "Errors:    %d\n", s.Errors)
	fmt.Fprintf(w, "Total size: %.2f MB -> %.2f MB (%.1f%% reduction)\n",
		float64(s.OriginalBytes)/(1<<20), float64(s.OptimizedBytes)/(1<<20), s.Reduction())
	fmt.Fprintf(w, "Time: %.1f seconds\n", s.Elapsed.Seconds())
}

// WriteReport writes s as indented JSON.
func (s *Summary) WriteReport(w io.Writer) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write report")
	}
	return nil
}

// WriteReportFile writes the JSON report to path.
func (s *Summary) WriteReportFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create report")
	}
	defer f.Close()

	if err := s.WriteReport(f); err != nil {
		return err
	}
	return f.Close()
}

// LogResult logs one container result at a level matching its status.
func LogResult(log logger.Logger, r *Result) {
	log = log.With("file", r.Name, "status", string(r.Status))
	for _, w := range r.Warnings {
		log.Warn("size ambiguity", "detail", w)
	}

	switch r.Status {
	case StatusOptimized:
		args := []any{"original_size", r.OriginalSize, "optimized_size", r.OptimizedSize,
			"reduction", fmt.Sprintf("%.1f%%", r.Reduction())}
		if r.OldDims != nil && r.NewDims != nil {
			args = append(args, "from", r.OldDims.String(), "to", r.NewDims.String())
		}
		log.Info("optimized", args...)
	case StatusSkipped:
		log.Info("skipped", "reason", r.Reason)
	default:
		log.Error("failed", "reason", r.Reason, "error", r.Error)
	}
}
