package optimizer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/JGCdev/gta-fivem-texture-optimizer/internal/logger"
)

// DefaultParallel is the default number of containers processed at once.
const DefaultParallel = 4

// Batch optimizes every container below an input directory into an output
// directory with the same layout.
type Batch struct {
	Optimizer  *Optimizer
	Parallel   int
	Extensions []string
	Logger     logger.Logger
}

type batchItem struct {
	index int
	rel   string
	res   Result
}

// Run processes the containers found below inputDir. Results are written and
// logged in input order while up to Parallel containers are in flight. Every
// scanned file gets an output: the rebuilt container or a copy of the input.
// Only scanning, cancellation, and creating outputDir abort the run.
func (b *Batch) Run(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	start := time.Now()
	log := b.Logger
	if log == nil {
		log = logger.Discard()
	}
	parallel := b.Parallel
	if parallel < 1 {
		parallel = DefaultParallel
	}

	files, err := ScanFiles(inputDir, b.Extensions)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create output dir")
	}

	log.Info("batch started", "input", inputDir, "output", outputDir, "files", len(files),
		"target_size", b.Optimizer.TargetSize(), "parallel", parallel)

	futureResults := make(chan chan batchItem, parallel)
	workers := make(chan struct{}, parallel)

	go func() {
		defer close(futureResults)
		for i, rel := range files {
			select {
			case workers <- struct{}{}:
			case <-ctx.Done():
				return
			}

			resultChan := make(chan batchItem, 1)
			futureResults <- resultChan

			go func(idx int, rel string, ch chan batchItem) {
				defer func() { <-workers }()
				ch <- batchItem{index: idx, rel: rel, res: b.processFile(ctx, inputDir, rel)}
			}(i, rel, resultChan)
		}
	}()

	results := make([]Result, 0, len(files))
	for resultCh := range futureResults {
		item := <-resultCh
		res := item.res

		if res.Output != nil {
			if err := WriteFileAtomic(filepath.Join(outputDir, filepath.FromSlash(item.rel)), res.Output); err != nil {
				res.writeFailed(err)
			}
		}
		res.Output = nil

		LogResult(log.With("n", item.index+1, "of", len(files)), &res)
		results = append(results, res)
	}

	summary := Summarize(results, time.Since(start))
	if err := ctx.Err(); err != nil {
		return summary, errors.Wrap(err, "batch interrupted")
	}
	return summary, nil
}

func (b *Batch) processFile(ctx context.Context, inputDir, rel string) Result {
	data, err := os.ReadFile(filepath.Join(inputDir, filepath.FromSlash(rel)))
	if err != nil {
		res := newResult(rel, nil)
		res.passThrough(StatusFailed, ReasonRead, nil, errors.Wrap(err, "read container"))
		return res
	}
	return b.Optimizer.Process(ctx, rel, data)
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, so path never holds a partial file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}

	tmp, err := os.CreateTemp(dir, ".ytdopt-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return errors.Wrap(err, "chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "rename into place")
	}
	return nil
}
