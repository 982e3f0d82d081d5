package optimizer

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// DefaultExtensions are the container file extensions processed by default.
var DefaultExtensions = []string{".ytd"}

// NormalizeExtensions lowercases exts, adds a leading dot where missing, and
// drops duplicates and empty entries.
func NormalizeExtensions(exts []string) []string {
	exts = lo.FilterMap(exts, func(ext string, _ int) (string, bool) {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return "", false
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		return ext, true
	})
	return lo.Uniq(exts)
}

// ScanFiles walks inputDir and returns the slash-separated paths, relative to
// inputDir, of regular files whose extension is in exts. The result is
// sorted.
func ScanFiles(inputDir string, exts []string) ([]string, error) {
	exts = NormalizeExtensions(exts)
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !lo.Contains(exts, strings.ToLower(filepath.Ext(path))) {
			return nil
		}

		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return errors.Wrap(err, "relative path")
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", inputDir)
	}

	sort.Strings(files)
	return files, nil
}
