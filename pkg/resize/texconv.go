package resize

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/JGCdev/gta-fivem-texture-optimizer/pkg/rsc7"
)

// WaitDelay bounds how long Resize waits for texconv's output pipes after the
// process was killed or exited.
const WaitDelay = 2 * time.Second

// Texconv resizes through the DirectXTex texconv command line tool.
type Texconv struct {
	Path    string
	Format  string // defaults to DefaultFormat
	TempDir string // defaults to os.TempDir()
}

// NewTexconv returns a Texconv for the binary at path.
func NewTexconv(path string) *Texconv {
	return &Texconv{Path: path, Format: DefaultFormat}
}

// Resize writes input into a private workspace, runs texconv on it, and
// returns the produced image. The workspace is removed on every path.
func (tc *Texconv) Resize(ctx context.Context, input []byte, t Target) ([]byte, error) {
	dir, err := tc.workspace()
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	name := baseName(t.Name) + ".dds"
	inPath := filepath.Join(dir, name)
	outDir := filepath.Join(dir, "out")

	if err := os.WriteFile(inPath, input, 0o644); err != nil {
		return nil, errors.Wrap(err, "write resampler input")
	}
	if err := os.Mkdir(outDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create resampler output dir")
	}

	cmd := exec.CommandContext(ctx, tc.Path, tc.args(t, outDir, inPath)...)
	cmd.WaitDelay = WaitDelay
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, errors.Wrapf(rsc7.ErrExternalTool, "texconv %s: %v: %s", t, err, strings.TrimSpace(output.String()))
	}

	out, err := os.ReadFile(filepath.Join(outDir, name))
	if err != nil {
		return nil, errors.Wrapf(rsc7.ErrExternalTool, "read texconv output: %v", err)
	}
	return out, nil
}

func (tc *Texconv) args(t Target, outDir, inPath string) []string {
	format := tc.Format
	if format == "" {
		format = DefaultFormat
	}
	return []string{
		"-w", strconv.FormatUint(uint64(t.Width), 10),
		"-h", strconv.FormatUint(uint64(t.Height), 10),
		"-m", strconv.FormatUint(uint64(t.Mips), 10),
		"-f", format,
		"-o", outDir,
		"-y",
		inPath,
	}
}

func (tc *Texconv) workspace() (string, error) {
	base := tc.TempDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "ytdopt-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create resampler workspace")
	}
	return dir, nil
}

func baseName(name string) string {
	name = filepath.Base(name)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "texture"
	}
	return name
}

// FindTexconv resolves the texconv binary: the configured path when set,
// then texconv or texconv.exe on PATH, then tools/texconv.exe.
func FindTexconv(configured string) (string, error) {
	if configured != "" {
		if path, err := exec.LookPath(configured); err == nil {
			return path, nil
		}
		if _, err := os.Stat(configured); err != nil {
			return "", errors.Wrapf(rsc7.ErrExternalTool, "texconv not found at %s", configured)
		}
		return configured, nil
	}

	for _, name := range []string{"texconv", "texconv.exe"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}

	fallback := filepath.Join("tools", "texconv.exe")
	if _, err := os.Stat(fallback); err == nil {
		return fallback, nil
	}

	return "", errors.Wrap(rsc7.ErrExternalTool, "texconv not found (set --texconv or put it on PATH)")
}
