package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const DefaultOutputDir = "downloads"

// Filesystem writes assets into a single output directory, replacing
// whatever was there before.
type Filesystem struct {
	dir string
}

func NewFilesystem(dir string) (Filesystem, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return Filesystem{}, errors.New("sink: output dir is required")
	}
	return Filesystem{dir: dir}, nil
}

func (f Filesystem) Dir() string {
	return f.dir
}

func (f Filesystem) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("sink: invalid file name %q", key)
	}
	return filepath.Join(f.dir, key), nil
}

func (f Filesystem) Describe(key string) string {
	return filepath.Join(f.dir, key)
}

func (f Filesystem) Store(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := f.path(key)
	if err != nil {
		return err
	}
	err = os.MkdirAll(f.dir, 0o755)
	if err != nil {
		return fmt.Errorf("sink: ensure output dir: %w", err)
	}
	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("sink: write file: %w", err)
	}
	return nil
}
