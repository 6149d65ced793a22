package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var _ Disk = (*LocalDisk)(nil)

type LocalDisk struct {
	root string
}

// NewLocalDisk creates the root directory if needed. A relative root is
// resolved against the working directory.
func NewLocalDisk(root string) (*LocalDisk, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload root: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}

	return &LocalDisk{root: abs}, nil
}

// Root returns the absolute upload root.
func (d *LocalDisk) Root() string {
	return d.root
}

func (d *LocalDisk) Put(_ context.Context, path string, r io.Reader) (err error) {
	full, err := d.abs(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("put %s: %w", path, ErrExists)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
		if err != nil {
			_ = os.Remove(full)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}

func (d *LocalDisk) Delete(_ context.Context, path string) error {
	full, err := d.abs(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", path, err)
	}

	return nil
}

func (d *LocalDisk) Exists(_ context.Context, path string) (bool, error) {
	full, err := d.abs(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(full)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
}

// abs maps a relative blob path into the root and rejects paths that escape it.
func (d *LocalDisk) abs(path string) (string, error) {
	if path == "" || !fs.ValidPath(strings.TrimPrefix(path, "/")) {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return filepath.Join(d.root, filepath.FromSlash(strings.TrimPrefix(path, "/"))), nil
}
