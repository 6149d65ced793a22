// Package blob stores product files and cover images under a shared upload root.
// Paths are slash separated and relative to that root.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tuanvumaihuynh/digital-store/internal/config"
)

// ErrExists is returned by Put when an object already exists at the path.
var ErrExists = errors.New("blob already exists")

type Disk interface {
	// Put writes r to path. It never overwrites an existing object.
	Put(ctx context.Context, path string, r io.Reader) error
	// Delete removes the object at path. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
}

// NewDisk returns the driver selected by cfg.Disk.
func NewDisk(ctx context.Context, cfg config.Upload, s3Cfg config.S3) (Disk, error) {
	switch cfg.Disk {
	case "", "local":
		return NewLocalDisk(cfg.Root)
	case "s3":
		return NewS3Disk(ctx, s3Cfg)
	default:
		return nil, fmt.Errorf("unsupported upload disk %q", cfg.Disk)
	}
}
