package blob_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/digital-store/internal/config"
	"github.com/tuanvumaihuynh/digital-store/internal/storage/blob"
)

func TestLocalDisk(t *testing.T) {
	ctx := context.Background()

	newDisk := func(t *testing.T) *blob.LocalDisk {
		t.Helper()
		d, err := blob.NewLocalDisk(t.TempDir())
		require.NoError(t, err)
		return d
	}

	t.Run("Should put and delete a blob", func(t *testing.T) {
		d := newDisk(t)

		require.NoError(t, d.Put(ctx, "covers/a.png", strings.NewReader("png")))

		content, err := os.ReadFile(filepath.Join(d.Root(), "covers", "a.png"))
		require.NoError(t, err)
		assert.Equal(t, "png", string(content))

		exists, err := d.Exists(ctx, "covers/a.png")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, d.Delete(ctx, "covers/a.png"))

		exists, err = d.Exists(ctx, "covers/a.png")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Should never overwrite an existing blob", func(t *testing.T) {
		d := newDisk(t)

		require.NoError(t, d.Put(ctx, "products/a.zip", strings.NewReader("first")))
		err := d.Put(ctx, "products/a.zip", strings.NewReader("second"))
		require.ErrorIs(t, err, blob.ErrExists)

		content, err := os.ReadFile(filepath.Join(d.Root(), "products", "a.zip"))
		require.NoError(t, err)
		assert.Equal(t, "first", string(content))
	})

	t.Run("Should ignore deleting a missing blob", func(t *testing.T) {
		d := newDisk(t)
		assert.NoError(t, d.Delete(ctx, "products/missing.zip"))
	})

	t.Run("Should reject paths escaping the root", func(t *testing.T) {
		d := newDisk(t)
		assert.Error(t, d.Put(ctx, "../escape.txt", strings.NewReader("x")))
		assert.Error(t, d.Delete(ctx, "products/../../escape.txt"))
	})
}

func TestNewDisk(t *testing.T) {
	t.Run("Should default to the local driver", func(t *testing.T) {
		d, err := blob.NewDisk(context.Background(), config.Upload{Root: t.TempDir()}, config.S3{})
		require.NoError(t, err)
		assert.IsType(t, &blob.LocalDisk{}, d)
	})

	t.Run("Should reject unknown drivers", func(t *testing.T) {
		_, err := blob.NewDisk(context.Background(), config.Upload{Disk: "ftp"}, config.S3{})
		assert.Error(t, err)
	})

	t.Run("Should require a bucket for the s3 driver", func(t *testing.T) {
		_, err := blob.NewDisk(context.Background(), config.Upload{Disk: "s3"}, config.S3{})
		assert.Error(t, err)
	})
}
