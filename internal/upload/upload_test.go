package upload_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/digital-store/internal/storage/blob"
	"github.com/tuanvumaihuynh/digital-store/internal/upload"
)

func newFile(name, content string) *upload.File {
	return &upload.File{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

var coverSpec = upload.Spec{
	Field:       "cover_image",
	Dir:         upload.CoverImageDir,
	AllowedExts: upload.CoverImageExts,
	MaxSizeMB:   10,
	Required:    true,
}

func TestUploaderStore(t *testing.T) {
	ctx := context.Background()

	newUploader := func(t *testing.T) (*upload.Uploader, string) {
		t.Helper()
		root := t.TempDir()
		disk, err := blob.NewLocalDisk(root)
		require.NoError(t, err)
		return upload.NewUploader(disk), root
	}

	t.Run("Should store file under directory with unique sanitized name", func(t *testing.T) {
		u, root := newUploader(t)

		p, err := u.Store(ctx, newFile("my cover (1).PNG", "png-bytes"), coverSpec)
		require.NoError(t, err)

		assert.Regexp(t, regexp.MustCompile(`^covers/[0-9a-f-]{36}-mycover1\.PNG$`), p)

		content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		require.NoError(t, err)
		assert.Equal(t, "png-bytes", string(content))
	})

	t.Run("Should store a very long client name under a bounded path", func(t *testing.T) {
		u, root := newUploader(t)

		p, err := u.Store(ctx, newFile(strings.Repeat("cover", 100)+".png", "png-bytes"), coverSpec)
		require.NoError(t, err)

		assert.LessOrEqual(t, len(p), len(upload.CoverImageDir)+1+37+upload.MaxNameLen)
		assert.True(t, strings.HasSuffix(p, ".png"))
		_, err = os.Stat(filepath.Join(root, filepath.FromSlash(p)))
		assert.NoError(t, err)
	})

	t.Run("Should give two uploads of the same name different paths", func(t *testing.T) {
		u, _ := newUploader(t)

		p1, err := u.Store(ctx, newFile("cover.png", "a"), coverSpec)
		require.NoError(t, err)
		p2, err := u.Store(ctx, newFile("cover.png", "b"), coverSpec)
		require.NoError(t, err)

		assert.NotEqual(t, p1, p2)
	})

	t.Run("Should fail with missing file when required", func(t *testing.T) {
		u, _ := newUploader(t)

		_, err := u.Store(ctx, nil, coverSpec)
		require.Error(t, err)
		assert.True(t, upload.IsKind(err, upload.KindMissingFile))
		assert.Equal(t, "Cover image is required.", err.Error())
	})

	t.Run("Should return empty path when optional file is absent", func(t *testing.T) {
		u, _ := newUploader(t)

		spec := coverSpec
		spec.Required = false

		p, err := u.Store(ctx, nil, spec)
		require.NoError(t, err)
		assert.Empty(t, p)
	})

	t.Run("Should fail with transport error when file cannot be opened", func(t *testing.T) {
		u, _ := newUploader(t)

		f := &upload.File{
			Name: "cover.png",
			Size: 1,
			Open: func() (io.ReadCloser, error) { return nil, errors.New("broken part") },
		}

		_, err := u.Store(ctx, f, coverSpec)
		require.Error(t, err)
		assert.True(t, upload.IsKind(err, upload.KindTransport))
	})

	t.Run("Should fail when size exceeds the limit", func(t *testing.T) {
		u, _ := newUploader(t)

		f := newFile("cover.png", "x")
		f.Size = 10*1024*1024 + 1

		_, err := u.Store(ctx, f, coverSpec)
		require.Error(t, err)
		assert.True(t, upload.IsKind(err, upload.KindSizeExceeded))

		var uErr *upload.Error
		require.ErrorAs(t, err, &uErr)
		assert.Equal(t, "cover_image exceeds maximum size of 10MB.", uErr.Msg)
	})

	t.Run("Should fail on disallowed extension regardless of case", func(t *testing.T) {
		u, root := newUploader(t)

		_, err := u.Store(ctx, newFile("payload.EXE", "x"), coverSpec)
		require.Error(t, err)
		assert.True(t, upload.IsKind(err, upload.KindInvalidType))

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Should remove stored file", func(t *testing.T) {
		u, root := newUploader(t)

		p, err := u.Store(ctx, newFile("cover.jpg", "x"), coverSpec)
		require.NoError(t, err)

		require.NoError(t, u.Remove(ctx, p))
		_, err = os.Stat(filepath.Join(root, filepath.FromSlash(p)))
		assert.True(t, os.IsNotExist(err))

		assert.NoError(t, u.Remove(ctx, ""))
	})
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "report.pdf", want: "report.pdf"},
		{in: "my report (final).pdf", want: "myreportfinal.pdf"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: `C:\Users\me\book.epub`, want: "book.epub"},
		{in: "résumé_v1-2.zip", want: "rsum_v1-2.zip"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, upload.SanitizeName(tt.in))
		})
	}

	t.Run("Should truncate long names and keep the extension", func(t *testing.T) {
		got := upload.SanitizeName(strings.Repeat("a", 600) + ".epub")
		assert.Len(t, got, upload.MaxNameLen)
		assert.True(t, strings.HasSuffix(got, ".epub"))
		assert.Equal(t, strings.Repeat("a", upload.MaxNameLen-len(".epub")), strings.TrimSuffix(got, ".epub"))
	})

	t.Run("Should truncate a name made of an oversized extension", func(t *testing.T) {
		got := upload.SanitizeName("." + strings.Repeat("x", 300))
		assert.Len(t, got, upload.MaxNameLen)
	})
}
