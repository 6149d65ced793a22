// Package upload validates submitted files and persists them on a blob disk.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/digital-store/internal/storage/blob"
)

type Kind uint8

const (
	KindMissingFile Kind = iota + 1
	KindTransport
	KindSizeExceeded
	KindInvalidType
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindMissingFile:
		return "missing_file"
	case KindTransport:
		return "transport_error"
	case KindSizeExceeded:
		return "size_exceeded"
	case KindInvalidType:
		return "invalid_type"
	case KindStorage:
		return "storage_error"
	default:
		return "unknown"
	}
}

// Error is a user facing upload failure for a single form field.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an upload Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var uErr *Error
	return errors.As(err, &uErr) && uErr.Kind == kind
}

// File is a submitted file. A nil *File means the field was not submitted.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FromFileHeader adapts a multipart file header. It returns nil for a nil header.
func FromFileHeader(fh *multipart.FileHeader) *File {
	if fh == nil {
		return nil
	}
	return &File{
		Name: fh.Filename,
		Size: fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// Spec describes how a form field is validated and where it is stored.
type Spec struct {
	Field       string
	Dir         string
	AllowedExts []string
	MaxSizeMB   int64
	Required    bool
}

var (
	ProductFileExts = []string{"zip", "pdf", "epub", "mobi", "jpg", "png", "mp3", "mp4"}
	CoverImageExts  = []string{"jpg", "jpeg", "png", "gif"}
)

const (
	ProductFileDir = "products"
	CoverImageDir  = "covers"
)

// MaxNameLen bounds the sanitized base name so stored paths fit the
// file_path and cover_image_path columns.
const MaxNameLen = 200

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

type Uploader struct {
	disk  blob.Disk
	token func() (string, error)
}

func NewUploader(disk blob.Disk) *Uploader {
	return &Uploader{
		disk: disk,
		token: func() (string, error) {
			id, err := uuid.NewV7()
			if err != nil {
				return "", err
			}
			return id.String(), nil
		},
	}
}

// Store validates f against spec and writes it to <spec.Dir>/<token>-<name>.
// It returns the stored path relative to the upload root, or "" when f is nil
// and the field is optional.
func (u *Uploader) Store(ctx context.Context, f *File, spec Spec) (string, error) {
	if f == nil {
		if spec.Required {
			return "", &Error{
				Kind:  KindMissingFile,
				Field: spec.Field,
				Msg:   fmt.Sprintf("%s is required.", humanize(spec.Field)),
			}
		}
		return "", nil
	}

	src, err := f.Open()
	if err != nil {
		return "", &Error{
			Kind:  KindTransport,
			Field: spec.Field,
			Msg:   fmt.Sprintf("Upload error for %s.", spec.Field),
			Err:   err,
		}
	}
	defer src.Close()

	if f.Size > spec.MaxSizeMB*1024*1024 {
		return "", &Error{
			Kind:  KindSizeExceeded,
			Field: spec.Field,
			Msg:   fmt.Sprintf("%s exceeds maximum size of %dMB.", spec.Field, spec.MaxSizeMB),
		}
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(f.Name), "."))
	if !slices.Contains(spec.AllowedExts, ext) {
		return "", &Error{
			Kind:  KindInvalidType,
			Field: spec.Field,
			Msg: fmt.Sprintf("%s has an invalid file type. Allowed: %s",
				spec.Field, strings.Join(spec.AllowedExts, ", ")),
		}
	}

	token, err := u.token()
	if err != nil {
		return "", fmt.Errorf("generate file token: %w", err)
	}

	dst := path.Join(spec.Dir, token+"-"+SanitizeName(f.Name))
	if err := u.disk.Put(ctx, dst, src); err != nil {
		return "", &Error{
			Kind:  KindStorage,
			Field: spec.Field,
			Msg:   fmt.Sprintf("Failed to store uploaded file %s.", spec.Field),
			Err:   err,
		}
	}

	return dst, nil
}

// Remove deletes a previously stored file. An empty path is a no-op.
func (u *Uploader) Remove(ctx context.Context, p string) error {
	if p == "" {
		return nil
	}
	if err := u.disk.Delete(ctx, p); err != nil {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

// SanitizeName keeps the base name of a client file name, strips every
// character outside [A-Za-z0-9._-] and truncates the stem to MaxNameLen
// bytes in total, keeping the extension.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = unsafeNameChars.ReplaceAllString(path.Base(name), "")
	if len(name) <= MaxNameLen {
		return name
	}

	ext := path.Ext(name)
	if len(ext) >= MaxNameLen {
		return name[:MaxNameLen]
	}
	return name[:MaxNameLen-len(ext)] + ext
}

func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
