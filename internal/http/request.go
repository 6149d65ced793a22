package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
)

const maxBodyBytes = 1 << 20

func mediaType(r *http.Request) string {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mt
}

func isFormRequest(r *http.Request) bool {
	switch mediaType(r) {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return true
	default:
		return false
	}
}

// parseForm parses url encoded and multipart bodies alike.
func parseForm(r *http.Request, maxMemory int64) error {
	err := r.ParseMultipartForm(maxMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.RequestTooLarge.
			WithMsg(fmt.Sprintf("Request body exceeds the limit of %dMB.", tooLarge.Limit>>20)).
			WrapParent(err)
	}
	return apperr.ValidationErr.WithMsg("Invalid form data.").WrapParent(err)
}

// bindBody decodes a JSON body, or a form body by json field name, into dst.
// An empty body leaves dst untouched.
func bindBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if isFormRequest(r) {
		if err := parseForm(r, maxBodyBytes); err != nil {
			return err
		}

		// Blank fields are dropped so they decode like absent JSON members.
		values := make(map[string]string, len(r.PostForm))
		for k := range r.PostForm {
			if v := r.PostForm.Get(k); v != "" {
				values[k] = v
			}
		}
		raw, err := json.Marshal(values)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return apperr.ValidationErr.WithMsg("Invalid form data.").WrapParent(err)
		}
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.ValidationErr.WithMsg("Invalid JSON data.").WrapParent(err)
	}
	return nil
}

// formValue returns the submitted body field, or nil when it was not sent.
func formValue(r *http.Request, key string) *string {
	vs, ok := r.PostForm[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}
