package middleware

import (
	"net/http"

	"github.com/tuanvumaihuynh/digital-store/internal/apperr"
	"github.com/tuanvumaihuynh/digital-store/internal/http/apierr"
	"github.com/tuanvumaihuynh/digital-store/internal/session"
)

const (
	HealthPath        = "/healthz"
	UploadsPathPrefix = "/uploads/"
)

// RequireLogin rejects anonymous requests with 401.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).IsLoggedIn() {
			//nolint:errcheck
			apierr.Write(w, apierr.New(apperr.Unauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects every request whose session is not an admin with 403,
// anonymous ones included.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !session.FromContext(r.Context()).IsAdmin() {
			//nolint:errcheck
			apierr.Write(w, apierr.New(apperr.Forbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}
