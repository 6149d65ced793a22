package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"

	"github.com/tuanvumaihuynh/digital-store/pkg/correlationid"
)

// Cors allows the given origins. Credentials (the session cookie) are only
// allowed for an explicit origin list, never together with "*".
func Cors(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", correlationid.Header, "traceparent", "tracestate"},
		ExposedHeaders:   []string{correlationid.Header},
		AllowCredentials: !slices.Contains(allowedOrigins, "*"),
		MaxAge:           300,
	})
}
