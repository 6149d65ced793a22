package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/tuanvumaihuynh/digital-store/internal/http/apierr"
)

// Recoverer turns a panicking handler into a 500 JSON error envelope and logs
// the panic with its stack trace. http.ErrAbortHandler is re-panicked so the
// server aborts the response.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler { //nolint:errorlint
					panic(rvr)
				}

				log.ErrorContext(r.Context(), "panic",
					slog.Any("recover", rvr),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				if r.Header.Get("Connection") == "Upgrade" {
					return
				}
				if err := apierr.Write(w, apierr.InternalServerErr); err != nil {
					log.WarnContext(r.Context(), "error writing panic response", slog.Any("error", err))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
